package pdf

import (
	"bytes"
	"errors"
	"fmt"

	pdfreader "github.com/ledongthuc/pdf"
)

// ErrEmptyDocument is returned for a PDF without pages.
var ErrEmptyDocument = errors.New("document PDF vide")

// PageCount parses data as a PDF and returns its number of pages.
func PageCount(data []byte) (n int, err error) {
	defer func() {
		// the reader panics on some malformed xref tables
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("read pdf: %v", r)
		}
	}()

	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF")) {
		return 0, errors.New("not a PDF document")
	}
	doc, err := pdfreader.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("new pdf reader: %w", err)
	}
	if doc.NumPage() == 0 {
		return 0, ErrEmptyDocument
	}
	return doc.NumPage(), nil
}

package storage

import (
	"fmt"
	"mime"
)

// documentTypes are the uploads accepted for client files: scans and photos
// of identity papers, and office documents.
var documentTypes = map[string]bool{
	"application/pdf":    true,
	"image/jpeg":         true,
	"image/png":          true,
	"image/webp":         true,
	"image/heic":         true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// ValidateContentType accepts the document types above, ignoring parameters
// such as charset.
func (s *MinIOService) ValidateContentType(contentType string) error {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !documentTypes[mediaType] {
		return fmt.Errorf("type de fichier %q non autorisé", contentType)
	}
	return nil
}

// ValidateFileSize rejects empty files and files over the configured limit.
func (s *MinIOService) ValidateFileSize(sizeBytes int64) error {
	switch {
	case sizeBytes <= 0:
		return fmt.Errorf("le fichier est vide")
	case sizeBytes > s.maxFileSize:
		return fmt.Errorf("fichier trop volumineux (%.1f Mo, maximum %.1f Mo)", megabytes(sizeBytes), megabytes(s.maxFileSize))
	}
	return nil
}

func megabytes(n int64) float64 {
	return float64(n) / (1 << 20)
}

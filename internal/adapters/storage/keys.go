package storage

import (
	"errors"
	"net/url"
	"strings"
)

// ErrNoKey is returned when a stored URL carries no object key.
var ErrNoKey = errors.New("impossible d'extraire la clé de l'URL")

// ExtractKeyFromURL drops the first path segment (the bucket) of a path-style
// object URL.
func ExtractKeyFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", ErrNoKey
	}
	return parts[1], nil
}

// ExtractBucketKey returns what follows "/{bucket}/" in the URL path, falling
// back to everything after the first segment.
func ExtractBucketKey(raw, bucket string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrNoKey
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	token := "/" + bucket + "/"
	if _, key, ok := strings.Cut(u.Path, token); ok && bucket != "" {
		key = strings.TrimLeft(key, "/")
		if key == "" {
			return "", ErrNoKey
		}
		return key, nil
	}
	return ExtractKeyFromURL(raw)
}

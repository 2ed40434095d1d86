// Package storage provides a domain-agnostic interface for S3-compatible object storage.
// Every document kind (CVs, contracts, invoices, receipts, client documents)
// lives in one bucket under its own key prefix.
package storage

import (
	"context"
	"io"
	"time"

	"papex_backend/platform/config"
)

// Key prefixes inside the bucket.
const (
	FolderCVs       = "cvs"
	FolderContracts = "contracts"
	FolderInvoices  = "invoices"
	FolderReceipts  = "receipts"
	FolderDocuments = "documents"
)

// Object is a stored file: its key and the URL persisted in the database.
type Object struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// PresignedURL contains the URL and metadata for a presigned download.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// StorageService defines the interface for object storage operations.
type StorageService interface {
	// UploadFile stores reader under folder with a collision-free file name.
	UploadFile(ctx context.Context, folder, fileName, contentType string, reader io.Reader, size int64) (Object, error)

	// DownloadFile opens a stored object. The caller closes the reader.
	DownloadFile(ctx context.Context, fileKey string) (io.ReadCloser, error)

	// DeleteObject removes an object from storage.
	DeleteObject(ctx context.Context, fileKey string) error

	// GenerateDownloadURL creates a time-limited GET URL.
	GenerateDownloadURL(ctx context.Context, fileKey string) (*PresignedURL, error)

	// EnsureBucketExists creates the bucket if it doesn't exist.
	EnsureBucketExists(ctx context.Context) error

	// Bucket is the bucket name, used to extract keys from stored URLs.
	Bucket() string

	ValidateContentType(contentType string) error
	ValidateFileSize(sizeBytes int64) error
	GetMaxFileSize() int64
}

// Config defines the configuration interface for storage.
type Config interface {
	config.MinIOConfig
}

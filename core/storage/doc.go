// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client to provide a simplified interface for the
// operations the files feature needs: existence checks, uploads, downloads,
// stat, and deletes. The abstraction supports both AWS S3 and self-hosted
// MinIO instances.
//
// Row and table data never pass through this package. Rows reference stored
// objects only by {fileId, name, type}; the bytes live here.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it
// easy to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, "offrows-files")
package storage

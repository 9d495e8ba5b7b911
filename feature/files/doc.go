// Package files stores the binary payloads behind file and image cell
// values in object storage. Rows only carry {fileId, name, type} references;
// the bytes live here, keyed by filename.
package files

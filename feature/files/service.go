package files

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"regexp"
	"strings"

	"offrows/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned when the storage settings are incomplete.
var ErrNotConfigured = errors.New("storage configuration is incomplete")

// ErrNotFound is returned when an object does not exist in the bucket.
var ErrNotFound = errors.New("file not found")

var dataURLPrefix = regexp.MustCompile(`^data:[a-z]+/[a-z0-9.+-]+;base64,`)

// Status reports whether uploads can work and whether the bucket answers.
type Status struct {
	Configured bool   `json:"configured"`
	Reachable  bool   `json:"reachable"`
	Bucket     string `json:"bucket,omitempty"`
}

// UploadRequest is a base64-encoded file upload. Data may carry a data-URL
// prefix, which is stripped before decoding.
type UploadRequest struct {
	Filename    string `json:"filename"`
	Data        string `json:"data"`
	ContentType string `json:"contentType,omitempty"`
}

// UploadResult describes a stored object.
type UploadResult struct {
	Filename    string `json:"filename"`
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// Service stores and retrieves the bytes behind file and image cell values.
type Service struct {
	client storage.Client
	cfg    storage.Config
	logger *zap.Logger
}

// NewService creates a new files service.
func NewService(client storage.Client, cfg storage.Config, logger *zap.Logger) *Service {
	return &Service{client: client, cfg: cfg, logger: logger}
}

// GetStatus checks configuration and bucket reachability.
func (s *Service) GetStatus(ctx context.Context) Status {
	st := Status{Configured: s.cfg.IsConfigured(), Bucket: s.cfg.Bucket}
	if !st.Configured || s.client == nil {
		return st
	}
	ok, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		s.logger.Warn("Bucket check failed", zap.String("bucket", s.cfg.Bucket), zap.Error(err))
		return st
	}
	st.Reachable = ok
	return st
}

// Upload decodes and stores one file; the object key is the filename, so
// re-uploading under the same name overwrites.
func (s *Service) Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error) {
	if !s.cfg.IsConfigured() || s.client == nil {
		return nil, ErrNotConfigured
	}

	raw := dataURLPrefix.ReplaceAllString(req.Data, "")
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(req.Filename))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	size := int64(len(data))
	_, err = s.client.PutObject(ctx, s.cfg.Bucket, req.Filename,
		bytes.NewReader(data), size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("upload of %q failed: %w", req.Filename, err)
	}

	s.logger.Info("File uploaded",
		zap.String("key", req.Filename),
		zap.Int64("size", size),
		zap.String("contentType", contentType))

	return &UploadResult{
		Filename:    req.Filename,
		Key:         req.Filename,
		Size:        size,
		ContentType: contentType,
	}, nil
}

// Download streams one object and reports its content type.
func (s *Service) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if !s.cfg.IsConfigured() || s.client == nil {
		return nil, "", ErrNotConfigured
	}

	info, err := s.client.StatObject(ctx, s.cfg.Bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}

	obj, err := s.client.GetObject(ctx, s.cfg.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", err
	}
	return obj, info.ContentType, nil
}

// Delete removes one object by key.
func (s *Service) Delete(ctx context.Context, key string) error {
	if !s.cfg.IsConfigured() || s.client == nil {
		return ErrNotConfigured
	}
	if err := s.client.RemoveObject(ctx, s.cfg.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete of %q failed: %w", key, err)
	}
	s.logger.Info("File deleted", zap.String("key", key))
	return nil
}

func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || strings.Contains(err.Error(), "does not exist")
}

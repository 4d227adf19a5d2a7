package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// UploadTimeout is the fixed budget for a photo upload; the caller's context
// enforces it. It is the only timeout in the upload path.
const UploadTimeout = 30 // seconds

// UploadProgress receives the fraction of bytes uploaded so far, in [0, 1].
type UploadProgress func(fraction float64)

// PhotoStore persists a submitted photo and returns a resolvable reference.
type PhotoStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string, progress UploadProgress) (string, error)
}

// InlinePhotoStore embeds the photo directly as a data URL. Used when no
// object storage is configured.
type InlinePhotoStore struct{}

func (InlinePhotoStore) Save(ctx context.Context, key string, data []byte, contentType string, progress UploadProgress) (string, error) {
	if progress != nil {
		progress(1)
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// MinioPhotoStore uploads photos to an object-storage bucket, one blob per
// photo, and returns a publicly resolvable URL.
type MinioPhotoStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewMinioPhotoStore(endpoint, accessKey, secretKey, bucket, publicURL string, useSSL bool) (*MinioPhotoStore, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.New("minio endpoint is required")
	}
	if strings.TrimSpace(accessKey) == "" || strings.TrimSpace(secretKey) == "" {
		return nil, errors.New("minio access key and secret key are required")
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("minio bucket is required")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}

	return &MinioPhotoStore{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// EnsureBucket ensures the configured bucket exists.
func (s *MinioPhotoStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
}

func (s *MinioPhotoStore) Save(ctx context.Context, key string, data []byte, contentType string, progress UploadProgress) (string, error) {
	reader := &progressReader{
		r:      bytes.NewReader(data),
		total:  int64(len(data)),
		report: progress,
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return s.publicURL + "/" + s.bucket + "/" + key, nil
}

// progressReader reports fractional upload progress as bytes are consumed.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	report UploadProgress
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.report != nil && p.total > 0 {
		p.report(float64(p.read) / float64(p.total))
	}
	return n, err
}

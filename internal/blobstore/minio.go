package blobstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"notesbuzz/internal/apperr"
)

// Objects is the byte half of the store.
type Objects interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// MinioConfig locates the bucket holding file bytes.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

// MinioObjects keeps objects in one MinIO (or any S3-compatible) bucket.
type MinioObjects struct {
	client *minio.Client
	bucket string
}

func normaliseEndpoint(raw string) (endpoint string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("empty endpoint")
	}

	// Accept either "minio:9000" or "http://minio:9000" / "https://minio:9000".
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, err
		}
		if u.Host == "" {
			return "", false, fmt.Errorf("invalid endpoint")
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, fmt.Errorf("endpoint must not contain a path")
		}
		return u.Host, u.Scheme == "https", nil
	}

	return raw, false, nil
}

// NewMinioObjects connects to the endpoint and creates the bucket when it
// does not exist yet.
func NewMinioObjects(ctx context.Context, cfg MinioConfig) (*MinioObjects, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("minio configuration incomplete")
	}

	endpoint, secure, err := normaliseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			// Another instance may have created it in between.
			if exists, _ := client.BucketExists(ctx, cfg.Bucket); !exists {
				return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
			}
		}
	}

	return &MinioObjects{client: client, bucket: cfg.Bucket}, nil
}

func (m *MinioObjects) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (int64, error) {
	info, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return 0, err
	}
	return info.Size, nil
}

// Open returns a lazily-read object. A missing key yields apperr.ErrNotFound.
func (m *MinioObjects) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}

	// GetObject is lazy; Stat forces an early error for missing objects.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return obj, nil
}

func (m *MinioObjects) Remove(ctx context.Context, key string) error {
	return m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
}

// Ping checks the bucket is reachable.
func (m *MinioObjects) Ping(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("minio bucket does not exist: %s", m.bucket)
	}
	return nil
}

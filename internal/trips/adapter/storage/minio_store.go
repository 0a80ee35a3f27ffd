// Package storage implements the ObjectStore contract on a MinIO
// (S3-compatible) bucket holding the generated images.
package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"tripack/internal/shared/logger"
)

// publicReadPolicy grants anonymous read on every object in the bucket, so
// the stored image URLs work without signing.
const publicReadPolicy = `{
  "Version": "2012-10-17",
  "Statement": [
    {
      "Effect": "Allow",
      "Principal": {"AWS": ["*"]},
      "Action": ["s3:GetObject"],
      "Resource": ["arn:aws:s3:::%s/*"]
    }
  ]
}`

// MinioStore stores generated images in a single public-read bucket.
type MinioStore struct {
	client   *minio.Client
	bucket   string
	endpoint string
	useSSL   bool
	log      logger.Logger
}

// MinioConfig carries the connection settings for the image bucket.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewMinioStore connects to MinIO and ensures the image bucket exists with
// a public-read policy.
func NewMinioStore(ctx context.Context, cfg MinioConfig, log logger.Logger) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	store := &MinioStore{
		client:   client,
		bucket:   cfg.Bucket,
		endpoint: cfg.Endpoint,
		useSSL:   cfg.UseSSL,
		log:      log.WithComponent("storage"),
	}
	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *MinioStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %q: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %q: %w", s.bucket, err)
		}
		s.log.Infof("Created image bucket %q", s.bucket)
	}

	policy := fmt.Sprintf(publicReadPolicy, s.bucket)
	if err := s.client.SetBucketPolicy(ctx, s.bucket, policy); err != nil {
		return fmt.Errorf("failed to set bucket policy on %q: %w", s.bucket, err)
	}
	return nil
}

// Put writes data at objectPath and returns its public URL.
func (s *MinioStore) Put(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, objectPath, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store object %q: %w", objectPath, err)
	}

	url := s.publicURL(objectPath)
	s.log.Debugf("Stored object %q (%d bytes)", objectPath, len(data))
	return url, nil
}

func (s *MinioStore) publicURL(objectPath string) string {
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, objectPath)
}

// Package objectstore provides blob storage for attached documents on S3.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/PrateekJaiswal16/taskflow-api/internal/config"
)

// s3API is the subset of the S3 client used by the store, extracted so tests
// can substitute a fake.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store stores attachment blobs in an S3 bucket. Keys are namespaced under
// a configurable prefix; client-facing URLs are built from the bucket's
// public base URL.
type S3Store struct {
	client  s3API
	bucket  string
	prefix  string
	urlBase string
	logger  *slog.Logger
}

// NewS3Store creates an S3Store from the storage configuration, loading AWS
// credentials from the default chain.
func NewS3Store(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	urlBase := cfg.PublicURLBase
	if urlBase == "" {
		urlBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &S3Store{
		client:  s3.NewFromConfig(awsCfg),
		bucket:  cfg.Bucket,
		prefix:  strings.Trim(cfg.Prefix, "/"),
		urlBase: strings.TrimSuffix(urlBase, "/"),
		logger:  logger.With(slog.String("component", "object_store")),
	}, nil
}

// key prepends the configured prefix to a storage key.
func (s *S3Store) key(storageKey string) string {
	if s.prefix == "" {
		return storageKey
	}
	return s.prefix + "/" + strings.TrimPrefix(storageKey, "/")
}

// Put uploads a blob under the given storage key and returns its public URL.
func (s *S3Store) Put(ctx context.Context, storageKey string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	fullKey := s.key(storageKey)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(fullKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to write s3://%s/%s: %w", s.bucket, fullKey, err)
	}

	s.logger.Debug("blob uploaded",
		slog.String("key", fullKey),
		slog.Int("bytes", len(data)))
	return s.urlBase + "/" + fullKey, nil
}

// Delete removes the blob under the given storage key. Deleting a key that
// does not exist is a success: S3's DeleteObject is idempotent, and the
// attachment lifecycle relies on that for orphan cleanup after partial
// failures.
func (s *S3Store) Delete(ctx context.Context, storageKey string) error {
	fullKey := s.key(storageKey)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete s3://%s/%s: %w", s.bucket, fullKey, err)
	}

	s.logger.Debug("blob deleted", slog.String("key", fullKey))
	return nil
}

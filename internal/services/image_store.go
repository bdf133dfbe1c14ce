package services

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"greenia/internal/config"
	"greenia/internal/interfaces"
)

// S3ImageStore uploads recognition photos to an S3 bucket.
type S3ImageStore struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

var _ interfaces.ImageStore = (*S3ImageStore)(nil)

// NewS3ImageStore returns nil when archiving is disabled.
func NewS3ImageStore(cfg *config.S3Config) *S3ImageStore {
	if !cfg.Enabled() {
		return nil
	}
	return &S3ImageStore{
		uploader: manager.NewUploader(cfg.Client),
		bucket:   cfg.Bucket,
		prefix:   cfg.Prefix,
	}
}

// Put stores data under prefix/key and returns the s3:// URI of the object.
func (s *S3ImageStore) Put(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	objectKey := path.Join(s.prefix, key)
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectKey, err)
	}
	log.Debug().Str("bucket", s.bucket).Str("key", objectKey).Int("size_bytes", len(data)).Msg("Archived image")
	return fmt.Sprintf("s3://%s/%s", s.bucket, objectKey), nil
}

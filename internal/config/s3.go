// internal/config/s3.go
package config

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds the bucket used to archive uploaded recognition photos.
// A zero value (nil Client) means archiving is disabled.
type S3Config struct {
	Client *s3.Client
	Bucket string
	Prefix string
}

// Enabled reports whether uploads should be archived.
func (c *S3Config) Enabled() bool {
	return c != nil && c.Client != nil && c.Bucket != ""
}

// NewS3Config creates a new S3 configuration from the AWS_* and S3_* variables.
// When S3_BUCKET_NAME is unset it returns a disabled config.
func NewS3Config(ctx context.Context) (*S3Config, error) {
	bucket := os.Getenv("S3_BUCKET_NAME")
	if bucket == "" {
		return &S3Config{}, nil
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(os.Getenv("AWS_REGION")),
	}
	if key := os.Getenv("AWS_ACCESS_KEY_ID"); key != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			key,
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			"",
		)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	prefix := os.Getenv("S3_PREFIX")
	if prefix == "" {
		prefix = "recognitions"
	}

	return &S3Config{
		Client: client,
		Bucket: bucket,
		Prefix: prefix,
	}, nil
}

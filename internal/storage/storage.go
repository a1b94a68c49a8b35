// Package storage removes uploaded files from the S3-compatible bucket that
// backs user uploads. Upload itself happens client-side.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Upload URLs look like https://host/f/{fileKey}.
var fileKeyPattern = regexp.MustCompile(`/f/([^/?#]+)`)

// ExtractFileKey returns the file key of an upload URL, or "" when url is not
// an upload URL.
func ExtractFileKey(url string) string {
	m := fileKeyPattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// ObjectDeleter is the subset of the S3 API the Deleter needs.
type ObjectDeleter interface {
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Remover is what services depend on for file cleanup.
type Remover interface {
	DeleteURLs(ctx context.Context, urls ...string) int
}

type Deleter struct {
	client ObjectDeleter
	bucket string
}

func NewDeleter(client ObjectDeleter, bucket string) *Deleter {
	return &Deleter{client: client, bucket: bucket}
}

type Options struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// NewS3Deleter builds a Deleter against an S3-compatible endpoint.
func NewS3Deleter(ctx context.Context, opts Options) (*Deleter, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey, opts.SecretKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewDeleter(client, opts.Bucket), nil
}

// DeleteURLs deletes the files behind urls. URLs that are not upload URLs are
// skipped and failures are logged; it returns how many deletions succeeded.
func (d *Deleter) DeleteURLs(ctx context.Context, urls ...string) int {
	deleted := 0
	for _, u := range urls {
		key := ExtractFileKey(u)
		if key == "" {
			continue
		}
		_, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(d.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			slog.Warn("failed to delete stored file", "key", key, "error", err.Error())
			continue
		}
		deleted++
	}
	return deleted
}

// Noop is used when no bucket is configured.
type Noop struct{}

func (Noop) DeleteURLs(context.Context, ...string) int { return 0 }

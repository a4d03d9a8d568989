// Package mirror copies published artifacts to an S3-compatible bucket,
// typically the origin of a CDN.
package mirror

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config holds the bucket settings.
type Config struct {
	// Bucket is the bucket name (required).
	Bucket string `yaml:"bucket"`
	// Prefix is prepended to every object key.
	Prefix string `yaml:"prefix,omitempty"`
	// Region is the AWS region. Empty uses the default chain.
	Region string `yaml:"region,omitempty"`
	// Endpoint is a custom endpoint for S3-compatible providers
	// (MinIO, R2). Empty uses AWS.
	Endpoint string `yaml:"endpoint,omitempty"`
	// UsePathStyle forces path-style addressing.
	UsePathStyle bool `yaml:"use_path_style,omitempty"`
	// CacheControl is sent with every uploaded object.
	CacheControl string `yaml:"cache_control,omitempty"`
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("mirror bucket is required")
	}
	return nil
}

// objectAPI is the subset of the S3 client the mirror calls.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3 uploads and deletes artifacts by filename.
type S3 struct {
	client objectAPI
	cfg    Config
}

// NewS3 builds a mirror using the AWS default credential chain
// (environment, shared config, instance role).
func NewS3(ctx context.Context, cfg Config) (*S3, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &S3{client: s3.NewFromConfig(awsConfig, s3Opts...), cfg: cfg}, nil
}

// Key returns the object key for a filename.
func (m *S3) Key(name string) string {
	if m.cfg.Prefix == "" {
		return name
	}
	return path.Join(m.cfg.Prefix, name)
}

// Put uploads data under name.
func (m *S3) Put(ctx context.Context, name string, data []byte) error {
	contentType, encoding := objectType(name)
	in := &s3.PutObjectInput{
		Bucket:        aws.String(m.cfg.Bucket),
		Key:           aws.String(m.Key(name)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	}
	if encoding != "" {
		in.ContentEncoding = aws.String(encoding)
	}
	if m.cfg.CacheControl != "" {
		in.CacheControl = aws.String(m.cfg.CacheControl)
	}

	if _, err := m.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("uploading s3://%s/%s: %w", m.cfg.Bucket, m.Key(name), err)
	}
	return nil
}

// Delete removes the object for name.
func (m *S3) Delete(ctx context.Context, name string) error {
	_, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.cfg.Bucket),
		Key:    aws.String(m.Key(name)),
	})
	if err != nil {
		return fmt.Errorf("deleting s3://%s/%s: %w", m.cfg.Bucket, m.Key(name), err)
	}
	return nil
}

// objectType derives Content-Type and Content-Encoding from a filename,
// looking through a .gz or .br suffix.
func objectType(name string) (contentType, encoding string) {
	switch {
	case strings.HasSuffix(name, ".gz"):
		encoding = "gzip"
		name = strings.TrimSuffix(name, ".gz")
	case strings.HasSuffix(name, ".br"):
		encoding = "br"
		name = strings.TrimSuffix(name, ".br")
	}

	switch strings.ToLower(path.Ext(name)) {
	case ".js":
		contentType = "text/javascript; charset=utf-8"
	case ".css":
		contentType = "text/css; charset=utf-8"
	default:
		contentType = "application/octet-stream"
	}
	return contentType, encoding
}

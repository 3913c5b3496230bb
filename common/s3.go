package common

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Config contains minimal configuration for creating an S3 client.
// Values are optional and fall back to the standard AWS config/credential chain.
type S3Config struct {
	// Region to use for requests, e.g. "us-east-1". If empty, AWS defaults apply.
	Region string
	// Profile selects a named shared config/credentials profile. If empty, default chain applies.
	Profile string
	// UsePathStyle forces path-style addressing (useful for S3-compatible providers).
	UsePathStyle bool
}

// S3 wraps the AWS SDK for Go v2 S3 client with the narrow surface the reel
// service needs: pulling media down to the work dir and pushing finished
// reels back up.
type S3 struct {
	client *s3.Client
}

// NewS3 creates a new S3 wrapper using the default AWS configuration chain,
// with optional overrides from S3Config.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	c := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &S3{client: c}, nil
}

// Get fetches an object and returns its streaming body. Caller must Close it.
func (s *S3) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

// DownloadFile streams bucket/key into localPath, creating parent
// directories as needed.
func (s *S3) DownloadFile(ctx context.Context, bucket, key, localPath string) error {
	body, err := s.Get(ctx, bucket, key)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, body)
	return err
}

// Put uploads an object to the given bucket/key.
// If contentType is non-empty, it is set on the object.
func (s *S3) Put(ctx context.Context, bucket, key string, body io.Reader, contentType string) error {
	in := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	_, err := s.client.PutObject(ctx, in)
	return err
}

// UploadFile uploads a local file to bucket/key.
func (s *S3) UploadFile(ctx context.Context, bucket, key, localPath, contentType string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.Put(ctx, bucket, key, f, contentType)
}

// Exists returns true if the object exists; false on 404/NotFound.
func (s *S3) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if apiErr.ErrorCode() == "NotFound" {
			return false, nil
		}
	}
	return false, err
}

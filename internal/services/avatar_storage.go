package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/example/userauth/internal/config"
)

// UploadsRoute is the URL prefix under which locally stored avatars are served.
const UploadsRoute = "/uploads"

// AvatarStore persists avatar images and returns their public URL.
type AvatarStore interface {
	Save(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// LocalAvatarStore writes avatars below a directory served by the HTTP layer.
type LocalAvatarStore struct {
	dir     string
	baseURL string
}

// NewLocalAvatarStore constructs a LocalAvatarStore rooted at dir. baseURL is
// the public origin of this service.
func NewLocalAvatarStore(dir, baseURL string) *LocalAvatarStore {
	return &LocalAvatarStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Dir returns the root directory of the store.
func (s *LocalAvatarStore) Dir() string {
	return s.dir
}

// Save writes body to dir/key.
func (s *LocalAvatarStore) Save(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid avatar key %q", key)
	}
	path := filepath.Join(s.dir, clean)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create avatar dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create avatar file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write avatar file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close avatar file: %w", err)
	}

	return s.baseURL + UploadsRoute + "/" + filepath.ToSlash(clean), nil
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3AvatarStore uploads avatars to an S3-compatible bucket.
type S3AvatarStore struct {
	client    objectPutter
	bucket    string
	publicURL string
}

// NewS3AvatarStore builds an S3 client from static credentials. A custom
// endpoint (MinIO and friends) switches the client to path-style addressing.
func NewS3AvatarStore(ctx context.Context, cfg config.AvatarConfig) (*S3AvatarStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := cfg.S3PublicURL
	if publicURL == "" {
		if cfg.S3Endpoint != "" {
			publicURL = strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
		}
	}

	return newS3AvatarStore(client, cfg.S3Bucket, publicURL), nil
}

func newS3AvatarStore(client objectPutter, bucket, publicURL string) *S3AvatarStore {
	return &S3AvatarStore{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

// Save uploads body under key.
func (s *S3AvatarStore) Save(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("upload avatar to s3: %w", err)
	}
	return s.publicURL + "/" + key, nil
}

package objectstore

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sagarc03/filetrail"
)

// NewMinioClient creates a minio client for cfg without contacting the
// server. The region is always set so presigning never looks up the bucket
// location.
func NewMinioClient(cfg Config) (*minio.Client, error) {
	endpoint, secure, err := splitEndpoint(cfg.Endpoint, cfg.Secure)
	if err != nil {
		return nil, fmt.Errorf("new minio client: %w", err)
	}

	lookup := minio.BucketLookupAuto
	if cfg.UsePathStyle {
		lookup = minio.BucketLookupPath
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       secure,
		Region:       cfg.region(),
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, fmt.Errorf("new minio client: %w", err)
	}

	return client, nil
}

// ConnectMinio creates a client and checks that the bucket exists.
func ConnectMinio(ctx context.Context, cfg Config) (*minio.Client, error) {
	client, err := NewMinioClient(cfg)
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("connect minio: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("connect minio: bucket %s does not exist", cfg.Bucket)
	}

	return client, nil
}

// MinioSigner presigns object URLs with minio-go.
type MinioSigner struct {
	client *minio.Client
	bucket string
}

func NewMinioSigner(client *minio.Client, bucket string) *MinioSigner {
	return &MinioSigner{client: client, bucket: bucket}
}

// SignURL presigns a GET for IntentRead or a PUT for IntentWrite.
func (s *MinioSigner) SignURL(ctx context.Context, key string, intent filetrail.Intent, expires time.Duration) (string, error) {
	var (
		u   *url.URL
		err error
	)

	switch intent {
	case filetrail.IntentRead:
		u, err = s.client.PresignedGetObject(ctx, s.bucket, key, expires, url.Values{})
	case filetrail.IntentWrite:
		u, err = s.client.PresignedPutObject(ctx, s.bucket, key, expires)
	default:
		return "", fmt.Errorf("sign url: %w: %q", ErrInvalidIntent, intent)
	}
	if err != nil {
		return "", fmt.Errorf("presign %s %s: %w", intent, key, err)
	}

	return u.String(), nil
}

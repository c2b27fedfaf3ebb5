package objectstore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sagarc03/filetrail"
)

// S3Signer presigns GetObject and PutObject requests with the AWS SDK.
type S3Signer struct {
	presign *s3.PresignClient
	bucket  string
}

// NewS3Signer builds an S3 client from the default AWS configuration chain.
// Static keys in cfg take precedence over the chain's credentials.
func NewS3Signer(ctx context.Context, cfg Config) (*S3Signer, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.region()),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	var endpoint string
	if cfg.Endpoint != "" {
		host, secure, err := splitEndpoint(cfg.Endpoint, cfg.Secure)
		if err != nil {
			return nil, fmt.Errorf("new s3 signer: %w", err)
		}
		endpoint = "http://" + host
		if secure {
			endpoint = "https://" + host
		}
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("new s3 signer: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return NewS3SignerFromClient(client, cfg.Bucket), nil
}

// NewS3SignerFromClient wraps an existing S3 client.
func NewS3SignerFromClient(client *s3.Client, bucket string) *S3Signer {
	return &S3Signer{presign: s3.NewPresignClient(client), bucket: bucket}
}

// SignURL presigns a GET for IntentRead or a PUT for IntentWrite.
func (s *S3Signer) SignURL(ctx context.Context, key string, intent filetrail.Intent, expires time.Duration) (string, error) {
	withExpiry := s3.WithPresignExpires(expires)

	switch intent {
	case filetrail.IntentRead:
		req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}, withExpiry)
		if err != nil {
			return "", fmt.Errorf("presign get %s: %w", key, err)
		}
		return req.URL, nil
	case filetrail.IntentWrite:
		req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}, withExpiry)
		if err != nil {
			return "", fmt.Errorf("presign put %s: %w", key, err)
		}
		return req.URL, nil
	default:
		return "", fmt.Errorf("sign url: %w: %q", ErrInvalidIntent, intent)
	}
}

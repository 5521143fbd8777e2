// Package storage hands out presigned object-storage URLs for review images.
// Image bytes go straight between the client and the bucket.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	sc "github.com/dmitrijs2005/reviewhub/internal/server/config"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	now = time.Now
)

// ImageStore presigns PUT and GET requests against a single bucket.
type ImageStore struct {
	presign *s3.PresignClient
	bucket  string
	expires time.Duration
}

// NewImageStore builds the S3 client once from cfg. Static credentials and a
// custom base endpoint make it work against MinIO as well as AWS.
func NewImageStore(ctx context.Context, cfg *sc.Config) (*ImageStore, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &ImageStore{
		presign: newS3PresignClient(client),
		bucket:  cfg.S3Bucket,
		expires: cfg.ImageURLValidityDuration,
	}, nil
}

// NewImageKey returns a fresh object key scoped to the review.
func NewImageKey(reviewID string) string {
	return fmt.Sprintf("reviews/%s/%s", reviewID, uuid.New())
}

// PresignPut returns a URL the holder can PUT the object to, and the time it
// stops working.
func (s *ImageStore) PresignPut(ctx context.Context, key string) (string, time.Time, error) {
	expiresAt := now().Add(s.expires)

	req, err := presignPutObject(s.presign, ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expires))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("presign put: %w", err)
	}

	return req.URL, expiresAt, nil
}

func (s *ImageStore) PresignGet(ctx context.Context, key string) (string, error) {
	req, err := presignGetObject(s.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expires))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}

	return req.URL, nil
}

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	cfg "github.com/yclin/homelist-backend/internal/config"
)

// presignExpiry is how long resolved URLs stay valid when the bucket has no
// public base URL configured.
const presignExpiry = 1 * time.Hour

// S3AssetRepository implements AssetRepository using AWS S3 (or an
// S3-compatible store such as MinIO via the endpoint override).
type S3AssetRepository struct {
	client        *s3.Client
	presigner     *s3.PresignClient
	bucket        string
	publicBaseURL string
}

// NewS3AssetRepository creates a new S3 asset repository
func NewS3AssetRepository(ctx context.Context, s3cfg cfg.S3Config) (*S3AssetRepository, error) {
	// Build AWS config options
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(s3cfg.Region),
	}

	// Add credentials if provided
	if s3cfg.AccessKeyID != "" && s3cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				s3cfg.AccessKeyID,
				s3cfg.SecretAccessKey,
				"",
			),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Create S3 client with optional endpoint override for MinIO/LocalStack
	var client *s3.Client
	if s3cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(s3cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	repo := &S3AssetRepository{
		client:        client,
		presigner:     s3.NewPresignClient(client),
		bucket:        s3cfg.Bucket,
		publicBaseURL: strings.TrimRight(s3cfg.PublicBaseURL, "/"),
	}

	if err := repo.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return repo, nil
}

// ensureBucket creates the bucket if it doesn't exist (no public policy)
func (r *S3AssetRepository) ensureBucket(ctx context.Context) error {
	_, err := r.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(r.bucket),
	})
	if err == nil {
		return nil // Bucket exists and we have access
	}

	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		var noSuchBucket *types.NoSuchBucket
		if !errors.As(err, &noSuchBucket) {
			// Likely a permission error or connectivity issue, not "bucket doesn't exist"
			return fmt.Errorf("failed to check bucket (may be permission denied): %w", err)
		}
	}

	_, err = r.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(r.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

// Upload uploads data under key. The put is conditional on the key not
// existing, so a duplicate key fails with ErrKeyExists instead of silently
// overwriting another item's image.
func (r *S3AssetRepository) Upload(ctx context.Context, key string, data io.Reader, contentType string, size int64) error {
	var body io.Reader = data
	if size < 0 {
		buf, err := io.ReadAll(data)
		if err != nil {
			return fmt.Errorf("failed to read data: %w", err)
		}
		size = int64(len(buf))
		body = bytes.NewReader(buf)
	}

	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
		IfNoneMatch:   aws.String("*"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
			return ErrKeyExists
		}
		return fmt.Errorf("failed to upload object: %w", err)
	}

	return nil
}

// Delete removes an object. Deleting a missing key is not an error in S3,
// which suits the best-effort cleanup on item delete.
func (r *S3AssetRepository) Delete(ctx context.Context, key string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// ResolveURL resolves a key to a retrievable URL: the public base URL when one
// is configured (public-read bucket), otherwise a presigned GET URL.
func (r *S3AssetRepository) ResolveURL(ctx context.Context, key string) (string, error) {
	if r.publicBaseURL != "" {
		return r.publicBaseURL + "/" + key, nil
	}
	presignedReq, err := r.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return presignedReq.URL, nil
}

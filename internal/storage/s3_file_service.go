package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/klass-lk/postgateway/internal/errorlib"
	"github.com/klass-lk/postgateway/internal/metrics"
)

const (
	KeyPrefix            = "related-posts/"
	DefaultPublicBaseURL = "https://s3.amazonaws.com"
)

// S3API is the part of *s3.Client the uploader needs.
type S3API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3FileService struct {
	s3Client      S3API
	bucket        string
	publicBaseURL string
	log           *slog.Logger
	metrics       metrics.Provider
	now           func() time.Time
}

func NewS3FileService(client S3API, bucket, publicBaseURL string, log *slog.Logger, m metrics.Provider) *S3FileService {
	if publicBaseURL == "" {
		publicBaseURL = DefaultPublicBaseURL
	}
	return &S3FileService{
		s3Client:      client,
		bucket:        bucket,
		publicBaseURL: publicBaseURL,
		log:           log,
		metrics:       m,
		now:           time.Now,
	}
}

func (s *S3FileService) UploadInlineImage(ctx context.Context, dataURL, fileName string) (string, error) {
	img, err := ParseInlineImage(dataURL)
	if err != nil {
		return "", err
	}
	s.log.Info("Decoded inline image",
		slog.String("file", fileName),
		slog.Int("bytes", len(img.Data)),
		slog.String("mb", fmt.Sprintf("%.2f", float64(len(img.Data))/1024/1024)))

	if err := s.ensureBucket(ctx); err != nil {
		s.metrics.IncrementImageUploads(false)
		return "", err
	}

	key := KeyPrefix + fileName
	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.ContentType()),
		ACL:         types.ObjectCannedACLPublicRead,
		Metadata: map[string]string{
			"uploaded-at": s.now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		s.metrics.IncrementImageUploads(false)
		s.log.Error("Failed to upload image", slog.String("key", key), slog.String("error", err.Error()))
		return "", errorlib.ErrImageUploadFailed.Wrap(fmt.Errorf("failed to upload file: %w", err))
	}

	s.metrics.IncrementImageUploads(true)
	s.log.Info("File uploaded", slog.String("key", key), slog.String("bucket", s.bucket))
	return s.URL(key), nil
}

// URL is the path-style public address of key.
func (s *S3FileService) URL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, key)
}

func (s *S3FileService) ensureBucket(ctx context.Context) error {
	_, err := s.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	if isBucketMissing(err) {
		s.log.Error("Storage bucket does not exist", slog.String("bucket", s.bucket))
		return errorlib.ErrStorageBucketMissing.New(s.bucket).Wrap(err)
	}
	s.log.Error("Failed to check storage bucket", slog.String("bucket", s.bucket), slog.String("error", err.Error()))
	return errorlib.ErrImageUploadFailed.Wrap(fmt.Errorf("failed to check bucket: %w", err))
}

func isBucketMissing(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}

// NewS3Client loads the default AWS configuration for region. A non-empty endpoint switches to
// path-style addressing against an S3 compatible service such as LocalStack or MinIO.
func NewS3Client(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	cfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

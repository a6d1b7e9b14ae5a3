package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ArchiveService stores raw measurement payloads for audit and hands out
// pre-signed download URLs for auditors.
type ArchiveService interface {
	Store(ctx context.Context, key string, payload []byte) error
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type archiveService struct {
	client    *s3.Client
	bucket    string
	urlExpiry time.Duration
}

// ArchiveConfig holds configuration for the archive service
type ArchiveConfig struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// DownloadURLExpiry is how long audit download links stay valid.
const DownloadURLExpiry = 24 * time.Hour

// NewArchiveService creates a new S3/MinIO-backed archive service
func NewArchiveService(cfg ArchiveConfig) (ArchiveService, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required")
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.Region == "" {
		loadOpts[0] = config.WithRegion("us-east-1")
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var client *s3.Client
	if cfg.Endpoint != "" {
		// MinIO configuration
		endpoint := cfg.Endpoint
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "http://" + endpoint
		}
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
			o.UsePathStyle = true // MinIO requires path-style URLs
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	return &archiveService{
		client:    client,
		bucket:    cfg.Bucket,
		urlExpiry: DownloadURLExpiry,
	}, nil
}

// Store uploads a raw measurement payload under the given key
func (s *archiveService) Store(ctx context.Context, key string, payload []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to archive payload: %w", err)
	}
	return nil
}

// GenerateDownloadURL generates a pre-signed URL for downloading an
// archived payload
func (s *archiveService) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	presignClient := s3.NewPresignClient(s.client)

	request, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = s.urlExpiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate download URL: %w", err)
	}

	return request.URL, nil
}

// Delete removes an archived payload
func (s *archiveService) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete archived payload: %w", err)
	}
	return nil
}

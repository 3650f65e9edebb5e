// Package storage checks payment proof artifacts in S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	apptrade "github.com/erp/procurement/internal/application/trade"
	infraconfig "github.com/erp/procurement/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ apptrade.ProofChecker = (*S3ProofStore)(nil)

// S3ProofStore answers whether a payment proof key exists in the bucket.
// It works against AWS S3 and S3-compatible servers such as MinIO.
type S3ProofStore struct {
	client *s3.Client
	bucket string
	logger *zap.Logger
}

// S3ProofStoreOption is a functional option for configuring S3ProofStore
type S3ProofStoreOption func(*S3ProofStore)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3ProofStoreOption {
	return func(s *S3ProofStore) {
		s.logger = logger
	}
}

// NewS3ProofStore creates a proof store from configuration
func NewS3ProofStore(ctx context.Context, cfg *infraconfig.StorageConfig, opts ...S3ProofStoreOption) (*S3ProofStore, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	store := &S3ProofStore{
		client: client,
		bucket: cfg.Bucket,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// Exists reports whether ref names an object in the bucket
func (s *S3ProofStore) Exists(ctx context.Context, ref string) (bool, error) {
	key := strings.TrimPrefix(strings.TrimSpace(ref), "/")
	if key == "" {
		return false, nil
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}

	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return false, nil
	}
	// Some S3-compatible servers only report the code in the message
	if strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "NoSuchKey") {
		return false, nil
	}
	s.logger.Warn("payment proof lookup failed", zap.String("key", key), zap.Error(err))
	return false, fmt.Errorf("failed to check payment proof: %w", err)
}

// Bucket returns the bucket name
func (s *S3ProofStore) Bucket() string {
	return s.bucket
}

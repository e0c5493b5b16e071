package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	domain "github.com/bryanwahyu/meeting-insights/internal/domain/meetings"
)

// Store implements meetings.ExportStore on top of MinIO / S3.
type Store struct {
	client     *minio.Client
	bucketName string
	region     string
	// PresignTTL > 0 returns presigned GET URLs instead of plain object URLs.
	PresignTTL time.Duration
}

var _ domain.ExportStore = (*Store)(nil)

// New buat koneksi MinIO
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	// pastikan bucket ada
	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}

	return &Store{client: cli, bucketName: bucket, region: region}, nil
}

// Put uploads body under key and returns where it can be fetched.
func (s *Store) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, s.bucketName, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}

	if s.PresignTTL > 0 {
		u, err := s.client.PresignedGetObject(ctx, s.bucketName, key, s.PresignTTL, url.Values{})
		if err != nil {
			return "", err
		}
		return u.String(), nil
	}
	// URL publik (jika bucket public)
	ep := s.client.EndpointURL()
	return fmt.Sprintf("%s://%s/%s/%s", ep.Scheme, ep.Host, s.bucketName, key), nil
}

// Check implements middleware.HealthChecker.
func (s *Store) Check(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s is missing", s.bucketName)
	}
	return nil
}

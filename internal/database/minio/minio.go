package minio

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"tree-service/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioClient wraps the MinIO client with tree service specific functionality.
type MinioClient struct {
	client *minio.Client
	config config.MinioConfig
}

// Storage defines bucket names for the artifacts the service produces.
var Storage = struct {
	QRArtifacts  string
	Certificates string
}{
	QRArtifacts:  "tree-qr",
	Certificates: "donation-certificates",
}

// BucketNames contains all bucket names required by the tree service.
var BucketNames = []string{
	Storage.QRArtifacts,
	Storage.Certificates,
}

// NewMinioClient initializes a new MinIO client and ensures the buckets exist.
func NewMinioClient(cfg config.MinioConfig) (*MinioClient, error) {
	endpoint := strings.TrimPrefix(cfg.MinioURL, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	isSecure, err := strconv.ParseBool(cfg.MinioSecure)
	if err != nil {
		log.Printf("Invalid value for MinIO secure flag: %v. Defaulting to false.", err)
		isSecure = false
	}

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: isSecure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err = minioClient.ListBuckets(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to MinIO server: %w", err)
	}

	log.Printf("Successfully connected to MinIO at %s", cfg.MinioURL)

	mc := &MinioClient{
		client: minioClient,
		config: cfg,
	}

	if err := mc.ensureRequiredBuckets(); err != nil {
		return nil, fmt.Errorf("failed to ensure required buckets: %w", err)
	}

	return mc, nil
}

func (mc *MinioClient) ensureRequiredBuckets() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, bucket := range BucketNames {
		exists, err := mc.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
		}
		if exists {
			continue
		}
		if err := mc.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: mc.config.MinioLocation}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
		log.Printf("Created MinIO bucket: %s", bucket)
	}
	return nil
}

// PutObject uploads raw bytes to a bucket under the given object name.
func (mc *MinioClient) PutObject(ctx context.Context, bucket, objectName string, data []byte, contentType string) (string, error) {
	_, err := mc.client.PutObject(ctx, bucket, objectName, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s/%s: %w", bucket, objectName, err)
	}
	return mc.config.MinioResourceURL + bucket + "/" + objectName, nil
}

// GetObject downloads an object from a bucket.
func (mc *MinioClient) GetObject(ctx context.Context, bucket, objectName string) ([]byte, error) {
	obj, err := mc.client.GetObject(ctx, bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s/%s: %w", bucket, objectName, err)
	}
	defer obj.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(obj); err != nil {
		return nil, fmt.Errorf("failed to read object %s/%s: %w", bucket, objectName, err)
	}
	return buf.Bytes(), nil
}

// RemoveObject deletes an object from a bucket.
func (mc *MinioClient) RemoveObject(ctx context.Context, bucket, objectName string) error {
	if err := mc.client.RemoveObject(ctx, bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s/%s: %w", bucket, objectName, err)
	}
	return nil
}

package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioConfig contains options for connecting to an S3-compatible endpoint.
type MinioConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	UseSSL     bool
	PublicBase string
}

// MinioBucket stores objects in an S3-compatible bucket.
type MinioBucket struct {
	client     *minio.Client
	name       string
	publicBase string
	logger     *zap.Logger
}

// NewMinioClient creates a MinIO client.
func NewMinioClient(cfg MinioConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.Endpoint, err)
	}
	return client, nil
}

// NewMinioBucket opens the named bucket, creating it when missing.
func NewMinioBucket(ctx context.Context, client *minio.Client, name, publicBase string, logger *zap.Logger) (*MinioBucket, error) {
	exists, err := client.BucketExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", name, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, name, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket %s: %w", name, err)
		}
		logger.Info("Created storage bucket", zap.String("bucket", name))
	}
	if publicBase == "" {
		publicBase = client.EndpointURL().String()
	}
	return &MinioBucket{client: client, name: name, publicBase: publicBase, logger: logger}, nil
}

func (b *MinioBucket) Name() string { return b.name }

// Upload writes data at path unless an object already exists there.
// The existence check and the write are not atomic.
func (b *MinioBucket) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	exists, err := b.exists(ctx, path)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%s/%s: %w", b.name, path, ErrObjectExists)
	}

	info, err := b.client.PutObject(ctx, b.name, path, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload %s/%s: %w", b.name, path, err)
	}
	b.logger.Debug("Uploaded object", zap.String("bucket", info.Bucket), zap.String("key", info.Key), zap.Int64("size", info.Size))
	return nil
}

// PublicURL confirms the object exists and returns {base}/{bucket}/{path}.
func (b *MinioBucket) PublicURL(ctx context.Context, path string) (string, error) {
	exists, err := b.exists(ctx, path)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("%s/%s: %w", b.name, path, ErrObjectNotFound)
	}
	return publicURL(b.publicBase, b.name, path), nil
}

func (b *MinioBucket) exists(ctx context.Context, path string) (bool, error) {
	_, err := b.client.StatObject(ctx, b.name, path, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, fmt.Errorf("stat %s/%s: %w", b.name, path, err)
}

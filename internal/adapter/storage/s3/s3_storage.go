package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"

	"github.com/bozormedia/classifieds-service/internal/config"
	"github.com/bozormedia/classifieds-service/internal/platform/logger"
	"github.com/bozormedia/classifieds-service/internal/port/storage"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// S3Storage stores listing images in an S3-compatible bucket via minio.
type S3Storage struct {
	client *minio.Client
	cfg    *config.S3Config
	logger *logger.Logger
}

func NewS3Storage(cfg *config.S3Config, log *logger.Logger) (*S3Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		log.Info("Created storage bucket", zap.String("bucket", cfg.Bucket))
	}

	return &S3Storage{client: client, cfg: cfg, logger: log}, nil
}

// Save uploads under a uuid key so caller-supplied filenames can never collide.
func (s *S3Storage) Save(ctx context.Context, content []byte, folder, filename string) (*storage.StoredFile, error) {
	key := path.Join(folder, uuid.New().String()+path.Ext(filename))
	contentType := http.DetectContentType(content)

	_, err := s.client.PutObject(ctx, s.cfg.Bucket, key,
		bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		s.logger.Error("Failed to upload object", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	return &storage.StoredFile{
		StorageKey: key,
		PublicURL:  s.publicURL(key),
	}, nil
}

func (s *S3Storage) Delete(ctx context.Context, storageKey string) error {
	err := s.client.RemoveObject(ctx, s.cfg.Bucket, storageKey, minio.RemoveObjectOptions{})
	if err != nil {
		s.logger.Error("Failed to remove object", zap.String("key", storageKey), zap.Error(err))
		return fmt.Errorf("failed to remove object %s: %w", storageKey, err)
	}
	return nil
}

func (s *S3Storage) publicURL(key string) string {
	if s.cfg.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", s.cfg.PublicBaseURL, s.cfg.Bucket, key)
	}
	scheme := "http"
	if s.cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.cfg.Endpoint, s.cfg.Bucket, key)
}

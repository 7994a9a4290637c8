package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/dlemos/procurement-service/internal/config"
)

// Client stores demand attachments (quotes, technical specs) in a MinIO
// bucket and hands out short-lived download links.
type Client struct {
	client *minio.Client
	bucket string
	log    zerolog.Logger
}

func NewClient(cfg config.StorageConfig, log zerolog.Logger) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx := context.Background()
	exists, err := mc.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
		log.Info().Str("bucket", cfg.Bucket).Msg("attachment bucket created")
	}

	return &Client{client: mc, bucket: cfg.Bucket, log: log}, nil
}

// Upload stores the file under a demand-scoped object name and returns it.
func (c *Client) Upload(ctx context.Context, demandID uuid.UUID, fileName string, data []byte) (string, error) {
	ext := filepath.Ext(fileName)
	objectName := fmt.Sprintf("%s/%s%s", demandID, uuid.New().String()[:8], ext)

	_, err := c.client.PutObject(ctx, c.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentTypeFor(ext),
	})
	if err != nil {
		return "", fmt.Errorf("upload attachment: %w", err)
	}
	c.log.Debug().Str("object", objectName).Msg("attachment uploaded")
	return objectName, nil
}

// PresignedURL returns a one-hour download link for an attachment.
func (c *Client) PresignedURL(ctx context.Context, objectName string) (string, error) {
	url, err := c.client.PresignedGetObject(ctx, c.bucket, objectName, time.Hour, nil)
	if err != nil {
		return "", fmt.Errorf("presign attachment: %w", err)
	}
	return url.String(), nil
}

func (c *Client) Delete(ctx context.Context, objectName string) error {
	if err := c.client.RemoveObject(ctx, c.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	return nil
}

func contentTypeFor(ext string) string {
	switch strings.ToLower(ext) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

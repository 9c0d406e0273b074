// Package storage uploads user media to S3-compatible object storage and
// returns the public URLs stored on posts and profiles.
package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/civicpulse/civicpulse/internal/setup/config"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MaxUploadSize caps a single media upload at 10 MiB.
const MaxUploadSize = 10 << 20

var (
	ErrEmptyUpload       = errors.New("upload is empty")
	ErrUploadTooLarge    = errors.New("upload exceeds maximum size")
	ErrUnsupportedFormat = errors.New("unsupported media format")
)

// contentTypeExtensions maps accepted upload content types to their stored
// object extension.
var contentTypeExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// MediaClient uploads media blobs to a single bucket. Objects are write-once;
// a new upload always gets a fresh key.
type MediaClient struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
	logger        *zap.Logger
}

// NewMediaClient creates a media client from storage configuration.
func NewMediaClient(cfg *config.Storage, logger *zap.Logger) (*MediaClient, error) {
	// Clean endpoint URL
	endpoint := strings.TrimPrefix(cfg.Endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &MediaClient{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		logger:        logger.Named("storage"),
	}, nil
}

// UploadPostMedia stores a post image under posts/{path}/{timestamp}_{random}.{ext}
// and returns its public URL.
func (c *MediaClient) UploadPostMedia(
	ctx context.Context, path string, data []byte, contentType string,
) (string, error) {
	ext, err := validateUpload(data, contentType)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("posts/%s/%d_%s.%s", sanitizePath(path), time.Now().UnixMilli(), randomSuffix(), ext)

	return c.put(ctx, key, data, contentType)
}

// UploadAvatar stores a user's avatar under avatars/{userId}/{timestamp}_{random}.{ext}
// and returns its public URL.
func (c *MediaClient) UploadAvatar(
	ctx context.Context, userID uuid.UUID, data []byte, contentType string,
) (string, error) {
	ext, err := validateUpload(data, contentType)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("avatars/%s/%d_%s.%s", userID, time.Now().UnixMilli(), randomSuffix(), ext)

	return c.put(ctx, key, data, contentType)
}

// DeleteMedia removes a previously uploaded object by its public URL.
// Unknown URLs are ignored.
func (c *MediaClient) DeleteMedia(ctx context.Context, mediaURL string) error {
	key, ok := strings.CutPrefix(mediaURL, c.publicBaseURL+"/")
	if !ok {
		return nil
	}

	if err := c.client.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}

	return nil
}

// EnsureBucket creates the media bucket if it doesn't exist.
func (c *MediaClient) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check if bucket %s exists: %w", c.bucket, err)
	}

	if !exists {
		err = c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{
			Region: "auto",
		})
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", c.bucket, err)
		}
	}

	return nil
}

func (c *MediaClient) put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := c.client.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000, immutable",
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object %s: %w", key, err)
	}

	c.logger.Debug("Uploaded media object",
		zap.String("key", key),
		zap.Int("bytes", len(data)))

	return c.publicBaseURL + "/" + key, nil
}

func validateUpload(data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyUpload
	}

	if len(data) > MaxUploadSize {
		return "", fmt.Errorf("%w: %d bytes", ErrUploadTooLarge, len(data))
	}

	ext, ok := contentTypeExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, contentType)
	}

	return ext, nil
}

// sanitizePath keeps object keys flat and predictable.
func sanitizePath(path string) string {
	path = strings.ReplaceAll(path, "..", "")
	path = strings.Trim(path, "/")

	if path == "" {
		return "misc"
	}

	return path
}

func randomSuffix() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)

	return hex.EncodeToString(b)
}

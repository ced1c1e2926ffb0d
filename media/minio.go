package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const objectPrefix = "media/"

// Minio uploads to any S3-compatible host through minio-go.
type Minio struct {
	client    *minio.Client
	bucket    string
	publicURL string
	logger    echo.Logger
	now       func() time.Time
}

// NewMinio builds a client for cfg. It does not contact the host.
func NewMinio(cfg RemoteConfig, logger echo.Logger) (*Minio, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("media: minio endpoint is required")
	}
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("media: init minio client: %w", err)
	}
	return &Minio{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: objectBaseURL(cfg, endpoint),
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Name implements Store.
func (m *Minio) Name() string { return DriverMinio }

// Put uploads data and returns the object's absolute URL.
func (m *Minio) Put(ctx context.Context, data []byte, originalName string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrStore)
	}
	key := objectPrefix + UniqueName(originalName, m.now())
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: http.DetectContentType(data),
	})
	if err != nil {
		m.logger.Errorf("media: minio upload %s: %v", key, err)
		return "", fmt.Errorf("%w: %v", ErrStore, err)
	}
	return m.publicURL + "/" + key, nil
}

// objectBaseURL is the prefix object keys are appended to.
func objectBaseURL(cfg RemoteConfig, host string) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, host, cfg.Bucket)
}

package media

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/labstack/echo/v4"
)

// S3 uploads through the AWS SDK upload manager.
type S3 struct {
	uploader  *manager.Uploader
	bucket    string
	publicURL string
	logger    echo.Logger
	now       func() time.Time
}

// NewS3 loads AWS configuration for cfg. Static credentials are used when
// both keys are set, otherwise the default credential chain applies.
func NewS3(ctx context.Context, cfg RemoteConfig, logger echo.Logger) (*S3, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("media: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3{
		uploader:  manager.NewUploader(client),
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Name implements Store.
func (s *S3) Name() string { return DriverS3 }

// Put uploads data and returns the location reported by S3, or the object
// under the configured public URL.
func (s *S3) Put(ctx context.Context, data []byte, originalName string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrStore)
	}
	key := objectPrefix + UniqueName(originalName, s.now())
	out, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(http.DetectContentType(data)),
	})
	if err != nil {
		s.logger.Errorf("media: s3 upload %s: %v", key, err)
		return "", fmt.Errorf("%w: %v", ErrStore, err)
	}
	if s.publicURL != "" {
		return s.publicURL + "/" + key, nil
	}
	if !IsRemote(out.Location) {
		s.logger.Errorf("media: s3 upload %s returned non-url location %q", key, out.Location)
		return "", fmt.Errorf("%w: no object url", ErrStore)
	}
	return out.Location, nil
}

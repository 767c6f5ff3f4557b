package export

import (
	"context"
	"fmt"
	"io"

	"colorsplitter/logger"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// Uploader 把一段数据存到 key 下
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader) error
}

// S3Config S3 目标；Region 为空时使用环境/共享配置里的默认值
type S3Config struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string // 兼容 S3 的其他服务，如 MinIO
}

// S3Uploader 基于 s3manager 的分片上传
type S3Uploader struct {
	cfg      S3Config
	uploader *s3manager.Uploader
}

func NewS3Uploader(cfg S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket is required")
	}
	awsCfg := aws.NewConfig()
	if cfg.Region != "" {
		awsCfg = awsCfg.WithRegion(cfg.Region)
	}
	if cfg.Endpoint != "" {
		awsCfg = awsCfg.WithEndpoint(cfg.Endpoint).WithS3ForcePathStyle(true)
	}
	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *awsCfg,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 session: %w", err)
	}
	return &S3Uploader{cfg: cfg, uploader: s3manager.NewUploader(sess)}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, key string, body io.Reader) error {
	if u.cfg.Prefix != "" {
		key = u.cfg.Prefix + "/" + key
	}
	out, err := u.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String("application/zip"),
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", u.cfg.Bucket, key, err)
	}
	logger.Logger().Info("uploaded bundle", "location", out.Location)
	return nil
}

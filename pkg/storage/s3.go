package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	appconfig "connectsphere/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3 uploads to a bucket on AWS or any S3 compatible endpoint.
type S3 struct {
	bucket     string
	publicBase string
	uploader   *manager.Uploader
}

func NewS3(ctx context.Context, cfg appconfig.S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 upload backend needs a bucket")
	}

	opts := []func(*config.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	sdkCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicBase := cfg.PublicBaseURL
	if publicBase == "" {
		switch {
		case cfg.Endpoint != "":
			publicBase = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		default:
			publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, sdkCfg.Region)
		}
	}

	return &S3{
		bucket:     cfg.Bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
		uploader:   manager.NewUploader(client),
	}, nil
}

func (s *S3) Save(ctx context.Context, name string, r io.Reader, _ int64, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return s.publicBase + "/" + name, nil
}

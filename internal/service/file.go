package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"bulletinboard/internal/config"
)

// DownloadURLExpiry is how long a presigned attachment link stays valid.
const DownloadURLExpiry = 15 * time.Minute

// FileService hands out download links for attachments stored in
// Cloudflare R2.
type FileService struct {
	presigner *s3.PresignClient
	bucket    string
}

// NewFileService constructs an S3-compatible client for Cloudflare R2.
func NewFileService(ctx context.Context, cfg *config.Config) (*FileService, error) {
	if !cfg.HasR2() {
		return nil, fmt.Errorf("missing Cloudflare R2 configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for R2: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &FileService{
		presigner: s3.NewPresignClient(s3Client),
		bucket:    cfg.R2BucketName,
	}, nil
}

// DownloadURL presigns a GetObject for key. The browser receives the
// original file name through Content-Disposition.
func (s *FileService) DownloadURL(ctx context.Context, key, fileName string) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(s.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", fileName)),
	}, s3.WithPresignExpires(DownloadURLExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}
	return req.URL, nil
}

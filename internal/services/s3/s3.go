// Package s3service stores generated report workbooks in S3
package s3service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	appConfig "bnpl-portfolio-engine/internal/config"
	"bnpl-portfolio-engine/internal/utils"
)

const workbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Service handles S3 operations
type Service struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucketName string
}

// UploadResult describes a stored report artifact
type UploadResult struct {
	Bucket      string    `json:"bucket"`
	Key         string    `json:"key"`
	DownloadURL string    `json:"download_url,omitempty"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

// NewService creates a new S3 service
func NewService(ctx context.Context) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	appCfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	presigner := s3.NewPresignClient(client)

	return &Service{
		client:     client,
		presigner:  presigner,
		bucketName: appCfg.S3Bucket,
	}, nil
}

// UploadReport stores a workbook under reports/<reportID>.xlsx and returns a
// presigned download URL.
func (s *Service) UploadReport(ctx context.Context, reportID string, workbook []byte) (*UploadResult, error) {
	key := fmt.Sprintf("reports/%s.xlsx", reportID)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(workbook),
		ContentType: aws.String(workbookContentType),
	})
	if err != nil {
		utils.Logger.Error("Failed to upload report workbook",
			zap.String("bucket", s.bucketName),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to upload report workbook: %w", err)
	}

	utils.Logger.Info("Uploaded report workbook",
		zap.String("bucket", s.bucketName),
		zap.String("key", key),
		zap.Int("bytes", len(workbook)),
	)

	result := &UploadResult{Bucket: s.bucketName, Key: key}

	expiry := 24 * time.Hour
	presigned, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		// The upload succeeded; a missing download link is not fatal.
		utils.Logger.Warn("Failed to presign report download URL",
			zap.String("key", key),
			zap.Error(err),
		)
		return result, nil
	}

	result.DownloadURL = presigned.URL
	result.ExpiresAt = time.Now().Add(expiry)
	return result, nil
}

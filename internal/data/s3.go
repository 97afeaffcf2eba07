package data

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"roulette/internal/conf"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-kratos/kratos/v2/log"
)

const (
	maxRetries     = 3
	retryDelay     = time.Second
	uploadTimeout  = 30 * time.Second
	presignExpires = time.Hour * 24 * 3
)

var errS3NotConfigured = errors.New("s3 not configured")

// S3Bucket 图表上传，通过预签名 PUT 直传
type S3Bucket struct {
	presign *s3.PresignClient
	http    *http.Client
	bucket  string
	logger  *log.Helper
}

// NewS3Bucket 未配置 bucket 时返回 nil
func NewS3Bucket(c *conf.Data, logger log.Logger) (*S3Bucket, func(), error) {
	l := log.NewHelper(logger)

	sc := c.GetS3()
	if sc == nil || sc.Bucket == "" {
		l.Warn("s3 not configured, chart upload disabled")
		return nil, func() {}, nil
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(sc.Region),
		config.WithCredentialsProvider(aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     sc.AccessKeyId,
				SecretAccessKey: sc.SecretAccessKey,
			}, nil
		})),
	}
	cfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		l.Errorf("failed loading AWS config: %v", err)
		return nil, nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if sc.Endpoint != "" {
			o.BaseEndpoint = aws.String(sc.Endpoint)
			o.UsePathStyle = true
		}
	})
	if sc.Endpoint != "" {
		l.Infof("Using custom S3 endpoint: %s", sc.Endpoint)
	}

	return &S3Bucket{
		presign: s3.NewPresignClient(client),
		http:    &http.Client{Timeout: uploadTimeout},
		bucket:  sc.Bucket,
		logger:  l,
	}, func() { l.Info("S3 uploader closed") }, nil
}

// UploadBytes 实现 DataRepo，返回预签名下载链接
func (r *dataRepo) UploadBytes(ctx context.Context, bucket, key, contentType string, data []byte) (string, error) {
	s := r.data.s3Bucket
	if s == nil {
		return "", errS3NotConfigured
	}
	return s.Upload(ctx, bucket, key, contentType, data)
}

// Upload 失败按线性退避重试
func (s *S3Bucket) Upload(ctx context.Context, bucket, key, contentType string, data []byte) (string, error) {
	if bucket == "" {
		bucket = s.bucket
	}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryDelay * time.Duration(i)):
			}
			s.logger.Infof("Retry upload %d/%d: %s", i, maxRetries-1, key)
		}
		if lastErr = s.put(ctx, bucket, key, contentType, data); lastErr != nil {
			s.logger.Warnf("Upload attempt %d/%d failed: %v", i+1, maxRetries, lastErr)
			continue
		}

		get, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(presignExpires))
		if err != nil {
			lastErr = fmt.Errorf("presign GET: %w", err)
			continue
		}
		s.logger.Infof("S3 upload success: bucket=%s, key=%s", bucket, key)
		return get.URL, nil
	}
	return "", fmt.Errorf("upload failed after %d attempts: %w", maxRetries, lastErr)
}

func (s *S3Bucket) put(ctx context.Context, bucket, key, contentType string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	put, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpires))
	if err != nil {
		return fmt.Errorf("presign PUT: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, put.URL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}
	return nil
}

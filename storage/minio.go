package storage

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/anoixa/pixelwise/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type minioStorage struct {
	client             *minio.Client
	bucketName         string
	namespace          string
	publicBaseURL      string
	presignedURLExpiry time.Duration
}

// NewMinioStorage 创建 MinIO 媒体存储提供者
func NewMinioStorage(cfg *config.Config) (Provider, error) {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       time.Minute,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 10 * time.Second,
		DisableCompression:    true,
	}

	if cfg.MinioUseSSL {
		transport.TLSClientConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure:    cfg.MinioUseSSL,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket '%s' exists: %w", cfg.MinioBucket, err)
	}
	if !exists {
		err = client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket '%s': %w", cfg.MinioBucket, err)
		}
		log.Printf("Successfully created bucket: %s", cfg.MinioBucket)
	}

	return &minioStorage{
		client:             client,
		bucketName:         cfg.MinioBucket,
		namespace:          cfg.MediaNamespace,
		publicBaseURL:      strings.TrimRight(cfg.MinioPublicBaseURL, "/"),
		presignedURLExpiry: 24 * time.Hour,
	}, nil
}

// Upload 将图片载荷上传到 MinIO
func (s *minioStorage) Upload(ctx context.Context, payload Payload) (*UploadResult, error) {
	reference := NewObjectKey(s.namespace, payload.MIMEType)

	contentType := payload.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, s.bucketName, reference, bytes.NewReader(payload.Data), int64(len(payload.Data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload object '%s' to minio: %w", reference, err)
	}

	secureURL, err := s.secureURL(ctx, reference)
	if err != nil {
		return nil, err
	}

	return &UploadResult{
		Reference: reference,
		SecureURL: secureURL,
	}, nil
}

// secureURL 生成对象访问地址
// 配置公开基址时直接拼接；否则回退到预签名 URL
func (s *minioStorage) secureURL(ctx context.Context, reference string) (string, error) {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + s.bucketName + "/" + reference, nil
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucketName, reference, s.presignedURLExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign object '%s': %w", reference, err)
	}
	return u.String(), nil
}

// Search 列举命名空间内对象，按文件名前缀匹配
func (s *minioStorage) Search(ctx context.Context, query SearchQuery) ([]string, error) {
	prefix := query.Namespace
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var refs []string
	for object := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects from minio: %w", object.Err)
		}
		if matchesTerm(object.Key, query) {
			refs = append(refs, object.Key)
		}
		if query.MaxResults > 0 && len(refs) >= query.MaxResults {
			break
		}
	}
	return refs, nil
}

// Open 获取对象读取流
func (s *minioStorage) Open(ctx context.Context, reference string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, reference, minio.GetObjectOptions{})
	if err != nil {
		errResponse := minio.ToErrorResponse(err)
		if errResponse.Code == "NoSuchKey" {
			return nil, fmt.Errorf("media object not found in minio: %s", reference)
		}
		return nil, fmt.Errorf("failed to get object stream from minio for '%s': %w", reference, err)
	}
	return obj, nil
}

// Delete 删除对象
func (s *minioStorage) Delete(ctx context.Context, reference string) error {
	err := s.client.RemoveObject(ctx, s.bucketName, reference, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object '%s' from minio: %w", reference, err)
	}
	return nil
}

// Health 检查 MinIO 健康状态
func (s *minioStorage) Health(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("minio health check failed: %w", err)
	}
	if !exists {
		return fmt.Errorf("minio bucket '%s' does not exist", s.bucketName)
	}
	return nil
}

// Name 返回存储名称
func (s *minioStorage) Name() string {
	return "minio"
}

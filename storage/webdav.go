package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/anoixa/pixelwise/config"
	"github.com/studio-b12/gowebdav"
)

// WebDAVStorage WebDAV 媒体存储实现
// SecureURL 由外部基址拼接，要求服务端将根路径暴露为静态资源
type WebDAVStorage struct {
	client    *gowebdav.Client
	rootPath  string
	namespace string
	baseURL   string
}

// NewWebDAVStorage 创建 WebDAV 媒体存储提供者
func NewWebDAVStorage(cfg *config.Config) (*WebDAVStorage, error) {
	if cfg.WebdavURL == "" {
		return nil, fmt.Errorf("webdav URL is required")
	}
	if cfg.WebdavBaseURL == "" {
		return nil, fmt.Errorf("webdav public base URL is required")
	}

	rootPath := strings.Trim(cfg.WebdavRootPath, "/")
	if rootPath != "" {
		rootPath = "/" + rootPath
	}

	client := gowebdav.NewClient(cfg.WebdavURL, cfg.WebdavUsername, cfg.WebdavPassword)
	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to webdav server: %w", err)
	}

	return &WebDAVStorage{
		client:    client,
		rootPath:  rootPath,
		namespace: cfg.MediaNamespace,
		baseURL:   strings.TrimRight(cfg.WebdavBaseURL, "/"),
	}, nil
}

// remotePath 拼接远端路径
func (s *WebDAVStorage) remotePath(reference string) string {
	return s.rootPath + "/" + reference
}

// Upload 将图片载荷写入 WebDAV
func (s *WebDAVStorage) Upload(ctx context.Context, payload Payload) (*UploadResult, error) {
	reference := NewObjectKey(s.namespace, payload.MIMEType)
	remote := s.remotePath(reference)

	if err := s.client.MkdirAll(path.Dir(remote), 0755); err != nil {
		return nil, fmt.Errorf("failed to create webdav directory '%s': %w", path.Dir(remote), err)
	}

	if err := s.client.WriteStream(remote, bytes.NewReader(payload.Data), 0644); err != nil {
		return nil, fmt.Errorf("failed to write media object '%s' to webdav: %w", remote, err)
	}

	return &UploadResult{
		Reference: reference,
		SecureURL: s.baseURL + "/" + reference,
	}, nil
}

// Search 列举命名空间目录，按文件名前缀匹配
func (s *WebDAVStorage) Search(ctx context.Context, query SearchQuery) ([]string, error) {
	dir := s.remotePath(query.Namespace)
	entries, err := s.client.ReadDir(dir)
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read webdav directory '%s': %w", dir, err)
	}

	var refs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		reference := query.Namespace + "/" + entry.Name()
		if matchesTerm(reference, query) {
			refs = append(refs, reference)
		}
		if query.MaxResults > 0 && len(refs) >= query.MaxResults {
			break
		}
	}
	return refs, nil
}

// Open 打开 WebDAV 媒体对象
func (s *WebDAVStorage) Open(ctx context.Context, reference string) (io.ReadCloser, error) {
	if !IsValidReference(reference) {
		return nil, fmt.Errorf("invalid media reference: %s", reference)
	}

	stream, err := s.client.ReadStream(s.remotePath(reference))
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil, fmt.Errorf("media object not found: %s", reference)
		}
		return nil, fmt.Errorf("failed to read media object '%s' from webdav: %w", reference, err)
	}
	return stream, nil
}

// Delete 删除 WebDAV 媒体对象
func (s *WebDAVStorage) Delete(ctx context.Context, reference string) error {
	if !IsValidReference(reference) {
		return fmt.Errorf("invalid media reference: %s", reference)
	}

	if err := s.client.Remove(s.remotePath(reference)); err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to delete media object '%s' from webdav: %w", reference, err)
	}
	return nil
}

// Health 检查 WebDAV 健康状态
func (s *WebDAVStorage) Health(ctx context.Context) error {
	if _, err := s.client.Stat(s.rootPath + "/"); err != nil {
		if os.IsNotExist(err) || gowebdav.IsErrNotFound(err) {
			return nil
		}
		return fmt.Errorf("webdav health check failed: %w", err)
	}
	return nil
}

// Name 返回存储名称
func (s *WebDAVStorage) Name() string {
	return "webdav"
}

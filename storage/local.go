package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// LocalStorage 本地文件媒体存储实现
// SecureURL 指向本服务的 /media/:reference 路由
type LocalStorage struct {
	absBasePath string
	namespace   string
	baseURL     string
}

// NewLocalStorage 创建本地媒体存储提供者
func NewLocalStorage(basePath, namespace, baseURL string) (*LocalStorage, error) {
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for '%s': %w", basePath, err)
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create local media directory '%s': %w", absPath, err)
	}

	testFile := filepath.Join(absPath, ".write_test_"+strconv.FormatInt(time.Now().UnixNano(), 10))
	f, err := os.Create(testFile)
	if err != nil {
		return nil, fmt.Errorf("local media directory '%s' is not writable: %w", absPath, err)
	}
	_ = f.Close()
	_ = os.Remove(testFile)

	return &LocalStorage{
		absBasePath: absPath + string(os.PathSeparator),
		namespace:   namespace,
		baseURL:     strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload 保存图片载荷到本地磁盘
func (s *LocalStorage) Upload(ctx context.Context, payload Payload) (*UploadResult, error) {
	reference := NewObjectKey(s.namespace, payload.MIMEType)

	dstPath := filepath.Join(s.absBasePath, reference)
	if !strings.HasPrefix(dstPath, s.absBasePath) {
		return nil, fmt.Errorf("invalid media reference, potential directory traversal: %s", reference)
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for '%s': %w", reference, err)
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file '%s': %w", dstPath, err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, bytes.NewReader(payload.Data)); err != nil {
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to write media content to '%s': %w", dstPath, err)
	}

	return &UploadResult{
		Reference: reference,
		SecureURL: s.baseURL + "/media/" + reference,
	}, nil
}

// Search 遍历命名空间目录，按文件名前缀匹配
func (s *LocalStorage) Search(ctx context.Context, query SearchQuery) ([]string, error) {
	dir := filepath.Join(s.absBasePath, query.Namespace)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read media directory '%s': %w", dir, err)
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
	sort.Strings(refs)
	return refs, nil
}

// Open 打开本地媒体对象
func (s *LocalStorage) Open(ctx context.Context, reference string) (io.ReadCloser, error) {
	if !IsValidReference(reference) {
		return nil, fmt.Errorf("invalid media reference: %s", reference)
	}

	fullPath := filepath.Join(s.absBasePath, reference)
	if !strings.HasPrefix(fullPath, s.absBasePath) {
		return nil, fmt.Errorf("invalid media reference, potential directory traversal: %s", reference)
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("media object not found: %s", reference)
		}
		return nil, fmt.Errorf("failed to open media object '%s': %w", reference, err)
	}
	return file, nil
}

// Delete 删除本地媒体对象
func (s *LocalStorage) Delete(ctx context.Context, reference string) error {
	if !IsValidReference(reference) {
		return fmt.Errorf("invalid media reference: %s", reference)
	}

	fullPath := filepath.Join(s.absBasePath, reference)
	if !strings.HasPrefix(fullPath, s.absBasePath) {
		return fmt.Errorf("invalid media reference, potential directory traversal: %s", reference)
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete media object '%s': %w", reference, err)
	}
	return nil
}

// Health 检查本地存储健康状态
func (s *LocalStorage) Health(ctx context.Context) error {
	if _, err := os.Stat(s.absBasePath); err != nil {
		return fmt.Errorf("local media directory not accessible: %w", err)
	}
	return nil
}

// Name 返回存储名称
func (s *LocalStorage) Name() string {
	return "local"
}

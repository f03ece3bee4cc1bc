package storage

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

// setupLocalStorage 创建临时目录上的本地存储
func setupLocalStorage(t *testing.T) *LocalStorage {
	s, err := NewLocalStorage(t.TempDir(), "pixelwise", "http://localhost:8080")
	assert.NoError(t, err)
	return s
}

// --- 测试上传与读取 ---

func TestLocalStorage_UploadAndOpen(t *testing.T) {
	s := setupLocalStorage(t)
	ctx := context.Background()

	payload := Payload{MIMEType: "image/png", Data: []byte("fake-png-bytes")}
	result, err := s.Upload(ctx, payload)
	assert.NoError(t, err)
	assert.NotEmpty(t, result.Reference)
	assert.Contains(t, result.Reference, "pixelwise/")
	assert.Equal(t, "http://localhost:8080/media/"+result.Reference, result.SecureURL)

	rc, err := s.Open(ctx, result.Reference)
	assert.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	assert.NoError(t, err)
	assert.Equal(t, []byte("fake-png-bytes"), data)
}

// --- 测试检索 ---

func TestLocalStorage_Search(t *testing.T) {
	s := setupLocalStorage(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.Upload(ctx, Payload{MIMEType: "image/png", Data: []byte("x")})
		assert.NoError(t, err)
	}

	// 空检索词匹配整个命名空间
	refs, err := s.Search(ctx, SearchQuery{Namespace: "pixelwise"})
	assert.NoError(t, err)
	assert.Len(t, refs, 3)

	// 未命中的前缀
	refs, err = s.Search(ctx, SearchQuery{Namespace: "pixelwise", Term: "zzzz-no-such-prefix"})
	assert.NoError(t, err)
	assert.Empty(t, refs)

	// MaxResults 截断
	refs, err = s.Search(ctx, SearchQuery{Namespace: "pixelwise", MaxResults: 2})
	assert.NoError(t, err)
	assert.Len(t, refs, 2)
}

func TestLocalStorage_Search_MissingNamespace(t *testing.T) {
	s := setupLocalStorage(t)

	refs, err := s.Search(context.Background(), SearchQuery{Namespace: "does-not-exist"})
	assert.NoError(t, err)
	assert.Empty(t, refs)
}

// --- 测试删除 ---

func TestLocalStorage_Delete(t *testing.T) {
	s := setupLocalStorage(t)
	ctx := context.Background()

	result, err := s.Upload(ctx, Payload{MIMEType: "image/jpeg", Data: []byte("y")})
	assert.NoError(t, err)

	assert.NoError(t, s.Delete(ctx, result.Reference))

	_, err = s.Open(ctx, result.Reference)
	assert.Error(t, err)

	// 删除不存在的对象不报错
	assert.NoError(t, s.Delete(ctx, result.Reference))
}

// --- 测试路径穿越防护 ---

func TestLocalStorage_Open_InvalidReference(t *testing.T) {
	s := setupLocalStorage(t)

	_, err := s.Open(context.Background(), "../outside.png")
	assert.Error(t, err)

	_, err = s.Open(context.Background(), "/abs/path.png")
	assert.Error(t, err)
}

func TestLocalStorage_Health(t *testing.T) {
	s := setupLocalStorage(t)
	assert.NoError(t, s.Health(context.Background()))
}

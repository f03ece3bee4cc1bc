package storage

import (
	"context"
	"io"
)

// Payload 待上传的图片载荷
type Payload struct {
	MIMEType string
	Data     []byte
}

// UploadResult 上传结果
// Reference 是媒体库内的稳定标识，SecureURL 为可直接访问的地址
type UploadResult struct {
	Reference string
	SecureURL string
}

// Provider 媒体存储提供者接口 - 依赖倒置的核心抽象
// 上传为同步单次调用，失败直接向调用方传播，不做内部重试
type Provider interface {
	// Upload 保存图片载荷并返回稳定引用
	Upload(ctx context.Context, payload Payload) (*UploadResult, error)

	// Search 按检索条件返回命中的媒体引用列表
	Search(ctx context.Context, query SearchQuery) ([]string, error)

	// Open 打开媒体对象用于读取
	Open(ctx context.Context, reference string) (io.ReadCloser, error)

	// Delete 删除媒体对象
	Delete(ctx context.Context, reference string) error

	// Health 检查存储健康状态
	Health(ctx context.Context) error

	// Name 返回存储名称
	Name() string
}

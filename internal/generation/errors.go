package generation

import "errors"

// 生成流程的哨兵错误，供 handler 层用 errors.Is 映射状态码
var (
	// ErrInvalidRequest 提示词缺失或为空白
	ErrInvalidRequest = errors.New("prompt is required")

	// ErrGenerationEmpty 模型响应中不包含任何图片
	ErrGenerationEmpty = errors.New("no images generated")

	// ErrUploadFailed 媒体存储上传失败
	ErrUploadFailed = errors.New("failed to upload image")

	// ErrPersistence 图片元数据写入数据库失败
	ErrPersistence = errors.New("failed to save image")
)

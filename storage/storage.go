package storage

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// ExtensionForMIME 根据 MIME 类型返回文件扩展名
func ExtensionForMIME(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".bin"
	}
}

// NewObjectKey 生成命名空间内唯一的对象键
func NewObjectKey(namespace, mimeType string) string {
	name := uuid.NewString() + ExtensionForMIME(mimeType)
	if namespace == "" {
		return name
	}
	return namespace + "/" + name
}

// matchesTerm 判断对象键的文件名部分是否命中检索词（前缀，不区分大小写）
func matchesTerm(reference string, q SearchQuery) bool {
	if q.Term == "" {
		return true
	}
	base := path.Base(reference)
	return strings.HasPrefix(strings.ToLower(base), strings.ToLower(q.Term))
}

// IsValidReference 校验媒体引用，拒绝路径穿越
func IsValidReference(reference string) bool {
	if reference == "" || strings.HasPrefix(reference, "/") {
		return false
	}
	for _, part := range strings.Split(reference, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}

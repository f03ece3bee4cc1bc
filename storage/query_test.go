package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- 测试检索词转义 ---

func TestSanitizeTerm(t *testing.T) {
	assert.Equal(t, `a\&b`, SanitizeTerm("a&b"))
	assert.Equal(t, "sunset beach", SanitizeTerm("sunset beach"))
	assert.Equal(t, `cat\:dog`, SanitizeTerm("cat:dog"))
	assert.Equal(t, `\*\(\)`, SanitizeTerm("*()"))
	assert.Equal(t, "", SanitizeTerm(""))
}

// --- 测试检索表达式构建 ---

func TestSearchQuery_Expression_Empty(t *testing.T) {
	q := SearchQuery{Namespace: "pixelwise"}
	assert.Equal(t, "folder=pixelwise", q.Expression())
}

func TestSearchQuery_Expression_WithTerm(t *testing.T) {
	q := SearchQuery{Namespace: "pixelwise", Term: "a&b"}
	expected := `folder=pixelwise AND (filename:a\&b* OR tags:a\&b* OR context.alt:a\&b* OR context.caption:a\&b*)`
	assert.Equal(t, expected, q.Expression())
}

func TestSearchQuery_Expression_PlainTerm(t *testing.T) {
	q := SearchQuery{Namespace: "pixelwise", Term: "sunset"}
	expected := "folder=pixelwise AND (filename:sunset* OR tags:sunset* OR context.alt:sunset* OR context.caption:sunset*)"
	assert.Equal(t, expected, q.Expression())
}

// --- 测试对象键生成 ---

func TestNewObjectKey(t *testing.T) {
	key := NewObjectKey("pixelwise", "image/png")
	assert.Contains(t, key, "pixelwise/")
	assert.Contains(t, key, ".png")

	key2 := NewObjectKey("pixelwise", "image/png")
	assert.NotEqual(t, key, key2)

	noNamespace := NewObjectKey("", "image/jpeg")
	assert.NotContains(t, noNamespace, "/")
	assert.Contains(t, noNamespace, ".jpg")
}

func TestExtensionForMIME(t *testing.T) {
	assert.Equal(t, ".png", ExtensionForMIME("image/png"))
	assert.Equal(t, ".jpg", ExtensionForMIME("image/jpeg"))
	assert.Equal(t, ".webp", ExtensionForMIME("image/webp"))
	assert.Equal(t, ".bin", ExtensionForMIME("application/pdf"))
}

// --- 测试媒体引用校验 ---

func TestIsValidReference(t *testing.T) {
	assert.True(t, IsValidReference("pixelwise/abc.png"))
	assert.False(t, IsValidReference(""))
	assert.False(t, IsValidReference("/etc/passwd"))
	assert.False(t, IsValidReference("pixelwise/../secret"))
	assert.False(t, IsValidReference("pixelwise//x.png"))
}

package storage

import (
	"fmt"
	"strings"
)

// SearchQuery 媒体库检索条件
// Term 为原始检索词，空串表示匹配整个命名空间
type SearchQuery struct {
	Namespace  string
	Term       string
	MaxResults int
}

// SanitizeTerm 转义检索词中 [A-Za-z0-9 ] 之外的所有字符，
// 防止破坏媒体库检索表达式语法
func SanitizeTerm(term string) string {
	var sb strings.Builder
	for _, r := range term {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == ' ':
			sb.WriteRune(r)
		default:
			sb.WriteRune('\\')
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// SanitizedTerm 返回转义后的检索词
func (q SearchQuery) SanitizedTerm() string {
	return SanitizeTerm(q.Term)
}

// Expression 构建媒体库检索表达式
// 空检索词仅限定命名空间；非空检索词对文件名、标签、
// alt 与 caption 做前缀匹配
func (q SearchQuery) Expression() string {
	expr := fmt.Sprintf("folder=%s", q.Namespace)
	if q.Term == "" {
		return expr
	}

	t := q.SanitizedTerm()
	expr += fmt.Sprintf(" AND (filename:%s* OR tags:%s* OR context.alt:%s* OR context.caption:%s*)", t, t, t, t)
	return expr
}

package gallery

import (
	"github.com/anoixa/pixelwise/database/repo/images"
	"github.com/anoixa/pixelwise/storage"
)

// QueryBuilder 将自由文本检索词翻译为两个查询产物：
// 媒体库检索条件（文件名/标签/alt/caption 前缀匹配），
// 以及持久层过滤条件（媒体引用命中 OR 字段子串匹配）。
// 媒体库与数据库索引的属性不同，两个结果集须取并集。
type QueryBuilder struct {
	namespace  string
	maxResults int
}

// NewQueryBuilder 创建检索构建器
func NewQueryBuilder(namespace string, maxResults int) *QueryBuilder {
	return &QueryBuilder{
		namespace:  namespace,
		maxResults: maxResults,
	}
}

// MediaQuery 构建媒体库检索条件
// 空检索词匹配整个命名空间
func (b *QueryBuilder) MediaQuery(term string) storage.SearchQuery {
	return storage.SearchQuery{
		Namespace:  b.namespace,
		Term:       term,
		MaxResults: b.maxResults,
	}
}

// PersistenceFilter 构建持久层过滤条件
// 空检索词返回空过滤（匹配全部）
func (b *QueryBuilder) PersistenceFilter(term string, mediaRefs []string) images.Filter {
	if term == "" {
		return images.Filter{}
	}
	return images.Filter{
		MediaReferences: mediaRefs,
		Term:            term,
	}
}

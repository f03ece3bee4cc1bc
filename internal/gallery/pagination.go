package gallery

// DefaultPageSize 画廊默认分页大小
const DefaultPageSize = 9

// Pagination 分页参数
// Page 从 1 开始计数；Limit 非法时钳制为默认值
type Pagination struct {
	Page  int
	Limit int
}

// NewPagination 规范化分页参数
// page 小于 1 时钳制为 1，limit 小于等于 0 时钳制为默认分页大小
func NewPagination(page, limit int) Pagination {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return Pagination{Page: page, Limit: limit}
}

// Skip 返回偏移量
func (p Pagination) Skip() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages 根据总数计算页数（向上取整）
func (p Pagination) TotalPages(totalCount int64) int {
	if totalCount <= 0 {
		return 0
	}
	return int((totalCount + int64(p.Limit) - 1) / int64(p.Limit))
}

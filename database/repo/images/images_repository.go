package images

import (
	"context"
	"strings"

	"github.com/anoixa/pixelwise/database/models"
	"gorm.io/gorm"
)

// Filter 图片列表过滤条件
// MediaReferences 与 Term 之间为 OR 语义：命中媒体库检索结果，
// 或 title/alt_text/tags 任一字段包含关键字（不区分大小写）。
// 零值 Filter 匹配全部记录。
type Filter struct {
	MediaReferences []string
	Term            string
}

// IsEmpty 判断过滤条件是否为空
func (f Filter) IsEmpty() bool {
	return len(f.MediaReferences) == 0 && f.Term == ""
}

// Repository 图片仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的图片仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateImage 保存生成记录，ID 与时间戳由存储层填充
func (r *Repository) CreateImage(image *models.Image) error {
	return r.db.Create(image).Error
}

// GetImageByID 通过ID获取图片（预加载作者）
func (r *Repository) GetImageByID(id uint) (*models.Image, error) {
	var image models.Image
	err := r.db.Preload("Author").First(&image, id).Error
	return &image, err
}

// UpdateImage 更新图片
func (r *Repository) UpdateImage(image *models.Image) error {
	return r.db.Save(image).Error
}

// UpdateImageFields 通过ID局部更新图片
func (r *Repository) UpdateImageFields(id uint, updates map[string]interface{}) (*models.Image, error) {
	result := r.db.Model(&models.Image{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetImageByID(id)
}

// DeleteImage 删除图片记录，不级联删除媒体对象
func (r *Repository) DeleteImage(id uint) error {
	result := r.db.Delete(&models.Image{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// applyFilter 构建 OR 过滤查询
func (r *Repository) applyFilter(db *gorm.DB, filter Filter) *gorm.DB {
	if filter.IsEmpty() {
		return db
	}

	if filter.Term == "" {
		return db.Where("media_reference IN ?", filter.MediaReferences)
	}

	pattern := "%" + strings.ToLower(filter.Term) + "%"
	cond := r.db.Where("LOWER(title) LIKE ?", pattern).
		Or("LOWER(alt_text) LIKE ?", pattern).
		Or("LOWER(tags) LIKE ?", pattern)
	if len(filter.MediaReferences) > 0 {
		cond = cond.Or("media_reference IN ?", filter.MediaReferences)
	}
	return db.Where(cond)
}

// ListImages 获取图片列表，按更新时间倒序
func (r *Repository) ListImages(filter Filter, skip, limit int) ([]*models.Image, error) {
	var images []*models.Image
	db := r.applyFilter(r.db.Model(&models.Image{}), filter)
	err := db.Preload("Author").
		Order("updated_at desc").
		Offset(skip).
		Limit(limit).
		Find(&images).Error
	return images, err
}

// CountImages 统计满足过滤条件的图片数量
func (r *Repository) CountImages(filter Filter) (int64, error) {
	var count int64
	db := r.applyFilter(r.db.Model(&models.Image{}), filter)
	err := db.Count(&count).Error
	return count, err
}

// CountAllImages 统计全部图片数量
func (r *Repository) CountAllImages() (int64, error) {
	var count int64
	err := r.db.Model(&models.Image{}).Count(&count).Error
	return count, err
}

// ListImagesByAuthor 获取用户的图片列表，按更新时间倒序
func (r *Repository) ListImagesByAuthor(authorID uint, skip, limit int) ([]*models.Image, error) {
	var images []*models.Image
	err := r.db.Where("author_id = ?", authorID).
		Preload("Author").
		Order("updated_at desc").
		Offset(skip).
		Limit(limit).
		Find(&images).Error
	return images, err
}

// CountImagesByAuthor 统计用户图片数量
func (r *Repository) CountImagesByAuthor(authorID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Image{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

// WithContext 返回带上下文的仓库
func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}

// DB 返回底层 *gorm.DB 实例
func (r *Repository) DB() *gorm.DB {
	return r.db
}

package gallery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/anoixa/pixelwise/cache"
	"github.com/anoixa/pixelwise/database/models"
	"github.com/anoixa/pixelwise/database/repo/images"
	"github.com/anoixa/pixelwise/storage"
)

// ErrUnauthorized 非作者尝试修改图片
var ErrUnauthorized = errors.New("unauthorized or image not found")

// Page 画廊分页结果
type Page struct {
	Data        []*models.Image
	TotalPages  int
	SavedImages int64
}

// Service 画廊查询服务
type Service struct {
	repo       *images.Repository
	store      storage.Provider
	cacheProv  cache.Provider
	builder    *QueryBuilder
	searchTTL  time.Duration
	defaultLim int
}

// NewService 创建画廊服务
// cacheProvider 可为 nil（不缓存媒体库检索结果）
func NewService(repo *images.Repository, store storage.Provider, cacheProvider cache.Provider, builder *QueryBuilder, searchTTL time.Duration, defaultLimit int) *Service {
	if defaultLimit <= 0 {
		defaultLimit = DefaultPageSize
	}
	return &Service{
		repo:       repo,
		store:      store,
		cacheProv:  cacheProvider,
		builder:    builder,
		searchTTL:  searchTTL,
		defaultLim: defaultLimit,
	}
}

// searchMediaRefs 执行媒体库检索，结果短期缓存
func (s *Service) searchMediaRefs(ctx context.Context, term string) ([]string, error) {
	query := s.builder.MediaQuery(term)
	// 检索表达式唯一确定命名空间与检索词的组合，直接作为缓存键
	cacheKey := "media_search:" + query.Expression()

	if s.cacheProv != nil {
		var cached []string
		if err := s.cacheProv.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	refs, err := s.store.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("media store search failed: %w", err)
	}

	if s.cacheProv != nil {
		if err := s.cacheProv.Set(ctx, cacheKey, refs, s.searchTTL); err != nil {
			log.Printf("Failed to cache media search result: %v", err)
		}
	}
	return refs, nil
}

// GetAllImages 获取画廊分页列表
// 检索词非空时合并媒体库命中与字段子串匹配两个结果集
func (s *Service) GetAllImages(ctx context.Context, page int, searchQuery string, limit int) (*Page, error) {
	if limit <= 0 {
		limit = s.defaultLim
	}
	pagination := NewPagination(page, limit)

	var filter images.Filter
	if searchQuery != "" {
		refs, err := s.searchMediaRefs(ctx, searchQuery)
		if err != nil {
			return nil, err
		}
		filter = s.builder.PersistenceFilter(searchQuery, refs)
	}

	repo := s.repo.WithContext(ctx)
	imageList, err := repo.ListImages(filter, pagination.Skip(), pagination.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	total, err := repo.CountImages(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count images: %w", err)
	}

	saved, err := repo.CountAllImages()
	if err != nil {
		return nil, fmt.Errorf("failed to count saved images: %w", err)
	}

	return &Page{
		Data:        imageList,
		TotalPages:  pagination.TotalPages(total),
		SavedImages: saved,
	}, nil
}

// GetUserImages 获取指定用户的分页列表
func (s *Service) GetUserImages(ctx context.Context, userID uint, page, limit int) (*Page, error) {
	if limit <= 0 {
		limit = s.defaultLim
	}
	pagination := NewPagination(page, limit)

	repo := s.repo.WithContext(ctx)
	imageList, err := repo.ListImagesByAuthor(userID, pagination.Skip(), pagination.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list user images: %w", err)
	}

	total, err := repo.CountImagesByAuthor(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count user images: %w", err)
	}

	return &Page{
		Data:       imageList,
		TotalPages: pagination.TotalPages(total),
	}, nil
}

// GetImage 获取单张图片（含作者）
func (s *Service) GetImage(ctx context.Context, id uint) (*models.Image, error) {
	return s.repo.WithContext(ctx).GetImageByID(id)
}

// UpdateImage 作者本人更新图片元数据
// 非作者（含匿名记录）返回 ErrUnauthorized
func (s *Service) UpdateImage(ctx context.Context, id, userID uint, updates map[string]interface{}) (*models.Image, error) {
	repo := s.repo.WithContext(ctx)

	image, err := repo.GetImageByID(id)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if image.AuthorID == nil || *image.AuthorID != userID {
		return nil, ErrUnauthorized
	}

	return repo.UpdateImageFields(id, updates)
}

// DeleteImage 无条件删除记录，不级联删除媒体对象
func (s *Service) DeleteImage(ctx context.Context, id uint) error {
	return s.repo.WithContext(ctx).DeleteImage(id)
}

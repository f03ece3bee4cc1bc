package app

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/anoixa/pixelwise/cache"
	"github.com/anoixa/pixelwise/config"
	"github.com/anoixa/pixelwise/database"
	"github.com/anoixa/pixelwise/database/repo/accounts"
	"github.com/anoixa/pixelwise/database/repo/images"
	"github.com/anoixa/pixelwise/internal/auth"
	"github.com/anoixa/pixelwise/internal/gallery"
	"github.com/anoixa/pixelwise/internal/generation"
	"github.com/anoixa/pixelwise/storage"
)

// Container 依赖注入容器 - 管理所有服务的生命周期
type Container struct {
	config         *config.Config
	db             *gorm.DB
	storageFactory *storage.Factory
	cacheProvider  cache.Provider

	AccountsRepo *accounts.Repository
	DevicesRepo  *accounts.DeviceRepository
	ImagesRepo   *images.Repository

	JWTService        *auth.JWTService
	LoginService      *auth.LoginService
	GenerationService *generation.Service
	GalleryService    *gallery.Service
}

// NewContainer 创建依赖注入容器
func NewContainer(cfg *config.Config) *Container {
	return &Container{config: cfg}
}

// Init 初始化数据库与全部服务
func (c *Container) Init(ctx context.Context) error {
	if err := c.initDatabase(); err != nil {
		return err
	}
	return c.initServices(ctx)
}

func (c *Container) initDatabase() error {
	db, err := database.New(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.db = db

	c.AccountsRepo = accounts.NewRepository(db)
	c.DevicesRepo = accounts.NewDeviceRepository(db)
	c.ImagesRepo = images.NewRepository(db)
	return nil
}

func (c *Container) initServices(ctx context.Context) error {
	cfg := c.config

	storageFactory, err := storage.NewFactory(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.storageFactory = storageFactory

	cacheProvider, err := cache.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	c.cacheProvider = cacheProvider

	jwtService, err := auth.NewJWTService(cfg.JwtSecret, cfg.JwtExpiresIn, cfg.JwtRefreshExpiresIn)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	c.JWTService = jwtService
	c.LoginService = auth.NewLoginService(c.AccountsRepo, c.DevicesRepo, jwtService)

	model, err := generation.NewGeminiClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to initialize gemini client: %w", err)
	}

	store := storageFactory.GetDefault()
	c.GenerationService = generation.NewService(model, store, c.ImagesRepo, cfg.GeminiTimeout, cfg.MediaUploadTimeout)

	builder := gallery.NewQueryBuilder(cfg.MediaNamespace, cfg.MediaSearchMaxItems)
	c.GalleryService = gallery.NewService(c.ImagesRepo, store, cacheProvider, builder, cfg.CacheSearchTTL, cfg.GalleryDefaultPageSize)

	return nil
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Store 获取默认媒体存储
func (c *Container) Store() storage.Provider {
	if c.storageFactory == nil {
		return nil
	}
	return c.storageFactory.GetDefault()
}

// Cache 获取缓存提供者
func (c *Container) Cache() cache.Provider {
	return c.cacheProvider
}

// Close 释放容器持有的资源
func (c *Container) Close() error {
	if c.cacheProvider != nil {
		if err := c.cacheProvider.Close(); err != nil {
			log.Printf("Error closing cache provider: %v", err)
		}
	}
	if c.db != nil {
		return database.Close(c.db)
	}
	return nil
}

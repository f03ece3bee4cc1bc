package cache

import (
	"fmt"
	"log"

	"github.com/anoixa/pixelwise/cache/memory"
	"github.com/anoixa/pixelwise/cache/redis"
	"github.com/anoixa/pixelwise/config"
)

// NewProvider 根据配置创建缓存提供者
// redis 初始化失败时回退到内存缓存
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.CacheType {
	case "redis":
		provider, err := redis.NewRedis(cfg.CacheRedisAddr, cfg.CacheRedisPassword, cfg.CacheRedisDB)
		if err != nil {
			log.Printf("Failed to connect to redis cache (%v), falling back to memory cache", err)
			return newMemoryProvider(cfg)
		}
		log.Println("Using redis cache provider")
		return provider, nil
	case "memory", "":
		return newMemoryProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}
}

// newMemoryProvider 创建内存缓存提供者
func newMemoryProvider(cfg *config.Config) (Provider, error) {
	provider, err := memory.NewMemory(memory.Config{
		NumCounters: 100000,
		MaxCost:     cfg.CacheMemoryMaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}
	log.Println("Using memory cache provider")
	return provider, nil
}

package core

import (
	"github.com/gin-gonic/gin"
)

func checkDatabaseHealth(deps *ServerDependencies) string {
	if deps.DB == nil {
		return "not initialized"
	}

	sqlDB, err := deps.DB.DB()
	if err != nil {
		return "error: " + err.Error()
	}
	if err := sqlDB.Ping(); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

// 缓存为可选组件，未配置时视为关闭而非故障
func checkCacheHealth(deps *ServerDependencies) string {
	if deps.CacheProvider == nil {
		return "disabled"
	}
	return "ok"
}

func checkStorageHealth(c *gin.Context, deps *ServerDependencies) string {
	if deps.Store == nil {
		return "not initialized"
	}
	if err := deps.Store.Health(c.Request.Context()); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

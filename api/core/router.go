package core

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anoixa/pixelwise/api/common"
	handlerAuth "github.com/anoixa/pixelwise/api/handler/auth"
	handlerImages "github.com/anoixa/pixelwise/api/handler/images"
	"github.com/anoixa/pixelwise/api/middleware"
	"github.com/anoixa/pixelwise/config"
)

// registerRoutes 注册所有路由
func registerRoutes(router *gin.Engine, deps *ServerDependencies, authRateLimiter, apiRateLimiter *middleware.IPRateLimiter) {
	imageHandler := handlerImages.NewHandler(deps.GenerationService, deps.GalleryService, deps.Store)
	loginHandler := handlerAuth.NewLoginHandler(deps.LoginService)

	// 基础路由
	router.GET("/health", func(c *gin.Context) {
		health := gin.H{
			"status":  "ok",
			"uptime":  time.Since(startTime).Round(time.Second).String(),
			"version": config.Version,
			"checks": gin.H{
				"database": checkDatabaseHealth(deps),
				"cache":    checkCacheHealth(deps),
				"storage":  checkStorageHealth(c, deps),
			},
		}
		httpStatus := http.StatusOK
		for _, checkResult := range health["checks"].(gin.H) {
			if result, ok := checkResult.(string); ok && result != "ok" && result != "disabled" {
				httpStatus = http.StatusServiceUnavailable
				break
			}
		}
		c.JSON(httpStatus, health)
	})
	router.GET("/version", func(c *gin.Context) {
		common.RespondSuccess(c, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})

	// 媒体对象公共访问
	mediaGroup := router.Group("/media")
	mediaGroup.Use(apiRateLimiter.Middleware())
	{
		mediaGroup.GET("/*identifier", imageHandler.ServeMedia)
	}

	apiGroup := router.Group("/api")
	apiGroup.Use(func(c *gin.Context) { // 所有API禁止缓存
		c.Header("Cache-Control", "no-store")
		c.Next()
	})
	{
		// 生成接口，匿名可用，携带令牌时记录作者
		// 并发上限约束在途的模型调用
		createGroup := apiGroup.Group("")
		createGroup.Use(apiRateLimiter.Middleware())
		createGroup.Use(middleware.NewConcurrencyLimiter(8).Middleware())
		createGroup.Use(middleware.OptionalAuth(deps.JWTService))
		{
			createGroup.POST("/createImage", imageHandler.CreateImage) // POST /api/createImage
		}

		authGroup := apiGroup.Group("/auth")
		authGroup.Use(authRateLimiter.Middleware())
		{
			authGroup.POST("/login", loginHandler.Login)     // POST /api/auth/login
			authGroup.POST("/refresh", loginHandler.Refresh) // POST /api/auth/refresh
			authGroup.POST("/logout", loginHandler.Logout)   // POST /api/auth/logout
		}

		v1 := apiGroup.Group("/v1")
		v1.Use(apiRateLimiter.Middleware())
		{
			imagesGroup := v1.Group("/images")
			{
				imagesGroup.GET("", imageHandler.ListImages)    // GET /api/v1/images
				imagesGroup.GET("/:id", imageHandler.GetImage)  // GET /api/v1/images/{id}

				// 修改类操作需要认证
				protected := imagesGroup.Group("")
				protected.Use(middleware.RequireAuth(deps.JWTService))
				{
					protected.PATCH("/:id", imageHandler.UpdateImage)   // PATCH /api/v1/images/{id}
					protected.DELETE("/:id", imageHandler.DeleteImage)  // DELETE /api/v1/images/{id}
				}
			}

			usersGroup := v1.Group("/users")
			{
				usersGroup.GET("/:id/images", imageHandler.ListUserImages) // GET /api/v1/users/{id}/images
			}
		}
	}
}

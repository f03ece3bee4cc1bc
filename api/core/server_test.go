package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/anoixa/pixelwise/config"
	"github.com/anoixa/pixelwise/database/models"
	"github.com/anoixa/pixelwise/database/repo/accounts"
	"github.com/anoixa/pixelwise/database/repo/images"
	"github.com/anoixa/pixelwise/internal/auth"
	"github.com/anoixa/pixelwise/internal/gallery"
	"github.com/anoixa/pixelwise/internal/generation"
	"github.com/anoixa/pixelwise/storage"
)

// stubModel 固定返回一段文本和一张图片
type stubModel struct {
	parts []generation.Part
}

func (m *stubModel) Generate(ctx context.Context, prompt string) ([]generation.Part, error) {
	return m.parts, nil
}

func testConfig() *config.Config {
	return &config.Config{
		ServerHost:          "127.0.0.1",
		ServerPort:          8080,
		RateLimitApiRPS:     100,
		RateLimitApiBurst:   200,
		RateLimitAuthRPS:    100,
		RateLimitAuthBurst:  200,
		RateLimitExpireTime: time.Minute,
	}
}

func setupTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.User{}, &models.Image{}, &models.Device{}))

	store, err := storage.NewLocalStorage(t.TempDir(), "pixelwise", "http://127.0.0.1:8080")
	assert.NoError(t, err)

	imagesRepo := images.NewRepository(db)
	accountsRepo := accounts.NewRepository(db)
	devicesRepo := accounts.NewDeviceRepository(db)

	jwtService, err := auth.NewJWTService("test-secret-key-0123456789abcdef0123456789", "30m", "168h")
	assert.NoError(t, err)
	loginService := auth.NewLoginService(accountsRepo, devicesRepo, jwtService)

	model := &stubModel{parts: []generation.Part{
		generation.TextPart{Text: "Generated."},
		generation.ImagePart{MIMEType: "image/png", Data: []byte("fake image bytes")},
	}}
	generationService := generation.NewService(model, store, imagesRepo, time.Minute, time.Minute)

	builder := gallery.NewQueryBuilder("pixelwise", 500)
	galleryService := gallery.NewService(imagesRepo, store, nil, builder, time.Minute, gallery.DefaultPageSize)

	deps := &ServerDependencies{
		Config:            testConfig(),
		DB:                db,
		Store:             store,
		GenerationService: generationService,
		GalleryService:    galleryService,
		JWTService:        jwtService,
		LoginService:      loginService,
	}

	router, cleanup := setupRouter(deps)
	t.Cleanup(cleanup)
	return router, db
}

func doJSON(router *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reader = bytes.NewBuffer(jsonBody)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// --- 测试基础路由 ---

func TestHealthAndVersion(t *testing.T) {
	router, _ := setupTestServer(t)

	w := doJSON(router, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	// 未配置缓存时健康检查不应降级
	assert.Contains(t, w.Body.String(), `"cache":"disabled"`)

	w = doJSON(router, http.MethodGet, "/version", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// --- 测试生成接口 ---

func TestCreateImageEndpoint(t *testing.T) {
	router, db := setupTestServer(t)

	w := doJSON(router, http.MethodPost, "/api/createImage", gin.H{"prompt": "a sunset"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Text   string   `json:"text"`
		Images []string `json:"images"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Generated.", resp.Text)
	assert.Len(t, resp.Images, 1)

	var count int64
	assert.NoError(t, db.Model(&models.Image{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateImageEndpoint_EmptyPrompt(t *testing.T) {
	router, _ := setupTestServer(t)

	w := doJSON(router, http.MethodPost, "/api/createImage", gin.H{"prompt": "  "}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)
}

func TestCreateImageEndpoint_SearchableByPrompt(t *testing.T) {
	router, _ := setupTestServer(t)

	w := doJSON(router, http.MethodPost, "/api/createImage", gin.H{"prompt": "a golden sunset over the sea"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 生成的图片应能通过提示词中的单词检索到
	w = doJSON(router, http.MethodGet, "/api/v1/images?page=1&searchQuery=sunset", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data        []json.RawMessage `json:"data"`
		SavedImages int64             `json:"savedImages"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, int64(1), resp.SavedImages)
}

// --- 测试画廊接口 ---

func TestListImagesEndpoint(t *testing.T) {
	router, db := setupTestServer(t)

	for i := 0; i < 12; i++ {
		assert.NoError(t, db.Create(&models.Image{
			Prompt:         fmt.Sprintf("prompt %d", i),
			MediaReference: fmt.Sprintf("pixelwise/ref-%d", i),
			Width:          models.DefaultImageWidth,
			Height:         models.DefaultImageHeight,
		}).Error)
	}

	w := doJSON(router, http.MethodGet, "/api/v1/images?page=1", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data        []json.RawMessage `json:"data"`
		TotalPage   int               `json:"totalPage"`
		SavedImages int64             `json:"savedImages"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 9)
	assert.Equal(t, 2, resp.TotalPage)
	assert.Equal(t, int64(12), resp.SavedImages)
}

func TestGetImageEndpoint_NotFound(t *testing.T) {
	router, _ := setupTestServer(t)

	w := doJSON(router, http.MethodGet, "/api/v1/images/9999", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)
}

// --- 测试认证保护 ---

func TestUpdateImage_RequiresAuth(t *testing.T) {
	router, _ := setupTestServer(t)

	w := doJSON(router, http.MethodPatch, "/api/v1/images/1", gin.H{"title": "x"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginAndUpdateFlow(t *testing.T) {
	router, db := setupTestServer(t)

	user, err := accounts.NewRepository(db).CreateUser("alice", "password123")
	assert.NoError(t, err)

	image := &models.Image{
		Prompt:         "a sunset",
		MediaReference: "pixelwise/ref-flow",
		Width:          models.DefaultImageWidth,
		Height:         models.DefaultImageHeight,
		AuthorID:       &user.ID,
	}
	assert.NoError(t, db.Create(image).Error)

	// 登录获取访问令牌
	w := doJSON(router, http.MethodPost, "/api/auth/login", gin.H{
		"username": "alice",
		"password": "password123",
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var loginResp struct {
		AccessToken string `json:"access_token"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginResp))
	assert.True(t, strings.HasPrefix(loginResp.AccessToken, "Bearer "))

	// 携带令牌更新
	w = doJSON(router, http.MethodPatch, fmt.Sprintf("/api/v1/images/%d", image.ID), gin.H{
		"title": "renamed",
	}, map[string]string{"Authorization": loginResp.AccessToken})
	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.Image
	assert.NoError(t, db.First(&updated, image.ID).Error)
	assert.Equal(t, "renamed", updated.Title)
}

func TestDeleteImageEndpoint(t *testing.T) {
	router, db := setupTestServer(t)

	_, err := accounts.NewRepository(db).CreateUser("alice", "password123")
	assert.NoError(t, err)

	image := &models.Image{
		Prompt:         "a sunset",
		MediaReference: "pixelwise/ref-delete",
		Width:          models.DefaultImageWidth,
		Height:         models.DefaultImageHeight,
	}
	assert.NoError(t, db.Create(image).Error)

	w := doJSON(router, http.MethodPost, "/api/auth/login", gin.H{
		"username": "alice",
		"password": "password123",
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var loginResp struct {
		AccessToken string `json:"access_token"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginResp))
	headers := map[string]string{"Authorization": loginResp.AccessToken}

	w = doJSON(router, http.MethodDelete, fmt.Sprintf("/api/v1/images/%d", image.ID), nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	assert.NoError(t, db.Model(&models.Image{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	// 删除不存在的记录返回 404 而非 500
	w = doJSON(router, http.MethodDelete, "/api/v1/images/9999", nil, headers)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)
}

// --- 测试媒体服务 ---

func TestServeMediaEndpoint(t *testing.T) {
	router, _ := setupTestServer(t)

	// 先通过生成接口产生媒体对象
	w := doJSON(router, http.MethodPost, "/api/createImage", gin.H{"prompt": "a sunset"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Images []string `json:"images"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Images, 1)

	mediaPath := strings.TrimPrefix(resp.Images[0], "http://127.0.0.1:8080")
	req := httptest.NewRequest(http.MethodGet, mediaPath, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fake image bytes", rec.Body.String())
}

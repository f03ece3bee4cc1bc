package generation

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/anoixa/pixelwise/database/models"
	"github.com/anoixa/pixelwise/database/repo/images"
	"github.com/anoixa/pixelwise/storage"
)

// stubModel 返回预置片段的模型桩
type stubModel struct {
	parts []Part
	err   error
	calls int
}

func (m *stubModel) Generate(ctx context.Context, prompt string) ([]Part, error) {
	m.calls++
	return m.parts, m.err
}

// stubUploader 记录上传次数的存储桩
type stubUploader struct {
	mu        sync.Mutex
	uploads   int
	failAfter int // 第 failAfter 次之后的上传全部失败，0 表示不失败
}

func (s *stubUploader) Upload(ctx context.Context, payload storage.Payload) (*storage.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads++
	if s.failAfter > 0 && s.uploads > s.failAfter {
		return nil, fmt.Errorf("upload rejected")
	}
	// 引用由载荷长度推导，与并发上传的完成顺序无关
	ref := stubRef(payload.Data)
	return &storage.UploadResult{
		Reference: ref,
		SecureURL: "https://cdn.example.com/" + ref,
	}, nil
}

func stubRef(data []byte) string {
	return fmt.Sprintf("pixelwise/obj-%d", len(data))
}

func (s *stubUploader) Search(ctx context.Context, query storage.SearchQuery) ([]string, error) {
	return nil, nil
}

func (s *stubUploader) Open(ctx context.Context, reference string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubUploader) Delete(ctx context.Context, reference string) error { return nil }
func (s *stubUploader) Health(ctx context.Context) error                   { return nil }
func (s *stubUploader) Name() string                                       { return "stub" }

func setupGenerationService(t *testing.T, model ModelClient, store storage.Provider) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.Image{})
	assert.NoError(t, err)

	repo := images.NewRepository(db)
	return NewService(model, store, repo, time.Minute, time.Minute), db
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	assert.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func countImages(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	assert.NoError(t, db.Model(&models.Image{}).Count(&count).Error)
	return count
}

// --- 测试完整生成流程 ---

func TestCreateImage_Success(t *testing.T) {
	data := pngBytes(t, 64, 32)
	model := &stubModel{parts: []Part{
		TextPart{Text: "Here is your image."},
		ImagePart{MIMEType: "image/png", Data: data},
	}}
	store := &stubUploader{}
	service, db := setupGenerationService(t, model, store)

	result, err := service.CreateImage(context.Background(), "a sunset over the sea", nil)
	assert.NoError(t, err)
	assert.Equal(t, "Here is your image.", result.Text)
	assert.Len(t, result.Images, 1)
	assert.Equal(t, "https://cdn.example.com/"+stubRef(data), result.Images[0])

	var record models.Image
	assert.NoError(t, db.First(&record).Error)
	assert.Equal(t, "a sunset over the sea", record.Prompt)
	assert.Equal(t, "a sunset over the sea", record.Title)
	assert.Equal(t, stubRef(data), record.MediaReference)
	assert.Equal(t, 64, record.Width)
	assert.Equal(t, 32, record.Height)
	assert.Nil(t, record.AuthorID)
}

func TestCreateImage_MultipleImagesPersistFirstOnly(t *testing.T) {
	model := &stubModel{parts: []Part{
		ImagePart{MIMEType: "image/png", Data: []byte("a")},
		TextPart{Text: "first"},
		ImagePart{MIMEType: "image/png", Data: []byte("bb")},
		TextPart{Text: "second"},
		ImagePart{MIMEType: "image/png", Data: []byte("ccc")},
	}}
	store := &stubUploader{}
	service, db := setupGenerationService(t, model, store)

	result, err := service.CreateImage(context.Background(), "three variations", nil)
	assert.NoError(t, err)

	// 全部图片上传并按响应顺序返回，但只落库一条记录
	assert.Equal(t, 3, store.uploads)
	assert.Equal(t, []string{
		"https://cdn.example.com/pixelwise/obj-1",
		"https://cdn.example.com/pixelwise/obj-2",
		"https://cdn.example.com/pixelwise/obj-3",
	}, result.Images)
	assert.Equal(t, "first\nsecond", result.Text)
	assert.Equal(t, int64(1), countImages(t, db))

	// 落库记录引用首张图片
	var record models.Image
	assert.NoError(t, db.First(&record).Error)
	assert.Equal(t, "pixelwise/obj-1", record.MediaReference)
}

func TestCreateImage_WithAuthor(t *testing.T) {
	model := &stubModel{parts: []Part{
		ImagePart{MIMEType: "image/png", Data: pngBytes(t, 10, 10)},
	}}
	service, db := setupGenerationService(t, model, &stubUploader{})

	user := &models.User{Username: "alice", Password: "hash"}
	assert.NoError(t, db.Create(user).Error)

	_, err := service.CreateImage(context.Background(), "a portrait", &user.ID)
	assert.NoError(t, err)

	var record models.Image
	assert.NoError(t, db.First(&record).Error)
	assert.Equal(t, user.ID, *record.AuthorID)
}

// --- 测试校验与失败路径 ---

func TestCreateImage_EmptyPrompt(t *testing.T) {
	model := &stubModel{}
	store := &stubUploader{}
	service, db := setupGenerationService(t, model, store)

	_, err := service.CreateImage(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Equal(t, 0, model.calls)
	assert.Equal(t, 0, store.uploads)
	assert.Equal(t, int64(0), countImages(t, db))
}

func TestCreateImage_NoImagesGenerated(t *testing.T) {
	model := &stubModel{parts: []Part{
		TextPart{Text: "I cannot draw that."},
	}}
	store := &stubUploader{}
	service, db := setupGenerationService(t, model, store)

	_, err := service.CreateImage(context.Background(), "something odd", nil)
	assert.ErrorIs(t, err, ErrGenerationEmpty)
	assert.Equal(t, 0, store.uploads)
	assert.Equal(t, int64(0), countImages(t, db))
}

func TestCreateImage_ModelError(t *testing.T) {
	model := &stubModel{err: fmt.Errorf("quota exceeded")}
	service, db := setupGenerationService(t, model, &stubUploader{})

	_, err := service.CreateImage(context.Background(), "a sunset", nil)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrGenerationEmpty)
	assert.Equal(t, int64(0), countImages(t, db))
}

func TestCreateImage_UploadFailure(t *testing.T) {
	model := &stubModel{parts: []Part{
		ImagePart{MIMEType: "image/png", Data: pngBytes(t, 10, 10)},
		ImagePart{MIMEType: "image/png", Data: pngBytes(t, 10, 10)},
	}}
	store := &stubUploader{failAfter: 1}
	service, db := setupGenerationService(t, model, store)

	// 任一上传失败则整次请求失败，不落库
	_, err := service.CreateImage(context.Background(), "two images", nil)
	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.Equal(t, int64(0), countImages(t, db))
}

func TestCreateImage_UndecodableImageUsesDefaults(t *testing.T) {
	model := &stubModel{parts: []Part{
		ImagePart{MIMEType: "image/png", Data: []byte("not a real image")},
	}}
	service, db := setupGenerationService(t, model, &stubUploader{})

	_, err := service.CreateImage(context.Background(), "a sunset", nil)
	assert.NoError(t, err)

	var record models.Image
	assert.NoError(t, db.First(&record).Error)
	assert.Equal(t, models.DefaultImageWidth, record.Width)
	assert.Equal(t, models.DefaultImageHeight, record.Height)
}

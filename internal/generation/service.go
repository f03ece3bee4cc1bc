package generation

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/anoixa/pixelwise/database/models"
	"github.com/anoixa/pixelwise/database/repo/images"
	"github.com/anoixa/pixelwise/storage"
)

// Result 单次生成的结果
type Result struct {
	// Text 模型返回的说明文本，已去除首尾空白
	Text string
	// Images 上传后的图片访问地址，保持模型响应顺序
	Images []string
}

// Service 图片生成服务，串联模型调用、媒体上传与元数据落库
type Service struct {
	model         ModelClient
	store         storage.Provider
	repo          *images.Repository
	generateTO    time.Duration
	uploadTO      time.Duration
	defaultWidth  int
	defaultHeight int
}

// NewService 创建生成服务
func NewService(model ModelClient, store storage.Provider, repo *images.Repository, generateTimeout, uploadTimeout time.Duration) *Service {
	if generateTimeout <= 0 {
		generateTimeout = 60 * time.Second
	}
	if uploadTimeout <= 0 {
		uploadTimeout = 30 * time.Second
	}
	return &Service{
		model:         model,
		store:         store,
		repo:          repo,
		generateTO:    generateTimeout,
		uploadTO:      uploadTimeout,
		defaultWidth:  models.DefaultImageWidth,
		defaultHeight: models.DefaultImageHeight,
	}
}

// CreateImage 执行完整生成流程：校验提示词、调用模型、并行上传全部图片、
// 仅以首张图片落库一条记录。任一上传失败则整次请求失败，已上传对象不回收。
func (s *Service) CreateImage(ctx context.Context, prompt string, authorID *uint) (*Result, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrInvalidRequest
	}

	generateCtx, cancel := context.WithTimeout(ctx, s.generateTO)
	defer cancel()

	parts, err := s.model.Generate(generateCtx, prompt)
	if err != nil {
		return nil, fmt.Errorf("model generation failed: %w", err)
	}

	var textBuilder strings.Builder
	var imageParts []ImagePart
	for _, part := range parts {
		switch p := part.(type) {
		case TextPart:
			textBuilder.WriteString(p.Text)
			textBuilder.WriteString("\n")
		case ImagePart:
			imageParts = append(imageParts, p)
		}
	}

	if len(imageParts) == 0 {
		return nil, ErrGenerationEmpty
	}

	uploads, err := s.uploadAll(ctx, imageParts)
	if err != nil {
		return nil, err
	}

	width, height := s.probeDimensions(imageParts[0].Data)

	record := &models.Image{
		Prompt:         prompt,
		Title:          prompt,
		MediaReference: uploads[0].Reference,
		SecureURL:      uploads[0].SecureURL,
		Width:          width,
		Height:         height,
		AuthorID:       authorID,
	}
	if err := s.repo.WithContext(ctx).CreateImage(record); err != nil {
		log.Printf("Failed to persist image metadata, uploaded media left orphaned: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	urls := make([]string, len(uploads))
	for i, upload := range uploads {
		urls[i] = upload.SecureURL
	}

	return &Result{
		Text:   strings.TrimSpace(textBuilder.String()),
		Images: urls,
	}, nil
}

// uploadAll 并行上传全部图片，保持与模型响应一致的顺序
func (s *Service) uploadAll(ctx context.Context, parts []ImagePart) ([]*storage.UploadResult, error) {
	uploadCtx, cancel := context.WithTimeout(ctx, s.uploadTO)
	defer cancel()

	results := make([]*storage.UploadResult, len(parts))
	group, groupCtx := errgroup.WithContext(uploadCtx)
	for i, part := range parts {
		i, part := i, part
		group.Go(func() error {
			result, err := s.store.Upload(groupCtx, storage.Payload{
				MIMEType: part.MIMEType,
				Data:     part.Data,
			})
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return results, nil
}

// probeDimensions 从图片字节解析尺寸，解析失败时使用默认值
func (s *Service) probeDimensions(data []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return s.defaultWidth, s.defaultHeight
	}
	return cfg.Width, cfg.Height
}

package images

import (
	"github.com/anoixa/pixelwise/database/models"
	"github.com/anoixa/pixelwise/internal/gallery"
	"github.com/anoixa/pixelwise/internal/generation"
	"github.com/anoixa/pixelwise/storage"
)

// Handler 图片处理器
type Handler struct {
	generationService *generation.Service
	galleryService    *gallery.Service
	store             storage.Provider
}

// NewHandler 创建图片处理器
func NewHandler(generationService *generation.Service, galleryService *gallery.Service, store storage.Provider) *Handler {
	return &Handler{
		generationService: generationService,
		galleryService:    galleryService,
		store:             store,
	}
}

// ImageDTO 图片响应体
type ImageDTO struct {
	ID             uint   `json:"id"`
	Prompt         string `json:"prompt"`
	Title          string `json:"title"`
	URL            string `json:"url"`
	MediaReference string `json:"media_reference"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	AltText        string `json:"alt_text"`
	Tags           string `json:"tags"`
	Author         string `json:"author,omitempty"`
	CreatedAt      int64  `json:"created_at"`
	UpdatedAt      int64  `json:"updated_at"`
}

func toImageDTO(image *models.Image) *ImageDTO {
	if image == nil {
		return nil
	}

	dto := &ImageDTO{
		ID:             image.ID,
		Prompt:         image.Prompt,
		Title:          image.Title,
		URL:            image.SecureURL,
		MediaReference: image.MediaReference,
		Width:          image.Width,
		Height:         image.Height,
		AltText:        image.AltText,
		Tags:           image.Tags,
		CreatedAt:      image.CreatedAt.Unix(),
		UpdatedAt:      image.UpdatedAt.Unix(),
	}
	if image.Author != nil {
		dto.Author = image.Author.Username
	}
	return dto
}

func toImageDTOs(imageList []*models.Image) []*ImageDTO {
	dtos := make([]*ImageDTO, 0, len(imageList))
	for _, image := range imageList {
		dtos = append(dtos, toImageDTO(image))
	}
	return dtos
}

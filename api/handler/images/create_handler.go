package images

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anoixa/pixelwise/api/common"
	"github.com/anoixa/pixelwise/api/middleware"
	"github.com/anoixa/pixelwise/internal/generation"
)

type createImageRequestBody struct {
	Prompt string `json:"prompt"`
	UserID *uint  `json:"userId"`
}

type createImageResponse struct {
	Text   string   `json:"text"`
	Images []string `json:"images"`
}

// CreateImage 生成图片
// 匿名可用；携带有效 Bearer 令牌时作者以令牌为准，忽略请求体里的 userId
func (h *Handler) CreateImage(c *gin.Context) {
	var body createImageRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Prompt is required")
		return
	}

	authorID := body.UserID
	if tokenUserID := middleware.CurrentUserID(c); tokenUserID != nil {
		authorID = tokenUserID
	}

	result, err := h.generationService.CreateImage(c.Request.Context(), body.Prompt, authorID)
	if err != nil {
		h.respondCreateError(c, err)
		return
	}

	common.RespondSuccess(c, createImageResponse{
		Text:   result.Text,
		Images: result.Images,
	})
}

func (h *Handler) respondCreateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, generation.ErrInvalidRequest):
		common.RespondError(c, http.StatusBadRequest, "Prompt is required")
	case errors.Is(err, generation.ErrGenerationEmpty):
		common.RespondError(c, http.StatusBadRequest, "No images were generated")
	case errors.Is(err, generation.ErrUploadFailed):
		log.Printf("[CreateImage] upload failed: %v", err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to upload image")
	case errors.Is(err, generation.ErrPersistence):
		log.Printf("[CreateImage] persistence failed: %v", err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to save image")
	default:
		log.Printf("[CreateImage] generation failed: %v", err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to generate image")
	}
}

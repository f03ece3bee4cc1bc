package images

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/anoixa/pixelwise/api/common"
	"github.com/anoixa/pixelwise/internal/richtext"
	"github.com/anoixa/pixelwise/storage"
)

type imageDetailResponse struct {
	Data        *ImageDTO       `json:"data"`
	Description []richtext.Node `json:"description"`
}

// GetImage 获取单张图片详情，提示词渲染为富文本节点
func (h *Handler) GetImage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid image ID")
		return
	}

	image, err := h.galleryService.GetImage(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.RespondError(c, http.StatusNotFound, "Image not found")
			return
		}
		common.RespondError(c, http.StatusInternalServerError, "Failed to get image")
		return
	}

	description := image.AltText
	if description == "" {
		description = image.Prompt
	}

	common.RespondSuccess(c, imageDetailResponse{
		Data:        toImageDTO(image),
		Description: richtext.Format(description),
	})
}

// ServeMedia 从媒体存储读取对象并写入响应
// 路由为 /media/*identifier，引用形如 <namespace>/<uuid>.<ext>
func (h *Handler) ServeMedia(c *gin.Context) {
	reference := strings.TrimPrefix(c.Param("identifier"), "/")
	if !storage.IsValidReference(reference) {
		common.RespondError(c, http.StatusBadRequest, "Invalid media reference")
		return
	}

	reader, err := h.store.Open(c.Request.Context(), reference)
	if err != nil {
		common.RespondError(c, http.StatusNotFound, "Media not found")
		return
	}
	defer reader.Close()

	c.Header("Content-Type", mimeForReference(reference))
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}

func mimeForReference(reference string) string {
	switch {
	case strings.HasSuffix(reference, ".png"):
		return "image/png"
	case strings.HasSuffix(reference, ".jpg"), strings.HasSuffix(reference, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(reference, ".webp"):
		return "image/webp"
	case strings.HasSuffix(reference, ".gif"):
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

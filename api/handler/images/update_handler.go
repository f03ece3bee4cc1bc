package images

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/anoixa/pixelwise/api/common"
	"github.com/anoixa/pixelwise/api/middleware"
	"github.com/anoixa/pixelwise/internal/gallery"
)

type updateImageRequestBody struct {
	Title   *string `json:"title"`
	AltText *string `json:"alt_text"`
	Tags    *string `json:"tags"`
}

// UpdateImage 更新图片元数据，仅作者本人可操作
func (h *Handler) UpdateImage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid image ID")
		return
	}

	userID := middleware.CurrentUserID(c)
	if userID == nil {
		common.RespondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var body updateImageRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if body.Title != nil {
		updates["title"] = *body.Title
	}
	if body.AltText != nil {
		updates["alt_text"] = *body.AltText
	}
	if body.Tags != nil {
		updates["tags"] = *body.Tags
	}
	if len(updates) == 0 {
		common.RespondError(c, http.StatusBadRequest, "No fields to update")
		return
	}

	updated, err := h.galleryService.UpdateImage(c.Request.Context(), uint(id), *userID, updates)
	if err != nil {
		if errors.Is(err, gallery.ErrUnauthorized) {
			common.RespondError(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		common.RespondError(c, http.StatusInternalServerError, "Failed to update image")
		return
	}

	common.RespondSuccess(c, gin.H{"data": toImageDTO(updated)})
}

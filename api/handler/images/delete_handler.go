package images

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/anoixa/pixelwise/api/common"
)

// DeleteImage 删除图片记录，媒体对象保留在存储中
func (h *Handler) DeleteImage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid image ID")
		return
	}

	if err := h.galleryService.DeleteImage(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.RespondError(c, http.StatusNotFound, "Image not found")
			return
		}
		common.RespondError(c, http.StatusInternalServerError, "Failed to delete image")
		return
	}

	common.RespondSuccess(c, gin.H{"deleted": true})
}

package images

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/anoixa/pixelwise/api/common"
)

type galleryListResponse struct {
	Data        []*ImageDTO `json:"data"`
	TotalPage   int         `json:"totalPage"`
	SavedImages int64       `json:"savedImages"`
}

type userImagesResponse struct {
	Data       []*ImageDTO `json:"data"`
	TotalPages int         `json:"totalPages"`
}

// ListImages 获取画廊分页列表，支持 searchQuery 检索
func (h *Handler) ListImages(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	searchQuery := c.Query("searchQuery")

	result, err := h.galleryService.GetAllImages(c.Request.Context(), page, searchQuery, limit)
	if err != nil {
		log.Printf("[ListImages] failed to get gallery page: %v", err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to get image list")
		return
	}

	common.RespondSuccess(c, galleryListResponse{
		Data:        toImageDTOs(result.Data),
		TotalPage:   result.TotalPages,
		SavedImages: result.SavedImages,
	})
}

// ListUserImages 获取指定用户的图片分页列表
func (h *Handler) ListUserImages(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	result, err := h.galleryService.GetUserImages(c.Request.Context(), uint(userID), page, limit)
	if err != nil {
		log.Printf("[ListUserImages] failed to get images for user %d: %v", userID, err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to get image list")
		return
	}

	common.RespondSuccess(c, userImagesResponse{
		Data:       toImageDTOs(result.Data),
		TotalPages: result.TotalPages,
	})
}

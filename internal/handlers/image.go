package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"inkwell/internal/apperr"
	"inkwell/internal/services"
)

// Uploader stores one image under prefix.
type Uploader interface {
	Upload(ctx context.Context, prefix string, r io.Reader, size int64) (*services.ImageUploadResult, error)
}

// ImageHandler 图片处理 Handler
type ImageHandler struct {
	uploader Uploader
}

// NewImageHandler 创建 ImageHandler 实例
func NewImageHandler(uploader Uploader) *ImageHandler {
	return &ImageHandler{uploader: uploader}
}

// Upload 处理图片上传请求 (POST /api/upload)，用于文章插图
// 需要用户已登录
func (h *ImageHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		Fail(c, apperr.Validation("请选择要上传的图片"))
		return
	}
	defer file.Close()

	// 类型和大小由 ImageUploader 校验
	result, err := h.uploader.Upload(c.Request.Context(), "images", file, header.Size)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

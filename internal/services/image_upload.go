package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
)

// 图片一年内不变，路径带随机 id
const imageCacheControl = "public, max-age=31536000, immutable"

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageUploadResult 上传结果
type ImageUploadResult struct {
	URL  string `json:"url"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

type ImageUploader struct {
	storage  ObjectStorage
	maxBytes int64
	now      func() time.Time
}

func NewImageUploader(storage ObjectStorage, maxBytes int64) *ImageUploader {
	return &ImageUploader{storage: storage, maxBytes: maxBytes, now: time.Now}
}

// Upload 校验并上传图片。类型由文件内容判断，不信任客户端声明的 Content-Type
func (u *ImageUploader) Upload(ctx context.Context, prefix string, r io.Reader, size int64) (*ImageUploadResult, error) {
	if size <= 0 {
		return nil, apperr.Validation("文件为空")
	}
	if size > u.maxBytes {
		return nil, apperr.Validation(fmt.Sprintf("图片不能超过 %d MB", u.maxBytes>>20))
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, apperr.Wrap(apperr.CodeValidation, "读取文件失败", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, apperr.Validation("只支持 jpg、png、gif、webp 图片")
	}

	path := fmt.Sprintf("%s/%s/%s%s", prefix, u.now().Format("2006/01"), uuid.NewString(), ext)
	body := io.MultiReader(bytes.NewReader(head), r)
	url, err := u.storage.Upload(ctx, path, body, size, contentType, UploadOptions{
		CacheControl: imageCacheControl,
		Upsert:       false,
	})
	if err != nil {
		return nil, err
	}
	return &ImageUploadResult{URL: url, Path: path, Size: size}, nil
}

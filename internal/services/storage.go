package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"

	"inkwell/internal/apperr"
	"inkwell/internal/config"
)

// UploadOptions mirrors the {cacheControl, upsert} options of the object store contract.
type UploadOptions struct {
	CacheControl string
	// Upsert 为 false 时，目标已存在则返回 conflict
	Upsert bool
}

// ObjectStorage stores an object and returns its public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string, opts UploadOptions) (string, error)
}

type MinioStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioStorage connects to MinIO and makes sure the bucket exists.
func NewMinioStorage(ctx context.Context, cfg *config.Config) (*MinioStorage, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.MinioBucket, err)
		}
		log.Infof("[storage] created bucket %s", cfg.MinioBucket)
	}

	publicURL := cfg.MinioPublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.MinioEndpoint, cfg.MinioBucket)
	}

	return &MinioStorage{
		client:    client,
		bucket:    cfg.MinioBucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

func (s *MinioStorage) Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string, opts UploadOptions) (string, error) {
	path = strings.TrimLeft(path, "/")
	if path == "" {
		return "", apperr.Validation("存储路径不能为空")
	}

	if !opts.Upsert {
		_, err := s.client.StatObject(ctx, s.bucket, path, minio.StatObjectOptions{})
		switch {
		case err == nil:
			return "", apperr.Conflict("文件已存在")
		case minio.ToErrorResponse(err).Code != "NoSuchKey":
			return "", storageErr(err)
		}
	}

	_, err := s.client.PutObject(ctx, s.bucket, path, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: opts.CacheControl,
	})
	if err != nil {
		return "", storageErr(err)
	}
	log.Debugf("[storage] uploaded %s (%d bytes)", path, size)
	return s.publicURL + "/" + path, nil
}

func storageErr(err error) error {
	resp := minio.ToErrorResponse(err)
	switch resp.StatusCode {
	case http.StatusForbidden:
		return apperr.Wrap(apperr.CodePermissionDenied, "存储服务拒绝访问", err)
	case http.StatusNotFound:
		return apperr.Wrap(apperr.CodeNotFound, "存储桶不存在", err)
	}
	return apperr.Wrap(apperr.CodeUnavailable, "存储服务不可用", err)
}

// disabledStorage is used when no object store is configured.
type disabledStorage struct{}

func (disabledStorage) Upload(context.Context, string, io.Reader, int64, string, UploadOptions) (string, error) {
	return "", apperr.New(apperr.CodeUnavailable, "未配置对象存储")
}

// DisabledStorage answers every upload with unavailable.
func DisabledStorage() ObjectStorage { return disabledStorage{} }

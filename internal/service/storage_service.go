package service

import (
	"context"
	"fmt"
	"io"
	"neonclub_backend/internal/config"
	"neonclub_backend/internal/util"
	"neonclub_backend/pkg/logger"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MediaStore 课程缩略图、课时视频的对象存储后端，key 形如 "videos/<uuid>.mp4"
type MediaStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	URL(key string) string
}

type localStore struct {
	root string
}

func (s *localStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// 本地文件由 app 中的 /uploads 静态路由提供
func (s *localStore) URL(key string) string {
	return "/uploads/" + key
}

type minioStore struct {
	client *minio.Client
	bucket string
}

func newMinioStore(cfg *config.StorageConfig) (*minioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.MinioBucket, err)
		}
	}
	return &minioStore{client: client, bucket: cfg.MinioBucket}, nil
}

func (s *minioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

func (s *minioStore) URL(key string) string {
	return s.client.EndpointURL().String() + "/" + path.Join(s.bucket, key)
}

type ossStore struct {
	bucket   *oss.Bucket
	endpoint string
}

func newOSSStore(cfg *config.StorageConfig) (*ossStore, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	bucket, err := client.Bucket(cfg.OSSBucket)
	if err != nil {
		return nil, err
	}
	return &ossStore{bucket: bucket, endpoint: strings.TrimPrefix(cfg.OSSEndpoint, "https://")}, nil
}

func (s *ossStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	return s.bucket.PutObject(key, r, oss.ContentType(contentType))
}

func (s *ossStore) URL(key string) string {
	return fmt.Sprintf("https://%s.%s/%s", s.bucket.BucketName, s.endpoint, key)
}

type StorageService struct {
	Store MediaStore
}

// NewStorageService 远端存储初始化失败时回退到本地目录
func NewStorageService(cfg *config.StorageConfig) *StorageService {
	var (
		store MediaStore
		err   error
	)
	switch cfg.Type {
	case util.StorageMinio:
		store, err = newMinioStore(cfg)
	case util.StorageOSS:
		store, err = newOSSStore(cfg)
	}
	if err != nil {
		logger.Log.Warn("object storage unavailable, falling back to local",
			zap.String("type", cfg.Type), zap.Error(err))
		store = nil
	}
	if store == nil {
		store = &localStore{root: cfg.LocalPath}
	}
	return &StorageService{Store: store}
}

func (s *StorageService) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if err := s.Store.Put(ctx, key, r, size, contentType); err != nil {
		return "", err
	}
	return s.Store.URL(key), nil
}

// UploadFile 上传本地临时文件（转码、截图产物）
func (s *StorageService) UploadFile(ctx context.Context, key, localPath, contentType string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	return s.Upload(ctx, key, f, info.Size(), contentType)
}

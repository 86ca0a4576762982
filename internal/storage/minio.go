package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"aiResume/internal/config"
)

// MinIOStore 将文件保存在 MinIO Bucket 的某个前缀下。
type MinIOStore struct {
	client     *minio.Client
	bucketName string
	prefix     string
	display    string
}

// NewMinIOClient 根据配置初始化 MinIO 客户端，并确保目标 Bucket 存在。
func NewMinIOClient(ctx context.Context, cfg config.MinIOConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if !cfg.AutoCreateBucket {
			return nil, fmt.Errorf("bucket %q does not exist (auto create disabled)", cfg.Bucket)
		}
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
		}
	}
	return client, nil
}

// NewMinIOStore stores objects under "<cfg.Prefix>/<area>/" in cfg.Bucket.
// area is also the directory name reported by Path.
func NewMinIOStore(client *minio.Client, cfg config.MinIOConfig, area string) *MinIOStore {
	prefix := strings.Trim(path.Join(strings.Trim(cfg.Prefix, "/"), area), "/")
	return &MinIOStore{
		client:     client,
		bucketName: cfg.Bucket,
		prefix:     prefix + "/",
		display:    area,
	}
}

func (s *MinIOStore) key(name string) string {
	return s.prefix + name
}

func (s *MinIOStore) Path(name string) string {
	return path.Join(s.display, name)
}

// Save uploads the object. MinIO only exposes an object after the upload completes.
func (s *MinIOStore) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (ObjectInfo, error) {
	if !ValidName(name) {
		return ObjectInfo{}, fmt.Errorf("invalid object name %q", name)
	}
	if contentType == "" {
		contentType = ContentTypeFor(name)
	}
	if size <= 0 {
		size = -1
	}
	info, err := s.client.PutObject(ctx, s.bucketName, s.key(name), r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("put object %q: %w", name, err)
	}
	return ObjectInfo{
		Name:        name,
		Size:        info.Size,
		ModTime:     info.LastModified,
		ContentType: contentType,
	}, nil
}

func (s *MinIOStore) Open(ctx context.Context, name string) (io.ReadCloser, ObjectInfo, error) {
	if !ValidName(name) {
		return nil, ObjectInfo{}, ErrNotFound
	}
	obj, err := s.client.GetObject(ctx, s.bucketName, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, objectError("get", name, err)
	}
	// GetObject is lazy; Stat surfaces a missing key.
	st, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, ObjectInfo{}, objectError("stat", name, err)
	}
	contentType := st.ContentType
	if contentType == "" {
		contentType = ContentTypeFor(name)
	}
	return obj, ObjectInfo{
		Name:        name,
		Size:        st.Size,
		ModTime:     st.LastModified,
		ContentType: contentType,
	}, nil
}

// Delete 删除指定对象，对象不存在视为成功。
func (s *MinIOStore) Delete(ctx context.Context, name string) error {
	if !ValidName(name) {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucketName, s.key(name), minio.RemoveObjectOptions{}); err != nil {
		if err = objectError("remove", name, err); errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}

func (s *MinIOStore) List(ctx context.Context) ([]ObjectInfo, error) {
	objCh := s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Prefix:    s.prefix,
		Recursive: false,
	})
	out := make([]ObjectInfo, 0, 32)
	for object := range objCh {
		if object.Err != nil {
			return nil, fmt.Errorf("list objects under %q: %w", s.prefix, object.Err)
		}
		name := strings.TrimPrefix(object.Key, s.prefix)
		if !ValidName(name) {
			continue
		}
		out = append(out, ObjectInfo{
			Name:        name,
			Size:        object.Size,
			ModTime:     object.LastModified,
			ContentType: object.ContentType,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

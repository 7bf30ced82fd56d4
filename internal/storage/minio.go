package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/config"
)

// Client 封装 MinIO 客户端，保存上传的简历原件与暂存的 PDF。
type Client struct {
	internalClient *minio.Client
	bucketName     string
}

// ObjectMeta 描述 Bucket 中对象的关键信息。
type ObjectMeta struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// NewClient 根据配置初始化 MinIO 客户端，并确保目标 Bucket 存在。
func NewClient(ctx context.Context, cfg config.MinIOConfig) (*Client, error) {
	internalClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := internalClient.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if !cfg.AutoCreateBucket {
			return nil, fmt.Errorf("bucket %q does not exist (auto create disabled)", cfg.Bucket)
		}
		if err := internalClient.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &Client{
		internalClient: internalClient,
		bucketName:     cfg.Bucket,
	}, nil
}

// UploadFile 将对象上传到私有 Bucket。
func (c *Client) UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := c.internalClient.PutObject(ctx, c.bucketName, objectName, reader, size, opts); err != nil {
		return fmt.Errorf("put object %q: %w", objectName, err)
	}
	return nil
}

// PutBytes 上传内存中的数据。
func (c *Client) PutBytes(ctx context.Context, objectName string, data []byte, contentType string) error {
	return c.UploadFile(ctx, objectName, bytes.NewReader(data), int64(len(data)), contentType)
}

// ReadObject 读取整个对象；对象不存在时返回 ErrObjectNotFound。
func (c *Client) ReadObject(ctx context.Context, objectKey string) ([]byte, error) {
	obj, err := c.internalClient.GetObject(ctx, c.bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		if IsNoSuchKey(err) {
			return nil, fmt.Errorf("get object %q: %w", objectKey, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("get object %q: %w", objectKey, err)
	}
	defer obj.Close()

	// GetObject 是惰性的，读取时才会暴露 NoSuchKey
	data, err := io.ReadAll(obj)
	if err != nil {
		if IsNoSuchKey(err) {
			return nil, fmt.Errorf("read object %q: %w", objectKey, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("read object %q: %w", objectKey, err)
	}
	return data, nil
}

// ListObjects 列出指定前缀下的全部对象元数据。
func (c *Client) ListObjects(ctx context.Context, prefix string) ([]ObjectMeta, error) {
	objCh := c.internalClient.ListObjects(ctx, c.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	result := make([]ObjectMeta, 0, 16)
	for object := range objCh {
		if object.Err != nil {
			return nil, fmt.Errorf("list objects under %q: %w", prefix, object.Err)
		}
		result = append(result, ObjectMeta{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
		})
	}
	return result, nil
}

// DeleteObject 删除指定对象。
// 若对象不存在会被视为成功（幂等）。
func (c *Client) DeleteObject(ctx context.Context, objectKey string) error {
	objectKey = strings.TrimSpace(objectKey)
	if objectKey == "" {
		return nil
	}
	if err := c.internalClient.RemoveObject(ctx, c.bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		if IsNoSuchKey(err) {
			return nil
		}
		return fmt.Errorf("remove object %q: %w", objectKey, err)
	}
	return nil
}

// Ping 检查 Bucket 是否可访问，供健康检查使用。
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.internalClient.BucketExists(ctx, c.bucketName); err != nil {
		return fmt.Errorf("minio ping: %w", err)
	}
	return nil
}

package repository

import (
	"bytes"
	"context"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
)

// MinioCache 每个键一个对象：<prefix>/<key>.json
type MinioCache struct {
	client *minio.Client
	bucket string
	prefix string
}

func NewMinioCache(ctx context.Context, client *minio.Client, bucket, prefix string) (*MinioCache, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}
	return &MinioCache{client: client, bucket: bucket, prefix: prefix}, nil
}

func (c *MinioCache) objectName(key string) string {
	return path.Join(c.prefix, key+".json")
}

func (c *MinioCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, c.objectName(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, false, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (c *MinioCache) Set(ctx context.Context, key string, value []byte) error {
	_, err := c.client.PutObject(ctx, c.bucket, c.objectName(key), bytes.NewReader(value), int64(len(value)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}

func (c *MinioCache) Close() error {
	return nil
}

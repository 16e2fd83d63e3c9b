package repository

import "context"

// LocalCache 本地持久缓存，远端不可用时作为回退
type LocalCache interface {
	// Get 第二个返回值表示键是否存在
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

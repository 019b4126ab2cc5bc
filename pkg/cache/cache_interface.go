package cache

import (
	"context"
	"time"
)

// Cache interface định nghĩa contract cho cache layer
// Cho phép swap implementation (Redis, in-memory)
type Cache interface {
	// Get lấy data từ cache và unmarshal vào dest
	// found = false nghĩa là cache miss, dest không bị thay đổi
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set lưu data vào cache với TTL
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete xóa các keys khỏi cache
	Delete(ctx context.Context, keys ...string) error

	// DeletePattern xóa mọi key match pattern
	DeletePattern(ctx context.Context, pattern string) error

	Exists(ctx context.Context, key string) (bool, error)

	// Ping kiểm tra connection
	Ping(ctx context.Context) error
}

package redis

import (
	"errors"
	"time"

	"github.com/metaland/auction-api/base/ctx"
)

var (
	// ErrNotFound is returned when the key does not exist
	ErrNotFound = errors.New("key not found")
)

// Service is the redis cache surface the cache providers build on
type Service interface {
	Get(context ctx.Ctx, key string) ([]byte, error)
	Set(context ctx.Ctx, key string, val []byte, expire time.Duration) error
	Del(context ctx.Ctx, ks ...string) (int, error)
	Exists(context ctx.Ctx, key string) (bool, error)
	Incrby(context ctx.Ctx, key string, val int) (int64, error)

	// TTL returns remaining seconds; 0 when the key has no expiry
	TTL(context ctx.Ctx, key string) (int, error)
}

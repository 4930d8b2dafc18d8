package keys

import (
	"strings"
)

const (
	// PfxAuction is used for prefixing auction read cache keys
	PfxAuction = "auction"
)

// CustomKey is used to join the customized key by components with specified delimiter
func CustomKey(delimiter string, components ...string) string {
	return strings.Join(components, delimiter)
}

// RedisKey is used to join the redis key by components
func RedisKey(components ...string) string {
	return CustomKey(":", components...)
}

// GetPrefix returns the first component of a redis key
func GetPrefix(key string) string {
	idx := strings.Index(key, ":")
	if idx < 0 {
		return key
	}
	return key[:idx]
}

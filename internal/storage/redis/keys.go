package redis

import "fmt"

// storeKey returns the Redis key for a store blob
func storeKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", prefix, key)
}

// Package redis wraps go-redis with dyne logging and component lifecycle,
// and provides a storage.Storage backend so window results can be cached
// in Redis and shared between workers:
//
//	import _ "github.com/kbukum/dyne/redis"
//
//	store, err := storage.New(storage.Config{Provider: storage.ProviderRedis, Prefix: "dyne"},
//	    &redis.Config{Addr: "localhost:6379"}, log)
package redis

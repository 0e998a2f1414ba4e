package testutil

import (
	"context"
	"strconv"
	"sync"
	"time"

	"insurepay/services/auth"
)

// InMemoryKV implements auth.KeyValueStore with a settable clock.
type InMemoryKV struct {
	mu      sync.Mutex
	values  map[string]string
	expires map[string]time.Time
	Now     func() time.Time
}

var _ auth.KeyValueStore = (*InMemoryKV)(nil)

func NewInMemoryKV() *InMemoryKV {
	return &InMemoryKV{
		values:  make(map[string]string),
		expires: make(map[string]time.Time),
		Now:     time.Now,
	}
}

func (kv *InMemoryKV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.values[key] = value
	if ttl > 0 {
		kv.expires[key] = kv.Now().Add(ttl)
	} else {
		delete(kv.expires, key)
	}
	return nil
}

func (kv *InMemoryKV) Get(_ context.Context, key string) (string, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	v, ok := kv.values[key]
	if !ok {
		return "", auth.ErrCacheMiss
	}
	if exp, ok := kv.expires[key]; ok && !kv.Now().Before(exp) {
		delete(kv.values, key)
		delete(kv.expires, key)
		return "", auth.ErrCacheMiss
	}
	return v, nil
}

func (kv *InMemoryKV) Del(_ context.Context, keys ...string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	for _, key := range keys {
		delete(kv.values, key)
		delete(kv.expires, key)
	}
	return nil
}

func (kv *InMemoryKV) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	var n int64
	if v, ok := kv.values[key]; ok {
		if exp, ok := kv.expires[key]; !ok || kv.Now().Before(exp) {
			n, _ = strconv.ParseInt(v, 10, 64)
		} else {
			delete(kv.expires, key)
		}
	}
	n++
	kv.values[key] = strconv.FormatInt(n, 10)
	if n == 1 && ttl > 0 {
		kv.expires[key] = kv.Now().Add(ttl)
	}
	return n, nil
}

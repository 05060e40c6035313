package redis

import (
	"context"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

// fakeClient is an in-memory RedisClient for unit tests. TTLs are
// tracked but only enforced on read.
type fakeClient struct {
	mu      sync.Mutex
	values  map[string]string
	counts  map[string]int64
	expires map[string]time.Time
}

var _ RedisClient = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{
		values:  map[string]string{},
		counts:  map[string]int64{},
		expires: map[string]time.Time{},
	}
}

func (f *fakeClient) expired(key string) bool {
	exp, ok := f.expires[key]
	return ok && time.Now().After(exp)
}

func (f *fakeClient) Ping(context.Context) error { return nil }

func (f *fakeClient) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value.(string)
	if ttl != 0 {
		f.expires[key] = time.Now().Add(ttl)
	}
	return nil
}

func (f *fakeClient) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.expired(key) {
		delete(f.values, key)
		return "", goredis.Nil
	}
	v, ok := f.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (f *fakeClient) Incr(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.expired(key) {
		delete(f.counts, key)
		delete(f.expires, key)
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeClient) Expire(_ context.Context, key string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expires[key] = time.Now().Add(ttl)
	return nil
}

func (f *fakeClient) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.values, k)
		delete(f.counts, k)
		delete(f.expires, k)
	}
	return nil
}

func (f *fakeClient) Close() error { return nil }

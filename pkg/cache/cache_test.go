package cache_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yeisme/ingestvault/pkg/cache"
)

type sourceSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// mapKVStore 内存 KV, setErr 非 nil 时写入失败.
type mapKVStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	setErr error
}

func newMapKVStore() *mapKVStore {
	return &mapKVStore{data: make(map[string][]byte)}
}

func (m *mapKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if value, ok := m.data[key]; ok {
		return value, nil
	}

	return nil, errors.New("key not found")
}

func (m *mapKVStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value

	return nil
}

func (m *mapKVStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)

	return nil
}

func (m *mapKVStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]

	return ok, nil
}

func (m *mapKVStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		keys = append(keys, key)
	}

	return keys, nil
}

func (m *mapKVStore) Close() error { return nil }

// TestGetSetRoundTrip 写入后按类型读回.
func TestGetSetRoundTrip(t *testing.T) {
	c := cache.NewCache(newMapKVStore())
	ctx := context.Background()

	if _, err := cache.Get[sourceSummary](ctx, c, "source:summary:9"); err == nil {
		t.Error("expected miss for absent key")
	}

	want := sourceSummary{ID: 9, Name: "clickstream", Kind: "kafka"}
	if err := cache.Set(ctx, c, "source:summary:9", want, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := cache.Get[sourceSummary](ctx, c, "source:summary:9")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

// TestDeleteAndExists 删除后键不再存在.
func TestDeleteAndExists(t *testing.T) {
	c := cache.NewCache(newMapKVStore())
	ctx := context.Background()

	if err := cache.Set(ctx, c, "source:summary:3", sourceSummary{ID: 3}, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if ok, _ := c.Exists(ctx, "source:summary:3"); !ok {
		t.Fatal("key should exist before delete")
	}

	if err := c.Delete(ctx, "source:summary:3"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if ok, _ := c.Exists(ctx, "source:summary:3"); ok {
		t.Error("key should be gone after delete")
	}
}

// TestGetOrSetCachesResult 首次回源, 之后命中缓存.
func TestGetOrSetCachesResult(t *testing.T) {
	c := cache.NewCache(newMapKVStore())
	ctx := context.Background()

	calls := 0
	getter := func() (sourceSummary, error) {
		calls++
		return sourceSummary{ID: 5, Name: "audit-log", Kind: "s3"}, nil
	}

	first, err := cache.GetOrSet(ctx, c, "source:summary:5", getter, time.Minute)
	if err != nil {
		t.Fatalf("GetOrSet: %v", err)
	}

	second, err := cache.GetOrSet(ctx, c, "source:summary:5", getter, time.Minute)
	if err != nil {
		t.Fatalf("GetOrSet: %v", err)
	}

	if calls != 1 {
		t.Errorf("getter called %d times, want 1", calls)
	}

	if first != second {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
}

// TestGetOrSetGetterError 回源失败时透传错误, 不写缓存.
func TestGetOrSetGetterError(t *testing.T) {
	store := newMapKVStore()
	c := cache.NewCache(store)

	wantErr := errors.New("source lookup failed")
	_, err := cache.GetOrSet(context.Background(), c, "source:summary:404", func() (sourceSummary, error) {
		return sourceSummary{}, wantErr
	}, time.Minute)

	if !errors.Is(err, wantErr) {
		t.Fatalf("got %v, want %v", err, wantErr)
	}

	if len(store.data) != 0 {
		t.Error("failed lookup must not populate the cache")
	}
}

// TestGetOrSetWriteFailureTolerated 缓存写失败时仍返回回源结果.
func TestGetOrSetWriteFailureTolerated(t *testing.T) {
	store := newMapKVStore()
	store.setErr = errors.New("kv unavailable")
	c := cache.NewCache(store)

	got, err := cache.GetOrSet(context.Background(), c, "source:summary:7", func() (sourceSummary, error) {
		return sourceSummary{ID: 7, Name: "metrics", Kind: "http"}, nil
	}, time.Minute)
	if err != nil {
		t.Fatalf("GetOrSet: %v", err)
	}

	if got.ID != 7 {
		t.Errorf("got summary %+v", got)
	}
}

// TestGetOrSetSingleflight 同一 key 的并发未命中只回源一次.
func TestGetOrSetSingleflight(t *testing.T) {
	c := cache.NewCache(newMapKVStore())
	ctx := context.Background()

	var calls atomic.Int32

	getter := func() (sourceSummary, error) {
		calls.Add(1)
		time.Sleep(50 * time.Millisecond)

		return sourceSummary{ID: 1, Name: "clickstream", Kind: "kafka"}, nil
	}

	const workers = 16

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if _, err := cache.GetOrSet(ctx, c, "source:summary:1", getter, time.Minute); err != nil {
				t.Errorf("GetOrSet: %v", err)
			}
		}()
	}

	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("getter called %d times, want 1", n)
	}
}

// TestClear 清空后所有键消失.
func TestClear(t *testing.T) {
	store := newMapKVStore()
	c := cache.NewCache(store)
	ctx := context.Background()

	for _, id := range []uint{1, 2, 3} {
		if err := cache.Set(ctx, c, fmt.Sprintf("source:summary:%d", id), sourceSummary{ID: id}, 0); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if len(store.data) != 0 {
		t.Errorf("%d keys remain after Clear", len(store.data))
	}
}

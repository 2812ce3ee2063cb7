package kv

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/yeisme/ingestvault/pkg/configs"
)

// TestMemoryKVRoundTrip 基本读写删语义.
func TestMemoryKVRoundTrip(t *testing.T) {
	store := NewMemoryKV()
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); err == nil {
		t.Error("expected error for absent key")
	}

	if err := store.Set(ctx, "a", []byte("alpha"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if string(got) != "alpha" {
		t.Errorf("got %q", got)
	}

	// 返回的是副本, 修改不影响存储
	got[0] = 'X'

	again, _ := store.Get(ctx, "a")
	if string(again) != "alpha" {
		t.Errorf("stored value mutated: %q", again)
	}

	if err := store.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if ok, _ := store.Exists(ctx, "a"); ok {
		t.Error("key should be gone after delete")
	}
}

// TestMemoryKVTTL 过期键读取和 Exists 都不可见.
func TestMemoryKVTTL(t *testing.T) {
	store := NewMemoryKV()
	ctx := context.Background()

	if err := store.Set(ctx, "short", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, err := store.Get(ctx, "short"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	if _, err := store.Get(ctx, "short"); err == nil {
		t.Error("expired key should not be readable")
	}

	if ok, _ := store.Exists(ctx, "short"); ok {
		t.Error("expired key should not exist")
	}
}

// TestMemoryKVKeys Keys 过滤过期键并支持 * 通配.
func TestMemoryKVKeys(t *testing.T) {
	store := NewMemoryKV()
	ctx := context.Background()

	_ = store.Set(ctx, "live", []byte("1"), 0)
	_ = store.Set(ctx, "dead", []byte("1"), time.Nanosecond)

	time.Sleep(time.Millisecond)

	keys, err := store.Keys(ctx, "*")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}

	if len(keys) != 1 || keys[0] != "live" {
		t.Errorf("got keys %v, want [live]", keys)
	}
}

// TestTTLEnvelope 信封编码解码与过期判定.
func TestTTLEnvelope(t *testing.T) {
	raw := []byte(`{"id":1}`)

	// ttl<=0 原样透传
	plain, err := wrapTTL(raw, 0)
	if err != nil {
		t.Fatalf("wrapTTL: %v", err)
	}

	if string(plain) != string(raw) {
		t.Errorf("non-ttl value should pass through unchanged")
	}

	value, expired, err := unwrapTTL(plain, time.Now())
	if err != nil || expired || string(value) != string(raw) {
		t.Errorf("unwrap plain: value=%q expired=%v err=%v", value, expired, err)
	}

	// 带 TTL 的信封, 过期前可读
	wrapped, err := wrapTTL(raw, time.Hour)
	if err != nil {
		t.Fatalf("wrapTTL: %v", err)
	}

	value, expired, err = unwrapTTL(wrapped, time.Now())
	if err != nil || expired {
		t.Fatalf("unwrap fresh envelope: expired=%v err=%v", expired, err)
	}

	if string(value) != string(raw) {
		t.Errorf("got %q, want %q", value, raw)
	}

	// 过了过期时刻判定为 expired
	_, expired, err = unwrapTTL(wrapped, time.Now().Add(2*time.Hour))
	if err != nil {
		t.Fatalf("unwrap expired envelope: %v", err)
	}

	if !expired {
		t.Error("envelope past its deadline should report expired")
	}
}

// TestGroupcacheKVRoundTrip groupcache 后端的本地读写.
func TestGroupcacheKVRoundTrip(t *testing.T) {
	store, err := NewGroupcacheKV(&configs.GroupcacheKVConfig{
		Name:       fmt.Sprintf("kv-test-%d", time.Now().UnixNano()),
		CacheBytes: 1 << 20,
	})
	if err != nil {
		t.Fatalf("NewGroupcacheKV: %v", err)
	}

	ctx := context.Background()

	if err := store.Set(ctx, "g", []byte("value"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, "g")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if string(got) != "value" {
		t.Errorf("got %q", got)
	}
}

// BenchmarkMemoryKV 内存后端的读写基准.
func BenchmarkMemoryKV(b *testing.B) {
	store := NewMemoryKV()
	ctx := context.Background()
	payload := make([]byte, 1024)

	b.ReportAllocs()

	for i := 0; b.Loop(); i++ {
		key := fmt.Sprintf("bench-%d", i)
		if err := store.Set(ctx, key, payload, 0); err != nil {
			b.Fatalf("set: %v", err)
		}

		if _, err := store.Get(ctx, key); err != nil {
			b.Fatalf("get: %v", err)
		}

		if err := store.Delete(ctx, key); err != nil {
			b.Fatalf("delete: %v", err)
		}
	}
}

// 需要本地 Redis 时设置 ENABLE_REDIS_TEST=1 (地址取 REDIS_ADDR, 默认 127.0.0.1:6379).
func TestRedisKVRoundTrip(t *testing.T) {
	if os.Getenv("ENABLE_REDIS_TEST") == "" {
		t.Skip("set ENABLE_REDIS_TEST=1 to enable")
	}

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}

	ctx := context.Background()

	store, err := NewRedisKV(ctx, &configs.RedisKVConfig{Addr: addr})
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}

	defer func() { _ = store.Close() }()

	if err := store.Set(ctx, "kv-test", []byte("redis"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, "kv-test")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if string(got) != "redis" {
		t.Errorf("got %q", got)
	}

	_ = store.Delete(ctx, "kv-test")
}

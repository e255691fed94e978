package infrastructure

import (
	"fmt"
	"testing"
	"time"
)

// ========================================
// Tests: InMemoryCache
// ========================================

func TestInMemoryCache_Expiration(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := newInMemoryCache(func() time.Time { return now })

	cache.Set("k", 42, time.Minute)
	if v, ok := cache.Get("k"); !ok || v.(int) != 42 {
		t.Fatalf("Get = %v, %v", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := cache.Get("k"); ok {
		t.Error("l'entrée devrait être expirée")
	}
	if cache.Len() != 0 {
		t.Errorf("Len = %d, want 0", cache.Len())
	}

	cache.purgeExpired()
	if len(cache.entries) != 0 {
		t.Errorf("purgeExpired a laissé %d entrées", len(cache.entries))
	}
}

func TestInMemoryCache_ZeroTTLDisablesCaching(t *testing.T) {
	cache := NewInMemoryCache()
	defer cache.Close()

	cache.Set("k", "v", 0)
	if _, ok := cache.Get("k"); ok {
		t.Error("un TTL nul ne devrait rien enregistrer")
	}
}

func TestShardedCache_ClearAndDelete(t *testing.T) {
	cache := NewShardedCache(4)
	defer cache.Close()

	for i := 0; i < 20; i++ {
		cache.Set(fmt.Sprintf("key%d", i), i, time.Minute)
	}
	if cache.Len() != 20 {
		t.Fatalf("Len = %d, want 20", cache.Len())
	}

	cache.Delete("key3")
	if _, ok := cache.Get("key3"); ok {
		t.Error("key3 devrait être supprimée")
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Len après Clear = %d, want 0", cache.Len())
	}
}

func TestNewShardedCache_PanicsOnInvalidCount(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewShardedCache(3) devrait paniquer")
		}
	}()
	NewShardedCache(3)
}

func TestCacheKeyBuilder(t *testing.T) {
	key := NewCacheKeyBuilder("top-materials").
		Add("Atlas Retail Group").
		Add("").
		AddInt(2024).
		AddInt(0).
		Build()

	want := "top-materials:Atlas Retail Group:-:2024:0"
	if key != want {
		t.Errorf("Build() = %q, want %q", key, want)
	}

	a := NewCacheKeyBuilder("op").Add("a:b").Add("c").Build()
	b := NewCacheKeyBuilder("op").Add("a").Add("b:c").Build()
	if a == b {
		t.Errorf("collision de clés: %q", a)
	}
}

// ========================================
// Benchmarks: InMemoryCache vs ShardedCache
// ========================================

// BenchmarkInMemoryCache_Get_HighContention teste Get avec haute contention
func BenchmarkInMemoryCache_Get_HighContention(b *testing.B) {
	cache := NewInMemoryCache()
	defer cache.Close()
	cache.Set("shared_key", "shared_value", 5*time.Minute)

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = cache.Get("shared_key")
		}
	})
}

// BenchmarkShardedCache_Get_HighContention teste Get réparti sur 16 shards
func BenchmarkShardedCache_Get_HighContention(b *testing.B) {
	cache := NewShardedCache(16)
	defer cache.Close()
	for i := 0; i < 1000; i++ {
		cache.Set(fmt.Sprintf("key%d", i), "value", 5*time.Minute)
	}

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_, _ = cache.Get(fmt.Sprintf("key%d", i%1000))
			i++
		}
	})
}

// BenchmarkCacheKeyBuilder mesure la construction d'une clé
func BenchmarkCacheKeyBuilder(b *testing.B) {
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = NewCacheKeyBuilder("top-customers").Add("USA").AddInt(2024).AddInt(4).AddInt(5).Build()
	}
}

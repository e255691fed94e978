package infrastructure

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// CacheEntry représente une entrée de cache avec expiration
type CacheEntry struct {
	Value      any
	Expiration time.Time
}

// IsExpired vérifie si l'entrée est expirée à l'instant donné
func (e CacheEntry) IsExpired(now time.Time) bool {
	return now.After(e.Expiration)
}

// Cache interface pour l'abstraction du cache de résultats
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Delete(key string)
	Clear()
	Len() int
}

// InMemoryCache implémentation en mémoire du cache avec TTL
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewInMemoryCache crée un nouveau cache en mémoire.
// Un nettoyage des entrées expirées tourne tant que Close n'est pas appelé.
func NewInMemoryCache() *InMemoryCache {
	cache := newInMemoryCache(time.Now)
	go cache.cleanupExpired(time.Minute)
	return cache
}

func newInMemoryCache(now func() time.Time) *InMemoryCache {
	return &InMemoryCache{
		entries: make(map[string]CacheEntry),
		now:     now,
		stop:    make(chan struct{}),
	}
}

// Get récupère une valeur du cache
func (c *InMemoryCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || entry.IsExpired(c.now()) {
		return nil, false
	}
	return entry.Value, true
}

// Set ajoute ou met à jour une valeur. Un TTL ≤ 0 n'enregistre rien.
func (c *InMemoryCache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = CacheEntry{
		Value:      value,
		Expiration: c.now().Add(ttl),
	}
}

// Delete supprime une entrée du cache
func (c *InMemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Clear vide complètement le cache
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]CacheEntry)
}

// Len retourne le nombre d'entrées non expirées
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	n := 0
	for _, entry := range c.entries {
		if !entry.IsExpired(now) {
			n++
		}
	}
	return n
}

// Close arrête le nettoyage périodique
func (c *InMemoryCache) Close() {
	c.once.Do(func() { close(c.stop) })
}

// purgeExpired supprime les entrées expirées
func (c *InMemoryCache) purgeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if entry.IsExpired(now) {
			delete(c.entries, key)
		}
	}
}

// cleanupExpired supprime périodiquement les entrées expirées
func (c *InMemoryCache) cleanupExpired(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.purgeExpired()
		}
	}
}

// ShardedCache cache avec sharding pour réduire la contention
// entre requêtes concurrentes
type ShardedCache struct {
	shards    []*InMemoryCache
	shardMask uint32
}

// NewShardedCache crée un cache avec sharding (shardCount puissance de 2)
func NewShardedCache(shardCount int) *ShardedCache {
	if shardCount <= 0 || (shardCount&(shardCount-1)) != 0 {
		panic("shardCount must be a power of 2")
	}

	shards := make([]*InMemoryCache, shardCount)
	for i := range shards {
		shards[i] = NewInMemoryCache()
	}

	return &ShardedCache{
		shards:    shards,
		shardMask: uint32(shardCount - 1),
	}
}

// getShard retourne le shard approprié pour une clé
func (sc *ShardedCache) getShard(key string) *InMemoryCache {
	return sc.shards[fnv32(key)&sc.shardMask]
}

// Get récupère une valeur du cache
func (sc *ShardedCache) Get(key string) (any, bool) {
	return sc.getShard(key).Get(key)
}

// Set ajoute ou met à jour une valeur dans le cache
func (sc *ShardedCache) Set(key string, value any, ttl time.Duration) {
	sc.getShard(key).Set(key, value, ttl)
}

// Delete supprime une entrée du cache
func (sc *ShardedCache) Delete(key string) {
	sc.getShard(key).Delete(key)
}

// Clear vide tous les shards
func (sc *ShardedCache) Clear() {
	for _, shard := range sc.shards {
		shard.Clear()
	}
}

// Len retourne le nombre total d'entrées non expirées
func (sc *ShardedCache) Len() int {
	n := 0
	for _, shard := range sc.shards {
		n += shard.Len()
	}
	return n
}

// Close arrête le nettoyage de tous les shards
func (sc *ShardedCache) Close() {
	for _, shard := range sc.shards {
		shard.Close()
	}
}

// fnv32 calcule un hash FNV-1a 32-bit pour le sharding
func fnv32(key string) uint32 {
	hash := uint32(2166136261)
	const prime32 = uint32(16777619)
	for i := 0; i < len(key); i++ {
		hash ^= uint32(key[i])
		hash *= prime32
	}
	return hash
}

// ========================================
// Clés de cache
// ========================================

// CacheKeyBuilder construit des clés de cache cohérentes: "op:part:part"
type CacheKeyBuilder struct {
	sb strings.Builder
}

// NewCacheKeyBuilder crée un builder pour une opération
func NewCacheKeyBuilder(operation string) *CacheKeyBuilder {
	b := &CacheKeyBuilder{}
	b.sb.WriteString(operation)
	return b
}

// Add ajoute une partie texte à la clé (une valeur vide est notée "-")
func (b *CacheKeyBuilder) Add(part string) *CacheKeyBuilder {
	b.sb.WriteByte(':')
	if part == "" {
		b.sb.WriteByte('-')
		return b
	}
	// Le séparateur est échappé pour éviter les collisions
	b.sb.WriteString(strings.ReplaceAll(part, ":", `\:`))
	return b
}

// AddInt ajoute un entier à la clé
func (b *CacheKeyBuilder) AddInt(value int) *CacheKeyBuilder {
	b.sb.WriteByte(':')
	b.sb.WriteString(strconv.Itoa(value))
	return b
}

// Build construit la clé finale
func (b *CacheKeyBuilder) Build() string {
	return b.sb.String()
}

package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/SentriLabs/SentriAuth/pkg/common"
	"github.com/SentriLabs/SentriAuth/pkg/domain/threat"
	"github.com/go-redis/redis/v8"
)

// Cache wraps the shared redis client plus a set of named in-process TTL
// maps used as read-through caches.
type Cache struct {
	client     *redis.Client
	localCache sync.Map
	ttlMaps    sync.Map
	ttl        time.Duration
}

const (
	ThreatKeyPattern  = "threat:%s"
	ProfileKeyPattern = "profile:%s"
)

func NewCache(config common.CacheConfig) (*Cache, error) {
	options := &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	}
	if config.TLS {
		options.TLSConfig = &tls.Config{
			InsecureSkipVerify: true, // #nosec G402
		}
	}
	client := redis.NewClient(options)

	return &Cache{
		client:     client,
		localCache: sync.Map{},
		ttlMaps:    sync.Map{},
		ttl:        5 * time.Minute,
	}, nil
}

// NewCacheWithClient builds a Cache around an existing client. Used by
// tests with redismock.
func NewCacheWithClient(client *redis.Client) *Cache {
	return &Cache{
		client: client,
		ttl:    5 * time.Minute,
	}
}

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	if value, ok := c.localCache.Load(key); ok {
		str, err := safeStringCast(value)
		if err != nil {
			return "", fmt.Errorf("cache value error: %w", err)
		}
		return str, nil
	}
	return c.client.Get(ctx, key).Result()
}

func (c *Cache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.client.Set(ctx, key, value, expiration).Err(); err != nil {
		return err
	}
	c.localCache.Store(key, value)
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return err
	}
	c.localCache.Delete(key)
	return nil
}

func (c *Cache) Client() *redis.Client {
	return c.client
}

func (c *Cache) CreateTTLMap(name string, ttl time.Duration) *TTLMap {
	ttlMap := NewTTLMap(ttl)
	c.ttlMaps.Store(name, ttlMap)
	return ttlMap
}

func (c *Cache) GetTTLMap(name string) *TTLMap {
	if value, ok := c.ttlMaps.Load(name); ok {
		ttlMap, err := safeTTLMapCast(value)
		if err != nil {
			return nil
		}
		return ttlMap
	}
	return nil
}

// SaveThreat mirrors a threat record into redis so dashboard reads survive
// a restart even before the next disk snapshot.
func (c *Cache) SaveThreat(ctx context.Context, record *threat.Intelligence) error {
	key := fmt.Sprintf(ThreatKeyPattern, record.IP)
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, string(data), common.ThreatCacheTTL)
}

func (c *Cache) GetThreat(ctx context.Context, ip string) (*threat.Intelligence, error) {
	key := fmt.Sprintf(ThreatKeyPattern, ip)
	res, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	record := new(threat.Intelligence)
	if err := json.Unmarshal([]byte(res), record); err != nil {
		return nil, err
	}
	return record, nil
}

func safeStringCast(value interface{}) (string, error) {
	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("invalid type assertion to string")
	}
	return str, nil
}

func safeTTLMapCast(value interface{}) (*TTLMap, error) {
	ttlMap, ok := value.(*TTLMap)
	if !ok {
		return nil, fmt.Errorf("invalid type assertion to TTLMap")
	}
	return ttlMap, nil
}

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/AjayAlluri/Toyota-Financing/internal/config"
	"github.com/AjayAlluri/Toyota-Financing/internal/metrics"
)

const keyPrefix = "toyota-financing:quote:"

// Entry is a cached recommendation document together with where it came from.
type Entry struct {
	Document   json.RawMessage `json:"document"`
	Normalized bool            `json:"normalized"`
	Provider   string          `json:"provider"`
	Model      string          `json:"model"`
}

// QuoteCache хранит ответы модели по хэшу анкеты. Ошибки Redis считаются промахом.
type QuoteCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New создает кэш поверх готового клиента Redis.
func New(client *redis.Client, ttl time.Duration) *QuoteCache {
	return &QuoteCache{client: client, ttl: ttl}
}

// Open подключается к Redis по конфигурации. Для пустого адреса возвращает nil.
func Open(ctx context.Context, cfg config.CacheConfig) (*QuoteCache, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, eris.Wrapf(err, "cache: ping redis at %s", cfg.Addr)
	}

	return New(client, cfg.TTL), nil
}

// Key возвращает SHA-256 канонического JSON представления значения.
func Key(value any) (string, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return "", eris.Wrap(err, "cache: encode key")
	}

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// Get returns the entry stored under key. A nil cache always misses.
func (c *QuoteCache) Get(ctx context.Context, key string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}

	payload, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zap.L().Warn("quote cache read failed", zap.String("key", key), zap.Error(err))
			metrics.QuoteCacheLookups.WithLabelValues("error").Inc()
			return Entry{}, false
		}
		metrics.QuoteCacheLookups.WithLabelValues("miss").Inc()
		return Entry{}, false
	}

	var entry Entry
	if err := json.Unmarshal(payload, &entry); err != nil {
		zap.L().Warn("quote cache entry is corrupted", zap.String("key", key), zap.Error(err))
		metrics.QuoteCacheLookups.WithLabelValues("error").Inc()
		return Entry{}, false
	}

	metrics.QuoteCacheLookups.WithLabelValues("hit").Inc()
	return entry, true
}

// Set сохраняет запись с TTL из конфигурации. Ошибка только логируется.
func (c *QuoteCache) Set(ctx context.Context, key string, entry Entry) {
	if c == nil {
		return
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		zap.L().Warn("quote cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, keyPrefix+key, payload, c.ttl).Err(); err != nil {
		zap.L().Warn("quote cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Ping проверяет соединение с Redis.
func (c *QuoteCache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return eris.Wrap(c.client.Ping(ctx).Err(), "cache: ping")
}

func (c *QuoteCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

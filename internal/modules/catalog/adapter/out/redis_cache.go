package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"granth/internal/modules/catalog/domain"
	catalogout "granth/internal/modules/catalog/port/out"
)

const redisBookPrefix = "granth:book:"

// RedisBookCache shares book lookups between processes reading the same
// hosted catalog.
type RedisBookCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisBookCache(client *redis.Client, ttl time.Duration) catalogout.BookCache {
	return &RedisBookCache{client: client, ttl: ttl}
}

type cachedBook struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	PDFURL    string    `json:"pdf_url"`
	Pages     int       `json:"pages"`
	Language  string    `json:"language"`
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *RedisBookCache) Get(ctx context.Context, slug string) (domain.Book, bool, error) {
	raw, err := c.client.Get(ctx, redisBookPrefix+slug).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Book{}, false, nil
	}
	if err != nil {
		return domain.Book{}, false, fmt.Errorf("redis get book: %w", err)
	}
	var cb cachedBook
	if err := json.Unmarshal(raw, &cb); err != nil {
		return domain.Book{}, false, fmt.Errorf("decode cached book: %w", err)
	}
	return domain.Book(cb), true, nil
}

func (c *RedisBookCache) Put(ctx context.Context, book domain.Book) error {
	raw, err := json.Marshal(cachedBook(book))
	if err != nil {
		return fmt.Errorf("encode cached book: %w", err)
	}
	if err := c.client.Set(ctx, redisBookPrefix+book.Slug, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set book: %w", err)
	}
	return nil
}

func (c *RedisBookCache) Invalidate(ctx context.Context, slug string) error {
	if err := c.client.Del(ctx, redisBookPrefix+slug).Err(); err != nil {
		return fmt.Errorf("redis del book: %w", err)
	}
	return nil
}

package out

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"granth/internal/modules/catalog/domain"
	catalogout "granth/internal/modules/catalog/port/out"
)

// MemoryBookCache keeps recently opened books for ttl, evicting the least
// recently used past size entries.
type MemoryBookCache struct {
	lru *expirable.LRU[string, domain.Book]
}

func NewMemoryBookCache(size int, ttl time.Duration) catalogout.BookCache {
	return &MemoryBookCache{lru: expirable.NewLRU[string, domain.Book](size, nil, ttl)}
}

func (c *MemoryBookCache) Get(_ context.Context, slug string) (domain.Book, bool, error) {
	book, ok := c.lru.Get(slug)
	return book, ok, nil
}

func (c *MemoryBookCache) Put(_ context.Context, book domain.Book) error {
	c.lru.Add(book.Slug, book)
	return nil
}

func (c *MemoryBookCache) Invalidate(_ context.Context, slug string) error {
	c.lru.Remove(slug)
	return nil
}

package out_test

import (
	"context"
	"testing"
	"time"

	"granth/internal/modules/catalog/adapter/out"
	"granth/internal/modules/catalog/domain"
)

func TestMemoryBookCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cache := out.NewMemoryBookCache(1, time.Hour)

	if _, ok, _ := cache.Get(ctx, "gita"); ok {
		t.Fatalf("expected miss on empty cache")
	}
	_ = cache.Put(ctx, domain.Book{Slug: "gita", Title: "Gita"})
	if b, ok, _ := cache.Get(ctx, "gita"); !ok || b.Title != "Gita" {
		t.Fatalf("expected hit, got %+v %v", b, ok)
	}

	_ = cache.Put(ctx, domain.Book{Slug: "upanishad"})
	if _, ok, _ := cache.Get(ctx, "gita"); ok {
		t.Fatalf("expected eviction past size")
	}
	_ = cache.Invalidate(ctx, "upanishad")
	if _, ok, _ := cache.Get(ctx, "upanishad"); ok {
		t.Fatalf("expected invalidated entry to be gone")
	}
}

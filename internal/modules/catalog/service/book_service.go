package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"granth/internal/modules/catalog/domain"
	catalogout "granth/internal/modules/catalog/port/out"
	"granth/internal/platform/clock"
	apperrors "granth/internal/platform/errors"
	"granth/internal/platform/slug"
)

type BookService struct {
	clock clock.Clock
	store catalogout.BookStore
	cache catalogout.BookCache
	log   *slog.Logger
}

// NewBookService wires the store and an optional cache (nil disables caching).
func NewBookService(clock clock.Clock, store catalogout.BookStore, cache catalogout.BookCache, log *slog.Logger) *BookService {
	return &BookService{clock: clock, store: store, cache: cache, log: log.With(slog.String("component", "catalog"))}
}

func (s *BookService) AddBook(ctx context.Context, book domain.Book) (domain.Book, error) {
	book.Title = strings.TrimSpace(book.Title)
	book.PDFURL = strings.TrimSpace(book.PDFURL)
	book.Slug = strings.TrimSpace(book.Slug)
	if book.Slug == "" {
		book.Slug = slug.Make(book.Title)
	}
	book.Active = true
	book.UpdatedAt = s.clock.Now()
	if err := book.Validate(); err != nil {
		return domain.Book{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	if err := s.store.Save(ctx, book); err != nil {
		return domain.Book{}, err
	}
	s.invalidate(ctx, book.Slug)
	return book, nil
}

// GetBookBySlug returns an active book, reading through the cache.
func (s *BookService) GetBookBySlug(ctx context.Context, bookSlug string) (domain.Book, error) {
	bookSlug = strings.TrimSpace(bookSlug)
	if bookSlug == "" {
		return domain.Book{}, fmt.Errorf("%w: slug is required", apperrors.ErrInvalidInput)
	}
	if s.cache != nil {
		book, ok, err := s.cache.Get(ctx, bookSlug)
		if err != nil {
			s.log.Warn("book_cache_get_failed", slog.String("slug", bookSlug), slog.Any("error", err))
		} else if ok {
			return book, nil
		}
	}

	book, err := s.store.FindBySlug(ctx, bookSlug)
	if err != nil {
		return domain.Book{}, err
	}
	if !book.Active {
		return domain.Book{}, apperrors.ErrNotFound
	}
	if s.cache != nil {
		if err := s.cache.Put(ctx, book); err != nil {
			s.log.Warn("book_cache_put_failed", slog.String("slug", bookSlug), slog.Any("error", err))
		}
	}
	return book, nil
}

func (s *BookService) ListBooks(ctx context.Context, includeInactive bool) ([]domain.Book, error) {
	return s.store.List(ctx, includeInactive)
}

func (s *BookService) SetActive(ctx context.Context, bookSlug string, active bool) (domain.Book, error) {
	book, err := s.store.FindBySlug(ctx, strings.TrimSpace(bookSlug))
	if err != nil {
		return domain.Book{}, err
	}
	book.Active = active
	book.UpdatedAt = s.clock.Now()
	if err := s.store.Save(ctx, book); err != nil {
		return domain.Book{}, err
	}
	s.invalidate(ctx, book.Slug)
	return book, nil
}

func (s *BookService) invalidate(ctx context.Context, bookSlug string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, bookSlug); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn("book_cache_invalidate_failed", slog.String("slug", bookSlug), slog.Any("error", err))
	}
}

package out

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"granth/internal/modules/catalog/domain"
	catalogout "granth/internal/modules/catalog/port/out"
	apperrors "granth/internal/platform/errors"
)

// PostgresBookStore reads the hosted backend's books table; the schema comes
// from the shared migrations.
type PostgresBookStore struct {
	pool *pgxpool.Pool
}

func NewPostgresBookStore(pool *pgxpool.Pool) catalogout.BookStore {
	return &PostgresBookStore{pool: pool}
}

func (s *PostgresBookStore) Save(ctx context.Context, book domain.Book) error {
	const stmt = `
INSERT INTO books (slug, title, author, pdf_url, pages, language, is_active, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (slug) DO UPDATE SET
  title = EXCLUDED.title,
  author = EXCLUDED.author,
  pdf_url = EXCLUDED.pdf_url,
  pages = EXCLUDED.pages,
  language = EXCLUDED.language,
  is_active = EXCLUDED.is_active,
  updated_at = EXCLUDED.updated_at`
	_, err := s.pool.Exec(ctx, stmt,
		book.Slug, book.Title, book.Author, book.PDFURL, book.Pages, book.Language, book.Active, book.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert book: %w", err)
	}
	return nil
}

const pgSelectBook = `SELECT slug, title, author, pdf_url, pages, language, is_active, updated_at FROM books`

func (s *PostgresBookStore) FindBySlug(ctx context.Context, slug string) (domain.Book, error) {
	row := s.pool.QueryRow(ctx, pgSelectBook+` WHERE slug = $1`, slug)
	var b domain.Book
	err := row.Scan(&b.Slug, &b.Title, &b.Author, &b.PDFURL, &b.Pages, &b.Language, &b.Active, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Book{}, apperrors.ErrNotFound
	}
	if err != nil {
		return domain.Book{}, fmt.Errorf("find book %q: %w", slug, err)
	}
	return b, nil
}

func (s *PostgresBookStore) List(ctx context.Context, includeInactive bool) ([]domain.Book, error) {
	query := pgSelectBook + ` WHERE is_active ORDER BY title`
	if includeInactive {
		query = pgSelectBook + ` ORDER BY title`
	}
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	books, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Book, error) {
		var b domain.Book
		err := row.Scan(&b.Slug, &b.Title, &b.Author, &b.PDFURL, &b.Pages, &b.Language, &b.Active, &b.UpdatedAt)
		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

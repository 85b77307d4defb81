package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"granth/internal/modules/catalog/domain"
	catalogout "granth/internal/modules/catalog/port/out"
	apperrors "granth/internal/platform/errors"
)

type SQLiteBookStore struct {
	db *sql.DB
}

func NewSQLiteBookStore(ctx context.Context, db *sql.DB) (catalogout.BookStore, error) {
	store := &SQLiteBookStore{db: db}
	if err := store.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteBookStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS books (
  slug       TEXT PRIMARY KEY,
  title      TEXT NOT NULL,
  author     TEXT NOT NULL DEFAULT '',
  pdf_url    TEXT NOT NULL,
  pages      INTEGER NOT NULL DEFAULT 0,
  language   TEXT NOT NULL DEFAULT '',
  is_active  INTEGER NOT NULL DEFAULT 1,
  updated_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create books table: %w", err)
	}
	return nil
}

func (s *SQLiteBookStore) Save(ctx context.Context, book domain.Book) error {
	const stmt = `
INSERT INTO books (slug, title, author, pdf_url, pages, language, is_active, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(slug) DO UPDATE SET
  title=excluded.title,
  author=excluded.author,
  pdf_url=excluded.pdf_url,
  pages=excluded.pages,
  language=excluded.language,
  is_active=excluded.is_active,
  updated_at=excluded.updated_at;
`
	_, err := s.db.ExecContext(ctx, stmt,
		book.Slug,
		book.Title,
		book.Author,
		book.PDFURL,
		book.Pages,
		book.Language,
		book.Active,
		book.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert book: %w", err)
	}
	return nil
}

const selectBook = `SELECT slug, title, author, pdf_url, pages, language, is_active, updated_at FROM books`

func (s *SQLiteBookStore) FindBySlug(ctx context.Context, slug string) (domain.Book, error) {
	row := s.db.QueryRowContext(ctx, selectBook+` WHERE slug = ?`, slug)
	book, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Book{}, apperrors.ErrNotFound
	}
	if err != nil {
		return domain.Book{}, fmt.Errorf("find book %q: %w", slug, err)
	}
	return book, nil
}

func (s *SQLiteBookStore) List(ctx context.Context, includeInactive bool) ([]domain.Book, error) {
	query := selectBook + ` WHERE is_active = 1 ORDER BY title`
	if includeInactive {
		query = selectBook + ` ORDER BY title`
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var out []domain.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		out = append(out, book)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(row scanner) (domain.Book, error) {
	var (
		book    domain.Book
		updated string
	)
	if err := row.Scan(&book.Slug, &book.Title, &book.Author, &book.PDFURL, &book.Pages, &book.Language, &book.Active, &updated); err != nil {
		return domain.Book{}, err
	}
	book.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return book, nil
}

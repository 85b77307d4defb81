package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"granth/internal/modules/engagement/domain"
	engagementout "granth/internal/modules/engagement/port/out"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, db *sql.DB) (engagementout.Store, error) {
	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS reading_sessions (
  user_id            TEXT NOT NULL,
  book_slug          TEXT NOT NULL,
  page_number        INTEGER NOT NULL,
  session_date       TEXT NOT NULL,
  time_spent_seconds INTEGER NOT NULL,
  satkarm_earned     INTEGER NOT NULL,
  updated_at         TEXT NOT NULL,
  PRIMARY KEY (user_id, book_slug, page_number, session_date)
);
CREATE INDEX IF NOT EXISTS idx_reading_sessions_user_date ON reading_sessions (user_id, session_date);
CREATE TABLE IF NOT EXISTS user_book_progress (
  user_id               TEXT NOT NULL,
  book_slug             TEXT NOT NULL,
  current_page          INTEGER NOT NULL,
  total_pages           INTEGER NOT NULL,
  completion_percentage REAL NOT NULL,
  is_completed          INTEGER NOT NULL,
  last_read_at          TEXT NOT NULL,
  completed_at          TEXT,
  PRIMARY KEY (user_id, book_slug)
);
CREATE TABLE IF NOT EXISTS user_profiles (
  user_id       TEXT PRIMARY KEY,
  total_satkarm INTEGER NOT NULL DEFAULT 0,
  updated_at    TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create engagement tables: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecordEngagement(ctx context.Context, rec domain.EngagementRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin engagement tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing := domain.EngagementRecord{UserID: rec.UserID, BookID: rec.BookID, PageNumber: rec.PageNumber, Date: rec.Date}
	err = tx.QueryRowContext(ctx, `
SELECT time_spent_seconds, satkarm_earned FROM reading_sessions
WHERE user_id = ? AND book_slug = ? AND page_number = ? AND session_date = ?`,
		rec.UserID, rec.BookID, rec.PageNumber, rec.Date,
	).Scan(&existing.SecondsSpent, &existing.PointsEarned)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("read engagement: %w", err)
	}
	merged, delta := domain.Merge(existing, rec)
	now := rec.RecordedAt.UTC().Format(time.RFC3339)

	_, err = tx.ExecContext(ctx, `
INSERT INTO reading_sessions (user_id, book_slug, page_number, session_date, time_spent_seconds, satkarm_earned, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, book_slug, page_number, session_date) DO UPDATE SET
  time_spent_seconds=excluded.time_spent_seconds,
  satkarm_earned=excluded.satkarm_earned,
  updated_at=excluded.updated_at;`,
		rec.UserID, rec.BookID, rec.PageNumber, rec.Date, merged.SecondsSpent, merged.PointsEarned, now,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert engagement: %w", err)
	}
	if delta > 0 {
		_, err = tx.ExecContext(ctx, `
INSERT INTO user_profiles (user_id, total_satkarm, updated_at) VALUES (?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
  total_satkarm=user_profiles.total_satkarm + excluded.total_satkarm,
  updated_at=excluded.updated_at;`,
			rec.UserID, delta, now,
		)
		if err != nil {
			return 0, fmt.Errorf("add points: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit engagement: %w", err)
	}
	return delta, nil
}

func (s *SQLiteStore) UpsertProgress(ctx context.Context, rec domain.ProgressRecord) error {
	lastRead := rec.LastReadAt.UTC().Format(time.RFC3339)
	var completedAt any
	if rec.IsCompleted {
		completedAt = lastRead
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO user_book_progress (user_id, book_slug, current_page, total_pages, completion_percentage, is_completed, last_read_at, completed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, book_slug) DO UPDATE SET
  current_page=excluded.current_page,
  total_pages=excluded.total_pages,
  completion_percentage=excluded.completion_percentage,
  is_completed=excluded.is_completed,
  last_read_at=excluded.last_read_at,
  completed_at=COALESCE(user_book_progress.completed_at, excluded.completed_at);`,
		rec.UserID, rec.BookID, rec.CurrentPage, rec.TotalPages, rec.CompletionPercentage, rec.IsCompleted, lastRead, completedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

func (s *SQLiteStore) MarkCompleted(ctx context.Context, userID, bookID string, at time.Time) error {
	ts := at.UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
INSERT INTO user_book_progress (user_id, book_slug, current_page, total_pages, completion_percentage, is_completed, last_read_at, completed_at)
VALUES (?, ?, 0, 0, 100, 1, ?, ?)
ON CONFLICT(user_id, book_slug) DO UPDATE SET
  completion_percentage=100,
  is_completed=1,
  last_read_at=excluded.last_read_at,
  completed_at=COALESCE(user_book_progress.completed_at, excluded.completed_at);`,
		userID, bookID, ts, ts,
	)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

const selectProgress = `SELECT user_id, book_slug, current_page, total_pages, completion_percentage, is_completed, last_read_at, completed_at FROM user_book_progress`

func (s *SQLiteStore) ListProgress(ctx context.Context, userID string, completed bool) ([]domain.ProgressRecord, error) {
	query := selectProgress + ` WHERE user_id = ? AND is_completed = 0 ORDER BY last_read_at DESC`
	if completed {
		query = selectProgress + ` WHERE user_id = ? AND is_completed = 1 ORDER BY completed_at DESC`
	}
	return s.queryProgress(ctx, query, userID)
}

func (s *SQLiteStore) ListRecent(ctx context.Context, userID, sinceDay string) ([]domain.ProgressRecord, error) {
	query := selectProgress + ` WHERE user_id = ? AND book_slug IN (
  SELECT DISTINCT book_slug FROM reading_sessions WHERE user_id = ? AND session_date >= ?
) ORDER BY last_read_at DESC`
	return s.queryProgress(ctx, query, userID, userID, sinceDay)
}

func (s *SQLiteStore) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	p := domain.Profile{UserID: userID}
	err := s.db.QueryRowContext(ctx, `SELECT total_satkarm FROM user_profiles WHERE user_id = ?`, userID).Scan(&p.TotalPoints)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, fmt.Errorf("read profile: %w", err)
	}
	err = s.db.QueryRowContext(ctx, `
SELECT COALESCE(SUM(CASE WHEN is_completed = 1 THEN 1 ELSE 0 END), 0),
       COALESCE(SUM(CASE WHEN is_completed = 0 THEN 1 ELSE 0 END), 0)
FROM user_book_progress WHERE user_id = ?`, userID).Scan(&p.BooksCompleted, &p.BooksInProgress)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("count progress: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) queryProgress(ctx context.Context, query string, args ...any) ([]domain.ProgressRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	defer rows.Close()

	var out []domain.ProgressRecord
	for rows.Next() {
		var (
			rec         domain.ProgressRecord
			lastRead    string
			completedAt sql.NullString
		)
		if err := rows.Scan(&rec.UserID, &rec.BookID, &rec.CurrentPage, &rec.TotalPages, &rec.CompletionPercentage, &rec.IsCompleted, &lastRead, &completedAt); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		rec.LastReadAt, _ = time.Parse(time.RFC3339, lastRead)
		if completedAt.Valid {
			rec.CompletedAt, _ = time.Parse(time.RFC3339, completedAt.String)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

package out

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"granth/internal/modules/engagement/domain"
	engagementout "granth/internal/modules/engagement/port/out"
)

// PostgresStore writes to the hosted backend's tables created by the shared
// migrations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) engagementout.Store {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) RecordEngagement(ctx context.Context, rec domain.EngagementRecord) (int, error) {
	day, err := time.Parse(time.DateOnly, rec.Date)
	if err != nil {
		return 0, fmt.Errorf("parse session date: %w", err)
	}
	var delta int
	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		existing := domain.EngagementRecord{}
		err := tx.QueryRow(ctx, `
SELECT time_spent_seconds, satkarm_earned FROM reading_sessions
WHERE user_id = $1 AND book_slug = $2 AND page_number = $3 AND session_date = $4
FOR UPDATE`, rec.UserID, rec.BookID, rec.PageNumber, day).Scan(&existing.SecondsSpent, &existing.PointsEarned)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("read engagement: %w", err)
		}
		var merged domain.EngagementRecord
		merged, delta = domain.Merge(existing, rec)

		_, err = tx.Exec(ctx, `
INSERT INTO reading_sessions (user_id, book_slug, page_number, session_date, time_spent_seconds, satkarm_earned, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (user_id, book_slug, page_number, session_date) DO UPDATE SET
  time_spent_seconds = EXCLUDED.time_spent_seconds,
  satkarm_earned = EXCLUDED.satkarm_earned,
  updated_at = EXCLUDED.updated_at`,
			rec.UserID, rec.BookID, rec.PageNumber, day, merged.SecondsSpent, merged.PointsEarned, rec.RecordedAt)
		if err != nil {
			return fmt.Errorf("upsert engagement: %w", err)
		}
		if delta == 0 {
			return nil
		}
		_, err = tx.Exec(ctx, `
INSERT INTO user_profiles (user_id, total_satkarm, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE SET
  total_satkarm = user_profiles.total_satkarm + EXCLUDED.total_satkarm,
  updated_at = EXCLUDED.updated_at`, rec.UserID, delta, rec.RecordedAt)
		if err != nil {
			return fmt.Errorf("add points: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return delta, nil
}

func (s *PostgresStore) UpsertProgress(ctx context.Context, rec domain.ProgressRecord) error {
	var completedAt *time.Time
	if rec.IsCompleted {
		at := rec.LastReadAt
		completedAt = &at
	}
	_, err := s.pool.Exec(ctx, `
INSERT INTO user_book_progress (user_id, book_slug, current_page, total_pages, completion_percentage, is_completed, last_read_at, completed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (user_id, book_slug) DO UPDATE SET
  current_page = EXCLUDED.current_page,
  total_pages = EXCLUDED.total_pages,
  completion_percentage = EXCLUDED.completion_percentage,
  is_completed = EXCLUDED.is_completed,
  last_read_at = EXCLUDED.last_read_at,
  completed_at = COALESCE(user_book_progress.completed_at, EXCLUDED.completed_at)`,
		rec.UserID, rec.BookID, rec.CurrentPage, rec.TotalPages, rec.CompletionPercentage, rec.IsCompleted, rec.LastReadAt, completedAt)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

func (s *PostgresStore) MarkCompleted(ctx context.Context, userID, bookID string, at time.Time) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO user_book_progress (user_id, book_slug, current_page, total_pages, completion_percentage, is_completed, last_read_at, completed_at)
VALUES ($1, $2, 0, 0, 100, TRUE, $3, $3)
ON CONFLICT (user_id, book_slug) DO UPDATE SET
  completion_percentage = 100,
  is_completed = TRUE,
  last_read_at = EXCLUDED.last_read_at,
  completed_at = COALESCE(user_book_progress.completed_at, EXCLUDED.completed_at)`,
		userID, bookID, at)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

const pgSelectProgress = `SELECT user_id, book_slug, current_page, total_pages, completion_percentage, is_completed, last_read_at, completed_at FROM user_book_progress`

func (s *PostgresStore) ListProgress(ctx context.Context, userID string, completed bool) ([]domain.ProgressRecord, error) {
	query := pgSelectProgress + ` WHERE user_id = $1 AND NOT is_completed ORDER BY last_read_at DESC`
	if completed {
		query = pgSelectProgress + ` WHERE user_id = $1 AND is_completed ORDER BY completed_at DESC NULLS LAST`
	}
	return s.queryProgress(ctx, query, userID)
}

func (s *PostgresStore) ListRecent(ctx context.Context, userID, sinceDay string) ([]domain.ProgressRecord, error) {
	since, err := time.Parse(time.DateOnly, sinceDay)
	if err != nil {
		return nil, fmt.Errorf("parse since day: %w", err)
	}
	query := pgSelectProgress + ` WHERE user_id = $1 AND book_slug IN (
  SELECT DISTINCT book_slug FROM reading_sessions WHERE user_id = $1 AND session_date >= $2
) ORDER BY last_read_at DESC`
	return s.queryProgress(ctx, query, userID, since)
}

func (s *PostgresStore) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	p := domain.Profile{UserID: userID}
	err := s.pool.QueryRow(ctx, `
SELECT
  COALESCE((SELECT total_satkarm FROM user_profiles WHERE user_id = $1), 0),
  COUNT(*) FILTER (WHERE is_completed),
  COUNT(*) FILTER (WHERE NOT is_completed)
FROM user_book_progress WHERE user_id = $1`, userID).Scan(&p.TotalPoints, &p.BooksCompleted, &p.BooksInProgress)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("read profile: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) queryProgress(ctx context.Context, query string, args ...any) ([]domain.ProgressRecord, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	recs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ProgressRecord, error) {
		var (
			rec         domain.ProgressRecord
			completedAt *time.Time
		)
		err := row.Scan(&rec.UserID, &rec.BookID, &rec.CurrentPage, &rec.TotalPages, &rec.CompletionPercentage, &rec.IsCompleted, &rec.LastReadAt, &completedAt)
		if completedAt != nil {
			rec.CompletedAt = *completedAt
		}
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	return recs, nil
}

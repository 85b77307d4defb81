package out_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"granth/internal/modules/engagement/adapter/out"
	"granth/internal/modules/engagement/domain"
	engagementout "granth/internal/modules/engagement/port/out"
	"granth/internal/platform/sqlite"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func openStore(t *testing.T) engagementout.Store {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), ".granth", "granth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store, err := out.NewSQLiteStore(ctx, db)
	require.NoError(t, err)
	return store
}

func engagement(t *testing.T, book string, page, seconds int, at time.Time) domain.EngagementRecord {
	t.Helper()
	rec, ok := domain.NewEngagementRecord("reader-1", book, page, seconds, at)
	require.True(t, ok)
	return rec
}

func TestSQLiteStoreMergesDailyEngagement(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openStore(t)

	delta, err := store.RecordEngagement(ctx, engagement(t, "gita", 1, 45, t0))
	require.NoError(t, err)
	require.Equal(t, 2, delta)

	delta, err = store.RecordEngagement(ctx, engagement(t, "gita", 1, 130, t0.Add(time.Hour)))
	require.NoError(t, err)
	require.Equal(t, 3, delta, "page points cap at five per day")

	delta, err = store.RecordEngagement(ctx, engagement(t, "gita", 1, 60, t0.Add(2*time.Hour)))
	require.NoError(t, err)
	require.Zero(t, delta)

	delta, err = store.RecordEngagement(ctx, engagement(t, "gita", 1, 40, t0.Add(24*time.Hour)))
	require.NoError(t, err)
	require.Equal(t, 2, delta, "a new day starts a new row")

	profile, err := store.Profile(ctx, "reader-1")
	require.NoError(t, err)
	require.Equal(t, 7, profile.TotalPoints)
}

func TestSQLiteStoreProgressLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openStore(t)

	require.NoError(t, store.UpsertProgress(ctx, domain.NewProgressRecord("reader-1", "gita", 50, 100, t0)))
	require.NoError(t, store.UpsertProgress(ctx, domain.NewProgressRecord("reader-1", "upanishads", 10, 40, t0.Add(time.Minute))))

	inProgress, err := store.ListProgress(ctx, "reader-1", false)
	require.NoError(t, err)
	require.Len(t, inProgress, 2)
	require.Equal(t, "upanishads", inProgress[0].BookID, "most recently read first")
	require.Equal(t, t0, inProgress[1].LastReadAt)

	finished := t0.Add(time.Hour)
	require.NoError(t, store.UpsertProgress(ctx, domain.NewProgressRecord("reader-1", "gita", 96, 100, finished)))
	require.NoError(t, store.UpsertProgress(ctx, domain.NewProgressRecord("reader-1", "gita", 100, 100, finished.Add(time.Hour))))

	completed, err := store.ListProgress(ctx, "reader-1", true)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	require.True(t, completed[0].IsCompleted)
	require.Equal(t, 100, completed[0].CurrentPage)
	require.Equal(t, finished, completed[0].CompletedAt, "completion time is kept from the first crossing")

	require.NoError(t, store.MarkCompleted(ctx, "reader-1", "upanishads", finished))
	require.NoError(t, store.MarkCompleted(ctx, "reader-1", "puranas", finished))

	profile, err := store.Profile(ctx, "reader-1")
	require.NoError(t, err)
	require.Equal(t, 3, profile.BooksCompleted)
	require.Zero(t, profile.BooksInProgress)
	require.Zero(t, profile.TotalPoints)
}

func TestSQLiteStoreListRecent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openStore(t)

	_, err := store.RecordEngagement(ctx, engagement(t, "gita", 4, 30, t0))
	require.NoError(t, err)
	require.NoError(t, store.UpsertProgress(ctx, domain.NewProgressRecord("reader-1", "gita", 4, 100, t0)))
	require.NoError(t, store.UpsertProgress(ctx, domain.NewProgressRecord("reader-1", "unread", 1, 100, t0)))

	recent, err := store.ListRecent(ctx, "reader-1", "2026-02-01")
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, "gita", recent[0].BookID)

	recent, err = store.ListRecent(ctx, "reader-1", "2026-03-02")
	require.NoError(t, err)
	require.Empty(t, recent)

	other, err := store.ListRecent(ctx, "reader-2", "2026-02-01")
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestSQLiteStoreStampsRowsWithRecordTime(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), ".granth", "granth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store, err := out.NewSQLiteStore(ctx, db)
	require.NoError(t, err)

	at := t0.Add(90 * time.Minute)
	_, err = store.RecordEngagement(ctx, engagement(t, "gita", 2, 45, at))
	require.NoError(t, err)

	var sessionStamp, profileStamp string
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT updated_at FROM reading_sessions WHERE user_id = ? AND page_number = ?`, "reader-1", 2).Scan(&sessionStamp))
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT updated_at FROM user_profiles WHERE user_id = ?`, "reader-1").Scan(&profileStamp))
	require.Equal(t, at.Format(time.RFC3339), sessionStamp)
	require.Equal(t, at.Format(time.RFC3339), profileStamp)
}

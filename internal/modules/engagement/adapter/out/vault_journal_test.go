package out_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"granth/internal/modules/engagement/adapter/out"
	"granth/internal/modules/engagement/domain"
	"granth/internal/platform/markdown"
)

func TestVaultJournalAppendsSessionsAndTotals(t *testing.T) {
	t.Parallel()
	vault := t.TempDir()
	journal := out.NewVaultJournal(vault)
	ctx := context.Background()

	first := domain.SessionSummary{
		SessionID: "s1",
		UserID:    "reader-1",
		BookID:    "gita",
		StartedAt: t0,
		EndedAt:   t0.Add(10 * time.Minute),
		Pages:     []int{3, 4},
		Seconds:   600,
		Points:    10,
	}
	path, err := journal.Append(ctx, first)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(vault, "journal", "2026", "03", "01.md"), path)

	second := first
	second.SessionID = "s2"
	second.BookID = "upanishads"
	second.StartedAt = t0.Add(time.Hour)
	second.EndedAt = t0.Add(time.Hour + 90*time.Second)
	second.Pages = []int{1}
	second.Seconds = 90
	second.Points = 4
	_, err = journal.Append(ctx, second)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	note, err := markdown.Parse(string(raw))
	require.NoError(t, err)
	require.Equal(t, 2, note.Int("sessions"))
	require.Equal(t, 690, note.Int("total_seconds"))
	require.Equal(t, 14, note.Int("total_points"))
	require.Equal(t, "reader-1", note.Meta["user_id"])

	require.Contains(t, note.Body, "- 09:00-09:10 [[gita]] pages 3, 4, 10m0s, 10 points")
	require.Contains(t, note.Body, "- 10:00-10:01 [[upanishads]] pages 1, 1m30s, 4 points")
	require.Equal(t, 1, strings.Count(note.Body, "Sessions: "), "totals block is replaced, not repeated")
	require.Contains(t, note.Body, "Sessions: 2 · Time: 11m30s · Points: 14")
	require.Less(t, strings.Index(note.Body, "[[gita]]"), strings.Index(note.Body, "[[upanishads]]"))
}

package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"granth/internal/modules/engagement/domain"
	engagementout "granth/internal/modules/engagement/port/out"
	"granth/internal/platform/markdown"
)

// VaultJournal keeps one markdown note per day under <vault>/journal with a
// line per closed reading session and running totals in the frontmatter.
type VaultJournal struct {
	vaultPath string
}

func NewVaultJournal(vaultPath string) engagementout.Journal {
	return &VaultJournal{vaultPath: vaultPath}
}

func (j *VaultJournal) Append(_ context.Context, s domain.SessionSummary) (string, error) {
	day := s.EndedAt.UTC()
	dir := filepath.Join(j.vaultPath, "journal", day.Format("2006"), day.Format("01"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create journal dir: %w", err)
	}
	path := filepath.Join(dir, day.Format("02")+".md")

	note := markdown.Note{Meta: map[string]any{}, Body: "# Reading journal " + day.Format(time.DateOnly) + "\n"}
	if raw, err := os.ReadFile(path); err == nil {
		parsed, err := markdown.Parse(string(raw))
		if err != nil {
			return "", fmt.Errorf("parse journal %s: %w", path, err)
		}
		note = parsed
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("read journal: %w", err)
	}

	sessions := note.Int("sessions") + 1
	seconds := note.Int("total_seconds") + s.Seconds
	points := note.Int("total_points") + s.Points
	note.Meta["schema_version"] = domain.SchemaVersion
	note.Meta["date"] = day.Format(time.DateOnly)
	note.Meta["user_id"] = s.UserID
	note.Meta["sessions"] = sessions
	note.Meta["total_seconds"] = seconds
	note.Meta["total_points"] = points

	totals := fmt.Sprintf("Sessions: %d · Time: %s · Points: %d", sessions, formatSeconds(seconds), points)
	body := markdown.ReplaceBlock(note.Body, "totals", totals)
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	note.Body = body + sessionLine(s) + "\n"

	rendered, err := note.Render()
	if err != nil {
		return "", err
	}
	// Readers of the vault never see a half-written note.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write journal: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("replace journal: %w", err)
	}
	return path, nil
}

func sessionLine(s domain.SessionSummary) string {
	pages := make([]string, 0, len(s.Pages))
	for _, p := range s.Pages {
		pages = append(pages, strconv.Itoa(p))
	}
	return fmt.Sprintf("- %s-%s [[%s]] pages %s, %s, %d points",
		s.StartedAt.UTC().Format("15:04"),
		s.EndedAt.UTC().Format("15:04"),
		s.BookID,
		strings.Join(pages, ", "),
		formatSeconds(s.Seconds),
		s.Points,
	)
}

func formatSeconds(total int) string {
	return (time.Duration(total) * time.Second).String()
}

package progress

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	meter "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	engagementdto "granth/internal/modules/engagement/dto"
	"granth/internal/ui/components"
	"granth/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	ListInProgress(ctx context.Context) ([]engagementdto.ProgressOutput, error)
	ListCompleted(ctx context.Context) ([]engagementdto.ProgressOutput, error)
	ListRecent(ctx context.Context) ([]engagementdto.ProgressOutput, error)
	Profile(ctx context.Context) (engagementdto.ProfileOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	InProgress []engagementdto.ProgressOutput
	Completed  []engagementdto.ProgressOutput
	Recent     []engagementdto.ProgressOutput
	Profile    engagementdto.ProfileOutput
	Err        error
}

// ─── list item ───────────────────────────────────────────────────────────────

type shelf string

const (
	shelfReading   shelf = "reading"
	shelfCompleted shelf = "completed"
)

type progressItem struct {
	rec   engagementdto.ProgressOutput
	shelf shelf
}

func (i progressItem) Title() string { return i.rec.BookID }

func (i progressItem) Description() string {
	if i.shelf == shelfCompleted {
		return "completed " + i.rec.CompletedAt.Format("2 Jan 2006")
	}
	return fmt.Sprintf("p.%d/%d  %.0f%%", i.rec.CurrentPage, i.rec.TotalPages, i.rec.CompletionPercentage)
}

func (i progressItem) FilterValue() string { return i.rec.BookID }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    Port
	list    list.Model
	detail  viewport.Model
	spinner spinner.Model
	bar     meter.Model
	data    LoadedMsg
	loading bool
	width   int
	height  int
}

func New(port Port) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Green).BorderForeground(theme.Green)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Green)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Progress"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Green)

	return Model{
		port:    port,
		list:    l,
		detail:  vp,
		spinner: sp,
		bar:     meter.New(meter.WithGradient(string(theme.Sapphire), string(theme.Green))),
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Refresh(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case LoadedMsg:
		m.loading = false
		m.data = msg
		if msg.Err != nil {
			m.list.Title = "Progress: " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = "Progress"
		items := make([]list.Item, 0, len(msg.InProgress)+len(msg.Completed))
		for _, r := range msg.InProgress {
			items = append(items, progressItem{rec: r, shelf: shelfReading})
		}
		for _, r := range msg.Completed {
			items = append(items, progressItem{rec: r, shelf: shelfCompleted})
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.detail.SetContent(m.renderDetail())

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		if msg.String() == "enter" && !m.Filtering() {
			if item, ok := m.list.SelectedItem().(progressItem); ok {
				page := max(item.rec.CurrentPage, 1)
				return m, func() tea.Msg { return components.OpenReaderMsg{Slug: item.rec.BookID, Page: page} }
			}
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			m.detail.SetContent(m.renderDetail())
		}

		var vCmd tea.Cmd
		m.detail, vCmd = m.detail.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading progress…")
	}

	listW := m.width * 35 / 100
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.detail.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Refresh reloads the shelves and the profile.
func (m Model) Refresh() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return LoadedMsg{}
		}
		ctx := context.Background()
		var out LoadedMsg
		var err error
		if out.InProgress, err = m.port.ListInProgress(ctx); err != nil {
			return LoadedMsg{Err: err}
		}
		if out.Completed, err = m.port.ListCompleted(ctx); err != nil {
			return LoadedMsg{Err: err}
		}
		if out.Recent, err = m.port.ListRecent(ctx); err != nil {
			return LoadedMsg{Err: err}
		}
		if out.Profile, err = m.port.Profile(ctx); err != nil {
			return LoadedMsg{Err: err}
		}
		return out
	}
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 35 / 100
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.detail.Width = detailW - 4
	m.detail.Height = m.height - 4
	m.bar.Width = max(m.detail.Width-4, 10)
}

func (m Model) renderDetail() string {
	p := m.data.Profile
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Satkarm") + "  " + theme.Score.Render(fmt.Sprintf("%d points", p.TotalPoints)) + "\n")
	sb.WriteString(theme.Muted.Render(fmt.Sprintf("%d reading · %d completed", p.BooksInProgress, p.BooksCompleted)) + "\n\n")

	if item, ok := m.list.SelectedItem().(progressItem); ok {
		r := item.rec
		sb.WriteString(theme.Title.Render(r.BookID) + "\n")
		sb.WriteString(m.bar.ViewAs(r.CompletionPercentage/100) + "\n")
		sb.WriteString(theme.Muted.Render(fmt.Sprintf("page %d of %d · last read %s", r.CurrentPage, r.TotalPages, ago(r.LastReadAt))) + "\n")
		if item.shelf == shelfReading {
			sb.WriteString(theme.Muted.Render("enter: continue reading") + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(theme.Hot.Render("Recent (30 days)") + "\n")
	if len(m.data.Recent) == 0 {
		sb.WriteString(theme.Muted.Render("  nothing read recently") + "\n")
	}
	for _, r := range m.data.Recent {
		sb.WriteString(fmt.Sprintf("  %s  %s\n", r.BookID, theme.Muted.Render(fmt.Sprintf("%.0f%%", r.CompletionPercentage))))
	}
	return sb.String()
}

func ago(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return t.Format("2 Jan 2006")
}

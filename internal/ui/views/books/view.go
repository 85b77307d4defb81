package books

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	catalogdto "granth/internal/modules/catalog/dto"
	engagementdto "granth/internal/modules/engagement/dto"
	"granth/internal/ui/components"
	"granth/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	ListBooks(ctx context.Context) ([]catalogdto.BookOutput, error)
	ListInProgress(ctx context.Context) ([]engagementdto.ProgressOutput, error)
	ListCompleted(ctx context.Context) ([]engagementdto.ProgressOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type BooksLoadedMsg struct {
	Books    []catalogdto.BookOutput
	Progress map[string]engagementdto.ProgressOutput
	Err      error
}

// ─── list item ───────────────────────────────────────────────────────────────

type bookItem struct {
	book     catalogdto.BookOutput
	progress engagementdto.ProgressOutput
}

func (i bookItem) Title() string { return i.book.Title }

func (i bookItem) Description() string {
	switch {
	case i.progress.IsCompleted:
		return i.book.Author + "  ✓ completed"
	case i.progress.BookID != "":
		return fmt.Sprintf("%s  p.%d  %.0f%%", i.book.Author, i.progress.CurrentPage, i.progress.CompletionPercentage)
	}
	return i.book.Author
}

func (i bookItem) FilterValue() string { return i.book.Title + " " + i.book.Author }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    Port
	list    list.Model
	preview viewport.Model
	spinner spinner.Model
	loading bool
	width   int
	height  int
}

func New(port Port) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Books"
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
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:    port,
		list:    l,
		preview: vp,
		spinner: sp,
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

	case BooksLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Books: " + msg.Err.Error()
			return m, nil
		}
		items := make([]list.Item, len(msg.Books))
		for i, b := range msg.Books {
			items[i] = bookItem{book: b, progress: msg.Progress[b.Slug]}
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.preview.SetContent(m.renderDetail())

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		if msg.String() == "enter" && !m.Filtering() {
			if item, ok := m.list.SelectedItem().(bookItem); ok {
				page := max(item.progress.CurrentPage, 1)
				return m, func() tea.Msg { return components.OpenReaderMsg{Slug: item.book.Slug, Page: page} }
			}
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			m.preview.SetContent(m.renderDetail())
		}

		var vCmd tea.Cmd
		m.preview, vCmd = m.preview.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading books…")
	}

	listW := m.width * 4 / 10
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
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Filtering reports whether the list's search filter is currently active.
// The app model checks this to avoid consuming global keys during a search.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Refresh reloads the catalog together with the reader's progress.
func (m Model) Refresh() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return BooksLoadedMsg{}
		}
		ctx := context.Background()
		books, err := m.port.ListBooks(ctx)
		if err != nil {
			return BooksLoadedMsg{Err: err}
		}
		progress := map[string]engagementdto.ProgressOutput{}
		for _, fetch := range []func(context.Context) ([]engagementdto.ProgressOutput, error){m.port.ListInProgress, m.port.ListCompleted} {
			recs, err := fetch(ctx)
			if err != nil {
				return BooksLoadedMsg{Books: books, Err: err}
			}
			for _, p := range recs {
				progress[p.BookID] = p
			}
		}
		return BooksLoadedMsg{Books: books, Progress: progress}
	}
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
}

func (m Model) renderDetail() string {
	item, ok := m.list.SelectedItem().(bookItem)
	if !ok {
		return theme.Muted.Render("No books in the catalog yet. Add one with `granth book add`.")
	}
	b, p := item.book, item.progress
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(b.Title) + "\n\n")
	sb.WriteString(theme.Muted.Render("slug:     ") + b.Slug + "\n")
	if b.Author != "" {
		sb.WriteString(theme.Muted.Render("author:   ") + b.Author + "\n")
	}
	if b.Language != "" {
		sb.WriteString(theme.Muted.Render("language: ") + b.Language + "\n")
	}
	if b.Pages > 0 {
		sb.WriteString(fmt.Sprintf("%s%d\n", theme.Muted.Render("pages:    "), b.Pages))
	}
	if b.PDFURL != "" {
		sb.WriteString(theme.Muted.Render("pdf:      ") + b.PDFURL + "\n")
	}
	switch {
	case p.IsCompleted:
		sb.WriteString("\n" + theme.Good.Render("Completed "+p.CompletedAt.Format("2 Jan 2006")) + "\n")
	case p.BookID != "":
		sb.WriteString(fmt.Sprintf("\n%s page %d of %d (%.1f%%)\n", theme.Hot.Render("Reading"), p.CurrentPage, p.TotalPages, p.CompletionPercentage))
	}
	sb.WriteString("\n" + theme.Muted.Render("enter: read"))
	return sb.String()
}

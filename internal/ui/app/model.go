package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	catalogdto "granth/internal/modules/catalog/dto"
	engagementdto "granth/internal/modules/engagement/dto"
	viewerin "granth/internal/modules/viewer/port/in"
	"granth/internal/ui/components"
	"granth/internal/ui/theme"
	booksview "granth/internal/ui/views/books"
	progressview "granth/internal/ui/views/progress"
	readerview "granth/internal/ui/views/reader"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type catalogPort interface {
	ListBooks(ctx context.Context, includeInactive bool) ([]catalogdto.BookOutput, error)
}

type engagementPort interface {
	UserID() string
	ListInProgress(ctx context.Context) ([]engagementdto.ProgressOutput, error)
	ListCompleted(ctx context.Context) ([]engagementdto.ProgressOutput, error)
	ListRecent(ctx context.Context) ([]engagementdto.ProgressOutput, error)
	Profile(ctx context.Context) (engagementdto.ProfileOutput, error)
}

type viewerPort interface {
	Open(ctx context.Context, bookSlug, url string, page int) (viewerin.Reader, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabBooks tabID = iota
	tabReader
	tabProgress
	tabCount
)

var tabLabels = [tabCount]string{"Books", "Reader", "Progress"}

// Rows used by the tab bar above the content and the status bar below it.
const (
	tabBarRows    = 1
	statusBarRows = 1
)

// refreshMsg reloads the list tabs once a closed session has been written.
type refreshMsg struct{}

const refreshDelay = 500 * time.Millisecond

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Enter   key.Binding
	Page    key.Binding
	Zoom    key.Binding
	Rotate  key.Binding
	Chrome  key.Binding
	Close   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "read")),
		Page:    key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "page")),
		Zoom:    key.NewBinding(key.WithKeys("+", "-", "z"), key.WithHelp("+/-/z", "zoom")),
		Rotate:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rotate")),
		Chrome:  key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "hide chrome")),
		Close:   key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("ctrl+w", "close book")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Enter, k.Close},
		{k.Page, k.Zoom, k.Rotate, k.Chrome},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the global help
// overlay, and the command palette. All business logic is delegated to port
// interfaces; all rendering is delegated to sub-views.
type Model struct {
	userID string

	// sub-views (one per tab)
	booksView    booksview.Model
	readView     readerview.Model
	progressView progressview.Model

	// global UI state
	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	pending   *pendingOpen
	points    int
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(catalog catalogPort, engagement engagementPort, viewer viewerPort) Model {
	return Model{
		userID:       engagement.UserID(),
		booksView:    booksview.New(booksPortBridge{catalog: catalog, engagement: engagement}),
		readView:     readerview.New(viewer),
		progressView: progressview.New(engagement),
		activeTab:    tabBooks,
		keys:         defaultKeys(),
		help:         help.New(),
		palette:      components.NewPalette(),
		status:       "ready",
	}
}

// OpenOnStart makes the first frame open a book directly in the reader.
func (m Model) OpenOnStart(slug, url string, page int) Model {
	m.activeTab = tabReader
	m.status = "opening…"
	m.pending = &pendingOpen{slug: slug, url: url, page: page}
	return m
}

type pendingOpen struct {
	slug, url string
	page      int
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.booksView.Init(), m.progressView.Init()}
	if m.pending != nil {
		p := *m.pending
		cmds = append(cmds, func() tea.Msg { return openRequestMsg(p) })
	}
	return tea.Batch(cmds...)
}

type openRequestMsg pendingOpen

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The palette intercepts all input while open.
	if m.palette.Visible() {
		if _, isInput := msg.(tea.KeyMsg); isInput {
			var cmd tea.Cmd
			m.palette, cmd = m.palette.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case openRequestMsg:
		m.pending = nil
		return m, m.openBook(msg.slug, msg.url, msg.page)

	case components.OpenReaderMsg:
		return m, m.openBook(msg.Slug, "", msg.Page)

	case readerview.OpenedMsg:
		if msg.Err != nil {
			m.status = "reader: " + msg.Err.Error()
		} else {
			m.status = "reading " + msg.Reader.State().Title
		}

	case readerview.ClosedMsg:
		m.status = "book closed"
		return m, tea.Tick(refreshDelay, func(time.Time) tea.Msg { return refreshMsg{} })

	case refreshMsg:
		return m, tea.Batch(m.booksView.Refresh(), m.progressView.Refresh())

	case progressview.LoadedMsg:
		if msg.Err == nil {
			m.points = msg.Profile.TotalPoints
		}

	case tea.MouseMsg:
		if m.activeTab != tabReader || m.showHelp {
			return m, nil
		}
		msg.Y -= tabBarRows
		var cmd tea.Cmd
		m.readView, cmd = m.readView.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Data messages go to every view; each ignores what it did not request.
	var c1, c2, c3 tea.Cmd
	m.booksView, c1 = m.booksView.Update(msg)
	m.readView, c2 = m.readView.Update(msg)
	m.progressView, c3 = m.progressView.Update(msg)
	return m, tea.Batch(c1, c2, c3)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if msg.String() == "?" || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	// Yield to sub-view when its search filter is active.
	if !m.subViewFiltering() {
		switch msg.String() {
		case "ctrl+c", "q":
			m.readView.Close()
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		case "ctrl+w":
			return m, m.readView.Close()
		}
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case tabBooks:
		m.booksView, cmd = m.booksView.Update(msg)
	case tabReader:
		m.readView, cmd = m.readView.Update(msg)
	case tabProgress:
		m.progressView, cmd = m.progressView.Update(msg)
	}
	return m, cmd
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := max(m.height-tabBarRows-statusBarRows, 1)

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = lipgloss.NewStyle().Height(contentH).MaxHeight(contentH).Render(m.activeView())
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabBooks:
		return m.booksView.View()
	case tabReader:
		return m.readView.View()
	case tabProgress:
		return m.progressView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "granth  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

func (m Model) renderStatusBar() string {
	left := theme.Good.Render("● "+m.userID) + "  " +
		theme.Score.Render(fmt.Sprintf("✦ %d", m.points)) + "  " + m.status
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	bar := left + strings.Repeat(" ", gap) + right
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	pageArg := func(i int) (int, bool) {
		if len(parts) <= i {
			return 1, true
		}
		p, err := strconv.Atoi(parts[i])
		if err != nil || p < 1 {
			m.status = "invalid page: " + parts[i]
			return 0, false
		}
		return p, true
	}

	switch parts[0] {
	case "open":
		if len(parts) < 2 {
			m.status = "usage: open <slug> [page]"
			return m, nil
		}
		page, ok := pageArg(2)
		if !ok {
			return m, nil
		}
		return m, m.openBook(parts[1], "", page)

	case "url":
		if len(parts) < 2 {
			m.status = "usage: url <link> [page]"
			return m, nil
		}
		page, ok := pageArg(2)
		if !ok {
			return m, nil
		}
		return m, m.openBook("", parts[1], page)

	case "goto":
		if len(parts) < 2 {
			m.status = "usage: goto <page>"
			return m, nil
		}
		page, ok := pageArg(1)
		if !ok {
			return m, nil
		}
		m.activeTab = tabReader
		m.readView.GoToPage(page)
		return m, nil

	case "zoom":
		if len(parts) < 2 {
			m.status = "usage: zoom <in|out|toggle>"
			return m, nil
		}
		m.activeTab = tabReader
		return m, m.readView.Command(parts[1])

	case "next", "prev", "rotate", "chrome", "retry":
		m.activeTab = tabReader
		return m, m.readView.Command(parts[0])

	case "close":
		return m, m.readView.Close()

	case "refresh":
		m.status = "refreshing"
		return m, tea.Batch(m.booksView.Refresh(), m.progressView.Refresh())

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) openBook(slug, url string, page int) tea.Cmd {
	m.activeTab = tabReader
	m.status = "opening…"
	return m.readView.Open(slug, url, page)
}

// subViewFiltering reports whether the active tab's list filter is open,
// in which case global key bindings must yield to allow free typing.
func (m Model) subViewFiltering() bool {
	switch m.activeTab {
	case tabBooks:
		return m.booksView.Filtering()
	case tabProgress:
		return m.progressView.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: max(m.height-tabBarRows-statusBarRows, 1)}
	m.booksView, _ = m.booksView.Update(sz)
	m.readView, _ = m.readView.Update(sz)
	m.progressView, _ = m.progressView.Update(sz)
}

// ─── port bridges ─────────────────────────────────────────────────────────────
// Each bridge narrows a broad port interface to the minimal interface needed by
// a specific sub-view, keeping view packages free of knowledge about the wider
// port surface.

type booksPortBridge struct {
	catalog    catalogPort
	engagement engagementPort
}

func (b booksPortBridge) ListBooks(ctx context.Context) ([]catalogdto.BookOutput, error) {
	return b.catalog.ListBooks(ctx, false)
}
func (b booksPortBridge) ListInProgress(ctx context.Context) ([]engagementdto.ProgressOutput, error) {
	return b.engagement.ListInProgress(ctx)
}
func (b booksPortBridge) ListCompleted(ctx context.Context) ([]engagementdto.ProgressOutput, error) {
	return b.engagement.ListCompleted(ctx)
}

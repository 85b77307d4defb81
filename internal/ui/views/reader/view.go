package reader

import (
	"context"
	"fmt"
	"strings"
	"time"

	meter "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	viewerdto "granth/internal/modules/viewer/dto"
	viewerin "granth/internal/modules/viewer/port/in"
	"granth/internal/ui/theme"
)

// Terminal cells are mapped to page points so gesture thresholds keep their
// meaning under a mouse.
const (
	cellWidth  = 8
	cellHeight = 16
	wheelStep  = 40
	headerRows = 1
	footerRows = 1
	edgeCols   = 6
)

// ─── port ────────────────────────────────────────────────────────────────────

// Port is the minimal interface this view needs from the viewer use-case.
type Port interface {
	Open(ctx context.Context, bookSlug, url string, page int) (viewerin.Reader, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

// OpenedMsg is sent when a reader has been created (or failed to open).
// Seq identifies the Open call that produced it.
type OpenedMsg struct {
	Reader viewerin.Reader
	Err    error
	Seq    int
}

// ClosedMsg is sent after the open book is closed.
type ClosedMsg struct{}

type loadProgressMsg struct {
	reader  viewerin.Reader
	percent int
	events  <-chan tea.Msg
}

type loadDoneMsg struct {
	reader viewerin.Reader
	result viewerin.LoadResult
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the Bubble Tea model for the Reader tab. It owns at most one open
// reader; messages from a reader it no longer holds are ignored.
type Model struct {
	port     Port
	reader   viewerin.Reader
	state    viewerdto.ViewState
	viewport viewport.Model
	spinner  spinner.Model
	bar      meter.Model
	text     string
	textPage int
	openErr  error
	pressed  bool
	pressX   int
	edge     int
	opening  bool
	openSeq  int
	width    int
	height   int
}

// New creates a Reader Model backed by the given port.
func New(port Port) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:     port,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		bar:      meter.New(meter.WithGradient(string(theme.Lavender), string(theme.Sapphire))),
	}
}

// Init is a no-op: the reader is idle until Open is called.
func (m Model) Init() tea.Cmd { return nil }

// HasBook reports whether a document is currently open.
func (m Model) HasBook() bool { return m.reader != nil }

func (m Model) State() viewerdto.ViewState { return m.state }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.refresh()

	case OpenedMsg:
		if msg.Seq != m.openSeq {
			// superseded by a later Open
			if msg.Reader != nil {
				msg.Reader.Close()
			}
			return m, nil
		}
		m.opening = false
		if msg.Err != nil {
			m.openErr = msg.Err
			return m, nil
		}
		if m.reader != nil && m.reader != msg.Reader {
			m.closeReader()
		}
		m.openErr = nil
		m.reader = msg.Reader
		m.textPage = 0
		m.refresh()
		return m, tea.Batch(startLoad(msg.Reader), m.spinner.Tick)

	case loadProgressMsg:
		if msg.reader == m.reader && m.reader != nil {
			m.reader.ReportProgress(msg.percent)
			m.refresh()
		}
		return m, waitFor(msg.events)

	case loadDoneMsg:
		if msg.reader == m.reader && m.reader != nil {
			m.reader.FinishLoad(msg.result)
			m.textPage = 0
			m.refresh()
		}
		return m, nil

	case spinner.TickMsg:
		if m.opening || m.state.Phase == viewerdto.PhaseLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case tea.MouseMsg:
		m.mouse(msg)
		m.refresh()

	case tea.KeyMsg:
		cmd := m.key(msg.String())
		m.refresh()
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}
	bodyH := m.bodyHeight()
	var body string
	switch {
	case m.opening:
		body = m.center(bodyH, m.spinner.View()+" Opening…")
	case m.openErr != nil:
		body = m.center(bodyH, m.errorPanel("Could not open book", m.openErr.Error(), "open another book from the Books tab"))
	case m.reader == nil:
		body = m.center(bodyH, theme.Muted.Render("Open a book from the Books tab (enter) or the palette (:url <link>)"))
	default:
		body = m.renderBody(bodyH)
	}
	if m.state.UIHidden && m.reader != nil {
		return body
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
}

// Open closes any current book and opens another one by slug or URL.
func (m *Model) Open(slug, url string, page int) tea.Cmd {
	m.closeReader()
	m.opening = true
	m.openErr = nil
	m.openSeq++
	seq := m.openSeq
	port := m.port
	return tea.Batch(func() tea.Msg {
		if port == nil {
			return OpenedMsg{Err: fmt.Errorf("no viewer configured"), Seq: seq}
		}
		r, err := port.Open(context.Background(), slug, url, page)
		return OpenedMsg{Reader: r, Err: err, Seq: seq}
	}, m.spinner.Tick)
}

// Close ends the current reading session, if any.
func (m *Model) Close() tea.Cmd {
	if m.reader == nil {
		return nil
	}
	m.closeReader()
	return func() tea.Msg { return ClosedMsg{} }
}

// GoToPage jumps to page n of the open document.
func (m *Model) GoToPage(n int) {
	if m.reader != nil {
		m.reader.GoToPage(n)
		m.refresh()
	}
}

// Command runs one of the reader's named actions.
func (m *Model) Command(name string) tea.Cmd {
	cmd := m.key(name)
	m.refresh()
	return cmd
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) key(k string) tea.Cmd {
	r := m.reader
	if r == nil {
		return nil
	}
	switch k {
	case "right", "l", "pgdown", " ", "next":
		r.NextPage()
	case "left", "h", "pgup", "prev":
		r.PreviousPage()
	case "home":
		r.GoToPage(1)
	case "end":
		if n := r.State().PageCount; n > 0 {
			r.GoToPage(n)
		}
	case "+", "=", "in":
		r.ZoomIn()
	case "-", "out":
		r.ZoomOut()
	case "z", "toggle":
		r.ToggleZoom()
	case "r", "rotate":
		r.Rotate()
	case "u", "chrome":
		r.ToggleUI()
	case "down", "j":
		r.ScrollBy(0, cellHeight)
	case "up", "k":
		r.ScrollBy(0, -cellHeight)
	case "esc":
		r.DismissError()
	case "R", "retry":
		if r.Retry() {
			return tea.Batch(startLoad(r), m.spinner.Tick)
		}
	}
	return nil
}

func (m *Model) mouse(msg tea.MouseMsg) {
	r := m.reader
	if r == nil {
		return
	}
	switch msg.Button {
	case tea.MouseButtonWheelDown:
		r.ScrollBy(0, wheelStep)
		return
	case tea.MouseButtonWheelUp:
		r.ScrollBy(0, -wheelStep)
		return
	}

	ev := viewerdto.PointerInput{
		X:         float64(msg.X * cellWidth),
		Y:         float64(msg.Y * cellHeight),
		OnControl: m.onChrome(msg.Y),
		At:        time.Now(),
	}
	turn := 0
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.pressed = true
		m.pressX = msg.X
		m.edge = 0
		if !ev.OnControl {
			m.edge = m.edgeAt(msg.X)
		}
		ev.Kind = viewerdto.PointerDown
	case msg.Action == tea.MouseActionMotion && m.pressed:
		ev.Kind = viewerdto.PointerMove
	case msg.Action == tea.MouseActionRelease && m.pressed:
		m.pressed = false
		ev.Kind = viewerdto.PointerUp
		if m.edge != 0 && m.edgeAt(msg.X) == m.edge && abs(msg.X-m.pressX) <= 1 {
			turn = m.edge
		}
	default:
		return
	}
	ev.NoToggle = m.edge != 0
	r.Pointer(ev)
	switch turn {
	case -1:
		r.PreviousPage()
	case 1:
		r.NextPage()
	}
}

// edgeAt returns -1 or 1 when column x lies in the left or right page-turn
// zone, 0 otherwise.
func (m Model) edgeAt(x int) int {
	if m.width <= 3*edgeCols {
		return 0
	}
	switch {
	case x < edgeCols:
		return -1
	case x >= m.width-edgeCols:
		return 1
	}
	return 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// onChrome reports whether row y lands on the header or footer bar.
func (m Model) onChrome(y int) bool {
	if m.state.UIHidden {
		return false
	}
	return y < headerRows || y >= m.height-footerRows
}

func (m *Model) closeReader() {
	if m.reader != nil {
		m.reader.Close()
	}
	m.reader = nil
	m.state = viewerdto.ViewState{}
	m.text = ""
	m.textPage = 0
	m.pressed = false
	m.edge = 0
}

// refresh re-reads the reader state and rebuilds the page content.
func (m *Model) refresh() {
	if m.reader == nil {
		return
	}
	m.state = m.reader.State()
	if m.state.Phase != viewerdto.PhaseReady {
		return
	}
	if m.textPage != m.state.Page {
		text, err := m.reader.PageText()
		if err != nil {
			text = theme.Hot.Render(err.Error())
		}
		m.text = text
		m.textPage = m.state.Page
	}
	m.viewport.Width = m.width
	m.viewport.Height = m.bodyHeight()
	m.viewport.SetContent(m.layoutPage())
	m.viewport.SetYOffset(int(m.state.ScrollY / cellHeight))
}

// layoutPage wraps the page text at a width proportional to the zoom and
// shifts it by the horizontal scroll.
func (m Model) layoutPage() string {
	scale := m.state.Scale
	if scale <= 0 {
		scale = 1
	}
	inner := max(m.width-4, 10)
	wrapAt := max(int(float64(inner)*scale), 10)
	offset := int(m.state.ScrollX / cellWidth)

	text := m.text
	if strings.TrimSpace(text) == "" {
		text = theme.Muted.Render("(no text on this page)")
	}
	lines := strings.Split(runewidth.Wrap(text, wrapAt), "\n")
	for i, line := range lines {
		lines[i] = window(line, offset, inner)
	}
	return theme.Page.Width(m.width).Render(strings.Join(lines, "\n"))
}

func (m *Model) resize() {
	m.viewport.Width = m.width
	m.viewport.Height = m.bodyHeight()
	m.bar.Width = max(min(m.width-10, 60), 10)
}

func (m Model) bodyHeight() int {
	h := m.height
	if !m.state.UIHidden || m.reader == nil {
		h -= headerRows + footerRows
	}
	return max(h, 1)
}

func (m Model) renderBody(h int) string {
	s := m.state
	switch s.Phase {
	case viewerdto.PhaseLoading:
		return m.center(h, lipgloss.JoinVertical(lipgloss.Center,
			m.spinner.View()+" Loading PDF…",
			"",
			m.bar.ViewAs(float64(s.Progress)/100),
			theme.Muted.Render(fmt.Sprintf("%d%%", s.Progress)),
		))
	case viewerdto.PhaseFailed:
		return m.center(h, m.errorPanel("Failed to load PDF", s.Error, "R: retry   esc: dismiss"))
	case viewerdto.PhaseEmpty:
		return m.center(h, theme.Muted.Render("No document loaded. Press R to retry."))
	case viewerdto.PhaseReady:
		return m.viewport.View()
	}
	return m.center(h, theme.Muted.Render("Closed"))
}

func (m Model) renderHeader() string {
	if m.reader == nil {
		return theme.Bar.Width(m.width).Render(theme.Title.Render("Reader"))
	}
	s := m.state
	right := fmt.Sprintf("%s  %d%%  %d°", pageLabel(s), int(s.Scale*100+0.5), s.Rotation)
	titleW := max(m.width-runewidth.StringWidth(right)-6, 4)
	title := runewidth.Truncate(s.Title, titleW, "…")
	gap := max(m.width-runewidth.StringWidth(title)-runewidth.StringWidth(right)-2, 1)
	return theme.Bar.Width(m.width).Render(theme.Title.Render(title) + strings.Repeat(" ", gap) + theme.Muted.Render(right))
}

func (m Model) renderFooter() string {
	hints := "←/→ page  +/- zoom  z fit  r rotate  u chrome  ↑/↓ scroll  ctrl+w close"
	return theme.Bar.Width(m.width).Render(theme.Muted.Render(runewidth.Truncate(hints, max(m.width-2, 1), "…")))
}

func (m Model) errorPanel(title, message, hint string) string {
	width := max(min(m.width-8, 64), 20)
	return theme.ErrorPanel.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left,
		theme.ErrorTitle.Render(title),
		"",
		runewidth.Wrap(message, width-6),
		"",
		theme.Muted.Render(hint),
	))
}

func (m Model) center(h int, s string) string {
	return lipgloss.Place(m.width, h, lipgloss.Center, lipgloss.Center, s)
}

func pageLabel(s viewerdto.ViewState) string {
	if s.PageCount == 0 {
		return fmt.Sprintf("p.%d", s.Page)
	}
	return fmt.Sprintf("p.%d/%d", s.Page, s.PageCount)
}

// window returns the part of line that starts offset columns in and fits in
// width columns.
func window(line string, offset, width int) string {
	var sb strings.Builder
	col := 0
	for _, r := range line {
		w := runewidth.RuneWidth(r)
		if col < offset {
			col += w
			continue
		}
		if col+w > offset+width {
			break
		}
		sb.WriteRune(r)
		col += w
	}
	return sb.String()
}

// startLoad runs the reader's load off the UI goroutine and streams its
// progress back as messages.
func startLoad(r viewerin.Reader) tea.Cmd {
	events := make(chan tea.Msg, 8)
	go func() {
		defer close(events)
		result := r.Load(context.Background(), func(percent int) {
			select {
			case events <- loadProgressMsg{reader: r, percent: percent, events: events}:
			default:
			}
		})
		events <- loadDoneMsg{reader: r, result: result}
	}()
	return waitFor(events)
}

func waitFor(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

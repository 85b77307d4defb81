package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"granth/internal/ui/theme"
)

// PaletteSubmitMsg is emitted when the user confirms a command.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is emitted when the user presses esc.
type PaletteCancelMsg struct{}

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	hintStyle = lipgloss.NewStyle().Foreground(theme.Subtext0)
	verbStyle = lipgloss.NewStyle().Foreground(theme.Lavender)
)

type paletteCommand struct {
	verb  string
	args  string
	about string
}

// commands must stay in sync with the switch in app/model.go executePalette.
var commands = []paletteCommand{
	{"open", "<slug> [page]", "read a catalog book"},
	{"url", "<link> [page]", "read a PDF link or path"},
	{"goto", "<page>", "jump to a page"},
	{"next", "", "next page"},
	{"prev", "", "previous page"},
	{"zoom", "<in|out|toggle>", "change zoom"},
	{"rotate", "", "rotate 90°"},
	{"chrome", "", "show or hide the bars"},
	{"retry", "", "reload a failed book"},
	{"close", "", "close the book"},
	{"refresh", "", "reload books and progress"},
}

const (
	maxHints   = 6
	maxHistory = 20
)

// Palette is a command-palette overlay backed by bubbles/textinput. Tab
// completes the command word; up and down walk earlier commands.
type Palette struct {
	input   textinput.Model
	visible bool
	width   int
	history []string
	cursor  int
}

// NewPalette creates an inactive Palette ready to be opened.
func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "type a command…"
	ti.CharLimit = 256
	return Palette{input: ti}
}

// Visible reports whether the palette is currently shown.
func (p Palette) Visible() bool { return p.visible }

// Open shows the palette, clears the input, and returns the focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.cursor = len(p.history)
	p.input.SetValue("")
	return p.input.Focus()
}

// SetWidth sets the render width for the overlay.
func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			p.visible = false
			p.input.Blur()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			p.visible = false
			p.input.Blur()
			p.remember(val)
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		case "tab":
			if m := matches(p.input.Value()); len(m) == 1 && !strings.Contains(p.input.Value(), " ") {
				p.input.SetValue(m[0].verb + " ")
				p.input.CursorEnd()
			}
			return p, nil
		case "up":
			if p.cursor > 0 {
				p.cursor--
				p.input.SetValue(p.history[p.cursor])
				p.input.CursorEnd()
			}
			return p, nil
		case "down":
			if p.cursor < len(p.history) {
				p.cursor++
				val := ""
				if p.cursor < len(p.history) {
					val = p.history[p.cursor]
				}
				p.input.SetValue(val)
				p.input.CursorEnd()
			}
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command") + "\n")
	sb.WriteString(": " + p.input.View() + "\n")
	if hints := matches(p.input.Value()); len(hints) > 0 {
		sb.WriteString("\n")
		for i, c := range hints {
			if i == maxHints {
				break
			}
			usage := c.verb
			if c.args != "" {
				usage += " " + c.args
			}
			sb.WriteString("  " + verbStyle.Render(padRight(usage, 24)) + hintStyle.Render(c.about) + "\n")
		}
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}

// matches returns the commands whose verb starts with the first word typed.
func matches(input string) []paletteCommand {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return commands
	}
	exact := strings.HasSuffix(input, " ") || len(fields) > 1
	var out []paletteCommand
	for _, c := range commands {
		if (exact && c.verb == fields[0]) || (!exact && strings.HasPrefix(c.verb, fields[0])) {
			out = append(out, c)
		}
	}
	return out
}

func (p *Palette) remember(val string) {
	if val == "" || (len(p.history) > 0 && p.history[len(p.history)-1] == val) {
		return
	}
	p.history = append(p.history, val)
	if len(p.history) > maxHistory {
		p.history = p.history[len(p.history)-maxHistory:]
	}
}

func padRight(s string, n int) string {
	if w := lipgloss.Width(s); w < n {
		return s + strings.Repeat(" ", n-w)
	}
	return s + " "
}

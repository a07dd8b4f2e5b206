package tui

import (
	"fmt"
	"math"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/glamour/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/Gaurav-Gosain/reelscout/movie"
	"github.com/Gaurav-Gosain/reelscout/output"
)

var barFieldStyle = lipgloss.NewStyle().Foreground(tnPurple).Background(tnDark).Bold(true)

// detailField is a line of the card the pager can jump to.
type detailField struct {
	key   string
	label string
}

var detailFields = []detailField{
	{key: "d", label: "Director"},
	{key: "a", label: "Actors"},
	{key: "p", label: "Plot"},
}

// openDetail shows the full card for mv. from is the screen esc returns to.
func (m *appModel) openDetail(mv movie.Movie, rec movie.Record, from screen) tea.Cmd {
	m.screen = screenDetail
	m.returnTo = from
	m.detail = mv
	m.detailRec = rec
	m.field = ""
	m.input.Blur()
	return m.renderDetail()
}

// detailKey identifies a rendering of the open card. The favorite marker is
// part of the card, so toggling it yields a new key.
func (m appModel) detailKey() string {
	return fmt.Sprintf("%s|%t|%d", favoriteID(m.detail, m.detailRec), m.isFavoriteMovie(m.detail, m.detailRec), m.width)
}

func (m *appModel) renderDetail() tea.Cmd {
	key := m.detailKey()
	if cached, ok := m.rendered[key]; ok {
		m.viewport.SetContent(cached)
		return nil
	}
	m.viewport.SetContent(dimStyle.Render(renderingNotice))
	return glamourCmd(key, output.Markdown(m.detail, m.isFavoriteMovie(m.detail, m.detailRec)), m.width)
}

func glamourCmd(key, md string, width int) tea.Cmd {
	return func() tea.Msg {
		ww := max(20, width-4)
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("tokyo-night"),
			glamour.WithWordWrap(ww),
		)
		if err != nil {
			return glamourRenderedMsg{key: key, rendered: md}
		}
		out, err := r.Render(md)
		if err != nil {
			return glamourRenderedMsg{key: key, rendered: md}
		}
		return glamourRenderedMsg{key: key, rendered: out}
	}
}

func (m appModel) updateDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch key := kmsg.String(); key {
		case "q":
			return m, tea.Quit
		case "esc", "left", "h":
			cmd := m.leaveDetail()
			return m, cmd
		case "f":
			m.toggleFavorite(m.detail, m.detailRec)
			cmd := m.renderDetail()
			return m, cmd
		case "g", "home":
			m.field = ""
			m.viewport.GotoTop()
			return m, nil
		case "G", "end":
			m.field = ""
			m.viewport.GotoBottom()
			return m, nil
		case "d", "a", "p":
			m.jumpToField(key)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// --- Field jumps ---

// fieldLines returns the line of each field present in a rendered card.
// The plot has no label: it is the first text after the ID line.
func fieldLines(rendered string) map[string]int {
	lines := make(map[string]int)
	afterID := false
	for i, line := range strings.Split(ansi.Strip(rendered), "\n") {
		text := strings.TrimSpace(line)
		switch {
		case afterID:
			if text != "" {
				lines["Plot"] = i
				return lines
			}
		case strings.Contains(text, "Director:"):
			lines["Director"] = i
		case strings.Contains(text, "Actors:"):
			lines["Actors"] = i
		case strings.Contains(text, "ID:"):
			afterID = true
		}
	}
	return lines
}

// availableFields lists the jumpable fields of the open card in order.
func (m appModel) availableFields() []detailField {
	lines := fieldLines(m.rendered[m.detailKey()])
	var out []detailField
	for _, f := range detailFields {
		if _, ok := lines[f.label]; ok {
			out = append(out, f)
		}
	}
	return out
}

// jumpToField scrolls the field bound to key to the top of the pager. A
// field the card does not have leaves the pager where it is.
func (m *appModel) jumpToField(key string) {
	lines := fieldLines(m.rendered[m.detailKey()])
	for _, f := range detailFields {
		if f.key != key {
			continue
		}
		if line, ok := lines[f.label]; ok {
			m.field = f.label
			m.viewport.SetYOffset(line)
		}
		return
	}
}

// --- View ---

func (m appModel) detailView() string {
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	m.progressBarLine(&b)
	m.detailInfoBar(&b)
	return b.String()
}

func (m appModel) progressBarLine(b *strings.Builder) {
	pct := m.viewport.ScrollPercent()
	filled := min(int(math.Round(pct*float64(m.width))), m.width)
	empty := max(0, m.width-filled)
	b.WriteString(progressFilledStyle.Render(strings.Repeat("━", filled)))
	b.WriteString(progressEmptyStyle.Render(strings.Repeat("─", empty)))
	b.WriteString("\n")
}

func (m appModel) detailInfoBar(b *strings.Builder) {
	logo := logoStyle.Render("reelscout")
	if m.isFavoriteMovie(m.detail, m.detailRec) {
		logo = favLogoStyle.Render("♥ favorite")
	}

	note := " " + m.detail.Title + " "

	var fieldInfo string
	if m.field != "" {
		fieldInfo = barFieldStyle.Render(" " + m.field + " ")
	}

	helpParts := []string{"esc back", "f favorite"}
	for _, f := range m.availableFields() {
		helpParts = append(helpParts, f.key+" "+strings.ToLower(f.label))
	}
	help := barHelpStyle.Render(" " + strings.Join(helpParts, "  ") + " ")

	fixedW := lipgloss.Width(logo) + lipgloss.Width(fieldInfo) + lipgloss.Width(help)
	noteMax := max(0, m.width-fixedW)
	if lipgloss.Width(note) > noteMax {
		note = ansi.Truncate(note, noteMax, "…")
	}
	note = barNoteFg.Render(note)

	usedW := lipgloss.Width(logo) + lipgloss.Width(note) + lipgloss.Width(fieldInfo) + lipgloss.Width(help)
	pad := max(0, m.width-usedW)

	b.WriteString(logo)
	b.WriteString(note)
	b.WriteString(barNoteFg.Render(strings.Repeat(" ", pad)))
	b.WriteString(fieldInfo)
	b.WriteString(help)
}

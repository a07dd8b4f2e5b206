package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/Gaurav-Gosain/reelscout/display"
	"github.com/Gaurav-Gosain/reelscout/movie"
)

const (
	noResultsText = "No movies found. Try a different search."
	hintText      = "Type a movie title and press enter."
)

func (m appModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.input.Focused() {
		return m.updateSearchInput(msg)
	}

	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	visible := m.display.Visible()
	var cmd tea.Cmd
	switch kmsg.String() {
	case "q":
		return m, tea.Quit
	case "/", "i", "esc":
		m.input.CursorEnd()
		return m, m.input.Focus()
	case "tab":
		m.gotoFavorites()
		return m, nil
	case "j", "down":
		m.moveCursorDown()
		cmd = m.checkSentinel()
	case "k", "up":
		if m.cursor == 0 {
			m.input.CursorEnd()
			return m, m.input.Focus()
		}
		m.moveCursorUp()
	case "g", "home":
		m.cursor = 0
		m.listOffset = 0
	case "G", "end":
		m.cursor = max(0, len(visible)-1)
		m.ensureVisible()
		cmd = m.checkSentinel()
	case "f", "space":
		if m.cursor < len(visible) {
			m.toggleFavorite(visible[m.cursor], m.recordAt(m.cursor))
		}
	case "enter", "right", "l":
		if m.cursor < len(visible) {
			cmd = m.openDetail(visible[m.cursor], m.recordAt(m.cursor), screenSearch)
		}
	}
	return m, cmd
}

func (m appModel) updateSearchInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "enter":
			cmd := m.submit(m.input.Value())
			return m, cmd
		case "tab":
			m.gotoFavorites()
			return m, nil
		case "down", "esc":
			if len(m.display.Visible()) > 0 {
				m.input.Blur()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts a search for query. A blank query shows the empty state
// right away and makes no request.
func (m *appModel) submit(query string) tea.Cmd {
	q, seq, ok := m.display.Submit(query)
	m.records = nil
	m.cursor = 0
	m.listOffset = 0
	m.notice = ""
	if !ok {
		return nil
	}

	m.logger.Debug("Searching", "query", q, "seq", seq)
	exec, ctx := m.exec, m.ctx
	return func() tea.Msg {
		var records []movie.Record
		if exec != nil {
			records = exec.Search(ctx, q)
		}
		return searchResultMsg{seq: seq, query: q, records: records}
	}
}

// handleSearchResult installs a search response. A response to an older
// submission still replaces what is shown.
func (m appModel) handleSearchResult(msg searchResultMsg) (tea.Model, tea.Cmd) {
	current := msg.seq == m.display.Seq()
	if !current {
		m.logger.Debug("Out-of-order search response", "query", msg.query, "seq", msg.seq, "latest", m.display.Seq())
	}

	m.records = msg.records
	m.display.Resolve(movie.NormalizeAll(msg.records))
	m.cursor = 0
	m.listOffset = 0
	if current && len(msg.records) > 0 && m.screen == screenSearch {
		m.input.Blur()
	}
	cmd := m.checkSentinel()
	return m, cmd
}

// recordAt returns the raw record behind visible row i.
func (m appModel) recordAt(i int) movie.Record {
	if len(m.records) == 0 {
		return nil
	}
	return m.records[i%len(m.records)]
}

// --- Load more ---

func (m appModel) sampleCmd() tea.Cmd {
	return tick(display.SampleInterval, scrollSampleMsg{gen: m.samplerGen})
}

// listViewport describes the rendered list in terminal rows.
func (m appModel) listViewport() display.Viewport {
	if m.height <= 0 {
		return display.Viewport{}
	}
	return display.Viewport{
		Offset: m.listOffset * cardHeight,
		Height: m.perPage() * cardHeight,
		Total:  m.display.VisibleCount() * cardHeight,
	}
}

func (m *appModel) checkSentinel() tea.Cmd {
	if m.screen != screenSearch {
		return nil
	}
	return m.requestMore("sentinel", m.listViewport().SentinelInView())
}

func (m *appModel) checkProximity() tea.Cmd {
	if m.screen != screenSearch {
		return nil
	}
	return m.requestMore("proximity", m.listViewport().NearBottom())
}

func (m *appModel) requestMore(trigger string, fired bool) tea.Cmd {
	if !fired || !m.display.RequestMore() {
		return nil
	}
	m.logger.Debug("Loading more", "trigger", trigger, "visible", m.display.VisibleCount())
	return tick(display.LoadMoreDelay, loadMoreDoneMsg{seq: m.display.Seq()})
}

// --- Cursor ---

func (m *appModel) moveCursorDown() {
	if m.cursor < m.display.VisibleCount()-1 {
		m.cursor++
		m.ensureVisible()
	}
}

func (m *appModel) moveCursorUp() {
	if m.cursor > 0 {
		m.cursor--
		m.ensureVisible()
	}
}

func (m *appModel) ensureVisible() {
	pp := m.perPage()
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	} else if m.cursor >= m.listOffset+pp {
		m.listOffset = m.cursor - pp + 1
	}
}

func (m appModel) perPage() int {
	avail := m.height - listTopPadding - listBottomPad
	return max(1, avail/cardHeight)
}

// --- View ---

func (m appModel) searchView() string {
	var b strings.Builder
	visible := m.display.Visible()

	b.WriteString("\n  ")
	b.WriteString(logoStyle.Render("reelscout"))
	if m.display.HasSearched() && m.display.State() != display.Loading {
		b.WriteString("  ")
		b.WriteString(countStyle.Render(fmt.Sprintf("%d", len(m.display.Results()))))
		b.WriteString(dimStyle.Render(" results"))
		if q := m.display.Query(); q != "" {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  •  %q", q)))
		}
	}
	if n := m.favoriteCount(); n > 0 {
		b.WriteString(dimStyle.Render("  •  "))
		b.WriteString(heartStyle.Render(fmt.Sprintf("♥ %d", n)))
	}
	b.WriteString("\n\n  ")
	b.WriteString(m.input.View())
	b.WriteString("\n  ")
	b.WriteString(subtleStyle.Render(strings.Repeat("─", max(0, m.width-4))))
	b.WriteString("\n")

	itemLines := 2
	switch {
	case m.display.State() == display.Loading:
		b.WriteString("\n  " + m.spinner.View() + dimStyle.Render(" Loading...") + "\n")
	case !m.display.HasSearched():
		b.WriteString("\n  " + dimStyle.Render(hintText) + "\n")
	case len(visible) == 0:
		b.WriteString("\n  " + messageStyle.Render(noResultsText) + "\n")
	default:
		pp := m.perPage()
		end := min(m.listOffset+pp, len(visible))
		for i := m.listOffset; i < end; i++ {
			b.WriteString(m.renderCard(visible[i], m.recordAt(i), i == m.cursor && !m.input.Focused()))
		}
		itemLines = (end - m.listOffset) * cardHeight
	}

	if avail := m.height - listTopPadding - listBottomPad - itemLines; avail > 0 {
		b.WriteString(strings.Repeat("\n", avail))
	}

	b.WriteString("\n  ")
	switch {
	case m.notice != "":
		b.WriteString(noPosterStyle.Render(m.notice))
	case m.display.State() == display.LoadingMore:
		b.WriteString(m.spinner.View() + dimStyle.Render(" Loading more..."))
	}
	b.WriteString("\n")

	if m.input.Focused() {
		b.WriteString(dimStyle.Render("  enter search  •  ↓ results  •  tab favorites  •  ctrl+c quit"))
	} else {
		b.WriteString(dimStyle.Render("  ↑↓/jk navigate  •  enter details  •  f favorite  •  / search  •  tab favorites  •  q quit"))
	}
	return b.String()
}

// renderCard renders one movie as a two-line card preceded by a gap line.
// rec is the raw record behind mv, or nil for a stored favorite.
func (m appModel) renderCard(mv movie.Movie, rec movie.Record, selected bool) string {
	gut := normalGutter
	titStyle := normalTitleStyle
	metStyle := normalMetaStyle
	if selected {
		gut = selectedGutter
		titStyle = selectedTitleStyle
		metStyle = selectedMetaStyle
	}

	heart := " "
	if m.isFavoriteMovie(mv, rec) {
		heart = heartStyle.Render("♥")
	}

	truncTo := max(20, m.width-listHPad*2)
	title := ansi.Truncate(mv.Title, truncTo, "…")

	meta := []string{mv.Year, mv.GenreLabel(), "★ " + mv.Rating, mv.Type}
	metaStr := ansi.Truncate(strings.Join(meta, "  •  "), max(0, truncTo-12), "…")

	poster := posterStyle.Render("▣ poster")
	if !mv.HasPoster() {
		poster = noPosterStyle.Render("No Image")
	}

	return fmt.Sprintf("\n  %s  %s  %s\n       %s  %s\n",
		gut, heart, titStyle.Render(title), metStyle.Render(metaStr), poster)
}

func (m appModel) favoriteCount() int {
	if m.favs == nil {
		return 0
	}
	return m.favs.Len()
}

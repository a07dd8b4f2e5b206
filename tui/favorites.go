package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/Gaurav-Gosain/reelscout/movie"
)

const noFavoritesText = "No favorite movies yet. Add some from the main page!"

func (m appModel) updateFavorites(msg tea.Msg) (tea.Model, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	favs := m.favoriteMovies()
	switch kmsg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "tab", "left", "h", "b":
		cmd := m.gotoSearch()
		return m, cmd
	case "j", "down":
		if m.favCursor < len(favs)-1 {
			m.favCursor++
			m.ensureFavVisible()
		}
	case "k", "up":
		if m.favCursor > 0 {
			m.favCursor--
			m.ensureFavVisible()
		}
	case "g", "home":
		m.favCursor = 0
		m.favOffset = 0
	case "G", "end":
		m.favCursor = max(0, len(favs)-1)
		m.ensureFavVisible()
	case "x", "d", "delete", "f":
		if m.favCursor < len(favs) {
			m.removeFavorite(favs[m.favCursor])
		}
	case "enter", "right", "l":
		if m.favCursor < len(favs) {
			mv := favs[m.favCursor]
			cmd := m.openDetail(mv, m.favoriteRecord(mv.ID), screenFavorites)
			return m, cmd
		}
	}
	return m, nil
}

func (m *appModel) removeFavorite(mv movie.Movie) {
	if err := m.favs.Remove(mv.ID); err != nil {
		m.logger.Error("Error saving favorites", "id", mv.ID, "err", err)
		m.notice = "Could not save favorites: " + err.Error()
		return
	}
	m.notice = ""
	m.logger.Debug("Removed favorite", "id", mv.ID)
	m.clampFavCursor()
}

// favoriteRecord returns the stored record for id, if any.
func (m appModel) favoriteRecord(id string) movie.Record {
	if m.favs == nil {
		return nil
	}
	for _, r := range m.favs.Entries() {
		if movie.IDOf(r) == id {
			return r
		}
	}
	return nil
}

func (m *appModel) clampFavCursor() {
	n := m.favoriteCount()
	if m.favCursor >= n {
		m.favCursor = max(0, n-1)
	}
	m.ensureFavVisible()
}

func (m *appModel) ensureFavVisible() {
	pp := m.perPage()
	if m.favCursor < m.favOffset {
		m.favOffset = m.favCursor
	} else if m.favCursor >= m.favOffset+pp {
		m.favOffset = m.favCursor - pp + 1
	}
}

func (m appModel) favoritesView() string {
	var b strings.Builder
	favs := m.favoriteMovies()

	b.WriteString("\n  ")
	b.WriteString(favLogoStyle.Render("favorites"))
	b.WriteString("  ")
	b.WriteString(heartStyle.Render(fmt.Sprintf("♥ %d", len(favs))))
	b.WriteString(dimStyle.Render(" saved"))
	b.WriteString("\n\n  ")
	b.WriteString(dimStyle.Render("Your favorite movies"))
	b.WriteString("\n  ")
	b.WriteString(subtleStyle.Render(strings.Repeat("─", max(0, m.width-4))))
	b.WriteString("\n")

	itemLines := 2
	if len(favs) == 0 {
		b.WriteString("\n  " + messageStyle.Render(noFavoritesText) + "\n")
	} else {
		end := min(m.favOffset+m.perPage(), len(favs))
		for i := m.favOffset; i < end; i++ {
			b.WriteString(m.renderCard(favs[i], nil, i == m.favCursor))
		}
		itemLines = (end - m.favOffset) * cardHeight
	}

	if avail := m.height - listTopPadding - listBottomPad - itemLines; avail > 0 {
		b.WriteString(strings.Repeat("\n", avail))
	}

	b.WriteString("\n  ")
	if m.notice != "" {
		b.WriteString(noPosterStyle.Render(m.notice))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  ↑↓/jk navigate  •  enter details  •  x remove  •  esc back  •  q quit"))
	return b.String()
}

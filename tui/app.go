package tui

import (
	"context"
	"io"
	"time"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/log/v2"

	"github.com/Gaurav-Gosain/reelscout/display"
	"github.com/Gaurav-Gosain/reelscout/favorites"
	"github.com/Gaurav-Gosain/reelscout/movie"
	"github.com/Gaurav-Gosain/reelscout/source"
)

// --- Messages ---

// searchResultMsg carries the records of one submission back to the
// update loop.
type searchResultMsg struct {
	seq     uint64
	query   string
	records []movie.Record
}

// loadMoreDoneMsg fires once a load-more has been in flight for
// display.LoadMoreDelay.
type loadMoreDoneMsg struct {
	seq uint64
}

// scrollSampleMsg is one tick of the proximity sampler. Ticks from an older
// generation are dropped, which tears the sampler down.
type scrollSampleMsg struct {
	gen int
}

type glamourRenderedMsg struct {
	key      string
	rendered string
}

// --- Screens ---

type screen int

const (
	screenSearch screen = iota
	screenFavorites
	screenDetail
)

const (
	cardHeight      = 3 // title + meta + gap
	listTopPadding  = 5 // blank + header + blank + input + separator
	listBottomPad   = 3 // blank + status + help
	listHPad        = 4
	pagerBarHeight  = 2 // progress line + info line
	renderingNotice = "\n  Rendering..."
)

type appModel struct {
	ctx    context.Context
	exec   *source.Executor
	favs   *favorites.Store
	logger *log.Logger

	screen screen
	width  int
	height int

	// Search screen
	input      textinput.Model
	spinner    spinner.Model
	display    *display.Controller
	records    []movie.Record
	cursor     int
	listOffset int
	samplerGen int
	initial    string

	// Favorites screen
	favCursor int
	favOffset int

	// Detail screen
	viewport  viewport.Model
	detail    movie.Movie
	detailRec movie.Record
	returnTo  screen
	rendered  map[string]string
	// field is the card field last jumped to, shown in the info bar.
	field string

	// notice is a one-line status shown under the list, e.g. a failed save.
	notice string
}

func newAppModel(ctx context.Context, opts Options) appModel {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	in := textinput.New()
	in.Prompt = "Search: "
	in.Placeholder = "Search for a movie..."
	ins := in.Styles()
	ins.Focused.Prompt = promptStyle
	ins.Blurred.Prompt = promptStyle
	in.SetStyles(ins)
	in.SetValue(opts.Query)
	in.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(countStyle),
	)

	return appModel{
		ctx:      ctx,
		exec:     opts.Executor,
		favs:     opts.Favorites,
		logger:   logger,
		screen:   screenSearch,
		input:    in,
		spinner:  sp,
		display:  display.New(),
		initial:  opts.Query,
		viewport: viewport.New(),
		rendered: make(map[string]string),
	}
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.sampleCmd())
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.SetWidth(msg.Width)
		m.viewport.SetHeight(msg.Height - pagerBarHeight)
		m.rendered = make(map[string]string)
		m.ensureVisible()
		m.ensureFavVisible()
		cmds := []tea.Cmd{m.checkSentinel()}
		if m.screen == screenDetail {
			cmds = append(cmds, m.renderDetail())
		}
		// The first size message doubles as the start signal for a query
		// passed on the command line.
		if m.initial != "" {
			q := m.initial
			m.initial = ""
			cmds = append(cmds, m.submit(q))
		}
		return m, tea.Batch(cmds...)

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case searchResultMsg:
		return m.handleSearchResult(msg)

	case loadMoreDoneMsg:
		if msg.seq != m.display.Seq() || !m.display.FinishMore() {
			return m, nil
		}
		m.logger.Debug("Loaded more", "visible", m.display.VisibleCount())
		cmd := m.checkSentinel()
		return m, cmd

	case scrollSampleMsg:
		if msg.gen != m.samplerGen || m.screen != screenSearch {
			return m, nil
		}
		cmd := tea.Batch(m.checkProximity(), m.sampleCmd())
		return m, cmd

	case glamourRenderedMsg:
		m.rendered[msg.key] = msg.rendered
		if m.screen == screenDetail && m.detailKey() == msg.key {
			m.viewport.SetContent(msg.rendered)
			m.viewport.GotoTop()
		}
		return m, nil
	}

	switch m.screen {
	case screenFavorites:
		return m.updateFavorites(msg)
	case screenDetail:
		return m.updateDetail(msg)
	default:
		return m.updateSearch(msg)
	}
}

func (m appModel) View() tea.View {
	var s string
	switch m.screen {
	case screenFavorites:
		s = m.favoritesView()
	case screenDetail:
		s = m.detailView()
	default:
		s = m.searchView()
	}
	v := tea.NewView(s)
	v.AltScreen = true
	return v
}

// --- Navigation ---

func (m *appModel) gotoSearch() tea.Cmd {
	m.screen = screenSearch
	m.samplerGen++
	m.ensureVisible()
	return tea.Batch(m.sampleCmd(), m.checkSentinel())
}

func (m *appModel) gotoFavorites() {
	m.screen = screenFavorites
	// Leaving the search screen stops its sampler.
	m.samplerGen++
	m.input.Blur()
	m.favCursor = 0
	m.favOffset = 0
}

func (m *appModel) leaveDetail() tea.Cmd {
	m.field = ""
	if m.returnTo == screenFavorites {
		m.screen = screenFavorites
		m.clampFavCursor()
		return nil
	}
	return m.gotoSearch()
}

// --- Favorites ---

// favoriteID is the id mv is kept under in the favorites. rec is the raw
// record behind mv; without one, mv.ID is used as is.
func favoriteID(mv movie.Movie, rec movie.Record) string {
	if rec == nil {
		return mv.ID
	}
	return movie.FavoriteID(rec)
}

// toggleFavorite flips the favorite status of mv. rec is the raw record as
// the source delivered it; records without an id of their own are stored
// with their favorite id so they can be found again on removal.
func (m *appModel) toggleFavorite(mv movie.Movie, rec movie.Record) {
	if m.favs == nil {
		return
	}
	id := favoriteID(mv, rec)
	if rec == nil {
		rec = mv.Record()
	}
	if movie.IDOf(rec) == "" {
		rec = rec.Clone()
		rec["id"] = id
	}

	added, err := m.favs.Toggle(id, rec)
	if err != nil {
		m.logger.Error("Error saving favorites", "id", id, "err", err)
		m.notice = "Could not save favorites: " + err.Error()
		return
	}
	m.notice = ""
	m.logger.Debug("Toggled favorite", "id", id, "favorite", added)
}

// isFavoriteMovie reports whether mv, backed by rec, is a favorite.
func (m appModel) isFavoriteMovie(mv movie.Movie, rec movie.Record) bool {
	return m.isFavorite(favoriteID(mv, rec))
}

func (m appModel) isFavorite(id string) bool {
	return m.favs != nil && m.favs.IsFavorite(id)
}

func (m appModel) favoriteMovies() []movie.Movie {
	if m.favs == nil {
		return nil
	}
	return m.favs.Movies()
}

// --- Helpers ---

func tick(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

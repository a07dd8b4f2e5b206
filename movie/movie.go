package movie

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// NotAvailable is what providers (and the cards) use for a missing value.
const NotAvailable = "N/A"

// Candidate keys per logical field, provider-native spelling first.
var (
	IDKeys       = []string{"imdbID", "id", "_id"}
	TitleKeys    = []string{"title", "Title", "name"}
	YearKeys     = []string{"year", "Year", "releaseYear"}
	PosterKeys   = []string{"Poster", "poster", "image"}
	GenreKeys    = []string{"genres", "Genres", "genre", "Genre"}
	RatingKeys   = []string{"imdbRating", "rating"}
	TypeKeys     = []string{"Type", "type"}
	PlotKeys     = []string{"Plot", "plot", "overview", "description"}
	DirectorKeys = []string{"Director", "director"}
	ActorsKeys   = []string{"Actors", "actors"}
	RuntimeKeys  = []string{"Runtime", "runtime"}
)

// Movie is the fixed-shape projection of a Record.
type Movie struct {
	ID       string
	Title    string
	Year     string
	Poster   string // empty when the source has no usable poster
	Genres   []string
	Rating   string
	Type     string
	Plot     string
	Director string
	Actors   string
	Runtime  string
}

// Normalize resolves every logical field of r. index is the record's
// position in its result set and only feeds the fallback id.
func Normalize(r Record, index int) Movie {
	poster := PickString(r, PosterKeys, "")
	if poster == NotAvailable {
		poster = ""
	}

	return Movie{
		ID:       PickString(r, IDKeys, fmt.Sprintf("movie-%d", index)),
		Title:    PickString(r, TitleKeys, "Unknown"),
		Year:     PickString(r, YearKeys, NotAvailable),
		Poster:   poster,
		Genres:   splitList(Pick(r, GenreKeys, nil)),
		Rating:   PickString(r, RatingKeys, NotAvailable),
		Type:     PickString(r, TypeKeys, NotAvailable),
		Plot:     PickString(r, PlotKeys, ""),
		Director: PickString(r, DirectorKeys, ""),
		Actors:   PickString(r, ActorsKeys, ""),
		Runtime:  PickString(r, RuntimeKeys, ""),
	}
}

// NormalizeAll normalizes a result set in order.
func NormalizeAll(records []Record) []Movie {
	out := make([]Movie, len(records))
	for i, r := range records {
		out[i] = Normalize(r, i)
	}
	return out
}

// TitleOf is the title used for client-side filtering; it falls back to ""
// rather than "Unknown" so untitled records never match a query.
func TitleOf(r Record) string {
	return PickString(r, TitleKeys, "")
}

// IDOf returns the record's identifier, or "" when it has none.
func IDOf(r Record) string {
	return PickString(r, IDKeys, "")
}

// FavoriteID returns the id r is kept under in the favorites. Records
// without an id of their own get one derived from title and year, so the
// same movie maps to the same id in every result set.
func FavoriteID(r Record) string {
	if id := IDOf(r); id != "" {
		return id
	}
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%s\x00%s", strings.ToLower(TitleOf(r)), PickString(r, YearKeys, ""))
	return fmt.Sprintf("local-%016x", h.Sum64())
}

// HasPoster reports whether the movie has a usable poster URL.
func (m Movie) HasPoster() bool {
	return m.Poster != ""
}

// GenreLabel joins the genres for display.
func (m Movie) GenreLabel() string {
	if len(m.Genres) == 0 {
		return NotAvailable
	}
	return strings.Join(m.Genres, ", ")
}

// Record emits m under the first candidate key of each field, so that
// Normalize(m.Record(), i) gives m back.
func (m Movie) Record() Record {
	r := Record{
		IDKeys[0]:     m.ID,
		TitleKeys[0]:  m.Title,
		YearKeys[0]:   m.Year,
		RatingKeys[0]: m.Rating,
		TypeKeys[0]:   m.Type,
	}
	if m.Poster != "" {
		r[PosterKeys[0]] = m.Poster
	}
	if len(m.Genres) > 0 {
		r[GenreKeys[0]] = append([]string(nil), m.Genres...)
	}
	optional := map[string]string{
		PlotKeys[0]:     m.Plot,
		DirectorKeys[0]: m.Director,
		ActorsKeys[0]:   m.Actors,
		RuntimeKeys[0]:  m.Runtime,
	}
	for k, v := range optional {
		if v != "" {
			r[k] = v
		}
	}
	return r
}

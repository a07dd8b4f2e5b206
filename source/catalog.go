package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Gaurav-Gosain/reelscout/movie"
)

// Catalog fetches a whole catalog document and filters it by title on the
// client. It serves both the gist and the local backend kinds.
type Catalog struct {
	name  string
	url   string
	fetch *Fetcher
}

func NewCatalog(name, url string, f *Fetcher) *Catalog {
	return &Catalog{name: name, url: url, fetch: f}
}

func (c *Catalog) Name() string {
	return c.name
}

func (c *Catalog) Search(ctx context.Context, query string) ([]movie.Record, error) {
	body, err := c.fetch.Get(ctx, c.url)
	if err != nil {
		return nil, err
	}

	records, err := DecodeCatalog(body)
	if err != nil {
		return nil, err
	}
	return FilterByTitle(records, query), nil
}

// DecodeCatalog accepts a JSON array of records, or an object holding the
// array under "movies" or "Movies". An object with neither key is an empty
// catalog.
func DecodeCatalog(body []byte) ([]movie.Record, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var list any
	switch t := doc.(type) {
	case []any:
		list = t
	case map[string]any:
		list = movie.Pick(movie.Record(t), []string{"movies", "Movies"}, []any{})
	default:
		return nil, fmt.Errorf("%w: top-level %T", ErrMalformed, doc)
	}

	items, ok := list.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: movies is %T, not an array", ErrMalformed, list)
	}

	records := make([]movie.Record, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			records = append(records, movie.Record(obj))
		}
	}
	return records, nil
}

// FilterByTitle keeps the records whose title contains query, ignoring
// case. Order is preserved.
func FilterByTitle(records []movie.Record, query string) []movie.Record {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]movie.Record, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(movie.TitleOf(r)), q) {
			out = append(out, r)
		}
	}
	return out
}

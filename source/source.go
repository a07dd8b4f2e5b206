// Package source searches the configured movie data source and returns the
// raw records it delivers.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"charm.land/log/v2"

	"github.com/Gaurav-Gosain/reelscout/movie"
)

var (
	// ErrNoResults is a provider-reported empty result.
	ErrNoResults = errors.New("no results")
	// ErrBadStatus is a non-success HTTP status.
	ErrBadStatus = errors.New("unexpected status")
	// ErrMalformed is a body that is not the expected JSON shape.
	ErrMalformed = errors.New("malformed response")
)

// Source kinds.
const (
	KindGist    = "gist"
	KindBackend = "backend"
	KindOMDB    = "omdb"
)

// Default endpoints.
const (
	DefaultGistURL    = "https://gist.githubusercontent.com/saniyusuf/406b843afdfb9c6a86e25753fe2761f4/raw/075b6aaba5ee43554ecd55006e5d080a8acf08fe/Film.JSON"
	DefaultBackendURL = "http://localhost:5000/movies"
	DefaultOMDBURL    = "https://www.omdbapi.com/"
)

// Source is a movie data source.
type Source interface {
	// Name identifies the source kind.
	Name() string
	// Search returns the records matching query. query is already trimmed
	// and non-empty.
	Search(ctx context.Context, query string) ([]movie.Record, error)
}

// Settings selects and configures a Source.
type Settings struct {
	Kind       string
	GistURL    string
	BackendURL string
	OMDBURL    string
	APIKey     string
	Timeout    time.Duration
}

// New builds the Source described by s.
func New(s Settings) (Source, error) {
	f := &Fetcher{Timeout: s.Timeout, UserAgent: UserAgent}

	switch strings.ToLower(strings.TrimSpace(s.Kind)) {
	case KindGist, "":
		return NewCatalog(KindGist, orDefault(s.GistURL, DefaultGistURL), f), nil
	case KindBackend:
		return NewCatalog(KindBackend, orDefault(s.BackendURL, DefaultBackendURL), f), nil
	case KindOMDB:
		if s.APIKey == "" {
			return nil, fmt.Errorf("omdb source requires an API key")
		}
		return NewOMDB(orDefault(s.OMDBURL, DefaultOMDBURL), s.APIKey, f), nil
	default:
		return nil, fmt.Errorf("unknown source %q (want gist, backend or omdb)", s.Kind)
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// Executor runs searches against a Source. It never fails: every error is
// logged and reported to the caller as an empty result.
type Executor struct {
	source Source
	logger *log.Logger
}

func NewExecutor(src Source, logger *log.Logger) *Executor {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Executor{source: src, logger: logger}
}

// Search trims query and searches for it. A blank query returns nil
// without contacting the source.
func (e *Executor) Search(ctx context.Context, query string) []movie.Record {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	start := time.Now()
	records, err := e.source.Search(ctx, query)
	switch {
	case errors.Is(err, ErrNoResults):
		e.logger.Info("No movies found", "source", e.source.Name(), "query", query, "err", err)
		return nil
	case err != nil:
		e.logger.Error("Error fetching movies", "source", e.source.Name(), "query", query, "err", err)
		return nil
	}

	e.logger.Debug("Search done", "source", e.source.Name(), "query", query, "results", len(records), "took", time.Since(start))
	return records
}

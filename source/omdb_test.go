package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gaurav-Gosain/reelscout/movie"
)

type omdbFake struct {
	search  string
	details map[string]string // imdbID -> body; missing id -> 500
	calls   atomic.Int64
	keys    atomic.Int64
}

func (f *omdbFake) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	if r.URL.Query().Get("apikey") == "test-key" {
		f.keys.Add(1)
	}
	w.Header().Set("Content-Type", "application/json")

	if r.URL.Query().Get("s") != "" {
		_, _ = w.Write([]byte(f.search))
		return
	}
	body, ok := f.details[r.URL.Query().Get("i")]
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	_, _ = w.Write([]byte(body))
}

func newOMDBFake(t *testing.T, fake *omdbFake) *OMDB {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewOMDB(srv.URL+"/", "test-key", testFetcher())
}

const twoHits = `{"Search": [
	{"Title": "Batman Begins", "Year": "2005", "imdbID": "tt0372784", "Type": "movie", "Poster": "https://img/bb.jpg"},
	{"Title": "Batman", "Year": "1989", "imdbID": "tt0096895", "Type": "movie", "Poster": "https://img/b.jpg"}
], "totalResults": "2", "Response": "True"}`

func TestOMDB_DetailFailureFallsBackPerItem(t *testing.T) {
	fake := &omdbFake{
		search: twoHits,
		details: map[string]string{
			"tt0372784": `{"Title": "Batman Begins", "Year": "2005", "imdbRating": "8.2", "Type": "movie",
				"imdbID": "tt0372784", "Poster": "https://img/bb.jpg", "Genre": "Action, Crime", "Response": "True"}`,
		},
	}
	o := newOMDBFake(t, fake)

	got, err := o.Search(context.Background(), "batman")
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := movie.Normalize(got[0], 0)
	assert.Equal(t, "Batman Begins", first.Title)
	assert.Equal(t, "8.2", first.Rating)
	assert.Equal(t, []string{"Action", "Crime"}, first.Genres)
	assert.NotContains(t, got[0], "Response")

	second := movie.Normalize(got[1], 1)
	assert.Equal(t, "Batman", second.Title)
	assert.Equal(t, "1989", second.Year)
	assert.Equal(t, "https://img/b.jpg", second.Poster)
	assert.Equal(t, "tt0096895", second.ID)
	assert.Equal(t, movie.NotAvailable, second.Rating)

	assert.Equal(t, int64(3), fake.calls.Load(), "one search plus one detail per hit")
	assert.Equal(t, int64(3), fake.keys.Load(), "every request carries the api key")
}

func TestOMDB_DetailResponseFalseFallsBack(t *testing.T) {
	fake := &omdbFake{
		search: twoHits,
		details: map[string]string{
			"tt0372784": `{"Response": "False", "Error": "Incorrect IMDb ID."}`,
			"tt0096895": `not json`,
		},
	}
	got, err := newOMDBFake(t, fake).Search(context.Background(), "batman")
	require.NoError(t, err)
	require.Len(t, got, 2)

	for i, r := range got {
		assert.Equal(t, movie.NotAvailable, r["imdbRating"], "hit %d", i)
	}
	assert.Equal(t, "Batman Begins", got[0]["Title"])
}

func TestOMDB_NoResults(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"response false", `{"Response": "False", "Error": "Movie not found!"}`},
		{"empty search", `{"Search": [], "Response": "True"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &omdbFake{search: tt.body}
			_, err := newOMDBFake(t, fake).Search(context.Background(), "zzzz")
			assert.ErrorIs(t, err, ErrNoResults)
			assert.Equal(t, int64(1), fake.calls.Load(), "no detail lookups")
		})
	}
}

func TestOMDB_Malformed(t *testing.T) {
	fake := &omdbFake{search: `[1, 2, 3]`}
	_, err := newOMDBFake(t, fake).Search(context.Background(), "x")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestOMDB_CapsDetailLookups(t *testing.T) {
	hits := ""
	for i := range 25 {
		if i > 0 {
			hits += ","
		}
		hits += fmt.Sprintf(`{"Title": "Film %d", "imdbID": "tt%07d"}`, i, i)
	}
	fake := &omdbFake{search: `{"Search": [` + hits + `], "Response": "True"}`}

	got, err := newOMDBFake(t, fake).Search(context.Background(), "film")
	require.NoError(t, err)
	assert.Len(t, got, MaxDetailLookups)
	assert.Equal(t, int64(1+MaxDetailLookups), fake.calls.Load())
	assert.Equal(t, "Film 19", got[19]["Title"])
}

func TestOMDB_Endpoint(t *testing.T) {
	o := NewOMDB("https://www.omdbapi.com/?type=movie", "k", nil)
	got := o.endpoint(map[string][]string{"s": {"the batman"}})
	assert.Equal(t, "https://www.omdbapi.com/?apikey=k&s=the+batman&type=movie", got)
}

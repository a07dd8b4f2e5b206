package favorites

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"charm.land/log/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gaurav-Gosain/reelscout/movie"
	"github.com/Gaurav-Gosain/reelscout/storage"
)

func batmanBegins() movie.Record {
	return movie.Record{"Title": "Batman Begins", "Year": "2005", "imdbID": "tt0372784"}
}

func readKey(t *testing.T, kv storage.Store, key string, v any) {
	t.Helper()
	raw, ok, err := kv.GetItem(key)
	require.NoError(t, err)
	require.True(t, ok, "key %s should be persisted", key)
	require.NoError(t, json.Unmarshal([]byte(raw), v))
}

func TestToggle_AddThenRemove(t *testing.T) {
	kv := storage.NewMemory()
	s := Open(kv, nil)

	on, err := s.Toggle("tt0372784", batmanBegins())
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, s.IsFavorite("tt0372784"))

	var ids []string
	var details []movie.Record
	readKey(t, kv, IDsKey, &ids)
	readKey(t, kv, DetailsKey, &details)
	assert.Equal(t, []string{"tt0372784"}, ids)
	require.Len(t, details, 1)
	assert.Equal(t, "Batman Begins", details[0]["Title"])

	on, err = s.Toggle("tt0372784", batmanBegins())
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, s.IsFavorite("tt0372784"))

	readKey(t, kv, IDsKey, &ids)
	readKey(t, kv, DetailsKey, &details)
	assert.Empty(t, ids)
	assert.Empty(t, details)
}

func TestToggle_TwiceRestoresPriorContents(t *testing.T) {
	s := Open(storage.NewMemory(), nil)
	_, err := s.Toggle("a", movie.Record{"imdbID": "a", "Title": "A"})
	require.NoError(t, err)
	_, err = s.Toggle("b", movie.Record{"imdbID": "b", "Title": "B"})
	require.NoError(t, err)

	idsBefore := s.IDs()
	entriesBefore := s.Entries()

	_, err = s.Toggle("c", movie.Record{"imdbID": "c", "Title": "C"})
	require.NoError(t, err)
	_, err = s.Toggle("c", movie.Record{"imdbID": "c", "Title": "C"})
	require.NoError(t, err)

	assert.Equal(t, idsBefore, s.IDs())
	assert.Equal(t, entriesBefore, s.Entries())
}

func TestToggle_DuplicateDetailsGuard(t *testing.T) {
	kv := storage.NewMemory()
	require.NoError(t, kv.SetItem(DetailsKey, `[{"imdbID":"tt1","Title":"Kept"}]`))

	s := Open(kv, nil)
	on, err := s.Toggle("tt1", movie.Record{"imdbID": "tt1", "Title": "Ignored"})
	require.NoError(t, err)
	assert.True(t, on)

	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Kept", entries[0]["Title"])
}

func TestToggle_RemovesEveryDetailWithID(t *testing.T) {
	kv := storage.NewMemory()
	require.NoError(t, kv.SetItem(IDsKey, `["tt1","tt2"]`))
	require.NoError(t, kv.SetItem(DetailsKey, `[{"imdbID":"tt1"},{"imdbID":"tt2"},{"id":"tt1"}]`))

	s := Open(kv, nil)
	_, err := s.Toggle("tt1", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"tt2"}, s.IDs())
	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "tt2", movie.IDOf(entries[0]))
}

func TestToggle_StoresCopy(t *testing.T) {
	s := Open(storage.NewMemory(), nil)
	rec := movie.Record{"imdbID": "tt1", "Title": "Before"}
	_, err := s.Toggle("tt1", rec)
	require.NoError(t, err)

	rec["Title"] = "After"
	assert.Equal(t, "Before", s.Entries()[0]["Title"])
}

func TestRemoveAndClear(t *testing.T) {
	s := Open(storage.NewMemory(), nil)
	for _, id := range []string{"a", "b", "c"} {
		_, err := s.Toggle(id, movie.Record{"imdbID": id})
		require.NoError(t, err)
	}

	require.NoError(t, s.Remove("b"))
	assert.Equal(t, []string{"a", "c"}, s.IDs())
	assert.Equal(t, 2, s.Len())

	require.NoError(t, s.Remove("missing"))
	assert.Equal(t, 2, s.Len())

	require.NoError(t, s.Clear())
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Entries())
}

func TestMovies(t *testing.T) {
	s := Open(storage.NewMemory(), nil)
	_, err := s.Toggle("tt0372784", batmanBegins())
	require.NoError(t, err)

	movies := s.Movies()
	require.Len(t, movies, 1)
	assert.Equal(t, "Batman Begins", movies[0].Title)
	assert.Equal(t, movie.NotAvailable, movies[0].Rating)
}

func TestOpen_MalformedPayloadIsEmpty(t *testing.T) {
	kv := storage.NewMemory()
	require.NoError(t, kv.SetItem(IDsKey, `not json`))
	require.NoError(t, kv.SetItem(DetailsKey, `{"also":"wrong shape"}`))

	var buf bytes.Buffer
	s := Open(kv, log.New(&buf))

	assert.Empty(t, s.IDs())
	assert.Empty(t, s.Entries())
	assert.Contains(t, buf.String(), "Error loading favorites")
}

type failingStore struct {
	storage.Store
}

func (failingStore) GetItem(string) (string, bool, error) { return "", false, errors.New("disk gone") }
func (failingStore) SetItem(string, string) error         { return errors.New("disk gone") }
func (failingStore) SetItems(map[string]string) error      { return errors.New("disk gone") }

func TestOpen_StorageErrorIsEmpty(t *testing.T) {
	s := Open(failingStore{}, nil)
	assert.Empty(t, s.IDs())

	on, err := s.Toggle("tt1", movie.Record{"imdbID": "tt1"})
	assert.False(t, on)
	assert.ErrorContains(t, err, "save favorites")
	assert.False(t, s.IsFavorite("tt1"))
	assert.Empty(t, s.Entries())
}

// detailsRejectingDB opens a database whose kv table refuses writes to
// DetailsKey once armed.
func detailsRejectingDB(t *testing.T, path string) *storage.SQLite {
	t.Helper()
	kv, err := storage.OpenSQLite(path)
	require.NoError(t, err)

	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer raw.Close()
	_, err = raw.Exec(`
		CREATE TRIGGER reject_details_insert BEFORE INSERT ON kv WHEN NEW.key = 'favoriteMoviesData'
		BEGIN SELECT RAISE(ABORT, 'disk full'); END;
		CREATE TRIGGER reject_details_update BEFORE UPDATE ON kv WHEN NEW.key = 'favoriteMoviesData'
		BEGIN SELECT RAISE(ABORT, 'disk full'); END;
	`)
	require.NoError(t, err)
	return kv
}

func TestToggle_FailedSaveChangesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reelscout.db")

	kv, err := storage.OpenSQLite(path)
	require.NoError(t, err)
	s := Open(kv, nil)
	_, err = s.Toggle("tt0372784", batmanBegins())
	require.NoError(t, err)
	require.NoError(t, kv.Close())

	kv = detailsRejectingDB(t, path)
	s = Open(kv, nil)

	on, err := s.Toggle("tt1", movie.Record{"imdbID": "tt1", "Title": "Heat"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "save favorites")
	assert.False(t, on)
	assert.False(t, s.IsFavorite("tt1"), "failed add must not show as favorite")
	assert.Equal(t, []string{"tt0372784"}, s.IDs())

	on, err = s.Toggle("tt0372784", nil)
	require.Error(t, err)
	assert.True(t, on, "failed removal keeps the favorite")
	assert.True(t, s.IsFavorite("tt0372784"))

	require.Error(t, s.Clear())
	assert.Equal(t, 1, s.Len())

	var ids []string
	var details []movie.Record
	readKey(t, kv, IDsKey, &ids)
	readKey(t, kv, DetailsKey, &details)
	assert.Equal(t, []string{"tt0372784"}, ids, "ids write must be rolled back")
	require.Len(t, details, 1)
	assert.Equal(t, "tt0372784", movie.IDOf(details[0]))
	require.NoError(t, kv.Close())

	kv, err = storage.OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = kv.Close() }()
	s = Open(kv, nil)
	assert.Equal(t, []string{"tt0372784"}, s.IDs())
	require.Len(t, s.Entries(), 1)
	assert.Equal(t, "Batman Begins", s.Entries()[0]["Title"])
}

func TestPersistence_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reelscout.db")

	kv, err := storage.OpenSQLite(path)
	require.NoError(t, err)
	s := Open(kv, nil)
	_, err = s.Toggle("tt0372784", batmanBegins())
	require.NoError(t, err)
	require.NoError(t, kv.Close())

	kv, err = storage.OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = kv.Close() }()

	s = Open(kv, nil)
	assert.Equal(t, []string{"tt0372784"}, s.IDs())
	assert.True(t, s.IsFavorite("tt0372784"))
	require.Len(t, s.Entries(), 1)
}

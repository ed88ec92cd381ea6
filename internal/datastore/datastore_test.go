package datastore

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/shelf/internal/record"
	"github.com/lepinkainen/shelf/internal/testutil"
)

func sampleRecords() []record.Record {
	return []record.Record{
		{ID: "b2", Title: "Good Omens", Authors: []string{"Terry Pratchett", "Neil Gaiman"}, Location: "Shelf A", CreatedAt: "2024-01-02T00:00:00.000000000Z"},
		{ID: "b1", ISBN: "9780441172719", Title: "Dune", Cover: "covers/b1.jpg", Extra: map[string]json.RawMessage{"shelf_row": json.RawMessage(`3`)}},
	}
}

func TestRecordRow(t *testing.T) {
	row := RecordRow(sampleRecords()[0])

	assert.Equal(t, "b2", row["id"])
	assert.Equal(t, "Terry Pratchett, Neil Gaiman", row["authors"])
	assert.Equal(t, "", row["isbn"])
	assert.Equal(t, "2024-01-02T00:00:00.000000000Z", row["created_at"])
	assert.NotContains(t, row, "extra")
	assert.Len(t, row, 9)
}

func TestStructToRow(t *testing.T) {
	type inner struct {
		Shelf string `json:"shelf"`
	}
	type sample struct {
		inner
		Name    string   `json:"name,omitempty"`
		Tags    []string `json:"tags"`
		Count   *int
		Skipped string `json:"-"`
		hidden  string
	}

	row := StructToRow(sample{inner: inner{Shelf: "A"}, Name: "x", Tags: []string{"a", "b"}, hidden: "h"}, RowOptions{})

	assert.Equal(t, map[string]any{"name": "x", "tags": []string{"a", "b"}, "count": nil}, row)
	assert.Empty(t, StructToRow[*sample](nil, RowOptions{}))
}

func TestExportSQLite(t *testing.T) {
	env := testutil.NewTestEnv(t)
	dbPath := env.Path("out", "export.db")

	require.NoError(t, Export(NewSQLiteStore(dbPath), DefaultDatabase, sampleRecords()))
	// A second run replaces the table instead of failing on duplicate ids.
	require.NoError(t, Export(NewSQLiteStore(dbPath), DefaultDatabase, sampleRecords()[:1]))

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM books").Scan(&count))
	assert.Equal(t, 1, count)

	var authors string
	require.NoError(t, db.QueryRow("SELECT authors FROM books WHERE id = ?", "b2").Scan(&authors))
	assert.Equal(t, "Terry Pratchett, Neil Gaiman", authors)
}

func TestExportEmpty(t *testing.T) {
	env := testutil.NewTestEnv(t)
	dbPath := env.Path("empty.db")

	require.NoError(t, Export(NewSQLiteStore(dbPath), DefaultDatabase, nil))
	assert.True(t, env.FileExists("empty.db"))
}

func TestExportDatasette(t *testing.T) {
	var gotPath, gotAuth, gotReplace string
	var payload struct {
		Rows []map[string]any `json:"rows"`
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotReplace = r.URL.Query().Get("replace")
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	require.NoError(t, Export(NewDatasetteClient(ts.URL, "secret"), DefaultDatabase, sampleRecords()))

	assert.Equal(t, "/-/insert/shelf/books", gotPath)
	assert.Equal(t, "1", gotReplace)
	assert.Equal(t, "Bearer secret", gotAuth)
	require.Len(t, payload.Rows, 2)
	assert.Equal(t, "Dune", payload.Rows[1]["title"])
}

func TestDatasetteAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "forbidden"})
	}))
	defer ts.Close()

	err := Export(NewDatasetteClient(ts.URL, ""), DefaultDatabase, sampleRecords())
	assert.ErrorContains(t, err, "forbidden")
}

func TestDatasetteInvalidURL(t *testing.T) {
	assert.Error(t, NewDatasetteClient("not a url", "").Connect())
}

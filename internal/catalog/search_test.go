package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/shelf/internal/record"
)

func TestListSearch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil, WithClock(steppingClock()))

	_, err := svc.CommitImport(ctx, []record.Patch{
		{Title: record.String("Dune"), Authors: []string{"Frank Herbert"}, Location: record.String("Shelf A")},
		{Title: record.String("Neuromancer"), Authors: []string{"William Gibson"}, Notes: record.String("dune buggy on cover")},
		{Title: record.String("Snow Crash"), Authors: []string{"Neal Stephenson"}, Location: record.String("Shelf B")},
	})
	require.NoError(t, err)

	titles := func(q Query) []string {
		t.Helper()
		records, err := svc.List(ctx, q)
		require.NoError(t, err)
		out := make([]string, 0, len(records))
		for _, r := range records {
			out = append(out, r.Title)
		}
		return out
	}

	assert.Equal(t, []string{"Snow Crash", "Neuromancer", "Dune"}, titles(Query{}))
	assert.Equal(t, []string{"Neuromancer", "Dune"}, titles(Query{Q: "DUNE"}))
	assert.Equal(t, []string{"Dune"}, titles(Query{Q: "dune", Field: "title"}))
	assert.Equal(t, []string{"Snow Crash"}, titles(Query{Q: "shelf b", Field: "location"}))
	assert.Equal(t, []string{"Neuromancer"}, titles(Query{Q: "gibson", Field: "authors"}))
	assert.Empty(t, titles(Query{Q: "tolkien"}))
}

func TestListSearchFallsBackForEmptyField(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	_, err := svc.CreateOne(ctx, record.Patch{Title: record.String("Dune")})
	require.NoError(t, err)

	records, err := svc.List(ctx, Query{Q: "dune", Field: "location"})
	require.NoError(t, err)
	assert.Len(t, records, 1)

	records, err = svc.List(ctx, Query{Q: "dune", Field: "unknown"})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

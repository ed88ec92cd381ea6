package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/shelf/internal/record"
	"github.com/lepinkainen/shelf/internal/testutil"
)

func TestPreviewJSON(t *testing.T) {
	outcomes, err := Preview([]byte(`[{"title":"A"},{"isbn":"bad!"}]`), "")
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(t, 1, outcomes[0].Row)
	assert.Equal(t, "A", outcomes[0].Candidate.Title)
	assert.Empty(t, outcomes[0].Errors)
	assert.True(t, outcomes[0].Valid())

	assert.Equal(t, 2, outcomes[1].Row)
	assert.Equal(t, []string{record.ProblemISBNChars}, outcomes[1].Errors)
	assert.False(t, outcomes[1].Valid())
}

func TestPreviewCSV(t *testing.T) {
	outcomes, err := Preview([]byte(testutil.SampleCSV), "books.csv")
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.True(t, outcomes[0].Valid())
	assert.Equal(t, []string{"Frank Herbert"}, outcomes[0].Candidate.Authors)
	assert.Equal(t, []string{record.ProblemISBNChars}, outcomes[1].Errors)
	assert.Equal(t, []string{record.ProblemTitleOrISBN}, outcomes[2].Errors)
	assert.Equal(t, "Shelf C", outcomes[2].Candidate.Location)

	valid, invalid := Summary(outcomes)
	assert.Equal(t, 1, valid)
	assert.Equal(t, 2, invalid)
}

func TestPreviewParseFailureHasNoOutcomes(t *testing.T) {
	outcomes, err := Preview([]byte(`[{"title":`), "")
	require.Error(t, err)
	assert.Nil(t, outcomes)
}

func TestPreviewEmptyErrorsIsEmptySlice(t *testing.T) {
	outcomes := PreviewRows([]Row{{"title": "A"}})
	require.Len(t, outcomes, 1)
	assert.NotNil(t, outcomes[0].Errors)
}

func TestPatches(t *testing.T) {
	outcomes, err := Preview([]byte(testutil.SampleCSV), "books.csv")
	require.NoError(t, err)

	assert.Len(t, Patches(outcomes, true), 1)
	all := Patches(outcomes, false)
	require.Len(t, all, 3)
	assert.Equal(t, "Dune", *all[0].Title)
	assert.Nil(t, all[2].Title)
	assert.Equal(t, "Shelf C", *all[2].Location)
}

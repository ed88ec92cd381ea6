package cmd

import (
	"bytes"
	"context"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/shelf/internal/blob"
	"github.com/lepinkainen/shelf/internal/catalog"
	"github.com/lepinkainen/shelf/internal/fileutil"
	"github.com/lepinkainen/shelf/internal/record"
	"github.com/lepinkainen/shelf/internal/store"
	"github.com/lepinkainen/shelf/internal/testutil"
)

func TestLocalizeCovers(t *testing.T) {
	var png bytes.Buffer
	require.NoError(t, imaging.Encode(&png, imaging.New(800, 1200, color.White), imaging.PNG))
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(png.Bytes())
	}))
	defer ts.Close()

	ctx := context.Background()
	bucket, err := blob.NewMemoryBucket("books")
	require.NoError(t, err)
	svc := catalog.New(store.New(bucket), nil)

	remote, err := svc.CreateOne(ctx, record.Patch{Title: record.String("Remote"), Cover: record.String(ts.URL + "/cover.png")})
	require.NoError(t, err)
	broken, err := svc.CreateOne(ctx, record.Patch{Title: record.String("Broken"), Cover: record.String(ts.URL + "/missing.jpg")})
	require.NoError(t, err)
	_, err = svc.CreateOne(ctx, record.Patch{Title: record.String("Local"), Cover: record.String("covers/local.jpg")})
	require.NoError(t, err)

	env := testutil.NewTestEnv(t)
	dir := env.Path("covers")

	stats, err := localizeCovers(ctx, svc, dir, 200, false)
	require.NoError(t, err)
	assert.Equal(t, coverStats{Downloaded: 1, Failed: 1}, stats)

	got, err := svc.Get(ctx, remote.ID)
	require.NoError(t, err)
	assert.Equal(t, fileutil.CoverPath(dir, remote.ID), got.Cover)
	assert.Equal(t, remote.CreatedAt, got.CreatedAt)

	img, err := imaging.Open(got.Cover)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())

	got, err = svc.Get(ctx, broken.ID)
	require.NoError(t, err)
	assert.Equal(t, ts.URL+"/missing.jpg", got.Cover)

	// The localized record no longer points at a remote URL.
	stats, err = localizeCovers(ctx, svc, dir, 200, false)
	require.NoError(t, err)
	assert.Equal(t, coverStats{Failed: 1}, stats)
}

func TestLocalizeCoversSkipsInvalidRecords(t *testing.T) {
	var png bytes.Buffer
	require.NoError(t, imaging.Encode(&png, imaging.New(100, 150, color.White), imaging.PNG))
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(png.Bytes())
	}))
	defer ts.Close()

	ctx := context.Background()
	bucket, err := blob.NewMemoryBucket("books")
	require.NoError(t, err)
	svc := catalog.New(store.New(bucket), nil)

	// Bulk commits do not validate, so a record without title or isbn can exist
	result, err := svc.CommitImport(ctx, []record.Patch{
		{Cover: record.String(ts.URL + "/untitled.png")},
		{Title: record.String("Valid"), Cover: record.String(ts.URL + "/valid.png")},
	})
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	untitled, valid := result.Records[0], result.Records[1]

	dir := testutil.NewTestEnv(t).Path("covers")
	stats, err := localizeCovers(ctx, svc, dir, 0, false)
	require.NoError(t, err)
	assert.Equal(t, coverStats{Downloaded: 1, Failed: 1}, stats)

	got, err := svc.Get(ctx, untitled.ID)
	require.NoError(t, err)
	assert.Equal(t, ts.URL+"/untitled.png", got.Cover)

	got, err = svc.Get(ctx, valid.ID)
	require.NoError(t, err)
	assert.Equal(t, fileutil.CoverPath(dir, valid.ID), got.Cover)
}

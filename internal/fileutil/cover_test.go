package fileutil

import (
	"bytes"
	"context"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/shelf/internal/testutil"
)

func pngServer(t *testing.T, width, height int) *httptest.Server {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(width, height, color.NRGBA{R: 200, G: 80, B: 40, A: 255})
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}))
	t.Cleanup(server.Close)
	return server
}

func TestIsRemoteURL(t *testing.T) {
	assert.True(t, IsRemoteURL("https://covers.openlibrary.org/b/isbn/1-L.jpg"))
	assert.True(t, IsRemoteURL("HTTP://example.com/a.jpg"))
	assert.False(t, IsRemoteURL("covers/abc.jpg"))
	assert.False(t, IsRemoteURL(""))
}

func TestLocalizeCover_NotRemote(t *testing.T) {
	result, err := LocalizeCover(context.Background(), CoverOptions{URL: "covers/local.jpg", Dir: t.TempDir(), ID: "x"})
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestLocalizeCover_ResizesWideImages(t *testing.T) {
	server := pngServer(t, 1200, 1800)
	env := testutil.NewTestEnv(t)

	result, err := LocalizeCover(context.Background(), CoverOptions{
		URL:      server.URL + "/cover.png",
		Dir:      env.Path("covers"),
		ID:       "book-1",
		MaxWidth: 300,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Downloaded)
	assert.Equal(t, CoverPath(env.Path("covers"), "book-1"), result.LocalPath)

	saved, err := imaging.Open(result.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, 300, saved.Bounds().Dx())
	assert.Equal(t, 450, saved.Bounds().Dy())
}

func TestLocalizeCover_KeepsNarrowImages(t *testing.T) {
	server := pngServer(t, 100, 150)
	env := testutil.NewTestEnv(t)

	result, err := LocalizeCover(context.Background(), CoverOptions{URL: server.URL, Dir: env.RootDir(), ID: "small"})
	require.NoError(t, err)

	saved, err := imaging.Open(result.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, 100, saved.Bounds().Dx())
}

func TestLocalizeCover_SkipsExisting(t *testing.T) {
	server := pngServer(t, 10, 10)
	env := testutil.NewTestEnv(t)
	existing := env.WriteFileString("covers/book-1.jpg", "old image data")

	result, err := LocalizeCover(context.Background(), CoverOptions{URL: server.URL, Dir: env.Path("covers"), ID: "book-1"})
	require.NoError(t, err)
	assert.False(t, result.Downloaded)

	content, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "old image data", string(content))

	result, err = LocalizeCover(context.Background(), CoverOptions{URL: server.URL, Dir: env.Path("covers"), ID: "book-1", Force: true})
	require.NoError(t, err)
	assert.True(t, result.Downloaded)
}

func TestLocalizeCover_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := LocalizeCover(context.Background(), CoverOptions{URL: server.URL, Dir: t.TempDir(), ID: "x"})
	assert.Nil(t, result)
	assert.ErrorContains(t, err, "unexpected status 404")
}

func TestLocalizeCover_NotAnImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("fake image data"))
	}))
	defer server.Close()

	_, err := LocalizeCover(context.Background(), CoverOptions{URL: server.URL, Dir: t.TempDir(), ID: "x"})
	assert.ErrorContains(t, err, "failed to decode cover")
}

package images

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"igold/scraper/internal/config"
	"igold/scraper/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilename(t *testing.T) {
	assert.Equal(t, "pamp-1g.jpg", Filename("https://igold.bg/images/products/pamp-1g.jpg"))
	assert.Equal(t, "bar.png", Filename("https://cdn.igold.bg/bar.png?size=large"))

	// No usable path segment falls back to a URL-hash name.
	hashed := Filename("https://igold.bg/images/")
	assert.Contains(t, hashed, "image_")
	assert.Contains(t, hashed, ".jpg")
}

func TestDownloadAllWritesFiles(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/images/a.jpg", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("jpeg-bytes-a"))
	})
	mux.HandleFunc("/images/b.jpg", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("jpeg-bytes-b"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	d := NewDownloader(config.ImagesConfig{
		Dir:                  dir,
		MaxWorkers:           2,
		MaxRequestsPerSecond: 100,
	}, "igold-scraper-test")

	products := []domain.Product{
		{Name: "A", ImageURL1: srv.URL + "/images/a.jpg", ImageURL2: srv.URL + "/images/b.jpg"},
		// Duplicate URL across products is downloaded once.
		{Name: "B", ImageURL1: srv.URL + "/images/a.jpg"},
	}

	require.NoError(t, d.DownloadAll(context.Background(), products))

	data, err := os.ReadFile(filepath.Join(dir, "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes-a", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "b.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes-b", string(data))
}

func TestDownloadAllToleratesFailures(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/images/ok.jpg", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	d := NewDownloader(config.ImagesConfig{
		Dir:                  dir,
		MaxWorkers:           2,
		MaxRequestsPerSecond: 100,
	}, "igold-scraper-test")

	products := []domain.Product{
		{Name: "OK", ImageURL1: srv.URL + "/images/ok.jpg"},
		{Name: "Gone", ImageURL1: srv.URL + "/images/gone.jpg"},
	}

	// A 404 on one image never fails the whole download.
	require.NoError(t, d.DownloadAll(context.Background(), products))

	_, err := os.Stat(filepath.Join(dir, "ok.jpg"))
	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "gone.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestDownloadAllNoImages(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never-created")
	d := NewDownloader(config.ImagesConfig{Dir: dir}, "test")

	require.NoError(t, d.DownloadAll(context.Background(), []domain.Product{{Name: "X"}}))

	// The directory is only created when there is work to do.
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

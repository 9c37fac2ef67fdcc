package images

import (
	"context"
	"crypto/md5"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"
	"time"

	"igold/scraper/internal/config"
	"igold/scraper/internal/domain"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"
)

// Downloader fetches the product images referenced by a scraped
// dataset into a local directory. Unlike the page scrape it runs a
// small bounded worker pool, the images host being a CDN rather than
// the catalog pages themselves.
type Downloader struct {
	rl         ratelimit.Limiter
	httpClient *resty.Client
	dir        string
	maxWorkers int
}

func NewDownloader(cfg config.ImagesConfig, userAgent string) *Downloader {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(0).
		SetHeader("User-Agent", userAgent)

	maxWorkers := cfg.MaxWorkers
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	maxRPS := cfg.MaxRequestsPerSecond
	if maxRPS < 1 {
		maxRPS = 1
	}

	return &Downloader{
		rl:         ratelimit.New(maxRPS),
		httpClient: client,
		dir:        cfg.Dir,
		maxWorkers: maxWorkers,
	}
}

// DownloadAll downloads every distinct image URL in the product set.
// Individual failures are logged and counted; only an unusable
// destination directory fails the call.
func (d *Downloader) DownloadAll(ctx context.Context, products []domain.Product) error {
	urls := collectImageURLs(products)
	if len(urls) == 0 {
		log.Info("No product images to download")
		return nil
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create image directory %s: %w", d.dir, err)
	}

	log.Infof("Downloading %d product images to %s", len(urls), d.dir)

	var downloaded, failed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.maxWorkers)

	for _, imageURL := range urls {
		g.Go(func() error {
			if err := d.download(ctx, imageURL); err != nil {
				failed.Add(1)
				log.Warnf("Failed to download %s: %v", imageURL, err)
				return nil
			}
			downloaded.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	log.Infof("✅ Image download finished: %d downloaded, %d failed", downloaded.Load(), failed.Load())
	return nil
}

func (d *Downloader) download(ctx context.Context, imageURL string) error {
	d.rl.Take()

	resp, err := d.httpClient.R().
		SetContext(ctx).
		Get(imageURL)
	if err != nil {
		return fmt.Errorf("failed to fetch image: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())
	}

	dest := filepath.Join(d.dir, Filename(imageURL))
	if err := os.WriteFile(dest, resp.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}

	log.Debugf("Downloaded %s", dest)
	return nil
}

// Filename derives a local file name from the image URL: the last
// path segment, or a URL-hash name when the path carries none.
func Filename(imageURL string) string {
	if parsed, err := url.Parse(imageURL); err == nil {
		base := path.Base(parsed.Path)
		if base != "" && base != "." && base != "/" && path.Ext(base) != "" {
			return base
		}
	}
	sum := md5.Sum([]byte(imageURL))
	return fmt.Sprintf("image_%x.jpg", sum[:4])
}

func collectImageURLs(products []domain.Product) []string {
	seen := make(map[string]struct{})
	urls := make([]string, 0, len(products)*2)

	for _, product := range products {
		for _, imageURL := range product.ImageURLs() {
			if _, dup := seen[imageURL]; dup {
				continue
			}
			seen[imageURL] = struct{}{}
			urls = append(urls, imageURL)
		}
	}

	return urls
}

package client

import (
	"context"
	"fmt"
	"time"

	"igold/scraper/internal/config"
	"igold/scraper/internal/domain"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

// IGoldClient fetches and extracts the three page kinds the pipeline
// walks: the navigation menu, category landing pages, and individual
// product pages.
type IGoldClient interface {
	GetCategories(ctx context.Context) ([]domain.Category, error)
	GetSubcategories(ctx context.Context, category domain.Category) ([]domain.Subcategory, error)
	GetProductLinks(ctx context.Context, pageURL string) ([]string, error)
	GetProduct(ctx context.Context, productURL string) (*domain.Product, error)
}

type iGoldClient struct {
	limiter    Limiter
	config     config.SiteConfig
	baseURL    string
	httpClient *resty.Client
	parser     *pageParser
}

// NewIGoldClient builds a client with an explicit timeout so a dead
// connection never hangs the run.
func NewIGoldClient(siteCfg config.SiteConfig, scrapeCfg config.ScrapeConfig) IGoldClient {
	timeout := time.Duration(siteCfg.Timeout) * time.Second

	httpClient := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", siteCfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "bg-BG,bg;q=0.9,en;q=0.5")

	return &iGoldClient{
		limiter: NewJitterLimiter(
			time.Duration(scrapeCfg.MinDelayMs)*time.Millisecond,
			time.Duration(scrapeCfg.MaxDelayMs)*time.Millisecond,
		),
		config:     siteCfg,
		baseURL:    siteCfg.BaseURL,
		httpClient: httpClient,
		parser:     newPageParser(siteCfg.BaseURL),
	}
}

func (c *iGoldClient) GetCategories(ctx context.Context) ([]domain.Category, error) {
	html, err := c.fetchHTML(ctx, c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category menu: %w", err)
	}

	categories, err := c.parser.ParseCategories(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse category menu: %w", err)
	}

	log.Debugf("Fetched and parsed %d categories", len(categories))
	return categories, nil
}

func (c *iGoldClient) GetSubcategories(ctx context.Context, category domain.Category) ([]domain.Subcategory, error) {
	html, err := c.fetchHTML(ctx, category.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category page %q: %w", category.Name, err)
	}

	subcategories := c.parser.ParseSubcategories(html)
	log.Debugf("Fetched and parsed %d subcategories for %q", len(subcategories), category.Name)
	return subcategories, nil
}

func (c *iGoldClient) GetProductLinks(ctx context.Context, pageURL string) ([]string, error) {
	html, err := c.fetchHTML(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing page: %w", err)
	}

	links := c.parser.ParseProductLinks(html)
	log.Debugf("Found %d product links on %s", len(links), pageURL)
	return links, nil
}

func (c *iGoldClient) GetProduct(ctx context.Context, productURL string) (*domain.Product, error) {
	html, err := c.fetchHTML(ctx, productURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product page: %w", err)
	}

	product, err := c.parser.ParseProduct(html, productURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse product page: %w", err)
	}

	log.Debugf("Successfully fetched and parsed product %q", product.Name)
	return product, nil
}

// fetchHTML applies the throttle delay, then issues a single GET.
// Failures carry the URL; the caller decides whether the affected
// branch is skipped or the run aborts. No retries here.
func (c *iGoldClient) fetchHTML(ctx context.Context, url string) (string, error) {
	c.limiter.Take()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(url)

	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("request cancelled for %s: %w", url, ctx.Err())
		}
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	if resp.IsError() {
		return "", fmt.Errorf("HTTP error for %s: %d %s", url, resp.StatusCode(), resp.Status())
	}

	return resp.String(), nil
}

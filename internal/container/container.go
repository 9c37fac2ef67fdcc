package container

import (
	"context"
	"fmt"

	"igold/scraper/internal/client"
	"igold/scraper/internal/config"
	"igold/scraper/internal/images"
	"igold/scraper/internal/repository"
	"igold/scraper/internal/service"

	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config     *config.Config
	Client     client.IGoldClient
	Repository repository.DatasetRepository
	Downloader *images.Downloader

	Service *service.Service
}

// New creates a new container with all dependencies initialized
func New(cfg *config.Config) (*Container, error) {
	iGoldClient := client.NewIGoldClient(cfg.Site, cfg.Scrape)

	return &Container{
		Config:     cfg,
		Client:     iGoldClient,
		Repository: repository.NewWorkbookRepository(),
		Downloader: images.NewDownloader(cfg.Images, cfg.Site.UserAgent),
		Service:    service.NewService(iGoldClient),
	}, nil
}

// Run executes the full pipeline: scrape, write the workbook, and
// optionally download the referenced product images.
func (c *Container) Run(ctx context.Context) error {
	dataset, err := c.Service.ScrapeAll(ctx)
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	if err := c.Repository.SaveDataset(dataset, c.Config.Output.Path); err != nil {
		return fmt.Errorf("failed to write output workbook: %w", err)
	}

	if c.Config.Images.Enabled {
		if err := c.Downloader.DownloadAll(ctx, dataset.Products); err != nil {
			// The workbook is already on disk; a broken image dir
			// should not fail the run retroactively.
			log.Errorf("❌ Image download failed: %v", err)
		}
	}

	return nil
}

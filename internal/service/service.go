package service

import (
	"context"
	"fmt"

	"igold/scraper/internal/client"
	"igold/scraper/internal/domain"

	log "github.com/sirupsen/logrus"
)

// Service drives the three scrape phases in order: categories, then
// each category's subcategories, then each subcategory's products.
// Everything is sequential; the client's throttle paces the requests.
type Service struct {
	client client.IGoldClient
}

func NewService(client client.IGoldClient) *Service {
	return &Service{
		client: client,
	}
}

// ScrapeAll runs a full scrape and returns the collected dataset.
// Only a failure to fetch the category menu aborts the run — with no
// categories there is nothing left to do. Any later fetch or parse
// failure is logged and skips just that branch, so a run ends with
// partial data rather than nothing.
func (s *Service) ScrapeAll(ctx context.Context) (*domain.Dataset, error) {
	dataset := &domain.Dataset{}

	categories, err := s.client.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape categories: %w", err)
	}
	dataset.Categories = categories
	log.Infof("✅ Found %d categories", len(categories))

	subcategoriesByCategory := make(map[int][]domain.Subcategory, len(categories))
	failedCategories := make(map[int]bool)
	nextSubcategoryID := 1

	for _, category := range categories {
		subcategories, err := s.client.GetSubcategories(ctx, category)
		if err != nil {
			log.Errorf("❌ Skipping category %q: %v", category.Name, err)
			failedCategories[category.ID] = true
			continue
		}

		for i := range subcategories {
			subcategories[i].ID = nextSubcategoryID
			subcategories[i].ParentCategoryID = category.ID
			nextSubcategoryID++
		}

		dataset.Subcategories = append(dataset.Subcategories, subcategories...)
		subcategoriesByCategory[category.ID] = subcategories
		log.Infof("Found %d subcategories for %q", len(subcategories), category.Name)
	}

	for _, category := range categories {
		if failedCategories[category.ID] {
			continue
		}

		subcategories := subcategoriesByCategory[category.ID]

		if len(subcategories) == 0 {
			// No subcategory level: products sit on the landing page.
			products := s.scrapeProducts(ctx, category.URL, category.ID, 0)
			dataset.Products = append(dataset.Products, products...)
			log.Infof("Found %d products in category %q", len(products), category.Name)
			continue
		}

		for _, subcategory := range subcategories {
			products := s.scrapeProducts(ctx, subcategory.URL, category.ID, subcategory.ID)
			dataset.Products = append(dataset.Products, products...)
			log.Infof("Found %d products in subcategory %q", len(products), subcategory.Name)
		}
	}

	log.Infof("✅ Scrape complete: %d categories, %d subcategories, %d products",
		len(dataset.Categories), len(dataset.Subcategories), len(dataset.Products))

	return dataset, nil
}

// scrapeProducts collects all products reachable from one listing
// page. A failed listing fetch skips the whole branch; a failed
// product fetch skips just that product.
func (s *Service) scrapeProducts(ctx context.Context, pageURL string, categoryID, subcategoryID int) []domain.Product {
	links, err := s.client.GetProductLinks(ctx, pageURL)
	if err != nil {
		log.Errorf("❌ Skipping listing page %s: %v", pageURL, err)
		return nil
	}

	products := make([]domain.Product, 0, len(links))
	for _, link := range links {
		product, err := s.client.GetProduct(ctx, link)
		if err != nil {
			log.Warnf("Skipping product %s: %v", link, err)
			continue
		}

		product.CategoryID = categoryID
		product.SubcategoryID = subcategoryID
		products = append(products, *product)
	}

	return products
}

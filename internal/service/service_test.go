package service

import (
	"context"
	"fmt"
	"testing"

	"igold/scraper/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClient serves canned pages keyed by URL, standing in for the
// HTTP client so the driver's branching can be exercised offline.
type stubClient struct {
	categories    []domain.Category
	categoriesErr error

	subcategories map[string][]domain.Subcategory
	listingErr    map[string]error
	productLinks  map[string][]string
	products      map[string]*domain.Product
}

func (c *stubClient) GetCategories(ctx context.Context) ([]domain.Category, error) {
	if c.categoriesErr != nil {
		return nil, c.categoriesErr
	}
	return c.categories, nil
}

func (c *stubClient) GetSubcategories(ctx context.Context, category domain.Category) ([]domain.Subcategory, error) {
	subs, ok := c.subcategories[category.URL]
	if !ok {
		return nil, fmt.Errorf("HTTP error for %s: 404 Not Found", category.URL)
	}
	// Return copies: the driver mutates IDs in place.
	out := make([]domain.Subcategory, len(subs))
	copy(out, subs)
	return out, nil
}

func (c *stubClient) GetProductLinks(ctx context.Context, pageURL string) ([]string, error) {
	if err := c.listingErr[pageURL]; err != nil {
		return nil, err
	}
	return c.productLinks[pageURL], nil
}

func (c *stubClient) GetProduct(ctx context.Context, productURL string) (*domain.Product, error) {
	product, ok := c.products[productURL]
	if !ok {
		return nil, fmt.Errorf("HTTP error for %s: 404 Not Found", productURL)
	}
	clone := *product
	return &clone, nil
}

func newStub() *stubClient {
	return &stubClient{
		categories: []domain.Category{
			{ID: 1, Name: "Злато", URL: "https://igold.bg/"},
			{ID: 2, Name: "Сребро", URL: "https://igold.bg/srebro"},
		},
		subcategories: map[string][]domain.Subcategory{
			"https://igold.bg/": {
				{Name: "Златни кюлчета", URL: "https://igold.bg/subcategory/kyulcheta"},
				{Name: "Златни монети", URL: "https://igold.bg/subcategory/moneti"},
			},
			"https://igold.bg/srebro": {},
		},
		listingErr: map[string]error{},
		productLinks: map[string][]string{
			"https://igold.bg/subcategory/kyulcheta": {
				"https://igold.bg/zlatno-kyulche-1g",
				"https://igold.bg/zlatno-kyulche-31g",
			},
			"https://igold.bg/subcategory/moneti": {
				"https://igold.bg/zlatna-moneta-krugerrand",
			},
			"https://igold.bg/srebro": {
				"https://igold.bg/srebarno-kyulche-100g",
			},
		},
		products: map[string]*domain.Product{
			"https://igold.bg/zlatno-kyulche-1g":        {Name: "1 гр. Златно Кюлче", Weight: "1 гр."},
			"https://igold.bg/zlatno-kyulche-31g":       {Name: "31.1 гр. Златно Кюлче", Weight: "31.1 гр."},
			"https://igold.bg/zlatna-moneta-krugerrand": {Name: "Кругерранд", Weight: "31.1 гр."},
			"https://igold.bg/srebarno-kyulche-100g":    {Name: "100 гр. Сребърно Кюлче", Weight: "100 гр."},
		},
	}
}

func TestScrapeAllAssignsIDsAndForeignKeys(t *testing.T) {
	stub := newStub()
	s := NewService(stub)

	dataset, err := s.ScrapeAll(context.Background())
	require.NoError(t, err)

	require.Len(t, dataset.Categories, 2)
	require.Len(t, dataset.Subcategories, 2)
	require.Len(t, dataset.Products, 4)

	// Subcategory IDs increase monotonically across the collection.
	for i, sub := range dataset.Subcategories {
		assert.Equal(t, i+1, sub.ID)
	}

	// Every parent_category_id references a scraped category.
	categoryIDs := make(map[int]bool)
	for _, c := range dataset.Categories {
		categoryIDs[c.ID] = true
	}
	for _, sub := range dataset.Subcategories {
		assert.True(t, categoryIDs[sub.ParentCategoryID],
			"subcategory %q references unknown category %d", sub.Name, sub.ParentCategoryID)
	}
}

func TestScrapeAllCategoryWithoutSubcategories(t *testing.T) {
	stub := newStub()
	s := NewService(stub)

	dataset, err := s.ScrapeAll(context.Background())
	require.NoError(t, err)

	// The silver category has no subcategory level: its landing page
	// products carry SubcategoryID 0.
	var silver []domain.Product
	for _, p := range dataset.Products {
		if p.CategoryID == 2 {
			silver = append(silver, p)
		}
	}
	require.Len(t, silver, 1)
	assert.Equal(t, "100 гр. Сребърно Кюлче", silver[0].Name)
	assert.Zero(t, silver[0].SubcategoryID)
}

func TestScrapeAllSkipsFailedListingBranch(t *testing.T) {
	stub := newStub()
	stub.listingErr["https://igold.bg/subcategory/moneti"] =
		fmt.Errorf("HTTP error for https://igold.bg/subcategory/moneti: 404 Not Found")
	s := NewService(stub)

	dataset, err := s.ScrapeAll(context.Background())
	require.NoError(t, err)

	// The failed subcategory contributes nothing; siblings are intact.
	var fromMoneti, fromKyulcheta int
	for _, p := range dataset.Products {
		switch p.SubcategoryID {
		case 1:
			fromKyulcheta++
		case 2:
			fromMoneti++
		}
	}
	assert.Equal(t, 2, fromKyulcheta)
	assert.Zero(t, fromMoneti)
	assert.Len(t, dataset.Products, 3)

	// Both subcategories still appear in the dataset; only their
	// product branches differ.
	assert.Len(t, dataset.Subcategories, 2)
}

func TestScrapeAllSkipsFailedProduct(t *testing.T) {
	stub := newStub()
	delete(stub.products, "https://igold.bg/zlatno-kyulche-31g")
	s := NewService(stub)

	dataset, err := s.ScrapeAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, dataset.Products, 3)
}

func TestScrapeAllCategoryMenuFailureAborts(t *testing.T) {
	stub := newStub()
	stub.categoriesErr = fmt.Errorf("HTTP error for https://igold.bg: 503 Service Unavailable")
	s := NewService(stub)

	_, err := s.ScrapeAll(context.Background())
	assert.Error(t, err)
}

func TestScrapeAllSkipsFailedCategorySubtree(t *testing.T) {
	stub := newStub()
	delete(stub.subcategories, "https://igold.bg/")
	s := NewService(stub)

	dataset, err := s.ScrapeAll(context.Background())
	require.NoError(t, err)

	// Gold subtree skipped entirely; silver still scraped.
	assert.Empty(t, dataset.Subcategories)
	require.Len(t, dataset.Products, 1)
	assert.Equal(t, 2, dataset.Products[0].CategoryID)
}

package repository

import (
	"fmt"

	"igold/scraper/internal/domain"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// DatasetRepository persists a scraped dataset.
type DatasetRepository interface {
	SaveDataset(dataset *domain.Dataset, path string) error
}

type workbookRepository struct{}

// NewWorkbookRepository returns a repository that writes the dataset
// into a three-sheet xlsx workbook.
func NewWorkbookRepository() DatasetRepository {
	return &workbookRepository{}
}

// SaveDataset writes the Categories, Subcategories and Products
// sheets, one row per record in declared column order. Any error here
// is fatal to the run: the workbook is the whole point of the scrape.
func (r *workbookRepository) SaveDataset(dataset *domain.Dataset, path string) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Warnf("Failed to close workbook: %v", err)
		}
	}()

	categoryRows := make([][]interface{}, 0, len(dataset.Categories))
	for _, c := range dataset.Categories {
		categoryRows = append(categoryRows, c.Row())
	}
	if err := writeSheet(f, domain.SheetCategories, domain.CategoryHeader, categoryRows); err != nil {
		return err
	}

	subcategoryRows := make([][]interface{}, 0, len(dataset.Subcategories))
	for _, s := range dataset.Subcategories {
		subcategoryRows = append(subcategoryRows, s.Row())
	}
	if err := writeSheet(f, domain.SheetSubcategories, domain.SubcategoryHeader, subcategoryRows); err != nil {
		return err
	}

	productRows := make([][]interface{}, 0, len(dataset.Products))
	for _, p := range dataset.Products {
		productRows = append(productRows, p.Row())
	}
	if err := writeSheet(f, domain.SheetProducts, domain.ProductHeader, productRows); err != nil {
		return err
	}

	// excelize seeds every workbook with Sheet1; drop it so exactly
	// the three named sheets remain.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook to %s: %w", path, err)
	}

	log.Infof("✅ Saved %d categories, %d subcategories, %d products to %s",
		len(dataset.Categories), len(dataset.Subcategories), len(dataset.Products), path)

	return nil
}

func writeSheet(f *excelize.File, name string, header []string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write header of sheet %s: %w", name, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell for sheet %s row %d: %w", name, i+2, err)
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("failed to write sheet %s row %d: %w", name, i+2, err)
		}
	}

	return nil
}

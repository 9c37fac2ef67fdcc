package domain

import "strconv"

// Dataset holds everything collected during a single run. Each
// collection is write-once: the driver appends during the scrape and
// the writer reads it back out, nothing ever updates in place.
type Dataset struct {
	Categories    []Category
	Subcategories []Subcategory
	Products      []Product
}

// Sheet names in the output workbook.
const (
	SheetCategories    = "Categories"
	SheetSubcategories = "Subcategories"
	SheetProducts      = "Products"
)

// CategoryHeader is the Categories sheet column order.
var CategoryHeader = []string{"id", "name", "url"}

// SubcategoryHeader is the Subcategories sheet column order.
var SubcategoryHeader = []string{"id", "name", "url", "parent_category_id"}

// ProductHeader is the Products sheet column order, matching the
// declared field order of Product.
var ProductHeader = []string{
	"category_id", "subcategory_id", "product_name",
	"image_url_1", "image_url_2",
	"country", "refinery", "weight", "purity", "fine_gold",
	"diameter_size", "buy_price", "sell_price",
	"other_properties", "product_url",
}

// Row renders a category as a sheet row.
func (c Category) Row() []interface{} {
	return []interface{}{c.ID, c.Name, c.URL}
}

// Row renders a subcategory as a sheet row.
func (s Subcategory) Row() []interface{} {
	return []interface{}{s.ID, s.Name, s.URL, s.ParentCategoryID}
}

// Row renders a product as a sheet row. SubcategoryID 0 means the
// product came straight off a category page; it renders as an empty
// cell rather than a misleading zero.
func (p Product) Row() []interface{} {
	subID := ""
	if p.SubcategoryID > 0 {
		subID = strconv.Itoa(p.SubcategoryID)
	}
	return []interface{}{
		p.CategoryID, subID, p.Name,
		p.ImageURL1, p.ImageURL2,
		p.Country, p.Refinery, p.Weight, p.Purity, p.FineGold,
		p.DiameterSize, p.BuyPrice, p.SellPrice,
		p.OtherProperties, p.URL,
	}
}

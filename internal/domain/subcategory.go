package domain

// Subcategory is a grouping node under a category landing page.
// ParentCategoryID is a lookup key into the Categories collection,
// not a structural pointer.
type Subcategory struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	URL              string `json:"url"`
	ParentCategoryID int    `json:"parent_category_id"`
}

package domain

// Category is a top-level grouping scraped from the site navigation menu.
// IDs are assigned sequentially in discovery order and never change
// within a run.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

package domain

// Product is a leaf-level catalog item. All attribute fields are kept
// as the raw strings shown on the site ("31.1 гр.", "999.9",
// "4100 лв."); a field absent in the source markup stays empty.
type Product struct {
	CategoryID      int    `json:"category_id"`
	SubcategoryID   int    `json:"subcategory_id"` // 0 when scraped off a category landing page
	Name            string `json:"product_name"`
	ImageURL1       string `json:"image_url_1"`
	ImageURL2       string `json:"image_url_2"`
	Country         string `json:"country"`
	Refinery        string `json:"refinery"`
	Weight          string `json:"weight"`
	Purity          string `json:"purity"`
	FineGold        string `json:"fine_gold"`
	DiameterSize    string `json:"diameter_size"`
	BuyPrice        string `json:"buy_price"`
	SellPrice       string `json:"sell_price"`
	OtherProperties string `json:"other_properties"`
	URL             string `json:"product_url"`
}

// ImageURLs returns the product's non-empty image links.
func (p Product) ImageURLs() []string {
	urls := make([]string, 0, 2)
	if p.ImageURL1 != "" {
		urls = append(urls, p.ImageURL1)
	}
	if p.ImageURL2 != "" {
		urls = append(urls, p.ImageURL2)
	}
	return urls
}

package client

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"igold/scraper/internal/domain"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

// ErrMissingName marks a product block whose primary identifying
// field could not be extracted. Such records are dropped, not padded.
var ErrMissingName = errors.New("product name missing")

type pageParser struct {
	baseURL string
}

func newPageParser(baseURL string) *pageParser {
	return &pageParser{
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

var (
	weightRegex = regexp.MustCompile(`(\d+\.?\d*)\s*гр\.`)
	priceRegex  = regexp.MustCompile(`(\d+\.?\d*)\s*лв`)
	purityRegex = regexp.MustCompile(`(?i)(\d{3,4}\.?\d*)\s*(?:проба|purity)`)
	numberRegex = regexp.MustCompile(`\d+\.?\d*`)
)

// labelRule maps the label of a product spec row to a Product field.
// Labels are matched by lowercase substring so both the Bulgarian site
// copy and occasional English variants resolve to the same column.
type labelRule struct {
	labels []string
	assign func(p *domain.Product, value string)
}

var productLabelRules = []labelRule{
	{[]string{"държава", "country"}, func(p *domain.Product, v string) { p.Country = v }},
	{[]string{"монетен двор", "рафинерия", "refinery", "mint"}, func(p *domain.Product, v string) { p.Refinery = v }},
	{[]string{"тегло", "weight"}, func(p *domain.Product, v string) { p.Weight = v }},
	{[]string{"проба", "purity"}, func(p *domain.Product, v string) { p.Purity = v }},
	{[]string{"чисто злато", "fine gold"}, func(p *domain.Product, v string) { p.FineGold = v }},
	{[]string{"диаметър", "размери", "diameter", "size"}, func(p *domain.Product, v string) { p.DiameterSize = v }},
	{[]string{"продаваме", "buy"}, func(p *domain.Product, v string) { p.BuyPrice = v }},
	{[]string{"купуваме", "sell"}, func(p *domain.Product, v string) { p.SellPrice = v }},
}

// refineries recognized in free page text when no labeled spec row
// names one. The country is implied by the refinery.
var knownRefineries = []struct {
	marker   string
	refinery string
	country  string
}{
	{"Valcambi", "Valcambi", "Швейцария"},
	{"Argor-Heraeus", "Argor-Heraeus", "Швейцария"},
	{"Argor Heraeus", "Argor-Heraeus", "Швейцария"},
	{"Pamp", "Pamp", "Швейцария"},
	{"PAMP", "Pamp", "Швейцария"},
	{"Royal Mint", "Royal Mint", "Великобритания"},
}

// spec row shapes seen on product pages: the newer layout keeps specs
// in a plain table, the older one uses definition lists and paragraph
// blocks. All are walked uniformly.
var productSpecSelectors = []string{
	"table tr",
	".product-details tr",
	".specifications tr",
	".product-info p",
	".description p",
}

// ParseCategories extracts the top-level categories from the site
// navigation menu, one per menu entry, IDs assigned in discovery
// order. The promo pseudo-category is not a catalog node and is
// skipped.
func (p *pageParser) ParseCategories(html string) ([]domain.Category, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	categories := make([]domain.Category, 0, 8)

	doc.Find("div.menu-product-types-box a").Each(func(i int, link *goquery.Selection) {
		name := strings.TrimSpace(link.Text())
		href, exists := link.Attr("href")
		if !exists || name == "" {
			return
		}

		if isPromoCategory(name, href) {
			log.Debugf("Skipping promo menu entry %q", name)
			return
		}

		categories = append(categories, domain.Category{
			ID:   len(categories) + 1,
			Name: name,
			URL:  p.absoluteURL(href),
		})
	})

	if len(categories) == 0 {
		return nil, fmt.Errorf("no categories found in navigation menu")
	}

	return categories, nil
}

func isPromoCategory(name, href string) bool {
	lowerName := strings.ToLower(name)
	lowerHref := strings.ToLower(href)
	return lowerName == "промо" ||
		strings.Contains(lowerHref, "promotzii") ||
		strings.Contains(lowerHref, "promo")
}

// ParseSubcategories extracts subcategory links from a category
// landing page. IDs are left zero; the driver assigns them scoped to
// the whole subcategory collection.
func (p *pageParser) ParseSubcategories(html string) []domain.Subcategory {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Warnf("Failed to parse category page HTML: %v", err)
		return nil
	}

	subcategories := make([]domain.Subcategory, 0, 8)
	seen := make(map[string]struct{})

	add := func(link *goquery.Selection) {
		name := strings.TrimSpace(link.Text())
		href, exists := link.Attr("href")
		if !exists || name == "" {
			return
		}

		url := p.absoluteURL(href)
		if _, dup := seen[url]; dup {
			return
		}
		seen[url] = struct{}{}

		subcategories = append(subcategories, domain.Subcategory{
			Name: name,
			URL:  url,
		})
	}

	// Dedicated subcategory box first, then loose subcategory links
	// elsewhere on the page.
	doc.Find("div[id^='sub-category-'] a").Each(func(i int, link *goquery.Selection) {
		add(link)
	})
	doc.Find("a[href*='/subcategory/']").Each(func(i int, link *goquery.Selection) {
		add(link)
	})

	return subcategories
}

// ParseProductLinks extracts the individual product page links from a
// listing page. Links are deduplicated and sorted so identical markup
// always yields an identical sequence.
func (p *pageParser) ParseProductLinks(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Warnf("Failed to parse listing page HTML: %v", err)
		return nil
	}

	seen := make(map[string]struct{})

	doc.Find("li.kv__member-item").Each(func(i int, container *goquery.Selection) {
		container.Find("a").Each(func(j int, link *goquery.Selection) {
			href, exists := link.Attr("href")
			if !exists || href == "" {
				return
			}

			text := strings.TrimSpace(link.Text())
			if strings.Contains(text, "Вижте повече") || looksLikeProductLink(href) {
				seen[p.absoluteURL(href)] = struct{}{}
			}
		})
	})

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	sort.Strings(links)

	return links
}

// product URL slugs used by the site for the four metal lines.
var productLinkKeywords = []string{"kyulche", "moneta", "platina", "paladiy", "srebro", "zlat"}

func looksLikeProductLink(href string) bool {
	lower := strings.ToLower(href)
	for _, keyword := range productLinkKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// ParseProduct extracts a product record from an individual product
// page. Every field except the name is optional: an absent spec row
// leaves the field empty, it never fails the record.
func (p *pageParser) ParseProduct(html, productURL string) (*domain.Product, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	product := &domain.Product{URL: productURL}

	product.Name = extractProductName(doc)
	if product.Name == "" {
		log.Warnf("Dropping product without a name: %s", productURL)
		return nil, ErrMissingName
	}

	p.extractProductImages(doc, product)
	p.extractLabeledFields(doc, product)
	p.extractTextFallbacks(doc, product)
	deriveFineGold(product)

	return product, nil
}

func extractProductName(doc *goquery.Document) string {
	for _, selector := range []string{"h1", "h2", "title"} {
		if name := strings.TrimSpace(doc.Find(selector).First().Text()); name != "" {
			return strings.Join(strings.Fields(name), " ")
		}
	}
	return ""
}

func (p *pageParser) extractProductImages(doc *goquery.Document, product *domain.Product) {
	var urls []string
	doc.Find("img").Each(func(i int, img *goquery.Selection) {
		src, exists := img.Attr("src")
		if !exists || src == "" {
			return
		}
		if !strings.Contains(strings.ToLower(src), "product") {
			return
		}
		urls = append(urls, p.absoluteURL(src))
	})

	if len(urls) >= 1 {
		product.ImageURL1 = urls[0]
	}
	if len(urls) >= 2 {
		product.ImageURL2 = urls[1]
	}
}

// extractLabeledFields walks the known spec row shapes and applies
// the label rules to every "label: value" pair found. Labels with no
// rule accumulate into OtherProperties so nothing on the page is
// silently lost. Definition lists pair dt with dd positionally since
// their labels carry no colon.
func (p *pageParser) extractLabeledFields(doc *goquery.Document, product *domain.Product) {
	doc.Find("dl").Each(func(i int, dl *goquery.Selection) {
		terms := dl.Find("dt")
		values := dl.Find("dd")
		terms.Each(func(j int, dt *goquery.Selection) {
			if j >= values.Length() {
				return
			}
			key := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(dt.Text()), ":"))
			value := strings.TrimSpace(values.Eq(j).Text())
			if key == "" || value == "" || len(key) > 40 {
				return
			}
			if !applyLabelRule(product, key, value) {
				appendOtherProperty(product, key, value)
			}
		})
	})

	for _, selector := range productSpecSelectors {
		doc.Find(selector).Each(func(i int, row *goquery.Selection) {
			text := strings.TrimSpace(row.Text())
			if !strings.Contains(text, ":") {
				return
			}

			parts := strings.SplitN(text, ":", 2)
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			if key == "" || value == "" || len(key) > 40 {
				return
			}

			if !applyLabelRule(product, key, value) {
				appendOtherProperty(product, key, value)
			}
		})
	}
}

func applyLabelRule(product *domain.Product, key, value string) bool {
	lowerKey := strings.ToLower(key)
	for _, rule := range productLabelRules {
		for _, label := range rule.labels {
			if strings.Contains(lowerKey, label) {
				rule.assign(product, value)
				return true
			}
		}
	}
	return false
}

func appendOtherProperty(product *domain.Product, key, value string) {
	entry := key + ": " + value
	if product.OtherProperties == "" {
		product.OtherProperties = entry
		return
	}
	if strings.Contains(product.OtherProperties, entry) {
		return
	}
	product.OtherProperties += "; " + entry
}

// extractTextFallbacks fills fields the spec rows did not provide by
// scanning the free page text, the way the listing blocks present
// them: "31.1 гр.", two "N лв" prices, a known refinery name.
func (p *pageParser) extractTextFallbacks(doc *goquery.Document, product *domain.Product) {
	pageText := doc.Text()

	if product.Weight == "" {
		if m := weightRegex.FindStringSubmatch(pageText); len(m) > 1 {
			product.Weight = m[1] + " гр."
		}
	}

	if product.BuyPrice == "" && product.SellPrice == "" {
		prices := priceRegex.FindAllStringSubmatch(pageText, 2)
		if len(prices) >= 1 {
			product.BuyPrice = prices[0][1] + " лв."
		}
		if len(prices) >= 2 {
			product.SellPrice = prices[1][1] + " лв."
		}
	}

	if product.Refinery == "" {
		for _, r := range knownRefineries {
			if strings.Contains(pageText, r.marker) {
				product.Refinery = r.refinery
				if product.Country == "" {
					product.Country = r.country
				}
				break
			}
		}
	}

	if product.Purity == "" {
		if m := purityRegex.FindStringSubmatch(pageText); len(m) > 1 {
			product.Purity = m[1]
		} else {
			lower := strings.ToLower(pageText)
			switch {
			case strings.Contains(lower, "злато") || strings.Contains(lower, "gold"):
				product.Purity = "999.9"
			case strings.Contains(lower, "сребро") || strings.Contains(lower, "silver"):
				product.Purity = "999.0"
			}
		}
	}
}

// deriveFineGold computes the fine metal content when both weight and
// purity parsed but the page did not state it outright.
func deriveFineGold(product *domain.Product) {
	if product.FineGold != "" || product.Weight == "" || product.Purity == "" {
		return
	}

	weightStr := numberRegex.FindString(product.Weight)
	purityStr := numberRegex.FindString(product.Purity)
	if weightStr == "" || purityStr == "" {
		return
	}

	weight, err := strconv.ParseFloat(weightStr, 64)
	if err != nil {
		return
	}
	purity, err := strconv.ParseFloat(purityStr, 64)
	if err != nil {
		return
	}

	product.FineGold = fmt.Sprintf("%.2f гр.", weight*purity/1000)
}

func (p *pageParser) absoluteURL(href string) string {
	switch {
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/"):
		return p.baseURL + href
	default:
		return p.baseURL + "/" + href
	}
}

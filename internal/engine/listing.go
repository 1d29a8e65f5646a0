package engine

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/raysh454/ziva/internal/scan"
	"github.com/raysh454/ziva/internal/utils"
)

// ErrNoListing is returned when a page has neither a product title nor a price.
var ErrNoListing = errors.New("engine: no product listing found")

// Listing is what the engine reads off a product page.
type Listing struct {
	Title string
	Price scan.Price
}

var (
	titleSelectors = []string{"#productTitle", "#title"}
	priceSelectors = []string{".a-price-whole", "#priceblock_ourprice", "#priceblock_dealprice"}
)

// ParseListing extracts the title and price from a storefront product page.
// Titles longer than titleLimit runes are cut and marked with "...".
func ParseListing(body []byte, titleLimit int) (*Listing, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	var l Listing
	for _, sel := range titleSelectors {
		if t := utils.CollapseSpace(doc.Find(sel).First().Text()); t != "" {
			l.Title = t
			break
		}
	}
	if l.Title == "" {
		l.Title = metaContent(doc, `meta[property="og:title"]`, `meta[name="title"]`)
	}

	for _, sel := range priceSelectors {
		// ParsePrice drops the trailing point of ".a-price-whole" and keeps
		// the paise of the older "₹1,299.00" price blocks.
		if p := scan.ParsePrice(doc.Find(sel).First().Text()); p > 0 {
			l.Price = p
			break
		}
	}
	if l.Price == 0 {
		l.Price = scan.ParsePrice(metaContent(doc, `meta[itemprop="price"]`, `meta[property="product:price:amount"]`))
	}

	if l.Title == "" && l.Price == 0 {
		return nil, ErrNoListing
	}
	l.Title = utils.Truncate(l.Title, titleLimit)
	return &l, nil
}

func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).First().Attr("content"); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

package demoserver

import (
	"net/http"
	"sort"
	"strings"
)

// Scenario names. Each one drives the engine towards a different verdict.
const (
	ScenarioFair      = "fair"
	ScenarioDeal      = "deal"
	ScenarioInflated  = "inflated"
	ScenarioOverpriced = "overpriced"
	ScenarioBlocked   = "blocked"
	ScenarioRemoved   = "removed"
)

// Scenario is one state of a product across every imitated site. Prices are
// whole rupees; zero leaves the value off the page.
type Scenario struct {
	Name        string
	Description string

	// Status is the listing page status. Zero means 200.
	Status int

	// Listed is false when the listing page carries no product.
	Listed bool

	Price    int
	Lowest   int
	Average  int
	Flipkart int
	Croma    int
}

func (s Scenario) status() int {
	if s.Status == 0 {
		return http.StatusOK
	}
	return s.Status
}

// Product is a catalog entry.
type Product struct {
	ASIN  string
	Slug  string
	Title string

	// Base prices of the fair scenario.
	Price    int
	Lowest   int
	Average  int
	Flipkart int
	Croma    int
}

// Scenario returns the named scenario derived from the product's base prices.
func (p Product) Scenario(name string) (Scenario, bool) {
	s := Scenario{
		Name:     name,
		Listed:   true,
		Price:    p.Price,
		Lowest:   p.Lowest,
		Average:  p.Average,
		Flipkart: p.Flipkart,
		Croma:    p.Croma,
	}
	switch name {
	case ScenarioFair:
		s.Description = "Price close to the usual average and other stores"
	case ScenarioDeal:
		s.Description = "Price below the lowest recorded price"
		s.Price = p.Lowest * 92 / 100
	case ScenarioInflated:
		s.Description = "Price well above the usual average"
		s.Price = p.Average * 4 / 3
	case ScenarioOverpriced:
		s.Description = "Another store sells it for less than half"
		s.Price = p.Flipkart * 9 / 4
	case ScenarioBlocked:
		s.Description = "Listing answers with 503 like a bot wall"
		s.Status = http.StatusServiceUnavailable
	case ScenarioRemoved:
		s.Description = "Listing page without a product"
		s.Listed = false
	default:
		return Scenario{}, false
	}
	return s, true
}

// Scenarios lists the scenario names in presentation order.
func Scenarios() []string {
	return []string{ScenarioFair, ScenarioDeal, ScenarioInflated, ScenarioOverpriced, ScenarioBlocked, ScenarioRemoved}
}

// Catalog returns the demo products.
func Catalog() []Product {
	return []Product{
		{
			ASIN:     "B0ACME5G01",
			Slug:     "acme-phone-5g-midnight-blue-128gb",
			Title:    "Acme Phone 5G (Midnight Blue, 128 GB) | 8 GB RAM",
			Price:    12999,
			Lowest:   11499,
			Average:  13250,
			Flipkart: 12749,
			Croma:    13490,
		},
		{
			ASIN:     "B0NIMBUS02",
			Slug:     "nimbus-wireless-earbuds-pro",
			Title:    "Nimbus Wireless Earbuds Pro (Graphite) with ANC",
			Price:    2499,
			Lowest:   1999,
			Average:  2599,
			Flipkart: 2449,
			Croma:    2699,
		},
	}
}

// search returns the products whose title contains every word of query,
// ordered by title.
func search(products map[string]Product, query string) []Product {
	words := strings.Fields(strings.ToLower(query))
	var out []Product
	for _, p := range products {
		title := strings.ToLower(p.Title)
		matched := len(words) > 0
		for _, w := range words {
			if !strings.Contains(title, w) {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

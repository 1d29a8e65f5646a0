// Package scan implements the link scan flow: the request/response shapes
// exchanged with the trust engine, the pure rendering of a verdict into an
// HTML panel fragment, and the Orchestrator that drives a UI through one scan.
package scan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ScanRequest is the body POSTed to the trust engine.
type ScanRequest struct {
	URL string `json:"url"`
}

// ScanResponse is the trust engine's answer. Its shape is assumed, not
// validated: every field may be missing.
type ScanResponse struct {
	Verdict      string       `json:"verdict"`
	Reason       string       `json:"reason,omitempty"`
	Product      string       `json:"product,omitempty"`
	Price        Price        `json:"price,omitempty"`
	CurrentPrice Price        `json:"current_price,omitempty"`
	History      *History     `json:"history,omitempty"`
	Competitors  []Competitor `json:"competitors,omitempty"`
}

// Current returns the price used for comparisons: current_price when set,
// otherwise price, otherwise 0.
func (r *ScanResponse) Current() Price {
	if r == nil {
		return 0
	}
	if r.CurrentPrice != 0 {
		return r.CurrentPrice
	}
	return r.Price
}

// History is the previously observed minimum and mean price of a product.
type History struct {
	Lowest  Price `json:"lowest"`
	Average Price `json:"average"`
}

// Competitor is another listing of the same product.
type Competitor struct {
	Site  string `json:"site"`
	Title string `json:"title,omitempty"`
	Price Price  `json:"price"`
	Link  string `json:"link"`
}

// Price is a rupee amount. It decodes from a JSON number, from a display
// string such as "₹1,299" or from null; anything unparseable becomes 0.
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("price: %w", err)
		}
		*p = ParsePrice(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*p = 0
		return nil
	}
	*p = Price(f)
	return nil
}

// ParsePrice extracts a number from display text like "₹1,23,999.00" or
// "Rs. 450". It returns 0 when no digits are present.
func ParsePrice(s string) Price {
	var b strings.Builder
	seenDot := false
scan:
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && b.Len() > 0 && !seenDot:
			seenDot = true
			b.WriteRune(r)
		case r == ',' && b.Len() > 0:
		default:
			if b.Len() > 0 {
				break scan
			}
		}
	}
	out := strings.TrimSuffix(b.String(), ".")
	if out == "" {
		return 0
	}
	f, err := strconv.ParseFloat(out, 64)
	if err != nil {
		return 0
	}
	return Price(f)
}

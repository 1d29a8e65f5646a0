package store

import (
	"time"

	"github.com/raysh454/ziva/internal/scan"
)

// Observation is one price seen for a product at a point in time.
type Observation struct {
	ID         string     `json:"id"`
	ProductKey string     `json:"product_key"`
	URL        string     `json:"url"`
	Title      string     `json:"title,omitempty"`
	Price      scan.Price `json:"price"`
	Source     string     `json:"source,omitempty"`
	ObservedAt time.Time  `json:"observed_at"`
}

// Stats summarizes the observations of one product. Only positive prices
// count towards Lowest and Average.
type Stats struct {
	ProductKey string     `json:"product_key"`
	Lowest     scan.Price `json:"lowest"`
	Average    scan.Price `json:"average"`
	Count      int        `json:"count"`
	FirstSeen  time.Time  `json:"first_seen"`
	LastSeen   time.Time  `json:"last_seen"`
}

// ScanRecord is one entry of the scan log.
type ScanRecord struct {
	ID         string             `json:"id"`
	URL        string             `json:"url"`
	ProductKey string             `json:"product_key,omitempty"`
	Verdict    string             `json:"verdict"`
	Level      string             `json:"level,omitempty"`
	Reason     string             `json:"reason,omitempty"`
	Product    string             `json:"product,omitempty"`
	Price      scan.Price         `json:"price"`
	Response   *scan.ScanResponse `json:"response,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// NewScanRecord builds a log entry from a finished scan.
func NewScanRecord(link, productKey string, resp *scan.ScanResponse) ScanRecord {
	rec := ScanRecord{URL: link, ProductKey: productKey, Response: resp}
	if resp != nil {
		rec.Verdict = resp.Verdict
		rec.Level = scan.Classify(resp.Verdict).Level.String()
		rec.Reason = resp.Reason
		rec.Product = resp.Product
		rec.Price = resp.Current()
	}
	return rec
}

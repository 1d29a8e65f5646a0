package engine

import "time"

// Config tunes the trust engine and the sites it consults.
type Config struct {
	// HistoryBaseURL is the price history site.
	HistoryBaseURL string `yaml:"history_base_url"`

	// FlipkartBaseURL and CromaBaseURL are the market sources.
	FlipkartBaseURL string `yaml:"flipkart_base_url"`
	CromaBaseURL    string `yaml:"croma_base_url"`

	// HistoryTimeout and MarketTimeout bound the enrichment lookups. A slow
	// lookup is dropped, it never fails the scan.
	HistoryTimeout time.Duration `yaml:"history_timeout"`
	MarketTimeout  time.Duration `yaml:"market_timeout"`

	// TitleLimit is the rune length product titles are cut to.
	TitleLimit int `yaml:"title_limit"`

	// UserAgent is sent with listing fetches.
	UserAgent string `yaml:"user_agent"`

	Policy Policy `yaml:"policy"`
}

func DefaultConfig() Config {
	return Config{
		HistoryBaseURL:  "https://pricehistoryapp.com",
		FlipkartBaseURL: "https://www.flipkart.com",
		CromaBaseURL:    "https://www.croma.com",
		HistoryTimeout:  45 * time.Second,
		MarketTimeout:   45 * time.Second,
		TitleLimit:      100,
		Policy:          DefaultPolicy(),
	}
}

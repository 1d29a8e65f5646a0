package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/raysh454/ziva/internal/logging"
	"github.com/raysh454/ziva/internal/scan"
	"github.com/raysh454/ziva/internal/utils"
	"github.com/raysh454/ziva/internal/webclient"
)

// HistoryLookup finds long-term price statistics for a product title.
// A nil History with a nil error means nothing was found.
type HistoryLookup interface {
	Lookup(ctx context.Context, title string) (*scan.History, error)
}

var (
	lowestPattern  = regexp.MustCompile(`(?is)Lowest Price.*?₹\s*([\d,]+)`)
	averagePattern = regexp.MustCompile(`(?is)Average Price.*?₹\s*([\d,]+)`)
)

// HistorySource reads price statistics from a price tracking site: it
// searches for the cleaned title, opens the first product result and reads
// the lowest and average prices from the page text.
type HistorySource struct {
	base   *utils.URLTools
	wc     webclient.WebClient
	logger logging.Logger
}

var _ HistoryLookup = (*HistorySource)(nil)

// NewHistorySource returns a source for the site at baseURL. wc should run
// page scripts; the site renders its results client side.
func NewHistorySource(baseURL string, wc webclient.WebClient, logger logging.Logger) (*HistorySource, error) {
	if wc == nil {
		return nil, errors.New("history: nil webclient")
	}
	base, err := utils.NewURLTools(baseURL)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &HistorySource{
		base:   base,
		wc:     wc,
		logger: logger.With(logging.Field{Key: "component", Value: "history"}),
	}, nil
}

func (h *HistorySource) Lookup(ctx context.Context, title string) (*scan.History, error) {
	query := utils.CleanQuery(title)
	if query == "" {
		return nil, nil
	}
	h.logger.Debug("checking price history", logging.Field{Key: "query", Value: query})

	searchURL, err := h.base.Resolve("/search?q=" + url.QueryEscape(query))
	if err != nil {
		return nil, err
	}
	resp, err := h.wc.Get(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("history search: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("history search: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("history search: %w", err)
	}
	href, ok := doc.Find(`a[href*="/product/"]`).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		h.logger.Info("no price history results", logging.Field{Key: "query", Value: query})
		return nil, nil
	}
	productURL, err := h.base.Resolve(href)
	if err != nil {
		return nil, err
	}

	page, err := h.wc.Get(ctx, productURL)
	if err != nil {
		return nil, fmt.Errorf("history product page: %w", err)
	}
	if !page.OK() {
		return nil, fmt.Errorf("history product page: status %d", page.StatusCode)
	}
	text, err := InnerText(page.Body)
	if err != nil {
		return nil, fmt.Errorf("history product page: %w", err)
	}

	hist := ParseHistoryText(text)
	if hist == nil {
		h.logger.Info("price history page had no statistics", logging.Field{Key: "url", Value: productURL})
	}
	return hist, nil
}

// ParseHistoryText reads "Lowest Price ... ₹N" and "Average Price ... ₹N"
// from page text. It returns nil when neither is present.
func ParseHistoryText(text string) *scan.History {
	var hist scan.History
	if m := lowestPattern.FindStringSubmatch(text); m != nil {
		hist.Lowest = scan.ParsePrice(m[1])
	}
	if m := averagePattern.FindStringSubmatch(text); m != nil {
		hist.Average = scan.ParsePrice(m[1])
	}
	if hist.Lowest == 0 && hist.Average == 0 {
		return nil
	}
	return &hist
}

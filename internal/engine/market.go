package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/raysh454/ziva/internal/logging"
	"github.com/raysh454/ziva/internal/scan"
	"github.com/raysh454/ziva/internal/utils"
	"github.com/raysh454/ziva/internal/webclient"
	"golang.org/x/sync/errgroup"
)

// Source searches one store for a product.
// A nil Competitor with a nil error means no acceptable match.
type Source interface {
	Name() string
	Search(ctx context.Context, query string) (*scan.Competitor, error)
}

// MarketLookup finds the same product in other stores.
type MarketLookup interface {
	Competitors(ctx context.Context, title string) []scan.Competitor
}

// MarketScanner queries every Source concurrently.
type MarketScanner struct {
	sources []Source
	timeout time.Duration
	logger  logging.Logger
}

var _ MarketLookup = (*MarketScanner)(nil)

// NewMarketScanner returns a scanner over sources. A zero timeout leaves the
// caller's deadline in charge.
func NewMarketScanner(timeout time.Duration, logger logging.Logger, sources ...Source) *MarketScanner {
	if logger == nil {
		logger = logging.Nop()
	}
	return &MarketScanner{
		sources: sources,
		timeout: timeout,
		logger:  logger.With(logging.Field{Key: "component", Value: "market"}),
	}
}

// Competitors returns one match per source that found the product, in source
// order. Failing sources are logged and skipped.
func (m *MarketScanner) Competitors(ctx context.Context, title string) []scan.Competitor {
	query := utils.CleanQuery(title)
	if query == "" || len(m.sources) == 0 {
		return nil
	}
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	found := make([]*scan.Competitor, len(m.sources))
	var g errgroup.Group
	for i, src := range m.sources {
		g.Go(func() error {
			start := time.Now()
			c, err := src.Search(ctx, query)
			if err != nil {
				m.logger.Warn("market source failed",
					logging.Field{Key: "source", Value: src.Name()},
					logging.Field{Key: "error", Value: err})
				return nil
			}
			m.logger.Debug("market source done",
				logging.Field{Key: "source", Value: src.Name()},
				logging.Field{Key: "found", Value: c != nil},
				logging.Field{Key: "elapsed", Value: time.Since(start).String()})
			found[i] = c
			return nil
		})
	}
	_ = g.Wait()

	out := make([]scan.Competitor, 0, len(found))
	for _, c := range found {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out
}

type candidate struct {
	title string
	price string
	link  string
}

// StoreSource searches a storefront's search page and returns the first
// result whose title is close enough to the query.
type StoreSource struct {
	name      string
	base      *utils.URLTools
	path      string
	threshold int
	extract   func(doc *goquery.Document) []candidate
	wc        webclient.WebClient
}

var _ Source = (*StoreSource)(nil)

func newStoreSource(name, baseURL, path string, threshold int, wc webclient.WebClient, extract func(*goquery.Document) []candidate) (*StoreSource, error) {
	if wc == nil {
		return nil, errors.New("market: nil webclient")
	}
	base, err := utils.NewURLTools(baseURL)
	if err != nil {
		return nil, err
	}
	return &StoreSource{name: name, base: base, path: path, threshold: threshold, extract: extract, wc: wc}, nil
}

// NewFlipkartSource searches Flipkart. Titles must score above 60.
func NewFlipkartSource(baseURL string, wc webclient.WebClient) (*StoreSource, error) {
	return newStoreSource("Flipkart", baseURL, "/search?q=", 60, wc, extractFlipkart)
}

// NewCromaSource searches Croma. Only the first result is considered and its
// title must score above 50.
func NewCromaSource(baseURL string, wc webclient.WebClient) (*StoreSource, error) {
	return newStoreSource("Croma", baseURL, "/searchB?q=", 50, wc, extractCroma)
}

func (s *StoreSource) Name() string { return s.name }

func (s *StoreSource) Search(ctx context.Context, query string) (*scan.Competitor, error) {
	searchURL, err := s.base.Resolve(s.path + url.QueryEscape(query))
	if err != nil {
		return nil, err
	}
	resp, err := s.wc.Get(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", s.name, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%s search: status %d", s.name, resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", s.name, err)
	}

	for _, c := range s.extract(doc) {
		price := scan.ParsePrice(c.price)
		if price <= 0 || c.title == "" {
			continue
		}
		if PartialRatio(query, c.title) <= s.threshold {
			continue
		}
		link := c.link
		if link != "" {
			if link, err = s.base.Resolve(link); err != nil {
				continue
			}
		}
		return &scan.Competitor{Site: s.name, Title: c.title, Price: price, Link: link}, nil
	}
	return nil, nil
}

const (
	flipkartCards  = `div[data-id], div._1AtVbE`
	flipkartTitles = `div.RG5Slk, div.KzDlHZ, div._4rR01T, a.s1Q9rs`
	flipkartPrices = `div.hZ3P6w, div.DeU9vF, div.Nx9bqj, div._30jeq3`

	cromaCards  = `li.product-item, div.product-item`
	cromaTitles = `h3.product-title, h3 a`
	cromaPrices = `.amount, .new-price`
)

func extractFlipkart(doc *goquery.Document) []candidate {
	var out []candidate
	doc.Find(flipkartCards).Each(func(_ int, card *goquery.Selection) {
		title := card.Find(flipkartTitles).First()
		price := card.Find(flipkartPrices).First()
		if title.Length() == 0 || price.Length() == 0 {
			return
		}
		href, _ := card.Find("a").First().Attr("href")
		out = append(out, candidate{
			title: utils.CollapseSpace(title.Text()),
			price: price.Text(),
			link:  href,
		})
	})
	return out
}

func extractCroma(doc *goquery.Document) []candidate {
	card := doc.Find(cromaCards).First()
	if card.Length() == 0 {
		return nil
	}
	href, _ := card.Find("h3 a").First().Attr("href")
	return []candidate{{
		title: utils.CollapseSpace(card.Find(cromaTitles).First().Text()),
		price: card.Find(cromaPrices).First().Text(),
		link:  href,
	}}
}

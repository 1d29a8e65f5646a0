// Package engine is the trust engine behind the scan endpoint: it reads a
// product listing, compares its price with history and other stores, and
// issues a verdict.
package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/raysh454/ziva/internal/logging"
	"github.com/raysh454/ziva/internal/scan"
	"github.com/raysh454/ziva/internal/store"
	"github.com/raysh454/ziva/internal/utils"
	"github.com/raysh454/ziva/internal/webclient"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidLink is returned for input that is not a usable URL.
var ErrInvalidLink = errors.New("engine: invalid link")

// Recorder is the part of the store the engine writes to.
type Recorder interface {
	Stats(ctx context.Context, productKey string) (*store.Stats, error)
	RecordObservation(ctx context.Context, obs store.Observation) (store.Observation, error)
	RecordScan(ctx context.Context, rec store.ScanRecord) (store.ScanRecord, error)
}

// Deps are the engine's collaborators. Only Pages is required.
type Deps struct {
	// Pages fetches the listing itself.
	Pages   webclient.WebClient
	History HistoryLookup
	Market  MarketLookup
	Store   Recorder
}

type Engine struct {
	cfg    Config
	deps   Deps
	logger logging.Logger
}

// New returns an engine over deps.
func New(cfg Config, deps Deps, logger logging.Logger) (*Engine, error) {
	if deps.Pages == nil {
		return nil, errors.New("engine: nil page webclient")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	if cfg.TitleLimit <= 0 {
		cfg.TitleLimit = DefaultConfig().TitleLimit
	}
	return &Engine{
		cfg:    cfg,
		deps:   deps,
		logger: logger.With(logging.Field{Key: "component", Value: "engine"}),
	}, nil
}

// NewDefault wires the standard history site and the Flipkart and Croma
// sources. render fetches those sites; it should run page scripts.
func NewDefault(cfg Config, pages, render webclient.WebClient, rec Recorder, logger logging.Logger) (*Engine, error) {
	history, err := NewHistorySource(cfg.HistoryBaseURL, render, logger)
	if err != nil {
		return nil, err
	}
	flipkart, err := NewFlipkartSource(cfg.FlipkartBaseURL, render)
	if err != nil {
		return nil, err
	}
	croma, err := NewCromaSource(cfg.CromaBaseURL, render)
	if err != nil {
		return nil, err
	}
	return New(cfg, Deps{
		Pages:   pages,
		History: history,
		Market:  NewMarketScanner(cfg.MarketTimeout, logger, flipkart, croma),
		Store:   rec,
	}, logger)
}

// Client exposes the engine as a scan.Client, so an orchestrator can run
// without a remote endpoint.
func (e *Engine) Client() scan.Client {
	return scan.ClientFunc(func(ctx context.Context, req *scan.ScanRequest) (*scan.ScanResponse, error) {
		return e.Scan(ctx, req.URL)
	})
}

// Scan evaluates the listing at link. Fetch problems and pages without a
// listing produce a verdict, not an error; only an unusable link fails.
func (e *Engine) Scan(ctx context.Context, link string) (*scan.ScanResponse, error) {
	canonical, err := utils.Canonicalize(link, utils.ProductLinkOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}
	key, err := utils.ProductKey(canonical)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}
	log := e.logger.With(logging.Field{Key: "product_key", Value: key})
	log.Info("scanning listing", logging.Field{Key: "url", Value: canonical})

	resp := e.evaluate(ctx, log, canonical, key)
	e.recordScan(ctx, log, canonical, key, resp)
	return resp, nil
}

func (e *Engine) evaluate(ctx context.Context, log logging.Logger, link, key string) *scan.ScanResponse {
	page, err := e.deps.Pages.Do(ctx, &webclient.Request{
		Method:  http.MethodGet,
		URL:     link,
		Headers: webclient.BrowserHeaders(e.cfg.UserAgent),
	})
	if err != nil {
		log.Warn("listing fetch failed", logging.Field{Key: "error", Value: err})
		return &scan.ScanResponse{Verdict: VerdictError, Reason: err.Error()}
	}
	if page.StatusCode != http.StatusOK {
		log.Warn("listing fetch blocked", logging.Field{Key: "status", Value: page.StatusCode})
		return &scan.ScanResponse{Verdict: VerdictBlocked, Reason: "Bot detection triggered"}
	}

	listing, err := ParseListing(page.Body, e.cfg.TitleLimit)
	if err != nil {
		log.Info("no listing on page", logging.Field{Key: "error", Value: err})
		return &scan.ScanResponse{Verdict: VerdictHighRisk, Reason: "No product listing found at this link"}
	}

	history, competitors := e.enrich(ctx, log, link, key, listing)
	verdict, reason := e.cfg.Policy.Evaluate(listing.Price, history, competitors)
	log.Info("listing evaluated",
		logging.Field{Key: "verdict", Value: verdict},
		logging.Field{Key: "price", Value: float64(listing.Price)},
		logging.Field{Key: "competitors", Value: len(competitors)})

	return &scan.ScanResponse{
		Verdict:      verdict,
		Reason:       reason,
		Product:      listing.Title,
		Price:        listing.Price,
		CurrentPrice: listing.Price,
		History:      history,
		Competitors:  competitors,
	}
}

// enrich gathers stored stats, remote history and competitors, then records
// the new observation. Stats are read before recording so the current price
// can still be a new low.
func (e *Engine) enrich(ctx context.Context, log logging.Logger, link, key string, listing *Listing) (*scan.History, []scan.Competitor) {
	var local *store.Stats
	if e.deps.Store != nil {
		stats, err := e.deps.Store.Stats(ctx, key)
		switch {
		case err == nil:
			local = stats
		case !errors.Is(err, store.ErrNotFound):
			log.Warn("reading stored stats failed", logging.Field{Key: "error", Value: err})
		}
	}

	var (
		remote      *scan.History
		competitors []scan.Competitor
		g           errgroup.Group
	)
	if e.deps.History != nil && listing.Title != "" {
		g.Go(func() error {
			hctx, cancel := withOptionalTimeout(ctx, e.cfg.HistoryTimeout)
			defer cancel()
			h, err := e.deps.History.Lookup(hctx, listing.Title)
			if err != nil {
				log.Warn("price history lookup failed", logging.Field{Key: "error", Value: err})
				return nil
			}
			remote = h
			return nil
		})
	}
	if e.deps.Market != nil && listing.Title != "" {
		g.Go(func() error {
			competitors = e.deps.Market.Competitors(ctx, listing.Title)
			return nil
		})
	}
	_ = g.Wait()

	if e.deps.Store != nil && listing.Price > 0 {
		_, err := e.deps.Store.RecordObservation(ctx, store.Observation{
			ProductKey: key,
			URL:        link,
			Title:      listing.Title,
			Price:      listing.Price,
			Source:     "listing",
		})
		if err != nil {
			log.Warn("recording observation failed", logging.Field{Key: "error", Value: err})
		}
	}

	return MergeHistory(remote, local), competitors
}

func (e *Engine) recordScan(ctx context.Context, log logging.Logger, link, key string, resp *scan.ScanResponse) {
	if e.deps.Store == nil {
		return
	}
	if _, err := e.deps.Store.RecordScan(ctx, store.NewScanRecord(link, key, resp)); err != nil {
		log.Warn("recording scan failed", logging.Field{Key: "error", Value: err})
	}
}

// MergeHistory combines remote history with locally stored stats. The lowest
// price is the smaller known one; the average prefers the remote figure,
// which covers a longer period.
func MergeHistory(remote *scan.History, local *store.Stats) *scan.History {
	var out scan.History
	if remote != nil {
		out = *remote
	}
	if local != nil {
		if local.Lowest > 0 && (out.Lowest == 0 || local.Lowest < out.Lowest) {
			out.Lowest = local.Lowest
		}
		if out.Average == 0 {
			out.Average = local.Average
		}
	}
	if out.Lowest == 0 && out.Average == 0 {
		return nil
	}
	return &out
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

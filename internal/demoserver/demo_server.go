package demoserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/raysh454/ziva/internal/logging"
	"github.com/raysh454/ziva/internal/scan"
)

// DemoServer imitates a marketplace listing, a price history site and two
// competing stores, all offline. Each product can be switched between
// scenarios from the control panel.
type DemoServer struct {
	cfg       Config
	logger    logging.Logger
	products  map[string]Product // ASIN -> product
	scenarios map[string]string  // ASIN -> scenario name
	mu        sync.RWMutex
}

// NewDemoServer creates a new demo server instance.
func NewDemoServer(cfg Config, logger logging.Logger) (*DemoServer, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	if cfg.InitialScenario == "" {
		cfg.InitialScenario = ScenarioFair
	}
	products := make(map[string]Product)
	scenarios := make(map[string]string)
	for _, p := range Catalog() {
		if _, ok := p.Scenario(cfg.InitialScenario); !ok {
			return nil, fmt.Errorf("unknown scenario %q", cfg.InitialScenario)
		}
		products[p.ASIN] = p
		scenarios[p.ASIN] = cfg.InitialScenario
	}
	return &DemoServer{
		cfg:       cfg,
		logger:    logger.With(logging.Field{Key: "component", Value: "demoserver"}),
		products:  products,
		scenarios: scenarios,
	}, nil
}

// Start serves every site until ctx is cancelled.
func (s *DemoServer) Start(ctx context.Context) error {
	sites := []struct {
		name    string
		port    int
		handler http.Handler
	}{
		{"store", s.cfg.StorePort, s.StoreHandler()},
		{"history", s.cfg.HistoryPort, s.HistoryHandler()},
		{"flipkart", s.cfg.FlipkartPort, s.FlipkartHandler()},
		{"croma", s.cfg.CromaPort, s.CromaHandler()},
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, site := range sites {
		srv := &http.Server{
			Addr:              s.cfg.addr(site.port),
			Handler:           site.handler,
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			s.logger.Info("demo site listening",
				logging.Field{Key: "site", Value: site.name},
				logging.Field{Key: "addr", Value: srv.Addr})
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s site: %w", site.name, err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}
	return g.Wait()
}

// current returns the product and its active scenario.
func (s *DemoServer) current(asin string) (Product, Scenario, bool) {
	s.mu.RLock()
	p, ok := s.products[strings.ToUpper(asin)]
	name := s.scenarios[p.ASIN]
	s.mu.RUnlock()
	if !ok {
		return Product{}, Scenario{}, false
	}
	sc, _ := p.Scenario(name)
	return p, sc, true
}

func (s *DemoServer) bySlug(slug string) (Product, Scenario, bool) {
	s.mu.RLock()
	var asin string
	for _, p := range s.products {
		if p.Slug == slug {
			asin = p.ASIN
			break
		}
	}
	s.mu.RUnlock()
	return s.current(asin)
}

// SetScenario switches one product, or every product when asin is empty.
func (s *DemoServer) SetScenario(asin, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if asin == "" {
		for id, p := range s.products {
			if _, ok := p.Scenario(name); !ok {
				return fmt.Errorf("unknown scenario %q", name)
			}
			s.scenarios[id] = name
		}
		return nil
	}
	p, ok := s.products[strings.ToUpper(asin)]
	if !ok {
		return fmt.Errorf("unknown product %q", asin)
	}
	if _, ok := p.Scenario(name); !ok {
		return fmt.Errorf("unknown scenario %q", name)
	}
	s.scenarios[p.ASIN] = name
	return nil
}

// Reset puts every product back into the initial scenario.
func (s *DemoServer) Reset() {
	s.mu.Lock()
	for id := range s.scenarios {
		s.scenarios[id] = s.cfg.InitialScenario
	}
	s.mu.Unlock()
}

// match is a search hit with the product's active scenario.
type match struct {
	Product  Product
	Scenario Scenario
}

// matches returns the catalog entries a search for q finds.
func (s *DemoServer) matches(q string) []match {
	s.mu.RLock()
	found := search(s.products, q)
	s.mu.RUnlock()

	out := make([]match, 0, len(found))
	for _, p := range found {
		if _, sc, ok := s.current(p.ASIN); ok {
			out = append(out, match{Product: p, Scenario: sc})
		}
	}
	return out
}

// StoreHandler serves the marketplace listings and the control panel.
func (s *DemoServer) StoreHandler() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.handleStoreIndex)
	r.Get("/dp/{asin}", s.handleListing)
	r.Get("/{slug}/dp/{asin}", s.handleListing)
	r.Get("/demo/control", s.handleControlPanel)
	r.Get("/demo/scenarios", s.handleScenarios)
	r.Post("/demo/scenario", s.handleSetScenario)
	r.Post("/demo/reset", s.handleReset)
	return r
}

// HistoryHandler serves the price history search and product pages.
func (s *DemoServer) HistoryHandler() http.Handler {
	r := chi.NewRouter()
	r.Get("/search", s.handleHistorySearch)
	r.Get("/product/{slug}", s.handleHistoryProduct)
	return r
}

// FlipkartHandler serves the Flipkart style search page.
func (s *DemoServer) FlipkartHandler() http.Handler {
	r := chi.NewRouter()
	r.Get("/search", s.handleFlipkartSearch)
	return r
}

// CromaHandler serves the Croma style search page.
func (s *DemoServer) CromaHandler() http.Handler {
	r := chi.NewRouter()
	r.Get("/searchB", s.handleCromaSearch)
	return r
}

func (s *DemoServer) handleStoreIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, storeIndexTmpl, Catalog())
}

func (s *DemoServer) handleListing(w http.ResponseWriter, r *http.Request) {
	p, sc, ok := s.current(chi.URLParam(r, "asin"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.logger.Debug("serving listing",
		logging.Field{Key: "asin", Value: p.ASIN},
		logging.Field{Key: "scenario", Value: sc.Name})

	if sc.status() != http.StatusOK {
		s.render(w, sc.status(), botWallTmpl, nil)
		return
	}
	s.render(w, http.StatusOK, listingTmpl, match{Product: p, Scenario: sc})
}

func (s *DemoServer) handleHistorySearch(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, historySearchTmpl, s.matches(r.URL.Query().Get("q")))
}

func (s *DemoServer) handleHistoryProduct(w http.ResponseWriter, r *http.Request) {
	p, sc, ok := s.bySlug(chi.URLParam(r, "slug"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.render(w, http.StatusOK, historyProductTmpl, match{Product: p, Scenario: sc})
}

func (s *DemoServer) handleFlipkartSearch(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, flipkartSearchTmpl, s.matches(r.URL.Query().Get("q")))
}

func (s *DemoServer) handleCromaSearch(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, cromaSearchTmpl, s.matches(r.URL.Query().Get("q")))
}

// scenarioInfo is one row of /demo/scenarios.
type scenarioInfo struct {
	ASIN      string   `json:"asin"`
	Title     string   `json:"title"`
	Listing   string   `json:"listing"`
	Scenario  string   `json:"scenario"`
	Available []string `json:"available"`
}

func (s *DemoServer) scenarioInfos() []scenarioInfo {
	out := make([]scenarioInfo, 0)
	for _, p := range Catalog() {
		_, sc, _ := s.current(p.ASIN)
		out = append(out, scenarioInfo{
			ASIN:      p.ASIN,
			Title:     p.Title,
			Listing:   s.cfg.StoreURL() + "/dp/" + p.ASIN,
			Scenario:  sc.Name,
			Available: Scenarios(),
		})
	}
	return out
}

func (s *DemoServer) handleScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.scenarioInfos())
}

func (s *DemoServer) handleSetScenario(w http.ResponseWriter, r *http.Request) {
	asin := r.FormValue("asin")
	name := r.FormValue("scenario")
	if err := s.SetScenario(asin, name); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
		return
	}
	s.logger.Info("scenario switched",
		logging.Field{Key: "asin", Value: asin},
		logging.Field{Key: "scenario", Value: name})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "asin": asin, "scenario": name})
}

func (s *DemoServer) handleReset(w http.ResponseWriter, r *http.Request) {
	s.Reset()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "scenario": s.cfg.InitialScenario})
}

func (s *DemoServer) handleControlPanel(w http.ResponseWriter, r *http.Request) {
	descriptions := make(map[string]string)
	for _, name := range Scenarios() {
		sc, _ := Catalog()[0].Scenario(name)
		descriptions[name] = sc.Description
	}
	s.render(w, http.StatusOK, controlPanelTmpl, struct {
		Products     []scenarioInfo
		Descriptions map[string]string
	}{s.scenarioInfos(), descriptions})
}

func (s *DemoServer) render(w http.ResponseWriter, status int, tmpl *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("rendering demo page", logging.Field{Key: "error", Value: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// symbol formats whole rupees the way Indian stores print them.
func symbol(n int) string {
	return scan.FormatPrice(scan.Price(n))
}

// rupees is symbol without the currency sign.
func rupees(n int) string {
	return strings.TrimPrefix(symbol(n), scan.CurrencySymbol)
}

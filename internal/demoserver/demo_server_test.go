package demoserver_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/raysh454/ziva/internal/demoserver"
	"github.com/raysh454/ziva/internal/engine"
	"github.com/raysh454/ziva/internal/logging"
	"github.com/raysh454/ziva/internal/scan"
	"github.com/raysh454/ziva/internal/webclient"
)

const acme = "B0ACME5G01"

type sites struct {
	demo     *demoserver.DemoServer
	store    *httptest.Server
	history  *httptest.Server
	flipkart *httptest.Server
	croma    *httptest.Server
}

func startSites(t *testing.T) *sites {
	t.Helper()
	ds, err := demoserver.NewDemoServer(demoserver.DefaultConfig(), logging.Nop())
	if err != nil {
		t.Fatalf("NewDemoServer: %v", err)
	}
	s := &sites{
		demo:     ds,
		store:    httptest.NewServer(ds.StoreHandler()),
		history:  httptest.NewServer(ds.HistoryHandler()),
		flipkart: httptest.NewServer(ds.FlipkartHandler()),
		croma:    httptest.NewServer(ds.CromaHandler()),
	}
	t.Cleanup(func() {
		s.store.Close()
		s.history.Close()
		s.flipkart.Close()
		s.croma.Close()
	})
	return s
}

func get(t *testing.T, rawURL string) (int, *goquery.Document) {
	t.Helper()
	resp, err := http.Get(rawURL)
	if err != nil {
		t.Fatalf("GET %s: %v", rawURL, err)
	}
	defer resp.Body.Close()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		t.Fatalf("parse %s: %v", rawURL, err)
	}
	return resp.StatusCode, doc
}

func TestNewDemoServer_UnknownScenario(t *testing.T) {
	t.Parallel()
	cfg := demoserver.DefaultConfig()
	cfg.InitialScenario = "nope"
	if _, err := demoserver.NewDemoServer(cfg, nil); err == nil {
		t.Fatal("expected error for unknown scenario")
	}
}

func TestConfig_URLs(t *testing.T) {
	t.Parallel()
	cfg := demoserver.DefaultConfig()
	if got := cfg.StoreURL(); got != "http://127.0.0.1:9999" {
		t.Errorf("StoreURL = %q", got)
	}
	if got := cfg.CromaURL(); got != "http://127.0.0.1:9996" {
		t.Errorf("CromaURL = %q", got)
	}
}

func TestListing_Fair(t *testing.T) {
	t.Parallel()
	s := startSites(t)

	status, doc := get(t, s.store.URL+"/dp/"+acme)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if got := doc.Find("#productTitle").Text(); !strings.HasPrefix(got, "Acme Phone 5G") {
		t.Errorf("title = %q", got)
	}
	if got := doc.Find(".a-price-whole").Text(); got != "12,999." {
		t.Errorf("price = %q", got)
	}
}

func TestListing_SlugPathAndUnknown(t *testing.T) {
	t.Parallel()
	s := startSites(t)

	if status, _ := get(t, s.store.URL+"/anything/dp/"+strings.ToLower(acme)); status != http.StatusOK {
		t.Errorf("slug path status = %d", status)
	}
	if status, _ := get(t, s.store.URL+"/dp/B000000000"); status != http.StatusNotFound {
		t.Errorf("unknown product status = %d", status)
	}
}

func TestListing_Scenarios(t *testing.T) {
	t.Parallel()
	s := startSites(t)

	if err := s.demo.SetScenario(acme, demoserver.ScenarioBlocked); err != nil {
		t.Fatal(err)
	}
	if status, _ := get(t, s.store.URL+"/dp/"+acme); status != http.StatusServiceUnavailable {
		t.Errorf("blocked status = %d", status)
	}

	if err := s.demo.SetScenario(acme, demoserver.ScenarioRemoved); err != nil {
		t.Fatal(err)
	}
	status, doc := get(t, s.store.URL+"/dp/"+acme)
	if status != http.StatusOK || doc.Find("#productTitle").Length() != 0 {
		t.Errorf("removed listing: status %d, title present %v", status, doc.Find("#productTitle").Length() > 0)
	}

	s.demo.Reset()
	if _, doc := get(t, s.store.URL+"/dp/"+acme); doc.Find("#productTitle").Length() != 1 {
		t.Error("reset did not restore the listing")
	}
}

func TestSetScenario_Errors(t *testing.T) {
	t.Parallel()
	s := startSites(t)

	if err := s.demo.SetScenario("B000000000", demoserver.ScenarioFair); err == nil {
		t.Error("expected error for unknown product")
	}
	if err := s.demo.SetScenario(acme, "nope"); err == nil {
		t.Error("expected error for unknown scenario")
	}
	if err := s.demo.SetScenario("", demoserver.ScenarioInflated); err != nil {
		t.Errorf("set all: %v", err)
	}
}

func TestControlEndpoints(t *testing.T) {
	t.Parallel()
	s := startSites(t)

	resp, err := http.PostForm(s.store.URL+"/demo/scenario", url.Values{"asin": {acme}, "scenario": {demoserver.ScenarioDeal}})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set scenario status = %d", resp.StatusCode)
	}

	resp, err = http.PostForm(s.store.URL+"/demo/scenario", url.Values{"asin": {acme}, "scenario": {"nope"}})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad scenario status = %d", resp.StatusCode)
	}

	resp, err = http.Get(s.store.URL + "/demo/scenarios")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var infos []struct {
		ASIN     string `json:"asin"`
		Scenario string `json:"scenario"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&infos); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, info := range infos {
		if info.ASIN == acme {
			found = true
			if info.Scenario != demoserver.ScenarioDeal {
				t.Errorf("scenario = %q, want deal", info.Scenario)
			}
		}
	}
	if !found {
		t.Error("acme missing from /demo/scenarios")
	}

	status, doc := get(t, s.store.URL+"/demo/control")
	if status != http.StatusOK || doc.Find(".card").Length() != len(demoserver.Catalog()) {
		t.Errorf("control panel: status %d, cards %d", status, doc.Find(".card").Length())
	}
}

func TestHistoryPages(t *testing.T) {
	t.Parallel()
	s := startSites(t)

	_, doc := get(t, s.history.URL+"/search?q="+url.QueryEscape("Acme Phone 5G"))
	href, ok := doc.Find(`a[href*="/product/"]`).First().Attr("href")
	if !ok {
		t.Fatal("no product link in search results")
	}

	resp, err := http.Get(s.history.URL + href)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	text, err := engine.InnerText(body)
	if err != nil {
		t.Fatal(err)
	}
	hist := engine.ParseHistoryText(text)
	if hist == nil || hist.Lowest != 11499 || hist.Average != 13250 {
		t.Errorf("history = %+v", hist)
	}

	_, doc = get(t, s.history.URL+"/search?q=toaster")
	if doc.Find(`a[href*="/product/"]`).Length() != 0 {
		t.Error("unrelated query returned results")
	}
}

func TestStoreSearchPages(t *testing.T) {
	t.Parallel()
	s := startSites(t)

	_, doc := get(t, s.flipkart.URL+"/search?q=nimbus+earbuds")
	if got := doc.Find("div[data-id] .Nx9bqj").Text(); got != "₹2,449" {
		t.Errorf("flipkart price = %q", got)
	}
	_, doc = get(t, s.croma.URL+"/searchB?q=nimbus+earbuds")
	if got := doc.Find("li.product-item .amount").Text(); got != "₹2,699" {
		t.Errorf("croma price = %q", got)
	}
}

func newEngine(t *testing.T, s *sites) *engine.Engine {
	t.Helper()
	wc, err := webclient.NewNetHTTPClient(webclient.DefaultConfig(), logging.Nop(), nil)
	if err != nil {
		t.Fatal(err)
	}
	cfg := engine.DefaultConfig()
	cfg.HistoryBaseURL = s.history.URL
	cfg.FlipkartBaseURL = s.flipkart.URL
	cfg.CromaBaseURL = s.croma.URL
	e, err := engine.NewDefault(cfg, wc, wc, nil, logging.Nop())
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestEngineAgainstDemoSites(t *testing.T) {
	t.Parallel()

	cases := []struct {
		scenario string
		verdict  string
		reason   string
	}{
		{demoserver.ScenarioFair, engine.VerdictSafe, "in line with other stores"},
		{demoserver.ScenarioDeal, engine.VerdictSafe, "lowest price"},
		{demoserver.ScenarioInflated, engine.VerdictSuspicious, "33% above"},
		{demoserver.ScenarioOverpriced, engine.VerdictHighRisk, "Flipkart sells it for ₹12,749"},
		{demoserver.ScenarioBlocked, engine.VerdictBlocked, "Bot detection"},
		{demoserver.ScenarioRemoved, engine.VerdictHighRisk, "No product listing"},
	}
	for _, tc := range cases {
		t.Run(tc.scenario, func(t *testing.T) {
			t.Parallel()
			s := startSites(t)
			if err := s.demo.SetScenario(acme, tc.scenario); err != nil {
				t.Fatal(err)
			}

			resp, err := newEngine(t, s).Scan(context.Background(), s.store.URL+"/dp/"+acme+"?tag=x")
			if err != nil {
				t.Fatalf("Scan: %v", err)
			}
			if resp.Verdict != tc.verdict {
				t.Errorf("verdict = %q, want %q (reason %q)", resp.Verdict, tc.verdict, resp.Reason)
			}
			if !strings.Contains(resp.Reason, tc.reason) {
				t.Errorf("reason = %q, want it to contain %q", resp.Reason, tc.reason)
			}
		})
	}
}

func TestEngineAgainstDemoSites_Enrichment(t *testing.T) {
	t.Parallel()
	s := startSites(t)

	resp, err := newEngine(t, s).Scan(context.Background(), s.store.URL+"/dp/"+acme)
	if err != nil {
		t.Fatal(err)
	}
	if resp.History == nil || resp.History.Lowest != 11499 {
		t.Errorf("history = %+v", resp.History)
	}
	if len(resp.Competitors) != 2 {
		t.Fatalf("competitors = %+v", resp.Competitors)
	}
	want := map[string]scan.Price{"Flipkart": 12749, "Croma": 13490}
	for _, c := range resp.Competitors {
		if want[c.Site] != c.Price {
			t.Errorf("%s price = %v", c.Site, c.Price)
		}
		if !strings.HasPrefix(c.Link, "http://") {
			t.Errorf("%s link not absolute: %q", c.Site, c.Link)
		}
	}
}

package scan_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/raysh454/ziva/internal/scan"
)

func renderDoc(t *testing.T, resp *scan.ScanResponse) (*scan.Rendered, *goquery.Document) {
	t.Helper()
	out, err := scan.Render(resp)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(out.HTML)))
	if err != nil {
		t.Fatalf("parse rendered html: %v", err)
	}
	return out, doc
}

func TestClassify(t *testing.T) {
	t.Parallel()
	tests := []struct {
		verdict string
		class   string
		accent  string
		icon    string
		level   scan.Level
	}{
		{"✅ SAFE", scan.ClassSafe, string(scan.AccentSafe), scan.IconSafe, scan.LevelSafe},
		{"⚠️ SUSPICIOUS", scan.ClassScam, string(scan.AccentSuspicious), scan.IconWarning, scan.LevelSuspicious},
		{"🚨 HIGH RISK", scan.ClassScam, string(scan.AccentHighRisk), scan.IconWarning, scan.LevelHighRisk},
		{"", scan.ClassScam, string(scan.AccentSafe), scan.IconWarning, scan.LevelUnknown},
		{"safe", scan.ClassScam, string(scan.AccentSafe), scan.IconWarning, scan.LevelUnknown},
		{"⚠️ SUSPICIOUS: BLOCKED", scan.ClassScam, string(scan.AccentSuspicious), scan.IconWarning, scan.LevelSuspicious},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.verdict, func(t *testing.T) {
			t.Parallel()
			c := scan.Classify(tt.verdict)
			if c.Class != tt.class || string(c.Accent) != tt.accent || c.Icon != tt.icon || c.Level != tt.level {
				t.Errorf("Classify(%q) = %+v", tt.verdict, c)
			}
		})
	}
}

func TestRender_SafeHeader(t *testing.T) {
	t.Parallel()
	out, doc := renderDoc(t, &scan.ScanResponse{
		Verdict: "✅ SAFE",
		Reason:  "Listing verified",
		Product: "Acme Phone 5G",
	})

	if out.Class != scan.ClassSafe || !out.Safe() {
		t.Errorf("expected safe class, got %q", out.Class)
	}
	h3 := doc.Find(".verdict h3").Text()
	if !strings.Contains(h3, scan.IconSafe) || !strings.Contains(h3, "SAFE") {
		t.Errorf("unexpected header %q", h3)
	}
	if got := doc.Find(".product").Text(); got != "Acme Phone 5G" {
		t.Errorf("expected product line, got %q", got)
	}
	if got := doc.Find(".reason").Text(); got != "Listing verified" {
		t.Errorf("expected reason, got %q", got)
	}
	if doc.Find(".history").Length() != 0 || doc.Find(".market").Length() != 0 {
		t.Error("expected no history or market blocks")
	}
}

func TestRender_NonSafeAccents(t *testing.T) {
	t.Parallel()
	for verdict, accent := range map[string]string{
		"⚠️ SUSPICIOUS": string(scan.AccentSuspicious),
		"🚨 HIGH RISK":   string(scan.AccentHighRisk),
	} {
		out, doc := renderDoc(t, &scan.ScanResponse{Verdict: verdict})
		if out.Class != scan.ClassScam {
			t.Errorf("%s: expected scam class, got %q", verdict, out.Class)
		}
		style, _ := doc.Find(".verdict h3").Attr("style")
		if !strings.Contains(style, accent) {
			t.Errorf("%s: expected accent %s in %q", verdict, accent, style)
		}
		if !strings.Contains(doc.Find(".verdict h3").Text(), scan.IconWarning) {
			t.Errorf("%s: expected warning icon", verdict)
		}
	}
}

func TestRender_HistoryNewLowOverride(t *testing.T) {
	t.Parallel()
	_, doc := renderDoc(t, &scan.ScanResponse{
		Verdict:      "✅ SAFE",
		CurrentPrice: 450,
		History:      &scan.History{Lowest: 500, Average: 700},
	})

	lowest := doc.Find(".history-lowest")
	if got := lowest.Text(); got != "₹450" {
		t.Errorf("expected ₹450, got %q", got)
	}
	if !lowest.HasClass("new-low") {
		t.Error("expected new-low marker")
	}
	if got := doc.Find(".history-label").Text(); got != scan.LabelNewLow {
		t.Errorf("expected new low label, got %q", got)
	}
	if got := doc.Find(".history-average").Text(); got != "₹700" {
		t.Errorf("expected average ₹700, got %q", got)
	}
}

func TestRender_HistoryKeepsStoredLowest(t *testing.T) {
	t.Parallel()
	_, doc := renderDoc(t, &scan.ScanResponse{
		Verdict:      "✅ SAFE",
		CurrentPrice: 600,
		History:      &scan.History{Lowest: 500, Average: 700},
	})

	lowest := doc.Find(".history-lowest")
	if got := lowest.Text(); got != "₹500" {
		t.Errorf("expected ₹500, got %q", got)
	}
	if lowest.HasClass("new-low") {
		t.Error("did not expect new-low marker")
	}
	if got := doc.Find(".history-label").Text(); got != scan.LabelLowest {
		t.Errorf("expected lowest label, got %q", got)
	}
}

func TestRender_HistoryIgnoresMissingCurrentPrice(t *testing.T) {
	t.Parallel()
	_, doc := renderDoc(t, &scan.ScanResponse{
		History: &scan.History{Lowest: 500, Average: 700},
	})
	if got := doc.Find(".history-lowest").Text(); got != "₹500" {
		t.Errorf("expected stored lowest, got %q", got)
	}
}

func TestRender_HistoryHiddenWhenLowestZero(t *testing.T) {
	t.Parallel()
	_, doc := renderDoc(t, &scan.ScanResponse{
		CurrentPrice: 450,
		History:      &scan.History{Lowest: 0, Average: 700},
	})
	if doc.Find(".history").Length() != 0 {
		t.Error("expected history block to be hidden")
	}
}

func TestRender_CompetitorBetterDeal(t *testing.T) {
	t.Parallel()
	_, doc := renderDoc(t, &scan.ScanResponse{
		CurrentPrice: 350,
		Competitors:  []scan.Competitor{{Site: "A", Price: 300, Link: "#"}},
	})

	rows := doc.Find(".competitor")
	if rows.Length() != 1 {
		t.Fatalf("expected 1 competitor row, got %d", rows.Length())
	}
	if !rows.HasClass("better-deal") {
		t.Error("expected better-deal highlight")
	}
	if got := rows.Find(".competitor-site").Text(); got != "A" {
		t.Errorf("expected site A, got %q", got)
	}
	if got := rows.Find(".competitor-price").Text(); got != "₹300" {
		t.Errorf("expected ₹300, got %q", got)
	}
}

func TestRender_CompetitorNoHighlightWithoutCurrentPrice(t *testing.T) {
	t.Parallel()
	_, doc := renderDoc(t, &scan.ScanResponse{
		CurrentPrice: 0,
		Competitors: []scan.Competitor{
			{Site: "A", Price: 300, Link: "#"},
			{Site: "B", Price: 1, Link: "#"},
		},
	})
	if doc.Find(".competitor").Length() != 2 {
		t.Fatal("expected 2 rows")
	}
	if n := doc.Find(".better-deal").Length(); n != 0 {
		t.Errorf("expected no highlights, got %d", n)
	}
}

func TestRender_CompetitorEqualPriceIsNotBetter(t *testing.T) {
	t.Parallel()
	_, doc := renderDoc(t, &scan.ScanResponse{
		CurrentPrice: 300,
		Competitors:  []scan.Competitor{{Site: "A", Price: 300, Link: "#"}},
	})
	if doc.Find(".better-deal").Length() != 0 {
		t.Error("equal price must not be highlighted")
	}
}

func TestRender_BlockOrder(t *testing.T) {
	t.Parallel()
	out, err := scan.Render(&scan.ScanResponse{
		Verdict:      "✅ SAFE",
		CurrentPrice: 450,
		History:      &scan.History{Lowest: 500, Average: 700},
		Competitors:  []scan.Competitor{{Site: "A", Price: 300, Link: "https://a.example"}},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(out.HTML)
	header := strings.Index(html, `class="verdict"`)
	history := strings.Index(html, `class="history"`)
	market := strings.Index(html, `class="market"`)
	if !(header >= 0 && header < history && history < market) {
		t.Errorf("unexpected block order: header=%d history=%d market=%d", header, history, market)
	}
}

func TestRender_EscapesRemoteStrings(t *testing.T) {
	t.Parallel()
	_, doc := renderDoc(t, &scan.ScanResponse{
		Verdict: `<img src=x onerror=alert(1)>SAFE`,
		Reason:  `<script>alert("x")</script>`,
		Product: `<b>bold</b>`,
		Competitors: []scan.Competitor{
			{Site: `<i>evil</i>`, Price: 10, Link: `javascript:alert(1)`},
		},
	})

	if doc.Find("script").Length() != 0 || doc.Find("img").Length() != 0 ||
		doc.Find(".product b").Length() != 0 || doc.Find(".competitor-site i").Length() != 0 {
		t.Fatal("remote markup leaked into the panel")
	}
	if got := doc.Find(".reason").Text(); got != `<script>alert("x")</script>` {
		t.Errorf("expected reason as text, got %q", got)
	}
	href, _ := doc.Find(".competitor-link").Attr("href")
	if strings.HasPrefix(href, "javascript:") {
		t.Errorf("unsafe link survived: %q", href)
	}
}

func TestRenderer_PartialBlocks(t *testing.T) {
	t.Parallel()
	r := scan.NewRenderer("en")

	empty, err := r.RenderHistory(&scan.ScanResponse{})
	if err != nil || empty != "" {
		t.Errorf("expected empty history, got %q (%v)", empty, err)
	}
	market, err := r.RenderMarket(&scan.ScanResponse{Competitors: []scan.Competitor{{Site: "Croma", Price: 1299}}})
	if err != nil {
		t.Fatalf("RenderMarket: %v", err)
	}
	if !strings.Contains(string(market), "₹1,299") {
		t.Errorf("expected formatted price in %q", market)
	}
}

func TestFormatPrice(t *testing.T) {
	t.Parallel()
	cases := map[scan.Price]string{
		0:       "₹0",
		450:     "₹450",
		1234:    "₹1,234",
		1234567: "₹1,234,567",
	}
	for in, want := range cases {
		if got := scan.FormatPrice(in); got != want {
			t.Errorf("FormatPrice(%v) = %q, want %q", in, got, want)
		}
	}
}

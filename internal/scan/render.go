package scan

import (
	"bytes"
	"fmt"
	"html/template"
)

// Fixed panel messages. These are trusted markup.
const (
	LoadingMessage  template.HTML = `📡 <strong>CONNECTING:</strong> Sending link to Ziva Cloud Engine...<br><em>(This might take 10 seconds while we wake up the server)</em>`
	FailureMessage  template.HTML = `<strong>❌ SYSTEM ERROR</strong><br>Could not reach the Ziva Cloud Server.<br>It might be sleeping (Free Tier). Try again in 30 seconds.`
	TimeoutMessage  template.HTML = `<strong>⏱️ TIMED OUT</strong><br>The Ziva Cloud Server took too long to answer.<br>It might be waking up. Try again in 30 seconds.`
	CanceledMessage template.HTML = `<strong>⏹️ SCAN CANCELED</strong><br>The scan was stopped before the server answered.`
)

const (
	LabelLowest = "Lowest Ever:"
	LabelNewLow = "🔥 NEW RECORD LOW:"
)

const (
	accentNewLow    template.CSS = "#ffeb3b"
	dealStyle       template.CSS = "color: #28a745;"
	betterDealStyle template.CSS = "color: #ffc107; font-weight: bold; text-decoration: underline;"
)

const panelTemplates = `
{{define "header"}}<div class="verdict" style="border-left: 3px solid {{.Accent}}; padding-left: 10px;">
    <h3 style="margin: 0; color: {{.Accent}}; font-size: 14px;">{{.Icon}} {{.Verdict}}</h3>
    {{- if .Product}}
    <p class="product" style="margin: 4px 0 0; font-size: 12px; color: #333;"><strong>{{.Product}}</strong></p>
    {{- end}}
    <p class="reason" style="margin-top: 5px; font-size: 12px; color: #555; line-height: 1.4;">{{.Reason}}</p>
</div>{{end}}

{{define "history"}}<div class="history" style="margin-top: 8px; padding-top: 8px; border-top: 1px dashed #ccc;">
    <div style="font-size: 11px; color: #666; margin-bottom: 4px;"><strong>📉 PRICE HISTORY</strong></div>
    <div style="display: flex; justify-content: space-between; font-size: 12px; color: #333;">
        <span class="history-label">{{.Label}}</span>
        <span class="history-lowest{{if .NewLow}} new-low{{end}}" style="color: {{.Accent}}; font-weight: bold;">{{.Lowest}}</span>
    </div>
    <div style="display: flex; justify-content: space-between; font-size: 12px; color: #333;">
        <span>Average:</span>
        <span class="history-average">{{.Average}}</span>
    </div>
</div>{{end}}

{{define "market"}}<div class="market" style="margin-top: 10px; padding-top: 8px; border-top: 1px dashed #ccc;">
    <div style="font-size: 11px; color: #666; margin-bottom: 4px;"><strong>💰 MARKET SCANNER</strong></div>
    {{- range .}}
    <div class="competitor{{if .BetterDeal}} better-deal{{end}}" style="display: flex; justify-content: space-between; align-items: center; margin-bottom: 4px; font-size: 12px;">
        <span class="competitor-site" style="color: #333;">{{.Site}}</span>
        <div>
            <span class="competitor-price" style="{{.Style}}">{{.Price}}</span>
            <a class="competitor-link" href="{{.Link}}" target="_blank" rel="noopener noreferrer" style="margin-left: 5px; text-decoration: none; color: #0066cc;">↗</a>
        </div>
    </div>
    {{- end}}
</div>{{end}}

{{define "panel"}}{{template "header" .Header}}
{{if .History}}{{template "history" .History}}{{end}}
{{if .Market}}{{template "market" .Market}}{{end}}{{end}}
`

type headerView struct {
	Verdict string
	Product string
	Reason  string
	Icon    string
	Accent  template.CSS
}

type historyView struct {
	Label   string
	Lowest  string
	Average string
	Accent  template.CSS
	NewLow  bool
}

type competitorView struct {
	Site       string
	Price      string
	Link       string
	Style      template.CSS
	BetterDeal bool
}

type panelView struct {
	Header  headerView
	History *historyView
	Market  []competitorView
}

// Rendered is the outcome of rendering a ScanResponse.
type Rendered struct {
	Classification
	HTML template.HTML
}

// Renderer turns a ScanResponse into panel markup. Remote strings are always
// escaped; only the fixed structure above is trusted.
type Renderer struct {
	tmpl   *template.Template
	format *PriceFormatter
}

// NewRenderer builds a renderer formatting prices for locale.
func NewRenderer(locale string) *Renderer {
	return &Renderer{
		tmpl:   template.Must(template.New("scan").Parse(panelTemplates)),
		format: NewPriceFormatter(locale),
	}
}

var defaultRenderer = NewRenderer("en")

// Render renders resp with the English locale.
func Render(resp *ScanResponse) (*Rendered, error) {
	return defaultRenderer.Render(resp)
}

// Render classifies the verdict and composes header, history and market
// blocks in that order. It has no side effects.
func (r *Renderer) Render(resp *ScanResponse) (*Rendered, error) {
	if resp == nil {
		resp = &ScanResponse{}
	}
	c := Classify(resp.Verdict)
	view := panelView{
		Header: headerView{
			Verdict: resp.Verdict,
			Product: resp.Product,
			Reason:  resp.Reason,
			Icon:    c.Icon,
			Accent:  c.Accent,
		},
		History: r.historyView(resp),
		Market:  r.marketView(resp),
	}
	out, err := r.execute("panel", view)
	if err != nil {
		return nil, err
	}
	return &Rendered{Classification: c, HTML: out}, nil
}

// RenderHistory renders only the price history block, or "" when the
// response has no usable history.
func (r *Renderer) RenderHistory(resp *ScanResponse) (template.HTML, error) {
	v := r.historyView(resp)
	if v == nil {
		return "", nil
	}
	return r.execute("history", v)
}

// RenderMarket renders only the competitor block, or "" when there are no
// competitors.
func (r *Renderer) RenderMarket(resp *ScanResponse) (template.HTML, error) {
	v := r.marketView(resp)
	if len(v) == 0 {
		return "", nil
	}
	return r.execute("market", v)
}

// historyView applies the fresher-reading override: a positive current price
// below the stored lowest is displayed as the new low. The stored history is
// left untouched.
func (r *Renderer) historyView(resp *ScanResponse) *historyView {
	if resp == nil || resp.History == nil || resp.History.Lowest == 0 {
		return nil
	}
	current := resp.Current()
	v := &historyView{
		Label:   LabelLowest,
		Lowest:  r.format.Format(resp.History.Lowest),
		Average: r.format.Format(resp.History.Average),
		Accent:  AccentSafe,
	}
	if current > 0 && current < resp.History.Lowest {
		v.Label = LabelNewLow
		v.Lowest = r.format.Format(current)
		v.Accent = accentNewLow
		v.NewLow = true
	}
	return v
}

func (r *Renderer) marketView(resp *ScanResponse) []competitorView {
	if resp == nil || len(resp.Competitors) == 0 {
		return nil
	}
	current := resp.Current()
	rows := make([]competitorView, 0, len(resp.Competitors))
	for _, comp := range resp.Competitors {
		row := competitorView{
			Site:  comp.Site,
			Price: r.format.Format(comp.Price),
			Link:  comp.Link,
			Style: dealStyle,
		}
		if IsBetterDeal(comp.Price, current) {
			row.Style = betterDealStyle
			row.BetterDeal = true
		}
		rows = append(rows, row)
	}
	return rows
}

// IsBetterDeal reports whether a competitor price undercuts the current
// price. A missing (zero) current price never produces a better deal.
func IsBetterDeal(competitor, current Price) bool {
	return current > 0 && competitor < current
}

func (r *Renderer) execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

package server

import (
	"html/template"
	"net/http"
	"sync"

	"github.com/raysh454/ziva/internal/logging"
	"github.com/raysh454/ziva/internal/scan"
)

var appPage = template.Must(template.New("app").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Ziva: Check Trust</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 420px; margin: 24px auto; padding: 0 12px; color: #222; }
input { width: 100%; padding: 8px; box-sizing: border-box; }
button { margin-top: 8px; width: 100%; padding: 8px; background: #0d1117; color: #fff; border: 0; border-radius: 4px; }
button:disabled { opacity: .6; }
#result-box { margin-top: 12px; padding: 10px; border-radius: 6px; background: #f6f8fa; }
#result-box.safe { background: #e8f7ec; }
#result-box.scam { background: #fdecea; }
.alert { color: #f85149; font-size: 13px; }
</style>
</head>
<body>
<h2>🛡️ Ziva</h2>
<form method="post" action="/app">
    <input id="userInput" name="url" type="text" placeholder="Paste a product link" value="{{.Input}}">
    <button type="submit"{{if .Disabled}} disabled{{end}}>{{.Caption}}</button>
</form>
{{- range .Alerts}}
<p class="alert">{{.}}</p>
{{- end}}
<div id="result-box"{{if .Class}} class="{{.Class}}"{{end}}{{if not .Visible}} style="display: none;"{{end}}>{{.Content}}</div>
</body>
</html>
`))

// pageUI is a Panel, Trigger and Notifier that collects state for one
// server-rendered page.
type pageUI struct {
	mu       sync.Mutex
	Input    string
	Visible  bool
	Class    string
	Content  template.HTML
	Disabled bool
	Caption  string
	Alerts   []string
}

func newPageUI(input string) *pageUI {
	return &pageUI{Input: input, Caption: scan.CaptionIdle}
}

func (p *pageUI) Value() string { return p.Input }

func (p *pageUI) Show() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Visible = true
}

func (p *pageUI) SetClass(class string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Class = class
}

func (p *pageUI) SetContent(html template.HTML) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Content = html
}

func (p *pageUI) Disable(caption string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Disabled = true
	p.Caption = caption
}

func (p *pageUI) Enable(caption string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Disabled = false
	p.Caption = caption
}

func (p *pageUI) Alert(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Alerts = append(p.Alerts, msg)
}

func (p *pageUI) ui() scan.UI {
	return scan.UI{Input: p, Panel: p, Trigger: p, Notifier: p}
}

func (s *Server) renderPage(w http.ResponseWriter, status int, page *pageUI) {
	page.mu.Lock()
	defer page.mu.Unlock()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := appPage.Execute(w, page); err != nil {
		s.logger.Warn("rendering app page", logging.Field{Key: "error", Value: err.Error()})
	}
}

// handleAppPage godoc
// @Summary Scan page
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router /app [get]
func (s *Server) handleAppPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, newPageUI(r.URL.Query().Get("url")))
}

// handleAppScan godoc
// @Summary Scan a link from the page form
// @Accept x-www-form-urlencoded
// @Produce html
// @Param url formData string true "Product link"
// @Success 200 {string} string "HTML page with the result panel"
// @Router /app [post]
func (s *Server) handleAppScan(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	page := newPageUI(r.PostForm.Get("url"))

	o, err := scan.NewOrchestrator(s.cfg.Scan, s.deps.Client, page.ui(), s.logger)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// Failures are already on the panel.
	_, _ = o.Run(r.Context())
	s.renderPage(w, http.StatusOK, page)
}

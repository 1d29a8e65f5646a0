// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/raysh454/ziva/internal/logging"
	"github.com/raysh454/ziva/internal/scan"
	"github.com/raysh454/ziva/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// ErrorCount returns how many errors were logged.
func (l *DummyLogger) ErrorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Errors)
}

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyPage is a canned response for DummyWebClient.
type DummyPage struct {
	Status int
	Body   string
}

// DummyWebClient implements webclient.WebClient.
// Pages are looked up by exact URL, then by the longest registered prefix.
// Unknown URLs return body "ok:<url>" with status 200.
// Set FailURLs[url] = true to force an error for a specific URL.
type DummyWebClient struct {
	ResponseDelay time.Duration
	Pages         map[string]DummyPage
	FailURLs      map[string]bool
	mu            sync.Mutex
	Requests      []*webclient.Request
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.FailURLs != nil && d.FailURLs[req.URL] {
		return nil, &errString{"dummy fetch fail for " + req.URL}
	}

	page, ok := d.lookup(req.URL)
	if !ok {
		page = DummyPage{Status: http.StatusOK, Body: "ok:" + req.URL}
	}
	if page.Status == 0 {
		page.Status = http.StatusOK
	}

	return &webclient.Response{
		Request:    req,
		Body:       []byte(page.Body),
		Headers:    http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
		StatusCode: page.Status,
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) lookup(url string) (DummyPage, bool) {
	if p, ok := d.Pages[url]; ok {
		return p, true
	}
	best := ""
	for prefix := range d.Pages {
		if strings.HasPrefix(url, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return DummyPage{}, false
	}
	return d.Pages[best], true
}

func (d *DummyWebClient) Get(ctx context.Context, url string) (*webclient.Response, error) {
	return d.Do(ctx, &webclient.Request{Method: "GET", URL: url})
}

func (d *DummyWebClient) Close() error { return nil }

// RequestedURLs returns the URLs requested so far, in order.
func (d *DummyWebClient) RequestedURLs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.Requests))
	for _, r := range d.Requests {
		out = append(out, r.URL)
	}
	return out
}

// ─── UI ────────────────────────────────────────────────────────────────

// UIEvent is one call made by the orchestrator on a RecordingUI.
type UIEvent struct {
	Kind  string // show | class | content | disable | enable | alert
	Value string
}

// RecordingUI implements scan.Panel, scan.Trigger and scan.Notifier and
// records every call.
type RecordingUI struct {
	mu       sync.Mutex
	events   []UIEvent
	visible  bool
	class    string
	content  template.HTML
	disabled bool
	caption  string
	alerts   []string
	enables  int
	disables int

	// OnDisable runs after the trigger is disabled.
	OnDisable func()
}

// NewRecordingUI returns a hidden panel and an enabled trigger.
func NewRecordingUI() *RecordingUI {
	return &RecordingUI{caption: scan.CaptionIdle}
}

// UI bundles the recorder with a static input value.
func (r *RecordingUI) UI(input string) scan.UI {
	return scan.UI{Input: scan.StaticInput(input), Panel: r, Trigger: r, Notifier: r}
}

func (r *RecordingUI) record(kind, value string) {
	r.events = append(r.events, UIEvent{Kind: kind, Value: value})
}

func (r *RecordingUI) Show() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visible = true
	r.record("show", "")
}

func (r *RecordingUI) SetClass(class string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.class = class
	r.record("class", class)
}

func (r *RecordingUI) SetContent(html template.HTML) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content = html
	r.record("content", string(html))
}

func (r *RecordingUI) Disable(caption string) {
	r.mu.Lock()
	r.disabled = true
	r.caption = caption
	r.disables++
	r.record("disable", caption)
	hook := r.OnDisable
	r.mu.Unlock()
	if hook != nil {
		hook()
	}
}

func (r *RecordingUI) Enable(caption string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disabled = false
	r.caption = caption
	r.enables++
	r.record("enable", caption)
}

func (r *RecordingUI) Alert(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, msg)
	r.record("alert", msg)
}

// UIState is a snapshot of a RecordingUI.
type UIState struct {
	Visible  bool
	Class    string
	Content  template.HTML
	Disabled bool
	Caption  string
	Alerts   []string
	Enables  int
	Disables int
	Events   []UIEvent
}

// State returns a copy of the current UI state.
func (r *RecordingUI) State() UIState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return UIState{
		Visible:  r.visible,
		Class:    r.class,
		Content:  r.content,
		Disabled: r.disabled,
		Caption:  r.caption,
		Alerts:   append([]string(nil), r.alerts...),
		Enables:  r.enables,
		Disables: r.disables,
		Events:   append([]UIEvent(nil), r.events...),
	}
}

type errString struct{ s string }

func (e *errString) Error() string { return e.s }

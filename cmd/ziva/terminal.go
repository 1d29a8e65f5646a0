package main

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/raysh454/ziva/internal/engine"
	"github.com/raysh454/ziva/internal/scan"
)

type styles struct {
	neutral *color.Color
	safe    *color.Color
	scam    *color.Color
	caption *color.Color
	alert   *color.Color
	heading *color.Color
	dim     *color.Color
}

func newStyles() styles {
	return styles{
		neutral: color.New(color.FgHiCyan),
		safe:    color.New(color.Bold, color.FgHiGreen),
		scam:    color.New(color.Bold, color.FgHiRed),
		caption: color.New(color.Faint),
		alert:   color.New(color.Bold, color.FgYellow),
		heading: color.New(color.Bold, color.FgHiWhite),
		dim:     color.New(color.FgHiBlack),
	}
}

// terminalUI drives a scan orchestrator from the command line. The panel
// markup is flattened to text and colored by the panel class.
type terminalUI struct {
	out    io.Writer
	link   string
	styles styles

	mu    sync.Mutex
	class string
	html  template.HTML
}

func newTerminalUI(out io.Writer, link string) *terminalUI {
	return &terminalUI{out: out, link: link, styles: newStyles()}
}

func (t *terminalUI) UI() scan.UI {
	return scan.UI{Input: t, Panel: t, Trigger: t, Notifier: t}
}

func (t *terminalUI) Value() string { return t.link }

func (t *terminalUI) Show() {}

func (t *terminalUI) SetClass(class string) {
	t.mu.Lock()
	t.class = class
	t.mu.Unlock()
}

func (t *terminalUI) SetContent(html template.HTML) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.html = html

	c := t.styles.neutral
	switch t.class {
	case scan.ClassSafe:
		c = t.styles.safe
	case scan.ClassScam:
		c = t.styles.scam
	}
	lines := panelLines(html)
	if len(lines) == 0 {
		return
	}
	c.Fprintln(t.out, lines[0])
	for _, line := range lines[1:] {
		fmt.Fprintln(t.out, "  "+line)
	}
}

func (t *terminalUI) Disable(caption string) {
	t.styles.caption.Fprintln(t.out, caption)
}

func (t *terminalUI) Enable(string) {}

func (t *terminalUI) Alert(msg string) {
	t.styles.alert.Fprintln(t.out, msg)
}

// Panel returns the last panel class and markup.
func (t *terminalUI) Panel() (string, template.HTML) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.class, t.html
}

// panelLines flattens panel markup into its non-empty text lines.
func panelLines(html template.HTML) []string {
	text, err := engine.InnerText([]byte(html))
	if err != nil {
		return []string{string(html)}
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

const panelPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Ziva scan</title></head>
<body>
<div id="result-box" class="{{.Class}}">{{.HTML}}</div>
</body>
</html>
`

var panelPageTmpl = template.Must(template.New("panel").Parse(panelPage))

// writePanelPage writes the panel as a standalone HTML page.
func writePanelPage(w io.Writer, class string, html template.HTML) error {
	return panelPageTmpl.Execute(w, struct {
		Class string
		HTML  template.HTML
	}{class, html})
}

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/raysh454/ziva/internal/logging"
	"github.com/raysh454/ziva/internal/scan"
	"github.com/raysh454/ziva/internal/store"
	"github.com/raysh454/ziva/internal/utils"
)

const link = "https://www.amazon.in/Acme-Phone/dp/B0ACME5G01?tag=deals-21"

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// useConfig writes a config rooted in a temp dir and points --config at it.
func useConfig(t *testing.T, endpoint string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ziva.yaml")
	body := fmt.Sprintf("storage_root: %q\nendpoint: %q\nlog_level: error\n", dir, endpoint)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	configPath = path
	logLevel = ""
	t.Cleanup(func() { configPath = "" })
	return dir
}

func newCommand() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetErr(io.Discard)
	return cmd, &buf
}

func TestTerminalUI_Verdict(t *testing.T) {
	var buf bytes.Buffer
	ui := newTerminalUI(&buf, link)
	client := scan.ClientFunc(func(ctx context.Context, req *scan.ScanRequest) (*scan.ScanResponse, error) {
		if req.URL != link {
			t.Errorf("request url = %q", req.URL)
		}
		return &scan.ScanResponse{Verdict: "✅ SAFE", Reason: "Listing verified.", Price: 1299}, nil
	})
	orch, err := scan.NewOrchestrator(scan.DefaultConfig(), client, ui.UI(), logging.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := orch.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"CONNECTING", scan.CaptionWorking, "SAFE", "Listing verified."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if class, _ := ui.Panel(); class != scan.ClassSafe {
		t.Errorf("class = %q, want safe", class)
	}
}

func TestTerminalUI_EmptyInput(t *testing.T) {
	var buf bytes.Buffer
	ui := newTerminalUI(&buf, "   ")
	client := scan.ClientFunc(func(context.Context, *scan.ScanRequest) (*scan.ScanResponse, error) {
		t.Error("client called for empty input")
		return nil, nil
	})
	orch, err := scan.NewOrchestrator(scan.DefaultConfig(), client, ui.UI(), logging.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := orch.Run(context.Background()); !errors.Is(err, scan.ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
	if got := strings.TrimSpace(buf.String()); got != scan.AlertEmptyInput {
		t.Errorf("output = %q", got)
	}
}

func TestPanelLines(t *testing.T) {
	got := panelLines(`<div><h3>✅ SAFE</h3><p>Fine <b>deal</b></p></div>`)
	want := []string{"✅ SAFE", "Fine deal"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("panelLines = %q, want %q", got, want)
	}
}

func TestRunScan_RemoteEndpoint(t *testing.T) {
	engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"verdict":"🚨 HIGH RISK","reason":"Flipkart sells it for less","price":"₹28,685"}`)
	}))
	defer engine.Close()

	dir := useConfig(t, engine.URL+"/scan")
	scanEndpoint, scanTimeout = "", 0
	scanHTMLPath = filepath.Join(dir, "panel.html")
	t.Cleanup(func() { scanHTMLPath = "" })

	cmd, buf := newCommand()
	if err := runScan(cmd, []string{link}); err != nil {
		t.Fatalf("runScan: %v", err)
	}
	if !strings.Contains(buf.String(), "HIGH RISK") {
		t.Errorf("output missing verdict:\n%s", buf.String())
	}

	page, err := os.ReadFile(scanHTMLPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(page), `id="result-box" class="scam"`) {
		t.Errorf("panel page missing scam result box:\n%s", page)
	}
}

func TestRunScan_EngineDown(t *testing.T) {
	engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "sleeping", http.StatusBadGateway)
	}))
	defer engine.Close()

	useConfig(t, engine.URL)
	scanEndpoint, scanTimeout, scanHTMLPath = "", 0, ""

	cmd, buf := newCommand()
	if err := runScan(cmd, []string{link}); err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(buf.String(), "SYSTEM ERROR") {
		t.Errorf("output missing failure message:\n%s", buf.String())
	}
}

func TestRunHistory(t *testing.T) {
	dir := useConfig(t, "local")
	historyLimit = 20

	cfg := store.DefaultConfig()
	cfg.StoragePath = dir
	st, err := store.Open(cfg, logging.Nop())
	if err != nil {
		t.Fatal(err)
	}
	key, err := utils.ProductKey(link)
	if err != nil {
		t.Fatal(err)
	}
	for _, price := range []scan.Price{1299, 1199, 1399} {
		if _, err := st.RecordObservation(context.Background(), store.Observation{
			ProductKey: key, URL: link, Title: "Acme Phone 5G", Price: price, Source: "test",
		}); err != nil {
			t.Fatal(err)
		}
	}
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	cmd, buf := newCommand()
	if err := runHistory(cmd, []string{link}); err != nil {
		t.Fatalf("runHistory: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"amazon:B0ACME5G01", "Lowest:  ₹1,199", "Average: ₹1,299", "Seen 3 times"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunHistory_NothingRecorded(t *testing.T) {
	useConfig(t, "local")

	cmd, buf := newCommand()
	if err := runHistory(cmd, []string{link}); err != nil {
		t.Fatalf("runHistory: %v", err)
	}
	if !strings.Contains(buf.String(), "No prices recorded") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRunHistory_InvalidLink(t *testing.T) {
	cmd, _ := newCommand()
	if err := runHistory(cmd, []string{"   "}); err == nil {
		t.Fatal("expected error for blank link")
	}
}

func TestRunScans_Empty(t *testing.T) {
	useConfig(t, "local")
	scansLimit = 20

	cmd, buf := newCommand()
	if err := runScans(cmd, nil); err != nil {
		t.Fatalf("runScans: %v", err)
	}
	if !strings.Contains(buf.String(), "No scans recorded yet") {
		t.Errorf("output = %q", buf.String())
	}
}

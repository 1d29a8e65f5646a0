package scan_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/raysh454/ziva/internal/logging"
	"github.com/raysh454/ziva/internal/scan"
	"github.com/raysh454/ziva/internal/webclient"
)

func newRemote(t *testing.T, endpoint string) *scan.RemoteClient {
	t.Helper()
	wc, err := webclient.NewNetHTTPClient(webclient.DefaultConfig(), logging.Nop(), nil)
	if err != nil {
		t.Fatalf("NewNetHTTPClient: %v", err)
	}
	t.Cleanup(func() { _ = wc.Close() })
	c, err := scan.NewRemoteClient(endpoint, wc, logging.Nop())
	if err != nil {
		t.Fatalf("NewRemoteClient: %v", err)
	}
	return c
}

func TestRemoteClient_PostsJSON(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		var req scan.ScanRequest
		if err := json.Unmarshal(body, &req); err != nil || req.URL != "https://amzn.in/d/x" {
			t.Errorf("unexpected body %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"verdict":"✅ SAFE","reason":"ok","current_price":999,"competitors":[{"site":"Croma","price":950,"link":"https://www.croma.com/p"}]}`))
	}))
	defer ts.Close()

	resp, err := newRemote(t, ts.URL).Scan(context.Background(), &scan.ScanRequest{URL: "https://amzn.in/d/x"})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if resp.Verdict != "✅ SAFE" || resp.Current() != 999 || len(resp.Competitors) != 1 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestRemoteClient_NonSuccessStatusIsError(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"verdict":"✅ SAFE"}`))
	}))
	defer ts.Close()

	_, err := newRemote(t, ts.URL).Scan(context.Background(), &scan.ScanRequest{URL: "x"})
	if !errors.Is(err, scan.ErrRemoteStatus) {
		t.Fatalf("expected ErrRemoteStatus, got %v", err)
	}
}

func TestRemoteClient_InvalidJSONIsError(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>sleeping</html>`))
	}))
	defer ts.Close()

	if _, err := newRemote(t, ts.URL).Scan(context.Background(), &scan.ScanRequest{URL: "x"}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestRemoteClient_DefaultsEndpoint(t *testing.T) {
	t.Parallel()
	c := newRemote(t, "  ")
	if c.Endpoint() != scan.DefaultEndpoint {
		t.Errorf("expected default endpoint, got %q", c.Endpoint())
	}
	if _, err := scan.NewRemoteClient("x", nil, nil); err == nil {
		t.Error("expected error for nil webclient")
	}
}

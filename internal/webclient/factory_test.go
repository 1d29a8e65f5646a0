package webclient_test

import (
	"context"
	"testing"

	"github.com/raysh454/ziva/internal/logging"
	"github.com/raysh454/ziva/internal/webclient"
)

// TestNewWebClient_DefaultBackend verifies that empty backend defaults to nethttp
func TestNewWebClient_DefaultBackend(t *testing.T) {
	t.Parallel()
	client, err := webclient.NewWebClient(webclient.Config{}, logging.Nop())
	if err != nil {
		t.Fatalf("Failed to create default client: %v", err)
	}
	defer client.Close()

	if _, ok := client.(*webclient.NetHTTPClient); !ok {
		t.Fatalf("expected *NetHTTPClient, got %T", client)
	}
}

// TestNewWebClient_UnknownBackend verifies that unknown backend returns error
func TestNewWebClient_UnknownBackend(t *testing.T) {
	t.Parallel()
	client, err := webclient.NewWebClient(webclient.Config{Client: "unknown"}, logging.Nop())
	if err == nil {
		t.Fatal("Expected error for unknown backend, got nil")
	}
	if client != nil {
		t.Fatal("Expected nil client for unknown backend")
	}
}

type stubClient struct{}

func (stubClient) Do(context.Context, *webclient.Request) (*webclient.Response, error) {
	return &webclient.Response{StatusCode: 204}, nil
}
func (s stubClient) Get(ctx context.Context, url string) (*webclient.Response, error) {
	return s.Do(ctx, &webclient.Request{URL: url})
}
func (stubClient) Close() error { return nil }

func TestRegisterBackend_CustomIsListedAndBuilt(t *testing.T) {
	t.Parallel()
	webclient.RegisterBackend("Stub-Test", func(webclient.Config, logging.Logger) (webclient.WebClient, error) {
		return stubClient{}, nil
	})

	found := false
	for _, name := range webclient.ListBackends() {
		if name == "stub-test" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected stub-test in %v", webclient.ListBackends())
	}

	client, err := webclient.NewWebClient(webclient.Config{Client: "STUB-TEST"}, nil)
	if err != nil {
		t.Fatalf("NewWebClient: %v", err)
	}
	resp, _ := client.Get(context.Background(), "http://x")
	if resp.StatusCode != 204 {
		t.Errorf("expected stub response, got %d", resp.StatusCode)
	}
}

package scan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/raysh454/ziva/internal/logging"
	"github.com/raysh454/ziva/internal/webclient"
)

// DefaultEndpoint is the hosted trust engine.
const DefaultEndpoint = "https://ziva-brain.onrender.com/scan"

// ErrRemoteStatus is returned when the endpoint answers with a non-2xx status.
var ErrRemoteStatus = errors.New("scan endpoint returned an error status")

// Client performs one scan call.
type Client interface {
	Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, req *ScanRequest) (*ScanResponse, error)

func (f ClientFunc) Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error) {
	return f(ctx, req)
}

// RemoteClient POSTs scan requests as JSON to a trust engine endpoint.
type RemoteClient struct {
	endpoint string
	wc       webclient.WebClient
	logger   logging.Logger
}

var _ Client = (*RemoteClient)(nil)

// NewRemoteClient returns a client for endpoint; an empty endpoint means
// DefaultEndpoint.
func NewRemoteClient(endpoint string, wc webclient.WebClient, logger logging.Logger) (*RemoteClient, error) {
	if wc == nil {
		return nil, errors.New("scan: nil webclient")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &RemoteClient{
		endpoint: endpoint,
		wc:       wc,
		logger:   logger.With(logging.Field{Key: "component", Value: "scan_client"}),
	}, nil
}

// Endpoint returns the URL requests are sent to.
func (c *RemoteClient) Endpoint() string { return c.endpoint }

func (c *RemoteClient) Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error) {
	if req == nil {
		return nil, errors.New("scan: nil request")
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode scan request: %w", err)
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")

	resp, err := c.wc.Do(ctx, &webclient.Request{
		Method:  http.MethodPost,
		URL:     c.endpoint,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		return nil, fmt.Errorf("post scan: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: %d", ErrRemoteStatus, resp.StatusCode)
	}

	var out ScanResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("decode scan response: %w", err)
	}
	c.logger.Debug("scan response received",
		logging.Field{Key: "url", Value: req.URL},
		logging.Field{Key: "verdict", Value: out.Verdict})
	return &out, nil
}

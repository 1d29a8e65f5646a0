package server

import "github.com/raysh454/ziva/internal/store"

// ScanRequestBody is the payload of POST /scan.
type ScanRequestBody struct {
	URL string `json:"url" example:"https://www.amazon.in/dp/B0ABCDEF12"`
}

// HistoryResponse lists stored prices for one product.
type HistoryResponse struct {
	ProductKey   string              `json:"product_key" example:"amazon:B0ABCDEF12"`
	Stats        *store.Stats        `json:"stats"`
	Observations []store.Observation `json:"observations"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"No URL provided"`
}

// SocketMessage is sent by websocket clients. Action is "scan" (default)
// or "cancel".
type SocketMessage struct {
	Action string `json:"action,omitempty"`
	URL    string `json:"url"`
}

// PanelEvent is streamed to websocket clients as the scan progresses.
//
// Types: show, class, content, trigger, alert, done, error.
type PanelEvent struct {
	Session  string `json:"session"`
	Type     string `json:"type"`
	Class    string `json:"class,omitempty"`
	HTML     string `json:"html,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Message  string `json:"message,omitempty"`
	Verdict  string `json:"verdict,omitempty"`
}

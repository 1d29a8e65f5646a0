package webclient

import "time"

type Client string

const (
	ClientNetHTTP  Client = "nethttp"
	ClientChromedp Client = "chromedp"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config selects and tunes a WebClient backend.
type Config struct {
	Client Client `yaml:"client"`

	// Timeout bounds a single nethttp request. Zero means 30s.
	Timeout time.Duration `yaml:"timeout"`

	// UserAgent overrides DefaultUserAgent.
	UserAgent string `yaml:"user_agent"`

	// IdleAfter is how long the network must stay quiet before a chromedp
	// page is considered rendered. Zero means 2s.
	IdleAfter time.Duration `yaml:"idle_after"`

	// ShowBrowser runs chromedp with a visible window.
	ShowBrowser bool `yaml:"show_browser"`
}

// DefaultConfig returns the nethttp backend with a 30 second timeout.
func DefaultConfig() Config {
	return Config{
		Client:    ClientNetHTTP,
		Timeout:   30 * time.Second,
		UserAgent: DefaultUserAgent,
		IdleAfter: 2 * time.Second,
	}
}

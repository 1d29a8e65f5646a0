package demoserver

import (
	"fmt"
	"net"
	"strconv"
)

// Config holds configuration for the demo storefront. Each imitated site
// listens on its own port because the engine resolves absolute paths
// against a site's root.
type Config struct {
	// Host is the interface all sites bind to.
	Host string `yaml:"host"`

	// StorePort serves the listings and the control panel.
	StorePort int `yaml:"store_port"`

	// HistoryPort, FlipkartPort and CromaPort serve the enrichment sites.
	HistoryPort  int `yaml:"history_port"`
	FlipkartPort int `yaml:"flipkart_port"`
	CromaPort    int `yaml:"croma_port"`

	// InitialScenario is the scenario every product starts in.
	InitialScenario string `yaml:"initial_scenario"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "127.0.0.1",
		StorePort:       9999,
		HistoryPort:     9998,
		FlipkartPort:    9997,
		CromaPort:       9996,
		InitialScenario: ScenarioFair,
	}
}

func (c Config) addr(port int) string {
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

func (c Config) baseURL(port int) string {
	return fmt.Sprintf("http://%s", c.addr(port))
}

// StoreURL is the storefront root.
func (c Config) StoreURL() string { return c.baseURL(c.StorePort) }

// HistoryURL is the price history site root.
func (c Config) HistoryURL() string { return c.baseURL(c.HistoryPort) }

// FlipkartURL is the Flipkart imitation root.
func (c Config) FlipkartURL() string { return c.baseURL(c.FlipkartPort) }

// CromaURL is the Croma imitation root.
func (c Config) CromaURL() string { return c.baseURL(c.CromaPort) }

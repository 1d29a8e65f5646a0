package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/raysh454/ziva/internal/engine"
	"github.com/raysh454/ziva/internal/scan"
	"github.com/raysh454/ziva/internal/server"
	"github.com/raysh454/ziva/internal/store"
	"github.com/raysh454/ziva/internal/utils"
	"github.com/raysh454/ziva/internal/webclient"
)

// EndpointLocal runs scans in process instead of calling a remote engine.
const EndpointLocal = "local"

// Config aggregates the configuration of every component.
type Config struct {
	Server server.Config `yaml:"server"`

	// StorageRoot is where the database lives. "~" is expanded.
	StorageRoot string `yaml:"storage_root"`

	Store  store.Config  `yaml:"store"`
	Engine engine.Config `yaml:"engine"`

	// WebClient fetches listings and talks to remote endpoints.
	WebClient webclient.Config `yaml:"webclient"`

	// Renderer fetches the history and market sites, which build their
	// results with scripts.
	Renderer webclient.Config `yaml:"renderer"`

	// Endpoint is the trust engine the CLI scan talks to, or EndpointLocal.
	Endpoint string `yaml:"endpoint"`

	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	renderer := webclient.DefaultConfig()
	renderer.Client = webclient.ClientChromedp

	return &Config{
		Server:      server.DefaultConfig(),
		StorageRoot: "~/.ziva",
		Store:       store.DefaultConfig(),
		Engine:      engine.DefaultConfig(),
		WebClient:   webclient.DefaultConfig(),
		Renderer:    renderer,
		Endpoint:    scan.DefaultEndpoint,
		LogLevel:    "info",
	}
}

// LoadConfig starts from DefaultConfig, overlays the YAML file at path (if
// path is not empty) and then the ZIVA_* environment variables.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(utils.ExpandHome(path))
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.StorageRoot = utils.ExpandHome(cfg.StorageRoot)
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v := getenv("ZIVA_LISTEN_ADDR"); v != "" {
		c.Server.ListenAddr = v
	}
	if v := getenv("ZIVA_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := getenv("ZIVA_STORAGE_ROOT"); v != "" {
		c.StorageRoot = v
	}
	if v := getenv("ZIVA_WEBCLIENT"); v != "" {
		c.WebClient.Client = webclient.Client(v)
	}
	if v := getenv("ZIVA_RENDERER"); v != "" {
		c.Renderer.Client = webclient.Client(v)
	}
	if v := getenv("ZIVA_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("ZIVA_SCAN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ZIVA_SCAN_TIMEOUT: %w", err)
		}
		c.Server.Scan.Timeout = d
	}
	return nil
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// Validate reports settings no component can run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Scan.Timeout < 0 {
		errs = append(errs, errors.New("scan timeout must not be negative"))
	}
	if p := c.Engine.Policy; p.InflatedRatio < 0 || p.UndercutRatio < 0 || p.UndercutRatio >= 1 {
		errs = append(errs, fmt.Errorf("policy ratios out of range: inflated=%v undercut=%v", p.InflatedRatio, p.UndercutRatio))
	}
	known := map[string]bool{}
	for _, b := range webclient.ListBackends() {
		known[b] = true
	}
	for _, wc := range []webclient.Config{c.WebClient, c.Renderer} {
		if name := strings.ToLower(string(wc.Client)); name != "" && !known[name] {
			errs = append(errs, fmt.Errorf("unknown webclient backend %q", wc.Client))
		}
	}
	return errors.Join(errs...)
}

// StoreConfig is the store configuration rooted at StorageRoot.
func (c *Config) StoreConfig() store.Config {
	sc := c.Store
	sc.StoragePath = utils.ExpandHome(c.StorageRoot)
	return sc
}

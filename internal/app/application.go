package app

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/raysh454/ziva/internal/engine"
	"github.com/raysh454/ziva/internal/logging"
	"github.com/raysh454/ziva/internal/scan"
	"github.com/raysh454/ziva/internal/server"
	"github.com/raysh454/ziva/internal/store"
	"github.com/raysh454/ziva/internal/webclient"
)

// Application is the runtime state container. It owns the store, the web
// clients and the engine, and hands them to the server or the CLI.
type Application struct {
	Config *Config
	Logger logging.Logger

	Store    *store.Store
	Pages    webclient.WebClient
	Renderer webclient.WebClient
	Engine   *engine.Engine

	// remote carries scan requests to a remote engine. It has no client
	// timeout; the orchestrator's deadline bounds each call.
	remote webclient.WebClient
}

// NewLogger returns the JSON-lines logger at the configured level.
func NewLogger(cfg *Config, w io.Writer) logging.Logger {
	if w == nil {
		w = os.Stderr
	}
	return logging.NewLogger(w, "ziva", logging.ParseLevel(cfg.LogLevel))
}

// NewApplication opens the store and builds the engine. Close releases
// everything it opened, also when construction fails halfway.
func NewApplication(cfg *Config, logger logging.Logger) (*Application, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = NewLogger(cfg, nil)
	}
	a := &Application{Config: cfg, Logger: logger}

	var err error
	if a.Store, err = store.Open(cfg.StoreConfig(), logger); err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if a.Pages, err = webclient.NewWebClient(cfg.WebClient, logger); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("creating page webclient: %w", err)
	}
	if a.Renderer, err = webclient.NewWebClient(cfg.Renderer, logger); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("creating renderer webclient: %w", err)
	}
	remote, err := webclient.NewNetHTTPClient(cfg.WebClient, logger, &http.Client{})
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("creating endpoint webclient: %w", err)
	}
	a.remote = remote
	if a.Engine, err = engine.NewDefault(cfg.Engine, a.Pages, a.Renderer, a.Store, logger); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("creating engine: %w", err)
	}

	logger.Info("application ready",
		logging.Field{Key: "storage_root", Value: cfg.StorageRoot},
		logging.Field{Key: "webclient", Value: string(cfg.WebClient.Client)},
		logging.Field{Key: "renderer", Value: string(cfg.Renderer.Client)})
	return a, nil
}

// ScanClient is the client the CLI orchestrator uses: the in-process engine
// for EndpointLocal, otherwise the configured remote endpoint.
func (a *Application) ScanClient() (scan.Client, error) {
	endpoint := strings.TrimSpace(a.Config.Endpoint)
	if strings.EqualFold(endpoint, EndpointLocal) {
		return a.Engine.Client(), nil
	}
	return scan.NewRemoteClient(endpoint, a.remote, a.Logger)
}

// Server builds the HTTP server over the in-process engine.
func (a *Application) Server() (*server.Server, error) {
	return server.NewServer(a.Config.Server, server.Deps{
		Scanner: a.Engine,
		Ledger:  a.Store,
		Logger:  a.Logger,
	})
}

// Close releases the web clients and the store.
func (a *Application) Close() error {
	if a == nil {
		return errors.New("application is nil")
	}
	var errs []error
	for _, wc := range []webclient.WebClient{a.Pages, a.Renderer, a.remote} {
		if wc != nil {
			errs = append(errs, wc.Close())
		}
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	err := errors.Join(errs...)
	if err != nil && a.Logger != nil {
		a.Logger.Warn("application closed with errors", logging.Field{Key: "error", Value: err.Error()})
	}
	return err
}

package server

import "github.com/raysh454/ziva/internal/scan"

type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string `yaml:"listen_addr"`

	// Scan tunes the orchestrators behind /app and /ws/scan.
	Scan scan.Config `yaml:"scan"`

	// HistoryLimit caps /history results.
	HistoryLimit int `yaml:"history_limit"`
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:   ":10000",
		Scan:         scan.DefaultConfig(),
		HistoryLimit: 50,
	}
}

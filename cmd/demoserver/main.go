// Command demoserver starts the offline storefront used to demonstrate Ziva
// verdicts without touching real marketplaces.
// Usage: go run ./cmd/demoserver [store-port]
// Default ports: store 9999, history 9998, flipkart 9997, croma 9996
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/raysh454/ziva/internal/demoserver"
	"github.com/raysh454/ziva/internal/logging"
)

func main() {
	cfg := demoserver.DefaultConfig()

	// Optional: custom store port; the other sites follow it downwards.
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 4 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.StorePort = port
		cfg.HistoryPort = port - 1
		cfg.FlipkartPort = port - 2
		cfg.CromaPort = port - 3
	}

	fmt.Println("===========================================")
	fmt.Println("   Ziva Demo Storefront")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Point the engine at the demo sites:")
	fmt.Printf("  engine.history_base_url:  %s\n", cfg.HistoryURL())
	fmt.Printf("  engine.flipkart_base_url: %s\n", cfg.FlipkartURL())
	fmt.Printf("  engine.croma_base_url:    %s\n", cfg.CromaURL())
	fmt.Println()
	fmt.Println("Listings:")
	for _, p := range demoserver.Catalog() {
		fmt.Printf("  %s/dp/%s  %s\n", cfg.StoreURL(), p.ASIN, p.Title)
	}
	fmt.Printf("\nControl panel at %s/demo/control\n\n", cfg.StoreURL())

	server, err := demoserver.NewDemoServer(cfg, logging.NewStdoutLogger("demoserver"))
	if err != nil {
		log.Fatalf("Server error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

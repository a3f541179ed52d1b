package main

import (
	"flag"
	"log"
	"os"

	"DragonVeins/internal/di"
	"DragonVeins/pkg/config"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present; real env always wins
	_ = godotenv.Load()

	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s cache=%s refresh=%s", cfg.Environment, cfg.Cache.Backend, cfg.CoinGecko.RefreshInterval)

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}

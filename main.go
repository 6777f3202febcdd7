package main

import (
	"fmt"
	"os"

	auction "auction-house/internal/auctionService"
	"auction-house/internal/authstore"
	"auction-house/internal/chrome"
	"auction-house/internal/config"
	"auction-house/internal/gateway"
	"auction-house/internal/server"
	handler "auction-house/services/pages/handler"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	store, err := authstore.NewFileStore(cfg.SessionFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open session store: %v\n", err)
		os.Exit(1)
	}

	api := gateway.NewClient(cfg.RemoteBaseURL, cfg.APIKey, store)
	svc := auction.NewService(api, store)
	nav := chrome.New(store)

	pages := handler.NewPageHandler(svc, nav)
	router := server.SetupRouter(pages, "templates/*.tmpl")

	fmt.Printf("Starting auction front end on %s...\n", cfg.ListenAddr)
	if err := router.Run(cfg.ListenAddr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"flag"
	"log"
	"navcron/internal/pkg/app"
	"os/signal"
	"syscall"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the config file")
	flag.Parse()

	a, err := app.New(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		a.Log.Fatal("navcron stopped", err)
	}
}

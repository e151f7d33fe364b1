package main

import (
	"context"
	"log"

	"github.com/seqarchive/seqsubmit/internal/config"
	"github.com/seqarchive/seqsubmit/internal/uploader"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := uploader.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}

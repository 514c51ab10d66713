package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/dmitrijs2005/gophsocial/internal/server"
	"github.com/dmitrijs2005/gophsocial/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.New(os.Stdout, cfg.LogLevel, "json")

	app, err := server.NewApp(cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}

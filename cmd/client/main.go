package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/MKhiriev/go-pim-sync/internal/adapter"
	"github.com/MKhiriev/go-pim-sync/internal/client"
	"github.com/MKhiriev/go-pim-sync/internal/config"
	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)

	cfg, err := config.GetClientConfig()
	if err != nil {
		logger.NewLogger("pimsync", "").Fatal().Err(err).Msg("error getting configs")
	}
	log := logger.NewFileLogger("pimsync", cfg.Log.Level, cfg.Log.File)

	var admin adapter.AdminClient
	if cfg.Peer.AdminURL != "" {
		admin, err = adapter.NewHTTPAdminClient(cfg.Peer, log)
		if err != nil {
			log.Fatal().Err(err).Msg("create admin client")
		}
	}

	app := client.NewApp(cfg.Peer, admin, buildInfo, os.Stdout, log)
	if err = app.Run(context.Background(), flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

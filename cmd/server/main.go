package main

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-pim-sync/internal/config"
	"github.com/MKhiriev/go-pim-sync/internal/handler"
	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/internal/server"
	"github.com/MKhiriev/go-pim-sync/internal/service"
	"github.com/MKhiriev/go-pim-sync/internal/store"
	"github.com/MKhiriev/go-pim-sync/internal/tui"
	"github.com/MKhiriev/go-pim-sync/internal/utils"
	"github.com/MKhiriev/go-pim-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	fmt.Print(buildInfo)

	cfg, err := config.GetStructuredConfig()
	if err != nil {
		logger.NewLogger("pimsyncd", "").Fatal().Err(err).Msg("error getting configs")
	}

	log := logger.NewFileLogger("pimsyncd", cfg.Log.Level, cfg.Log.File)
	log.Debug().
		Str("address", cfg.Server.Address).
		Str("serial", cfg.Server.SerialDevice).
		Str("admin", cfg.Server.AdminAddress).
		Str("prompt", cfg.App.PromptMode).
		Msg("received configs")

	storages, err := store.NewStorages(context.Background(), cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	prompter, err := tui.New(cfg.App)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating prompter")
	}

	ids := utils.NewUUIDGenerator()
	services := service.NewServices(storages, prompter, ids, *cfg, buildInfo, log)

	bridge := server.NewBridge(services.Auth, services.Orchestrator, ids, cfg.Server, log)
	handlers := handler.NewHandlers(services, bridge, cfg.Server, log)

	srv, err := server.NewServer(bridge, handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

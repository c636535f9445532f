package service

import (
	"github.com/MKhiriev/go-pim-sync/internal/config"
	"github.com/MKhiriev/go-pim-sync/internal/crypto"
	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/internal/store"
	"github.com/MKhiriev/go-pim-sync/models"
)

type Services struct {
	Auth         Authenticator
	Orchestrator *Orchestrator
	AppInfo      AppInfoService
}

func NewServices(storages *store.Storages, prompter Prompter, ids IDGenerator, cfg config.StructuredConfig, buildInfo models.AppBuildInfo, logger *logger.Logger) *Services {
	return &Services{
		Auth: NewAuthService(storages.Passwords, crypto.NewCredentialHasher(), prompter, logger,
			WithPromptTimeout(cfg.App.PromptTimeout), WithAnchorReset(storages.Anchors)),
		Orchestrator: NewOrchestrator(storages.Anchors, StoragePlugins(storages, ids, logger), cfg.App.DeviceName, logger),
		AppInfo:      NewAppInfoService(buildInfo, logger),
	}
}

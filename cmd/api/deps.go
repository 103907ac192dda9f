package main

import (
	"context"
	"log"

	"spendlog/internal/domain/entry"
	"spendlog/internal/infrastructure/backend"
	httphandlers "spendlog/internal/interfaces/http"
	"spendlog/internal/shared/config"
	"spendlog/internal/shared/timezone"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	Stores *backend.Stores

	EntryHandler  *httphandlers.EntryHandler
	ExportHandler *httphandlers.ExportHandler
	UploadHandler *httphandlers.UploadHandler
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	loc := timezone.Load(cfg.Timezone)
	now := timezone.Clock(loc)

	stores, err := backend.OpenEntries(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Same as admin migrate; both are idempotent.
	if err := stores.Prepare(ctx, log.Writer()); err != nil {
		stores.Close()
		return nil, err
	}

	files, err := backend.OpenFiles(ctx, cfg, now)
	if err != nil {
		stores.Close()
		return nil, err
	}

	svc := entry.NewService(stores.Entries, files, now)

	return &Dependencies{
		Stores:        stores,
		EntryHandler:  httphandlers.NewEntryHandler(svc, loc, cfg.Server.PublicBaseURL, cfg.Server.MaxUploadMB<<20),
		ExportHandler: httphandlers.NewExportHandler(svc, now),
		UploadHandler: httphandlers.NewUploadHandler(files),
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.Stores != nil {
		if err := d.Stores.Close(); err != nil {
			log.Printf("Error closing store: %v", err)
		}
	}
}

package cmd

import (
	"fmt"

	"emby-tagger/core/config"
	"emby-tagger/core/database"
	"emby-tagger/core/logger"
	"emby-tagger/core/metrics"
	"emby-tagger/core/storage"
	"emby-tagger/feature/catalog"
	"emby-tagger/feature/catalog/models"
	"emby-tagger/feature/integrity"
	"emby-tagger/feature/servers"

	"go.uber.org/zap"
)

// environment holds the services shared by the HTTP server and the CLI commands.
type environment struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     storage.Client
	archive   *catalog.ReportArchive
	servers   *servers.Service
	catalog   *catalog.Service
	integrity *integrity.Service
}

// bootstrap loads the configuration, connects the database and the optional
// report archive and builds every service. migrate brings the schema up to
// date before anything else touches it.
func bootstrap(recorder metrics.Recorder, migrate bool) (*environment, error) {
	if recorder == nil {
		recorder = metrics.Nop{}
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if migrate {
		if err := database.Migrate(db, models.All()...); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}
	logg = logg.With(zap.String("driver", cfg.Database.Driver))

	a := &environment{cfg: cfg, logger: logg}

	if cfg.Storage.Enabled {
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		a.store = store
		a.archive = catalog.NewReportArchive(store, cfg.Storage)
	}

	a.servers = servers.NewService(db, logg, cfg.Emby, cfg.Sync.ActiveServerTTL())

	session := catalog.NewSession(db, logg, catalog.EmbyCatalogs(cfg.Emby, logg), cfg.Sync.Options(),
		catalog.WithRecorder(recorder),
		catalog.WithArchive(a.archive),
	)
	executor := catalog.NewExecutor(db, logg, recorder)
	a.catalog = catalog.NewService(db, logg, a.servers, session, executor, a.archive)

	a.integrity = integrity.NewService(db, a.store, cfg.Storage, a.servers, logg)

	return a, nil
}

package integrity

import (
	"context"

	"emby-tagger/core/emby"
	"emby-tagger/core/storage"
	"emby-tagger/feature/catalog/models"
	"emby-tagger/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Servers resolves the active server and tests connections.
type Servers interface {
	Active(ctx context.Context) (*models.RemoteServer, error)
	Test(ctx context.Context, url, apiKey string) (*emby.SystemInfo, error)
}

// Service handles integrity checks.
type Service struct {
	db      *gorm.DB
	client  storage.Client
	storage storage.Config
	servers Servers
	logger  *zap.Logger
}

// NewService creates a new integrity service. client is nil when the
// report archive is disabled.
func NewService(db *gorm.DB, client storage.Client, cfg storage.Config, servers Servers, logger *zap.Logger) *Service {
	return &Service{
		db:      db,
		client:  client,
		storage: cfg,
		servers: servers,
		logger:  logger,
	}
}

// StorageEnabled reports whether the archive bucket is checked.
func (s *Service) StorageEnabled() bool {
	return s.client != nil
}

// CheckSchema compares the database with the catalog models.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db, models.All()...)
}

// CheckStorage inspects the report archive bucket.
func (s *Service) CheckStorage(ctx context.Context) (*checks.StorageReport, error) {
	return checks.CheckStorage(ctx, s.client, s.storage.Bucket, s.storage.Prefix)
}

// FixStorage creates the report archive bucket.
func (s *Service) FixStorage(ctx context.Context) error {
	return checks.FixStorage(ctx, s.client, s.storage.Bucket, s.storage.Region, s.logger)
}

// CheckRemote calls the active server.
func (s *Service) CheckRemote(ctx context.Context) (*checks.RemoteReport, error) {
	server, err := s.servers.Active(ctx)
	if err != nil {
		return nil, err
	}

	probe := func(ctx context.Context) (*emby.SystemInfo, error) {
		return s.servers.Test(ctx, server.URL, server.APIKey)
	}
	return checks.CheckRemote(ctx, server.ID, server.Name, server.URL, server.RemoteID, probe), nil
}

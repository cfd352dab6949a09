package servers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"emby-tagger/core/emby"
	"emby-tagger/core/reconcile"
	"emby-tagger/core/validation"
	"emby-tagger/feature/catalog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a server id does not exist.
	ErrNotFound = errors.New("server not found")
	// ErrNoActiveServer is returned when no server is marked active.
	ErrNoActiveServer = errors.New("no active server")
	// ErrConnectionFailed wraps a failed connection test.
	ErrConnectionFailed = errors.New("cannot connect to server or API key is invalid")
)

// Tester checks that a server answers with the given credentials.
type Tester interface {
	TestConnection(ctx context.Context) (*emby.SystemInfo, error)
}

// Connector builds a Tester for a URL and API key.
type Connector func(url, apiKey string) Tester

// CreateInput is the payload for adding a server.
type CreateInput struct {
	Name   string `json:"name" validate:"required,max=128"`
	URL    string `json:"url" validate:"required,http_url"`
	APIKey string `json:"apiKey" validate:"required"`
	// IsActive defaults to true.
	IsActive *bool `json:"isActive,omitempty"`
}

// UpdateInput is the payload for changing a server. Nil fields are kept.
type UpdateInput struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=128"`
	URL      *string `json:"url,omitempty" validate:"omitempty,http_url"`
	APIKey   *string `json:"apiKey,omitempty" validate:"omitempty,min=1"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// Service manages remote server records and the active server cache.
type Service struct {
	db        *gorm.DB
	logger    *zap.Logger
	validator *validation.Validator
	connect   Connector
	active    *reconcile.Cache[*models.RemoteServer]
}

// Option customizes a Service.
type Option func(*Service)

// WithConnector replaces the Emby client used for connection tests.
func WithConnector(c Connector) Option {
	return func(s *Service) { s.connect = c }
}

// NewService creates a server service. activeTTL bounds how long the active
// server lookup is cached.
func NewService(db *gorm.DB, logger *zap.Logger, cfg emby.Config, activeTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		db:        db,
		logger:    logger,
		validator: validation.New(),
		active:    reconcile.NewCache[*models.RemoteServer](activeTTL),
	}
	s.connect = func(url, apiKey string) Tester {
		return emby.NewClient(url, apiKey, cfg, emby.WithLogger(logger))
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every server ordered by name.
func (s *Service) List(ctx context.Context) ([]models.RemoteServer, error) {
	var servers []models.RemoteServer
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&servers).Error; err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}
	return servers, nil
}

// Get returns one server.
func (s *Service) Get(ctx context.Context, id uint) (*models.RemoteServer, error) {
	var server models.RemoteServer
	if err := s.db.WithContext(ctx).First(&server, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get server: %w", err)
	}
	return &server, nil
}

// Test checks a URL and API key without storing anything.
func (s *Service) Test(ctx context.Context, url, apiKey string) (*emby.SystemInfo, error) {
	info, err := s.connect(strings.TrimRight(url, "/"), apiKey).TestConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return info, nil
}

// Create tests the connection, then stores the server with the remote id it
// reported. An active server deactivates the others.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.RemoteServer, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	info, err := s.Test(ctx, in.URL, in.APIKey)
	if err != nil {
		return nil, err
	}
	if info.ID == "" {
		return nil, fmt.Errorf("%w: server answered without an id", ErrConnectionFailed)
	}

	server := models.RemoteServer{
		Name:     in.Name,
		URL:      strings.TrimRight(in.URL, "/"),
		APIKey:   in.APIKey,
		IsActive: in.IsActive == nil || *in.IsActive,
		RemoteID: info.ID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if server.IsActive {
			if err := deactivateAll(tx); err != nil {
				return err
			}
		}
		return tx.Create(&server).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	if server.IsActive {
		s.active.Set(&server)
	}
	s.logger.Info("Server added",
		zap.Uint("id", server.ID),
		zap.String("name", server.Name),
		zap.String("remote_id", server.RemoteID),
		zap.Bool("active", server.IsActive),
	)
	return &server, nil
}

// Update applies the non-nil fields. A changed URL or API key is tested
// first. Activating a server deactivates the others.
func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) (*models.RemoteServer, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	server, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.URL != nil || in.APIKey != nil {
		url, key := server.URL, server.APIKey
		if in.URL != nil {
			url = strings.TrimRight(*in.URL, "/")
			updates["url"] = url
		}
		if in.APIKey != nil {
			key = *in.APIKey
			updates["api_key"] = key
		}
		info, err := s.Test(ctx, url, key)
		if err != nil {
			return nil, err
		}
		if info.ID != "" {
			updates["remote_id"] = info.ID
		}
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}

	if len(updates) > 0 {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if in.IsActive != nil && *in.IsActive {
				if err := deactivateAll(tx); err != nil {
					return err
				}
			}
			return tx.Model(&models.RemoteServer{}).Where("id = ?", id).Updates(updates).Error
		})
		if err != nil {
			return nil, fmt.Errorf("failed to update server: %w", err)
		}
	}

	s.active.Invalidate()
	return s.Get(ctx, id)
}

// Activate marks one server active and every other inactive.
func (s *Service) Activate(ctx context.Context, id uint) (*models.RemoteServer, error) {
	active := true
	return s.Update(ctx, id, UpdateInput{IsActive: &active})
}

// Delete removes a server and every mirror row that belongs to it.
func (s *Service) Delete(ctx context.Context, id uint) error {
	server, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("server_id = ?", id).Delete(&models.RemoteItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.RemoteServer{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete server: %w", err)
	}

	if server.IsActive {
		s.active.Invalidate()
	}
	s.logger.Info("Server removed", zap.Uint("id", id), zap.String("name", server.Name))
	return nil
}

// Active returns the active server, cached for the configured TTL.
func (s *Service) Active(ctx context.Context) (*models.RemoteServer, error) {
	return s.active.Get(ctx, func(ctx context.Context) (*models.RemoteServer, error) {
		var server models.RemoteServer
		err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("id ASC").First(&server).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNoActiveServer
			}
			return nil, fmt.Errorf("failed to load active server: %w", err)
		}
		return &server, nil
	})
}

func deactivateAll(tx *gorm.DB) error {
	return tx.Model(&models.RemoteServer{}).Where("is_active = ?", true).Update("is_active", false).Error
}

package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"emby-tagger/core/reconcile"
	"emby-tagger/feature/catalog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UnmappedLimit caps the unmapped local item listing.
const UnmappedLimit = 50

// ViewTTL bounds how long the match view of the active server is cached.
const ViewTTL = 10 * time.Minute

// ErrNoReport is returned when no archived report exists.
var ErrNoReport = errors.New("no sync report available")

// ActiveServer resolves the server the catalog works against.
type ActiveServer interface {
	Active(ctx context.Context) (*models.RemoteServer, error)
}

// GenreTagResult describes a genre tagging run.
type GenreTagResult struct {
	Tag    models.Tag `json:"tag"`
	Tagged int        `json:"tagged"`
}

// Service ties the session, the executor and the active server together.
type Service struct {
	db       *gorm.DB
	logger   *zap.Logger
	active   ActiveServer
	session  *Session
	executor *Executor
	archive  *ReportArchive
	view     *reconcile.Cache[*SyncReport]
}

// NewService creates a catalog service. archive may be nil.
func NewService(db *gorm.DB, logger *zap.Logger, active ActiveServer, session *Session, executor *Executor, archive *ReportArchive) *Service {
	s := &Service{
		db:       db,
		logger:   logger,
		active:   active,
		session:  session,
		executor: executor,
		archive:  archive,
		view:     reconcile.NewCache[*SyncReport](ViewTTL),
	}
	executor.OnApplied(s.view.Invalidate)
	return s
}

// Sync runs a reconciliation pass for the active server.
func (s *Service) Sync(ctx context.Context) (*SyncReport, error) {
	server, err := s.active.Active(ctx)
	if err != nil {
		return nil, err
	}

	report, err := s.session.Run(ctx, server)
	if err != nil {
		return nil, err
	}
	s.view.Set(report)
	return report, nil
}

// View returns the match results of the active server from the mirror. It
// is cached until the next batch of operations or sync.
func (s *Service) View(ctx context.Context) (*SyncReport, error) {
	server, err := s.active.Active(ctx)
	if err != nil {
		return nil, err
	}

	fetch := func(ctx context.Context) (*SyncReport, error) {
		return s.session.Rematch(ctx, server)
	}

	report, err := s.view.Get(ctx, fetch)
	if err != nil {
		return nil, err
	}
	if report.ServerID != server.ID {
		s.view.Invalidate()
		return s.view.Get(ctx, fetch)
	}
	return report, nil
}

// Apply runs a batch of operations.
func (s *Service) Apply(ctx context.Context, ops []reconcile.Operation) reconcile.BatchResult {
	return s.executor.Execute(ctx, ops)
}

// UnmappedLocalItems lists local items with no mirror row for the active
// server, ordered by title. search filters on title and original title.
func (s *Service) UnmappedLocalItems(ctx context.Context, search string) ([]models.LocalItem, error) {
	server, err := s.active.Active(ctx)
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Model(&models.LocalItem{}).Scopes(unmappedFor(server.ID))
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + search + "%"
		query = query.Where("local_items.title LIKE ? OR local_items.original_title LIKE ?", like, like)
	}

	locals := []models.LocalItem{}
	if err := query.Order("local_items.title ASC").Limit(UnmappedLimit).Find(&locals).Error; err != nil {
		return nil, fmt.Errorf("failed to list unmapped local items: %w", err)
	}
	return locals, nil
}

// AddTagByGenre finds or creates a tag named after a genre and attaches it
// to every mapped local item whose mirror row on the active server lists
// that genre.
func (s *Service) AddTagByGenre(ctx context.Context, genre string) (*GenreTagResult, error) {
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return nil, errors.New("genre is required")
	}

	server, err := s.active.Active(ctx)
	if err != nil {
		return nil, err
	}

	result := &GenreTagResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tag, err := findOrCreateTag(tx, models.Tag{Name: genre, Group: groupGenre})
		if err != nil {
			return err
		}
		result.Tag = *tag

		var rows []models.RemoteItem
		err = tx.Where("server_id = ? AND local_item_id IS NOT NULL AND genres LIKE ?", server.ID, `%"`+genre+`"%`).
			Find(&rows).Error
		if err != nil {
			return fmt.Errorf("failed to find items of genre %q: %w", genre, err)
		}

		seen := map[uint]struct{}{}
		for _, r := range rows {
			if !slices.Contains(r.Genres, genre) {
				continue
			}
			if _, ok := seen[*r.LocalItemID]; ok {
				continue
			}
			seen[*r.LocalItemID] = struct{}{}
			if err := attachTag(tx, *r.LocalItemID, tag.ID); err != nil {
				return err
			}
		}
		result.Tagged = len(seen)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.view.Invalidate()
	s.logger.Info("Genre tag applied", zap.String("genre", genre), zap.Int("tagged", result.Tagged))
	return result, nil
}

// LastReport returns the newest archived report of the active server.
func (s *Service) LastReport(ctx context.Context) (*SyncReport, error) {
	if s.archive == nil {
		return nil, ErrNoReport
	}

	server, err := s.active.Active(ctx)
	if err != nil {
		return nil, err
	}

	report, err := s.archive.Latest(ctx, server.ID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrNoReport
	}
	return report, nil
}

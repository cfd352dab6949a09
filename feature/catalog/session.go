package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"emby-tagger/core/emby"
	"emby-tagger/core/metrics"
	"emby-tagger/core/reconcile"
	"emby-tagger/feature/catalog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrRemoteUnavailable is wrapped when the remote catalog cannot be listed.
// The mirror is untouched when it is returned.
var ErrRemoteUnavailable = errors.New("remote catalog unavailable")

// RemoteCatalog lists the items of one remote server.
type RemoteCatalog interface {
	ListItems(ctx context.Context, q emby.ItemQuery) ([]emby.Item, error)
}

// CatalogFactory returns the RemoteCatalog of a server.
type CatalogFactory func(server *models.RemoteServer) RemoteCatalog

// EmbyCatalogs builds Emby clients from stored server credentials.
func EmbyCatalogs(cfg emby.Config, logger *zap.Logger) CatalogFactory {
	return func(server *models.RemoteServer) RemoteCatalog {
		return emby.NewClient(server.URL, server.APIKey, cfg, emby.WithLogger(logger))
	}
}

// MatchResult is the matcher outcome for one mirrored remote item.
type MatchResult = reconcile.Result[models.RemoteItem, models.LocalItem]

// MultiPartGroup lists remote items collapsed into a single entry.
type MultiPartGroup struct {
	Name string `json:"name"`
	// Kept is the remote id that stayed in the catalog.
	Kept string `json:"kept"`
	// Paths holds the file path of every part, kept one first.
	Paths []string `json:"paths"`
}

// Summary counts results by status.
type Summary struct {
	Matched  int `json:"matched"`
	Exact    int `json:"exact"`
	Multiple int `json:"multiple"`
	None     int `json:"none"`
}

// SyncReport is the outcome of one reconciliation pass.
type SyncReport struct {
	ServerID        uint             `json:"serverId"`
	Results         []MatchResult    `json:"results"`
	MultiPartGroups []MultiPartGroup `json:"multiPartGroups"`
	Fetched         int              `json:"fetched"`
	Kept            int              `json:"kept"`
	Pruned          int64            `json:"pruned"`
	Summary         Summary          `json:"summary"`
	StartedAt       time.Time        `json:"startedAt"`
	Duration        time.Duration    `json:"duration"`
}

func newReport(serverID uint, started time.Time) *SyncReport {
	return &SyncReport{
		ServerID:        serverID,
		Results:         []MatchResult{},
		MultiPartGroups: []MultiPartGroup{},
		StartedAt:       started,
	}
}

// Session runs reconciliation passes.
type Session struct {
	db       *gorm.DB
	mirror   *Mirror
	catalogs CatalogFactory
	opts     reconcile.Options
	logger   *zap.Logger
	recorder metrics.Recorder
	archive  *ReportArchive
	now      func() time.Time
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithRecorder reports pass metrics to r.
func WithRecorder(r metrics.Recorder) SessionOption {
	return func(s *Session) { s.recorder = r }
}

// WithArchive stores every successful report.
func WithArchive(a *ReportArchive) SessionOption {
	return func(s *Session) { s.archive = a }
}

// NewSession creates a reconciliation session.
func NewSession(db *gorm.DB, logger *zap.Logger, catalogs CatalogFactory, opts reconcile.Options, options ...SessionOption) *Session {
	s := &Session{
		db:       db,
		mirror:   NewMirror(db),
		catalogs: catalogs,
		opts:     opts,
		logger:   logger,
		recorder: metrics.Nop{},
		now:      time.Now,
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Run performs one pass for a server: fetch, collapse, mirror, prune, match.
// Mirroring and pruning are not one transaction; a failed pass is repaired
// by the next one.
func (s *Session) Run(ctx context.Context, server *models.RemoteServer) (*SyncReport, error) {
	started := s.now()
	log := s.logger.With(zap.Uint("server_id", server.ID), zap.String("server", server.Name))

	items, err := s.catalogs(server).ListItems(ctx, emby.DefaultSyncQuery())
	if err != nil {
		s.recorder.RecordSync(metrics.OutcomeUnreachable, s.now().Sub(started))
		log.Error("Failed to fetch remote catalog", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
	}

	report := newReport(server.ID, started)
	report.Fetched = len(items)
	s.recorder.RecordItems(metrics.StageFetched, len(items))

	if len(items) == 0 {
		log.Warn("Remote catalog is empty, mirror left untouched")
		return s.finish(ctx, log, report), nil
	}

	kept, groups := reconcile.CollapseMultiPart(items,
		func(i emby.Item) string { return i.Name },
		func(i emby.Item) string { return i.Path },
	)
	report.Kept = len(kept)
	for _, g := range groups {
		group := MultiPartGroup{Name: g[0].Name, Kept: g[0].ID, Paths: make([]string, 0, len(g))}
		for _, part := range g {
			group.Paths = append(group.Paths, part.Path)
		}
		report.MultiPartGroups = append(report.MultiPartGroups, group)
	}
	s.recorder.RecordItems(metrics.StageCollapsed, len(items)-len(kept))

	surviving := make([]string, 0, len(kept))
	for _, item := range kept {
		if _, err := s.mirror.Upsert(ctx, server.ID, item); err != nil {
			s.recorder.RecordSync(metrics.OutcomeError, s.now().Sub(started))
			return nil, err
		}
		surviving = append(surviving, item.ID)
	}
	s.recorder.RecordItems(metrics.StageUpserted, len(surviving))

	pruned, err := s.mirror.PruneMissing(ctx, server.ID, surviving)
	if err != nil {
		s.recorder.RecordSync(metrics.OutcomeError, s.now().Sub(started))
		return nil, err
	}
	report.Pruned = pruned
	s.recorder.RecordItems(metrics.StagePruned, int(pruned))

	locals, err := unmappedLocals(s.db.WithContext(ctx), server.ID)
	if err != nil {
		s.recorder.RecordSync(metrics.OutcomeError, s.now().Sub(started))
		return nil, err
	}

	remotes, err := s.mirroredInOrder(ctx, server.ID, surviving)
	if err != nil {
		s.recorder.RecordSync(metrics.OutcomeError, s.now().Sub(started))
		return nil, err
	}

	report.Results = reconcile.Match(remotes, locals, models.RemoteItem.IsMapped, s.opts)
	return s.finish(ctx, log, report), nil
}

// mirroredInOrder loads the rows of this pass with their mapping, in the
// order the remote listed them.
func (s *Session) mirroredInOrder(ctx context.Context, serverID uint, remoteIDs []string) ([]models.RemoteItem, error) {
	var rows []models.RemoteItem
	for batch := range slices.Chunk(remoteIDs, bindChunk) {
		var part []models.RemoteItem
		err := s.db.WithContext(ctx).
			Preload("LocalItem").
			Where("server_id = ? AND remote_id IN ?", serverID, batch).
			Find(&part).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load mirrored items: %w", err)
		}
		rows = append(rows, part...)
	}

	byRemoteID := make(map[string]models.RemoteItem, len(rows))
	for _, r := range rows {
		byRemoteID[r.RemoteID] = r
	}

	ordered := make([]models.RemoteItem, 0, len(rows))
	for _, id := range remoteIDs {
		if r, ok := byRemoteID[id]; ok {
			ordered = append(ordered, r)
		}
	}
	return ordered, nil
}

// Rematch matches the current mirror of a server against the local pool
// without contacting the remote. Results are ordered by title.
func (s *Session) Rematch(ctx context.Context, server *models.RemoteServer) (*SyncReport, error) {
	report := newReport(server.ID, s.now())

	var remotes []models.RemoteItem
	err := s.db.WithContext(ctx).
		Preload("LocalItem").
		Where("server_id = ?", server.ID).
		Order("title ASC, id ASC").
		Find(&remotes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load mirrored items: %w", err)
	}

	locals, err := unmappedLocals(s.db.WithContext(ctx), server.ID)
	if err != nil {
		return nil, err
	}

	report.Kept = len(remotes)
	report.Results = reconcile.Match(remotes, locals, models.RemoteItem.IsMapped, s.opts)
	summarize(report)
	report.Duration = s.now().Sub(report.StartedAt)
	return report, nil
}

func summarize(report *SyncReport) {
	report.Summary = Summary{}
	for _, r := range report.Results {
		switch r.Status {
		case reconcile.StatusMatched:
			report.Summary.Matched++
		case reconcile.StatusExact:
			report.Summary.Exact++
		case reconcile.StatusMultiple:
			report.Summary.Multiple++
		case reconcile.StatusNone:
			report.Summary.None++
		}
	}
}

func (s *Session) finish(ctx context.Context, log *zap.Logger, report *SyncReport) *SyncReport {
	summarize(report)
	report.Duration = s.now().Sub(report.StartedAt)

	s.recorder.RecordSync(metrics.OutcomeSuccess, report.Duration)
	s.recorder.RecordMatchStatus(string(reconcile.StatusMatched), report.Summary.Matched)
	s.recorder.RecordMatchStatus(string(reconcile.StatusExact), report.Summary.Exact)
	s.recorder.RecordMatchStatus(string(reconcile.StatusMultiple), report.Summary.Multiple)
	s.recorder.RecordMatchStatus(string(reconcile.StatusNone), report.Summary.None)

	log.Info("Sync pass finished",
		zap.Int("fetched", report.Fetched),
		zap.Int("kept", report.Kept),
		zap.Int64("pruned", report.Pruned),
		zap.Int("matched", report.Summary.Matched),
		zap.Int("exact", report.Summary.Exact),
		zap.Int("multiple", report.Summary.Multiple),
		zap.Int("none", report.Summary.None),
		zap.Duration("duration", report.Duration),
	)

	if s.archive != nil {
		if key, err := s.archive.Save(ctx, report); err != nil {
			log.Warn("Failed to archive sync report", zap.Error(err))
		} else {
			log.Debug("Sync report archived", zap.String("key", key))
		}
	}
	return report
}

// unmappedFor limits a local item query to items with no mirror row for
// the server.
func unmappedFor(serverID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("NOT EXISTS (SELECT 1 FROM remote_items WHERE remote_items.local_item_id = local_items.id AND remote_items.server_id = ?)", serverID)
	}
}

func unmappedLocals(db *gorm.DB, serverID uint) ([]models.LocalItem, error) {
	var locals []models.LocalItem
	err := db.Model(&models.LocalItem{}).Scopes(unmappedFor(serverID)).Order("local_items.id ASC").Find(&locals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load unmapped local items: %w", err)
	}
	return locals, nil
}

package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"emby-tagger/core/metrics"
	"emby-tagger/core/reconcile"
	"emby-tagger/feature/catalog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrItemNotFound is wrapped when an operation names a missing row.
	ErrItemNotFound = errors.New("not found")
	// ErrNotMapped is wrapped when unmap or refresh targets an unmapped item.
	ErrNotMapped = errors.New("is not mapped")
	// ErrAlreadyMapped is wrapped when create targets a mapped item.
	ErrAlreadyMapped = errors.New("is already mapped")
	// ErrEmptyTitle is returned when a local item would be stored without a title.
	ErrEmptyTitle = errors.New("local item title is required")
)

// Executor applies mapping operations to the local store. Each call is its
// own transaction.
type Executor struct {
	db        *gorm.DB
	logger    *zap.Logger
	recorder  metrics.Recorder
	onApplied []func()
}

// NewExecutor creates an executor. A nil recorder disables metrics.
func NewExecutor(db *gorm.DB, logger *zap.Logger, recorder metrics.Recorder) *Executor {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Executor{db: db, logger: logger, recorder: recorder}
}

// OnApplied registers a callback run after every batch.
func (e *Executor) OnApplied(fn func()) {
	e.onApplied = append(e.onApplied, fn)
}

// Execute applies every operation independently and reports the outcome
// of each one.
func (e *Executor) Execute(ctx context.Context, ops []reconcile.Operation) reconcile.BatchResult {
	result := reconcile.ApplyOperations(ctx, recordingMutator{next: e, recorder: e.recorder}, ops)

	for _, f := range result.Failed {
		e.logger.Warn("Operation failed", zap.Uint("remote_item_id", f.ID), zap.String("error", f.Error))
	}
	e.logger.Info("Operations applied",
		zap.Int("total", len(ops)),
		zap.Int("success", len(result.Success)),
		zap.Int("failed", len(result.Failed)),
	)

	for _, fn := range e.onApplied {
		fn()
	}
	return result
}

// Map links a remote item to a local item and auto-tags the local item.
// Mapping to the current local item is a no-op.
func (e *Executor) Map(ctx context.Context, remoteItemID, localItemID uint) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		remote, err := findRemote(tx, remoteItemID)
		if err != nil {
			return err
		}
		if _, err := findLocal(tx, localItemID); err != nil {
			return err
		}
		if remote.LocalItemID != nil && *remote.LocalItemID == localItemID {
			return nil
		}

		if err := setMapping(tx, remote.ID, localItemID); err != nil {
			return err
		}
		return autoTag(tx, localItemID, *remote)
	})
}

// Unmap clears the mapping of a remote item. The local item is kept.
func (e *Executor) Unmap(ctx context.Context, remoteItemID uint) error {
	db := e.db.WithContext(ctx)
	remote, err := findRemote(db, remoteItemID)
	if err != nil {
		return err
	}
	if !remote.IsMapped() {
		return fmt.Errorf("remote item %d %w", remoteItemID, ErrNotMapped)
	}

	err = db.Model(&models.RemoteItem{}).Where("id = ?", remote.ID).Update("local_item_id", gorm.Expr("NULL")).Error
	if err != nil {
		return fmt.Errorf("failed to unmap remote item %d: %w", remoteItemID, err)
	}
	return nil
}

// Create builds a local item from a remote item, auto-tags it and maps the
// remote item to it.
func (e *Executor) Create(ctx context.Context, remoteItemID uint) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		remote, err := findRemote(tx, remoteItemID)
		if err != nil {
			return err
		}
		if remote.IsMapped() {
			return fmt.Errorf("remote item %d %w", remoteItemID, ErrAlreadyMapped)
		}

		local := localFromRemote(*remote)
		if strings.TrimSpace(local.Title) == "" {
			return ErrEmptyTitle
		}
		if err := tx.Create(&local).Error; err != nil {
			return fmt.Errorf("failed to create local item: %w", err)
		}

		if err := autoTag(tx, local.ID, *remote); err != nil {
			return err
		}
		return setMapping(tx, remote.ID, local.ID)
	})
}

// Refresh overwrites the mapped local item's metadata with the mirror row.
// Tags, comments and ratings are kept.
func (e *Executor) Refresh(ctx context.Context, remoteItemID uint) error {
	db := e.db.WithContext(ctx)
	remote, err := findRemote(db, remoteItemID)
	if err != nil {
		return err
	}
	if !remote.IsMapped() {
		return fmt.Errorf("remote item %d %w", remoteItemID, ErrNotMapped)
	}

	fresh := localFromRemote(*remote)
	if strings.TrimSpace(fresh.Title) == "" {
		return ErrEmptyTitle
	}

	res := db.Model(&models.LocalItem{}).Where("id = ?", *remote.LocalItemID).Updates(map[string]any{
		"title":          fresh.Title,
		"original_title": fresh.OriginalTitle,
		"overview":       fresh.Overview,
		"type":           fresh.Type,
		"premiere_date":  fresh.PremiereDate,
		"external_ids":   fresh.ExternalIDs,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to refresh local item %d: %w", *remote.LocalItemID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("local item %d %w", *remote.LocalItemID, ErrItemNotFound)
	}
	return nil
}

func findRemote(db *gorm.DB, id uint) (*models.RemoteItem, error) {
	var remote models.RemoteItem
	if err := db.First(&remote, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("remote item %d %w", id, ErrItemNotFound)
		}
		return nil, fmt.Errorf("failed to load remote item %d: %w", id, err)
	}
	return &remote, nil
}

func findLocal(db *gorm.DB, id uint) (*models.LocalItem, error) {
	var local models.LocalItem
	if err := db.First(&local, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("local item %d %w", id, ErrItemNotFound)
		}
		return nil, fmt.Errorf("failed to load local item %d: %w", id, err)
	}
	return &local, nil
}

func setMapping(tx *gorm.DB, remoteID, localID uint) error {
	err := tx.Model(&models.RemoteItem{}).Where("id = ?", remoteID).Update("local_item_id", localID).Error
	if err != nil {
		return fmt.Errorf("failed to map remote item %d: %w", remoteID, err)
	}
	return nil
}

// localFromRemote copies the metadata a local item takes from a mirror row.
func localFromRemote(remote models.RemoteItem) models.LocalItem {
	original := remote.OriginalTitle
	if original == "" {
		original = remote.Title
	}

	ids := make(map[string]string, len(remote.ExternalIDs))
	for k, v := range remote.ExternalIDs {
		ids[k] = v
	}

	return models.LocalItem{
		Title:         remote.Title,
		OriginalTitle: original,
		Overview:      remote.Overview,
		Type:          remote.Type,
		PremiereDate:  remote.PremiereDate,
		ExternalIDs:   ids,
	}
}

// recordingMutator counts every mutator call by type and outcome.
type recordingMutator struct {
	next     reconcile.Mutator
	recorder metrics.Recorder
}

func (r recordingMutator) record(op reconcile.OperationType, err error) error {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
	}
	r.recorder.RecordOperation(string(op), outcome)
	return err
}

func (r recordingMutator) Map(ctx context.Context, remoteItemID, localItemID uint) error {
	return r.record(reconcile.OpMap, r.next.Map(ctx, remoteItemID, localItemID))
}

func (r recordingMutator) Unmap(ctx context.Context, remoteItemID uint) error {
	return r.record(reconcile.OpUnmap, r.next.Unmap(ctx, remoteItemID))
}

func (r recordingMutator) Create(ctx context.Context, remoteItemID uint) error {
	return r.record(reconcile.OpCreate, r.next.Create(ctx, remoteItemID))
}

func (r recordingMutator) Refresh(ctx context.Context, remoteItemID uint) error {
	return r.record(reconcile.OpRefresh, r.next.Refresh(ctx, remoteItemID))
}

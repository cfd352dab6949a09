package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"emby-tagger/core/database"
	"emby-tagger/core/emby"
	"emby-tagger/core/reconcile"
	"emby-tagger/feature/catalog/models"
	"emby-tagger/feature/servers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, models.All()...))
	return db
}

func createServer(t *testing.T, db *gorm.DB, name string) *models.RemoteServer {
	t.Helper()
	server := &models.RemoteServer{Name: name, URL: "http://" + name + ".local", APIKey: "k", IsActive: true, RemoteID: name}
	require.NoError(t, db.Create(server).Error)
	return server
}

func createLocal(t *testing.T, db *gorm.DB, local models.LocalItem) models.LocalItem {
	t.Helper()
	require.NoError(t, db.Create(&local).Error)
	return local
}

func createRemote(t *testing.T, db *gorm.DB, remote models.RemoteItem) models.RemoteItem {
	t.Helper()
	require.NoError(t, db.Create(&remote).Error)
	return remote
}

func tagNames(t *testing.T, db *gorm.DB, localID uint) []string {
	t.Helper()
	var local models.LocalItem
	require.NoError(t, db.Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name ASC") }).First(&local, localID).Error)
	names := make([]string, 0, len(local.Tags))
	for _, tag := range local.Tags {
		names = append(names, tag.Name)
	}
	return names
}

// fakeCatalog serves a fixed item list.
type fakeCatalog struct {
	items []emby.Item
	err   error
	calls int
}

func (f *fakeCatalog) ListItems(_ context.Context, q emby.ItemQuery) ([]emby.Item, error) {
	f.calls++
	return f.items, f.err
}

func (f *fakeCatalog) factory() CatalogFactory {
	return func(*models.RemoteServer) RemoteCatalog { return f }
}

// fakeActive returns a fixed server or error.
type fakeActive struct {
	server *models.RemoteServer
	err    error
}

func (f fakeActive) Active(context.Context) (*models.RemoteServer, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.server, nil
}

var noActive = fakeActive{err: servers.ErrNoActiveServer}

// recorder collects metric calls.
type recorder struct {
	mu         sync.Mutex
	syncs      []string
	items      map[string]int
	statuses   map[string]int
	operations map[string]int
}

func newRecorder() *recorder {
	return &recorder{items: map[string]int{}, statuses: map[string]int{}, operations: map[string]int{}}
}

func (r *recorder) RecordSync(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.syncs = append(r.syncs, outcome)
}

func (r *recorder) RecordItems(stage string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[stage] += n
}

func (r *recorder) RecordMatchStatus(status string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[status] += n
}

func (r *recorder) RecordOperation(opType, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.operations[opType+"/"+outcome]++
}

func TestLoader(t *testing.T) {
	db := setupDB(t)
	executor := NewExecutor(db, zap.NewNop(), nil)
	session := NewSession(db, zap.NewNop(), (&fakeCatalog{}).factory(), reconcile.DefaultOptions())
	feature := NewFeature(NewService(db, zap.NewNop(), noActive, session, executor, nil))

	assert.Equal(t, "catalog", feature.Name())
	assert.True(t, feature.IsEnabled())
}

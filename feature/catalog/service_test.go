package catalog

import (
	"context"
	"testing"

	"emby-tagger/core/emby"
	"emby-tagger/core/reconcile"
	"emby-tagger/core/utils"
	"emby-tagger/feature/catalog/models"
	"emby-tagger/feature/servers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type serviceFixture struct {
	db      *gorm.DB
	server  *models.RemoteServer
	remote  *fakeCatalog
	service *Service
}

func setupCatalogService(t *testing.T) *serviceFixture {
	t.Helper()
	db := setupDB(t)
	server := createServer(t, db, "home")
	remote := &fakeCatalog{}
	session := NewSession(db, zap.NewNop(), remote.factory(), reconcile.DefaultOptions())
	executor := NewExecutor(db, zap.NewNop(), nil)
	return &serviceFixture{
		db:      db,
		server:  server,
		remote:  remote,
		service: NewService(db, zap.NewNop(), fakeActive{server: server}, session, executor, nil),
	}
}

func TestService_SyncRequiresActiveServer(t *testing.T) {
	db := setupDB(t)
	session := NewSession(db, zap.NewNop(), (&fakeCatalog{}).factory(), reconcile.DefaultOptions())
	svc := NewService(db, zap.NewNop(), noActive, session, NewExecutor(db, zap.NewNop(), nil), nil)

	_, err := svc.Sync(context.Background())
	assert.ErrorIs(t, err, servers.ErrNoActiveServer)
	_, err = svc.UnmappedLocalItems(context.Background(), "")
	assert.ErrorIs(t, err, servers.ErrNoActiveServer)
}

func TestService_ViewCachedUntilApply(t *testing.T) {
	f := setupCatalogService(t)
	ctx := context.Background()
	local := createLocal(t, f.db, models.LocalItem{Title: "Alien", Type: "Movie"})
	f.remote.items = []emby.Item{{ID: "r1", Name: "Alien", Type: "Movie"}}

	report, err := f.service.Sync(ctx)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, reconcile.StatusExact, report.Results[0].Status)

	view, err := f.service.View(ctx)
	require.NoError(t, err)
	assert.Same(t, report, view)

	remoteID := report.Results[0].Item.ID
	result := f.service.Apply(ctx, []reconcile.Operation{{Type: reconcile.OpMap, RemoteItemID: remoteID, LocalItemID: local.ID}})
	assert.Equal(t, []uint{remoteID}, result.Success)

	view, err = f.service.View(ctx)
	require.NoError(t, err)
	assert.NotSame(t, report, view)
	require.Len(t, view.Results, 1)
	assert.Equal(t, reconcile.StatusMatched, view.Results[0].Status)
	assert.Equal(t, 1, f.remote.calls)
}

func TestService_UnmappedLocalItems(t *testing.T) {
	f := setupCatalogService(t)
	ctx := context.Background()

	mapped := createLocal(t, f.db, models.LocalItem{Title: "Alien", Type: "Movie"})
	createLocal(t, f.db, models.LocalItem{Title: "Zodiac", Type: "Movie"})
	createLocal(t, f.db, models.LocalItem{Title: "Aliens", OriginalTitle: "Aliens (1986)", Type: "Movie"})
	createLocal(t, f.db, models.LocalItem{Title: "Heat", OriginalTitle: "Heat Alien Cut", Type: "Movie"})
	createRemote(t, f.db, models.RemoteItem{RemoteID: "r1", ServerID: f.server.ID, Title: "Alien", Type: "Movie", LocalItemID: &mapped.ID})

	items, err := f.service.UnmappedLocalItems(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Aliens", "Heat", "Zodiac"}, titles(items))

	items, err = f.service.UnmappedLocalItems(ctx, "  Alien ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Aliens", "Heat"}, titles(items))
}

func TestService_UnmappedLocalItemsLimit(t *testing.T) {
	f := setupCatalogService(t)
	for i := 0; i < UnmappedLimit+5; i++ {
		createLocal(t, f.db, models.LocalItem{Title: "Item", Type: "Movie"})
	}

	items, err := f.service.UnmappedLocalItems(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, items, UnmappedLimit)
}

func TestService_AddTagByGenre(t *testing.T) {
	f := setupCatalogService(t)
	ctx := context.Background()
	other := createServer(t, f.db, "other")

	a := createLocal(t, f.db, models.LocalItem{Title: "Alien", Type: "Movie"})
	b := createLocal(t, f.db, models.LocalItem{Title: "Heat", Type: "Movie"})
	c := createLocal(t, f.db, models.LocalItem{Title: "Up", Type: "Movie"})

	createRemote(t, f.db, models.RemoteItem{RemoteID: "r1", ServerID: f.server.ID, Title: "Alien", Type: "Movie",
		Genres: utils.StringList{"Horror", "Action & Adventure"}, LocalItemID: &a.ID})
	createRemote(t, f.db, models.RemoteItem{RemoteID: "r2", ServerID: f.server.ID, Title: "Heat", Type: "Movie",
		Genres: utils.StringList{"Action & Adventure Classics"}, LocalItemID: &b.ID})
	createRemote(t, f.db, models.RemoteItem{RemoteID: "r3", ServerID: f.server.ID, Title: "Unmapped", Type: "Movie",
		Genres: utils.StringList{"Action & Adventure"}})
	createRemote(t, f.db, models.RemoteItem{RemoteID: "x1", ServerID: other.ID, Title: "Up", Type: "Movie",
		Genres: utils.StringList{"Action & Adventure"}, LocalItemID: &c.ID})

	result, err := f.service.AddTagByGenre(ctx, "Action & Adventure")
	require.NoError(t, err)
	assert.Equal(t, "Action & Adventure", result.Tag.Name)
	assert.Equal(t, 1, result.Tagged)

	assert.Equal(t, []string{"Action & Adventure"}, tagNames(t, f.db, a.ID))
	assert.Empty(t, tagNames(t, f.db, b.ID))
	assert.Empty(t, tagNames(t, f.db, c.ID))

	again, err := f.service.AddTagByGenre(ctx, "Action & Adventure")
	require.NoError(t, err)
	assert.Equal(t, result.Tag.ID, again.Tag.ID)
	assert.Len(t, tagNames(t, f.db, a.ID), 1)

	_, err = f.service.AddTagByGenre(ctx, " ")
	assert.Error(t, err)
}

func TestService_LastReportWithoutArchive(t *testing.T) {
	f := setupCatalogService(t)
	_, err := f.service.LastReport(context.Background())
	assert.ErrorIs(t, err, ErrNoReport)
}

func titles(items []models.LocalItem) []string {
	out := make([]string, 0, len(items))
	for _, i := range items {
		out = append(out, i.Title)
	}
	return out
}

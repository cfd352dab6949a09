package catalog

import (
	"context"
	"errors"
	"testing"

	"emby-tagger/core/emby"
	"emby-tagger/core/metrics"
	"emby-tagger/core/reconcile"
	"emby-tagger/feature/catalog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleCatalog() []emby.Item {
	return []emby.Item{
		{ID: "r1", Name: "Alien", Type: "Movie", Path: "/m/alien/alien.mkv"},
		{ID: "r2", Name: "Kill Bill", Type: "Movie", Path: "/m/kb/kill.bill.cd1.mkv"},
		{ID: "r3", Name: "Kill Bill", Type: "Movie", Path: "/m/kb/kill.bill.cd2.mkv"},
		{ID: "r4", Name: "Blade Runer", Type: "Movie", Path: "/m/br/br.mkv"},
		{ID: "r5", Name: "Zzyzx", Type: "Movie", Path: "/m/z/z.mkv"},
	}
}

func TestSession_Run(t *testing.T) {
	db := setupDB(t)
	server := createServer(t, db, "home")
	createLocal(t, db, models.LocalItem{Title: "Alien", Type: "Movie"})
	createLocal(t, db, models.LocalItem{Title: "Blade Runner", Type: "Movie"})
	createLocal(t, db, models.LocalItem{Title: "Kill Bill", Type: "Movie"})

	remote := &fakeCatalog{items: sampleCatalog()}
	rec := newRecorder()
	session := NewSession(db, zap.NewNop(), remote.factory(), reconcile.DefaultOptions(), WithRecorder(rec))

	report, err := session.Run(context.Background(), server)
	require.NoError(t, err)

	assert.Equal(t, 5, report.Fetched)
	assert.Equal(t, 4, report.Kept)
	assert.Zero(t, report.Pruned)
	require.Len(t, report.MultiPartGroups, 1)
	assert.Equal(t, MultiPartGroup{
		Name:  "Kill Bill",
		Kept:  "r2",
		Paths: []string{"/m/kb/kill.bill.cd1.mkv", "/m/kb/kill.bill.cd2.mkv"},
	}, report.MultiPartGroups[0])

	require.Len(t, report.Results, 4)
	assert.Equal(t, "r1", report.Results[0].Item.RemoteID)
	assert.Equal(t, reconcile.StatusExact, report.Results[0].Status)
	assert.Equal(t, "Alien", report.Results[0].Matches[0].Item.Title)

	assert.Equal(t, "r2", report.Results[1].Item.RemoteID)
	assert.Equal(t, reconcile.StatusExact, report.Results[1].Status)

	assert.Equal(t, "r4", report.Results[2].Item.RemoteID)
	assert.Equal(t, reconcile.StatusMultiple, report.Results[2].Status)
	assert.Equal(t, "Blade Runner", report.Results[2].Matches[0].Item.Title)

	assert.Equal(t, "r5", report.Results[3].Item.RemoteID)
	assert.Equal(t, reconcile.StatusNone, report.Results[3].Status)
	assert.Empty(t, report.Results[3].Matches)

	assert.Equal(t, Summary{Exact: 2, Multiple: 1, None: 1}, report.Summary)

	var rows int64
	require.NoError(t, db.Model(&models.RemoteItem{}).Count(&rows).Error)
	assert.Equal(t, int64(4), rows)

	assert.Equal(t, []string{metrics.OutcomeSuccess}, rec.syncs)
	assert.Equal(t, 5, rec.items[metrics.StageFetched])
	assert.Equal(t, 1, rec.items[metrics.StageCollapsed])
	assert.Equal(t, 4, rec.items[metrics.StageUpserted])
	assert.Equal(t, 2, rec.statuses[string(reconcile.StatusExact)])
}

func TestSession_Run_KeepsFetchOrderAcrossBatches(t *testing.T) {
	prev := bindChunk
	bindChunk = 2
	t.Cleanup(func() { bindChunk = prev })

	db := setupDB(t)
	server := createServer(t, db, "home")
	remote := &fakeCatalog{items: sampleCatalog()}
	session := NewSession(db, zap.NewNop(), remote.factory(), reconcile.DefaultOptions())

	report, err := session.Run(context.Background(), server)
	require.NoError(t, err)

	ids := make([]string, 0, len(report.Results))
	for _, r := range report.Results {
		ids = append(ids, r.Item.RemoteID)
	}
	assert.Equal(t, []string{"r1", "r2", "r4", "r5"}, ids)
}

func TestSession_RunMappedAndPool(t *testing.T) {
	db := setupDB(t)
	home := createServer(t, db, "home")
	other := createServer(t, db, "other")

	alien := createLocal(t, db, models.LocalItem{Title: "Alien", Type: "Movie"})
	heat := createLocal(t, db, models.LocalItem{Title: "Heat", Type: "Movie"})

	// Alien is mapped on this server, Heat only on the other one.
	createRemote(t, db, models.RemoteItem{RemoteID: "r1", ServerID: home.ID, Title: "Alien", Type: "Movie", LocalItemID: &alien.ID})
	createRemote(t, db, models.RemoteItem{RemoteID: "x1", ServerID: other.ID, Title: "Heat", Type: "Movie", LocalItemID: &heat.ID})

	remote := &fakeCatalog{items: []emby.Item{
		{ID: "r1", Name: "Alien", Type: "Movie"},
		{ID: "r2", Name: "Heat", Type: "Movie"},
		{ID: "r3", Name: "Alien", Type: "Movie"},
	}}
	session := NewSession(db, zap.NewNop(), remote.factory(), reconcile.DefaultOptions())

	report, err := session.Run(context.Background(), home)
	require.NoError(t, err)
	require.Len(t, report.Results, 3)

	assert.Equal(t, reconcile.StatusMatched, report.Results[0].Status)
	assert.Empty(t, report.Results[0].Matches)
	require.NotNil(t, report.Results[0].Item.LocalItem)
	assert.Equal(t, "Alien", report.Results[0].Item.LocalItem.Title)

	assert.Equal(t, reconcile.StatusExact, report.Results[1].Status)
	assert.Equal(t, heat.ID, report.Results[1].Matches[0].Item.ID)

	// The local Alien has a row on this server, so it is not in the pool.
	assert.Equal(t, reconcile.StatusNone, report.Results[2].Status)
}

func TestSession_RunPrunes(t *testing.T) {
	db := setupDB(t)
	server := createServer(t, db, "home")
	for _, id := range []string{"A", "B", "C"} {
		createRemote(t, db, models.RemoteItem{RemoteID: id, ServerID: server.ID, Title: id, Type: "Movie"})
	}

	remote := &fakeCatalog{items: []emby.Item{
		{ID: "A", Name: "A", Type: "Movie"},
		{ID: "C", Name: "C", Type: "Movie"},
	}}
	session := NewSession(db, zap.NewNop(), remote.factory(), reconcile.DefaultOptions())

	report, err := session.Run(context.Background(), server)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Pruned)

	var left []string
	require.NoError(t, db.Model(&models.RemoteItem{}).Order("remote_id").Pluck("remote_id", &left).Error)
	assert.Equal(t, []string{"A", "C"}, left)
}

func TestSession_RunRemoteFailure(t *testing.T) {
	db := setupDB(t)
	server := createServer(t, db, "home")
	createRemote(t, db, models.RemoteItem{RemoteID: "A", ServerID: server.ID, Title: "A", Type: "Movie"})

	remote := &fakeCatalog{err: errors.New("dial tcp: connection refused")}
	rec := newRecorder()
	session := NewSession(db, zap.NewNop(), remote.factory(), reconcile.DefaultOptions(), WithRecorder(rec))

	report, err := session.Run(context.Background(), server)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.ErrorContains(t, err, "connection refused")

	var rows int64
	require.NoError(t, db.Model(&models.RemoteItem{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
	assert.Equal(t, []string{metrics.OutcomeUnreachable}, rec.syncs)
}

func TestSession_RunEmptyCatalogKeepsMirror(t *testing.T) {
	db := setupDB(t)
	server := createServer(t, db, "home")
	createRemote(t, db, models.RemoteItem{RemoteID: "A", ServerID: server.ID, Title: "A", Type: "Movie"})

	session := NewSession(db, zap.NewNop(), (&fakeCatalog{}).factory(), reconcile.DefaultOptions())

	report, err := session.Run(context.Background(), server)
	require.NoError(t, err)
	assert.Empty(t, report.Results)
	assert.NotNil(t, report.Results)
	assert.Zero(t, report.Fetched)

	var rows int64
	require.NoError(t, db.Model(&models.RemoteItem{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestSession_Rematch(t *testing.T) {
	db := setupDB(t)
	server := createServer(t, db, "home")
	alien := createLocal(t, db, models.LocalItem{Title: "Alien", Type: "Movie"})
	createLocal(t, db, models.LocalItem{Title: "Heat", Type: "Movie"})
	createRemote(t, db, models.RemoteItem{RemoteID: "r2", ServerID: server.ID, Title: "Heat", Type: "Movie"})
	createRemote(t, db, models.RemoteItem{RemoteID: "r1", ServerID: server.ID, Title: "Alien", Type: "Movie", LocalItemID: &alien.ID})

	remote := &fakeCatalog{}
	session := NewSession(db, zap.NewNop(), remote.factory(), reconcile.DefaultOptions())

	report, err := session.Rematch(context.Background(), server)
	require.NoError(t, err)
	assert.Zero(t, remote.calls)

	require.Len(t, report.Results, 2)
	assert.Equal(t, "Alien", report.Results[0].Item.Title)
	assert.Equal(t, reconcile.StatusMatched, report.Results[0].Status)
	assert.Equal(t, "Heat", report.Results[1].Item.Title)
	assert.Equal(t, reconcile.StatusExact, report.Results[1].Status)
	assert.Equal(t, Summary{Matched: 1, Exact: 1}, report.Summary)
}

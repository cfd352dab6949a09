package catalog

import (
	"context"
	"testing"

	"emby-tagger/core/emby"
	"emby-tagger/feature/catalog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMirror_UpsertCreatesRow(t *testing.T) {
	db := setupDB(t)
	server := createServer(t, db, "home")
	mirror := NewMirror(db)

	row, err := mirror.Upsert(context.Background(), server.ID, emby.Item{
		ID:           "r1",
		Name:         "Alien",
		Type:         "Movie",
		PremiereDate: "1979-05-25T00:00:00.0000000Z",
		ProviderIds:  map[string]string{"Imdb": "tt0078748", "Tmdb": ""},
		Genres:       []string{"Horror", "Sci-Fi"},
		Studios:      []emby.NameID{{Name: "20th Century Fox"}},
		People: []emby.Person{
			{Name: "Sigourney Weaver", Type: emby.PersonActor},
			{Name: "Ridley Scott", Type: emby.PersonDirector},
		},
		Path:      "/movies/alien/alien.mkv",
		ImageTags: map[string]string{"Primary": "abc"},
	})
	require.NoError(t, err)

	assert.NotZero(t, row.ID)
	assert.Equal(t, "Alien", row.Title)
	assert.Equal(t, "Alien", row.OriginalTitle)
	assert.Equal(t, 1979, row.ProductionYear)
	require.NotNil(t, row.PremiereDate)
	assert.Equal(t, 1979, row.PremiereDate.Year())
	assert.Equal(t, map[string]string{"Imdb": "tt0078748"}, map[string]string(row.ExternalIDs))
	assert.Equal(t, []string{"Horror", "Sci-Fi"}, []string(row.Genres))
	assert.Equal(t, []string{"20th Century Fox"}, []string(row.Studios))
	assert.Equal(t, []string{"Sigourney Weaver"}, []string(row.Actors))
	assert.Equal(t, []string{"Ridley Scott"}, []string(row.Directors))
	assert.Equal(t, "abc", row.PosterTag)
	assert.Nil(t, row.LocalItemID)
}

func TestMirror_UpsertKeepsMapping(t *testing.T) {
	db := setupDB(t)
	server := createServer(t, db, "home")
	local := createLocal(t, db, models.LocalItem{Title: "Alien", Type: "Movie"})
	mirror := NewMirror(db)
	ctx := context.Background()

	first, err := mirror.Upsert(ctx, server.ID, emby.Item{ID: "r1", Name: "Alien", Type: "Movie", Genres: []string{"Horror"}})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.RemoteItem{}).Where("id = ?", first.ID).Update("local_item_id", local.ID).Error)

	second, err := mirror.Upsert(ctx, server.ID, emby.Item{ID: "r1", Name: "Alien (Director's Cut)", Type: "Movie", Genres: []string{}})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Alien (Director's Cut)", second.Title)
	assert.Empty(t, second.Genres)
	require.NotNil(t, second.LocalItemID)
	assert.Equal(t, local.ID, *second.LocalItemID)

	var count int64
	require.NoError(t, db.Model(&models.RemoteItem{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMirror_SameRemoteIDOnTwoServers(t *testing.T) {
	db := setupDB(t)
	a := createServer(t, db, "a")
	b := createServer(t, db, "b")
	mirror := NewMirror(db)
	ctx := context.Background()

	ra, err := mirror.Upsert(ctx, a.ID, emby.Item{ID: "r1", Name: "Alien", Type: "Movie"})
	require.NoError(t, err)
	rb, err := mirror.Upsert(ctx, b.ID, emby.Item{ID: "r1", Name: "Alien", Type: "Movie"})
	require.NoError(t, err)

	assert.NotEqual(t, ra.ID, rb.ID)
}

func TestMirror_PruneMissing(t *testing.T) {
	db := setupDB(t)
	a := createServer(t, db, "a")
	b := createServer(t, db, "b")
	mirror := NewMirror(db)
	ctx := context.Background()

	for _, id := range []string{"r1", "r2", "r3"} {
		_, err := mirror.Upsert(ctx, a.ID, emby.Item{ID: id, Name: id, Type: "Movie"})
		require.NoError(t, err)
	}
	_, err := mirror.Upsert(ctx, b.ID, emby.Item{ID: "r9", Name: "r9", Type: "Movie"})
	require.NoError(t, err)

	pruned, err := mirror.PruneMissing(ctx, a.ID, []string{"r1", "r3"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	var left []string
	require.NoError(t, db.Model(&models.RemoteItem{}).Where("server_id = ?", a.ID).Order("remote_id").Pluck("remote_id", &left).Error)
	assert.Equal(t, []string{"r1", "r3"}, left)

	t.Run("Empty Set Clears Server", func(t *testing.T) {
		pruned, err := mirror.PruneMissing(ctx, a.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(2), pruned)

		var other int64
		require.NoError(t, db.Model(&models.RemoteItem{}).Where("server_id = ?", b.ID).Count(&other).Error)
		assert.Equal(t, int64(1), other)
	})
}

func TestMirror_PruneMissing_ManyRows(t *testing.T) {
	prev := bindChunk
	bindChunk = 2
	t.Cleanup(func() { bindChunk = prev })

	db := setupDB(t)
	server := createServer(t, db, "a")
	mirror := NewMirror(db)
	ctx := context.Background()

	for _, id := range []string{"r1", "r2", "r3", "r4", "r5", "r6"} {
		_, err := mirror.Upsert(ctx, server.ID, emby.Item{ID: id, Name: id, Type: "Movie"})
		require.NoError(t, err)
	}

	pruned, err := mirror.PruneMissing(ctx, server.ID, []string{"r2", "r5"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), pruned)

	var left []string
	require.NoError(t, db.Model(&models.RemoteItem{}).Where("server_id = ?", server.ID).Order("remote_id").Pluck("remote_id", &left).Error)
	assert.Equal(t, []string{"r2", "r5"}, left)
}

func TestFromRemote_Fallbacks(t *testing.T) {
	row := fromRemote(7, emby.Item{ID: "x", Name: "Heat", OriginalTitle: "", PremiereDate: "1995-12-15", ProductionYear: 0})
	assert.Equal(t, uint(7), row.ServerID)
	assert.Equal(t, "Heat", row.OriginalTitle)
	assert.Equal(t, 1995, row.ProductionYear)
	assert.NotNil(t, row.Genres)
	assert.NotNil(t, row.Actors)

	row = fromRemote(7, emby.Item{ID: "y", Name: "Heat", OriginalTitle: "Heat (1995)", ProductionYear: 1996, PremiereDate: "1995-12-15"})
	assert.Equal(t, "Heat (1995)", row.OriginalTitle)
	assert.Equal(t, 1996, row.ProductionYear)
}

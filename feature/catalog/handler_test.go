package catalog

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"emby-tagger/core/emby"
	"emby-tagger/core/reconcile"
	"emby-tagger/feature/catalog/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newApp(t *testing.T, svc *Service) *fiber.App {
	t.Helper()
	app := fiber.New()
	require.NoError(t, NewFeature(svc).Load(app))
	return app
}

func request(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, raw
}

func TestHandleSync(t *testing.T) {
	f := setupCatalogService(t)
	createLocal(t, f.db, models.LocalItem{Title: "Alien", Type: "Movie"})
	f.remote.items = []emby.Item{{ID: "r1", Name: "Alien", Type: "Movie"}}
	app := newApp(t, f.service)

	resp, raw := request(t, app, http.MethodPost, "/catalog/sync", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report SyncReport
	require.NoError(t, json.Unmarshal(raw, &report))
	require.Len(t, report.Results, 1)
	assert.Equal(t, reconcile.StatusExact, report.Results[0].Status)
	assert.Equal(t, "Alien", report.Results[0].Matches[0].Item.Title)
}

func TestHandleSync_RemoteUnavailable(t *testing.T) {
	f := setupCatalogService(t)
	f.remote.err = errors.New("timeout")
	app := newApp(t, f.service)

	resp, raw := request(t, app, http.MethodPost, "/catalog/sync", "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, string(raw), "remote catalog unavailable")
}

func TestHandle_NoActiveServer(t *testing.T) {
	db := setupDB(t)
	session := NewSession(db, zap.NewNop(), (&fakeCatalog{}).factory(), reconcile.DefaultOptions())
	svc := NewService(db, zap.NewNop(), noActive, session, NewExecutor(db, zap.NewNop(), nil), nil)
	app := newApp(t, svc)

	for _, path := range []string{"/catalog/view", "/catalog/unmapped"} {
		resp, _ := request(t, app, http.MethodGet, path, "")
		assert.Equal(t, http.StatusConflict, resp.StatusCode, path)
	}
	resp, _ := request(t, app, http.MethodPost, "/catalog/sync", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHandleApply(t *testing.T) {
	f := setupCatalogService(t)
	remote := createRemote(t, f.db, models.RemoteItem{RemoteID: "r1", ServerID: f.server.ID, Title: "Alien", Type: "Movie"})
	app := newApp(t, f.service)

	resp, raw := request(t, app, http.MethodPost, "/catalog/operations",
		`{"operations":[{"type":"create","remoteItemId":1},{"type":"unmap","remoteItemId":77}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result reconcile.BatchResult
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Equal(t, []uint{remote.ID}, result.Success)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, uint(77), result.Failed[0].ID)
}

func TestHandleApply_Validation(t *testing.T) {
	f := setupCatalogService(t)
	app := newApp(t, f.service)

	t.Run("Empty Batch", func(t *testing.T) {
		resp, _ := request(t, app, http.MethodPost, "/catalog/operations", `{"operations":[]}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Unknown Type", func(t *testing.T) {
		resp, raw := request(t, app, http.MethodPost, "/catalog/operations", `{"operations":[{"type":"merge","remoteItemId":1}]}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(raw), "operations[0].type")
	})

	t.Run("Malformed Body", func(t *testing.T) {
		resp, _ := request(t, app, http.MethodPost, "/catalog/operations", `{"operations":`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestHandleUnmappedAndGenreTags(t *testing.T) {
	f := setupCatalogService(t)
	createLocal(t, f.db, models.LocalItem{Title: "Heat", Type: "Movie"})
	app := newApp(t, f.service)

	resp, raw := request(t, app, http.MethodGet, "/catalog/unmapped?search=hea", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var items []models.LocalItem
	require.NoError(t, json.Unmarshal(raw, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Heat", items[0].Title)

	resp, _ = request(t, app, http.MethodPost, "/catalog/genre-tags", `{"genre":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw = request(t, app, http.MethodPost, "/catalog/genre-tags", `{"genre":"Crime"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result GenreTagResult
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Equal(t, "Crime", result.Tag.Name)
	assert.Zero(t, result.Tagged)
}

func TestHandleLastReport_NotFound(t *testing.T) {
	f := setupCatalogService(t)
	app := newApp(t, f.service)

	resp, _ := request(t, app, http.MethodGet, "/catalog/sync/last", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

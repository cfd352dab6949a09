package integrity

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"emby-tagger/core/emby"
	"emby-tagger/core/storage/mocks"
	"emby-tagger/feature/catalog/models"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func get(t *testing.T, app *fiber.App, path string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func newApp(t *testing.T, svc *Service) *fiber.App {
	t.Helper()
	app := fiber.New()
	require.NoError(t, NewFeature(svc).Load(app))
	return app
}

func TestHandleIntegrityCheck(t *testing.T) {
	fake := &fakeServers{
		active: &models.RemoteServer{ID: 1, Name: "Home", URL: "http://emby.local", APIKey: "k"},
		err:    emby.ErrUnreachable,
	}
	app := newApp(t, NewService(setupDB(t), nil, storageCfg, fake, zap.NewNop()))

	status, body := get(t, app, "/integrity")
	assert.Equal(t, http.StatusOK, status)

	schema := body["schema"].(map[string]interface{})
	assert.Equal(t, true, schema["matched"])

	storage := body["storage"].(map[string]interface{})
	assert.Equal(t, "disabled", storage["status"])

	remote := body["remote"].(map[string]interface{})
	assert.Equal(t, false, remote["reachable"])
	assert.Equal(t, emby.ErrUnreachable.Error(), remote["error"])
}

func TestHandleStorageCheck(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		app := newApp(t, NewService(setupDB(t), nil, storageCfg, &fakeServers{}, zap.NewNop()))
		status, _ := get(t, app, "/integrity/storage")
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("Fix", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "reports").Return(false, nil)
		mockClient.On("MakeBucket", mock.Anything, "reports", minio.MakeBucketOptions{Region: "us-east-1"}).Return(nil)
		app := newApp(t, NewService(setupDB(t), mockClient, storageCfg, &fakeServers{}, zap.NewNop()))

		status, body := get(t, app, "/integrity/storage?fix=true")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "fixed", body["status"])
		mockClient.AssertExpectations(t)
	})

	t.Run("Check Only", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "reports").Return(false, nil)
		app := newApp(t, NewService(setupDB(t), mockClient, storageCfg, &fakeServers{}, zap.NewNop()))

		status, body := get(t, app, "/integrity/storage")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, false, body["exists"])
		mockClient.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandleRemoteCheck_NoActiveServer(t *testing.T) {
	app := newApp(t, NewService(setupDB(t), nil, storageCfg, &fakeServers{}, zap.NewNop()))

	status, body := get(t, app, "/integrity/remote")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "no active server", body["error"])
}

func TestHandleSchemaCheck(t *testing.T) {
	app := newApp(t, NewService(setupDB(t), nil, storageCfg, &fakeServers{}, zap.NewNop()))

	status, body := get(t, app, "/integrity/schema")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["matched"])
}

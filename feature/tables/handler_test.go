package tables_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"offrows/core/database"
	"offrows/feature/tables"
	"offrows/feature/tables/models"
	"offrows/feature/tables/sync"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Table{}, &models.Row{}, &models.View{}))

	app := fiber.New()
	tables.NewHandler(tables.NewService(zap.NewNop(), db)).RegisterRoutes(app)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) (int, []byte) {
	t.Helper()
	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func TestHandleSyncEndToEnd(t *testing.T) {
	app := newTestApp(t)

	batch := sync.Batch{
		Tables: []sync.TableInput{{ID: "local-1", Name: "Inventory", Version: 1}},
		Rows: []sync.RowInput{{
			TableID: "local-1",
			Data:    models.RowData{"name": models.StringValue("Widget")},
		}},
	}

	code, raw := postJSON(t, app, "/tables/sync", batch)
	require.Equal(t, 200, code)

	var result sync.Result
	require.NoError(t, json.Unmarshal(raw, &result))
	require.Len(t, result.Tables, 1)
	require.Len(t, result.Rows, 1)
	assert.Empty(t, result.Conflicts)
	assert.Equal(t, result.Tables[0].ID, result.Rows[0].TableID)

	// The synced table is now visible through the plain REST surface.
	req := httptest.NewRequest("GET", fmt.Sprintf("/tables/%d/rows", result.Tables[0].ID), nil)
	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var rows []models.Row
	raw, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Widget", rows[0].Data["name"].AsString())
}

func TestHandleSyncRejectsMalformedBody(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest("POST", "/tables/sync", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestTableCRUD(t *testing.T) {
	app := newTestApp(t)

	code, raw := postJSON(t, app, "/tables", models.Table{Name: "Inventory"})
	require.Equal(t, 201, code)
	var created models.Table
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.Greater(t, created.ID, 0)
	assert.Equal(t, 1, created.Version)

	// Duplicate name is rejected.
	code, _ = postJSON(t, app, "/tables", models.Table{Name: "Inventory"})
	assert.Equal(t, 409, code)

	// Missing name is rejected.
	code, _ = postJSON(t, app, "/tables", models.Table{})
	assert.Equal(t, 400, code)

	req := httptest.NewRequest("GET", fmt.Sprintf("/tables/%d", created.ID), nil)
	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	req = httptest.NewRequest("DELETE", fmt.Sprintf("/tables/%d", created.ID), nil)
	resp, err = app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)

	req = httptest.NewRequest("GET", fmt.Sprintf("/tables/%d", created.ID), nil)
	resp, err = app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestRowRoutes(t *testing.T) {
	app := newTestApp(t)

	code, raw := postJSON(t, app, "/tables", models.Table{Name: "Inventory"})
	require.Equal(t, 201, code)
	var table models.Table
	require.NoError(t, json.Unmarshal(raw, &table))

	code, raw = postJSON(t, app, fmt.Sprintf("/tables/%d/rows", table.ID), models.Row{
		Data: models.RowData{"name": models.StringValue("Widget")},
	})
	require.Equal(t, 201, code)
	var row models.Row
	require.NoError(t, json.Unmarshal(raw, &row))
	assert.Contains(t, row.RowKey, "row_")
	assert.Equal(t, 1, row.Version)

	// Identical content collides on the content key.
	code, _ = postJSON(t, app, fmt.Sprintf("/tables/%d/rows", table.ID), models.Row{
		Data: models.RowData{"name": models.StringValue("Widget")},
	})
	assert.Equal(t, 409, code)

	// Rows in a missing table 404.
	code, _ = postJSON(t, app, "/tables/999/rows", models.Row{
		Data: models.RowData{"name": models.StringValue("Orphan")},
	})
	assert.Equal(t, 404, code)

	req := httptest.NewRequest("GET", fmt.Sprintf("/rows/%d", row.ID), nil)
	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	req = httptest.NewRequest("DELETE", fmt.Sprintf("/rows/%d", row.ID), nil)
	resp, err = app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
}

func TestViewRoutes(t *testing.T) {
	app := newTestApp(t)

	code, raw := postJSON(t, app, "/tables", models.Table{Name: "Inventory"})
	require.Equal(t, 201, code)
	var table models.Table
	require.NoError(t, json.Unmarshal(raw, &table))

	code, raw = postJSON(t, app, fmt.Sprintf("/tables/%d/views", table.ID), models.View{Name: "All"})
	require.Equal(t, 201, code)
	var view models.View
	require.NoError(t, json.Unmarshal(raw, &view))
	assert.Equal(t, models.RowHeightDefault, view.RowHeight)

	req := httptest.NewRequest("GET", fmt.Sprintf("/views/%d", view.ID), nil)
	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	req = httptest.NewRequest("GET", "/views/12345", nil)
	resp, err = app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

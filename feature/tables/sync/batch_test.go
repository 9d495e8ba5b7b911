package sync_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"offrows/core/database"
	"offrows/feature/tables/models"
	"offrows/feature/tables/sync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newSyncDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Table{}, &models.Row{}, &models.View{}))
	return db
}

func widgetData(name string, price float64) models.RowData {
	return models.RowData{
		"name":  models.StringValue(name),
		"price": models.NumberValue(price),
	}
}

func TestApplyInsertsNewBatch(t *testing.T) {
	db := newSyncDB(t)

	batch := &sync.Batch{
		Tables: []sync.TableInput{{
			ID:   "local-1",
			Name: "Inventory",
			Fields: models.FieldList{
				{ID: "f1", Name: "Name", Type: models.FieldText},
				{ID: "f2", Name: "Price", Type: models.FieldNumber},
			},
			Version: 1,
		}},
		Rows: []sync.RowInput{
			{TableID: "local-1", Data: widgetData("Widget", 9.5), Order: 1},
			{TableID: "local-1", Data: widgetData("Gadget", 4.0), Order: 2},
		},
		Views: []sync.ViewInput{
			{TableID: "local-1", Name: "All", IsDefault: true},
		},
	}

	res, err := sync.Apply(context.Background(), db, zap.NewNop(), batch)
	require.NoError(t, err)
	assert.Empty(t, res.Conflicts)

	require.Len(t, res.Tables, 1)
	table := res.Tables[0]
	assert.Greater(t, table.ID, 0)
	assert.Equal(t, 1, table.Version)

	require.Len(t, res.Rows, 2)
	for _, row := range res.Rows {
		assert.Equal(t, table.ID, row.TableID)
		assert.Equal(t, 1, row.Version)
		assert.Contains(t, row.RowKey, "row_")
	}

	require.Len(t, res.Views, 1)
	assert.Equal(t, table.ID, res.Views[0].TableID)
	assert.Equal(t, models.RowHeightDefault, res.Views[0].RowHeight)
	assert.Equal(t, 1, res.Views[0].Version)
}

func TestApplyReplayDoesNotDuplicateRows(t *testing.T) {
	db := newSyncDB(t)

	batch := &sync.Batch{
		Tables: []sync.TableInput{{ID: "local-1", Name: "Inventory", Version: 1}},
		Rows: []sync.RowInput{
			{TableID: "local-1", Data: widgetData("Widget", 9.5), Version: 1},
			{TableID: "local-1", Data: widgetData("Gadget", 4.0), Version: 1},
		},
	}

	_, err := sync.Apply(context.Background(), db, zap.NewNop(), batch)
	require.NoError(t, err)

	// The retry carries the exact same content and versions.
	res, err := sync.Apply(context.Background(), db, zap.NewNop(), batch)
	require.NoError(t, err)
	assert.Empty(t, res.Conflicts)

	var tableCount, rowCount int64
	db.Model(&models.Table{}).Count(&tableCount)
	db.Model(&models.Row{}).Count(&rowCount)
	assert.Equal(t, int64(1), tableCount)
	assert.Equal(t, int64(2), rowCount)

	// Replayed rows come back unchanged, still at version 1.
	for _, row := range res.Rows {
		assert.Equal(t, 1, row.Version)
	}
}

func TestApplyResolvesTableByName(t *testing.T) {
	db := newSyncDB(t)

	existing := models.Table{Name: "Inventory", Version: 3}
	require.NoError(t, db.Create(&existing).Error)

	batch := &sync.Batch{
		Tables: []sync.TableInput{{ID: "local-9", Name: "Inventory", Version: 1}},
	}
	res, err := sync.Apply(context.Background(), db, zap.NewNop(), batch)
	require.NoError(t, err)

	require.Len(t, res.Tables, 1)
	assert.Equal(t, existing.ID, res.Tables[0].ID)
	assert.Equal(t, 3, res.Tables[0].Version)

	var count int64
	db.Model(&models.Table{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestApplyResolvesTableByID(t *testing.T) {
	db := newSyncDB(t)

	existing := models.Table{Name: "Inventory", Version: 2}
	require.NoError(t, db.Create(&existing).Error)

	// Client renamed the table locally; resolution by id still wins and the
	// stored document is returned untouched.
	batch := &sync.Batch{
		Tables: []sync.TableInput{{ID: strconv.Itoa(existing.ID), Name: "Renamed", Version: 5}},
	}
	res, err := sync.Apply(context.Background(), db, zap.NewNop(), batch)
	require.NoError(t, err)

	require.Len(t, res.Tables, 1)
	assert.Equal(t, existing.ID, res.Tables[0].ID)
	assert.Equal(t, "Inventory", res.Tables[0].Name)
}

func TestApplyRowWithoutParentTable(t *testing.T) {
	db := newSyncDB(t)

	batch := &sync.Batch{
		Rows: []sync.RowInput{
			{ID: "7", TableID: "999", Data: widgetData("Orphan", 1)},
		},
	}
	res, err := sync.Apply(context.Background(), db, zap.NewNop(), batch)
	require.NoError(t, err)

	assert.Empty(t, res.Rows)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, sync.KindRow, res.Conflicts[0].Type)
	assert.Equal(t, "7", res.Conflicts[0].ID)
	assert.Contains(t, res.Conflicts[0].Message, "does not exist")

	var count int64
	db.Model(&models.Row{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestApplyRecreatesRowDeletedOnServer(t *testing.T) {
	db := newSyncDB(t)

	table := models.Table{Name: "Inventory", Version: 1}
	require.NoError(t, db.Create(&table).Error)

	// The client still references a row id the server no longer has.
	batch := &sync.Batch{
		Rows: []sync.RowInput{
			{ID: "42", TableID: strconv.Itoa(table.ID), Data: widgetData("Ghost", 2), Version: 4},
		},
	}
	res, err := sync.Apply(context.Background(), db, zap.NewNop(), batch)
	require.NoError(t, err)

	assert.Empty(t, res.Conflicts)
	require.Len(t, res.Rows, 1)
	assert.NotEqual(t, 42, res.Rows[0].ID)
	assert.Equal(t, 1, res.Rows[0].Version)
}

func TestApplyRowVersionMerge(t *testing.T) {
	db := newSyncDB(t)

	table := models.Table{Name: "Inventory", Version: 1}
	require.NoError(t, db.Create(&table).Error)

	seed := func(name string, version int) models.Row {
		row := models.Row{
			TableID: table.ID,
			RowKey:  sync.DeriveRowKey(table.ID, widgetData(name, 9.5)),
			Data:    widgetData(name, 9.5),
			Version: version,
		}
		require.NoError(t, db.Create(&row).Error)
		return row
	}

	t.Run("EqualVersionWins", func(t *testing.T) {
		row := seed("Widget", 2)
		batch := &sync.Batch{Rows: []sync.RowInput{{
			ID: strconv.Itoa(row.ID), TableID: strconv.Itoa(table.ID),
			Data: widgetData("Widget", 10), Version: 2,
		}}}
		res, err := sync.Apply(context.Background(), db, zap.NewNop(), batch)
		require.NoError(t, err)

		assert.Empty(t, res.Conflicts)
		require.Len(t, res.Rows, 1)
		assert.Equal(t, 3, res.Rows[0].Version)
		assert.Equal(t, 10.0, res.Rows[0].Data["price"].AsNumber())
	})

	t.Run("StaleVersionOlderTimestampLoses", func(t *testing.T) {
		row := seed("Gadget", 5)
		earlier := time.Now().Add(-time.Hour)
		batch := &sync.Batch{Rows: []sync.RowInput{{
			ID: strconv.Itoa(row.ID), TableID: strconv.Itoa(table.ID),
			Data: widgetData("Gadget", 1), Version: 2, UpdatedAt: &earlier,
		}}}
		res, err := sync.Apply(context.Background(), db, zap.NewNop(), batch)
		require.NoError(t, err)

		require.Len(t, res.Conflicts, 1)
		assert.Equal(t, sync.KindRow, res.Conflicts[0].Type)
		assert.Contains(t, res.Conflicts[0].Message, "behind server version")

		// The server copy comes back so the client can refresh.
		require.Len(t, res.Rows, 1)
		assert.Equal(t, 5, res.Rows[0].Version)
		assert.Equal(t, 9.5, res.Rows[0].Data["price"].AsNumber())
	})

	t.Run("StaleVersionLaterTimestampWins", func(t *testing.T) {
		row := seed("Gizmo", 5)
		later := time.Now().Add(time.Hour)
		batch := &sync.Batch{Rows: []sync.RowInput{{
			ID: strconv.Itoa(row.ID), TableID: strconv.Itoa(table.ID),
			Data: widgetData("Gizmo", 2), Version: 2, UpdatedAt: &later,
		}}}
		res, err := sync.Apply(context.Background(), db, zap.NewNop(), batch)
		require.NoError(t, err)

		assert.Empty(t, res.Conflicts)
		require.Len(t, res.Rows, 1)
		assert.Equal(t, 6, res.Rows[0].Version) // max(5, 2) + 1
		assert.Equal(t, 2.0, res.Rows[0].Data["price"].AsNumber())
	})
}

func TestApplyContentKeyMergeRequiresNewerVersion(t *testing.T) {
	db := newSyncDB(t)

	table := models.Table{Name: "Inventory", Version: 1}
	require.NoError(t, db.Create(&table).Error)

	key := sync.DeriveRowKey(table.ID, widgetData("Widget", 9.5))
	row := models.Row{
		TableID: table.ID,
		RowKey:  key,
		Data:    widgetData("Widget", 9.5),
		Version: 1,
	}
	require.NoError(t, db.Create(&row).Error)

	t.Run("EqualVersionKeepsServerRow", func(t *testing.T) {
		batch := &sync.Batch{Rows: []sync.RowInput{{
			TableID: strconv.Itoa(table.ID), RowKey: key,
			Data: widgetData("Widget", 99), Version: 1,
		}}}
		res, err := sync.Apply(context.Background(), db, zap.NewNop(), batch)
		require.NoError(t, err)

		assert.Empty(t, res.Conflicts)
		require.Len(t, res.Rows, 1)
		assert.Equal(t, 1, res.Rows[0].Version)
		assert.Equal(t, 9.5, res.Rows[0].Data["price"].AsNumber())
	})

	t.Run("NewerVersionUpdates", func(t *testing.T) {
		batch := &sync.Batch{Rows: []sync.RowInput{{
			TableID: strconv.Itoa(table.ID), RowKey: key,
			Data: widgetData("Widget", 12), Version: 2,
		}}}
		res, err := sync.Apply(context.Background(), db, zap.NewNop(), batch)
		require.NoError(t, err)

		assert.Empty(t, res.Conflicts)
		require.Len(t, res.Rows, 1)
		assert.Equal(t, 3, res.Rows[0].Version) // max(1, 2) + 1
		assert.Equal(t, 12.0, res.Rows[0].Data["price"].AsNumber())
	})
}

func TestApplyViewMerge(t *testing.T) {
	db := newSyncDB(t)

	table := models.Table{Name: "Inventory", Version: 1}
	require.NoError(t, db.Create(&table).Error)

	view := models.View{TableID: table.ID, Name: "All", RowHeight: models.RowHeightDefault, Version: 3}
	require.NoError(t, db.Create(&view).Error)

	t.Run("AcceptedUpdate", func(t *testing.T) {
		batch := &sync.Batch{Views: []sync.ViewInput{{
			ID: strconv.Itoa(view.ID), TableID: strconv.Itoa(table.ID),
			Name: "Everything", RowHeight: models.RowHeightLarge, Version: 3,
		}}}
		res, err := sync.Apply(context.Background(), db, zap.NewNop(), batch)
		require.NoError(t, err)

		assert.Empty(t, res.Conflicts)
		require.Len(t, res.Views, 1)
		assert.Equal(t, "Everything", res.Views[0].Name)
		assert.Equal(t, models.RowHeightLarge, res.Views[0].RowHeight)
		assert.Equal(t, 4, res.Views[0].Version)
	})

	t.Run("StaleUpdateLoses", func(t *testing.T) {
		earlier := time.Now().Add(-time.Hour)
		batch := &sync.Batch{Views: []sync.ViewInput{{
			ID: strconv.Itoa(view.ID), TableID: strconv.Itoa(table.ID),
			Name: "Stale", Version: 1, UpdatedAt: &earlier,
		}}}
		res, err := sync.Apply(context.Background(), db, zap.NewNop(), batch)
		require.NoError(t, err)

		require.Len(t, res.Conflicts, 1)
		assert.Equal(t, sync.KindView, res.Conflicts[0].Type)
		require.Len(t, res.Views, 1)
		assert.Equal(t, "Everything", res.Views[0].Name)
	})

	t.Run("DeletedViewRecreated", func(t *testing.T) {
		batch := &sync.Batch{Views: []sync.ViewInput{{
			ID: "4040", TableID: strconv.Itoa(table.ID), Name: "Fresh", Version: 2,
		}}}
		res, err := sync.Apply(context.Background(), db, zap.NewNop(), batch)
		require.NoError(t, err)

		assert.Empty(t, res.Conflicts)
		require.Len(t, res.Views, 1)
		assert.NotEqual(t, 4040, res.Views[0].ID)
		assert.Equal(t, 1, res.Views[0].Version)
	})
}

func TestApplyMalformedIDs(t *testing.T) {
	db := newSyncDB(t)

	table := models.Table{Name: "Inventory", Version: 1}
	require.NoError(t, db.Create(&table).Error)

	batch := &sync.Batch{
		Rows: []sync.RowInput{
			{ID: "not-a-number", TableID: strconv.Itoa(table.ID), Data: widgetData("X", 1)},
		},
		Views: []sync.ViewInput{
			{ID: "-3", TableID: strconv.Itoa(table.ID), Name: "Bad"},
		},
	}
	res, err := sync.Apply(context.Background(), db, zap.NewNop(), batch)
	require.NoError(t, err)

	assert.Empty(t, res.Rows)
	assert.Empty(t, res.Views)
	require.Len(t, res.Conflicts, 2)
	assert.Equal(t, sync.KindRow, res.Conflicts[0].Type)
	assert.Equal(t, sync.KindView, res.Conflicts[1].Type)
}

func TestApplyMapsClientTableIDsAcrossBatch(t *testing.T) {
	db := newSyncDB(t)

	// One batch carrying two new tables; rows and views must land in the
	// right one through the client-id remap.
	batch := &sync.Batch{
		Tables: []sync.TableInput{
			{ID: "local-a", Name: "Alpha", Version: 1},
			{ID: "local-b", Name: "Beta", Version: 1},
		},
		Rows: []sync.RowInput{
			{TableID: "local-b", Data: widgetData("InBeta", 1)},
		},
		Views: []sync.ViewInput{
			{TableID: "local-a", Name: "AlphaView"},
		},
	}
	res, err := sync.Apply(context.Background(), db, zap.NewNop(), batch)
	require.NoError(t, err)

	require.Len(t, res.Tables, 2)
	alpha, beta := res.Tables[0], res.Tables[1]
	require.Equal(t, "Alpha", alpha.Name)
	require.Equal(t, "Beta", beta.Name)

	require.Len(t, res.Rows, 1)
	assert.Equal(t, beta.ID, res.Rows[0].TableID)
	require.Len(t, res.Views, 1)
	assert.Equal(t, alpha.ID, res.Views[0].TableID)
}

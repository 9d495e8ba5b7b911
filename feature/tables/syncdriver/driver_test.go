package syncdriver_test

import (
	"context"
	"testing"

	"offrows/feature/tables/models"
	"offrows/feature/tables/sync"
	"offrows/feature/tables/syncdriver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) PushBatch(ctx context.Context, batch *sync.Batch) (*sync.Result, error) {
	args := m.Called(ctx, batch)
	if r, ok := args.Get(0).(*sync.Result); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) FetchTables(ctx context.Context) ([]models.Table, error) {
	args := m.Called(ctx)
	if r, ok := args.Get(0).([]models.Table); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) FetchRows(ctx context.Context, tableID int) ([]models.Row, error) {
	args := m.Called(ctx, tableID)
	if r, ok := args.Get(0).([]models.Row); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) FetchViews(ctx context.Context, tableID int) ([]models.View, error) {
	args := m.Called(ctx, tableID)
	if r, ok := args.Get(0).([]models.View); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) FetchRow(ctx context.Context, id int) (*models.Row, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*models.Row); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) FetchView(ctx context.Context, id int) (*models.View, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*models.View); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestStore(t *testing.T) syncdriver.Store {
	t.Helper()
	store, err := syncdriver.NewStore(":memory:")
	require.NoError(t, err)
	return store
}

func newTestDriver(t *testing.T, api syncdriver.API) (*syncdriver.Driver, syncdriver.Store) {
	t.Helper()
	store := newTestStore(t)
	cfg := syncdriver.Config{MinSyncIntervalSeconds: 0}
	return syncdriver.NewDriver(cfg, store, api, zap.NewNop()), store
}

func widgetData(name string) models.RowData {
	return models.RowData{"name": models.StringValue(name)}
}

func TestPushAssignsServerIDs(t *testing.T) {
	ctx := context.Background()
	api := new(mockAPI)
	driver, store := newTestDriver(t, api)

	table := &syncdriver.LocalTable{Name: "Inventory", Version: 1, Dirty: true}
	require.NoError(t, store.SaveTable(ctx, table))
	row := &syncdriver.LocalRow{TableID: table.ID, Data: widgetData("Widget"), Version: 1, Dirty: true}
	require.NoError(t, store.SaveRow(ctx, row))

	serverKey := sync.DeriveRowKey(10, widgetData("Widget"))
	api.On("PushBatch", mock.Anything, mock.Anything).Return(&sync.Result{
		Tables: []models.Table{{ID: 10, Name: "Inventory", Version: 1}},
		Rows: []models.Row{{
			ID: 100, TableID: 10, RowKey: serverKey,
			Data: widgetData("Widget"), Version: 1,
		}},
		Views:     []models.View{},
		Conflicts: []sync.Conflict{},
	}, nil)

	report, err := driver.Push(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Tables)
	assert.Equal(t, 1, report.Rows)
	assert.Empty(t, report.Conflicts)

	synced, err := store.TableByName(ctx, "Inventory")
	require.NoError(t, err)
	require.NotNil(t, synced)
	assert.Equal(t, 10, synced.ServerID)
	assert.False(t, synced.Dirty)

	localRow, err := store.RowByServerID(ctx, 100)
	require.NoError(t, err)
	require.NotNil(t, localRow)
	assert.Equal(t, serverKey, localRow.RowKey)
	assert.False(t, localRow.Dirty)

	// The batch carried the client-local table marker, not a server id.
	batch := api.Calls[0].Arguments.Get(1).(*sync.Batch)
	require.Len(t, batch.Tables, 1)
	assert.Contains(t, batch.Tables[0].ID, "local-")
	require.Len(t, batch.Rows, 1)
	assert.Equal(t, "", batch.Rows[0].ID)
	assert.Equal(t, batch.Tables[0].ID, batch.Rows[0].TableID)
}

func TestPushWithNothingDirty(t *testing.T) {
	api := new(mockAPI)
	driver, _ := newTestDriver(t, api)

	report, err := driver.Push(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Tables)
	assert.Zero(t, report.Rows)
	api.AssertNotCalled(t, "PushBatch", mock.Anything, mock.Anything)
}

func TestPushThrottled(t *testing.T) {
	api := new(mockAPI)
	store := newTestStore(t)
	cfg := syncdriver.Config{MinSyncIntervalSeconds: 60}
	driver := syncdriver.NewDriver(cfg, store, api, zap.NewNop())

	_, err := driver.Push(context.Background())
	require.NoError(t, err)

	_, err = driver.Push(context.Background())
	assert.ErrorIs(t, err, syncdriver.ErrThrottled)
}

func TestPushRejectsOverlap(t *testing.T) {
	ctx := context.Background()
	api := new(mockAPI)
	driver, store := newTestDriver(t, api)

	require.NoError(t, store.SaveTable(ctx, &syncdriver.LocalTable{Name: "Inventory", Dirty: true}))

	release := make(chan struct{})
	started := make(chan struct{})
	api.On("PushBatch", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		close(started)
		<-release
	}).Return(&sync.Result{
		Tables:    []models.Table{},
		Rows:      []models.Row{},
		Views:     []models.View{},
		Conflicts: []sync.Conflict{},
	}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := driver.Push(ctx)
		done <- err
	}()

	<-started
	assert.Equal(t, syncdriver.StateSyncing, driver.State())
	_, err := driver.Push(ctx)
	assert.ErrorIs(t, err, syncdriver.ErrSyncInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, syncdriver.StateIdle, driver.State())
}

func TestPushConflictRefreshesRowFromServer(t *testing.T) {
	ctx := context.Background()
	api := new(mockAPI)
	driver, store := newTestDriver(t, api)

	table := &syncdriver.LocalTable{Name: "Inventory", ServerID: 10, Dirty: false}
	require.NoError(t, store.SaveTable(ctx, table))
	row := &syncdriver.LocalRow{
		TableID: table.ID, ServerID: 42,
		Data: widgetData("Local"), Version: 2, Dirty: true,
	}
	require.NoError(t, store.SaveRow(ctx, row))

	api.On("PushBatch", mock.Anything, mock.Anything).Return(&sync.Result{
		Tables: []models.Table{},
		Rows:   []models.Row{},
		Views:  []models.View{},
		Conflicts: []sync.Conflict{
			{Type: sync.KindRow, ID: "42", Message: "client version 2 is behind server version 5, keeping server row"},
		},
	}, nil)
	api.On("FetchRow", mock.Anything, 42).Return(&models.Row{
		ID: 42, TableID: 10, Data: widgetData("Server"), Version: 5,
	}, nil)

	report, err := driver.Push(ctx)
	require.NoError(t, err)
	require.Len(t, report.Conflicts, 1)

	refreshed, err := store.RowByServerID(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, refreshed)
	assert.Equal(t, "Server", refreshed.Data["name"].AsString())
	assert.Equal(t, 5, refreshed.Version)
	assert.True(t, refreshed.SyncConflict)
	assert.NotEmpty(t, refreshed.SyncError)
	assert.False(t, refreshed.Dirty)
}

func TestPushConflictDeletesRowGoneFromServer(t *testing.T) {
	ctx := context.Background()
	api := new(mockAPI)
	driver, store := newTestDriver(t, api)

	table := &syncdriver.LocalTable{Name: "Inventory", ServerID: 10, Dirty: false}
	require.NoError(t, store.SaveTable(ctx, table))
	row := &syncdriver.LocalRow{
		TableID: table.ID, ServerID: 42,
		Data: widgetData("Local"), Version: 1, Dirty: true,
	}
	require.NoError(t, store.SaveRow(ctx, row))

	api.On("PushBatch", mock.Anything, mock.Anything).Return(&sync.Result{
		Tables: []models.Table{},
		Rows:   []models.Row{},
		Views:  []models.View{},
		Conflicts: []sync.Conflict{
			{Type: sync.KindRow, ID: "42", Message: "row gone"},
		},
	}, nil)
	api.On("FetchRow", mock.Anything, 42).Return(nil, nil)

	_, err := driver.Push(ctx)
	require.NoError(t, err)

	gone, err := store.RowByServerID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestPullAppliesServerState(t *testing.T) {
	ctx := context.Background()
	api := new(mockAPI)
	driver, store := newTestDriver(t, api)

	// A dirty local edit must survive the pull.
	dirtyTable := &syncdriver.LocalTable{Name: "Drafts", Dirty: true}
	require.NoError(t, store.SaveTable(ctx, dirtyTable))

	api.On("FetchTables", mock.Anything).Return([]models.Table{
		{ID: 10, Name: "Inventory", Version: 2},
	}, nil)
	api.On("FetchRows", mock.Anything, 10).Return([]models.Row{
		{ID: 100, TableID: 10, RowKey: "row_abc", Data: widgetData("Widget"), Version: 1},
	}, nil)
	api.On("FetchViews", mock.Anything, 10).Return([]models.View{
		{ID: 200, TableID: 10, Name: "All", RowHeight: models.RowHeightDefault, Version: 1},
	}, nil)

	report, err := driver.Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Tables)
	assert.Equal(t, 1, report.Rows)
	assert.Equal(t, 1, report.Views)

	pulled, err := store.TableByServerID(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, pulled)
	assert.Equal(t, "Inventory", pulled.Name)
	assert.False(t, pulled.Dirty)

	row, err := store.RowByServerID(ctx, 100)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, pulled.ID, row.TableID)

	view, err := store.ViewByServerID(ctx, 200)
	require.NoError(t, err)
	require.NotNil(t, view)

	kept, err := store.TableByName(ctx, "Drafts")
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.True(t, kept.Dirty)
}

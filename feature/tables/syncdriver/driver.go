package syncdriver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	gosync "sync"
	"time"

	"offrows/feature/tables/models"
	"offrows/feature/tables/sync"

	"go.uber.org/zap"
)

// State is the driver's lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StateSyncing State = "syncing"
)

// ErrSyncInProgress is returned when a sync overlaps a running one.
var ErrSyncInProgress = errors.New("sync already in progress")

// ErrThrottled is returned when a sync is requested before the minimum
// interval since the last one has passed.
var ErrThrottled = errors.New("sync throttled")

// Report summarizes one completed sync round.
type Report struct {
	Tables    int             `json:"tables"`
	Rows      int             `json:"rows"`
	Views     int             `json:"views"`
	Conflicts []sync.Conflict `json:"conflicts"`
	Duration  time.Duration   `json:"duration"`
}

// Driver pushes dirty local records to the server and folds the canonical
// response back into the local store. At most one sync runs at a time;
// overlapping calls fail with ErrSyncInProgress rather than queue.
type Driver struct {
	store  Store
	api    API
	logger *zap.Logger

	minInterval time.Duration

	mu       gosync.Mutex
	state    State
	lastSync time.Time
}

// NewDriver creates a sync driver over a local store and a server transport.
func NewDriver(cfg Config, store Store, api API, logger *zap.Logger) *Driver {
	interval := cfg.MinSyncIntervalSeconds
	if interval < 0 {
		interval = 0
	}
	return &Driver{
		store:       store,
		api:         api,
		logger:      logger,
		minInterval: time.Duration(interval) * time.Second,
		state:       StateIdle,
	}
}

// State returns the driver's current state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// begin transitions Idle -> Syncing, enforcing single-flight and throttle.
func (d *Driver) begin() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == StateSyncing {
		return ErrSyncInProgress
	}
	if d.minInterval > 0 && !d.lastSync.IsZero() && time.Since(d.lastSync) < d.minInterval {
		return ErrThrottled
	}
	d.state = StateSyncing
	return nil
}

func (d *Driver) finish() {
	d.mu.Lock()
	d.state = StateIdle
	d.lastSync = time.Now()
	d.mu.Unlock()
}

// Push sends every dirty local record to the server in one batch and merges
// the canonical result back. Conflicted records are marked and refreshed
// from the server (or deleted locally when the server no longer has them).
func (d *Driver) Push(ctx context.Context) (*Report, error) {
	if err := d.begin(); err != nil {
		return nil, err
	}
	defer d.finish()

	start := time.Now()

	tables, err := d.store.DirtyTables(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := d.store.DirtyRows(ctx)
	if err != nil {
		return nil, err
	}
	views, err := d.store.DirtyViews(ctx)
	if err != nil {
		return nil, err
	}

	if len(tables) == 0 && len(rows) == 0 && len(views) == 0 {
		d.logger.Debug("Nothing to push")
		return &Report{Conflicts: []sync.Conflict{}, Duration: time.Since(start)}, nil
	}

	batch, err := d.buildBatch(ctx, tables, rows, views)
	if err != nil {
		return nil, err
	}

	result, err := d.api.PushBatch(ctx, batch)
	if err != nil {
		return nil, err
	}

	if err := d.mergeTables(ctx, result.Tables); err != nil {
		return nil, err
	}
	if err := d.mergeRows(ctx, result.Rows); err != nil {
		return nil, err
	}
	if err := d.mergeViews(ctx, result.Views); err != nil {
		return nil, err
	}
	if err := d.applyConflicts(ctx, result.Conflicts); err != nil {
		return nil, err
	}

	report := &Report{
		Tables:    len(result.Tables),
		Rows:      len(result.Rows),
		Views:     len(result.Views),
		Conflicts: result.Conflicts,
		Duration:  time.Since(start),
	}
	d.logger.Info("Push complete",
		zap.Int("tables", report.Tables),
		zap.Int("rows", report.Rows),
		zap.Int("views", report.Views),
		zap.Int("conflicts", len(report.Conflicts)),
		zap.Duration("duration", report.Duration))
	return report, nil
}

// Pull replaces the clean part of the local store with the server's current
// state. Dirty records are kept for the next push.
func (d *Driver) Pull(ctx context.Context) (*Report, error) {
	if err := d.begin(); err != nil {
		return nil, err
	}
	defer d.finish()

	start := time.Now()

	tables, err := d.api.FetchTables(ctx)
	if err != nil {
		return nil, err
	}

	rowCount := 0
	viewCount := 0
	rows := make(map[int][]models.Row, len(tables))
	views := make(map[int][]models.View, len(tables))
	for i := range tables {
		id := tables[i].ID
		r, err := d.api.FetchRows(ctx, id)
		if err != nil {
			return nil, err
		}
		v, err := d.api.FetchViews(ctx, id)
		if err != nil {
			return nil, err
		}
		rows[id] = r
		views[id] = v
		rowCount += len(r)
		viewCount += len(v)
	}

	if err := d.store.ApplyServerState(ctx, tables, rows, views); err != nil {
		return nil, err
	}

	report := &Report{
		Tables:    len(tables),
		Rows:      rowCount,
		Views:     viewCount,
		Conflicts: []sync.Conflict{},
		Duration:  time.Since(start),
	}
	d.logger.Info("Pull complete",
		zap.Int("tables", report.Tables),
		zap.Int("rows", report.Rows),
		zap.Int("views", report.Views),
		zap.Duration("duration", report.Duration))
	return report, nil
}

// tableRef is the id string a local table travels under in a batch: the
// server id when it has one, otherwise a client-local marker the server
// maps through its table results.
func tableRef(t *LocalTable) string {
	if t.ServerID > 0 {
		return strconv.Itoa(t.ServerID)
	}
	return fmt.Sprintf("local-%d", t.ID)
}

func (d *Driver) buildBatch(ctx context.Context, tables []LocalTable, rows []LocalRow, views []LocalView) (*sync.Batch, error) {
	batch := &sync.Batch{
		Tables: make([]sync.TableInput, 0, len(tables)),
		Rows:   make([]sync.RowInput, 0, len(rows)),
		Views:  make([]sync.ViewInput, 0, len(views)),
	}

	refs := make(map[int]string, len(tables))
	for i := range tables {
		t := &tables[i]
		refs[t.ID] = tableRef(t)
		created := t.CreatedAt
		updated := t.UpdatedAt
		batch.Tables = append(batch.Tables, sync.TableInput{
			ID:          tableRef(t),
			Name:        t.Name,
			Description: t.Description,
			Fields:      t.Fields,
			ColWidths:   t.ColWidths,
			RowHeights:  t.RowHeights,
			Version:     t.Version,
			CreatedAt:   &created,
			UpdatedAt:   &updated,
		})
	}

	ref := func(localTableID int) (string, error) {
		if r, ok := refs[localTableID]; ok {
			return r, nil
		}
		t, err := d.store.TableByID(ctx, localTableID)
		if err != nil {
			return "", err
		}
		if t == nil {
			return "", fmt.Errorf("local table %d does not exist", localTableID)
		}
		refs[localTableID] = tableRef(t)
		return refs[localTableID], nil
	}

	for i := range rows {
		r := &rows[i]
		tref, err := ref(r.TableID)
		if err != nil {
			return nil, err
		}
		id := ""
		if r.ServerID > 0 {
			id = strconv.Itoa(r.ServerID)
		}
		created := r.CreatedAt
		updated := r.UpdatedAt
		batch.Rows = append(batch.Rows, sync.RowInput{
			ID:        id,
			TableID:   tref,
			RowKey:    r.RowKey,
			Data:      r.Data,
			Order:     r.Position,
			Version:   r.Version,
			CreatedAt: &created,
			UpdatedAt: &updated,
		})
	}

	for i := range views {
		v := &views[i]
		tref, err := ref(v.TableID)
		if err != nil {
			return nil, err
		}
		id := ""
		if v.ServerID > 0 {
			id = strconv.Itoa(v.ServerID)
		}
		created := v.CreatedAt
		updated := v.UpdatedAt
		batch.Views = append(batch.Views, sync.ViewInput{
			ID:           id,
			TableID:      tref,
			Name:         v.Name,
			HiddenFields: v.HiddenFields,
			Filters:      v.Filters,
			Sorts:        v.Sorts,
			RowHeight:    v.RowHeight,
			ColorRules:   v.ColorRules,
			IsDefault:    v.IsDefault,
			Version:      v.Version,
			CreatedAt:    &created,
			UpdatedAt:    &updated,
		})
	}
	return batch, nil
}

// mergeTables adopts the canonical table records; the unique name is the
// join key between local and server copies.
func (d *Driver) mergeTables(ctx context.Context, tables []models.Table) error {
	for i := range tables {
		srv := &tables[i]
		local, err := d.store.TableByName(ctx, srv.Name)
		if err != nil {
			return err
		}
		if local == nil {
			continue
		}
		local.ServerID = srv.ID
		local.Description = srv.Description
		local.Fields = srv.Fields
		local.ColWidths = srv.ColWidths
		local.RowHeights = srv.RowHeights
		local.Version = srv.Version
		local.Dirty = false
		local.SyncConflict = false
		local.SyncError = ""
		if err := d.store.SaveTable(ctx, local); err != nil {
			return err
		}
	}
	return nil
}

// mergeRows adopts canonical rows: by server id when the local copy already
// has one, otherwise by content key among the table's dirty rows (that is
// how a freshly inserted row learns its server id).
func (d *Driver) mergeRows(ctx context.Context, rows []models.Row) error {
	for i := range rows {
		srv := &rows[i]

		local, err := d.store.RowByServerID(ctx, srv.ID)
		if err != nil {
			return err
		}
		if local == nil {
			localTable, err := d.store.TableByServerID(ctx, srv.TableID)
			if err != nil {
				return err
			}
			if localTable == nil {
				continue
			}
			dirty, err := d.store.DirtyRowsForTable(ctx, localTable.ID)
			if err != nil {
				return err
			}
			for j := range dirty {
				cand := &dirty[j]
				if cand.ServerID > 0 {
					continue
				}
				key := cand.RowKey
				if key == "" {
					key = sync.DeriveRowKey(srv.TableID, cand.Data)
				}
				if key == srv.RowKey {
					local = cand
					break
				}
			}
			if local == nil {
				continue
			}
		}

		local.ServerID = srv.ID
		local.RowKey = srv.RowKey
		local.Data = srv.Data
		local.Position = srv.Position
		local.Version = srv.Version
		local.Dirty = false
		local.SyncConflict = false
		local.SyncError = ""
		if err := d.store.SaveRow(ctx, local); err != nil {
			return err
		}
	}
	return nil
}

// mergeViews adopts canonical views: by server id, falling back to the
// table-scoped name among dirty views for first-time inserts.
func (d *Driver) mergeViews(ctx context.Context, views []models.View) error {
	for i := range views {
		srv := &views[i]

		local, err := d.store.ViewByServerID(ctx, srv.ID)
		if err != nil {
			return err
		}
		if local == nil {
			localTable, err := d.store.TableByServerID(ctx, srv.TableID)
			if err != nil {
				return err
			}
			if localTable == nil {
				continue
			}
			dirty, err := d.store.DirtyViewsForTable(ctx, localTable.ID)
			if err != nil {
				return err
			}
			for j := range dirty {
				if dirty[j].ServerID == 0 && dirty[j].Name == srv.Name {
					local = &dirty[j]
					break
				}
			}
			if local == nil {
				continue
			}
		}

		local.ServerID = srv.ID
		local.Name = srv.Name
		local.HiddenFields = srv.HiddenFields
		local.Filters = srv.Filters
		local.Sorts = srv.Sorts
		local.RowHeight = srv.RowHeight
		local.ColorRules = srv.ColorRules
		local.IsDefault = srv.IsDefault
		local.Version = srv.Version
		local.Dirty = false
		local.SyncConflict = false
		local.SyncError = ""
		if err := d.store.SaveView(ctx, local); err != nil {
			return err
		}
	}
	return nil
}

// applyConflicts marks each conflicted local record and refreshes it from
// the server: a record the server still has is overwritten with the server
// copy (the conflict flag stays set for the editor to surface), a record
// the server no longer has is deleted locally.
func (d *Driver) applyConflicts(ctx context.Context, conflicts []sync.Conflict) error {
	for _, c := range conflicts {
		serverID, err := strconv.Atoi(c.ID)
		if err != nil || serverID <= 0 {
			d.logger.Warn("Conflict without resolvable id",
				zap.String("type", string(c.Type)),
				zap.String("id", c.ID),
				zap.String("message", c.Message))
			continue
		}

		switch c.Type {
		case sync.KindRow:
			if err := d.resolveRowConflict(ctx, serverID, c.Message); err != nil {
				return err
			}
		case sync.KindView:
			if err := d.resolveViewConflict(ctx, serverID, c.Message); err != nil {
				return err
			}
		case sync.KindTable:
			local, err := d.store.TableByServerID(ctx, serverID)
			if err != nil {
				return err
			}
			if local != nil {
				local.SyncConflict = true
				local.SyncError = c.Message
				if err := d.store.SaveTable(ctx, local); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (d *Driver) resolveRowConflict(ctx context.Context, serverID int, message string) error {
	local, err := d.store.RowByServerID(ctx, serverID)
	if err != nil || local == nil {
		return err
	}

	srv, err := d.api.FetchRow(ctx, serverID)
	if err != nil {
		return err
	}
	if srv == nil {
		d.logger.Info("Conflicted row gone from server, deleting locally",
			zap.Int("serverId", serverID))
		return d.store.DeleteRow(ctx, local.ID)
	}

	local.RowKey = srv.RowKey
	local.Data = srv.Data
	local.Position = srv.Position
	local.Version = srv.Version
	local.Dirty = false
	local.SyncConflict = true
	local.SyncError = message
	return d.store.SaveRow(ctx, local)
}

func (d *Driver) resolveViewConflict(ctx context.Context, serverID int, message string) error {
	local, err := d.store.ViewByServerID(ctx, serverID)
	if err != nil || local == nil {
		return err
	}

	srv, err := d.api.FetchView(ctx, serverID)
	if err != nil {
		return err
	}
	if srv == nil {
		d.logger.Info("Conflicted view gone from server, deleting locally",
			zap.Int("serverId", serverID))
		return d.store.DeleteView(ctx, local.ID)
	}

	local.Name = srv.Name
	local.HiddenFields = srv.HiddenFields
	local.Filters = srv.Filters
	local.Sorts = srv.Sorts
	local.RowHeight = srv.RowHeight
	local.ColorRules = srv.ColorRules
	local.IsDefault = srv.IsDefault
	local.Version = srv.Version
	local.Dirty = false
	local.SyncConflict = true
	local.SyncError = message
	return d.store.SaveView(ctx, local)
}

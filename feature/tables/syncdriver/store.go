package syncdriver

import (
	"context"
	"errors"
	"fmt"

	"offrows/feature/tables/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store is the local persistence the driver syncs from and into. The editor
// writes through it too; everything the editor touches is saved Dirty and
// stays Dirty until a push acknowledges it.
type Store interface {
	// DirtyTables, DirtyRows and DirtyViews return everything awaiting push.
	DirtyTables(ctx context.Context) ([]LocalTable, error)
	DirtyRows(ctx context.Context) ([]LocalRow, error)
	DirtyViews(ctx context.Context) ([]LocalView, error)

	TableByID(ctx context.Context, id int) (*LocalTable, error)
	TableByName(ctx context.Context, name string) (*LocalTable, error)
	TableByServerID(ctx context.Context, serverID int) (*LocalTable, error)
	RowByServerID(ctx context.Context, serverID int) (*LocalRow, error)
	ViewByServerID(ctx context.Context, serverID int) (*LocalView, error)
	DirtyRowsForTable(ctx context.Context, tableID int) ([]LocalRow, error)
	DirtyViewsForTable(ctx context.Context, tableID int) ([]LocalView, error)

	SaveTable(ctx context.Context, t *LocalTable) error
	SaveRow(ctx context.Context, r *LocalRow) error
	SaveView(ctx context.Context, v *LocalView) error
	DeleteRow(ctx context.Context, id int) error
	DeleteView(ctx context.Context, id int) error

	// ApplyServerState upserts a full server snapshot, keyed by server id.
	// Dirty local records are left untouched; clean records missing from the
	// snapshot are removed.
	ApplyServerState(ctx context.Context, tables []models.Table, rows map[int][]models.Row, views map[int][]models.View) error
}

// NewStore opens (and migrates) the local sqlite database.
func NewStore(path string) (Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local database %q: %w", path, err)
	}
	if err := db.AutoMigrate(&LocalTable{}, &LocalRow{}, &LocalView{}); err != nil {
		return nil, fmt.Errorf("failed to migrate local database: %w", err)
	}
	return &gormStore{db: db}, nil
}

type gormStore struct {
	db *gorm.DB
}

func (s *gormStore) DirtyTables(ctx context.Context) ([]LocalTable, error) {
	var out []LocalTable
	err := s.db.WithContext(ctx).Where("dirty = ?", true).Order("id").Find(&out).Error
	return out, err
}

func (s *gormStore) DirtyRows(ctx context.Context) ([]LocalRow, error) {
	var out []LocalRow
	err := s.db.WithContext(ctx).Where("dirty = ?", true).Order("id").Find(&out).Error
	return out, err
}

func (s *gormStore) DirtyViews(ctx context.Context) ([]LocalView, error) {
	var out []LocalView
	err := s.db.WithContext(ctx).Where("dirty = ?", true).Order("id").Find(&out).Error
	return out, err
}

func (s *gormStore) TableByID(ctx context.Context, id int) (*LocalTable, error) {
	var t LocalTable
	return first(&t, s.db.WithContext(ctx).First(&t, id).Error)
}

func (s *gormStore) TableByName(ctx context.Context, name string) (*LocalTable, error) {
	var t LocalTable
	return first(&t, s.db.WithContext(ctx).Where("name = ?", name).First(&t).Error)
}

func (s *gormStore) TableByServerID(ctx context.Context, serverID int) (*LocalTable, error) {
	var t LocalTable
	return first(&t, s.db.WithContext(ctx).Where("server_id = ?", serverID).First(&t).Error)
}

func (s *gormStore) RowByServerID(ctx context.Context, serverID int) (*LocalRow, error) {
	var r LocalRow
	return first(&r, s.db.WithContext(ctx).Where("server_id = ?", serverID).First(&r).Error)
}

func (s *gormStore) ViewByServerID(ctx context.Context, serverID int) (*LocalView, error) {
	var v LocalView
	return first(&v, s.db.WithContext(ctx).Where("server_id = ?", serverID).First(&v).Error)
}

func (s *gormStore) DirtyRowsForTable(ctx context.Context, tableID int) ([]LocalRow, error) {
	var out []LocalRow
	err := s.db.WithContext(ctx).
		Where("table_id = ? AND dirty = ?", tableID, true).
		Order("id").Find(&out).Error
	return out, err
}

func (s *gormStore) DirtyViewsForTable(ctx context.Context, tableID int) ([]LocalView, error) {
	var out []LocalView
	err := s.db.WithContext(ctx).
		Where("table_id = ? AND dirty = ?", tableID, true).
		Order("id").Find(&out).Error
	return out, err
}

func (s *gormStore) SaveTable(ctx context.Context, t *LocalTable) error {
	return s.db.WithContext(ctx).Save(t).Error
}

func (s *gormStore) SaveRow(ctx context.Context, r *LocalRow) error {
	return s.db.WithContext(ctx).Save(r).Error
}

func (s *gormStore) SaveView(ctx context.Context, v *LocalView) error {
	return s.db.WithContext(ctx).Save(v).Error
}

func (s *gormStore) DeleteRow(ctx context.Context, id int) error {
	return s.db.WithContext(ctx).Delete(&LocalRow{}, id).Error
}

func (s *gormStore) DeleteView(ctx context.Context, id int) error {
	return s.db.WithContext(ctx).Delete(&LocalView{}, id).Error
}

func (s *gormStore) ApplyServerState(ctx context.Context, tables []models.Table, rows map[int][]models.Row, views map[int][]models.View) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tableIDs := make([]int, 0, len(tables))
		localByServer := make(map[int]int, len(tables))

		for i := range tables {
			srv := &tables[i]
			tableIDs = append(tableIDs, srv.ID)

			var local LocalTable
			err := tx.Where("server_id = ?", srv.ID).First(&local).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if local.Dirty {
				localByServer[srv.ID] = local.ID
				continue
			}
			local.ServerID = srv.ID
			local.Name = srv.Name
			local.Description = srv.Description
			local.Fields = srv.Fields
			local.ColWidths = srv.ColWidths
			local.RowHeights = srv.RowHeights
			local.Version = srv.Version
			local.Dirty = false
			local.SyncConflict = false
			local.SyncError = ""
			if err := tx.Save(&local).Error; err != nil {
				return err
			}
			localByServer[srv.ID] = local.ID
		}

		// Clean tables the server no longer has go away, with their rows
		// and views.
		var stale []LocalTable
		q := tx.Where("dirty = ? AND server_id > 0", false)
		if len(tableIDs) > 0 {
			q = q.Where("server_id NOT IN ?", tableIDs)
		}
		if err := q.Find(&stale).Error; err != nil {
			return err
		}
		for i := range stale {
			if err := tx.Where("table_id = ?", stale[i].ID).Delete(&LocalRow{}).Error; err != nil {
				return err
			}
			if err := tx.Where("table_id = ?", stale[i].ID).Delete(&LocalView{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&stale[i]).Error; err != nil {
				return err
			}
		}

		for serverTableID, serverRows := range rows {
			localTableID, ok := localByServer[serverTableID]
			if !ok {
				continue
			}
			rowIDs := make([]int, 0, len(serverRows))
			for i := range serverRows {
				srv := &serverRows[i]
				rowIDs = append(rowIDs, srv.ID)

				var local LocalRow
				err := tx.Where("server_id = ?", srv.ID).First(&local).Error
				if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				if local.Dirty {
					continue
				}
				local.ServerID = srv.ID
				local.TableID = localTableID
				local.RowKey = srv.RowKey
				local.Data = srv.Data
				local.Position = srv.Position
				local.Version = srv.Version
				local.Dirty = false
				local.SyncConflict = false
				local.SyncError = ""
				if err := tx.Save(&local).Error; err != nil {
					return err
				}
			}
			del := tx.Where("table_id = ? AND dirty = ? AND server_id > 0", localTableID, false)
			if len(rowIDs) > 0 {
				del = del.Where("server_id NOT IN ?", rowIDs)
			}
			if err := del.Delete(&LocalRow{}).Error; err != nil {
				return err
			}
		}

		for serverTableID, serverViews := range views {
			localTableID, ok := localByServer[serverTableID]
			if !ok {
				continue
			}
			viewIDs := make([]int, 0, len(serverViews))
			for i := range serverViews {
				srv := &serverViews[i]
				viewIDs = append(viewIDs, srv.ID)

				var local LocalView
				err := tx.Where("server_id = ?", srv.ID).First(&local).Error
				if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				if local.Dirty {
					continue
				}
				local.ServerID = srv.ID
				local.TableID = localTableID
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
				if err := tx.Save(&local).Error; err != nil {
					return err
				}
			}
			del := tx.Where("table_id = ? AND dirty = ? AND server_id > 0", localTableID, false)
			if len(viewIDs) > 0 {
				del = del.Where("server_id NOT IN ?", viewIDs)
			}
			if err := del.Delete(&LocalView{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func first[T any](v *T, err error) (*T, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

package tables

import (
	"context"

	"offrows/feature/tables/models"
	"offrows/feature/tables/sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles table, row and view operations.
type Service struct {
	logger *zap.Logger
	db     *gorm.DB
}

// NewService creates a new tables service.
func NewService(logger *zap.Logger, db *gorm.DB) *Service {
	return &Service{logger: logger, db: db}
}

// SyncAll merges a client batch into the store and returns the canonical
// records plus any conflicts.
func (s *Service) SyncAll(ctx context.Context, batch *sync.Batch) (*sync.Result, error) {
	return sync.Apply(ctx, s.db, s.logger, batch)
}

// ListTables returns all tables ordered by name.
func (s *Service) ListTables(ctx context.Context) ([]models.Table, error) {
	var tables []models.Table
	err := s.db.WithContext(ctx).Order("name").Find(&tables).Error
	return tables, err
}

// GetTable returns one table by id.
func (s *Service) GetTable(ctx context.Context, id int) (*models.Table, error) {
	var table models.Table
	if err := s.db.WithContext(ctx).First(&table, id).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

// CreateTable persists a new table at version 1.
func (s *Service) CreateTable(ctx context.Context, table *models.Table) error {
	table.ID = 0
	table.Version = 1
	return s.db.WithContext(ctx).Create(table).Error
}

// UpdateTable overwrites a table's document and bumps its version.
func (s *Service) UpdateTable(ctx context.Context, id int, in *models.Table) (*models.Table, error) {
	var table models.Table
	if err := s.db.WithContext(ctx).First(&table, id).Error; err != nil {
		return nil, err
	}
	table.Name = in.Name
	table.Description = in.Description
	table.Fields = in.Fields
	table.ColWidths = in.ColWidths
	table.RowHeights = in.RowHeights
	table.Version++
	if err := s.db.WithContext(ctx).Save(&table).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

// DeleteTable removes a table together with its rows and views.
func (s *Service) DeleteTable(ctx context.Context, id int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.First(&table, id).Error; err != nil {
			return err
		}
		if err := tx.Where("table_id = ?", id).Delete(&models.Row{}).Error; err != nil {
			return err
		}
		if err := tx.Where("table_id = ?", id).Delete(&models.View{}).Error; err != nil {
			return err
		}
		return tx.Delete(&table).Error
	})
}

// ListRows returns a table's rows in display order.
func (s *Service) ListRows(ctx context.Context, tableID int) ([]models.Row, error) {
	var rows []models.Row
	err := s.db.WithContext(ctx).
		Where("table_id = ?", tableID).
		Order("position").
		Find(&rows).Error
	return rows, err
}

// GetRow returns one row by id.
func (s *Service) GetRow(ctx context.Context, id int) (*models.Row, error) {
	var row models.Row
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// CreateRow persists a new row at version 1, deriving its content key when
// the caller did not supply one.
func (s *Service) CreateRow(ctx context.Context, tableID int, row *models.Row) error {
	if _, err := s.GetTable(ctx, tableID); err != nil {
		return err
	}
	row.ID = 0
	row.TableID = tableID
	row.Version = 1
	if row.RowKey == "" {
		row.RowKey = sync.DeriveRowKey(tableID, row.Data)
	}
	return s.db.WithContext(ctx).Create(row).Error
}

// UpdateRow overwrites a row's content and bumps its version. The content
// key follows the new data.
func (s *Service) UpdateRow(ctx context.Context, id int, in *models.Row) (*models.Row, error) {
	var row models.Row
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, err
	}
	row.Data = in.Data
	row.Position = in.Position
	row.RowKey = in.RowKey
	if row.RowKey == "" {
		row.RowKey = sync.DeriveRowKey(row.TableID, row.Data)
	}
	row.Version++
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// DeleteRow removes one row by id.
func (s *Service) DeleteRow(ctx context.Context, id int) error {
	var row models.Row
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&row).Error
}

// ListViews returns a table's views.
func (s *Service) ListViews(ctx context.Context, tableID int) ([]models.View, error) {
	var views []models.View
	err := s.db.WithContext(ctx).
		Where("table_id = ?", tableID).
		Order("id").
		Find(&views).Error
	return views, err
}

// GetView returns one view by id.
func (s *Service) GetView(ctx context.Context, id int) (*models.View, error) {
	var view models.View
	if err := s.db.WithContext(ctx).First(&view, id).Error; err != nil {
		return nil, err
	}
	return &view, nil
}

// CreateView persists a new view at version 1.
func (s *Service) CreateView(ctx context.Context, tableID int, view *models.View) error {
	if _, err := s.GetTable(ctx, tableID); err != nil {
		return err
	}
	view.ID = 0
	view.TableID = tableID
	view.Version = 1
	if view.RowHeight == "" {
		view.RowHeight = models.RowHeightDefault
	}
	return s.db.WithContext(ctx).Create(view).Error
}

// UpdateView overwrites a view's document and bumps its version.
func (s *Service) UpdateView(ctx context.Context, id int, in *models.View) (*models.View, error) {
	var view models.View
	if err := s.db.WithContext(ctx).First(&view, id).Error; err != nil {
		return nil, err
	}
	view.Name = in.Name
	view.HiddenFields = in.HiddenFields
	view.Filters = in.Filters
	view.Sorts = in.Sorts
	view.ColorRules = in.ColorRules
	view.IsDefault = in.IsDefault
	if in.RowHeight != "" {
		view.RowHeight = in.RowHeight
	}
	view.Version++
	if err := s.db.WithContext(ctx).Save(&view).Error; err != nil {
		return nil, err
	}
	return &view, nil
}

// DeleteView removes one view by id.
func (s *Service) DeleteView(ctx context.Context, id int) error {
	var view models.View
	if err := s.db.WithContext(ctx).First(&view, id).Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&view).Error
}

package sync

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"offrows/feature/tables/models"
)

// TableInput is a client-submitted table. The id is client-local and may not
// exist on the server; Version and the timestamps carry the client's
// optimistic-concurrency state.
type TableInput struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Fields      models.FieldList    `json:"fields"`
	ColWidths   models.DimensionMap `json:"colWidths,omitempty"`
	RowHeights  models.DimensionMap `json:"rowHeights,omitempty"`
	Version     int                 `json:"version"`
	CreatedAt   *time.Time          `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time          `json:"updatedAt,omitempty"`
}

// RowInput is a client-submitted row. An empty ID marks a locally created
// row that has never been acknowledged; TableID may reference a client-local
// table id resolved through the batch's table results.
type RowInput struct {
	ID        string         `json:"id"`
	TableID   string         `json:"tableId"`
	RowKey    string         `json:"rowKey,omitempty"`
	Data      models.RowData `json:"data"`
	Order     float64        `json:"order"`
	Version   int            `json:"version"`
	CreatedAt *time.Time     `json:"createdAt,omitempty"`
	UpdatedAt *time.Time     `json:"updatedAt,omitempty"`
}

// ViewInput is a client-submitted view.
type ViewInput struct {
	ID           string             `json:"id"`
	TableID      string             `json:"tableId"`
	Name         string             `json:"name"`
	HiddenFields models.StringList  `json:"hiddenFields"`
	Filters      models.FilterRules `json:"filters"`
	Sorts        models.SortRules   `json:"sorts"`
	RowHeight    string             `json:"rowHeight,omitempty"`
	ColorRules   models.ColorRules  `json:"colorRules"`
	IsDefault    bool               `json:"isDefault"`
	Version      int                `json:"version"`
	CreatedAt    *time.Time         `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time         `json:"updatedAt,omitempty"`
}

// Batch is everything one client pushes in a single sync round.
type Batch struct {
	Tables []TableInput `json:"tables"`
	Rows   []RowInput   `json:"rows"`
	Views  []ViewInput  `json:"views"`
}

// Result mirrors the batch back in canonical server form: each slice entry
// is the authoritative record the client should adopt (server ids, merged
// versions, server timestamps). Conflicts lists every item that could not be
// applied as submitted.
type Result struct {
	Tables    []models.Table `json:"tables"`
	Rows      []models.Row   `json:"rows"`
	Views     []models.View  `json:"views"`
	Conflicts []Conflict     `json:"conflicts"`
}

// Apply merges one client batch into the canonical store. Tables resolve
// first, producing the client-id remap that rows and views resolve their
// TableID through; rows and views follow, all inside one transaction.
// Recoverable mismatches are recorded as Conflicts and skipped; any other
// store error rolls back and fails the whole batch.
func Apply(ctx context.Context, db *gorm.DB, l *zap.Logger, batch *Batch) (*Result, error) {
	res := &Result{
		Tables:    []models.Table{},
		Rows:      []models.Row{},
		Views:     []models.View{},
		Conflicts: []Conflict{},
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		idMap := make(map[string]int, len(batch.Tables))

		for i := range batch.Tables {
			in := &batch.Tables[i]
			table, err := reconcileTable(tx, l, in, res)
			if err != nil {
				return err
			}
			if table != nil {
				idMap[in.ID] = table.ID
			}
		}

		for i := range batch.Rows {
			if err := reconcileRow(tx, &batch.Rows[i], idMap, res); err != nil {
				return err
			}
		}

		for i := range batch.Views {
			if err := reconcileView(tx, &batch.Views[i], idMap, res); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		l.Error("Sync batch failed", zap.Error(err))
		return nil, err
	}

	l.Info("Sync batch applied",
		zap.Int("tables", len(res.Tables)),
		zap.Int("rows", len(res.Rows)),
		zap.Int("views", len(res.Views)),
		zap.Int("conflicts", len(res.Conflicts)))
	return res, nil
}

// resolveTableID maps a client-local table id to the canonical id produced
// by this batch's table pass, falling back to parsing the raw value for
// references that were already server-assigned.
func resolveTableID(idMap map[string]int, raw string) int {
	if id, ok := idMap[raw]; ok {
		return id
	}
	id, _ := strconv.Atoi(raw)
	return id
}

// parentTable loads the table a row or view claims to belong to. A nil
// table with nil error means it does not exist.
func parentTable(tx *gorm.DB, tableID int) (*models.Table, error) {
	if tableID <= 0 {
		return nil, nil
	}
	var t models.Table
	err := tx.First(&t, tableID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// latestTimestamp picks the client's modification time for the wall-clock
// tiebreak, preferring UpdatedAt over CreatedAt.
func latestTimestamp(updatedAt, createdAt *time.Time) time.Time {
	if updatedAt != nil {
		return *updatedAt
	}
	if createdAt != nil {
		return *createdAt
	}
	return time.Time{}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

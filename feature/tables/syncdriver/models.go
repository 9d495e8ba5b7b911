package syncdriver

import (
	"time"

	"offrows/feature/tables/models"
)

// The local store mirrors the server entities with sync bookkeeping bolted
// on: a local primary key independent of the server id, a Dirty flag the
// editor sets on every local edit, and conflict markers the driver sets
// when the server rejects a change.

// LocalTable is the client copy of a table.
type LocalTable struct {
	ID           int                 `gorm:"primaryKey" json:"id"`
	ServerID     int                 `gorm:"index" json:"serverId,omitempty"`
	Name         string              `gorm:"size:191;not null;uniqueIndex:uq_local_tables_name" json:"name"`
	Description  string              `gorm:"type:text" json:"description,omitempty"`
	Fields       models.FieldList    `gorm:"type:json" json:"fields"`
	ColWidths    models.DimensionMap `gorm:"type:json" json:"colWidths,omitempty"`
	RowHeights   models.DimensionMap `gorm:"type:json" json:"rowHeights,omitempty"`
	Version      int                 `json:"version"`
	Dirty        bool                `gorm:"index" json:"dirty"`
	SyncConflict bool                `json:"syncConflict,omitempty"`
	SyncError    string              `gorm:"type:text" json:"syncError,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

func (LocalTable) TableName() string { return "local_tables" }

// LocalRow is the client copy of a row. RowKey is filled from the server
// after the first successful push.
type LocalRow struct {
	ID           int            `gorm:"primaryKey" json:"id"`
	ServerID     int            `gorm:"index" json:"serverId,omitempty"`
	TableID      int            `gorm:"not null;index" json:"tableId"` // local table id
	RowKey       string         `gorm:"size:64;index" json:"rowKey,omitempty"`
	Data         models.RowData `gorm:"type:json" json:"data"`
	Position     float64        `gorm:"column:position" json:"order"`
	Version      int            `json:"version"`
	Dirty        bool           `gorm:"index" json:"dirty"`
	SyncConflict bool           `json:"syncConflict,omitempty"`
	SyncError    string         `gorm:"type:text" json:"syncError,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

func (LocalRow) TableName() string { return "local_rows" }

// LocalView is the client copy of a view.
type LocalView struct {
	ID           int                `gorm:"primaryKey" json:"id"`
	ServerID     int                `gorm:"index" json:"serverId,omitempty"`
	TableID      int                `gorm:"not null;index" json:"tableId"` // local table id
	Name         string             `gorm:"size:191;not null" json:"name"`
	HiddenFields models.StringList  `gorm:"type:json" json:"hiddenFields"`
	Filters      models.FilterRules `gorm:"type:json" json:"filters"`
	Sorts        models.SortRules   `gorm:"type:json" json:"sorts"`
	RowHeight    string             `gorm:"size:16" json:"rowHeight"`
	ColorRules   models.ColorRules  `gorm:"type:json" json:"colorRules"`
	IsDefault    bool               `json:"isDefault"`
	Version      int                `json:"version"`
	Dirty        bool               `gorm:"index" json:"dirty"`
	SyncConflict bool               `json:"syncConflict,omitempty"`
	SyncError    string             `gorm:"type:text" json:"syncError,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

func (LocalView) TableName() string { return "local_views" }

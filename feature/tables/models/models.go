package models

import (
	"time"
)

// FieldType is the set of cell editors a table column may use.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldBoolean  FieldType = "boolean"
	FieldDate     FieldType = "date"
	FieldDropdown FieldType = "dropdown"
	FieldImage    FieldType = "image"
	FieldFile     FieldType = "file"
	FieldImages   FieldType = "images"
	FieldFiles    FieldType = "files"
)

// Field is one column definition inside a table's schema document.
type Field struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         FieldType `json:"type"`
	Required     bool      `json:"required,omitempty"`
	Options      []string  `json:"options,omitempty"` // dropdown choices
	DefaultValue *Value    `json:"defaultValue,omitempty"`
}

// Table is a user-defined table. The column schema lives in the Fields JSON
// document, not in SQL DDL; Name is the global idempotency key for sync.
type Table struct {
	ID          int          `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"size:191;not null;uniqueIndex:uq_tables_name" json:"name"`
	Description string       `gorm:"type:text" json:"description,omitempty"`
	Fields      FieldList    `gorm:"type:json" json:"fields"`
	ColWidths   DimensionMap `gorm:"type:json" json:"colWidths,omitempty"`
	RowHeights  DimensionMap `gorm:"type:json" json:"rowHeights,omitempty"`
	Version     int          `json:"version"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func (Table) TableName() string { return "tables" }

// Row is one record of a user table. RowKey is the content-derived identity;
// (TableID, RowKey) is unique, which is what de-duplicates retried batches.
type Row struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	TableID   int       `gorm:"not null;index;uniqueIndex:uq_rows_table_key,priority:1" json:"tableId"`
	RowKey    string    `gorm:"size:64;uniqueIndex:uq_rows_table_key,priority:2" json:"rowKey,omitempty"`
	Data      RowData   `gorm:"type:json" json:"data"`
	Position  float64   `gorm:"column:position" json:"order"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Row) TableName() string { return "table_rows" }

// RowHeight categories a view may render rows at.
const (
	RowHeightCompact = "compact"
	RowHeightDefault = "default"
	RowHeightLarge   = "large"
)

// FilterRule narrows the rows a view displays.
type FilterRule struct {
	FieldID  string `json:"fieldId"`
	Operator string `json:"operator"` // equals, contains, greater, less, startsWith, endsWith
	Value    *Value `json:"value"`
}

// SortRule orders the rows a view displays.
type SortRule struct {
	FieldID   string `json:"fieldId"`
	Direction string `json:"direction"` // asc, desc
}

// ColorRule highlights rows matching a condition.
type ColorRule struct {
	FieldID  string `json:"fieldId"`
	Operator string `json:"operator"` // equals, contains, greater, less
	Value    *Value `json:"value"`
	Color    string `json:"color"`
}

// View is a saved presentation of a table. Unlike rows, views have no
// content-derived identity; sync reconciles them by id only.
type View struct {
	ID           int         `gorm:"primaryKey" json:"id"`
	TableID      int         `gorm:"not null;index" json:"tableId"`
	Name         string      `gorm:"size:191;not null" json:"name"`
	HiddenFields StringList  `gorm:"type:json" json:"hiddenFields"`
	Filters      FilterRules `gorm:"type:json" json:"filters"`
	Sorts        SortRules   `gorm:"type:json" json:"sorts"`
	RowHeight    string      `gorm:"size:16;default:default" json:"rowHeight"`
	ColorRules   ColorRules  `gorm:"type:json" json:"colorRules"`
	IsDefault    bool        `json:"isDefault"`
	Version      int         `json:"version"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func (View) TableName() string { return "table_views" }

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// The schema documents (fields, data maps, view rules) are persisted as JSON
// columns. Each named type below implements driver.Valuer and sql.Scanner so
// GORM round-trips them on both mysql and sqlite.

// FieldList is the ordered column schema of a table.
type FieldList []Field

// DimensionMap stores per-column widths or per-row heights in pixels.
type DimensionMap map[string]float64

// RowData maps field ids to cell values.
type RowData map[string]Value

// StringList is a JSON-encoded list of field ids.
type StringList []string

// FilterRules, SortRules and ColorRules are view rule lists.
type FilterRules []FilterRule
type SortRules []SortRule
type ColorRules []ColorRule

func (f FieldList) Value() (driver.Value, error)    { return jsonColumnValue(f) }
func (f *FieldList) Scan(src any) error             { return jsonColumnScan(f, src) }
func (d DimensionMap) Value() (driver.Value, error) { return jsonColumnValue(d) }
func (d *DimensionMap) Scan(src any) error          { return jsonColumnScan(d, src) }
func (r RowData) Value() (driver.Value, error)      { return jsonColumnValue(r) }
func (r *RowData) Scan(src any) error               { return jsonColumnScan(r, src) }
func (s StringList) Value() (driver.Value, error)   { return jsonColumnValue(s) }
func (s *StringList) Scan(src any) error            { return jsonColumnScan(s, src) }
func (f FilterRules) Value() (driver.Value, error)  { return jsonColumnValue(f) }
func (f *FilterRules) Scan(src any) error           { return jsonColumnScan(f, src) }
func (s SortRules) Value() (driver.Value, error)    { return jsonColumnValue(s) }
func (s *SortRules) Scan(src any) error             { return jsonColumnScan(s, src) }
func (c ColorRules) Value() (driver.Value, error)   { return jsonColumnValue(c) }
func (c *ColorRules) Scan(src any) error            { return jsonColumnScan(c, src) }

func jsonColumnValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonColumnScan(dest any, src any) error {
	switch s := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(s) == 0 {
			return nil
		}
		return json.Unmarshal(s, dest)
	case string:
		if s == "" {
			return nil
		}
		return json.Unmarshal([]byte(s), dest)
	default:
		return fmt.Errorf("unsupported JSON column source %T", src)
	}
}

package sync

import (
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"offrows/feature/tables/models"
)

// reconcileTable resolves one submitted table to a canonical record:
// by server id when the client's id is already server-assigned, then by
// unique name (the idempotency key across resubmissions), then by insert.
// Returns nil when the table could not be resolved at all; its rows and
// views will fail their parent check this round.
func reconcileTable(tx *gorm.DB, l *zap.Logger, in *TableInput, res *Result) (*models.Table, error) {
	if id, err := strconv.Atoi(in.ID); err == nil && id > 0 {
		var existing models.Table
		ferr := tx.First(&existing, id).Error
		switch {
		case ferr == nil:
			// Incoming schema is not diffed against the stored one; the
			// persisted schema wins.
			res.Tables = append(res.Tables, existing)
			return &existing, nil
		case !errors.Is(ferr, gorm.ErrRecordNotFound):
			return nil, ferr
		}
	}

	if in.Name != "" {
		var existing models.Table
		ferr := tx.Where("name = ?", in.Name).First(&existing).Error
		switch {
		case ferr == nil:
			res.Tables = append(res.Tables, existing)
			return &existing, nil
		case !errors.Is(ferr, gorm.ErrRecordNotFound):
			return nil, ferr
		}
	}

	// Fresh insert, stripped of client id, version and timestamps.
	table := models.Table{
		Name:        in.Name,
		Description: in.Description,
		Fields:      in.Fields,
		ColWidths:   in.ColWidths,
		RowHeights:  in.RowHeights,
		Version:     1,
	}
	err := tx.Create(&table).Error
	if err == nil {
		res.Tables = append(res.Tables, table)
		return &table, nil
	}

	// Lost a name-uniqueness race: a concurrent submission created this
	// table between our lookup and insert. Adopt the winner.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		var winner models.Table
		if ferr := tx.Where("name = ?", in.Name).First(&winner).Error; ferr == nil {
			res.Tables = append(res.Tables, winner)
			res.Conflicts = append(res.Conflicts, conflict(KindTable, in.ID,
				fmt.Sprintf("table name %q already exists, using table %d", in.Name, winner.ID)))
			return &winner, nil
		}
	}

	l.Warn("Table insert failed", zap.String("name", in.Name), zap.Error(err))
	res.Conflicts = append(res.Conflicts, conflict(KindTable, in.ID,
		fmt.Sprintf("table sync error: %v", err)))
	return nil, nil
}

package sync

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"offrows/feature/tables/models"
)

// reconcileView resolves one submitted view. Views have no content-derived
// identity: a view without a server id is always inserted, so a replayed
// batch can duplicate a brand-new view. Rows do not have that hole because
// of their content key.
func reconcileView(tx *gorm.DB, in *ViewInput, idMap map[string]int, res *Result) error {
	tableID := resolveTableID(idMap, in.TableID)
	parent, err := parentTable(tx, tableID)
	if err != nil {
		return err
	}
	if parent == nil {
		res.Conflicts = append(res.Conflicts, conflict(KindView, in.ID,
			fmt.Sprintf("parent table (id: %d) does not exist, skipping view", tableID)))
		return nil
	}

	if in.ID != "" {
		viewID, err := strconv.Atoi(in.ID)
		if err != nil || viewID <= 0 {
			res.Conflicts = append(res.Conflicts, conflict(KindView, in.ID,
				fmt.Sprintf("invalid view id %q, skipping view", in.ID)))
			return nil
		}

		var existing models.View
		ferr := tx.First(&existing, viewID).Error
		switch {
		case errors.Is(ferr, gorm.ErrRecordNotFound):
			return insertView(tx, in, tableID, res)
		case ferr != nil:
			return ferr
		}
		return mergeView(tx, in, tableID, &existing, res)
	}

	return insertView(tx, in, tableID, res)
}

func insertView(tx *gorm.DB, in *ViewInput, tableID int, res *Result) error {
	view := models.View{
		TableID:      tableID,
		Name:         in.Name,
		HiddenFields: in.HiddenFields,
		Filters:      in.Filters,
		Sorts:        in.Sorts,
		RowHeight:    viewRowHeight(in.RowHeight),
		ColorRules:   in.ColorRules,
		IsDefault:    in.IsDefault,
		Version:      1,
	}
	if err := tx.Create(&view).Error; err != nil {
		res.Conflicts = append(res.Conflicts, conflict(KindView, in.ID,
			fmt.Sprintf("view sync error: %v", err)))
		return nil
	}
	res.Views = append(res.Views, view)
	return nil
}

// mergeView follows the same version rule as the server-id row path: a
// client version at or above the server's wins, a stale one falls back to
// the wall-clock tiebreak.
func mergeView(tx *gorm.DB, in *ViewInput, tableID int, existing *models.View, res *Result) error {
	clientVersion := in.Version
	serverVersion := existing.Version

	if clientVersion >= serverVersion {
		return applyView(tx, in, tableID, existing, serverVersion+1, res)
	}

	clientAt := latestTimestamp(in.UpdatedAt, in.CreatedAt)
	serverAt := existing.UpdatedAt
	if serverAt.IsZero() {
		serverAt = existing.CreatedAt
	}
	if clientAt.After(serverAt) {
		return applyView(tx, in, tableID, existing, maxInt(serverVersion, clientVersion)+1, res)
	}

	res.Views = append(res.Views, *existing)
	res.Conflicts = append(res.Conflicts, conflict(KindView, in.ID,
		fmt.Sprintf("client version %d is behind server version %d, keeping server view", clientVersion, serverVersion)))
	return nil
}

func applyView(tx *gorm.DB, in *ViewInput, tableID int, existing *models.View, version int, res *Result) error {
	existing.TableID = tableID
	existing.Name = in.Name
	existing.HiddenFields = in.HiddenFields
	existing.Filters = in.Filters
	existing.Sorts = in.Sorts
	existing.RowHeight = viewRowHeight(in.RowHeight)
	existing.ColorRules = in.ColorRules
	existing.IsDefault = in.IsDefault
	existing.Version = version
	existing.UpdatedAt = time.Now()

	if err := tx.Save(existing).Error; err != nil {
		return err
	}
	res.Views = append(res.Views, *existing)
	return nil
}

func viewRowHeight(h string) string {
	switch h {
	case models.RowHeightCompact, models.RowHeightDefault, models.RowHeightLarge:
		return h
	default:
		return models.RowHeightDefault
	}
}

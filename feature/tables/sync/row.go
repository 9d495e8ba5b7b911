package sync

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"offrows/feature/tables/models"
)

// reconcileRow resolves one submitted row. Rows carry a dual identity: the
// server id when the client has one, otherwise the content-derived
// (tableId, rowKey) pair, which is what keeps replayed batches from
// duplicating rows.
func reconcileRow(tx *gorm.DB, in *RowInput, idMap map[string]int, res *Result) error {
	tableID := resolveTableID(idMap, in.TableID)
	parent, err := parentTable(tx, tableID)
	if err != nil {
		return err
	}
	if parent == nil {
		res.Conflicts = append(res.Conflicts, conflict(KindRow, in.ID,
			fmt.Sprintf("parent table (id: %d) does not exist, skipping row", tableID)))
		return nil
	}

	if in.ID != "" {
		rowID, err := strconv.Atoi(in.ID)
		if err != nil || rowID <= 0 {
			res.Conflicts = append(res.Conflicts, conflict(KindRow, in.ID,
				fmt.Sprintf("invalid row id %q, skipping row", in.ID)))
			return nil
		}

		var existing models.Row
		ferr := tx.First(&existing, rowID).Error
		switch {
		case errors.Is(ferr, gorm.ErrRecordNotFound):
			// Deleted on the server since the client last pulled.
			// Recreate from the client copy under a fresh id.
			return insertRow(tx, in, tableID, res)
		case ferr != nil:
			return ferr
		}
		return mergeRow(tx, in, tableID, &existing, false, res)
	}

	// Locally new row, never acknowledged: the content key is the identity.
	rowKey := in.RowKey
	if rowKey == "" {
		rowKey = DeriveRowKey(tableID, in.Data)
	}
	var existing models.Row
	ferr := tx.Where("table_id = ? AND row_key = ?", tableID, rowKey).First(&existing).Error
	switch {
	case errors.Is(ferr, gorm.ErrRecordNotFound):
		return insertRow(tx, in, tableID, res)
	case ferr != nil:
		return ferr
	}
	// An earlier submission of the same content already landed. Only a
	// strictly newer client copy may overwrite it; an equal version is a
	// replay and keeps the server row untouched.
	return mergeRow(tx, in, tableID, &existing, true, res)
}

// insertRow creates a canonical row from the client copy, stripped of client
// id, version and timestamps. A (tableId, rowKey) collision means another
// submission inserted the same content concurrently; that is recorded as a
// conflict so the client refetches, not treated as a failure.
func insertRow(tx *gorm.DB, in *RowInput, tableID int, res *Result) error {
	rowKey := in.RowKey
	if rowKey == "" {
		rowKey = DeriveRowKey(tableID, in.Data)
	}
	row := models.Row{
		TableID:  tableID,
		RowKey:   rowKey,
		Data:     in.Data,
		Position: in.Order,
		Version:  1,
	}
	err := tx.Create(&row).Error
	if err == nil {
		res.Rows = append(res.Rows, row)
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		res.Conflicts = append(res.Conflicts, conflict(KindRow, in.ID,
			fmt.Sprintf("row key %s already exists in table %d, skipping row", rowKey, tableID)))
		return nil
	}
	return err
}

// mergeRow applies the optimistic-concurrency rule to an existing row.
//
// With requireNewer false (the server-id path) a client version at or above
// the server's wins and the row advances to serverVersion+1. With
// requireNewer true (the content-key path) only a strictly greater client
// version wins, advancing to max(versions)+1; an equal version is an exact
// replay and is dropped silently.
//
// A stale client version falls back to the wall-clock tiebreak: the later
// writer wins. When the server copy stands, it is returned so the client can
// replace its stale local state.
func mergeRow(tx *gorm.DB, in *RowInput, tableID int, existing *models.Row, requireNewer bool, res *Result) error {
	clientVersion := in.Version
	serverVersion := existing.Version

	switch {
	case clientVersion > serverVersion:
		next := serverVersion + 1
		if requireNewer {
			next = maxInt(serverVersion, clientVersion) + 1
		}
		return applyRow(tx, in, tableID, existing, next, res)

	case clientVersion == serverVersion:
		if requireNewer {
			res.Rows = append(res.Rows, *existing)
			return nil
		}
		return applyRow(tx, in, tableID, existing, serverVersion+1, res)

	default:
		clientAt := latestTimestamp(in.UpdatedAt, in.CreatedAt)
		serverAt := existing.UpdatedAt
		if serverAt.IsZero() {
			serverAt = existing.CreatedAt
		}
		if clientAt.After(serverAt) {
			return applyRow(tx, in, tableID, existing, maxInt(serverVersion, clientVersion)+1, res)
		}

		res.Rows = append(res.Rows, *existing)
		if !requireNewer {
			res.Conflicts = append(res.Conflicts, conflict(KindRow, in.ID,
				fmt.Sprintf("client version %d is behind server version %d, keeping server row", clientVersion, serverVersion)))
		}
		return nil
	}
}

// applyRow overwrites the existing row's content with the client copy at the
// merged version. The row key follows the content: a client-supplied key
// wins, then the stored one, then a fresh derivation.
func applyRow(tx *gorm.DB, in *RowInput, tableID int, existing *models.Row, version int, res *Result) error {
	rowKey := in.RowKey
	if rowKey == "" {
		rowKey = existing.RowKey
	}
	if rowKey == "" {
		rowKey = DeriveRowKey(tableID, in.Data)
	}

	existing.TableID = tableID
	existing.RowKey = rowKey
	existing.Data = in.Data
	existing.Position = in.Order
	existing.Version = version
	existing.UpdatedAt = time.Now()

	err := tx.Save(existing).Error
	if err == nil {
		res.Rows = append(res.Rows, *existing)
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		res.Conflicts = append(res.Conflicts, conflict(KindRow, in.ID,
			fmt.Sprintf("row key %s already exists in table %d, skipping row", rowKey, tableID)))
		return nil
	}
	return err
}

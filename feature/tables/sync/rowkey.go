package sync

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"offrows/feature/tables/models"
)

const rowKeyPrefix = "row_"

// DeriveRowKey fingerprints a row's content so retried and multi-device
// submissions of the same logical row converge on one record. The data map
// is serialized with keys in lexicographic order, prefixed with the table
// id, and folded through a 31-multiplier rolling hash wrapped to a signed
// 32-bit accumulator; the absolute value is rendered in base 36.
//
// Collisions are tolerated: the row reconciler treats a key collision as an
// existing-row merge, not an error. Callers only derive a key when the
// client did not supply one.
func DeriveRowKey(tableID int, data models.RowData) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(strconv.Itoa(tableID))
	sb.WriteByte(':')
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		kb, _ := json.Marshal(k)
		sb.Write(kb)
		sb.WriteByte(':')
		vb, _ := json.Marshal(data[k])
		sb.Write(vb)
	}
	sb.WriteByte('}')

	var h int32
	for _, r := range sb.String() {
		h = h*31 + int32(r)
	}

	v := int64(h)
	if v < 0 {
		v = -v
	}
	return rowKeyPrefix + strconv.FormatInt(v, 36)
}

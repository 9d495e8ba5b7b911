package sync

// Kind discriminates which entity a conflict was recorded for.
type Kind string

const (
	KindTable Kind = "table"
	KindRow   Kind = "row"
	KindView  Kind = "view"
)

// Conflict is one non-fatal reconciliation outcome: a stale version resolved
// in the server's favor, a unique-index race, or a missing parent table.
// The id is the client-local id of the item, so the client driver can mark
// and refresh its copy; it is empty for items that never had one.
type Conflict struct {
	Type    Kind   `json:"type"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

func conflict(kind Kind, id, message string) Conflict {
	return Conflict{Type: kind, ID: id, Message: message}
}

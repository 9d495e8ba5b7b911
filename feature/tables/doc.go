// Package tables exposes the table, row and view API: CRUD endpoints plus
// the batch sync endpoint offline clients push their local changes through.
// Merge semantics live in the sync sub-package, persisted shapes in models.
package tables

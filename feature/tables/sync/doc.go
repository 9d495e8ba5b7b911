// Package sync merges client-submitted batches of tables, rows and views
// into the canonical store.
//
// A batch is applied in one transaction, in dependency order: tables first
// (building the client-id to server-id remap), then rows, then views.
// Identity is resolved per entity kind: tables by server id then unique
// name, rows by server id then content key, views by server id only.
// Version conflicts resolve by optimistic concurrency with a wall-clock
// tiebreak; the losing side is reported in the result's Conflicts list so
// the client can refresh its copy.
//
// Deletion does not propagate: there are no tombstones, so a row deleted on
// one side while edited on the other is recreated by the edit.
package sync

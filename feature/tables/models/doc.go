// Package models defines the persisted entities of the tables feature.
//
// Three entities exist: Table (schema + layout document), Row (a data record
// with a content-derived RowKey identity), and View (a saved presentation).
// All nested documents (field schemas, cell data, view rules) are stored as
// JSON columns so one SQL schema serves every user-defined table.
//
// # Cell Values
//
// Row data maps field ids to Value, a tagged union over the shapes a cell may
// legally hold: scalar string/number/boolean, null, or a {fileId, name, type}
// reference into object storage. The union's JSON codec is deterministic,
// which the sync content key depends on.
//
// # Identity
//
//   - Table: server id, plus a globally unique Name used as the sync
//     idempotency key.
//   - Row: server id, plus (TableID, RowKey) enforced unique by the store.
//   - View: server id only; views have no content-derived identity.
package models

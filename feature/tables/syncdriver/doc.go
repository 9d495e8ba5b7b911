// Package syncdriver is the client half of sync: it keeps an offline-first
// local sqlite store and periodically reconciles it against the server.
//
// The editor writes local records with Dirty set; Push collects them into
// one batch, submits it, and folds the server's canonical records back in
// (assigning server ids, clearing Dirty, marking conflicts). Pull replaces
// the clean part of the local store with a full server snapshot. At most
// one operation runs at a time, and back-to-back runs are throttled.
package syncdriver

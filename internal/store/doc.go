// Package store persists annotation records as a flat CSV table, one row per
// folder key.
//
// The whole table is loaded at startup and rewritten in full on every commit,
// which keeps the persisted column set self-consistent even after new label
// columns are added to the configuration. Label cells are tri-state: empty
// means "unset / not reviewed", which is distinct from an explicit 0.
package store

// Package permanent is the registry for on-disk firewall configuration
// objects. It merges vendor ("builtin") definitions with administrator
// ("custom") overrides into one namespace per kind, validates every change
// against the full cross-kind object graph before committing it, persists
// edits with backup-then-write semantics, and reconciles its in-memory state
// when files change outside its own API.
//
// The package is single-threaded by design: one API call or one reported
// file event runs to completion at a time. Re-entrant lookups during
// validation are safe because mutations commit only after the full check
// passes.
package permanent

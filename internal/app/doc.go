// Package app is the composition root for the storefront TUI.
//
// # Startup
//
// Run performs these steps in order:
//
//  1. Load a .env file, then the TOML config with environment overrides
//  2. Open the diagnostic log (obs) at the configured path
//  3. Open the storage backend: memory, a state directory, or PostgreSQL
//  4. Open a shop.Session, hydrating cart, compare, saved and recent lists
//  5. Start the catalog poller
//  6. Run the UI until the user quits or the context is cancelled
//
// A bad config, an unreachable database or an unreadable catalog file is
// fatal. Catalog fetch failures after startup are not: the poller keeps
// retrying with backoff and the UI shows the catalog as offline.
//
// # Polling
//
//	StartPoller goroutine
//	  ├─> fetch()               HTTP catalog or reloaded TOML file
//	  ├─> Snapshot.Next()       carry items forward on failure
//	  └─> chan<- Snapshot       capacity one, newest wins
//	          └─> ui applies it and reconciles cart stock
//
// The poller never touches the stores. Every store mutation happens on the
// UI goroutine, including stock reconciliation.
package app

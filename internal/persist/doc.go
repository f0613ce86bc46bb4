// Package persist reads and writes named state blobs to durable storage.
//
// A Backend stores raw bytes by key. Three are provided:
//
//   - Memory: process memory, for tests and throwaway sessions
//   - Dir: one JSON file per key, replaced atomically via rename
//   - Postgres: a storefront_state table through the pgx driver
//
// An Adapter layers a versioned JSON envelope over a Backend:
//
//	{"version":1,"snapshot_id":"…","updated_at":"…","state":{…}}
//
// Load never returns an error. Missing keys, unreadable storage, corrupt JSON
// and foreign versions all hydrate as "nothing stored" so a store starts as on
// first run. Save is synchronous and returns the backend error; callers decide
// whether to surface it.
//
// Slot[T] binds an Adapter to one key and is what stores hold.
package persist

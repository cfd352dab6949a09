// Package catalog syncs an Emby catalog into the local store and applies
// mapping decisions.
//
// A sync pass lists the remote items, collapses multi-part files, upserts
// the mirror, prunes rows the remote no longer lists and matches the mirror
// against local items that have no row for the server yet. Listing failures
// abort the pass before anything is written.
//
// Mapping operations (map, unmap, create, refresh) run one transaction each,
// so a failing operation does not affect the rest of its batch. Mapping and
// creating auto-tag the local item: genres link existing tags only, while
// actors, directors and studios always get a tag.
//
// # HTTP Endpoints
//
//   - POST /catalog/sync : Run a pass for the active server.
//   - GET /catalog/sync/last : The newest archived report.
//   - GET /catalog/view : Match results from the mirror, cached.
//   - POST /catalog/operations : Apply a batch of operations.
//   - GET /catalog/unmapped : Local items with no row for the active server.
//   - POST /catalog/genre-tags : Tag mapped items of a genre.
package catalog

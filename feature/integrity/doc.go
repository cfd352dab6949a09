// Package integrity provides system health checks.
//
// Unlike the 'catalog' package, which reconciles media items, this package
// validates the infrastructure the catalog runs on.
//
// # Checks Provided
//
//   - Schema: Every table and column the catalog models need exists (join tables included).
//   - Storage: The sync report bucket exists and whether it holds any report.
//   - Remote: The active Emby server answers /System/Info with the id stored when it was added.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/schema : Runs the schema check.
//   - GET /integrity/storage : Runs the storage check (supports ?fix=true).
//   - GET /integrity/remote : Runs the remote check.
package integrity

// Package servers manages the Emby servers the catalog syncs from.
//
// A server is only stored after a successful connection test, and it keeps
// the id the remote reported. At most one server is active: activating one,
// or creating an active one, deactivates the rest in the same transaction.
// Deleting a server deletes its mirror rows.
//
// The active server lookup goes through a reconcile.Cache. Every write
// refreshes or invalidates it.
//
// # HTTP Endpoints
//
//   - GET /servers : List servers.
//   - POST /servers : Add a server.
//   - POST /servers/test : Test a URL and API key.
//   - GET /servers/active : The active server.
//   - GET /servers/:id : One server.
//   - PATCH /servers/:id : Update a server.
//   - DELETE /servers/:id : Remove a server and its mirror rows.
package servers

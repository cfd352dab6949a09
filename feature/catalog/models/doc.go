// Package models defines the gorm models of the local catalog store.
//
// LocalItem and RemoteItem both implement reconcile.Entry so the matcher can
// compare them without knowing about the database.
package models

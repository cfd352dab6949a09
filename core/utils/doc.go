// Package utils provides small helpers shared across packages.
//
// The JSON column types StringList and StringMap persist genre, studio and
// people lists and provider id maps in plain text columns. Reading never
// fails on bad data: an empty or malformed value decodes to an empty value.
package utils

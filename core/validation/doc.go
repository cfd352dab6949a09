// Package validation validates request structs with go-playground/validator.
//
// Field errors are keyed by JSON name (including slice indexes for nested
// structs) so HTTP handlers can return them to clients as they are.
package validation

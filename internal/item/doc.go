// Package item holds the item model, request payload validation and the
// service that lists, reads, inserts and seeds items.
package item

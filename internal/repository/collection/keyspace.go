package collection

import "strings"

// Keyspace names the keys of one collection: documents live at
// <prefix><name>:<id> and are indexed by <prefix><name>:idx.
type Keyspace struct {
	Prefix string
	Name   string
}

// IndexName returns the FT index name.
func (k Keyspace) IndexName() string { return k.Prefix + k.Name + ":idx" }

// KeyPrefix returns the prefix shared by all document keys.
func (k Keyspace) KeyPrefix() string { return k.Prefix + k.Name + ":" }

// Key returns the hash key of a document.
func (k Keyspace) Key(id string) string { return k.KeyPrefix() + id }

// ID strips the key prefix from a document key.
func (k Keyspace) ID(key string) string { return strings.TrimPrefix(key, k.KeyPrefix()) }

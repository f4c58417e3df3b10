package repository

import "time"

// KVItem represents a kv_store row.
type KVItem struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

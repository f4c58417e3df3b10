package repository

import (
	"context"
	"database/sql"
	"errors"
	"slices"

	"github.com/jask/leaderboard/internal/database"
)

// KVRepo handles the kv_store table, the app's local key-value storage.
type KVRepo struct {
	db *sql.DB
}

func NewKVRepo(db *sql.DB) *KVRepo { return &KVRepo{db: db} }

// Get returns the value stored under key. ok is false when the key is absent.
func (r *KVRepo) Get(ctx context.Context, key string) (string, bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (r *KVRepo) Set(ctx context.Context, key, value string) error {
	return r.SetMany(ctx, map[string]string{key: value})
}

// SetMany upserts every key in one transaction, so readers never see half of a write.
func (r *KVRepo) SetMany(ctx context.Context, values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	now := database.Now()
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx, `
			INSERT INTO kv_store(key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at;
			`, k, values[k], now); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes key. Deleting an absent key is not an error.
func (r *KVRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key)
	return err
}

// List returns every row ordered by key.
func (r *KVRepo) List(ctx context.Context) ([]KVItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value, updated_at FROM kv_store ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []KVItem
	for rows.Next() {
		var it KVItem
		if err := rows.Scan(&it.Key, &it.Value, &it.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

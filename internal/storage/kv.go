package storage

import (
	"context"
	"fmt"
	"strings"
)

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if s == nil || s.db == nil {
		return "", false, ErrNotInitialized
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false, ErrEmptyKey
	}

	q := `SELECT value FROM kv_entries WHERE store_key = ?;`
	var value string
	if err := s.db.QueryRowContext(ctx, s.rebind(q), key).Scan(&value); err != nil {
		if isMissing(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if s == nil || s.db == nil {
		return ErrNotInitialized
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}

	nowMs := s.now().UnixMilli()
	q := `INSERT INTO kv_entries (store_key, value, created_at_ms, updated_at_ms, write_count)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(store_key) DO UPDATE SET
			value = excluded.value,
			updated_at_ms = excluded.updated_at_ms,
			write_count = kv_entries.write_count + 1;`
	if _, err := s.db.ExecContext(ctx, s.rebind(q), key, value, nowMs, nowMs); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if s == nil || s.db == nil {
		return ErrNotInitialized
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}

	q := `DELETE FROM kv_entries WHERE store_key = ?;`
	if _, err := s.db.ExecContext(ctx, s.rebind(q), key); err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

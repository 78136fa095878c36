package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Get when the key has never been written or
// was deleted.
var ErrNotFound = errors.New("payload not found")

// Payload is one stored value with its write metadata.
type Payload struct {
	Key       string
	Value     []byte
	Revision  int64
	WriteID   string
	WrittenAt time.Time
}

// Put writes value under key, replacing any previous value.
// Satisfies cart.PayloadStore.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("put payload: empty key")
	}
	if value == nil {
		value = []byte{}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO local_payloads (key, value, revision, write_id, written_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			revision   = local_payloads.revision + 1,
			write_id   = excluded.write_id,
			written_at = excluded.written_at
	`,
		key,
		value,
		s.newID(),
		s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("put payload %q: %w", key, err)
	}
	return nil
}

// Get reads the payload stored under key.
func (s *Store) Get(ctx context.Context, key string) (Payload, error) {
	var (
		p         Payload
		writtenAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT key, value, revision, write_id, written_at
		FROM local_payloads
		WHERE key = ?
	`, key).Scan(&p.Key, &p.Value, &p.Revision, &p.WriteID, &writtenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Payload{}, fmt.Errorf("get payload %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return Payload{}, fmt.Errorf("get payload %q: %w", key, err)
	}

	p.WrittenAt, err = time.Parse(time.RFC3339Nano, writtenAt)
	if err != nil {
		return Payload{}, fmt.Errorf("get payload %q: parse written_at: %w", key, err)
	}
	return p, nil
}

// Delete removes key. It reports whether a row was removed; deleting a
// missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM local_payloads WHERE key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("delete payload %q: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete payload %q: %w", key, err)
	}
	return n > 0, nil
}

// Keys lists stored keys, oldest write first.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key FROM local_payloads
		ORDER BY written_at ASC, key COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list payload keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("list payload keys: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

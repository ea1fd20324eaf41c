package sqlite

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/ericfisherdev/jobmatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.CredentialStore = (*KVRepo)(nil)
	_ driven.CacheStore      = (*KVRepo)(nil)
)

const entriesTable = "entries"

// KVRepo is the SQLite implementation of the key/value storage tiers.
// When constructed with a key, values are encrypted with AES-256-GCM before
// write and decrypted after read; names are always stored in the clear.
type KVRepo struct {
	db     *DB
	sq     sq.StatementBuilderType
	cipher *valueCipher // nil stores plaintext.
}

// NewKVRepo creates a plaintext KVRepo backed by db.
func NewKVRepo(db *DB) *KVRepo {
	return &KVRepo{db: db, sq: sq.StatementBuilder}
}

// NewEncryptedKVRepo creates a KVRepo that seals every value with key,
// which must be 32 bytes.
func NewEncryptedKVRepo(db *DB, key []byte) (*KVRepo, error) {
	c, err := newValueCipher(key)
	if err != nil {
		return nil, err
	}
	return &KVRepo{db: db, sq: sq.StatementBuilder, cipher: c}, nil
}

// Get returns the subset of keys that exist. With no keys it returns all entries.
func (r *KVRepo) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	q := r.sq.Select("name", "value").From(entriesTable)
	if len(keys) > 0 {
		q = q.Where(sq.Eq{"name": keys})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}

	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get entries: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string, len(keys))
	for rows.Next() {
		var name, stored string
		if err := rows.Scan(&name, &stored); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		value, err := r.decode(stored)
		if err != nil {
			return nil, fmt.Errorf("decrypt entry %q: %w", name, err)
		}
		out[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return out, nil
}

// Set upserts every entry in values in a single statement.
func (r *KVRepo) Set(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	q := r.sq.Insert(entriesTable).Columns("name", "value", "updated_at")
	for name, value := range values {
		stored, err := r.encode(value)
		if err != nil {
			return fmt.Errorf("encrypt entry %q: %w", name, err)
		}
		q = q.Values(name, stored, sq.Expr("CURRENT_TIMESTAMP"))
	}
	q = q.Suffix("ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at")

	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build set query: %w", err)
	}
	if _, err := r.db.Writer.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set entries: %w", err)
	}
	return nil
}

// Remove deletes the given keys. Removing a missing key is a no-op.
func (r *KVRepo) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	query, args, err := r.sq.Delete(entriesTable).Where(sq.Eq{"name": keys}).ToSql()
	if err != nil {
		return fmt.Errorf("build remove query: %w", err)
	}
	if _, err := r.db.Writer.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remove entries: %w", err)
	}
	return nil
}

// Clear deletes every entry in the store.
func (r *KVRepo) Clear(ctx context.Context) error {
	query, args, err := r.sq.Delete(entriesTable).ToSql()
	if err != nil {
		return fmt.Errorf("build clear query: %w", err)
	}
	if _, err := r.db.Writer.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	return nil
}

func (r *KVRepo) encode(value string) (string, error) {
	if r.cipher == nil {
		return value, nil
	}
	return r.cipher.seal(value)
}

func (r *KVRepo) decode(stored string) (string, error) {
	if r.cipher == nil {
		return stored, nil
	}
	return r.cipher.open(stored)
}

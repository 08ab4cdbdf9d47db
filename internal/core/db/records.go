package db

import (
	"context"
	"database/sql"
	"time"
)

// TranslationKind names the emitter a translation used.
type TranslationKind string

const (
	KindBool        TranslationKind = "bool"
	KindQueryString TranslationKind = "querystring"
)

// TranslationStatus is the outcome recorded in the audit log.
type TranslationStatus string

const (
	StatusOK       TranslationStatus = "ok"
	StatusRejected TranslationStatus = "rejected" // invalid tree, operator or value
	StatusError    TranslationStatus = "error"    // internal failure
)

// Translation is one row of the translation audit log.
// Only metadata is kept; rule trees and produced queries are not stored.
type Translation struct {
	ID           string            `db:"translation_id"`
	ClientID     string            `db:"client_id"`
	Kind         TranslationKind   `db:"kind"`
	Status       TranslationStatus `db:"status"`
	ErrorMessage string            `db:"error_message"`
	LeafCount    int               `db:"leaf_count"`
	DurationUs   int64             `db:"duration_us"`
	CreatedAt    time.Time         `db:"created_at"`
}

// APIKey is an issued key without its hash.
type APIKey struct {
	ID         string       `db:"api_key_id"`
	ClientID   string       `db:"client_id"`
	Name       string       `db:"name"`
	SecretID   string       `db:"secret_id"`
	CreatedAt  time.Time    `db:"created_at"`
	LastUsedAt sql.NullTime `db:"last_used_at"`
	RevokedAt  sql.NullTime `db:"revoked_at"`
}

// InsertTranslation appends an audit record.
func (q *Queries) InsertTranslation(ctx context.Context, t Translation) error {
	_, err := q.Exec(ctx, "insert-translation",
		t.ID, t.ClientID, string(t.Kind), string(t.Status), t.ErrorMessage, t.LeafCount, t.DurationUs, t.CreatedAt.UTC())
	return err
}

// ListTranslations returns the newest records for clientID, newest first.
func (q *Queries) ListTranslations(ctx context.Context, clientID string, limit int) ([]Translation, error) {
	var out []Translation
	if err := q.Select(ctx, "list-translations", &out, clientID, limit); err != nil {
		return nil, err
	}
	return out, nil
}

// InsertAPIKey stores a newly issued key. keyHash is the HMAC of the full key.
func (q *Queries) InsertAPIKey(ctx context.Context, k APIKey, keyHash []byte) error {
	_, err := q.Exec(ctx, "insert-api-key", k.ID, k.ClientID, k.Name, k.SecretID, keyHash, k.CreatedAt.UTC())
	return err
}

// ListAPIKeys returns all issued keys, oldest first.
func (q *Queries) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	var out []APIKey
	if err := q.Select(ctx, "list-api-keys", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RevokeAPIKey marks a key revoked. Reports false when the key is unknown or already revoked.
func (q *Queries) RevokeAPIKey(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := q.Exec(ctx, "revoke-api-key", at.UTC(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

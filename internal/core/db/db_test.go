package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMigrated(t *testing.T) (*Queries, func()) {
	t.Helper()
	database, err := Open("sqlite::memory:")
	require.NoError(t, err)

	_, err = MigrateUp(database)
	require.NoError(t, err)

	queries, err := LoadQueries(database)
	require.NoError(t, err)
	return queries, func() { database.Close() }
}

func TestOpen(t *testing.T) {
	t.Run("file path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rq.db")
		database, err := Open("sqlite://" + path)
		require.NoError(t, err)
		defer database.Close()
		assert.Equal(t, "sqlite3", database.DriverName())
	})

	t.Run("in memory", func(t *testing.T) {
		database, err := Open("sqlite::memory:")
		require.NoError(t, err)
		defer database.Close()
		assert.Equal(t, 1, database.Stats().MaxOpenConnections)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		_, err := Open("mysql://localhost/db")
		assert.ErrorContains(t, err, "unsupported database scheme")
	})

	t.Run("malformed URL", func(t *testing.T) {
		_, err := Open("://nope")
		assert.Error(t, err)
	})
}

func TestMigrateUp(t *testing.T) {
	database, err := Open("sqlite::memory:")
	require.NoError(t, err)
	defer database.Close()

	require.Error(t, RequireMigrated(database))

	ran, err := MigrateUp(database)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_initial_schema.sql"}, ran)

	// Second run is a no-op
	ran, err = MigrateUp(database)
	require.NoError(t, err)
	assert.Empty(t, ran)

	statuses, err := MigrateStatus(database)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Applied)
	require.NotNil(t, statuses[0].AppliedAt)
	assert.WithinDuration(t, time.Now(), *statuses[0].AppliedAt, time.Minute)

	assert.NoError(t, RequireMigrated(database))
}

func TestMigrateUp_ChecksumMismatch(t *testing.T) {
	database, err := Open("sqlite::memory:")
	require.NoError(t, err)
	defer database.Close()

	_, err = MigrateUp(database)
	require.NoError(t, err)

	_, err = database.Exec("UPDATE migrations SET checksum = 'tampered'")
	require.NoError(t, err)

	_, err = MigrateUp(database)
	assert.ErrorContains(t, err, "checksum mismatch")
}

func TestMigrateStatus_Pending(t *testing.T) {
	database, err := Open("sqlite::memory:")
	require.NoError(t, err)
	defer database.Close()

	statuses, err := MigrateStatus(database)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].Applied)
	assert.Nil(t, statuses[0].AppliedAt)
	assert.Len(t, statuses[0].Checksum, 64)
}

func TestStripComments(t *testing.T) {
	got := stripComments("\n-- header\n  -- indented\nCREATE TABLE x (id TEXT)\n")
	assert.Equal(t, "CREATE TABLE x (id TEXT)", got)
	assert.Empty(t, stripComments("\n-- only a comment\n"))
}

func TestTranslations(t *testing.T) {
	queries, done := openMigrated(t)
	defer done()
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	records := []Translation{
		{ID: "0190a000-0000-7000-8000-000000000001", ClientID: "web", Kind: KindBool, Status: StatusOK, LeafCount: 3, DurationUs: 120, CreatedAt: base},
		{ID: "0190a000-0000-7000-8000-000000000002", ClientID: "web", Kind: KindQueryString, Status: StatusRejected, ErrorMessage: "unsupported operator", LeafCount: 1, DurationUs: 40, CreatedAt: base.Add(time.Second)},
		{ID: "0190a000-0000-7000-8000-000000000003", ClientID: "batch", Kind: KindBool, Status: StatusOK, LeafCount: 9, DurationUs: 300, CreatedAt: base.Add(2 * time.Second)},
	}
	for _, r := range records {
		require.NoError(t, queries.InsertTranslation(ctx, r))
	}

	got, err := queries.ListTranslations(ctx, "web", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, records[1].ID, got[0].ID, "newest first")
	assert.Equal(t, KindQueryString, got[0].Kind)
	assert.Equal(t, StatusRejected, got[0].Status)
	assert.Equal(t, "unsupported operator", got[0].ErrorMessage)
	assert.True(t, records[1].CreatedAt.Equal(got[0].CreatedAt))

	got, err = queries.ListTranslations(ctx, "web", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestTranslations_KindConstraint(t *testing.T) {
	queries, done := openMigrated(t)
	defer done()

	err := queries.InsertTranslation(context.Background(), Translation{
		ID: "x", ClientID: "web", Kind: "sql", Status: StatusOK, CreatedAt: time.Now(),
	})
	assert.Error(t, err)
}

func TestAPIKeys(t *testing.T) {
	queries, done := openMigrated(t)
	defer done()
	ctx := context.Background()

	key := APIKey{ID: "key-1", ClientID: "web", Name: "frontend", SecretID: "0123456789abcdef0123456789abcdef", CreatedAt: time.Now()}
	require.NoError(t, queries.InsertAPIKey(ctx, key, []byte("hash-1")))

	// key_hash is unique
	dup := key
	dup.ID = "key-2"
	assert.Error(t, queries.InsertAPIKey(ctx, dup, []byte("hash-1")))

	var row struct {
		APIKeyID   string     `db:"api_key_id"`
		ClientID   string     `db:"client_id"`
		RevokedAt  *time.Time `db:"revoked_at"`
		LastUsedAt *time.Time `db:"last_used_at"`
	}
	require.NoError(t, queries.Get(ctx, "get-api-key-by-hash", &row, []byte("hash-1")))
	assert.Equal(t, "key-1", row.APIKeyID)
	assert.Equal(t, "web", row.ClientID)
	assert.Nil(t, row.RevokedAt)

	ok, err := queries.RevokeAPIKey(ctx, "key-1", time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = queries.RevokeAPIKey(ctx, "key-1", time.Now())
	require.NoError(t, err)
	assert.False(t, ok, "second revoke is a no-op")

	keys, err := queries.ListAPIKeys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.True(t, keys[0].RevokedAt.Valid)
	assert.False(t, keys[0].LastUsedAt.Valid)
}

func TestQueries_UnknownName(t *testing.T) {
	queries, done := openMigrated(t)
	defer done()

	_, err := queries.Exec(context.Background(), "drop-everything")
	assert.ErrorContains(t, err, "query not found")
}

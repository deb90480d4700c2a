package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openRaw(t *testing.T, name string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), name))
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrateUpCoinc(t *testing.T) {
	db := openRaw(t, "statmap.sqlite")

	require.NoError(t, MigrateUp(db, KindCoinc))

	version, dirty, err := MigrateVersion(db, KindCoinc)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(2), version)

	// Both foreground and background partitions exist after migration.
	for _, table := range []string{"store_attrs", "foreground", "background", "background_exc"} {
		var count int
		err := db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s should exist", table)
	}

	// Running up again is a no-op.
	require.NoError(t, MigrateUp(db, KindCoinc))
}

func TestMigrateUpTriggersAndBank(t *testing.T) {
	trig := openRaw(t, "triggers.sqlite")
	require.NoError(t, MigrateUp(trig, KindTriggers))
	version, _, err := MigrateVersion(trig, KindTriggers)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)

	bank := openRaw(t, "bank.sqlite")
	require.NoError(t, MigrateUp(bank, KindBank))
	version, _, err = MigrateVersion(bank, KindBank)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}

func TestMigrateDown(t *testing.T) {
	db := openRaw(t, "statmap.sqlite")
	require.NoError(t, MigrateUp(db, KindCoinc))

	require.NoError(t, MigrateDown(db, KindCoinc))

	version, dirty, err := MigrateVersion(db, KindCoinc)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='background'").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "background partition should be gone after down")
}

func TestMigrateTo(t *testing.T) {
	db := openRaw(t, "triggers.sqlite")

	require.NoError(t, MigrateTo(db, KindTriggers, 1))
	version, _, err := MigrateVersion(db, KindTriggers)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}

func TestMigrateVersionFresh(t *testing.T) {
	db := openRaw(t, "fresh.sqlite")

	version, dirty, err := MigrateVersion(db, KindBank)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(0), version)
}

func TestMigrateUnknownKind(t *testing.T) {
	db := openRaw(t, "unknown.sqlite")

	err := MigrateUp(db, "strainmap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store kind")
}

func TestMigratedCoincOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statmap.sqlite")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)

	require.NoError(t, MigrateUp(db, KindCoinc))
	require.NoError(t, SetAttr(db, "detector_1", "H1"))
	require.NoError(t, SetAttr(db, "detector_2", "L1"))
	require.NoError(t, InsertEvent(db, "foreground", CandidateEvent{Idx: 0, Stat: 8.0}))
	require.NoError(t, db.Close())

	s, err := OpenCoinc(path, "foreground")
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 1, s.Len())
}

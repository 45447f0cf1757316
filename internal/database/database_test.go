package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jimdaga/wellness-checkin/internal/directory"
	"github.com/jimdaga/wellness-checkin/internal/rowstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialect(t *testing.T) {
	assert.Equal(t, DialectSQLite, Dialect("sqlite://checkins.db"))
	assert.Equal(t, DialectSQLite, Dialect("file:checkins.db?cache=shared"))
	assert.Equal(t, DialectPostgres, Dialect("postgres://u:p@localhost:5432/checkins"))
}

func TestEnsureTimezoneUTC(t *testing.T) {
	dsn, err := ensureTimezoneUTC("postgres://u:p@localhost:5432/checkins?sslmode=disable")
	require.NoError(t, err)
	assert.Contains(t, dsn, "TimeZone=UTC")
	assert.Contains(t, dsn, "sslmode=disable")

	dsn, err = ensureTimezoneUTC("postgres://localhost/checkins?TimeZone=America%2FSao_Paulo")
	require.NoError(t, err)
	assert.Contains(t, dsn, "TimeZone=America%2FSao_Paulo")
}

func TestMigrateAndSeedSQLite(t *testing.T) {
	ctx := context.Background()
	url := fmt.Sprintf("sqlite://%s", filepath.Join(t.TempDir(), "checkins.db"))

	db, err := Init(url)
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })

	require.NoError(t, RunMigrations(db, nil))
	require.NoError(t, RunMigrations(db, nil), "second run is a no-op")

	store := rowstore.NewDatabase(db)
	require.NoError(t, SeedDevData(ctx, store, nil))
	require.NoError(t, SeedDevData(ctx, store, nil), "seeding twice is idempotent")

	users, err := store.Read(ctx, rowstore.TableUsers)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, directory.Header, users[0])

	for _, table := range []string{rowstore.TableCheckins, rowstore.TableMessages} {
		rows, err := store.Read(ctx, table)
		require.NoError(t, err)
		assert.Len(t, rows, 1, table)
	}

	user, ok := directory.New(store, nil, nil).Authenticate(ctx, DevPatient, DevPassword)
	require.True(t, ok)
	assert.Equal(t, DevCounselor, user.Counselor)
}

func TestInitRequiresURL(t *testing.T) {
	_, err := Init("")
	assert.Error(t, err)
}

package postgres

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/stationscore/internal/storage"
	"github.com/mcoot/stationscore/internal/storage/storagetest"
)

// The suite runs against a disposable database named by STATIONSCORE_TEST_DATABASE_URL.
// Every test starts from a freshly migrated, empty schema.
type StorageSuite struct {
	storagetest.Suite
	storage *Storage
}

func TestStorageSuite(t *testing.T) {
	dsn := os.Getenv("STATIONSCORE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("STATIONSCORE_TEST_DATABASE_URL not set")
	}

	s := new(StorageSuite)
	s.NewStorage = func() storage.Storage {
		t := s.T()
		require.NoError(t, MigrateDown(dsn))
		_, err := Migrate(dsn)
		require.NoError(t, err)

		st, err := Open(dsn)
		require.NoError(t, err)
		s.storage = st
		return st
	}
	suite.Run(t, s)
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := migrationFiles.ReadDir("migrations")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "000001_init.down.sql", entries[0].Name())
	require.Equal(t, "000001_init.up.sql", entries[1].Name())
}

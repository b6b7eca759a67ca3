// Package storetest opens isolated in-memory SQLite stores for tests.
package storetest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dms/internal/store"
)

// New returns a migrated store backed by a private in-memory SQLite database.
// The database is dropped when the test finishes.
func New(t testing.TB) *store.Store {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	s, err := store.Open(store.Config{Driver: store.DriverSQLite, DSN: dsn, Timeout: 5 * time.Second}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))

	t.Cleanup(func() { _ = s.Close() })
	return s
}

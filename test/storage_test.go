//go:build integration_test || all_tests

package test

import (
	"context"

	"github.com/2beens/fittrack/internal"
	"github.com/2beens/fittrack/internal/storage"
	"github.com/2beens/fittrack/internal/tracker"
)

func (s *IntegrationTestSuite) TestPostgresBackend_KVAndMigrations() {
	ctx := context.Background()

	backend, err := internal.OpenBackend(ctx, internal.OpenBackendParams{
		Config: getTestConfig("postgres", s.redisPort, s.postgresPort),
	})
	s.Require().NoError(err)
	defer backend.Close()
	s.Equal(storage.BackendPostgres, backend.Kind)
	s.Len(backend.Collectors, 1)

	_, found, err := backend.KV.Get(ctx, "missing")
	s.Require().NoError(err)
	s.False(found)

	s.Require().NoError(backend.KV.Set(ctx, storage.KeyTheme, "dark"))
	s.Require().NoError(backend.KV.Set(ctx, storage.KeyTheme, "light"))
	value, found, err := backend.KV.Get(ctx, storage.KeyTheme)
	s.Require().NoError(err)
	s.True(found)
	s.Equal("light", value)

	var stored string
	s.Require().NoError(s.DB.QueryRowContext(ctx,
		`SELECT item_value FROM kv_store WHERE item_key = $1`, storage.KeyTheme,
	).Scan(&stored))
	s.Equal("light", stored)

	s.Require().NoError(backend.KV.Remove(ctx, storage.KeyTheme))
	s.Require().NoError(backend.KV.Remove(ctx, storage.KeyTheme))

	// the store seeds once and survives a reopen
	store := tracker.NewStore(backend.KV)
	res, err := tracker.Bootstrap(ctx, store, tracker.NewSeeder(store, nil))
	s.Require().NoError(err)
	s.True(res.Seeded)

	reopened := tracker.NewStore(backend.KV)
	res, err = tracker.Bootstrap(ctx, reopened, tracker.NewSeeder(reopened, nil))
	s.Require().NoError(err)
	s.False(res.Seeded)
	s.Equal(tracker.SeedReasonAlreadySeeded, res.Reason)
	s.Equal(store.Summary(), reopened.Summary())

	// migrations are idempotent
	again, err := internal.OpenBackend(ctx, internal.OpenBackendParams{
		Config: getTestConfig("postgres", s.redisPort, s.postgresPort),
	})
	s.Require().NoError(err)
	again.Close()
}

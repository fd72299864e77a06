package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
)

func TestIdempotencyRepository_PostgresCreateGetAndMarkDone(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewIdempotencyRepository(store)
	ctx := context.Background()

	key := "checkout-key-done"
	ttl := time.Now().UTC().Add(2 * time.Hour).Round(time.Second)

	created, err := repo.CreateProcessing(ctx, key, "req-hash-1", ttl)
	require.NoError(t, err)
	require.Equal(t, domain.IdempotencyStatusProcessing, created.Status)

	require.NoError(t, repo.MarkDone(ctx, key, []byte(`{"url":"https://pay.example/s"}`), 200))

	got, err := repo.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "req-hash-1", got.RequestHash)
	require.Equal(t, domain.IdempotencyStatusDone, got.Status)
	require.Equal(t, 200, got.HTTPStatus)
	require.JSONEq(t, `{"url":"https://pay.example/s"}`, string(got.ResponseBody))
	require.True(t, got.TTLAt.Equal(ttl), "ttl mismatch: expected %s, got %s", ttl, got.TTLAt)
}

func TestIdempotencyRepository_PostgresConflictAndHashMismatch(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewIdempotencyRepository(store)
	ctx := context.Background()

	ttl := time.Now().UTC().Add(time.Hour)
	_, err := repo.CreateProcessing(ctx, "checkout-key-conflict", "req-hash-a", ttl)
	require.NoError(t, err)

	_, err = repo.CreateProcessing(ctx, "checkout-key-conflict", "req-hash-a", ttl)
	require.ErrorIs(t, err, domain.ErrIdempotencyKeyAlreadyExists)

	_, err = repo.CreateProcessing(ctx, "checkout-key-conflict", "req-hash-b", ttl)
	require.ErrorIs(t, err, domain.ErrIdempotencyHashMismatch)
}

func TestIdempotencyRepository_PostgresExpiredKeyIsReplaced(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewIdempotencyRepository(store)
	ctx := context.Background()

	_, err := repo.CreateProcessing(ctx, "checkout-key-expired", "old", time.Now().UTC().Add(-time.Minute))
	require.NoError(t, err)

	record, err := repo.CreateProcessing(ctx, "checkout-key-expired", "new", time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, "new", record.RequestHash)

	got, err := repo.Get(ctx, "checkout-key-expired")
	require.NoError(t, err)
	require.Equal(t, "new", got.RequestHash)
	require.Equal(t, domain.IdempotencyStatusProcessing, got.Status)
}

func TestIdempotencyRepository_PostgresDeleteExpired(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewIdempotencyRepository(store)
	ctx := context.Background()

	now := time.Now().UTC()
	for i, ttl := range []time.Duration{-5 * time.Minute, -4 * time.Minute, -3 * time.Minute} {
		_, err := repo.CreateProcessing(ctx, "checkout-expired-"+string(rune('a'+i)), "h", now.Add(ttl))
		require.NoError(t, err)
	}
	_, err := repo.CreateProcessing(ctx, "checkout-active", "h", now.Add(time.Hour))
	require.NoError(t, err)

	removed, err := repo.DeleteExpired(ctx, now, 2)
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	removed, err = repo.DeleteExpired(ctx, now, 0)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	_, err = repo.Get(ctx, "checkout-active")
	require.NoError(t, err)
}

func TestIdempotencyRepository_PostgresDeleteReleasesKey(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewIdempotencyRepository(store)
	ctx := context.Background()

	key := "checkout-key-released"
	ttl := time.Now().UTC().Add(time.Hour)
	_, err := repo.CreateProcessing(ctx, key, "req-hash-1", ttl)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, key))
	require.NoError(t, repo.Delete(ctx, key))
	_, err = repo.Get(ctx, key)
	require.ErrorIs(t, err, domain.ErrIdempotencyKeyNotFound)

	_, err = repo.CreateProcessing(ctx, key, "req-hash-2", ttl)
	require.NoError(t, err)
}

package idempotency

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
	"github.com/vladislavdragonenkov/storeadmin/internal/storage/memory"
)

func countingHandler(calls *int, resp Response) func(context.Context) Response {
	return func(context.Context) Response {
		*calls++
		return resp
	}
}

func TestKeeper_ReplaysCompletedResponse(t *testing.T) {
	ctx := context.Background()
	keeper := NewKeeper(memory.NewIdempotencyRepository(), time.Hour, nil)
	calls := 0
	handler := countingHandler(&calls, Response{Status: http.StatusOK, Body: []byte(`{"url":"https://pay/1"}`)})

	first, replayed, err := keeper.Do(ctx, "checkout:store-1", "key-1", []byte(`{"productIds":["p1"]}`), handler)
	require.NoError(t, err)
	assert.False(t, replayed)

	second, replayed, err := keeper.Do(ctx, "checkout:store-1", "key-1", []byte(`{"productIds":["p1"]}`), handler)
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestKeeper_ReplaysStoredFailure(t *testing.T) {
	ctx := context.Background()
	keeper := NewKeeper(memory.NewIdempotencyRepository(), time.Hour, nil)
	calls := 0
	handler := countingHandler(&calls, Response{Status: http.StatusBadRequest, Body: []byte("Product ids are required")})

	_, _, err := keeper.Do(ctx, "checkout:store-1", "key-2", []byte(`{}`), handler)
	require.NoError(t, err)

	resp, replayed, err := keeper.Do(ctx, "checkout:store-1", "key-2", []byte(`{}`), handler)
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "Product ids are required", string(resp.Body))
	assert.Equal(t, 1, calls)
}

func TestKeeper_RejectsDifferentBody(t *testing.T) {
	ctx := context.Background()
	keeper := NewKeeper(memory.NewIdempotencyRepository(), time.Hour, nil)
	calls := 0
	handler := countingHandler(&calls, Response{Status: http.StatusOK})

	_, _, err := keeper.Do(ctx, "checkout:store-1", "key-3", []byte(`{"productIds":["p1"]}`), handler)
	require.NoError(t, err)

	_, _, err = keeper.Do(ctx, "checkout:store-1", "key-3", []byte(`{"productIds":["p2"]}`), handler)
	require.ErrorIs(t, err, ErrKeyReused)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	_, _, err = keeper.Do(ctx, "checkout:store-2", "key-3", []byte(`{"productIds":["p1"]}`), handler)
	require.ErrorIs(t, err, ErrKeyReused)
	assert.Equal(t, 1, calls)
}

func TestKeeper_RejectsWhileProcessing(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewIdempotencyRepository()
	keeper := NewKeeper(repo, time.Hour, nil)
	body := []byte(`{"productIds":["p1"]}`)

	_, err := repo.CreateProcessing(ctx, "key-4", RequestHash("checkout:store-1", body), time.Now().Add(time.Hour))
	require.NoError(t, err)

	calls := 0
	_, _, err = keeper.Do(ctx, "checkout:store-1", "key-4", body, countingHandler(&calls, Response{Status: http.StatusOK}))
	require.ErrorIs(t, err, ErrInProgress)
	assert.Zero(t, calls)
}

// finishFailingRepo не может сохранить ответ, остальные операции идут в memory.
type finishFailingRepo struct {
	domain.IdempotencyRepository
}

func (finishFailingRepo) MarkDone(context.Context, string, []byte, int) error {
	return errors.New("connection reset")
}

func (finishFailingRepo) MarkFailed(context.Context, string, []byte, int) error {
	return errors.New("connection reset")
}

func TestKeeper_ReleasesKeyWhenResponseCannotBeStored(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewIdempotencyRepository()
	keeper := NewKeeper(finishFailingRepo{repo}, time.Hour, nil)
	body := []byte(`{"productIds":["p1"]}`)

	for _, status := range []int{http.StatusOK, http.StatusNotFound} {
		calls := 0
		handler := countingHandler(&calls, Response{Status: status})
		for i := 0; i < 2; i++ {
			resp, replayed, err := keeper.Do(ctx, "checkout:store-1", "key-6", body, handler)
			require.NoError(t, err)
			assert.False(t, replayed)
			assert.Equal(t, status, resp.Status)
		}
		assert.Equal(t, 2, calls, "retry runs the handler again instead of 409")

		_, err := repo.Get(ctx, "key-6")
		require.ErrorIs(t, err, domain.ErrIdempotencyKeyNotFound)
	}
}

func TestKeeper_EmptyKeyBypassesStorage(t *testing.T) {
	keeper := NewKeeper(memory.NewIdempotencyRepository(), 0, nil)
	calls := 0
	handler := countingHandler(&calls, Response{Status: http.StatusOK})

	for i := 0; i < 2; i++ {
		_, replayed, err := keeper.Do(context.Background(), "checkout:store-1", "  ", nil, handler)
		require.NoError(t, err)
		assert.False(t, replayed)
	}
	assert.Equal(t, 2, calls)
	assert.Equal(t, DefaultTTL, keeper.ttl)
}

func TestRequestHash(t *testing.T) {
	a := RequestHash("checkout:s1", []byte("body"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, RequestHash("checkout:s1", []byte("body")))
	assert.NotEqual(t, a, RequestHash("checkout:s2", []byte("body")))
	assert.NotEqual(t, a, RequestHash("checkout:s1", []byte("body2")))
}

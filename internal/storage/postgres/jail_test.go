package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/runehall/internal/game/jail"
	"github.com/cory-johannsen/runehall/internal/storage/postgres"
	"github.com/cory-johannsen/runehall/internal/testutil"
)

func makeTestRecord(userID int64) *jail.Record {
	now := time.Now().UTC().Truncate(time.Second)
	return &jail.Record{
		UserID:    userID,
		Reason:    "caught stealing iron sword",
		JailedAt:  now,
		ReleaseAt: now.Add(15 * time.Minute),
		BailCost:  750,
		Released:  jail.Serving,
	}
}

func TestJailRepository_CreateAndGetOpen(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewJailRepository(pool.DB())
	ctx := context.Background()

	created, err := repo.Create(ctx, makeTestRecord(7))
	require.NoError(t, err)
	assert.Greater(t, created.ID, int64(0))

	open, err := repo.GetOpenByUser(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, created.ID, open.ID)
	assert.Equal(t, "caught stealing iron sword", open.Reason)
	assert.Equal(t, int64(750), open.BailCost)
	assert.Equal(t, jail.Serving, open.Released)
}

func TestJailRepository_GetOpenByUser_NotJailed(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewJailRepository(pool.DB())

	open, err := repo.GetOpenByUser(context.Background(), 999999)
	require.NoError(t, err)
	assert.Nil(t, open)
}

func TestJailRepository_Create_SecondOpenSentenceRejected(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewJailRepository(pool.DB())
	ctx := context.Background()

	_, err := repo.Create(ctx, makeTestRecord(7))
	require.NoError(t, err)

	_, err = repo.Create(ctx, makeTestRecord(7))
	assert.ErrorIs(t, err, postgres.ErrAlreadyJailed)
}

func TestJailRepository_Save_ReleaseReopensSlot(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewJailRepository(pool.DB())
	ctx := context.Background()

	created, err := repo.Create(ctx, makeTestRecord(7))
	require.NoError(t, err)

	created.Released = jail.Bailed
	require.NoError(t, repo.Save(ctx, created))

	open, err := repo.GetOpenByUser(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, open)

	// A closed record no longer blocks a new sentence.
	_, err = repo.Create(ctx, makeTestRecord(7))
	require.NoError(t, err)
}

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/runehall/internal/game/battle"
	"github.com/cory-johannsen/runehall/internal/storage/postgres"
	"github.com/cory-johannsen/runehall/internal/testutil"
)

func setupSessionRepo(t *testing.T) (*postgres.BattleSessionRepository, int64) {
	t.Helper()
	pool := testutil.NewPool(t)
	acctRepo := postgres.NewAccountRepository(pool.DB())
	acct, err := acctRepo.Create(context.Background(), uniqueName("user"), "password123")
	require.NoError(t, err)
	charRepo := postgres.NewCharacterRepository(pool.DB())
	char, err := charRepo.Create(context.Background(), makeTestCharacter(acct.ID, "Zara"))
	require.NoError(t, err)
	return postgres.NewBattleSessionRepository(pool.DB()), char.ID
}

func makeTestSession(characterID int64) *battle.Session {
	return &battle.Session{
		ID:          uuid.New(),
		CharacterID: characterID,
		MonsterID:   "cave-rat",
		PlayerHP:    20,
		PlayerMP:    10,
		MonsterHP:   8,
		MonsterMP:   0,
		State:       battle.StateInProgress,
		StartedAt:   time.Now().UTC().Truncate(time.Second),
	}
}

func TestBattleSessionRepository_CreateAndGetLive(t *testing.T) {
	repo, charID := setupSessionRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, makeTestSession(charID))
	require.NoError(t, err)

	live, err := repo.GetLiveByCharacter(ctx, charID)
	require.NoError(t, err)
	require.NotNil(t, live)
	assert.Equal(t, created.ID, live.ID)
	assert.Equal(t, "cave-rat", live.MonsterID)
	assert.Equal(t, 20, live.PlayerHP)
	assert.Equal(t, battle.StateInProgress, live.State)
	assert.Empty(t, live.Log)
}

func TestBattleSessionRepository_GetLive_NoSession(t *testing.T) {
	repo, charID := setupSessionRepo(t)

	live, err := repo.GetLiveByCharacter(context.Background(), charID)
	require.NoError(t, err)
	assert.Nil(t, live)
}

func TestBattleSessionRepository_Create_SecondLiveSessionRejected(t *testing.T) {
	repo, charID := setupSessionRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, makeTestSession(charID))
	require.NoError(t, err)

	_, err = repo.Create(ctx, makeTestSession(charID))
	assert.ErrorIs(t, err, postgres.ErrSessionExists)
}

func TestBattleSessionRepository_Save_TurnLogRoundTrip(t *testing.T) {
	repo, charID := setupSessionRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, makeTestSession(charID))
	require.NoError(t, err)

	created.Turn = 2
	created.PlayerHP = 14
	created.MonsterHP = 0
	created.State = battle.StateWon
	created.Log = []battle.TurnEntry{
		{Turn: 1, Action: battle.ActionAttack, PlayerDamage: 5, MonsterDamage: 3, PlayerHP: 17, MonsterHP: 3, Outcome: battle.StateInProgress},
		{Turn: 2, Action: battle.ActionAttack, PlayerDamage: 4, MonsterDamage: 3, PlayerCrit: true, PlayerHP: 14, MonsterHP: 0, Ended: true, Outcome: battle.StateWon},
	}
	require.NoError(t, repo.Save(ctx, created))

	// A won session is terminal, so the live lookup no longer returns it and
	// a fresh encounter may begin.
	live, err := repo.GetLiveByCharacter(ctx, charID)
	require.NoError(t, err)
	assert.Nil(t, live)

	fresh, err := repo.Create(ctx, makeTestSession(charID))
	require.NoError(t, err)

	live, err = repo.GetLiveByCharacter(ctx, charID)
	require.NoError(t, err)
	require.NotNil(t, live)
	assert.Equal(t, fresh.ID, live.ID)
}

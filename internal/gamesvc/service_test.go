package gamesvc_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/runehall/internal/config"
	"github.com/cory-johannsen/runehall/internal/game/battle"
	"github.com/cory-johannsen/runehall/internal/game/character"
	"github.com/cory-johannsen/runehall/internal/game/craft"
	"github.com/cory-johannsen/runehall/internal/game/economy"
	"github.com/cory-johannsen/runehall/internal/game/encounter"
	"github.com/cory-johannsen/runehall/internal/game/engine"
	"github.com/cory-johannsen/runehall/internal/game/formula"
	"github.com/cory-johannsen/runehall/internal/game/item"
	"github.com/cory-johannsen/runehall/internal/game/jail"
	"github.com/cory-johannsen/runehall/internal/game/monster"
	"github.com/cory-johannsen/runehall/internal/game/refdata"
	"github.com/cory-johannsen/runehall/internal/game/vault"
	"github.com/cory-johannsen/runehall/internal/gamesvc"
	"github.com/cory-johannsen/runehall/internal/storage/postgres"
	"github.com/cory-johannsen/runehall/internal/testutil"
)

// zeroSource always draws 0, pinning every roll: attacks always hit and
// crit, flees always succeed, skill checks always pass, jail rolls always
// land, and d20s come up 1.
type zeroSource struct{}

func (zeroSource) Intn(n int) int { return 0 }

func testDefs() map[string]*item.Def {
	return map[string]*item.Def{
		"iron-sword": {ID: "iron-sword", Name: "Iron Sword", Slot: item.SlotWeapon, Price: 100, Power: 5, Difficulty: 75, DurationMax: 50},
		"iron-ore":   {ID: "iron-ore", Name: "Iron Ore", Price: 5, Difficulty: 10, DurationMax: 1},
		"raw-stone":  {ID: "raw-stone", Name: "Raw Stone", Price: 3, Difficulty: 10, DurationMax: 1},
		"cut-stone":  {ID: "cut-stone", Name: "Cut Stone", Price: 8, Difficulty: 10, DurationMax: 1},
		"arcane-gem": {ID: "arcane-gem", Name: "Arcane Gem", Price: 40, Difficulty: 20, DurationMax: 1},
		"rat-tail":   {ID: "rat-tail", Name: "Rat Tail", Price: 2, Difficulty: 7, DurationMax: 1},
	}
}

func testMonsters() map[string]*monster.Template {
	return map[string]*monster.Template{
		"cave-rat": {
			ID: "cave-rat", Name: "Cave Rat", Level: 1,
			MaxHP: 8, MaxMP: 0, Might: 4, Defense: 0, Element: "earth",
			Rewards: monster.Rewards{XPMin: 5, XPMax: 5, GoldMin: 3, GoldMax: 3},
		},
	}
}

func testGameConfig() config.GameConfig {
	return config.GameConfig{
		Battle: battle.Config{
			DailyBattleLimit: 10, FleeChancePercent: 50, HitChancePercent: 85,
			CritChancePercent: 10, CritMultiplier: 2.0, DefendReductionPercent: 50,
			DamageVariance: 4, RewardModifierPercent: 100, LevelDeltaPercent: 10,
			XPPenaltyPercent: 0, HPGainRandMax: 4, MPGainRandMax: 2,
			SkillPointsPerLevel: 1, HealCost: 50, ResurrectCost: 200,
		},
		Vault: vault.Config{
			InterestRate: 0.02, InterestPeriod: 24 * time.Hour,
			LoanRate: 0.05, LoanPeriod: 24 * time.Hour,
			LoanMaxSum: 5000, WarehouseTaxPercent: 5,
		},
		Jail: jail.Config{
			ChancePercent: 40,
			Tiers: []jail.SentenceTier{
				{MaxPrice: 100, Duration: 5 * time.Minute},
				{MaxPrice: 300, Duration: 15 * time.Minute},
			},
			DefaultDuration: 2 * time.Hour,
			BailMinimum:     500,
			BailPriceFactor: 3,
		},
		Economy: economy.Config{
			TradingPowerPercent: 2, TradingCapPercent: 30, ShopTaxPercent: 10,
			DailyTheftLimit: 3, DailyStockTradeLimit: 5,
			QualityPriceModifiers: item.QualityPriceModifiers,
		},
		Craft: craft.Config{
			DailyWorkLimit: 10,
			Mining: craft.GatherConfig{
				SkillParams: craft.SkillParams{BasePercent: 30, PerLevelPercent: 5, CapPercent: 90},
				OutputDefID: "iron-ore",
			},
			StoneCutting: craft.RefineConfig{
				SkillParams: craft.SkillParams{BasePercent: 25, PerLevelPercent: 5, CapPercent: 85},
				InputDefID:  "raw-stone",
				OutputDefID: "cut-stone",
			},
			Enchanting: craft.EnchantConfig{
				SkillParams:   craft.SkillParams{BasePercent: 20, PerLevelPercent: 5, CapPercent: 75},
				MaterialDefID: "arcane-gem",
			},
			Forging: craft.ForgeConfig{
				SkillParams:        craft.SkillParams{BasePercent: 30, PerLevelPercent: 4, CapPercent: 95},
				CritReservePercent: 5,
				Recipes: []craft.ForgeRecipe{
					{OutputDefID: "iron-sword", Materials: map[string]int{"iron-ore": 2, "cut-stone": 1}},
				},
				QualityBuckets: []formula.QualityBucket{
					{Tier: 2, MinSkill: 5, Threshold: 90},
					{Tier: 1, MinSkill: 2, Threshold: 70},
				},
			},
		},
		Encounter: encounter.Config{LevelWindow: 2},
	}
}

type testEnv struct {
	svc    *gamesvc.Service
	pool   *postgres.Pool
	charID int64
}

func newTestService(t *testing.T) *testEnv {
	t.Helper()
	pool := testutil.NewPool(t)
	ctx := context.Background()

	acctRepo := postgres.NewAccountRepository(pool.DB())
	acct, err := acctRepo.Create(ctx, fmt.Sprintf("user_%d", time.Now().UnixNano()), "password123")
	require.NoError(t, err)

	charRepo := postgres.NewCharacterRepository(pool.DB())
	char, err := charRepo.Create(ctx, &character.Character{
		AccountID: acct.ID,
		Name:      "Zara",
		Race:      "human",
		Class:     "warrior",
		Element:   "fire",
		Level:     1,
		Gold:      2000,
		Stats: character.Stats{
			Strength: 14, Dexterity: 12, Constitution: 10,
			Intelligence: 10, Wisdom: 8, Charisma: 12,
		},
		MaxHP: 20, CurrentHP: 20, MaxMP: 10, CurrentMP: 10,
		Skills: map[string]int{},
	})
	require.NoError(t, err)

	monsters := testMonsters()
	templates := make([]*monster.Template, 0, len(monsters))
	for _, tmpl := range monsters {
		templates = append(templates, tmpl)
	}
	selector, err := encounter.NewSelector(templates, encounter.Config{LevelWindow: 2}, nil)
	require.NoError(t, err)

	registry := refdata.NewRegistry(
		[]*refdata.Race{{ID: "human", Name: "Human", Element: "fire"}},
		[]*refdata.Class{{ID: "warrior", Name: "Warrior", HPBonus: 4, HPLevelBonus: 2}},
	)

	svc := gamesvc.New(pool, registry, testDefs(), monsters, selector, zeroSource{}, testGameConfig(), zap.NewNop())
	return &testEnv{svc: svc, pool: pool, charID: char.ID}
}

func (e *testEnv) seedItem(t *testing.T, inst *item.Instance) *item.Instance {
	t.Helper()
	if inst.InstanceKey == "" {
		inst.InstanceKey = uuid.NewString()
	}
	created, err := postgres.NewItemRepository(e.pool.DB()).Create(context.Background(), inst)
	require.NoError(t, err)
	return created
}

func TestCreateCharacter(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	created, err := env.svc.CreateCharacter(ctx, 1, "Borin", "human", "warrior")
	require.NoError(t, err)
	assert.Greater(t, created.ID, int64(0))
	assert.Equal(t, "fire", created.Element)
	assert.Equal(t, 1, created.Level)
	assert.Greater(t, created.MaxHP, 0)

	_, err = env.svc.CreateCharacter(ctx, 1, "Borin", "elf", "warrior")
	assert.ErrorIs(t, err, engine.ErrValidation)
}

func TestBuyItem(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	sword := env.seedItem(t, &item.Instance{DefID: "iron-sword", ShopID: 3, Durability: 50})

	res, err := env.svc.BuyItem(ctx, env.charID, sword.ID)
	require.NoError(t, err)
	assert.Equal(t, env.charID, res.Instance.OwnerID)
	assert.Equal(t, int64(0), res.Instance.ShopID)
	assert.Greater(t, res.Price, int64(0))
	assert.Equal(t, int64(2000)-res.Price, res.Character.Gold)

	inv, err := env.svc.Inventory(ctx, env.charID)
	require.NoError(t, err)
	require.Len(t, inv, 1)
	assert.Equal(t, sword.ID, inv[0].ID)

	stock, err := env.svc.ShopStock(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, stock)
}

func TestSellItem(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	sword := env.seedItem(t, &item.Instance{DefID: "iron-sword", OwnerID: env.charID, Durability: 50})

	res, err := env.svc.SellItem(ctx, env.charID, sword.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Instance.OwnerID)
	assert.Equal(t, int64(3), res.Instance.ShopID)
	assert.Greater(t, res.Price, int64(0))
	assert.Equal(t, int64(2000)+res.Price-res.Tax, res.Character.Gold)
}

func TestEquipUnequip(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	sword := env.seedItem(t, &item.Instance{DefID: "iron-sword", OwnerID: env.charID, Durability: 50})

	c, err := env.svc.EquipItem(ctx, env.charID, sword.ID)
	require.NoError(t, err)
	assert.Equal(t, sword.ID, c.Equipment.Weapon)

	// An equipped item cannot be sold.
	_, err = env.svc.SellItem(ctx, env.charID, sword.ID, 3)
	assert.ErrorIs(t, err, engine.ErrStateConflict)

	c, err = env.svc.UnequipItem(ctx, env.charID, sword.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), c.Equipment.Weapon)
}

func TestStealItem_FailureJailsAndGatesActions(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	sword := env.seedItem(t, &item.Instance{DefID: "iron-sword", ShopID: 3, Durability: 50})

	// zeroSource rolls a natural 1: the steal check fails against DC 10 and
	// the independent jail roll lands.
	res, err := env.svc.StealItem(ctx, env.charID, sword.ID)
	require.NoError(t, err)
	assert.False(t, res.Attempt.Success)
	require.NotNil(t, res.Jail)
	assert.Equal(t, int64(500), res.Jail.BailCost)
	assert.Equal(t, 1, res.Character.Counters.Thefts)

	status, err := env.svc.JailStatus(ctx, env.charID)
	require.NoError(t, err)
	assert.True(t, status.IsJailed)

	// Gated actions refuse while the sentence is open.
	_, err = env.svc.BuyItem(ctx, env.charID, sword.ID)
	assert.ErrorIs(t, err, engine.ErrStateConflict)
	_, err = env.svc.StartBattle(ctx, env.charID)
	assert.ErrorIs(t, err, engine.ErrStateConflict)

	c, err := env.svc.PayBail(ctx, env.charID)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), c.Gold)

	_, err = env.svc.BuyItem(ctx, env.charID, sword.ID)
	require.NoError(t, err)
}

// TestPayBail_ExpiredSentencePersistsRelease confirms the lazy expiry
// computed during a refused bail payment reaches storage: the open record
// flips to time served instead of lingering as serving.
func TestPayBail_ExpiredSentencePersistsRelease(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	sword := env.seedItem(t, &item.Instance{DefID: "iron-sword", ShopID: 3, Durability: 50})

	res, err := env.svc.StealItem(ctx, env.charID, sword.ID)
	require.NoError(t, err)
	require.NotNil(t, res.Jail)

	// Jump past the five minute sentence the 100 gold sword draws.
	env.svc.WithClock(func() time.Time { return time.Now().Add(10 * time.Minute) })

	_, err = env.svc.PayBail(ctx, env.charID)
	assert.ErrorIs(t, err, engine.ErrStateConflict)

	rec, err := postgres.NewJailRepository(env.pool.DB()).GetOpenByUser(ctx, env.charID)
	require.NoError(t, err)
	assert.Nil(t, rec, "the served sentence is closed in storage")

	// A later bail attempt reports not jailed rather than charging again.
	_, err = env.svc.PayBail(ctx, env.charID)
	assert.ErrorIs(t, err, engine.ErrStateConflict)
}

func TestVaultDepositWithdraw(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	res, err := env.svc.Deposit(ctx, env.charID, 200)
	require.NoError(t, err)
	assert.Equal(t, int64(10), res.Tax)
	assert.Equal(t, int64(190), res.Account.Balance)
	assert.Equal(t, int64(1800), res.Character.Gold)

	res, err = env.svc.Withdraw(ctx, env.charID, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(90), res.Account.Balance)
	assert.Equal(t, int64(1900), res.Character.Gold)

	_, err = env.svc.Withdraw(ctx, env.charID, 1000)
	assert.ErrorIs(t, err, engine.ErrStateConflict)
}

func TestVaultLoanLifecycle(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	res, err := env.svc.TakeLoan(ctx, env.charID, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), res.Account.LoanAmount)
	assert.Equal(t, int64(3000), res.Character.Gold)

	_, err = env.svc.TakeLoan(ctx, env.charID, 500)
	assert.ErrorIs(t, err, engine.ErrStateConflict)

	res, err = env.svc.RepayLoan(ctx, env.charID, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Account.LoanAmount)
	assert.True(t, res.Account.LoanInterestAt.IsZero())
}

func TestStockTradeLifecycle(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	stock, err := postgres.NewStockRepository(env.pool.DB()).Create(ctx, &economy.Stock{
		Symbol: "ORE", Name: "Ore Consortium",
		Price: 100, MinPrice: 10, MaxPrice: 1000,
		MinChangePercent: 1, MaxChangePercent: 10,
	})
	require.NoError(t, err)

	res, err := env.svc.BuyShares(ctx, env.charID, stock.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Holding.Shares)
	assert.Equal(t, int64(100), res.Holding.AvgPrice)
	assert.Equal(t, int64(1700), res.Character.Gold)

	res, err = env.svc.SellShares(ctx, env.charID, stock.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Holding.Shares)
	assert.Equal(t, int64(2000), res.Character.Gold)

	// The position row is gone after a full close.
	h, err := postgres.NewStockRepository(env.pool.DB()).GetHolding(ctx, env.charID, stock.ID)
	require.NoError(t, err)
	assert.Nil(t, h)
}

func TestVaryStockPrices(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	repo := postgres.NewStockRepository(env.pool.DB())
	stock, err := repo.Create(ctx, &economy.Stock{
		Symbol: "ORE", Name: "Ore Consortium",
		Price: 100, MinPrice: 10, MaxPrice: 1000,
		MinChangePercent: 1, MaxChangePercent: 10,
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.VaryStockPrices(ctx))

	// zeroSource draws the minimum 1% change with a negative sign.
	loaded, err := repo.GetByID(ctx, stock.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(99), loaded.Price)
}

func TestBattleFlow_FleeEndsSession(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	start, err := env.svc.StartBattle(ctx, env.charID)
	require.NoError(t, err)
	assert.Equal(t, "cave-rat", start.Session.MonsterID)
	assert.True(t, start.Character.IsBattling)

	// Only one live session per character.
	_, err = env.svc.StartBattle(ctx, env.charID)
	assert.ErrorIs(t, err, engine.ErrStateConflict)

	// zeroSource makes the flee roll succeed.
	turn, err := env.svc.BattleTurn(ctx, env.charID, battle.ActionFlee)
	require.NoError(t, err)
	assert.True(t, turn.Entry.FleeSucceeded)
	assert.Equal(t, battle.StateFled, turn.Session.State)
	assert.False(t, turn.Character.IsBattling)

	// The fled session is terminal; a fresh battle may start.
	start, err = env.svc.StartBattle(ctx, env.charID)
	require.NoError(t, err)
	assert.Equal(t, 2, start.Character.Counters.Battles)
}

func TestBattleFlow_AttackToVictory(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	_, err := env.svc.StartBattle(ctx, env.charID)
	require.NoError(t, err)

	// zeroSource pins every attack to a critical hit, so the 8 HP rat falls
	// in a bounded number of turns.
	var won bool
	for i := 0; i < 10; i++ {
		turn, err := env.svc.BattleTurn(ctx, env.charID, battle.ActionAttack)
		require.NoError(t, err)
		if turn.Entry.Ended {
			require.Equal(t, battle.StateWon, turn.Session.State)
			require.NotNil(t, turn.Reward)
			assert.Equal(t, 3, turn.Reward.Gold)
			assert.False(t, turn.Character.IsBattling)
			won = true
			break
		}
	}
	assert.True(t, won, "battle should end in victory within 10 turns")
}

func TestMine_ProducesOre(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	res, err := env.svc.Mine(ctx, env.charID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.NotNil(t, res.Produced)
	assert.Equal(t, "iron-ore", res.Produced.DefID)
	assert.Equal(t, 1, res.Character.Counters.Works)

	inv, err := env.svc.Inventory(ctx, env.charID)
	require.NoError(t, err)
	require.Len(t, inv, 1)
	assert.Equal(t, res.Produced.ID, inv[0].ID)
}

func TestForge_ConsumesMaterials(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	ore1 := env.seedItem(t, &item.Instance{DefID: "iron-ore", OwnerID: env.charID, Durability: 1})
	ore2 := env.seedItem(t, &item.Instance{DefID: "iron-ore", OwnerID: env.charID, Durability: 1})
	stone := env.seedItem(t, &item.Instance{DefID: "cut-stone", OwnerID: env.charID, Durability: 1})

	// zeroSource rolls 0: below the 5% crit reserve, so the materials are
	// destroyed with nothing produced.
	res, err := env.svc.Forge(ctx, env.charID, "iron-sword", []int64{ore1.ID, ore2.ID, stone.ID})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.ElementsMatch(t, []int64{ore1.ID, ore2.ID, stone.ID}, res.Consumed)

	inv, err := env.svc.Inventory(ctx, env.charID)
	require.NoError(t, err)
	assert.Empty(t, inv)
}

func TestResetDailyCounters(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	_, err := env.svc.Mine(ctx, env.charID)
	require.NoError(t, err)

	n, err := env.svc.ResetDailyCounters(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	c, err := env.svc.GetCharacter(ctx, env.charID)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Counters.Works)
}

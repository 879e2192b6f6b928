package battle

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/runehall/internal/game/character"
	"github.com/cory-johannsen/runehall/internal/game/dice"
	"github.com/cory-johannsen/runehall/internal/game/engine"
	"github.com/cory-johannsen/runehall/internal/game/formula"
	"github.com/cory-johannsen/runehall/internal/game/monster"
	"github.com/cory-johannsen/runehall/internal/game/refdata"
)

// StartResult is returned by Start: the updated character snapshot and the
// new session, both to be persisted together.
type StartResult struct {
	Character *character.Character
	Session   *Session
}

// Start opens a new battle session against the given monster template.
// The character's daily battle counter increments exactly once here,
// regardless of how the battle later ends.
//
// Precondition: char and tmpl must be non-nil.
// Postcondition: on success the returned character has IsBattling=true and
// the session pools are seeded from persisted maxima; on error the inputs
// are untouched.
func Start(char *character.Character, tmpl *monster.Template, cfg Config, now time.Time) (*StartResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if char == nil || tmpl == nil {
		return nil, engine.Validationf("character and monster must not be nil")
	}
	if char.IsDead {
		return nil, engine.Conflictf("character %d is dead", char.ID)
	}
	if char.IsBattling {
		return nil, engine.Conflictf("character %d is already battling", char.ID)
	}
	if char.Counters.Battles >= cfg.DailyBattleLimit {
		return nil, engine.Conflictf("daily battle limit %d reached", cfg.DailyBattleLimit)
	}

	out := char.Clone()
	out.IsBattling = true
	out.Counters.Battles++

	return &StartResult{
		Character: out,
		Session: &Session{
			ID:          uuid.New(),
			CharacterID: char.ID,
			MonsterID:   tmpl.ID,
			PlayerHP:    char.MaxHP,
			PlayerMP:    char.MaxMP,
			MonsterHP:   tmpl.MaxHP,
			MonsterMP:   tmpl.MaxMP,
			State:       StateInProgress,
			StartedAt:   now,
		},
	}, nil
}

// TurnResult carries everything one resolved turn produced. Character and
// Session are fresh snapshots; Reward is non-nil only when the turn ended in
// a win.
type TurnResult struct {
	Character *character.Character
	Session   *Session
	Entry     TurnEntry
	Reward    *Reward
}

// elementDamage applies the element multiplier and subtracts mitigation,
// flooring at 1 so a landed hit always matters.
func elementDamage(base int, mult float64, mitigation int) int {
	dmg := int(math.Floor(float64(base)*mult)) - mitigation
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// playerStrike resolves the player's hit/crit roll and damage contribution.
func playerStrike(char *character.Character, tmpl *monster.Template, loadout Loadout, cfg Config, src dice.Source) (dmg int, crit bool) {
	if dice.Percent(src) >= cfg.HitChancePercent {
		return 0, false
	}
	base := char.Stats.Strength/2 + loadout.WeaponPower
	if cfg.DamageVariance > 0 {
		base += dice.Range(src, 1, cfg.DamageVariance)
	}
	mult := ElementMultiplier(char.Element, tmpl.Element)
	dmg = elementDamage(base, mult, tmpl.Defense)
	if dice.Percent(src) < cfg.CritChancePercent {
		dmg = int(math.Floor(float64(dmg) * cfg.CritMultiplier))
		crit = true
	}
	return dmg, crit
}

// monsterStrike resolves the monster's counterattack. Defending reduces the
// incoming damage by the configured percentage for this turn only.
func monsterStrike(sess *Session, tmpl *monster.Template, char *character.Character, loadout Loadout, cfg Config, src dice.Source) (dmg int, crit bool) {
	if dice.Percent(src) >= cfg.HitChancePercent {
		return 0, false
	}
	base := tmpl.Might / 2
	if cfg.DamageVariance > 0 {
		base += dice.Range(src, 1, cfg.DamageVariance)
	}
	mult := ElementMultiplier(tmpl.Element, char.Element)
	dmg = elementDamage(base, mult, loadout.ArmorPower)
	if dice.Percent(src) < cfg.CritChancePercent {
		dmg = int(math.Floor(float64(dmg) * cfg.CritMultiplier))
		crit = true
	}
	if sess.PlayerDefending {
		dmg = dmg * (100 - cfg.DefendReductionPercent) / 100
	}
	return dmg, crit
}

// ResolveTurn advances the session by one player action. The monster always
// acts after the player within the same turn unless the battle already ended
// from the player's action. class supplies the level-up growth bonuses and
// may be nil.
//
// Precondition: src must be non-nil.
// Postcondition: on success the returned snapshots reflect the full
// exchange and the appended log entry; the inputs are never mutated. A
// terminal or absent session yields ErrNoActiveBattle.
func ResolveTurn(sess *Session, char *character.Character, tmpl *monster.Template, class *refdata.Class, loadout Loadout, cfg Config, src dice.Source, action Action) (*TurnResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sess == nil || sess.State != StateInProgress {
		return nil, ErrNoActiveBattle
	}
	if char == nil || tmpl == nil {
		return nil, engine.Validationf("character and monster must not be nil")
	}
	if sess.CharacterID != char.ID {
		return nil, engine.Validationf("session belongs to character %d, not %d", sess.CharacterID, char.ID)
	}

	switch action {
	case ActionAttack, ActionDefend, ActionFlee:
	default:
		return nil, engine.Validationf("unknown battle action %d", int(action))
	}

	s := sess.Clone()
	c := char.Clone()
	s.PlayerDefending = false

	entry := TurnEntry{
		Turn:    s.Turn + 1,
		Action:  action,
		Outcome: StateInProgress,
	}

	if action == ActionFlee && dice.Percent(src) < cfg.FleeChancePercent {
		s.State = StateFled
		c.IsBattling = false
		c.CurrentHP = s.PlayerHP
		c.CurrentMP = s.PlayerMP
		entry.FleeSucceeded = true
		entry.Ended = true
		entry.Outcome = StateFled
		entry.PlayerHP, entry.PlayerMP = s.PlayerHP, s.PlayerMP
		entry.MonsterHP, entry.MonsterMP = s.MonsterHP, s.MonsterMP
		s.appendTurn(entry)
		return &TurnResult{Character: c, Session: s, Entry: entry}, nil
	}

	// Player contribution. A failed flee and a defend both forgo damage.
	if action == ActionAttack {
		dmg, crit := playerStrike(c, tmpl, loadout, cfg, src)
		s.MonsterHP -= dmg
		if s.MonsterHP < 0 {
			s.MonsterHP = 0
		}
		entry.PlayerDamage = dmg
		entry.PlayerCrit = crit
	}
	if action == ActionDefend {
		s.PlayerDefending = true
	}

	var reward *Reward
	if s.MonsterHP == 0 {
		s.State = StateWon
		entry.Ended = true
		entry.Outcome = StateWon
		c.CurrentHP = s.PlayerHP
		c.CurrentMP = s.PlayerMP
		c.IsBattling = false
		reward = resolveVictory(c, tmpl, class, cfg, src)
	} else {
		dmg, crit := monsterStrike(s, tmpl, c, loadout, cfg, src)
		s.PlayerHP -= dmg
		if s.PlayerHP < 0 {
			s.PlayerHP = 0
		}
		entry.MonsterDamage = dmg
		entry.MonsterCrit = crit

		if s.PlayerHP == 0 {
			s.State = StateLost
			entry.Ended = true
			entry.Outcome = StateLost
			c.CurrentHP = 0
			c.CurrentMP = s.PlayerMP
			c.IsDead = true
			c.IsBattling = false
		}
	}

	entry.PlayerHP, entry.PlayerMP = s.PlayerHP, s.PlayerMP
	entry.MonsterHP, entry.MonsterMP = s.MonsterHP, s.MonsterMP
	s.appendTurn(entry)

	return &TurnResult{Character: c, Session: s, Entry: entry, Reward: reward}, nil
}

// resolveVictory grants rewards and applies leveling in place on c, looping
// until the cumulative XP no longer crosses the next threshold.
func resolveVictory(c *character.Character, tmpl *monster.Template, class *refdata.Class, cfg Config, src dice.Source) *Reward {
	reward := rollReward(tmpl, c.Level, cfg, src)
	c.XP += reward.XP
	c.Gold += int64(reward.Gold)
	c.SkillPoints += reward.SkillPoints

	for formula.ShouldLevelUp(c.Level, c.XP, cfg.XPPenaltyPercent) {
		hp, mp := levelUp(c, class, cfg, src)
		reward.LevelsGained++
		reward.HPGained += hp
		reward.MPGained += mp
	}
	return reward
}

package economy

import (
	"time"

	"github.com/cory-johannsen/runehall/internal/game/character"
	"github.com/cory-johannsen/runehall/internal/game/dice"
	"github.com/cory-johannsen/runehall/internal/game/engine"
	"github.com/cory-johannsen/runehall/internal/game/formula"
	"github.com/cory-johannsen/runehall/internal/game/item"
	"github.com/cory-johannsen/runehall/internal/game/jail"
)

// TradeResult pairs the updated character and item snapshots with the gold
// that changed hands.
type TradeResult struct {
	Character *character.Character
	Instance  *item.Instance
	Price     int64
	Tax       int64 // shop tax withheld, sales only
}

// tradeModifier computes the character's effective trading modifier.
func tradeModifier(c *character.Character, cfg Config) int {
	return formula.TradingModifier(c.Stats.Charisma, c.SkillLevel(character.SkillTrading), cfg.TradingPowerPercent, cfg.TradingCapPercent)
}

// listPrice is the quality-adjusted list price of an instance.
func listPrice(inst *item.Instance, def *item.Def, cfg Config) int {
	return item.AdjustedPrice(def.Price, inst.Quality, cfg.QualityPriceModifiers)
}

// Buy purchases a shop-stocked item. The buyer pays the quality-adjusted
// list price discounted by the trading modifier, and takes ownership.
//
// Postcondition: on error the inputs are untouched.
func Buy(char *character.Character, inst *item.Instance, def *item.Def, cfg Config) (*TradeResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if inst.DefID != def.ID {
		return nil, engine.Validationf("instance %d is not a %q", inst.ID, def.ID)
	}
	if inst.OwnerID != 0 || inst.ShopID == 0 {
		return nil, engine.Conflictf("item %d is not for sale", inst.ID)
	}

	price := int64(formula.BuyPrice(listPrice(inst, def, cfg), tradeModifier(char, cfg)))
	c := char.Clone()
	if err := c.SpendGold(price); err != nil {
		return nil, err
	}
	out := inst.Clone()
	out.OwnerID = c.ID
	out.ShopID = 0

	return &TradeResult{Character: c, Instance: out, Price: price}, nil
}

// Sell returns an owned, unequipped item to a shop's stock. The seller
// receives the sell price less the flat shop tax.
//
// Postcondition: on error the inputs are untouched.
func Sell(char *character.Character, inst *item.Instance, def *item.Def, shopID int64, cfg Config) (*TradeResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if inst.DefID != def.ID {
		return nil, engine.Validationf("instance %d is not a %q", inst.ID, def.ID)
	}
	if inst.OwnerID != char.ID {
		return nil, engine.Conflictf("item %d is not owned by character %d", inst.ID, char.ID)
	}
	if inst.Equipped {
		return nil, engine.Conflictf("item %d is equipped, unequip it first", inst.ID)
	}
	if shopID == 0 {
		return nil, engine.Validationf("shop id must not be zero")
	}

	proceeds := int64(formula.SellPrice(listPrice(inst, def, cfg), tradeModifier(char, cfg)))
	tax := proceeds * int64(cfg.ShopTaxPercent) / 100

	c := char.Clone()
	c.Gold += proceeds - tax
	out := inst.Clone()
	out.OwnerID = 0
	out.ShopID = shopID

	return &TradeResult{Character: c, Instance: out, Price: proceeds, Tax: tax}, nil
}

// Give transfers an owned, unequipped item to another character.
//
// Postcondition: on error the input is untouched.
func Give(fromID, toID int64, inst *item.Instance) (*item.Instance, error) {
	if toID == 0 || toID == fromID {
		return nil, engine.Validationf("invalid gift recipient %d", toID)
	}
	if inst.OwnerID != fromID {
		return nil, engine.Conflictf("item %d is not owned by character %d", inst.ID, fromID)
	}
	if inst.Equipped {
		return nil, engine.Conflictf("item %d is equipped, unequip it first", inst.ID)
	}
	out := inst.Clone()
	out.OwnerID = toID
	out.ShopID = 0
	return out, nil
}

// Drop discards an owned, unequipped item. The instance becomes unowned and
// is removed from circulation by the caller.
//
// Postcondition: on error the input is untouched.
func Drop(ownerID int64, inst *item.Instance) (*item.Instance, error) {
	if inst.OwnerID != ownerID {
		return nil, engine.Conflictf("item %d is not owned by character %d", inst.ID, ownerID)
	}
	if inst.Equipped {
		return nil, engine.Conflictf("item %d is equipped, unequip it first", inst.ID)
	}
	out := inst.Clone()
	out.OwnerID = 0
	out.ShopID = 0
	return out, nil
}

// Repair restores an owned item's durability to its maximum for a fraction
// of the quality-adjusted price proportional to the damage.
//
// Postcondition: on error the inputs are untouched.
func Repair(char *character.Character, inst *item.Instance, def *item.Def, cfg Config) (*TradeResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if inst.DefID != def.ID {
		return nil, engine.Validationf("instance %d is not a %q", inst.ID, def.ID)
	}
	if inst.OwnerID != char.ID {
		return nil, engine.Conflictf("item %d is not owned by character %d", inst.ID, char.ID)
	}
	if inst.Durability >= def.DurationMax {
		return nil, engine.Conflictf("item %d is not damaged", inst.ID)
	}

	cost := int64(formula.RepairCost(listPrice(inst, def, cfg), inst.Durability, def.DurationMax))
	c := char.Clone()
	if err := c.SpendGold(cost); err != nil {
		return nil, err
	}
	out := inst.Clone()
	out.Durability = def.DurationMax

	return &TradeResult{Character: c, Instance: out, Price: cost}, nil
}

// StealResult reports one theft attempt. Instance is non-nil only on
// success; Jail is non-nil when a failed attempt drew a sentence.
type StealResult struct {
	Character *character.Character
	Instance  *item.Instance
	Attempt   formula.StealAttempt
	Jail      *jail.Record
}

// Steal attempts to take an item the thief does not own. Equipped items are
// off limits: stealing one would leave the victim's equipment slot pointing
// at an item they no longer own. The attempt counts against the daily theft
// limit whether or not it succeeds. A failed attempt rolls independently for
// jail, sized by the item's quality-adjusted price.
//
// Postcondition: on error the inputs are untouched.
func Steal(thief *character.Character, inst *item.Instance, def *item.Def, now time.Time, src dice.Source, cfg Config, jailCfg jail.Config) (*StealResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if inst.DefID != def.ID {
		return nil, engine.Validationf("instance %d is not a %q", inst.ID, def.ID)
	}
	if inst.OwnerID == thief.ID {
		return nil, engine.Conflictf("character %d already owns item %d", thief.ID, inst.ID)
	}
	if inst.Equipped {
		return nil, engine.Conflictf("item %d is equipped by its owner", inst.ID)
	}
	if thief.Counters.Thefts >= cfg.DailyTheftLimit {
		return nil, engine.Conflictf("daily theft limit %d reached", cfg.DailyTheftLimit)
	}

	c := thief.Clone()
	c.Counters.Thefts++

	attempt := formula.StealCheck(src, c.Stats.Dexterity, c.SkillLevel(character.SkillTheft), def.Difficulty)
	res := &StealResult{Character: c, Attempt: attempt}
	if attempt.Success {
		out := inst.Clone()
		out.OwnerID = c.ID
		out.ShopID = 0
		out.Equipped = false
		res.Instance = out
		return res, nil
	}

	rec, jailed, err := jail.Roll(src, c.ID, listPrice(inst, def, cfg), "caught stealing "+def.Name, now, jailCfg)
	if err != nil {
		return nil, err
	}
	if jailed {
		res.Jail = rec
	}
	return res, nil
}

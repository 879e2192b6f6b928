// Package encounter selects the monster a character faces when a battle
// starts. The built-in policy weights templates by level proximity; an
// operator Lua hook may override the pick.
package encounter

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/runehall/internal/game/dice"
	"github.com/cory-johannsen/runehall/internal/game/engine"
	"github.com/cory-johannsen/runehall/internal/game/monster"
	"github.com/cory-johannsen/runehall/internal/scripting"
)

// selectHook is the Lua global the operator script may define. It receives
// (characterLevel, candidates) where candidates is an array of {id, level,
// weight} tables, and returns a template id.
const selectHook = "select_encounter"

// Config holds the selection tunables.
type Config struct {
	// LevelWindow bounds eligibility: only templates within this many levels
	// of the character can be drawn. Weight falls off linearly with distance.
	LevelWindow int `mapstructure:"level_window"`
}

// Validate reports a ConfigurationError for out-of-range tunables.
func (c Config) Validate() error {
	if c.LevelWindow < 0 {
		return engine.Configf("level window %d must be >= 0", c.LevelWindow)
	}
	return nil
}

// Selector picks encounter monsters from a fixed template set.
type Selector struct {
	templates []*monster.Template
	cfg       Config
	host      *scripting.Host // nil = built-in policy only
}

// NewSelector builds a Selector over templates. host may be nil when no
// operator scripts are loaded.
func NewSelector(templates []*monster.Template, cfg Config, host *scripting.Host) (*Selector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, engine.Configf("encounter selector needs at least one template")
	}
	return &Selector{templates: templates, cfg: cfg, host: host}, nil
}

// candidate pairs a template with its proximity weight.
type candidate struct {
	tmpl   *monster.Template
	weight int
}

// candidates lists templates within the level window, weighted
// window+1-|delta| so same-level monsters are the most likely. When nothing
// is in the window the nearest-level template is the sole candidate.
func (s *Selector) candidates(charLevel int) []candidate {
	out := make([]candidate, 0, len(s.templates))
	for _, t := range s.templates {
		delta := t.Level - charLevel
		if delta < 0 {
			delta = -delta
		}
		if delta > s.cfg.LevelWindow {
			continue
		}
		out = append(out, candidate{tmpl: t, weight: s.cfg.LevelWindow + 1 - delta})
	}
	if len(out) > 0 {
		return out
	}

	nearest := s.templates[0]
	best := -1
	for _, t := range s.templates {
		delta := t.Level - charLevel
		if delta < 0 {
			delta = -delta
		}
		if best < 0 || delta < best {
			best = delta
			nearest = t
		}
	}
	return []candidate{{tmpl: nearest, weight: 1}}
}

// Select picks the monster for a character at charLevel. The Lua hook, when
// defined, sees the candidate list and may return a template id; an invalid
// or absent answer falls back to the weighted draw.
func (s *Selector) Select(charLevel int, src dice.Source) (*monster.Template, error) {
	if charLevel < 1 {
		return nil, engine.Validationf("character level %d must be >= 1", charLevel)
	}
	cands := s.candidates(charLevel)

	if t := s.scripted(charLevel, cands); t != nil {
		return t, nil
	}

	total := 0
	for _, c := range cands {
		total += c.weight
	}
	pick := src.Intn(total)
	for _, c := range cands {
		pick -= c.weight
		if pick < 0 {
			return c.tmpl, nil
		}
	}
	return cands[len(cands)-1].tmpl, nil
}

// scripted consults the operator hook. Returns nil when the hook is absent,
// errors, or names a template outside the candidate list.
func (s *Selector) scripted(charLevel int, cands []candidate) *monster.Template {
	if s.host == nil {
		return nil
	}

	table := &lua.LTable{}
	for _, c := range cands {
		entry := &lua.LTable{}
		entry.RawSetString("id", lua.LString(c.tmpl.ID))
		entry.RawSetString("level", lua.LNumber(c.tmpl.Level))
		entry.RawSetString("weight", lua.LNumber(c.weight))
		table.Append(entry)
	}

	ret, err := s.host.Call(selectHook, lua.LNumber(charLevel), table)
	if err != nil || ret == lua.LNil {
		return nil
	}
	id, ok := ret.(lua.LString)
	if !ok {
		return nil
	}
	for _, c := range cands {
		if c.tmpl.ID == string(id) {
			return c.tmpl
		}
	}
	return nil
}

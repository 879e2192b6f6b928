// Package monster provides the immutable monster templates the battle engine
// fights against, loaded from YAML content files.
package monster

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rewards defines the reward bands and loot entry for a template. Gold, XP,
// and skill points are rolled uniformly inside their bands on victory;
// DropRate is an independent percentage roll for the item drop.
type Rewards struct {
	XPMin      int    `yaml:"xp_min"`
	XPMax      int    `yaml:"xp_max"`
	GoldMin    int    `yaml:"gold_min"`
	GoldMax    int    `yaml:"gold_max"`
	SPMin      int    `yaml:"sp_min"`
	SPMax      int    `yaml:"sp_max"`
	DropItemID string `yaml:"drop_item"`
	DropRate   int    `yaml:"drop_rate"` // percent chance in [0,100]
}

// Validate checks the reward bands.
func (r *Rewards) Validate() error {
	for _, band := range []struct {
		name     string
		min, max int
	}{
		{"xp", r.XPMin, r.XPMax},
		{"gold", r.GoldMin, r.GoldMax},
		{"sp", r.SPMin, r.SPMax},
	} {
		if band.min < 0 {
			return fmt.Errorf("rewards: %s min must be >= 0, got %d", band.name, band.min)
		}
		if band.min > band.max {
			return fmt.Errorf("rewards: %s min (%d) must be <= max (%d)", band.name, band.min, band.max)
		}
	}
	if r.DropRate < 0 || r.DropRate > 100 {
		return fmt.Errorf("rewards: drop_rate must be in [0,100], got %d", r.DropRate)
	}
	if r.DropRate > 0 && r.DropItemID == "" {
		return fmt.Errorf("rewards: drop_rate set without drop_item")
	}
	return nil
}

// Template defines a monster archetype. Templates are read-only to the
// engine; battle sessions copy the HP/MP pools they need.
type Template struct {
	ID      string  `yaml:"id"`
	Name    string  `yaml:"name"`
	Level   int     `yaml:"level"`
	MaxHP   int     `yaml:"max_hp"`
	MaxMP   int     `yaml:"max_mp"`
	Might   int     `yaml:"might"`
	Defense int     `yaml:"defense"`
	Element string  `yaml:"element"`
	Rewards Rewards `yaml:"rewards"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("monster template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("monster template %q: name must not be empty", t.ID)
	}
	if t.Level < 1 {
		return fmt.Errorf("monster template %q: level must be >= 1", t.ID)
	}
	if t.MaxHP < 1 {
		return fmt.Errorf("monster template %q: max_hp must be >= 1", t.ID)
	}
	if t.MaxMP < 0 {
		return fmt.Errorf("monster template %q: max_mp must be >= 0", t.ID)
	}
	if t.Element == "" {
		return fmt.Errorf("monster template %q: element must not be empty", t.ID)
	}
	if err := t.Rewards.Validate(); err != nil {
		return fmt.Errorf("monster template %q: %w", t.ID, err)
	}
	return nil
}

// LoadTemplateFromBytes parses a single template from raw YAML bytes.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing monster template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplatesFromDir loads every *.yaml file in dir as one template,
// in lexicographic order.
//
// Postcondition: Returns templates keyed by id, or an error naming the
// offending file.
func LoadTemplatesFromDir(dir string) (map[string]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading monster template dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	templates := make(map[string]*Template, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading monster template %s: %w", name, err)
		}
		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("template file %s: %w", name, err)
		}
		if _, dup := templates[tmpl.ID]; dup {
			return nil, fmt.Errorf("template file %s: duplicate id %q", name, tmpl.ID)
		}
		templates[tmpl.ID] = tmpl
	}
	return templates, nil
}

package item

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type defsFile struct {
	Items []*Def `yaml:"items"`
}

// LoadDefs reads and validates item definitions from a YAML content file.
//
// Postcondition: every returned Def has passed Validate; ids are unique.
func LoadDefs(path string) (map[string]*Def, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading item defs: %w", err)
	}
	var f defsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing item defs YAML: %w", err)
	}

	defs := make(map[string]*Def, len(f.Items))
	for _, d := range f.Items {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := defs[d.ID]; dup {
			return nil, fmt.Errorf("item def %q: duplicate id", d.ID)
		}
		defs[d.ID] = d
	}
	return defs, nil
}

package refdata

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Registry is a Provider backed by in-memory maps loaded from YAML content
// files at startup. It is immutable after Load and safe for concurrent reads.
type Registry struct {
	races   map[string]*Race
	classes map[string]*Class
}

// NewRegistry builds a Registry from already-validated records. Useful in tests.
func NewRegistry(races []*Race, classes []*Class) *Registry {
	reg := &Registry{
		races:   make(map[string]*Race, len(races)),
		classes: make(map[string]*Class, len(classes)),
	}
	for _, r := range races {
		reg.races[r.ID] = r
	}
	for _, c := range classes {
		reg.classes[c.ID] = c
	}
	return reg
}

// racesFile and classesFile mirror the YAML content layout.
type racesFile struct {
	Races []*Race `yaml:"races"`
}

type classesFile struct {
	Classes []*Class `yaml:"classes"`
}

// Load reads and validates race and class records from the two YAML files.
//
// Postcondition: Returns a Registry containing every record, or an error
// naming the first invalid record.
func Load(racesPath, classesPath string) (*Registry, error) {
	raceData, err := os.ReadFile(racesPath)
	if err != nil {
		return nil, fmt.Errorf("reading races file: %w", err)
	}
	var rf racesFile
	if err := yaml.Unmarshal(raceData, &rf); err != nil {
		return nil, fmt.Errorf("parsing races YAML: %w", err)
	}

	classData, err := os.ReadFile(classesPath)
	if err != nil {
		return nil, fmt.Errorf("reading classes file: %w", err)
	}
	var cf classesFile
	if err := yaml.Unmarshal(classData, &cf); err != nil {
		return nil, fmt.Errorf("parsing classes YAML: %w", err)
	}

	for _, r := range rf.Races {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	for _, c := range cf.Classes {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	return NewRegistry(rf.Races, cf.Classes), nil
}

// Race implements Provider.
func (r *Registry) Race(id string) (*Race, bool) {
	race, ok := r.races[id]
	return race, ok
}

// Class implements Provider.
func (r *Registry) Class(id string) (*Class, bool) {
	class, ok := r.classes[id]
	return class, ok
}

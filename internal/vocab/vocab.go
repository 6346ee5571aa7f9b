// Package vocab loads the external registry of known predicate and action
// names. The registry is a read-only lookup used for suggestion-level checks
// only: it may be intentionally incomplete during early authoring, so an
// absent name is never an error.
package vocab

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Vocabulary is the known-name registry, typically authored as a YAML file:
//
//	predicates:
//	  - person
//	  - parent_of
//	actions:
//	  - inherit_title
type Vocabulary struct {
	Predicates []string `yaml:"predicates"`
	Actions    []string `yaml:"actions"`

	predSet map[string]struct{}
	actSet  map[string]struct{}
}

// Parse decodes a YAML vocabulary document.
func Parse(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary: %w", err)
	}
	v.index()
	return &v, nil
}

// Load reads and parses a YAML vocabulary file.
func Load(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}
	return Parse(data)
}

func (v *Vocabulary) index() {
	v.predSet = make(map[string]struct{}, len(v.Predicates))
	for _, p := range v.Predicates {
		v.predSet[p] = struct{}{}
	}
	v.actSet = make(map[string]struct{}, len(v.Actions))
	for _, a := range v.Actions {
		v.actSet[a] = struct{}{}
	}
}

func (v *Vocabulary) HasPredicate(name string) bool {
	_, ok := v.predSet[name]
	return ok
}

func (v *Vocabulary) HasAction(name string) bool {
	_, ok := v.actSet[name]
	return ok
}

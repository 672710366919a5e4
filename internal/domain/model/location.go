package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"hh-vacancy-bot/internal/domain"
)

// NormalizeLocation converts an area name into the token used for filtering
// and hashtags: hyphens become underscores.
func NormalizeLocation(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "-", "_")
}

// Region is one entry of the locations file.
type Region struct {
	State  string   `json:"state"`
	Cities []string `json:"cities"`
}

// Direct reports whether picking the state already selects a city
// (federal cities such as Москва have no nested list).
func (r Region) Direct() bool {
	return len(r.Cities) == 0 || (len(r.Cities) == 1 && r.Cities[0] == r.State)
}

// LocationTree is the two-level state -> cities hierarchy used by the location prompts.
type LocationTree struct {
	regions []Region
	states  map[string]int
	cities  map[string]string
}

// ParseLocationTree decodes the locations JSON document and validates it.
func ParseLocationTree(data []byte) (*LocationTree, error) {
	var regions []Region
	if err := json.Unmarshal(data, &regions); err != nil {
		return nil, fmt.Errorf("decode locations: %w", err)
	}
	return NewLocationTree(regions)
}

func NewLocationTree(regions []Region) (*LocationTree, error) {
	t := &LocationTree{
		states: make(map[string]int, len(regions)),
		cities: make(map[string]string),
	}
	for _, r := range regions {
		r.State = strings.TrimSpace(r.State)
		if r.State == "" {
			return nil, fmt.Errorf("location state is empty: %w", domain.ErrInvalidArgument)
		}
		if _, dup := t.states[r.State]; dup {
			return nil, fmt.Errorf("location state %q declared twice: %w", r.State, domain.ErrAlreadyExists)
		}
		t.states[r.State] = len(t.regions)
		t.regions = append(t.regions, r)
		if r.Direct() {
			t.cities[r.State] = r.State
			continue
		}
		for _, c := range r.Cities {
			c = strings.TrimSpace(c)
			if c == "" {
				return nil, fmt.Errorf("state %q has an empty city: %w", r.State, domain.ErrInvalidArgument)
			}
			t.cities[c] = r.State
		}
	}
	return t, nil
}

// States returns state names in file order.
func (t *LocationTree) States() []string {
	out := make([]string, 0, len(t.regions))
	for _, r := range t.regions {
		out = append(out, r.State)
	}
	return out
}

func (t *LocationTree) IsState(name string) bool {
	_, ok := t.states[name]
	return ok
}

func (t *LocationTree) IsCity(name string) bool {
	_, ok := t.cities[name]
	return ok
}

// Region returns the state entry by name.
func (t *LocationTree) Region(state string) (Region, bool) {
	i, ok := t.states[state]
	if !ok {
		return Region{}, false
	}
	return t.regions[i], true
}

// Cities returns the selectable cities of a state.
func (t *LocationTree) Cities(state string) []string {
	r, ok := t.Region(state)
	if !ok {
		return nil
	}
	if r.Direct() {
		return []string{r.State}
	}
	out := make([]string, len(r.Cities))
	copy(out, r.Cities)
	return out
}

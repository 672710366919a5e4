package model

import (
	"fmt"
	"net/url"
	"strings"

	"hh-vacancy-bot/internal/domain"
)

// PositionKey is the internal identifier of a tracked job track, e.g. "python_web".
type PositionKey string

// Position maps a user-facing label to its key and to the search URL it is fetched from.
type Position struct {
	Key       PositionKey
	Label     string
	SourceURL string
}

// KeyFromLabel derives the internal key the same way for every label:
// lowercase, spaces replaced by underscores.
func KeyFromLabel(label string) PositionKey {
	return PositionKey(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), " ", "_"))
}

// PositionCatalog is the closed, ordered set of positions the bot tracks.
// It is built once at startup and never mutated afterwards.
type PositionCatalog struct {
	ordered []Position
	byKey   map[PositionKey]Position
	byLabel map[string]Position
}

// NewPositionCatalog validates the entries and returns a catalog preserving their order.
func NewPositionCatalog(positions []Position) (*PositionCatalog, error) {
	if len(positions) == 0 {
		return nil, fmt.Errorf("position catalog is empty: %w", domain.ErrInvalidArgument)
	}
	c := &PositionCatalog{
		ordered: make([]Position, 0, len(positions)),
		byKey:   make(map[PositionKey]Position, len(positions)),
		byLabel: make(map[string]Position, len(positions)),
	}
	for _, p := range positions {
		p.Label = strings.TrimSpace(p.Label)
		if p.Label == "" {
			return nil, fmt.Errorf("position label is empty: %w", domain.ErrInvalidArgument)
		}
		if p.Key == "" {
			p.Key = KeyFromLabel(p.Label)
		}
		if p.Key != KeyFromLabel(p.Label) {
			return nil, fmt.Errorf("position %q: key %q does not match label: %w", p.Label, p.Key, domain.ErrInvalidArgument)
		}
		u, err := url.Parse(p.SourceURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("position %q: invalid source url %q: %w", p.Label, p.SourceURL, domain.ErrInvalidArgument)
		}
		if _, dup := c.byKey[p.Key]; dup {
			return nil, fmt.Errorf("position %q declared twice: %w", p.Key, domain.ErrAlreadyExists)
		}
		c.ordered = append(c.ordered, p)
		c.byKey[p.Key] = p
		c.byLabel[p.Label] = p
	}
	return c, nil
}

// All returns the positions in their configured order.
func (c *PositionCatalog) All() []Position {
	out := make([]Position, len(c.ordered))
	copy(out, c.ordered)
	return out
}

func (c *PositionCatalog) ByKey(key PositionKey) (Position, bool) {
	p, ok := c.byKey[key]
	return p, ok
}

func (c *PositionCatalog) ByLabel(label string) (Position, bool) {
	p, ok := c.byLabel[strings.TrimSpace(label)]
	return p, ok
}

// Labels returns the user-facing labels in catalog order.
func (c *PositionCatalog) Labels() []string {
	out := make([]string, 0, len(c.ordered))
	for _, p := range c.ordered {
		out = append(out, p.Label)
	}
	return out
}

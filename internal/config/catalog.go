package config

import (
	"fmt"
	"os"

	"hh-vacancy-bot/internal/domain/model"
)

// Catalog builds the validated position catalog from the positions section.
func (c *Config) Catalog() (*model.PositionCatalog, error) {
	positions := make([]model.Position, 0, len(c.Positions))
	for _, p := range c.Positions {
		positions = append(positions, model.Position{Label: p.Label, SourceURL: p.URL})
	}
	catalog, err := model.NewPositionCatalog(positions)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	return catalog, nil
}

// Locations reads and validates the location hierarchy file.
func (c *Config) Locations() (*model.LocationTree, error) {
	b, err := os.ReadFile(c.Storage.LocationsFile)
	if err != nil {
		return nil, fmt.Errorf("read locations: %w", err)
	}
	tree, err := model.ParseLocationTree(b)
	if err != nil {
		return nil, fmt.Errorf("locations %s: %w", c.Storage.LocationsFile, err)
	}
	return tree, nil
}

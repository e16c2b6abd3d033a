// Package catalog holds the static lookup tables: ego-shield coaching tips
// and store pricing. Loaded once at process start into an immutable value and
// injected where needed; nothing reads these as globals.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is read-only after Load.
type Catalog struct {
	// CoachTips translate raw feedback tags into encouraging coaching lines.
	CoachTips  map[string]string `yaml:"coach_tips"`
	DefaultTip string            `yaml:"default_tip"`

	// Store lists purchasable boosts priced in rizz tokens.
	Store []StoreItem `yaml:"store"`
}

// StoreItem is one purchasable boost.
type StoreItem struct {
	ID           string `yaml:"id" json:"id"`
	Name         string `yaml:"name" json:"name"`
	PriceCredits uint64 `yaml:"price_credits" json:"price_credits"`
}

// Default returns the built-in tables from the production prototype.
func Default() Catalog {
	return Catalog{
		CoachTips: map[string]string{
			"weight":  "GOAL: Let's hit a 1-mile walk today! Staying active keeps your energy high.",
			"hair":    "STYLE TIP: A fresh trim or a quick groom today will boost your match rate!",
			"breath":  "PRO-TIP: Keep some mints handy; first impressions up close are everything.",
			"hygiene": "TIP: Looking sharp is half the game. Fresh fit, fresh hair, fresh starts!",
		},
		DefaultTip: "Keep leveling up! You got this.",
		Store: []StoreItem{
			{ID: "boost_radius", Name: "Vicinity Boost (24h)", PriceCredits: 50},
			{ID: "super_like", Name: "Super Like", PriceCredits: 20},
			{ID: "profile_shine", Name: "Profile Shine", PriceCredits: 35},
		},
	}
}

// Load reads a yaml catalog file over the defaults. Missing sections keep
// their built-in values.
func Load(path string) (Catalog, error) {
	c := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("catalog %s: %w", path, err)
	}
	if c.DefaultTip == "" {
		c.DefaultTip = Default().DefaultTip
	}
	return c, nil
}

// Tips maps feedback tags to coaching lines, falling back to the default tip
// for unknown tags. Raw feedback never reaches the user.
func (c Catalog) Tips(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tip, ok := c.CoachTips[tag]; ok {
			out = append(out, tip)
		} else {
			out = append(out, c.DefaultTip)
		}
	}
	return out
}

// Item finds a store item by id.
func (c Catalog) Item(id string) (StoreItem, bool) {
	for _, item := range c.Store {
		if item.ID == id {
			return item, true
		}
	}
	return StoreItem{}, false
}

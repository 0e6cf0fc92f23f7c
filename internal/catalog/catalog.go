// Package catalog defines the item catalogue and the tiered frequency plan
// that together determine the master pool fed to the board allocator.
package catalog

import (
	"errors"
	"fmt"
)

// Item is a single catalogue entry. Labels are opaque to the generator;
// only identity matters.
type Item string

// Tier assigns a target occurrence count to a contiguous run of catalogue
// indices. First is inclusive, Last is exclusive.
type Tier struct {
	First int
	Last  int
	Count int
}

// ConfigError indicates an invalid catalogue or frequency configuration.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", e.Reason)
}

// IsConfigError checks if an error is a configuration error.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// Catalog is an ordered, duplicate-free item list together with the tiers
// that assign each item its target occurrence count across a board set.
type Catalog struct {
	items    []Item
	tiers    []Tier
	targets  map[Item]int
	poolSize int
}

// New builds a Catalog from an ordered item list and its tiers. The tiers
// must partition the index range exactly: contiguous, in order, no gaps and
// no overlap. Any violation is reported as a *ConfigError before generation
// does any work.
func New(items []Item, tiers []Tier) (*Catalog, error) {
	if len(items) == 0 {
		return nil, &ConfigError{Reason: "catalogue is empty"}
	}

	seen := make(map[Item]struct{}, len(items))
	for i, item := range items {
		if item == "" {
			return nil, &ConfigError{Reason: fmt.Sprintf("catalogue entry %d is empty", i)}
		}
		if _, dup := seen[item]; dup {
			return nil, &ConfigError{Reason: fmt.Sprintf("duplicate catalogue entry %q", item)}
		}
		seen[item] = struct{}{}
	}

	if len(tiers) == 0 {
		return nil, &ConfigError{Reason: "no frequency tiers defined"}
	}

	next := 0
	for i, tier := range tiers {
		if tier.First != next {
			return nil, &ConfigError{Reason: fmt.Sprintf("tier %d starts at index %d, want %d", i, tier.First, next)}
		}
		if tier.Last <= tier.First {
			return nil, &ConfigError{Reason: fmt.Sprintf("tier %d has empty range [%d, %d)", i, tier.First, tier.Last)}
		}
		if tier.Last > len(items) {
			return nil, &ConfigError{Reason: fmt.Sprintf("tier %d ends at index %d, beyond catalogue size %d", i, tier.Last, len(items))}
		}
		if tier.Count <= 0 {
			return nil, &ConfigError{Reason: fmt.Sprintf("tier %d has non-positive count %d", i, tier.Count)}
		}
		next = tier.Last
	}
	if next != len(items) {
		return nil, &ConfigError{Reason: fmt.Sprintf("tiers cover indices [0, %d), catalogue has %d items", next, len(items))}
	}

	targets := make(map[Item]int, len(items))
	poolSize := 0
	for _, tier := range tiers {
		for i := tier.First; i < tier.Last; i++ {
			targets[items[i]] = tier.Count
			poolSize += tier.Count
		}
	}

	c := &Catalog{
		items:    make([]Item, len(items)),
		tiers:    make([]Tier, len(tiers)),
		targets:  targets,
		poolSize: poolSize,
	}
	copy(c.items, items)
	copy(c.tiers, tiers)
	return c, nil
}

// Len returns the number of distinct catalogue items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Items returns the catalogue entries in order.
func (c *Catalog) Items() []Item {
	items := make([]Item, len(c.items))
	copy(items, c.items)
	return items
}

// Tiers returns the frequency tiers in order.
func (c *Catalog) Tiers() []Tier {
	tiers := make([]Tier, len(c.tiers))
	copy(tiers, c.tiers)
	return tiers
}

// TargetCount returns the target occurrence count for an item, or 0 if the
// item is not in the catalogue.
func (c *Catalog) TargetCount(item Item) int {
	return c.targets[item]
}

// TargetCounts returns the target occurrence count for every catalogue item.
func (c *Catalog) TargetCounts() map[Item]int {
	targets := make(map[Item]int, len(c.targets))
	for item, count := range c.targets {
		targets[item] = count
	}
	return targets
}

// PoolSize returns the total number of tokens the master pool will hold,
// i.e. the sum of all target counts.
func (c *Catalog) PoolSize() int {
	return c.poolSize
}

// MasterPool expands the catalogue into the full token pool: each item
// repeated exactly its target count, in catalogue order. The result is a
// fresh slice on every call.
func (c *Catalog) MasterPool() []Item {
	pool := make([]Item, 0, c.poolSize)
	for _, item := range c.items {
		for i := 0; i < c.targets[item]; i++ {
			pool = append(pool, item)
		}
	}
	return pool
}

// Package typechart holds the attacking-type × defending-type damage multiplier table.
package typechart

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Multipliers recorded in the chart. Anything absent is Neutral.
const (
	Immune         = 0.0
	Resisted       = 0.5
	Neutral        = 1.0
	SuperEffective = 2.0
)

//go:embed chart.yaml
var defaultChart []byte

// Chart maps attacking type to defending type to multiplier.
// Only non-neutral pairs are stored.
type Chart struct {
	entries map[string]map[string]float64
}

// Parse decodes a YAML chart of the form
//
//	fire:
//	  grass: 2
//	  water: 0.5
//
// Type names are lowercased.
//
// Precondition: r must be non-nil.
// Postcondition: Returns a Chart whose multipliers are all >= 0, or an error.
func Parse(r io.Reader) (*Chart, error) {
	var raw map[string]map[string]float64
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding type chart: %w", err)
	}

	entries := make(map[string]map[string]float64, len(raw))
	for atk, row := range raw {
		atk = normalize(atk)
		if atk == "" {
			return nil, fmt.Errorf("type chart: empty attacking type")
		}
		out := make(map[string]float64, len(row))
		for def, m := range row {
			if m < 0 {
				return nil, fmt.Errorf("type chart: %s -> %s has negative multiplier %v", atk, def, m)
			}
			out[normalize(def)] = m
		}
		entries[atk] = out
	}
	return &Chart{entries: entries}, nil
}

var loadDefault = sync.OnceValue(func() *Chart {
	c, err := Parse(bytes.NewReader(defaultChart))
	if err != nil {
		panic("typechart: embedded chart is invalid: " + err.Error())
	}
	return c
})

// Default returns the built-in 18-type chart.
func Default() *Chart {
	return loadDefault()
}

// Lookup returns the multiplier for a single attacking/defending pair,
// defaulting to Neutral when the pair is not recorded.
func (c *Chart) Lookup(attackType, defenderType string) float64 {
	row, ok := c.entries[normalize(attackType)]
	if !ok {
		return Neutral
	}
	m, ok := row[normalize(defenderType)]
	if !ok {
		return Neutral
	}
	return m
}

// Multiplier returns the product of Lookup across every defending type.
// An empty defender list yields Neutral.
//
// Postcondition: Returns >= 0.
func (c *Chart) Multiplier(attackType string, defenderTypes []string) float64 {
	total := Neutral
	for _, def := range defenderTypes {
		total *= c.Lookup(attackType, def)
	}
	return total
}

// AttackingTypes returns the sorted attacking types that have at least one entry.
func (c *Chart) AttackingTypes() []string {
	out := make([]string, 0, len(c.entries))
	for t := range c.entries {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Multiplier looks up attackType against defenderTypes in the Default chart.
func Multiplier(attackType string, defenderTypes []string) float64 {
	return Default().Multiplier(attackType, defenderTypes)
}

func normalize(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// Package actions holds the closed set of action kinds a player may log and
// the lookup table that classifies each kind for turn bookkeeping.
package actions

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/franz/playtest-history/internal/util"
)

// Size is the input group an action kind is offered in
type Size string

const (
	Big   Size = "big"
	Small Size = "small"
)

// Category decides whether an action takes part in turn alternation
type Category int

const (
	// Primary actions advance the turn when the acting player changes
	Primary Category = iota
	// Special actions interleave without touching turn bookkeeping
	Special
)

func (c Category) String() string {
	if c == Special {
		return "special"
	}
	return "primary"
}

// Kind describes one action type
type Kind struct {
	Name               string `mapstructure:"name" yaml:"name"`
	Size               Size   `mapstructure:"size" yaml:"size"`
	Special            bool   `mapstructure:"special" yaml:"special"`
	UppercaseSecondary bool   `mapstructure:"uppercase_secondary" yaml:"uppercase_secondary"`
}

// Category returns the kind's turn category
func (k Kind) Category() Category {
	if k.Special {
		return Special
	}
	return Primary
}

// Catalog is an immutable action-type lookup table
type Catalog struct {
	kinds  []Kind
	byName map[string]Kind
}

// foldCase returns s case-folded for comparisons. Casers are stateful, so
// each call gets its own.
func foldCase(s string) string {
	return cases.Fold().String(s)
}

// New builds a catalog, rejecting empty, duplicate or unsized entries
func New(kinds []Kind) (*Catalog, error) {
	if len(kinds) == 0 {
		return nil, fmt.Errorf("%w: action catalog is empty", util.ErrInvalidConfig)
	}

	c := &Catalog{
		kinds:  make([]Kind, 0, len(kinds)),
		byName: make(map[string]Kind, len(kinds)),
	}
	for _, k := range kinds {
		k.Name = util.NormalizeName(k.Name)
		if k.Name == "" {
			return nil, fmt.Errorf("%w: action kind with empty name", util.ErrInvalidConfig)
		}
		if k.Size != Big && k.Size != Small {
			return nil, fmt.Errorf("%w: action %q has size %q (want big or small)", util.ErrInvalidConfig, k.Name, k.Size)
		}
		if _, dup := c.byName[k.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate action %q", util.ErrInvalidConfig, k.Name)
		}
		c.kinds = append(c.kinds, k)
		c.byName[k.Name] = k
	}
	return c, nil
}

// DefaultKinds returns the built-in enumeration in offering order
func DefaultKinds() []Kind {
	return []Kind{
		{Name: "Advance", Size: Big, UppercaseSecondary: true},
		{Name: "Embark", Size: Big},
		{Name: "Disembark", Size: Big},
		{Name: "Salvo", Size: Big},
		{Name: "Capture", Size: Big, UppercaseSecondary: true},
		{Name: "OverWatch", Size: Big},
		{Name: "OverWatch Shot", Size: Big, Special: true},
		{Name: "Skip", Size: Small},
		{Name: "Deploy", Size: Small, Special: true, UppercaseSecondary: true},
		{Name: "Move", Size: Small, UppercaseSecondary: true},
		{Name: "Consolidate", Size: Small},
		{Name: "Control", Size: Small, UppercaseSecondary: true},
		{Name: "Shot", Size: Small},
		{Name: "Check Shot", Size: Small, Special: true},
	}
}

// Default returns the built-in catalog
func Default() *Catalog {
	c, err := New(DefaultKinds())
	if err != nil {
		panic(err)
	}
	return c
}

// Valid reports whether name is a known action type (exact match)
func (c *Catalog) Valid(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Lookup returns the kind registered under name
func (c *Catalog) Lookup(name string) (Kind, bool) {
	k, ok := c.byName[name]
	return k, ok
}

// Category returns the turn category of name; unknown names report false
func (c *Catalog) Category(name string) (Category, bool) {
	k, ok := c.byName[name]
	if !ok {
		return Primary, false
	}
	return k.Category(), true
}

// IsSpecial reports whether name is a special (non turn-advancing) action.
// Unknown names are treated as primary.
func (c *Catalog) IsSpecial(name string) bool {
	return c.byName[name].Special
}

// Kinds returns a copy of all kinds in offering order
func (c *Catalog) Kinds() []Kind {
	out := make([]Kind, len(c.kinds))
	copy(out, c.kinds)
	return out
}

// Names returns all action type names in offering order
func (c *Catalog) Names() []string {
	names := make([]string, len(c.kinds))
	for i, k := range c.kinds {
		names[i] = k.Name
	}
	return names
}

// BySize returns the names offered in the given input group
func (c *Catalog) BySize(size Size) []string {
	var names []string
	for _, k := range c.kinds {
		if k.Size == size {
			names = append(names, k.Name)
		}
	}
	return names
}

// Match returns the names starting with prefix, ignoring case.
// An empty prefix matches everything.
func (c *Catalog) Match(prefix string) []string {
	p := foldCase(strings.TrimSpace(prefix))
	var names []string
	for _, k := range c.kinds {
		if strings.HasPrefix(foldCase(k.Name), p) {
			names = append(names, k.Name)
		}
	}
	return names
}

// Resolve turns operator input into a catalog name: an exact match wins,
// otherwise a unique case-insensitive prefix match is accepted.
func (c *Catalog) Resolve(input string) (string, error) {
	input = util.NormalizeName(input)
	if c.Valid(input) {
		return input, nil
	}
	matches := c.Match(input)
	for _, m := range matches {
		if foldCase(m) == foldCase(input) {
			return m, nil
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("%w: %q", util.ErrInvalidActionType, input)
	default:
		return "", fmt.Errorf("%w: %q is ambiguous (%s)", util.ErrInvalidActionType, input, strings.Join(matches, ", "))
	}
}

// NormalizeSecondary applies the kind's participant casing rule.
// The input slice is not modified.
func (c *Catalog) NormalizeSecondary(actionType string, names []string) []string {
	if len(names) == 0 {
		return names
	}
	out := make([]string, len(names))
	copy(out, names)
	if c.byName[actionType].UppercaseSecondary {
		for i, n := range out {
			out[i] = strings.ToUpper(n)
		}
	}
	return out
}

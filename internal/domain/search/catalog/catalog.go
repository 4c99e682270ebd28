package catalog

import (
	"fmt"
	"regexp"
	"slices"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxNameLength is the longest accepted collection identifier.
const MaxNameLength = 128

// Catalog is the static set of collections a search endpoint exposes (immutable value object).
type Catalog struct {
	names []string
	index map[string]struct{}
}

// New validates names and builds a sorted, deduplicated catalog.
func New(names []string) (Catalog, error) {
	if len(names) == 0 {
		return Catalog{}, fmt.Errorf("at least one collection is required")
	}

	index := make(map[string]struct{}, len(names))
	sorted := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			return Catalog{}, fmt.Errorf("collection name is required")
		}
		if len(n) > MaxNameLength {
			return Catalog{}, fmt.Errorf("collection name %q too long (max %d)", n, MaxNameLength)
		}
		if !nameRegex.MatchString(n) {
			return Catalog{}, fmt.Errorf("collection name %q must be alphanumeric with underscores and hyphens", n)
		}
		if _, dup := index[n]; dup {
			continue
		}
		index[n] = struct{}{}
		sorted = append(sorted, n)
	}
	slices.Sort(sorted)

	return Catalog{names: sorted, index: index}, nil
}

// Contains reports whether name is a known collection.
func (c Catalog) Contains(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Default returns the lexicographically first collection, or "" for an empty catalog.
func (c Catalog) Default() string {
	if len(c.names) == 0 {
		return ""
	}
	return c.names[0]
}

// Names returns the collections in lexicographic order.
func (c Catalog) Names() []string { return slices.Clone(c.names) }

// Len returns the number of known collections.
func (c Catalog) Len() int { return len(c.names) }

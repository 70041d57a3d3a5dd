package route

import (
	"slices"
	"sync"
)

// DefaultTrueRoute is the identifier of the bonus route unlocked by clearing
// every base route.
const DefaultTrueRoute = "trueRoute"

// DefaultBaseRoutes returns the three mandatory storylines.
func DefaultBaseRoutes() []string {
	return []string{"route1", "route2", "route3"}
}

// Catalog is the registry of known routes. Base routes and the true route are
// fixed at construction; DLC and special routes may be added or removed at any
// time. A Catalog is safe for concurrent use.
type Catalog struct {
	base      []string
	trueRoute string

	mu      sync.RWMutex
	dlc     []string
	special []string
}

// CatalogOption configures a Catalog at construction time.
type CatalogOption func(*Catalog)

// WithBaseRoutes replaces the default base routes.
func WithBaseRoutes(names ...string) CatalogOption {
	return func(c *Catalog) {
		c.base = appendUnique(nil, names...)
	}
}

// WithTrueRoute replaces the default true route identifier.
func WithTrueRoute(name string) CatalogOption {
	return func(c *Catalog) {
		c.trueRoute = name
	}
}

// WithDLCRoutes seeds the DLC list.
func WithDLCRoutes(names ...string) CatalogOption {
	return func(c *Catalog) {
		c.dlc = appendUnique(c.dlc, names...)
	}
}

// WithSpecialRoutes seeds the special list.
func WithSpecialRoutes(names ...string) CatalogOption {
	return func(c *Catalog) {
		c.special = appendUnique(c.special, names...)
	}
}

// NewCatalog returns a catalog holding the default base routes and true route
// with empty DLC and special lists, adjusted by opts.
func NewCatalog(opts ...CatalogOption) *Catalog {
	c := &Catalog{
		base:      DefaultBaseRoutes(),
		trueRoute: DefaultTrueRoute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AllRoutes returns base, DLC, and special routes in that order. The true
// route is not included.
func (c *Catalog) AllRoutes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	all := make([]string, 0, len(c.base)+len(c.dlc)+len(c.special))
	all = append(all, c.base...)
	all = append(all, c.dlc...)
	return append(all, c.special...)
}

// BaseRoutes returns a copy of the base route list.
func (c *Catalog) BaseRoutes() []string {
	return slices.Clone(c.base)
}

// DLCRoutes returns a copy of the DLC route list.
func (c *Catalog) DLCRoutes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.dlc)
}

// SpecialRoutes returns a copy of the special route list.
func (c *Catalog) SpecialRoutes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.special)
}

// TrueRouteName returns the identifier of the true route.
func (c *Catalog) TrueRouteName() string {
	return c.trueRoute
}

// AddDLCRoute registers name as a DLC route. Adding a name twice is a no-op.
func (c *Catalog) AddDLCRoute(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dlc = appendUnique(c.dlc, name)
}

// AddSpecialRoute registers name as a special route. Adding a name twice is a
// no-op.
func (c *Catalog) AddSpecialRoute(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.special = appendUnique(c.special, name)
}

// RemoveDLCRoute unregisters a DLC route. Absent names are ignored.
func (c *Catalog) RemoveDLCRoute(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dlc = slices.DeleteFunc(c.dlc, func(s string) bool { return s == name })
}

// RemoveSpecialRoute unregisters a special route. Absent names are ignored.
func (c *Catalog) RemoveSpecialRoute(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.special = slices.DeleteFunc(c.special, func(s string) bool { return s == name })
}

// ReplaceExtensions swaps the DLC and special lists in one step. Duplicates
// in the inputs are dropped, keeping the first occurrence.
func (c *Catalog) ReplaceExtensions(dlc, special []string) {
	d := appendUnique(nil, dlc...)
	s := appendUnique(nil, special...)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dlc = d
	c.special = s
}

// ResetConfiguration empties the DLC and special lists. Base routes and the
// true route are untouched.
func (c *Catalog) ResetConfiguration() {
	c.ReplaceExtensions(nil, nil)
}

// IsValidRoute reports whether name is a catalog route or the true route.
func (c *Catalog) IsValidRoute(name string) bool {
	return name == c.trueRoute || slices.Contains(c.AllRoutes(), name)
}

// IsBaseRoute reports whether name is one of the base routes.
func (c *Catalog) IsBaseRoute(name string) bool {
	return slices.Contains(c.base, name)
}

// IsDLCRoute reports whether name is a registered DLC route.
func (c *Catalog) IsDLCRoute(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Contains(c.dlc, name)
}

// IsSpecialRoute reports whether name is a registered special route.
func (c *Catalog) IsSpecialRoute(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Contains(c.special, name)
}

// IsTrueRoute reports whether name is the true route.
func (c *Catalog) IsTrueRoute(name string) bool {
	return name == c.trueRoute
}

// IsTrueRouteUnlockCondition reports whether every base route appears in
// cleared. DLC and special routes play no part.
func (c *Catalog) IsTrueRouteUnlockCondition(cleared []string) bool {
	for _, b := range c.base {
		if !slices.Contains(cleared, b) {
			return false
		}
	}
	return true
}

func appendUnique(dst []string, names ...string) []string {
	for _, n := range names {
		if !slices.Contains(dst, n) {
			dst = append(dst, n)
		}
	}
	return dst
}

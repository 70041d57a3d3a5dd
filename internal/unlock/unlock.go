// Package unlock decides whether a route may be selected given the catalog
// and a player's cleared routes. Decisions are advisory: progress.Record does
// not enforce them, so callers check before calling SelectRoute.
package unlock

import (
	"github.com/papapumpkin/prism/internal/progress"
	"github.com/papapumpkin/prism/internal/route"
)

// Denial reasons.
const (
	ReasonNoRoute         = "no route specified"
	ReasonTrueRouteLocked = "all base routes must be cleared to unlock the true route"
	ReasonUnknownRoute    = "route does not exist"
)

// Decision is the outcome of a selection check. Reason is empty when
// CanSelect is true.
type Decision struct {
	CanSelect bool
	Reason    string
}

func allow() Decision {
	return Decision{CanSelect: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Policy evaluates route selections against a catalog.
type Policy struct {
	catalog *route.Catalog
}

// NewPolicy returns a policy backed by c.
func NewPolicy(c *route.Catalog) *Policy {
	return &Policy{catalog: c}
}

// CanSelectRoute reports whether t may be selected for rec.
func (p *Policy) CanSelectRoute(t route.Tag, rec *progress.Record) Decision {
	name := t.Value()
	switch {
	case t.IsEmpty():
		return deny(ReasonNoRoute)
	case p.catalog.IsTrueRoute(name):
		if !p.IsTrueRouteUnlocked(rec) {
			return deny(ReasonTrueRouteLocked)
		}
		return allow()
	case !p.catalog.IsValidRoute(name):
		return deny(ReasonUnknownRoute)
	}
	return allow()
}

// IsTrueRouteUnlocked reports whether rec has cleared every base route of the
// policy's catalog.
func (p *Policy) IsTrueRouteUnlocked(rec *progress.Record) bool {
	return p.catalog.IsTrueRouteUnlockCondition(rec.ClearedRouteNames())
}

// RouteOption pairs a selectable route with its decision for a record.
type RouteOption struct {
	Name    string
	Cleared bool
	Decision
}

// AvailableRoutes lists every catalog route followed by the true route, each
// with the decision for rec.
func (p *Policy) AvailableRoutes(rec *progress.Record) []RouteOption {
	names := append(p.catalog.AllRoutes(), p.catalog.TrueRouteName())
	opts := make([]RouteOption, 0, len(names))
	for _, name := range names {
		t := route.From(name)
		opts = append(opts, RouteOption{
			Name:     name,
			Cleared:  rec.IsRouteCleared(t),
			Decision: p.CanSelectRoute(t, rec),
		})
	}
	return opts
}

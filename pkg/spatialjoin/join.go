// Package spatialjoin implements the source→target spatial join engine: for
// each SOURCE geometry, find the intersecting TARGET geometries and reduce
// them under a selection or aggregation policy.
//
// Joins are pure functions of their inputs. The parallel option exists purely
// as a throughput knob; results are identical run-to-run and worker-to-worker
// because each source index is computed independently and written to its own
// result slot.
package spatialjoin

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/geokit/pkg/geodata"
	"github.com/sells-group/geokit/pkg/reduce"
	"github.com/sells-group/geokit/pkg/relate"
)

type policyKind int

const (
	kindFirstMatch policyKind = iota
	kindAllMatches
	kindAggregate
	kindAreaWeighted
)

// Policy selects what the join returns per source item.
type Policy struct {
	kind    policyKind
	reducer reduce.Reducer
	attr    string
}

// FirstMatch returns, per source item, the intersecting target with the
// smallest target index, or no match. When the target collection carries an
// attribute table the matching row is included.
func FirstMatch() Policy { return Policy{kind: kindFirstMatch} }

// AllMatches returns, per source item, every intersecting target index in
// ascending order.
func AllMatches() Policy { return Policy{kind: kindAllMatches} }

// Aggregate gathers the named attribute over all intersecting target rows
// and reduces them. An empty attr with the count reducer counts matches.
func Aggregate(r reduce.Reducer, attr string) Policy {
	return Policy{kind: kindAggregate, reducer: r, attr: attr}
}

// AreaWeighted is Aggregate with each target's contribution weighted by its
// fractional overlap area with the source geometry. Polygonal collections
// only. Boundary-touching targets carry zero weight and are dropped, so the
// per-source weights always sum to at most one.
func AreaWeighted(r reduce.Reducer, attr string) Policy {
	return Policy{kind: kindAreaWeighted, reducer: r, attr: attr}
}

// Match is the join outcome for one source index. Exactly one Match exists
// per source index regardless of how many targets intersect.
type Match struct {
	Source int

	// FirstMatch: Target is the selected index (-1 when none) and Row the
	// selected attribute row when the target collection has a table.
	Target int
	Row    geodata.Row

	// AllMatches: ascending target indexes; empty slice for no matches.
	Targets []int

	// Aggregate / AreaWeighted: the reduced value. HasValue is false when
	// the match set is empty and the reducer does not define that case.
	Value    float64
	HasValue bool
}

// Result holds one Match per source index, in source order.
type Result struct {
	Matches []Match
}

// Option configures a join.
type Option func(*config)

type config struct {
	relator relate.Relator
	workers int
}

// WithRelator substitutes the geometry relation provider. The default is
// relate.Planar.
func WithRelator(r relate.Relator) Option {
	return func(c *config) { c.relator = r }
}

// WithWorkers runs the join data-parallel over source indexes.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// Join computes the spatial join of source against target under the policy.
// Both collections must share a coordinate reference frame.
func Join(ctx context.Context, source, target *geodata.Collection, policy Policy, opts ...Option) (*Result, error) {
	cfg := config{relator: relate.Planar{}, workers: 1}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := geodata.CheckFrames(source.Frame(), target.Frame()); err != nil {
		return nil, eris.Wrap(err, "spatialjoin: incompatible inputs")
	}
	if err := validatePolicy(policy, target); err != nil {
		return nil, err
	}

	matches := make([]Match, source.Len())

	if cfg.workers <= 1 {
		for i := 0; i < source.Len(); i++ {
			if err := ctx.Err(); err != nil {
				return nil, eris.Wrap(err, "spatialjoin: canceled")
			}
			m, err := joinOne(i, source, target, policy, cfg.relator)
			if err != nil {
				return nil, err
			}
			matches[i] = m
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.workers)
		for i := 0; i < source.Len(); i++ {
			i := i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return eris.Wrap(err, "spatialjoin: canceled")
				}
				m, err := joinOne(i, source, target, policy, cfg.relator)
				if err != nil {
					return err
				}
				matches[i] = m
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	zap.L().Debug("spatialjoin: join complete",
		zap.Int("source", source.Len()),
		zap.Int("target", target.Len()),
	)
	return &Result{Matches: matches}, nil
}

func validatePolicy(policy Policy, target *geodata.Collection) error {
	switch policy.kind {
	case kindAggregate, kindAreaWeighted:
		if policy.reducer == nil {
			return eris.New("spatialjoin: aggregation policy requires a reducer")
		}
		// Only count reduces the synthetic unit values meaningfully.
		if policy.attr == "" && policy.reducer.Name() != "count" {
			return eris.Errorf("spatialjoin: reducer %s requires an attribute", policy.reducer.Name())
		}
		if policy.attr != "" && (target.Attrs() == nil || !target.Attrs().HasColumn(policy.attr)) {
			return eris.Wrapf(geodata.ErrKeyNotFound, "aggregate attribute %q", policy.attr)
		}
	}
	return nil
}

func joinOne(i int, source, target *geodata.Collection, policy Policy, r relate.Relator) (Match, error) {
	m := Match{Source: i, Target: -1}
	sg := source.Geom(i)

	var hits []int
	for j := 0; j < target.Len(); j++ {
		ok, err := r.Intersects(sg, target.Geom(j))
		if err != nil {
			return Match{}, eris.Wrapf(err, "spatialjoin: relate source %d target %d", i, j)
		}
		if !ok {
			continue
		}
		hits = append(hits, j)
		if policy.kind == kindFirstMatch {
			break
		}
	}

	switch policy.kind {
	case kindFirstMatch:
		if len(hits) > 0 {
			m.Target = hits[0]
			if target.Attrs() != nil {
				m.Row = target.Attrs().Row(hits[0])
			}
		}
	case kindAllMatches:
		m.Targets = hits
		if m.Targets == nil {
			m.Targets = []int{}
		}
	case kindAggregate:
		vals := gatherValues(target, hits, policy.attr)
		m.Value, m.HasValue = applyReducer(policy.reducer, vals, nil)
	case kindAreaWeighted:
		vals, weights, err := gatherWeighted(sg, target, hits, policy.attr, r)
		if err != nil {
			return Match{}, err
		}
		m.Value, m.HasValue = applyReducer(policy.reducer, vals, weights)
	}
	return m, nil
}

// gatherValues collects the attribute values of the hit rows, skipping nulls
// and non-numeric values. An empty attr yields one unit value per hit, which
// lets the count reducer count matches without an attribute table.
func gatherValues(target *geodata.Collection, hits []int, attr string) []float64 {
	vals := make([]float64, 0, len(hits))
	for _, j := range hits {
		if attr == "" {
			vals = append(vals, 1)
			continue
		}
		if v, ok := target.Attrs().Float(j, attr); ok {
			vals = append(vals, v)
		}
	}
	return vals
}

func gatherWeighted(sg geom.T, target *geodata.Collection, hits []int, attr string, r relate.Relator) ([]float64, []float64, error) {
	srcArea, err := polygonalArea(sg)
	if err != nil {
		return nil, nil, err
	}
	var vals, weights []float64
	for _, j := range hits {
		overlap, err := r.IntersectionArea(sg, target.Geom(j))
		if err != nil {
			return nil, nil, eris.Wrapf(err, "spatialjoin: overlap area target %d", j)
		}
		if overlap <= 0 || srcArea <= 0 {
			// Boundary touch: intersecting but zero-area, zero weight.
			continue
		}
		var v float64
		if attr == "" {
			v = 1
		} else {
			f, ok := target.Attrs().Float(j, attr)
			if !ok {
				continue
			}
			v = f
		}
		vals = append(vals, v)
		weights = append(weights, overlap/srcArea)
	}
	return vals, weights, nil
}

// applyReducer reduces the gathered values. A reducer that does not define
// the empty case makes the match absent instead of erroring: zero matches is
// an expected join outcome, not a failure.
func applyReducer(r reduce.Reducer, vals, weights []float64) (float64, bool) {
	var (
		v   float64
		err error
	)
	if weights != nil {
		v, err = r.ReduceWeighted(vals, weights)
	} else {
		v, err = r.Reduce(vals)
	}
	if err != nil {
		return 0, false
	}
	return v, true
}

func polygonalArea(g geom.T) (float64, error) {
	switch t := g.(type) {
	case *geom.Polygon:
		return t.Area(), nil
	case *geom.MultiPolygon:
		return t.Area(), nil
	default:
		return 0, eris.Wrapf(relate.ErrNotPolygonal, "area-weighted source %T", g)
	}
}

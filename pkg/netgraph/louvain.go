package netgraph

import (
	"slices"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/graph/community"
)

// Assignment maps each vertex name to its community label.
type Assignment map[string]int

// Clusterer partitions a graph's vertices into communities.
type Clusterer interface {
	Cluster(g *Graph) (Assignment, error)
}

// Louvain clusters by modularity maximization (gonum's Louvain
// implementation). The zero value uses resolution 1 and a fixed seed, so the
// same graph always yields the same assignment.
type Louvain struct {
	// Resolution scales the modularity granularity; 0 means 1.0.
	Resolution float64
	// Seed fixes the random source driving the node sweep order.
	Seed uint64
}

// Cluster implements Clusterer. Community labels are assigned in order of
// each community's lexicographically smallest member, starting from 0, so
// labels are stable across runs.
func (l Louvain) Cluster(g *Graph) (Assignment, error) {
	out := make(Assignment, g.Order())
	if g.Order() == 0 {
		return out, nil
	}

	resolution := l.Resolution
	if resolution == 0 {
		resolution = 1
	}
	src := rand.NewSource(l.Seed)

	reduced := community.Modularize(g.backend(), resolution, src)
	if reduced == nil {
		return nil, eris.New("netgraph: modularization failed")
	}

	groups := make([][]string, 0, len(reduced.Communities()))
	for _, nodes := range reduced.Communities() {
		names := make([]string, 0, len(nodes))
		for _, n := range nodes {
			names = append(names, g.name(n.ID()))
		}
		slices.Sort(names)
		groups = append(groups, names)
	}
	slices.SortFunc(groups, func(a, b []string) int {
		switch {
		case a[0] < b[0]:
			return -1
		case a[0] > b[0]:
			return 1
		default:
			return 0
		}
	})

	for label, names := range groups {
		for _, name := range names {
			out[name] = label
		}
	}

	zap.L().Debug("netgraph: louvain clustering",
		zap.Int("vertices", g.Order()),
		zap.Int("communities", len(groups)),
		zap.Float64("resolution", resolution),
	)
	return out, nil
}

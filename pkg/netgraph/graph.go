// Package netgraph builds network graphs keyed by vertex name, runs community
// detection over them, and binds the resulting community labels back onto
// geometry collections.
//
// Vertex identity is by name only. The numeric node ids of the backing gonum
// graphs are a private artifact: they are assigned once, never reused, and
// never cross the package boundary, so removing a vertex cannot shift the
// identity of any other vertex.
package netgraph

import (
	"slices"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Edge is one weighted edge of an edge list. The csv tags match the edge-list
// files the loader package reads.
type Edge struct {
	From   string  `csv:"source"`
	To     string  `csv:"target"`
	Weight float64 `csv:"weight,omitempty"`
}

// Graph is a weighted graph whose vertices are identified by name.
type Graph struct {
	directed bool
	und      *simple.WeightedUndirectedGraph
	dir      *simple.WeightedDirectedGraph
	ids      map[string]int64
	names    map[int64]string
	nextID   int64
}

// New returns an empty graph.
func New(directed bool) *Graph {
	g := &Graph{
		directed: directed,
		ids:      make(map[string]int64),
		names:    make(map[int64]string),
	}
	if directed {
		g.dir = simple.NewWeightedDirectedGraph(0, 0)
	} else {
		g.und = simple.NewWeightedUndirectedGraph(0, 0)
	}
	return g
}

// FromEdges builds a graph from an edge list. Edges with no weight are given
// unit weight.
func FromEdges(edges []Edge, directed bool) (*Graph, error) {
	g := New(directed)
	for _, e := range edges {
		w := e.Weight
		if w == 0 {
			w = 1
		}
		if err := g.AddEdge(e.From, e.To, w); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Directed reports whether the graph is directed.
func (g *Graph) Directed() bool { return g.directed }

// Order returns the vertex count.
func (g *Graph) Order() int { return len(g.ids) }

// HasVertex reports whether the named vertex exists.
func (g *Graph) HasVertex(name string) bool {
	_, ok := g.ids[name]
	return ok
}

// AddVertex adds a vertex if it does not already exist.
func (g *Graph) AddVertex(name string) {
	if name == "" || g.HasVertex(name) {
		return
	}
	id := g.nextID
	g.nextID++
	g.ids[name] = id
	g.names[id] = name
	g.backend().(graph.NodeAdder).AddNode(simple.Node(id))
}

// RemoveVertex removes the named vertex and its incident edges. Other
// vertices keep their identities; ids are never renumbered.
func (g *Graph) RemoveVertex(name string) {
	id, ok := g.ids[name]
	if !ok {
		return
	}
	if g.directed {
		g.dir.RemoveNode(id)
	} else {
		g.und.RemoveNode(id)
	}
	delete(g.ids, name)
	delete(g.names, id)
}

// AddEdge adds a weighted edge, creating missing vertices. Self-loops are
// rejected; community modularity is undefined over them here.
func (g *Graph) AddEdge(from, to string, weight float64) error {
	if from == "" || to == "" {
		return eris.New("netgraph: edge endpoints must be named")
	}
	if from == to {
		return eris.Errorf("netgraph: self-loop on %q", from)
	}
	g.AddVertex(from)
	g.AddVertex(to)
	we := simple.WeightedEdge{
		F: simple.Node(g.ids[from]),
		T: simple.Node(g.ids[to]),
		W: weight,
	}
	if g.directed {
		g.dir.SetWeightedEdge(we)
	} else {
		g.und.SetWeightedEdge(we)
	}
	return nil
}

// HasEdge reports whether an edge exists between the named vertices. For
// directed graphs the direction is from→to.
func (g *Graph) HasEdge(from, to string) bool {
	fid, ok := g.ids[from]
	if !ok {
		return false
	}
	tid, ok := g.ids[to]
	if !ok {
		return false
	}
	if g.directed {
		return g.dir.HasEdgeFromTo(fid, tid)
	}
	return g.und.HasEdgeBetween(fid, tid)
}

// Vertices returns all vertex names in sorted order.
func (g *Graph) Vertices() []string {
	out := make([]string, 0, len(g.ids))
	for name := range g.ids {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func (g *Graph) backend() graph.Graph {
	if g.directed {
		return g.dir
	}
	return g.und
}

func (g *Graph) name(id int64) string { return g.names[id] }

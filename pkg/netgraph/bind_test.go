package netgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/geokit/pkg/geodata"
)

func namedPoints(t *testing.T, names ...string) *geodata.Collection {
	t.Helper()
	geoms := make([]geom.T, len(names))
	rows := make([]geodata.Row, len(names))
	for i, name := range names {
		geoms[i] = geom.NewPointFlat(geom.XY, []float64{float64(i), 0})
		rows[i] = geodata.Row{"name": name}
	}
	attrs, err := geodata.NewTable([]string{"name"}, rows)
	require.NoError(t, err)
	c, err := geodata.NewCollection(geodata.EPSGFrame(4326), geoms, attrs)
	require.NoError(t, err)
	return c
}

func TestBindCommunities(t *testing.T) {
	col := namedPoints(t, "a", "b", "c", "d", "e")
	assignment := Assignment{"a": 1, "b": 1, "c": 1, "d": 1}

	bound, err := BindCommunities(col, assignment, "name")
	require.NoError(t, err)

	assert.Equal(t, 5, bound.Len(), "geometries without a vertex are kept")
	for i, name := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, name, bound.Attrs().Value(i, "name"))
		assert.Equal(t, 1, bound.Attrs().Value(i, "community"))
	}
	assert.Nil(t, bound.Attrs().Value(4, "community"), "vertex-less geometry gets a null label")
}

func TestBindCommunities_Rebind(t *testing.T) {
	col := namedPoints(t, "a", "b")

	bound, err := BindCommunities(col, Assignment{"a": 0, "b": 1}, "name")
	require.NoError(t, err)

	rebound, err := BindCommunities(bound, Assignment{"a": 2, "b": 2}, "name")
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "community"}, rebound.Attrs().Columns())
	assert.Equal(t, 2, rebound.Attrs().Value(0, "community"))
	assert.Equal(t, 2, rebound.Attrs().Value(1, "community"))
}

func TestBindCommunities_CustomColumn(t *testing.T) {
	col := namedPoints(t, "a")

	bound, err := BindCommunities(col, Assignment{"a": 3}, "name", WithCommunityColumn("cluster"))
	require.NoError(t, err)
	assert.Equal(t, 3, bound.Attrs().Value(0, "cluster"))
}

func TestBindCommunities_MissingKeyColumn(t *testing.T) {
	col := namedPoints(t, "a")

	_, err := BindCommunities(col, Assignment{"a": 0}, "geoid")
	assert.Error(t, err)
}

// componentClusterer labels each connected component by its smallest member,
// exercising the Clusterer seam without modularity math.
type componentClusterer struct{}

func (componentClusterer) Cluster(g *Graph) (Assignment, error) {
	out := make(Assignment, g.Order())
	label := 0
	for _, name := range g.Vertices() {
		if _, seen := out[name]; seen {
			continue
		}
		stack := []string{name}
		out[name] = label
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, other := range g.Vertices() {
				if _, seen := out[other]; !seen && g.HasEdge(cur, other) {
					out[other] = label
					stack = append(stack, other)
				}
			}
		}
		label++
	}
	return out, nil
}

func TestClustererToBinding(t *testing.T) {
	// A 4-cycle plus an isolated vertex.
	g := New(false)
	for _, e := range [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"d", "a"}} {
		require.NoError(t, g.AddEdge(e[0], e[1], 1))
	}
	g.AddVertex("e")

	var clusterer Clusterer = componentClusterer{}
	assignment, err := clusterer.Cluster(g)
	require.NoError(t, err)

	col := namedPoints(t, "a", "b", "c", "d", "e")
	bound, err := BindCommunities(col, assignment, "name")
	require.NoError(t, err)

	require.Equal(t, 5, bound.Len())
	for i := 0; i < 4; i++ {
		assert.Equal(t, 0, bound.Attrs().Value(i, "community"))
	}
	assert.Equal(t, 1, bound.Attrs().Value(4, "community"), "the isolated vertex is its own community")
}

func TestLouvainToBinding(t *testing.T) {
	g := bridgedTriangles(t)
	assignment, err := Louvain{}.Cluster(g)
	require.NoError(t, err)

	col := namedPoints(t, "a", "b", "c", "d", "e", "f")
	bound, err := BindCommunities(col, assignment, "name")
	require.NoError(t, err)

	assert.Equal(t, 0, bound.Attrs().Value(0, "community"))
	assert.Equal(t, 1, bound.Attrs().Value(5, "community"))
}

package spatialjoin

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/geokit/pkg/geodata"
	"github.com/sells-group/geokit/pkg/reduce"
)

func point(x, y float64) geom.T {
	return geom.NewPointFlat(geom.XY, []float64{x, y})
}

func rect(x0, y0, x1, y1 float64) geom.T {
	return geom.NewPolygonFlat(geom.XY, []float64{
		x0, y0, x1, y0, x1, y1, x0, y1, x0, y0,
	}, []int{10})
}

func collection(t *testing.T, frame geodata.Frame, geoms []geom.T, attrs *geodata.Table) *geodata.Collection {
	t.Helper()
	c, err := geodata.NewCollection(frame, geoms, attrs)
	require.NoError(t, err)
	return c
}

// pointsAndPolygons is the canonical fixture: three points at (0,0), (5,5),
// (10,10); two target squares [-1,1]² (value 10) and [4,6]² (value 20). The
// third point matches nothing.
func pointsAndPolygons(t *testing.T) (*geodata.Collection, *geodata.Collection) {
	t.Helper()
	frame := geodata.EPSGFrame(32633)
	source := collection(t, frame, []geom.T{
		point(0, 0), point(5, 5), point(10, 10),
	}, nil)

	attrs, err := geodata.NewTable([]string{"value"}, []geodata.Row{
		{"value": 10.0},
		{"value": 20.0},
	})
	require.NoError(t, err)
	target := collection(t, frame, []geom.T{
		rect(-1, -1, 1, 1), rect(4, 4, 6, 6),
	}, attrs)
	return source, target
}

func TestJoin_FrameMismatch(t *testing.T) {
	source, _ := pointsAndPolygons(t)
	attrs := collection(t, geodata.EPSGFrame(4326), []geom.T{rect(0, 0, 1, 1)}, nil)

	_, err := Join(context.Background(), source, attrs, FirstMatch())
	require.Error(t, err)
	assert.True(t, eris.Is(err, geodata.ErrFrameMismatch))
}

func TestJoin_FirstMatch(t *testing.T) {
	source, target := pointsAndPolygons(t)

	res, err := Join(context.Background(), source, target, FirstMatch())
	require.NoError(t, err)
	require.Len(t, res.Matches, 3)

	assert.Equal(t, 0, res.Matches[0].Target)
	assert.Equal(t, 10.0, res.Matches[0].Row["value"])
	assert.Equal(t, 1, res.Matches[1].Target)
	assert.Equal(t, 20.0, res.Matches[1].Row["value"])
	assert.Equal(t, -1, res.Matches[2].Target)
	assert.Nil(t, res.Matches[2].Row)
}

func TestJoin_FirstMatch_LowestIndexWins(t *testing.T) {
	frame := geodata.EPSGFrame(32633)
	source := collection(t, frame, []geom.T{point(0.5, 0.5)}, nil)
	target := collection(t, frame, []geom.T{
		rect(0, 0, 1, 1), rect(0, 0, 2, 2),
	}, nil)

	res, err := Join(context.Background(), source, target, FirstMatch())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Matches[0].Target)
}

func TestJoin_AllMatches(t *testing.T) {
	frame := geodata.EPSGFrame(32633)
	source := collection(t, frame, []geom.T{
		point(0.5, 0.5),
		point(1, 1), // on the boundary of both targets
		point(9, 9),
	}, nil)
	target := collection(t, frame, []geom.T{
		rect(0, 0, 1, 1), rect(1, 1, 2, 2),
	}, nil)

	res, err := Join(context.Background(), source, target, AllMatches())
	require.NoError(t, err)

	assert.Equal(t, []int{0}, res.Matches[0].Targets)
	assert.Equal(t, []int{0, 1}, res.Matches[1].Targets, "boundary point intersects both")
	assert.Equal(t, []int{}, res.Matches[2].Targets, "no-match entry still present")
}

func TestJoin_AggregateCount(t *testing.T) {
	source, target := pointsAndPolygons(t)

	res, err := Join(context.Background(), source, target, Aggregate(reduce.Count{}, ""))
	require.NoError(t, err)

	want := []float64{1, 1, 0}
	for i, m := range res.Matches {
		assert.True(t, m.HasValue, "count is defined on the empty set")
		assert.Equal(t, want[i], m.Value)
	}
}

func TestJoin_AggregateMean_AbsentOnNoMatch(t *testing.T) {
	source, target := pointsAndPolygons(t)

	res, err := Join(context.Background(), source, target, Aggregate(reduce.Mean{}, "value"))
	require.NoError(t, err)

	assert.True(t, res.Matches[0].HasValue)
	assert.Equal(t, 10.0, res.Matches[0].Value)
	assert.True(t, res.Matches[1].HasValue)
	assert.Equal(t, 20.0, res.Matches[1].Value)
	assert.False(t, res.Matches[2].HasValue, "mean of zero matches is absent, not zero")
}

func TestJoin_AggregateMissingAttribute(t *testing.T) {
	source, target := pointsAndPolygons(t)

	_, err := Join(context.Background(), source, target, Aggregate(reduce.Mean{}, "nope"))
	require.Error(t, err)
	assert.True(t, eris.Is(err, geodata.ErrKeyNotFound))
}

func TestJoin_AggregateEmptyAttribute(t *testing.T) {
	source, target := pointsAndPolygons(t)

	// Without an attribute there is nothing for mean to average; only count
	// may run attribute-less.
	_, err := Join(context.Background(), source, target, Aggregate(reduce.Mean{}, ""))
	require.Error(t, err)

	_, err = Join(context.Background(), source, target, AreaWeighted(reduce.Sum{}, ""))
	require.Error(t, err)
}

func TestJoin_AreaWeighted_PartitionSumsToOne(t *testing.T) {
	frame := geodata.EPSGFrame(32633)
	source := collection(t, frame, []geom.T{rect(0, 0, 2, 2)}, nil)

	attrs, err := geodata.NewTable([]string{"density"}, []geodata.Row{
		{"density": 100.0},
		{"density": 300.0},
	})
	require.NoError(t, err)
	// The two targets exactly partition the source square.
	target := collection(t, frame, []geom.T{
		rect(0, 0, 1, 2), rect(1, 0, 2, 2),
	}, attrs)

	res, err := Join(context.Background(), source, target, AreaWeighted(reduce.Sum{}, "density"))
	require.NoError(t, err)

	// Each target covers half the source: 0.5*100 + 0.5*300.
	require.True(t, res.Matches[0].HasValue)
	assert.InDelta(t, 200.0, res.Matches[0].Value, 1e-9)
}

func TestJoin_AreaWeighted_BoundaryTouchZeroWeight(t *testing.T) {
	frame := geodata.EPSGFrame(32633)
	source := collection(t, frame, []geom.T{rect(0, 0, 1, 1)}, nil)

	attrs, err := geodata.NewTable([]string{"v"}, []geodata.Row{
		{"v": 100.0},
		{"v": 999.0},
	})
	require.NoError(t, err)
	// Second target only touches the source along an edge: it intersects,
	// but contributes no area and must not contribute to the aggregate.
	target := collection(t, frame, []geom.T{
		rect(0, 0, 1, 1), rect(1, 0, 2, 1),
	}, attrs)

	all, err := Join(context.Background(), source, target, AllMatches())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, all.Matches[0].Targets, "touching counts as intersecting")

	weighted, err := Join(context.Background(), source, target, AreaWeighted(reduce.Sum{}, "v"))
	require.NoError(t, err)
	require.True(t, weighted.Matches[0].HasValue)
	assert.InDelta(t, 100.0, weighted.Matches[0].Value, 1e-9)
}

func TestJoin_AreaWeighted_PartialCoverWeightsBelowOne(t *testing.T) {
	frame := geodata.EPSGFrame(32633)
	source := collection(t, frame, []geom.T{rect(0, 0, 2, 2)}, nil)

	attrs, err := geodata.NewTable([]string{"v"}, []geodata.Row{{"v": 100.0}})
	require.NoError(t, err)
	// Covers one quarter of the source.
	target := collection(t, frame, []geom.T{rect(0, 0, 1, 1)}, attrs)

	res, err := Join(context.Background(), source, target, AreaWeighted(reduce.Sum{}, "v"))
	require.NoError(t, err)
	require.True(t, res.Matches[0].HasValue)
	assert.InDelta(t, 25.0, res.Matches[0].Value, 1e-9)
}

func TestJoin_AreaWeighted_NonPolygonalSource(t *testing.T) {
	source, target := pointsAndPolygons(t)

	_, err := Join(context.Background(), source, target, AreaWeighted(reduce.Mean{}, "value"))
	require.Error(t, err)
}

func TestJoin_ParallelMatchesSequential(t *testing.T) {
	frame := geodata.EPSGFrame(32633)
	var sourceGeoms []geom.T
	for i := 0; i < 50; i++ {
		sourceGeoms = append(sourceGeoms, point(float64(i%10), float64(i/10)))
	}
	source := collection(t, frame, sourceGeoms, nil)
	target := collection(t, frame, []geom.T{
		rect(0, 0, 4, 4), rect(3, 3, 9, 9),
	}, nil)

	seq, err := Join(context.Background(), source, target, AllMatches())
	require.NoError(t, err)
	par, err := Join(context.Background(), source, target, AllMatches(), WithWorkers(8))
	require.NoError(t, err)

	assert.Equal(t, seq.Matches, par.Matches)
}

func TestJoin_Canceled(t *testing.T) {
	source, target := pointsAndPolygons(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Join(ctx, source, target, FirstMatch())
	assert.Error(t, err)
}

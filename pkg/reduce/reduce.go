// Package reduce defines the reduction policies shared by the spatial join
// engine and the zonal statistics extractor.
//
// Only Count defines a value on the empty set (zero). Every other reducer
// surfaces geodata.ErrEmptyReduction rather than silently coercing to zero,
// so empty-match and empty-cell cases are always the caller's decision.
package reduce

import (
	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/geokit/pkg/geodata"
)

// Reducer collapses a value set to a single number. ReduceWeighted is used by
// area-weighted aggregation; weights align 1:1 with values and are strictly
// positive (zero-weight contributions are dropped before reduction).
type Reducer interface {
	Name() string
	Reduce(vals []float64) (float64, error)
	ReduceWeighted(vals, weights []float64) (float64, error)
}

// ByName resolves a reducer from its flag/config spelling.
func ByName(name string) (Reducer, error) {
	switch name {
	case "mean":
		return Mean{}, nil
	case "sum":
		return Sum{}, nil
	case "count":
		return Count{}, nil
	case "min":
		return Min{}, nil
	case "max":
		return Max{}, nil
	default:
		return nil, eris.Errorf("reduce: unknown reducer %q", name)
	}
}

func emptyErr(name string) error {
	return eris.Wrapf(geodata.ErrEmptyReduction, "reducer %s", name)
}

// Mean is the arithmetic mean; weighted form is the weight-normalized mean.
type Mean struct{}

func (Mean) Name() string { return "mean" }

func (Mean) Reduce(vals []float64) (float64, error) {
	if len(vals) == 0 {
		return 0, emptyErr("mean")
	}
	return stat.Mean(vals, nil), nil
}

func (Mean) ReduceWeighted(vals, weights []float64) (float64, error) {
	if len(vals) == 0 {
		return 0, emptyErr("mean")
	}
	return stat.Mean(vals, weights), nil
}

// Sum adds values; the weighted form is the weight-scaled sum, so a target
// covering half the source contributes half its value.
type Sum struct{}

func (Sum) Name() string { return "sum" }

func (Sum) Reduce(vals []float64) (float64, error) {
	if len(vals) == 0 {
		return 0, emptyErr("sum")
	}
	return floats.Sum(vals), nil
}

func (Sum) ReduceWeighted(vals, weights []float64) (float64, error) {
	if len(vals) == 0 {
		return 0, emptyErr("sum")
	}
	return floats.Dot(vals, weights), nil
}

// Count reports the number of contributing values. It is defined on the
// empty set (zero), which is what makes zero-match aggregation with count
// yield 0 instead of absent.
type Count struct{}

func (Count) Name() string { return "count" }

func (Count) Reduce(vals []float64) (float64, error) {
	return float64(len(vals)), nil
}

func (Count) ReduceWeighted(vals, _ []float64) (float64, error) {
	return float64(len(vals)), nil
}

// Min returns the smallest value; weights do not change which value wins.
type Min struct{}

func (Min) Name() string { return "min" }

func (Min) Reduce(vals []float64) (float64, error) {
	if len(vals) == 0 {
		return 0, emptyErr("min")
	}
	return floats.Min(vals), nil
}

func (Min) ReduceWeighted(vals, _ []float64) (float64, error) {
	return Min{}.Reduce(vals)
}

// Max returns the largest value; weights do not change which value wins.
type Max struct{}

func (Max) Name() string { return "max" }

func (Max) Reduce(vals []float64) (float64, error) {
	if len(vals) == 0 {
		return 0, emptyErr("max")
	}
	return floats.Max(vals), nil
}

func (Max) ReduceWeighted(vals, _ []float64) (float64, error) {
	return Max{}.Reduce(vals)
}

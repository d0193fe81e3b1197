package sweep

import (
	"context"
	"math"
)

// Point is one evaluated grid point.
type Point struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// Grid is a cartesian product of named parameter ranges.
type Grid struct {
	paramNames []string
	ranges     [][]float64
}

func NewGrid(params []string, ranges [][]float64) *Grid {
	return &Grid{paramNames: params, ranges: ranges}
}

// Search evaluates fn at every grid point and returns the parameters
// and value of the smallest successful evaluation, plus the full
// table. Failed evaluations stay in the table with their error. When
// every point fails the returned params are nil and the value +Inf.
func (g *Grid) Search(ctx context.Context, fn func(params map[string]float64) (float64, error)) (map[string]float64, float64, []Point, error) {
	best := math.Inf(1)
	var bestParams map[string]float64
	table := make([]Point, 0)

	err := g.searchRecursive(ctx, 0, make(map[string]float64), fn, &best, &bestParams, &table)
	if err != nil {
		return nil, 0, table, err
	}

	return bestParams, best, table, nil
}

func (g *Grid) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	fn func(map[string]float64) (float64, error),
	best *float64,
	bestParams *map[string]float64,
	table *[]Point,
) error {
	if depth == len(g.paramNames) {
		if err := ctx.Err(); err != nil {
			return err
		}

		point := Point{Params: copyParams(current)}
		point.Value, point.Err = fn(current)
		*table = append(*table, point)

		if point.Err == nil && point.Value < *best {
			*best = point.Value
			*bestParams = point.Params
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		if err := g.searchRecursive(ctx, depth+1, current, fn, best, bestParams, table); err != nil {
			return err
		}
	}
	delete(current, paramName)
	return nil
}

func copyParams(params map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}

// Range builds n evenly spaced values from lo to hi inclusive.
func Range(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

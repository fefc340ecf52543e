package walks

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/dd0wney/cluso-graphwalk/pkg/graph"
	"github.com/dd0wney/cluso-graphwalk/pkg/logging"
	"github.com/dd0wney/cluso-graphwalk/pkg/progress"
)

// ErrDegenerateSweep is returned when a sweep has too few points or no
// variation to correlate.
var ErrDegenerateSweep = errors.New("sweep cannot be correlated")

// NodeTypeChangeRate returns the mean, over walks with at least one step, of
// the fraction of steps that move to a node of a different type.
func NodeTypeChangeRate(g *graph.Graph, walks [][]graph.NodeID) (float64, error) {
	if !g.HasNodeTypes() {
		return 0, graph.NewError("NodeTypeChangeRate").Cause(graph.ErrNoNodeTypes).Err()
	}
	sum, counted := 0.0, 0
	for _, walk := range walks {
		if len(walk) < 2 {
			continue
		}
		changes := 0
		for i := 1; i < len(walk); i++ {
			if g.UncheckedNodeTypeID(walk[i]) != g.UncheckedNodeTypeID(walk[i-1]) {
				changes++
			}
		}
		sum += float64(changes) / float64(len(walk)-1)
		counted++
	}
	if counted == 0 {
		return 0, nil
	}
	return sum / float64(counted), nil
}

// Correlation is a Pearson correlation with its two-sided p-value.
type Correlation struct {
	R      float64
	PValue float64
	N      int
}

// Pearson correlates x and y and tests r against zero with a Student t
// distribution on n-2 degrees of freedom.
func Pearson(x, y []float64) (Correlation, error) {
	if len(x) != len(y) {
		return Correlation{}, fmt.Errorf("%w: %d values against %d", ErrDegenerateSweep, len(x), len(y))
	}
	n := len(x)
	if n < 3 {
		return Correlation{}, fmt.Errorf("%w: need at least 3 points, got %d", ErrDegenerateSweep, n)
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return Correlation{}, fmt.Errorf("%w: constant series", ErrDegenerateSweep)
	}

	c := Correlation{R: r, N: n}
	if math.Abs(r) >= 1 {
		return c, nil
	}
	t := r * math.Sqrt(float64(n-2)/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	c.PValue = 2 * dist.Survival(math.Abs(t))
	return c, nil
}

// SweepResult holds the type change rate measured at each weight.
type SweepResult struct {
	Weights []float64
	Rates   []float64
	Correlation
}

// SweepChangeNodeTypeWeight runs complete walks once per change_node_type
// weight, holding every other parameter fixed, and correlates the weights
// with the observed node type change rates.
func SweepChangeNodeTypeWeight(ctx context.Context, g *graph.Graph, p Parameters, weights []float64) (SweepResult, error) {
	if !g.HasNodeTypes() {
		return SweepResult{}, graph.NewError("SweepChangeNodeTypeWeight").Cause(graph.ErrNoNodeTypes).Err()
	}
	for _, w := range weights {
		if err := ValidateWeight("change_node_type_weight", w); err != nil {
			return SweepResult{}, err
		}
	}

	logger := logging.OrDefault(p.Logger)
	res := SweepResult{Weights: weights, Rates: make([]float64, len(weights))}
	quiet := p
	quiet.Logger = logger.With(logging.Component("sweep"))
	quiet.Logger.SetLevel(max(quiet.Logger.GetLevel(), logging.WarnLevel))
	quiet.Verbose = false

	bar := progress.New(os.Stderr, "Sweep change_node_type_weight", len(weights), p.Verbose)
	defer bar.Finish()

	for i, w := range weights {
		quiet.ChangeNodeType = w
		walks, err := CompleteWalks(ctx, g, quiet)
		if err != nil {
			return SweepResult{}, err
		}
		if res.Rates[i], err = NodeTypeChangeRate(g, walks); err != nil {
			return SweepResult{}, err
		}
		bar.Add(1)
	}

	corr, err := Pearson(weights, res.Rates)
	if err != nil {
		return SweepResult{}, err
	}
	res.Correlation = corr
	logger.Info("change_node_type_weight sweep",
		logging.Graph(g.Name()),
		logging.Int("points", len(weights)),
		logging.Float64("pearson_r", corr.R),
		logging.Float64("p_value", corr.PValue),
	)
	return res, nil
}

// Linspace returns n evenly spaced values from start to stop inclusive.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	out[n-1] = stop
	return out
}

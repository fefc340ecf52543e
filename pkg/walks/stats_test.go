package walks

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/dd0wney/cluso-graphwalk/pkg/graph"
)

func TestPearson(t *testing.T) {
	t.Run("perfect", func(t *testing.T) {
		c, err := Pearson([]float64{1, 2, 3, 4}, []float64{2, 4, 6, 8})
		if err != nil {
			t.Fatalf("Pearson failed: %v", err)
		}
		if math.Abs(c.R-1) > 1e-12 || c.PValue != 0 {
			t.Errorf("Expected r=1 p=0, got r=%f p=%f", c.R, c.PValue)
		}
	})

	t.Run("known value", func(t *testing.T) {
		// r = 0.8 on 5 points gives t = 2.3094 and p = 0.1041.
		x := []float64{1, 2, 3, 4, 5}
		y := []float64{1, 3, 2, 5, 4}
		c, err := Pearson(x, y)
		if err != nil {
			t.Fatalf("Pearson failed: %v", err)
		}
		if math.Abs(c.R-0.8) > 1e-9 {
			t.Errorf("Expected r=0.8, got %f", c.R)
		}
		if math.Abs(c.PValue-0.1041) > 1e-3 {
			t.Errorf("Expected p≈0.1041, got %f", c.PValue)
		}
		if c.N != 5 {
			t.Errorf("Expected N=5, got %d", c.N)
		}
	})

	tests := []struct {
		name string
		x, y []float64
	}{
		{"too few", []float64{1, 2}, []float64{1, 2}},
		{"mismatched", []float64{1, 2, 3}, []float64{1, 2}},
		{"constant", []float64{1, 2, 3}, []float64{5, 5, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Pearson(tt.x, tt.y); !errors.Is(err, ErrDegenerateSweep) {
				t.Errorf("Expected ErrDegenerateSweep, got %v", err)
			}
		})
	}
}

func TestNodeTypeChangeRate(t *testing.T) {
	g := buildTypedRing(t, 3)
	// Nodes 0-2 are proteins, 3-5 genes.
	walks := [][]graph.NodeID{
		{0, 3, 0, 1}, // 2 of 3 steps change type
		{4, 5},       // none
		{2},          // no steps, ignored
	}
	rate, err := NodeTypeChangeRate(g, walks)
	if err != nil {
		t.Fatalf("NodeTypeChangeRate failed: %v", err)
	}
	if want := (2.0/3.0 + 0) / 2; math.Abs(rate-want) > 1e-12 {
		t.Errorf("Expected %f, got %f", want, rate)
	}

	if _, err := NodeTypeChangeRate(buildChain(t), walks); !errors.Is(err, graph.ErrNoNodeTypes) {
		t.Errorf("Expected ErrNoNodeTypes, got %v", err)
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(0.1, 2.0, 50)
	if len(got) != 50 || got[0] != 0.1 || got[49] != 2.0 {
		t.Fatalf("Unexpected endpoints: len=%d first=%f last=%f", len(got), got[0], got[49])
	}
	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Fatalf("Linspace not increasing at %d", i)
		}
	}
	if Linspace(1, 2, 0) != nil {
		t.Error("Expected nil for n=0")
	}
}

func TestSweepChangeNodeTypeWeight(t *testing.T) {
	g := buildTypedRing(t, 20)
	p := mustParameters(t, 20)
	p.Iterations = 5

	res, err := SweepChangeNodeTypeWeight(context.Background(), g, p, Linspace(0.1, 2.0, 50))
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if len(res.Rates) != 50 {
		t.Fatalf("Expected 50 rates, got %d", len(res.Rates))
	}
	if res.R <= 0.8 {
		t.Errorf("Expected strong positive correlation, got r=%f", res.R)
	}
	if res.PValue >= 0.01 {
		t.Errorf("Expected p < 0.01, got %g", res.PValue)
	}

	if _, err := SweepChangeNodeTypeWeight(context.Background(), g, p, []float64{1, 0, 2}); !errors.Is(err, ErrInvalidWeight) {
		t.Errorf("Expected ErrInvalidWeight, got %v", err)
	}
	if _, err := SweepChangeNodeTypeWeight(context.Background(), buildChain(t), p, []float64{1, 2, 3}); !errors.Is(err, graph.ErrNoNodeTypes) {
		t.Errorf("Expected ErrNoNodeTypes, got %v", err)
	}
}

package contam

import (
	"fmt"
	"math"
)

// Default grid: 0.001 to 0.299 in steps of 0.001. Levels above ~30% are
// outside the intended use of the estimator.
const (
	DefaultGridStart = 0.001
	DefaultGridStep  = 0.001
	DefaultGridStop  = 0.3
)

// levelPrecision is the lattice grid levels are snapped to.
const levelPrecision = 1e6

// maxLevels bounds a valid grid: (0, 1] holds at most this many lattice
// points.
const maxLevels = int(levelPrecision)

// Grid is an evenly spaced range of candidate contamination levels,
// Start inclusive and Stop exclusive.
type Grid struct {
	Start float64 `json:"start" mapstructure:"start"`
	Step  float64 `json:"step" mapstructure:"step"`
	Stop  float64 `json:"stop" mapstructure:"stop"`
}

// DefaultGrid returns the standard search grid.
func DefaultGrid() Grid {
	return Grid{Start: DefaultGridStart, Step: DefaultGridStep, Stop: DefaultGridStop}
}

// Validate checks that the grid describes a non-empty finite range of
// contamination levels inside (0, 1). A malformed range is a
// *ValidationError and a range leaving (0, 1) is a *DomainError. Steps finer
// than the level lattice are rejected, which also bounds the level count.
func (g Grid) Validate() error {
	for _, f := range []float64{g.Start, g.Step, g.Stop} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return &ValidationError{Field: "grid", Message: fmt.Sprintf("bounds must be finite: %+v", g)}
		}
	}
	if g.Step <= 0 {
		return &ValidationError{Field: "grid", Message: fmt.Sprintf("step must be positive, got %v", g.Step)}
	}
	if g.Step < 1/levelPrecision {
		return &ValidationError{Field: "grid", Message: fmt.Sprintf("step %v is below the level resolution %v", g.Step, 1/levelPrecision)}
	}
	if g.Start >= g.Stop {
		return &ValidationError{Field: "grid", Message: fmt.Sprintf("start %v must be below stop %v", g.Start, g.Stop)}
	}
	if g.Start <= 0 {
		return &DomainError{Param: "grid start", Value: g.Start, Range: "(0, 1)"}
	}
	if g.Stop > 1 {
		return &DomainError{Param: "grid stop", Value: g.Stop, Range: "(0, 1]"}
	}
	return nil
}

// Levels enumerates the grid, or returns nil when Validate fails. Each
// level is computed from its index rather than by repeated addition.
func (g Grid) Levels() []float64 {
	if g.Validate() != nil {
		return nil
	}
	n := int(math.Ceil((g.Stop-g.Start)/g.Step - 1e-9))
	if n > maxLevels {
		n = maxLevels
	}
	levels := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		level := math.Round((g.Start+float64(i)*g.Step)*levelPrecision) / levelPrecision
		if level >= g.Stop {
			break
		}
		levels = append(levels, level)
	}
	return levels
}

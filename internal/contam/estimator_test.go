package contam

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoVariants(t *testing.T) []*VariantPosition {
	t.Helper()
	return []*VariantPosition{
		mustVariant(t, 100, 50, HETEROZYGOUS),
		mustVariant(t, 100, 100, HOMOZYGOUS),
	}
}

// simulatedVariants draws sites from a sample contaminated at level c.
func simulatedVariants(t *testing.T, n int, c float64, seed int64) []*VariantPosition {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	variants := make([]*VariantPosition, 0, n)
	for i := 0; i < n; i++ {
		depth := 80 + rng.Intn(120)
		zyg, p := HETEROZYGOUS, (1-c)/2
		if rng.Intn(3) == 0 {
			zyg, p = HOMOZYGOUS, 1-c
		}
		alt := 0
		for r := 0; r < depth; r++ {
			if rng.Float64() < p {
				alt++
			}
		}
		v, err := NewVariantPosition("1", int64(i+1), depth, alt, SNV, zyg)
		require.NoError(t, err)
		variants = append(variants, v)
	}
	return variants
}

func TestLogLikelihood(t *testing.T) {
	tests := []struct {
		level float64
		want  float64
	}{
		{0.0, -2.5308764039},
		{0.1, -13.569444762},
		{0.3, -42.913904771},
	}

	e := NewEstimator()
	for _, tt := range tests {
		got, err := e.LogLikelihood(twoVariants(t), tt.level)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-6, "level %v", tt.level)
	}
}

func TestLogLikelihood_DomainError(t *testing.T) {
	e := NewEstimator()
	for _, c := range []float64{-0.001, 1.0, 1.5} {
		_, err := e.LogLikelihood(twoVariants(t), c)
		var de *DomainError
		require.Error(t, err)
		assert.True(t, errors.As(err, &de), "level %v", c)
	}
}

func TestLogLikelihood_DoesNotLabel(t *testing.T) {
	variants := twoVariants(t)
	_, err := NewEstimator().LogLikelihood(variants, 0.1)
	require.NoError(t, err)
	for _, v := range variants {
		assert.Empty(t, v.ContaminationLabel)
	}
}

func TestEstimate_RecoversSimulatedLevel(t *testing.T) {
	variants := simulatedVariants(t, 2000, 0.05, 42)

	est, err := NewEstimator().Estimate(variants, DefaultGrid())
	require.NoError(t, err)

	assert.Len(t, est.Results, 299)
	assert.Equal(t, 2000, est.VariantCount)
	assert.False(t, est.Empty)
	assert.InDelta(t, 0.05, est.BestLevel, 0.01)

	for _, r := range est.Results {
		assert.LessOrEqual(t, r.LogLikelihood, est.MaxLogLikelihood)
	}
	// first maximal level wins
	for _, r := range est.Results {
		if r.LogLikelihood == est.MaxLogLikelihood {
			assert.Equal(t, est.BestLevel, r.ContaminationLevel)
			break
		}
	}
}

func TestEstimate_DeterministicAcrossWorkers(t *testing.T) {
	variants := simulatedVariants(t, 5000, 0.08, 7)

	var first *Estimate
	for _, workers := range []int{1, 2, 3, 8, 0} {
		e := NewEstimator()
		e.SetWorkers(workers)
		est, err := e.Estimate(variants, DefaultGrid())
		require.NoError(t, err)

		if first == nil {
			first = est
			continue
		}
		assert.Equal(t, first.BestLevel, est.BestLevel, "workers=%d", workers)
		assert.Equal(t, first.MaxLogLikelihood, est.MaxLogLikelihood, "workers=%d", workers)
		assert.Equal(t, first.Results, est.Results, "workers=%d", workers)
	}
}

func TestEstimate_LabelsAtBestLevel(t *testing.T) {
	variants := []*VariantPosition{
		mustVariant(t, 100, 45, HETEROZYGOUS),
		mustVariant(t, 100, 90, HOMOZYGOUS),
		mustVariant(t, 100, 8, HETEROZYGOUS),
	}

	est, err := NewEstimator().Estimate(variants, DefaultGrid())
	require.NoError(t, err)

	for _, v := range variants {
		want, _, err := ScoreVariant(v, est.BestLevel)
		require.NoError(t, err)
		assert.Equal(t, want, v.ContaminationLabel)
	}
	assert.Equal(t, LabelHomozygous, variants[1].ContaminationLabel)
}

func TestEstimate_Empty(t *testing.T) {
	est, err := NewEstimator().Estimate(nil, DefaultGrid())
	require.NoError(t, err)

	assert.True(t, est.Empty)
	assert.Equal(t, 0, est.VariantCount)
	assert.Equal(t, DefaultGridStart, est.BestLevel)
	assert.Equal(t, 0.0, est.MaxLogLikelihood)
	require.Len(t, est.Results, 299)
	for _, r := range est.Results {
		assert.Equal(t, 0.0, r.LogLikelihood)
	}
}

func TestEstimate_GridOutsideDomain(t *testing.T) {
	tests := []struct {
		name string
		grid Grid
	}{
		{"starts at zero", Grid{Start: 0, Step: 0.001, Stop: 0.3}},
		{"reaches one", Grid{Start: 0.5, Step: 0.5, Stop: 1.5}},
		{"negative start", Grid{Start: -0.1, Step: 0.05, Stop: 0.2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			variants := twoVariants(t)
			est, err := NewEstimator().Estimate(variants, tt.grid)
			assert.Nil(t, est)
			var de *DomainError
			require.True(t, errors.As(err, &de), "got %v", err)
			for _, v := range variants {
				assert.Empty(t, v.ContaminationLabel)
			}
		})
	}
}

func TestEstimate_InvalidGrid(t *testing.T) {
	grids := []Grid{
		{Start: 0.1, Step: 0, Stop: 0.2},
		{Start: 0.2, Step: 0.01, Stop: 0.1},
		{Start: math.NaN(), Step: 0.01, Stop: 0.1},
	}

	for _, g := range grids {
		_, err := NewEstimator().Estimate(twoVariants(t), g)
		var ve *ValidationError
		require.True(t, errors.As(err, &ve), "grid %+v: %v", g, err)
		assert.Equal(t, "grid", ve.Field)
	}
}

func TestEstimate_UnboundedGrid(t *testing.T) {
	tests := []struct {
		name   string
		grid   Grid
		domain bool
	}{
		{"huge stop, tiny step", Grid{Start: 0.001, Step: 1e-300, Stop: 1e300}, false},
		{"stop above one", Grid{Start: 0.001, Step: 0.001, Stop: 2}, true},
		{"step finer than resolution", Grid{Start: 0.001, Step: 1e-9, Stop: 0.3}, false},
		{"huge stop, fine step", Grid{Start: 0.001, Step: 1e-6, Stop: 1e300}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est, err := NewEstimator().Estimate(nil, tt.grid)
			assert.Nil(t, est)
			require.Error(t, err)
			if tt.domain {
				var de *DomainError
				assert.True(t, errors.As(err, &de), "got %v", err)
			} else {
				var ve *ValidationError
				assert.True(t, errors.As(err, &ve), "got %v", err)
			}
			assert.Nil(t, tt.grid.Levels())
		})
	}
}

func TestGrid_FinestStep(t *testing.T) {
	g := Grid{Start: 0.1, Step: 1e-6, Stop: 0.1001}
	require.NoError(t, g.Validate())
	levels := g.Levels()
	require.Len(t, levels, 100)
	for i := 1; i < len(levels); i++ {
		assert.Greater(t, levels[i], levels[i-1])
	}

	require.NoError(t, Grid{Start: 0.9, Step: 0.05, Stop: 1}.Validate())
}

func TestEstimate_ScoringErrorAborts(t *testing.T) {
	// Heterozygous scenarios stop being probabilities above 0.5.
	grid := Grid{Start: 0.45, Step: 0.05, Stop: 0.7}
	est, err := NewEstimator().Estimate(twoVariants(t), grid)
	assert.Nil(t, est)
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestGrid_Levels(t *testing.T) {
	levels := DefaultGrid().Levels()
	require.Len(t, levels, 299)
	assert.Equal(t, 0.001, levels[0])
	assert.Equal(t, 0.046, levels[45])
	assert.Equal(t, 0.299, levels[len(levels)-1])

	levels = Grid{Start: 0.01, Step: 0.0025, Stop: 0.02}.Levels()
	assert.Equal(t, []float64{0.01, 0.0125, 0.015, 0.0175}, levels)

	assert.Nil(t, Grid{Start: 1, Step: 0.1, Stop: 0.5}.Levels())
}

func TestSplitChunks(t *testing.T) {
	assert.Nil(t, splitChunks(0, 4))

	chunks := splitChunks(1000, 2)
	require.Len(t, chunks, 2)
	assert.Equal(t, chunk{Seq: 0, Start: 0, End: 500}, chunks[0])
	assert.Equal(t, chunk{Seq: 1, Start: 500, End: 1000}, chunks[1])

	// small inputs stay in one chunk
	chunks = splitChunks(100, 8)
	require.Len(t, chunks, 1)
	assert.Equal(t, 100, chunks[0].End)

	covered := 0
	for _, c := range splitChunks(10007, 7) {
		assert.Equal(t, covered, c.Start)
		covered = c.End
	}
	assert.Equal(t, 10007, covered)
}

package contam

import (
	"fmt"

	"go.uber.org/zap"
)

// ContamProbResult is the summed log-likelihood of all variants at one
// candidate contamination level.
type ContamProbResult struct {
	ContaminationLevel float64 `json:"contamination_level"`
	LogLikelihood      float64 `json:"log_likelihood"`
}

// Estimate is the outcome of a grid search.
type Estimate struct {
	BestLevel        float64            `json:"best_level"`
	MaxLogLikelihood float64            `json:"max_log_likelihood"`
	Results          []ContamProbResult `json:"results"`
	Variants         []*VariantPosition `json:"-"`
	VariantCount     int                `json:"variant_count"`
	// Empty is set when no variants were supplied; every level then
	// scores 0 and BestLevel is the first grid point.
	Empty bool `json:"empty"`
}

// Estimator runs the contamination grid search.
type Estimator struct {
	workers int
	logger  *zap.Logger
}

// NewEstimator creates an estimator using all CPUs and a no-op logger.
func NewEstimator() *Estimator {
	return &Estimator{logger: zap.NewNop()}
}

// SetWorkers sets the number of goroutines used to score variants.
// Zero or negative means runtime.NumCPU().
func (e *Estimator) SetWorkers(n int) {
	e.workers = n
}

// SetLogger sets the logger for progress and warning messages.
func (e *Estimator) SetLogger(l *zap.Logger) {
	e.logger = l
}

// LogLikelihood returns the summed log-likelihood of variants at the given
// contamination level, which must lie in [0, 1).
func (e *Estimator) LogLikelihood(variants []*VariantPosition, contaminationLevel float64) (float64, error) {
	if !(contaminationLevel >= 0 && contaminationLevel < 1) {
		return 0, &DomainError{Param: "contamination level", Value: contaminationLevel, Range: "[0, 1)"}
	}
	scores, err := parallelScore(variants, contaminationLevel, e.workers)
	if err != nil {
		return 0, err
	}
	return orderedSum(scores), nil
}

// Estimate scans every level of grid and returns the level with the
// highest summed log-likelihood. The first level is the initial best and
// later levels replace it only when strictly better. Once the best level is
// known each variant is labelled with the scenario that explains it there.
func (e *Estimator) Estimate(variants []*VariantPosition, grid Grid) (*Estimate, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	levels := grid.Levels()
	for _, level := range levels {
		if !(level > 0 && level < 1) {
			return nil, &DomainError{Param: "grid contamination level", Value: level, Range: "(0, 1)"}
		}
	}

	est := &Estimate{
		Results:      make([]ContamProbResult, 0, len(levels)),
		Variants:     variants,
		VariantCount: len(variants),
		Empty:        len(variants) == 0,
	}
	if est.Empty {
		e.logger.Warn("no variants supplied, every level scores 0; reporting the first grid level")
	}

	for i, level := range levels {
		ll, err := e.LogLikelihood(variants, level)
		if err != nil {
			return nil, fmt.Errorf("score contamination level %v: %w", level, err)
		}
		est.Results = append(est.Results, ContamProbResult{ContaminationLevel: level, LogLikelihood: ll})
		e.logger.Debug("scored contamination level",
			zap.Float64("level", level),
			zap.Float64("log_likelihood", ll))

		if i == 0 || ll > est.MaxLogLikelihood {
			est.BestLevel = level
			est.MaxLogLikelihood = ll
		}
	}

	if err := LabelVariants(variants, est.BestLevel); err != nil {
		return nil, fmt.Errorf("label variants: %w", err)
	}

	e.logger.Info("maximum likelihood contamination level",
		zap.Float64("level", est.BestLevel),
		zap.Float64("log_likelihood", est.MaxLogLikelihood),
		zap.Int("variants", len(variants)),
		zap.Int("levels", len(levels)))

	return est, nil
}

// LabelVariants writes the best-scoring scenario at contaminationLevel to
// each variant's ContaminationLabel. It runs sequentially and must not be
// called while the same variants are being scored.
func LabelVariants(variants []*VariantPosition, contaminationLevel float64) error {
	for _, v := range variants {
		label, _, err := ScoreVariant(v, contaminationLevel)
		if err != nil {
			return fmt.Errorf("%s: %w", v, err)
		}
		v.ContaminationLabel = label
	}
	return nil
}

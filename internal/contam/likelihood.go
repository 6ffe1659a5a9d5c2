package contam

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ScoreSite returns the natural log of the binomial probability of
// observing v.AltDepth alt reads out of v.TotalReadDepth when each read
// is alt with probability expectedFraction.
func ScoreSite(v *VariantPosition, expectedFraction float64) (float64, error) {
	if math.IsNaN(expectedFraction) || expectedFraction < 0 || expectedFraction > 1 {
		return 0, &DomainError{Param: "expected fraction", Value: expectedFraction, Range: "[0, 1]"}
	}

	n, k := v.TotalReadDepth, v.AltDepth
	switch expectedFraction {
	case 0:
		if k == 0 {
			return 0, nil
		}
		return math.Inf(-1), nil
	case 1:
		if k == n {
			return 0, nil
		}
		return math.Inf(-1), nil
	}

	b := distuv.Binomial{N: float64(n), P: expectedFraction}
	return b.LogProb(float64(k)), nil
}

// ScoreHomozygous scores a homozygous-alt site, where every read that is
// not alt is attributed to the contaminant.
func ScoreHomozygous(v *VariantPosition, contaminationLevel float64) (float64, error) {
	return ScoreSite(v, 1-contaminationLevel)
}

// ScoreHeterozygous scores a heterozygous site against each contamination
// scenario and returns the best one. Ties keep the earlier scenario.
func ScoreHeterozygous(v *VariantPosition, contaminationLevel float64) (string, float64, error) {
	var best *Hypothesis
	var bestLL float64

	for _, s := range hetScenarios {
		h, err := NewHypothesis(s.label, s.fraction(contaminationLevel))
		if err != nil {
			return "", 0, err
		}
		ll, err := ScoreSite(v, h.VariantFraction)
		if err != nil {
			return "", 0, err
		}
		h.SetLogLik(ll)

		if best == nil || ll > bestLL {
			best, bestLL = h, ll
		}
	}

	return best.Label, bestLL, nil
}

// ScoreVariant dispatches on zygosity and returns the winning label with
// its log-likelihood.
func ScoreVariant(v *VariantPosition, contaminationLevel float64) (string, float64, error) {
	switch v.Zygosity {
	case HOMOZYGOUS:
		ll, err := ScoreHomozygous(v, contaminationLevel)
		if err != nil {
			return "", 0, err
		}
		return LabelHomozygous, ll, nil
	case HETEROZYGOUS:
		return ScoreHeterozygous(v, contaminationLevel)
	default:
		return "", 0, fmt.Errorf("%s:%d: unknown zygosity %s", v.Contig, v.Position, v.Zygosity)
	}
}

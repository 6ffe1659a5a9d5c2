package contam

import (
	"fmt"
	"math"
)

// Labels reported for the scenario that best explains a site.
const (
	LabelHomozygous     = "homozygous"
	LabelNotRefNorAlt   = "contam is not ref nor alt"
	LabelCalledAsAlt    = "contam is called as alt"
	LabelHetAltAtHomAlt = "contam looks like het-alt at hom-alt position"
	LabelFromRefAllele  = "contam comes from a ref-allele"
	LabelHetAltAtHomRef = "contam looks like het-alt at hom-ref position"
)

// hetScenario maps a contamination level to the alt fraction expected
// at a heterozygous call under one contamination scenario.
type hetScenario struct {
	label    string
	fraction func(c float64) float64
}

// hetScenarios is evaluated in order; on equal scores the earlier entry wins.
var hetScenarios = [...]hetScenario{
	// contaminant carries a third allele: alt diluted
	{LabelNotRefNorAlt, func(c float64) float64 { return (1 - c) / 2 }},
	// hom-alt site called het because of contaminating ref reads
	{LabelCalledAsAlt, func(c float64) float64 { return 1 - c }},
	{LabelHetAltAtHomAlt, func(c float64) float64 { return 0.5 + c }},
	{LabelFromRefAllele, func(c float64) float64 { return 0.5 - c }},
	// contaminant alt reads called as a low-VAF het at a hom-ref site
	{LabelHetAltAtHomRef, func(c float64) float64 { return c }},
}

// HeterozygousLabels returns the heterozygous scenario labels in
// evaluation order.
func HeterozygousLabels() []string {
	labels := make([]string, len(hetScenarios))
	for i, s := range hetScenarios {
		labels[i] = s.label
	}
	return labels
}

// Hypothesis is a named contamination scenario with the alt fraction it
// predicts and, once scored, its log-likelihood.
type Hypothesis struct {
	Label           string   `json:"label"`
	VariantFraction float64  `json:"variant_fraction"`
	Loglik          *float64 `json:"loglik,omitempty"`
}

// NewHypothesis returns a hypothesis after checking that fraction is a
// probability.
func NewHypothesis(label string, fraction float64) (*Hypothesis, error) {
	if math.IsNaN(fraction) || fraction < 0 || fraction > 1 {
		return nil, &ValidationError{
			Field:   "variant_fraction",
			Message: fmt.Sprintf("%q expects fraction in [0, 1], got %v", label, fraction),
		}
	}
	return &Hypothesis{Label: label, VariantFraction: fraction}, nil
}

// SetLogLik records the computed log-likelihood.
func (h *Hypothesis) SetLogLik(v float64) {
	h.Loglik = &v
}

// LogLik returns the log-likelihood and whether it has been computed.
func (h *Hypothesis) LogLik() (float64, bool) {
	if h.Loglik == nil {
		return 0, false
	}
	return *h.Loglik, true
}

package output

import (
	"fmt"
	"io"
	"math"

	"github.com/goccy/go-json"

	"github.com/inodb/vibe-contam/internal/contam"
)

// Summary is the headline result of a run.
type Summary struct {
	VCFFile string `json:"vcf_file"`
	// ContaminationLevel is BestLevel expressed as a percentage.
	ContaminationLevel float64 `json:"contamination_level"`
	BestLevel          float64 `json:"best_level"`
	MaxLogLikelihood   float64 `json:"max_log_likelihood"`
	VariantCount       int     `json:"variant_count"`
}

// NewSummary builds the summary of est for the given input file.
func NewSummary(inputPath string, est *contam.Estimate) Summary {
	return Summary{
		VCFFile:            inputPath,
		ContaminationLevel: Percent(est.BestLevel),
		BestLevel:          est.BestLevel,
		MaxLogLikelihood:   est.MaxLogLikelihood,
		VariantCount:       est.VariantCount,
	}
}

// Percent converts a fraction to a percentage rounded to 1e-6, so 0.046
// reports as 4.6 rather than 4.6000000000000005.
func Percent(fraction float64) float64 {
	return math.Round(fraction*100*1e6) / 1e6
}

// WriteResultsJSON writes the grid results as an indented JSON array.
func WriteResultsJSON(w io.Writer, results []contam.ContamProbResult) error {
	if results == nil {
		results = []contam.ContamProbResult{}
	}
	return writeJSON(w, results)
}

// ReadResultsJSON reads grid results written by WriteResultsJSON.
func ReadResultsJSON(r io.Reader) ([]contam.ContamProbResult, error) {
	var results []contam.ContamProbResult
	if err := json.NewDecoder(r).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return results, nil
}

// WriteVariantsJSON writes the (labelled) variants as an indented JSON array.
func WriteVariantsJSON(w io.Writer, variants []*contam.VariantPosition) error {
	if variants == nil {
		variants = []*contam.VariantPosition{}
	}
	return writeJSON(w, variants)
}

// ReadVariantsJSON reads variants written by WriteVariantsJSON.
func ReadVariantsJSON(r io.Reader) ([]*contam.VariantPosition, error) {
	var variants []*contam.VariantPosition
	if err := json.NewDecoder(r).Decode(&variants); err != nil {
		return nil, fmt.Errorf("decode variants: %w", err)
	}
	return variants, nil
}

// WriteSummaryJSON writes the run summary as an indented JSON object.
func WriteSummaryJSON(w io.Writer, s Summary) error {
	return writeJSON(w, s)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

package vcf

import (
	"fmt"
	"strconv"
	"strings"
)

// Missing marks an absent genotype allele or depth value.
const Missing = -1

// Sample holds the FORMAT values used for contamination estimation.
type Sample struct {
	Genotype []int // allele indices; Missing for "."
	Phased   bool
	DP       int   // Missing when absent
	AD       []int // per-allele depths, ref first; nil when absent
}

// ParseSample decodes GT, DP and AD from a sample column. Trailing fields
// may be dropped from the column as VCF allows; other keys are ignored.
func ParseSample(format, column string) (*Sample, error) {
	s := &Sample{DP: Missing}
	if format == "" {
		return s, nil
	}

	keys := strings.Split(format, ":")
	values := strings.Split(column, ":")
	for i, key := range keys {
		if i >= len(values) {
			break
		}
		value := values[i]
		switch key {
		case "GT":
			gt, phased, err := ParseGenotype(value)
			if err != nil {
				return nil, err
			}
			s.Genotype, s.Phased = gt, phased
		case "DP":
			dp, err := parseDepth(value)
			if err != nil {
				return nil, fmt.Errorf("DP: %w", err)
			}
			s.DP = dp
		case "AD":
			if value == "." {
				continue
			}
			parts := strings.Split(value, ",")
			s.AD = make([]int, len(parts))
			for j, part := range parts {
				d, err := parseDepth(part)
				if err != nil {
					return nil, fmt.Errorf("AD: %w", err)
				}
				s.AD[j] = d
			}
		}
	}
	return s, nil
}

// ParseGenotype parses a GT value such as "0/1", "1|1" or "./.".
func ParseGenotype(gt string) ([]int, bool, error) {
	phased := strings.Contains(gt, "|")
	parts := strings.FieldsFunc(gt, func(r rune) bool { return r == '/' || r == '|' })
	if len(parts) == 0 {
		return nil, false, fmt.Errorf("empty genotype %q", gt)
	}

	alleles := make([]int, len(parts))
	for i, part := range parts {
		if part == "." {
			alleles[i] = Missing
			continue
		}
		a, err := strconv.Atoi(part)
		if err != nil || a < 0 {
			return nil, false, fmt.Errorf("invalid genotype %q", gt)
		}
		alleles[i] = a
	}
	return alleles, phased, nil
}

func parseDepth(s string) (int, error) {
	if s == "." || s == "" {
		return Missing, nil
	}
	d, err := strconv.Atoi(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid depth %q", s)
	}
	return d, nil
}

// IsDiploidCalled reports whether the genotype has exactly two called alleles.
func (s *Sample) IsDiploidCalled() bool {
	return len(s.Genotype) == 2 && s.Genotype[0] != Missing && s.Genotype[1] != Missing
}

// Depth returns DP, falling back to the sum of AD when DP is absent.
func (s *Sample) Depth() int {
	if s.DP != Missing {
		return s.DP
	}
	if len(s.AD) == 0 {
		return Missing
	}
	total := 0
	for _, d := range s.AD {
		if d == Missing {
			return Missing
		}
		total += d
	}
	return total
}

// AlleleDepth returns AD for allele index i, or Missing.
func (s *Sample) AlleleDepth(i int) int {
	if i < 0 || i >= len(s.AD) {
		return Missing
	}
	return s.AD[i]
}

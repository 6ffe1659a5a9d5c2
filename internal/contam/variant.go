// Package contam estimates sample contamination from diploid allele balance.
package contam

import (
	"fmt"
	"strings"
)

// VariantType distinguishes single nucleotide variants from indels.
type VariantType int

const (
	SNV VariantType = iota
	INDEL
)

var variantTypeNames = [...]string{SNV: "SNV", INDEL: "INDEL"}

func (t VariantType) String() string {
	if t < 0 || int(t) >= len(variantTypeNames) {
		return fmt.Sprintf("VariantType(%d)", int(t))
	}
	return variantTypeNames[t]
}

// MarshalText encodes the type as its upper-case name.
func (t VariantType) MarshalText() ([]byte, error) {
	if t < 0 || int(t) >= len(variantTypeNames) {
		return nil, fmt.Errorf("unknown variant type %d", int(t))
	}
	return []byte(variantTypeNames[t]), nil
}

// UnmarshalText parses "SNV" or "INDEL" (case-insensitive).
func (t *VariantType) UnmarshalText(b []byte) error {
	for i, name := range variantTypeNames {
		if strings.EqualFold(string(b), name) {
			*t = VariantType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown variant type %q", string(b))
}

// Zygosity records whether the two genotype calls agree.
type Zygosity int

const (
	HOMOZYGOUS Zygosity = iota
	HETEROZYGOUS
)

var zygosityNames = [...]string{HOMOZYGOUS: "HOMOZYGOUS", HETEROZYGOUS: "HETEROZYGOUS"}

func (z Zygosity) String() string {
	if z < 0 || int(z) >= len(zygosityNames) {
		return fmt.Sprintf("Zygosity(%d)", int(z))
	}
	return zygosityNames[z]
}

// MarshalText encodes the zygosity as its upper-case name.
func (z Zygosity) MarshalText() ([]byte, error) {
	if z < 0 || int(z) >= len(zygosityNames) {
		return nil, fmt.Errorf("unknown zygosity %d", int(z))
	}
	return []byte(zygosityNames[z]), nil
}

// UnmarshalText parses "HOMOZYGOUS" or "HETEROZYGOUS" (case-insensitive).
func (z *Zygosity) UnmarshalText(b []byte) error {
	for i, name := range zygosityNames {
		if strings.EqualFold(string(b), name) {
			*z = Zygosity(i)
			return nil
		}
	}
	return fmt.Errorf("unknown zygosity %q", string(b))
}

// VariantPosition holds the read-depth evidence observed at one site.
//
// All fields except ContaminationLabel are fixed at construction.
// ContaminationLabel is written by LabelVariants once the best
// contamination level is known.
type VariantPosition struct {
	Contig             string      `json:"contig"`
	Position           int64       `json:"position"`
	TotalReadDepth     int         `json:"total_read_depth"`
	AltDepth           int         `json:"alt_depth"`
	VariantType        VariantType `json:"variant_type"`
	Zygosity           Zygosity    `json:"zygosity"`
	ContaminationLabel string      `json:"contamination_label,omitempty"`
}

// NewVariantPosition validates the depths and enums and returns a new record.
func NewVariantPosition(contig string, position int64, totalReadDepth, altDepth int, variantType VariantType, zygosity Zygosity) (*VariantPosition, error) {
	if variantType < 0 || int(variantType) >= len(variantTypeNames) {
		return nil, &ValidationError{Field: "variant_type", Message: fmt.Sprintf("unknown value %d", int(variantType))}
	}
	if zygosity < 0 || int(zygosity) >= len(zygosityNames) {
		return nil, &ValidationError{Field: "zygosity", Message: fmt.Sprintf("unknown value %d", int(zygosity))}
	}
	if position < 0 {
		return nil, &ValidationError{Field: "position", Message: fmt.Sprintf("must be non-negative, got %d", position)}
	}
	if altDepth < 0 {
		return nil, &ValidationError{Field: "alt_depth", Message: fmt.Sprintf("must be non-negative, got %d", altDepth)}
	}
	if totalReadDepth < 1 || totalReadDepth < altDepth {
		return nil, &ValidationError{
			Field:   "total_read_depth",
			Message: fmt.Sprintf("total read depth should be >= alt depth and positive (total=%d, alt=%d)", totalReadDepth, altDepth),
		}
	}
	return &VariantPosition{
		Contig:         contig,
		Position:       position,
		TotalReadDepth: totalReadDepth,
		AltDepth:       altDepth,
		VariantType:    variantType,
		Zygosity:       zygosity,
	}, nil
}

// AltFraction returns the observed alt allele fraction.
func (v *VariantPosition) AltFraction() float64 {
	return float64(v.AltDepth) / float64(v.TotalReadDepth)
}

// String formats the site as contig:position.
func (v *VariantPosition) String() string {
	return fmt.Sprintf("%s:%d", v.Contig, v.Position)
}

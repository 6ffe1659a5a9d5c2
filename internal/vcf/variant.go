package vcf

import (
	"fmt"
	"strings"

	"github.com/inodb/vibe-contam/internal/contam"
)

// FilterPass is the FILTER value of records that passed all filters.
const FilterPass = "PASS"

// Variant represents a single VCF data line.
type Variant struct {
	Chrom   string                 // Chromosome name (e.g., "X", "chrX")
	Pos     int64                  // 1-based genomic position
	ID      string                 // Variant identifier (e.g., rs ID)
	Ref     string                 // Reference allele
	Alt     string                 // Comma-separated alternate alleles
	Qual    float64                // Quality score
	Filter  string                 // Filter status (PASS or filter names)
	Info    map[string]interface{} // INFO field key-value pairs
	Format  string                 // FORMAT column, e.g. "GT:AD:DP"
	Samples []string               // one raw column per sample
}

// AltAlleles splits the ALT column. Allele index i in a genotype refers to
// AltAlleles()[i-1]. An empty allele is a MAF-style deletion.
func (v *Variant) AltAlleles() []string {
	if v.Alt == "." {
		return nil
	}
	return strings.Split(v.Alt, ",")
}

// IsPass reports whether the record passed all filters.
func (v *Variant) IsPass() bool {
	return v.Filter == FilterPass
}

// Sample decodes the FORMAT fields of sample i.
func (v *Variant) Sample(i int) (*Sample, error) {
	if i < 0 || i >= len(v.Samples) {
		return nil, fmt.Errorf("%s:%d has no sample column %d", v.Chrom, v.Pos, i)
	}
	return ParseSample(v.Format, v.Samples[i])
}

// AlleleType classifies ref/alt as an SNV when their lengths match and as
// an indel otherwise.
func AlleleType(ref, alt string) contam.VariantType {
	if len(ref) == len(alt) {
		return contam.SNV
	}
	return contam.INDEL
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func NormalizeChrom(chrom string) string {
	if len(chrom) > 3 && chrom[:3] == "chr" {
		return chrom[3:]
	}
	return chrom
}

package vcf

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-contam/internal/contam"
)

// RegionFilter restricts extraction to a set of loci.
type RegionFilter interface {
	Contains(chrom string, pos int64) bool
}

// SiteFilter selects which records become contamination sites.
type SiteFilter struct {
	MinDepth int          // minimum sample depth (DP)
	SNVOnly  bool         // drop indels
	Regions  RegionFilter // nil keeps every locus
}

// SiteStats counts why records were kept or skipped.
type SiteStats struct {
	Records       int `json:"records"`
	Kept          int `json:"kept"`
	NotPass       int `json:"not_pass"`
	OutsideRegion int `json:"outside_region"`
	NotDiploid    int `json:"not_diploid"`
	HomRef        int `json:"hom_ref"`
	LowDepth      int `json:"low_depth"`
	MissingAD     int `json:"missing_ad"`
	Indel         int `json:"indel"`
}

// ExtractSites reads every record from parser and returns the PASS,
// diploid, genotyped sites of the first sample that meet filter.
//
// The alt allele of a site is the higher allele index of its genotype and
// its alt depth is the AD entry for that allele. A site is heterozygous
// when its two genotype alleles differ.
func ExtractSites(parser VariantParser, filter SiteFilter, logger *zap.Logger) ([]*contam.VariantPosition, SiteStats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		sites []*contam.VariantPosition
		stats SiteStats
	)

	for {
		v, err := parser.Next()
		if err != nil {
			return nil, stats, fmt.Errorf("read variant: %w", err)
		}
		if v == nil {
			break
		}
		stats.Records++

		site, err := extractSite(v, filter, &stats)
		if err != nil {
			return nil, stats, fmt.Errorf("line %d: %w", parser.LineNumber(), err)
		}
		if site == nil {
			continue
		}

		sites = append(sites, site)
		stats.Kept++
	}

	logger.Info("collected variants",
		zap.Int("kept", stats.Kept),
		zap.Int("records", stats.Records),
		zap.Int("not_pass", stats.NotPass),
		zap.Int("low_depth", stats.LowDepth),
		zap.Int("indel", stats.Indel))

	return sites, stats, nil
}

// extractSite returns nil, nil for records the filter skips.
func extractSite(v *Variant, filter SiteFilter, stats *SiteStats) (*contam.VariantPosition, error) {
	if !v.IsPass() {
		stats.NotPass++
		return nil, nil
	}
	if filter.Regions != nil && !filter.Regions.Contains(v.Chrom, v.Pos) {
		stats.OutsideRegion++
		return nil, nil
	}

	sample, err := v.Sample(0)
	if err != nil {
		return nil, err
	}
	if !sample.IsDiploidCalled() {
		stats.NotDiploid++
		return nil, nil
	}

	a, b := sample.Genotype[0], sample.Genotype[1]
	altIndex := max(a, b)
	if altIndex == 0 {
		stats.HomRef++
		return nil, nil
	}

	depth := sample.Depth()
	if depth == Missing || depth < filter.MinDepth {
		stats.LowDepth++
		return nil, nil
	}

	alts := v.AltAlleles()
	if altIndex > len(alts) {
		return nil, fmt.Errorf("genotype allele %d but only %d ALT alleles", altIndex, len(alts))
	}
	altDepth := sample.AlleleDepth(altIndex)
	if altDepth == Missing {
		stats.MissingAD++
		return nil, nil
	}

	variantType := AlleleType(v.Ref, alts[altIndex-1])
	if filter.SNVOnly && variantType != contam.SNV {
		stats.Indel++
		return nil, nil
	}

	zygosity := contam.HOMOZYGOUS
	if a != b {
		zygosity = contam.HETEROZYGOUS
	}

	site, err := contam.NewVariantPosition(v.Chrom, v.Pos, depth, altDepth, variantType, zygosity)
	if err != nil {
		return nil, fmt.Errorf("%s:%d: %w", v.Chrom, v.Pos, err)
	}
	return site, nil
}

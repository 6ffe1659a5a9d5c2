// Package region restricts site extraction to loci listed in a BED file.
package region

import (
	"fmt"
	"os"

	"github.com/vertgenlab/gonomics/bed"
	"go.uber.org/zap"

	"github.com/inodb/vibe-contam/internal/vcf"
)

// Interval is a BED interval: 0-based, start inclusive, end exclusive.
type Interval struct {
	Chrom string
	Start int64
	End   int64
}

// String formats the interval as a samtools-style region.
func (iv Interval) String() string {
	return fmt.Sprintf("%s:%d-%d", iv.Chrom, iv.Start, iv.End)
}

// Set answers containment queries for 1-based positions against a list of
// intervals. Contig names match with or without a "chr" prefix.
type Set struct {
	byChrom map[string]*index
	count   int
}

// NewSet builds a Set from intervals. Empty intervals are ignored.
func NewSet(intervals []Interval) *Set {
	grouped := make(map[string][]Interval)
	count := 0
	for _, iv := range intervals {
		if iv.End <= iv.Start {
			continue
		}
		chrom := vcf.NormalizeChrom(iv.Chrom)
		grouped[chrom] = append(grouped[chrom], iv)
		count++
	}

	s := &Set{byChrom: make(map[string]*index, len(grouped)), count: count}
	for chrom, ivs := range grouped {
		s.byChrom[chrom] = buildIndex(ivs)
	}
	return s
}

// Load reads a BED file. Only the first three columns are used.
func Load(path string, logger *zap.Logger) (s *Set, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open bed file: %w", err)
	}

	// gonomics reports unreadable or malformed input by panicking.
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, fmt.Errorf("read bed file %s: %v", path, r)
		}
	}()

	records := bed.Read(path)
	intervals := make([]Interval, 0, len(records))
	for _, b := range records {
		intervals = append(intervals, Interval{
			Chrom: b.Chrom,
			Start: int64(b.ChromStart),
			End:   int64(b.ChromEnd),
		})
	}

	s = NewSet(intervals)
	logger.Info("collected loci", zap.Int("intervals", s.Len()), zap.String("bed", path))
	return s, nil
}

// Len returns the number of non-empty intervals in the set.
func (s *Set) Len() int {
	return s.count
}

// Contains reports whether the 1-based position pos on chrom falls inside
// any interval, i.e. start < pos <= end.
func (s *Set) Contains(chrom string, pos int64) bool {
	idx, ok := s.byChrom[vcf.NormalizeChrom(chrom)]
	if !ok {
		return false
	}
	return idx.covers(pos - 1)
}

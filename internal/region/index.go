package region

import "sort"

// index answers point queries over intervals of one contig using a
// start-sorted slice and a prefix-max of ends.
type index struct {
	intervals []Interval
	maxEnd    []int64 // maxEnd[i] = max(End) for intervals[:i+1]
}

func buildIndex(intervals []Interval) *index {
	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	maxEnd := make([]int64, len(sorted))
	for i, iv := range sorted {
		maxEnd[i] = iv.End
		if i > 0 && maxEnd[i-1] > maxEnd[i] {
			maxEnd[i] = maxEnd[i-1]
		}
	}

	return &index{intervals: sorted, maxEnd: maxEnd}
}

// covers reports whether the 0-based offset lies in some [Start, End).
func (x *index) covers(offset int64) bool {
	// Candidates are the intervals starting at or before offset.
	hi := sort.Search(len(x.intervals), func(i int) bool {
		return x.intervals[i].Start > offset
	})

	for i := hi - 1; i >= 0; i-- {
		// nothing in intervals[:i+1] reaches offset
		if x.maxEnd[i] <= offset {
			return false
		}
		if x.intervals[i].End > offset {
			return true
		}
	}
	return false
}

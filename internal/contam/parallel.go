package contam

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minChunk keeps tiny inputs from being split across many goroutines.
const minChunk = 256

// chunk is a contiguous slice of the variant list scored by one worker.
type chunk struct {
	Seq        int
	Start, End int
}

// splitChunks partitions n items into at most workers contiguous chunks.
func splitChunks(n, workers int) []chunk {
	if n == 0 {
		return nil
	}
	size := (n + workers - 1) / workers
	if size < minChunk {
		size = minChunk
	}
	var chunks []chunk
	for start := 0; start < n; start += size {
		chunks = append(chunks, chunk{Seq: len(chunks), Start: start, End: min(start+size, n)})
	}
	return chunks
}

// parallelScore scores every variant at level using a pool of workers.
// Each score lands at the variant's own index, so the returned slice does
// not depend on scheduling. If workers is 0, runtime.NumCPU() is used.
func parallelScore(variants []*VariantPosition, level float64, workers int) ([]float64, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	scores := make([]float64, len(variants))
	var g errgroup.Group
	g.SetLimit(workers)

	for _, c := range splitChunks(len(variants), workers) {
		g.Go(func() error {
			for i := c.Start; i < c.End; i++ {
				_, ll, err := ScoreVariant(variants[i], level)
				if err != nil {
					return err
				}
				scores[i] = ll
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

// orderedSum adds values left to right.
func orderedSum(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}

package partition

import (
	"FlowSentry/internal/model"
	"fmt"
)

// Partition splits totalLines into workerCount contiguous ranges. The first
// totalLines%workerCount workers get one extra line. Workers beyond the number
// of lines get empty ranges.
func Partition(totalLines, workerCount int) ([]model.Range, error) {
	if workerCount < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, got %d", workerCount)
	}
	if totalLines < 0 {
		return nil, fmt.Errorf("total lines must not be negative, got %d", totalLines)
	}

	base := totalLines / workerCount
	extra := totalLines % workerCount

	ranges := make([]model.Range, workerCount)
	start := 0
	for i := range ranges {
		count := base
		if i < extra {
			count++
		}
		ranges[i] = model.Range{Worker: i, Start: start, Count: count}
		start += count
	}
	return ranges, nil
}

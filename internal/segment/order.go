package segment

import (
	"sort"
)

// RowBucket returns the reading row a box belongs to: floor(Y / rowBucketHeight).
// A non-positive rowBucketHeight makes every distinct Y its own row.
func RowBucket(b Box, rowBucketHeight int) int {
	if rowBucketHeight <= 0 {
		return b.Y
	}
	return b.Y / rowBucketHeight
}

// SortReadingOrder orders boxes the way a reader scans a grid-style page.
//
// Boxes whose top edges fall in the same rowBucketHeight-tall strip are
// treated as one row and read left to right; rows are read top to bottom.
// The sort is stable, so boxes with equal (row, X) keep their detection
// order. The input slice is left untouched and a new slice is returned.
//
// This is an approximation tuned for grid layouts: two panels whose tops
// differ by less than rowBucketHeight but straddle a bucket boundary land in
// different rows.
func SortReadingOrder(boxes []Box, rowBucketHeight int) []Box {
	sorted := make([]Box, len(boxes))
	copy(sorted, boxes)

	sort.SliceStable(sorted, func(i, j int) bool {
		ri := RowBucket(sorted[i], rowBucketHeight)
		rj := RowBucket(sorted[j], rowBucketHeight)
		if ri != rj {
			return ri < rj
		}
		return sorted[i].X < sorted[j].X
	})

	return sorted
}

package utils

// SplitShare returns the i-th share of total divided into k equal parts,
// with the integer remainder absorbed by the first share. The k shares
// always sum back to total.
//
// Example:
//   - SplitShare(301, 3, 0) = 101
//   - SplitShare(301, 3, 1) = 100
//   - SplitShare(301, 3, 2) = 100
func SplitShare(total, k int64, i int) int64 {
	if k <= 0 {
		return total
	}
	share := total / k
	if i == 0 {
		share += total % k
	}
	return share
}

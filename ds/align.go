package ds

import (
	"golang.org/x/exp/constraints"
)

// AlignUp returns the smallest multiple of m that is >= n. m must be positive.
//
//	AlignUp(5, 4) == 8
//	AlignUp(8, 4) == 8
func AlignUp[T constraints.Integer](n T, m T) T {
	remainder := n % m
	if remainder == 0 {
		return n
	}
	return n + m - remainder
}

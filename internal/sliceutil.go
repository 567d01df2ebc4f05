// internal/sliceutil.go
//
// Generic helpers shared by the evaluation and pagination code.
// None of them modify their input slice.
// ----------------------------------------------------------------------------

package internal

import "golang.org/x/exp/constraints"

// Map applies f to each element and returns a new slice.
func Map[A any, B any](xs []A, f func(A) B) []B {
	out := make([]B, len(xs))
	for i, x := range xs {
		out[i] = f(x)
	}
	return out
}

// Mask keeps xs[i] where keep[i] is true, preserving order.
func Mask[T any](xs []T, keep []bool) []T {
	out := make([]T, 0, len(xs))
	for i, x := range xs {
		if i < len(keep) && keep[i] {
			out = append(out, x)
		}
	}
	return out
}

// Span is a half-open [Lo, Hi) index range produced by Chunk.
type Span struct{ Lo, Hi int }

// Chunk splits [0, n) into spans of size =< size.
func Chunk(n, size int) []Span {
	if n <= 0 {
		return nil
	}
	if size <= 0 {
		return []Span{{0, n}}
	}
	out := make([]Span, 0, (n+size-1)/size)
	for lo := 0; lo < n; lo += size {
		out = append(out, Span{lo, Clamp(lo+size, lo, n)})
	}
	return out
}

// Clamp bounds v to [lo, hi]. When hi < lo, lo wins.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// Compare returns -1, 0 or 1 for ordered values.
func Compare[T constraints.Ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

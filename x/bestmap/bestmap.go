// Package bestmap implements a small generic "keep the best candidate
// seen so far" tracker, used by search loops (like the best-orientation
// search in x/engine) that try many candidates and want to remember
// only the strict winner, ordered by either worst-case or total error.
package bestmap

// BestMapping tracks the best-scoring value of type T seen across a
// series of UpdateBest calls, where "best" is defined by UseWorst:
// when true, candidates are ordered by worstErr (ties broken by
// totalErr); when false, by totalErr (ties broken by worstErr).
// Updates only take effect on a strict improvement.
type BestMapping[T any] struct {
	UseWorst bool

	hasValue  bool
	worstErr  float64
	totalErr  float64
	bestValue T
}

// New creates a tracker seeded with an initial value and its
// (worst, total) error pair.
func New[T any](useWorst bool, worstErr, totalErr float64, initial T) *BestMapping[T] {
	return &BestMapping[T]{
		UseWorst:  useWorst,
		hasValue:  true,
		worstErr:  worstErr,
		totalErr:  totalErr,
		bestValue: initial,
	}
}

// better reports whether (worstErr, totalErr) strictly improves on the
// tracker's current best, by its configured ordering.
func (b *BestMapping[T]) better(worstErr, totalErr float64) bool {
	if !b.hasValue {
		return true
	}
	if b.UseWorst {
		if worstErr != b.worstErr {
			return worstErr < b.worstErr
		}
		return totalErr < b.totalErr
	}
	if totalErr != b.totalErr {
		return totalErr < b.totalErr
	}
	return worstErr < b.worstErr
}

// UpdateBest replaces the tracked best if (worstErr, totalErr) is a
// strict improvement by the tracker's ordering. Returns true if the
// update was accepted.
func (b *BestMapping[T]) UpdateBest(worstErr, totalErr float64, value T) bool {
	if !b.better(worstErr, totalErr) {
		return false
	}
	b.hasValue = true
	b.worstErr = worstErr
	b.totalErr = totalErr
	b.bestValue = value
	return true
}

// Data returns the best value tracked so far.
func (b *BestMapping[T]) Data() T {
	return b.bestValue
}

// Errors returns the (worstErr, totalErr) pair of the tracked best.
func (b *BestMapping[T]) Errors() (worstErr, totalErr float64) {
	return b.worstErr, b.totalErr
}

// BestOfBoth returns whichever of b and o holds the better-scoring
// value, by b's ordering preference.
func (b *BestMapping[T]) BestOfBoth(o *BestMapping[T]) *BestMapping[T] {
	if !b.hasValue {
		return o
	}
	if !o.hasValue {
		return b
	}
	if b.better(o.worstErr, o.totalErr) {
		return o
	}
	return b
}

package domain

// Result is the outcome of a classifier or parser that may legitimately find
// nothing. A NoMatch result is not an error; callers fall back to another
// strategy.
type Result[T any] struct {
	value   T
	matched bool
}

// Matched wraps a successful outcome
func Matched[T any](v T) Result[T] {
	return Result[T]{value: v, matched: true}
}

// NoMatch is the empty outcome
func NoMatch[T any]() Result[T] {
	return Result[T]{}
}

// Get returns the value and whether the result matched
func (r Result[T]) Get() (T, bool) {
	return r.value, r.matched
}

// IsMatch reports whether the result carries a value
func (r Result[T]) IsMatch() bool {
	return r.matched
}

// OrElse returns the value, or fallback on NoMatch
func (r Result[T]) OrElse(fallback T) T {
	if r.matched {
		return r.value
	}
	return fallback
}

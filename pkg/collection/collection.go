// Package collection provides generic slice helpers used by the order cache
// and the CLI table output.
package collection

// Map transforms each element of s using fn.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Filter returns the elements of s for which fn returns true.
func Filter[T any](s []T, fn func(T) bool) []T {
	var out []T
	for _, v := range s {
		if fn(v) {
			out = append(out, v)
		}
	}
	return out
}

// First returns the first element matching fn, or (zero, false).
func First[T any](s []T, fn func(T) bool) (T, bool) {
	for _, v := range s {
		if fn(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// IndexOf returns the index of the first element matching fn, or -1.
func IndexOf[T any](s []T, fn func(T) bool) int {
	for i, v := range s {
		if fn(v) {
			return i
		}
	}
	return -1
}

// Contains reports whether any element matches fn.
func Contains[T any](s []T, fn func(T) bool) bool {
	return IndexOf(s, fn) >= 0
}

// Prepend returns a new slice with v in front of s.
func Prepend[T any](s []T, v T) []T {
	out := make([]T, 0, len(s)+1)
	out = append(out, v)
	return append(out, s...)
}

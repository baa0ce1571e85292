package util

// Map applies mapper to each element of coll and returns the results in order.
//
// Type Parameters:
//   - A: The type of elements in the input slice
//   - B: The type of elements in the output slice
func Map[A any, B any](coll []A, mapper func(item A) B) []B {
	out := make([]B, len(coll))
	for i, item := range coll {
		out[i] = mapper(item)
	}
	return out
}

// Find returns the first element of coll that satisfies criteria.
// The boolean is false when nothing matched, in which case the zero value is returned.
func Find[A any](coll []A, criteria func(item A) bool) (A, bool) {
	for _, item := range coll {
		if criteria(item) {
			return item, true
		}
	}
	var zero A
	return zero, false
}

// FirstNonEmpty returns the first string in values that is not empty.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

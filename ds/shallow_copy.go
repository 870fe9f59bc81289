package ds

// ShallowCopy copies the slice header and elements, so appending to or
// reordering the result leaves ts untouched. Nil stays nil.
func ShallowCopy[T any](ts []T) []T {
	if ts == nil {
		return nil
	}
	return append(make([]T, 0, len(ts)), ts...)
}

package features

// Result is the settled outcome of one artifact fetch: either a value or the
// reason it is unavailable. Rules must handle both.
type Result[T any] struct {
	value  T
	ok     bool
	reason string
}

// Available wraps a successfully fetched value.
func Available[T any](v T) Result[T] {
	return Result[T]{value: v, ok: true}
}

// Unavailable records why an artifact could not be obtained.
func Unavailable[T any](reason string) Result[T] {
	if reason == "" {
		reason = "unavailable"
	}
	return Result[T]{reason: reason}
}

// Get returns the value and whether it is present.
func (r Result[T]) Get() (T, bool) { return r.value, r.ok }

// OK reports whether the fetch succeeded.
func (r Result[T]) OK() bool { return r.ok }

// Reason is empty for available results.
func (r Result[T]) Reason() string { return r.reason }

// Status is a short human-readable description used in reports.
func (r Result[T]) Status() string {
	if r.ok {
		return "ok"
	}
	return "unavailable: " + r.reason
}

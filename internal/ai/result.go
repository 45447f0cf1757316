package ai

// Result is either structured model output or a documented fallback.
// When Degraded is true, Value holds the fallback and Err the cause.
type Result[T any] struct {
	Value    T
	Degraded bool
	Err      error
}

func ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func degraded[T any](fallback T, err error) Result[T] {
	return Result[T]{Value: fallback, Degraded: true, Err: err}
}

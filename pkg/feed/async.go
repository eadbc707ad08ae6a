package feed

import "context"

// Result is the single outcome of an asynchronous operation.
type Result[T any] struct {
	Value T
	Err   error
}

// Async runs fn on its own goroutine. The returned channel receives exactly
// one Result and is then closed, so a caller that stops listening never
// blocks the goroutine.
func Async[T any](fn func() (T, error)) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	go func() {
		defer close(ch)
		v, err := fn()
		ch <- Result[T]{Value: v, Err: err}
	}()
	return ch
}

// LoadAsync starts l.Load(ctx) and returns the channel its result arrives on.
func LoadAsync(ctx context.Context, l Loader) <-chan Result[[]FeedItem] {
	return Async(func() ([]FeedItem, error) {
		return l.Load(ctx)
	})
}

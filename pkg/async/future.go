package async

import (
	"context"
	"sync"
	"time"
)

// Future represents the result of an asynchronous computation.
type Future[U any] struct {
	value U
	err   error
	once  sync.Once
	done  chan struct{}
}

// Await waits for the asynchronous function to complete and returns its result.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.value, f.err
}

// AwaitWithTimeout waits for the asynchronous function to complete with a timeout.
// If the timeout occurs before completion, returns ErrTimeout; the computation
// itself keeps running in the background.
func (f *Future[U]) AwaitWithTimeout(timeout time.Duration) (U, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-time.After(timeout):
		var zero U
		return zero, ErrTimeout
	}
}

// AwaitContext waits for completion or until ctx is done, whichever comes
// first. Returns ctx.Err() when the context wins the race.
func (f *Future[U]) AwaitContext(ctx context.Context) (U, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero U
		return zero, ctx.Err()
	}
}

// IsComplete checks if the asynchronous function is complete without blocking.
func (f *Future[U]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Async executes a function asynchronously and returns a Future for its result.
// The function accepts a context.Context and a parameter of any type T.
func Async[T, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		// Early exit prevents wasted work when context is pre-canceled
		select {
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		default:
		}

		value, err := fn(ctx, param)

		// Use sync.Once to prevent race conditions on multiple goroutine completions
		f.once.Do(func() {
			f.value = value
			f.err = err
		})
	}()

	return f
}

// WaitAll waits for all futures to complete and returns their results in
// order. The first error encountered is returned alongside the partial
// results gathered so far.
func WaitAll[U any](futures ...*Future[U]) ([]U, error) {
	results := make([]U, 0, len(futures))
	for _, future := range futures {
		value, err := future.Await()
		if err != nil {
			return results, err
		}
		results = append(results, value)
	}
	return results, nil
}

// WaitAny waits for any of the futures to complete and returns the index of
// the completed future along with its result.
func WaitAny[U any](futures ...*Future[U]) (int, U, error) {
	var zero U
	if len(futures) == 0 {
		return -1, zero, ErrNoFutures
	}

	type completion struct {
		index int
		value U
		err   error
	}

	done := make(chan completion, 1)
	for i, future := range futures {
		go func(index int, f *Future[U]) {
			value, err := f.Await()
			select {
			case done <- completion{index, value, err}:
			default:
				// Another future already won the race.
			}
		}(i, future)
	}

	res := <-done
	return res.index, res.value, res.err
}

// Package async implements a Future pattern for non-blocking operations with
// timeout support, plus coordination utilities for multiple computations.
//
// Future[U] represents the result of an asynchronous computation. Await blocks
// until completion; AwaitWithTimeout and AwaitContext bound the wait without
// stopping the underlying computation; IsComplete polls without blocking.
//
//	future := async.Async(ctx, userID, fetchUser)
//	// ... other work ...
//	user, err := future.Await()
//
// A bounded wait keeps the computation running in the background:
//
//	user, err := future.AwaitWithTimeout(50 * time.Millisecond)
//	if errors.Is(err, async.ErrTimeout) {
//		// result not ready yet
//	}
//
// WaitAll collects results from several futures in order; WaitAny returns as
// soon as the first future completes.
//
// All operations are safe for concurrent use. Each Async call spawns exactly
// one goroutine, and a context canceled before execution begins short-circuits
// with the context's error.
package async

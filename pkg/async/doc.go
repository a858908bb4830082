// Package async provides the two scheduling primitives the notification pipeline is built on:
// generic futures for background work and a single-goroutine Loop for work that must stay
// confined to one context.
//
// A Future is obtained from Async, which starts the supplied function in its own goroutine.
// Callers wait with Await or AwaitWithTimeout. WaitAll stops at the first failure, while Settle
// always waits for every future and reports each outcome, which is what enrichment steps need
// when a failed fetch must not short-circuit its sibling.
//
// Panics inside an Async function or a Loop task are recovered and surfaced as ErrPanic.
//
// # Usage
//
//	icon := async.Async(ctx, iconURL, loader.Load)
//	picture := async.Async(ctx, pictureURL, loader.Load)
//	results := async.Settle(icon, picture)
//
//	loop := async.NewLoop(64)
//	defer loop.Close(context.Background())
//
//	err := loop.Do(ctx, func(ctx context.Context) error {
//	    return surface.Show(ctx, n)
//	})
//
// # Error Handling
//
// Functions return the error produced by the user callback, the context error when the context
// was canceled before work started, ErrTimeout from AwaitWithTimeout, and ErrLoopClosed when
// posting to a closed Loop.
package async

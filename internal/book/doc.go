// Package book reconstructs top-of-book state and trade signs for one
// instrument-day.
//
// Two independent pipelines live here. The order-book pipeline replays ITCH
// events through an Engine that keeps an order index and per-level resting
// counts on a bounded price grid, emitting a BookSnapshot whenever the best
// bid or best ask changes and a side-signed Trade for every displayed
// execution. The quote pipeline turns TAQ quotes into snapshots directly and
// classifies TAQ trade prints with the tick rule (ClassifyTicks).
//
// Both pipelines feed the resamplers in timescale.go, which put midpoints and
// signs on the physical, event or trade clock used by the response package.
//
// An Engine owns its state exclusively and is not safe for concurrent use.
// Run one Engine per (ticker, day).
package book

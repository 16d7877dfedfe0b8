// Package producer implements the feed-to-stream fan-out.
//
// One goroutine per symbol runs a two-state loop (Connecting, Streaming):
// read a feed message, publish it to the stream broker, then hold for the
// publish interval. Any connect, read, or publish failure funnels into a
// fixed backoff followed by a fresh connect. Loops are fully isolated; the
// only shared state is the read-only symbol list captured at construction.
package producer

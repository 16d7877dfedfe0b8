// Package consumer implements the stream-to-object-store drain.
//
// A single loop owns the shard cursor: poll a batch, swap the cursor for
// the returned token (even on empty polls), normalize, and persist the
// batch as one parquet object. Empty polls are the expected steady state.
// Transport failures retry with a fixed backoff and only propagate after
// too many consecutive failures.
package consumer

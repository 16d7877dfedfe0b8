// Package broker adapts AWS Kinesis to the narrow put/describe/poll surface
// the pipeline needs.
//
// The adapter is stateless; the consumer owns its cursor token and exchanges
// it on every Poll call. Shard split/merge handling is out of scope: only
// one open shard is ever drained.
package broker

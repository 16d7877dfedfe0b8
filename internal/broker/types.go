package broker

import "errors"

// Errors
var (
	ErrNoOpenShard = errors.New("stream has no open shard")
)

// Record is one raw record read from the stream.
type Record struct {
	SequenceNumber string // Broker-assigned, increasing per partition key
	Data           []byte // Payload exactly as published
}

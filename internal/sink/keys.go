package sink

import (
	"fmt"
	"sync"
	"time"
)

// KeyBuilder produces unique object keys of the form
// {project}/{unixSeconds}-{sequence}.parquet. The monotonic sequence keeps
// keys unique even when two flushes land in the same second.
type KeyBuilder struct {
	project string

	mu  sync.Mutex
	seq uint64
}

// NewKeyBuilder creates a key builder for one project prefix.
func NewKeyBuilder(project string) *KeyBuilder {
	return &KeyBuilder{project: project}
}

// Next returns the key for the next flush.
func (b *KeyBuilder) Next(now time.Time) string {
	b.mu.Lock()
	seq := b.seq
	b.seq++
	b.mu.Unlock()

	return fmt.Sprintf("%s/%d-%d.parquet", b.project, now.Unix(), seq)
}

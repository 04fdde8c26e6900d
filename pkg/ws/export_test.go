package ws

import (
	"time"
)

// NewNATSSinkWithPublisher exposes newNATSSink to tests.
var NewNATSSinkWithPublisher = newNATSSink

// NATSPublisher exposes natsPublisher to tests.
type NATSPublisher = natsPublisher

// ChunkBuffer wraps chunkBuffer for tests.
type ChunkBuffer struct {
	b *chunkBuffer
}

func NewChunkBuffer(ttl time.Duration) *ChunkBuffer {
	return &ChunkBuffer{b: newChunkBuffer(ttl)}
}

func (c *ChunkBuffer) Add(messageID string, sum, seq int, data []byte, now time.Time) ([]byte, bool) {
	return c.b.add(messageID, sum, seq, data, now)
}

func (c *ChunkBuffer) Pending() int {
	return c.b.pending()
}

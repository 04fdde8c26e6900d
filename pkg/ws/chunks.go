package ws

import (
	"sync"
	"time"
)

// chunkBuffer reassembles payloads split across several data frames. Parts
// are keyed by message id; incomplete messages are dropped after ttl.
type chunkBuffer struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]*chunkEntry
}

type chunkEntry struct {
	parts    [][]byte
	received int
	expires  time.Time
}

func newChunkBuffer(ttl time.Duration) *chunkBuffer {
	return &chunkBuffer{ttl: ttl, entries: make(map[string]*chunkEntry)}
}

// add stores part seq of sum parts. It returns the joined payload once every
// part has arrived.
func (b *chunkBuffer) add(messageID string, sum, seq int, data []byte, now time.Time) ([]byte, bool) {
	if sum <= 1 {
		return data, true
	}

	if seq < 0 || seq >= sum {
		return nil, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.sweep(now)

	entry, ok := b.entries[messageID]
	if !ok || len(entry.parts) != sum {
		entry = &chunkEntry{parts: make([][]byte, sum)}
		b.entries[messageID] = entry
	}

	entry.expires = now.Add(b.ttl)

	if data == nil {
		data = []byte{}
	}

	if entry.parts[seq] == nil {
		entry.received++
	}

	entry.parts[seq] = data

	if entry.received < sum {
		return nil, false
	}

	delete(b.entries, messageID)

	size := 0
	for _, part := range entry.parts {
		size += len(part)
	}

	joined := make([]byte, 0, size)
	for _, part := range entry.parts {
		joined = append(joined, part...)
	}

	return joined, true
}

// sweep drops expired entries. b.mu must be held.
func (b *chunkBuffer) sweep(now time.Time) {
	for id, entry := range b.entries {
		if now.After(entry.expires) {
			delete(b.entries, id)
		}
	}
}

func (b *chunkBuffer) pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.entries)
}

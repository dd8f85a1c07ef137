package dedup

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMarkIfNew(t *testing.T) {
	r := NewRegistry(10 * time.Minute)

	assert.True(t, r.MarkIfNew("42"))
	assert.False(t, r.MarkIfNew("42"))
	assert.True(t, r.MarkIfNew("43"))
	assert.True(t, r.Seen("42"))
	assert.Equal(t, 2, r.Len())
}

func TestEviction(t *testing.T) {
	now := time.Now()
	r := NewRegistry(10 * time.Minute)
	r.now = func() time.Time { return now }

	assert.True(t, r.MarkIfNew("old"))

	// Within the retention window the entry sticks around.
	now = now.Add(9 * time.Minute)
	assert.False(t, r.MarkIfNew("old"))

	// Past the window the entry is evicted and the id reads as new.
	now = now.Add(2 * time.Minute)
	assert.True(t, r.MarkIfNew("old"))
	assert.Equal(t, 1, r.Len())
}

func TestZeroRetentionDisablesEviction(t *testing.T) {
	now := time.Now()
	r := NewRegistry(0)
	r.now = func() time.Time { return now }

	assert.True(t, r.MarkIfNew("42"))
	now = now.Add(24 * time.Hour)
	assert.False(t, r.MarkIfNew("42"))
}

func TestConcurrentMarkIfNew(t *testing.T) {
	r := NewRegistry(time.Hour)

	var wg sync.WaitGroup
	wins := make(chan bool, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.MarkIfNew("contested") {
				wins <- true
			}
		}()
	}
	wg.Wait()
	close(wins)

	assert.Len(t, wins, 1)
}

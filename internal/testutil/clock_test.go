package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock_PinnedUntilAdvanced(t *testing.T) {
	clock := NewClock(ReferenceTime)

	// Repeated reads return the same instant
	assert.Equal(t, ReferenceTime, clock.Now())
	assert.Equal(t, ReferenceTime, clock.Now())

	clock.Advance(250 * time.Millisecond)
	assert.Equal(t, ReferenceTime.Add(250*time.Millisecond), clock.Now())
}

func TestClock_SteppingAdvancesPerRead(t *testing.T) {
	clock := NewSteppingClock(ReferenceTime, time.Second)

	assert.Equal(t, ReferenceTime, clock.Now())
	assert.Equal(t, ReferenceTime.Add(time.Second), clock.Now())
	assert.Equal(t, ReferenceTime.Add(2*time.Second), clock.Now())
}

func TestClock_Set(t *testing.T) {
	clock := NewSteppingClock(ReferenceTime, time.Minute)
	clock.Now()
	clock.Now()

	later := ReferenceTime.Add(time.Hour)
	clock.Set(later)
	assert.Equal(t, later, clock.Now())
	// The step keeps applying after Set
	assert.Equal(t, later.Add(time.Minute), clock.Now())
}

func TestClock_ConcurrentReadsAreOrdered(t *testing.T) {
	clock := NewSteppingClock(ReferenceTime, time.Millisecond)

	const readers = 50
	var wg sync.WaitGroup
	results := make(chan time.Time, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- clock.Now()
		}()
	}
	wg.Wait()
	close(results)

	// Every reader got a distinct instant from the stepped sequence
	seen := make(map[time.Time]bool, readers)
	for instant := range results {
		assert.False(t, seen[instant], "instant %v handed out twice", instant)
		seen[instant] = true
		offset := instant.Sub(ReferenceTime)
		assert.GreaterOrEqual(t, offset, time.Duration(0))
		assert.Less(t, offset, readers*time.Millisecond)
	}
	assert.Len(t, seen, readers)
}

func TestReferenceTimeRendering(t *testing.T) {
	// Golden document headers depend on this exact rendering.
	assert.Equal(t, "2026-01-02T03:04:05", ReferenceTime.Format("2006-01-02T15:04:05"))
}

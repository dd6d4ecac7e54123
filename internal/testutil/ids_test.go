package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequentialIDs(t *testing.T) {
	ids := NewSequentialIDs("")
	assert.Equal(t, int64(0), ids.Issued())

	assert.Equal(t, "test-run-0001", ids.Generate())
	assert.Equal(t, "test-run-0002", ids.Generate())
	assert.Equal(t, int64(2), ids.Issued())

	ids.Reset()
	assert.Equal(t, "test-run-0001", ids.Generate(), "reset replays the same ids")
}

func TestSequentialIDs_Prefix(t *testing.T) {
	ids := NewSequentialIDs("golden")
	assert.Equal(t, "golden-0001", ids.Generate())
}

func TestSequentialIDs_ThreadSafe(t *testing.T) {
	ids := NewSequentialIDs("p")
	const goroutines = 50
	const perGoroutine = 20

	var wg sync.WaitGroup
	out := make(chan string, goroutines*perGoroutine)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				out <- ids.Generate()
			}
		}()
	}
	wg.Wait()
	close(out)

	seen := make(map[string]bool)
	for id := range out {
		require.False(t, seen[id], "id %s generated twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, goroutines*perGoroutine)
}

func TestFixedID(t *testing.T) {
	assert.Equal(t, "test-run-fixed", FixedID("").Generate())
	assert.Equal(t, "abc", FixedID("abc").Generate())
}

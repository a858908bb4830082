package push_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pushkit/pkg/push"
)

func TestHandleGenerator_Monotonic(t *testing.T) {
	t.Parallel()

	g := push.NewHandleGenerator()
	prev := g.Next()
	for range 1000 {
		next := g.Next()
		require.Greater(t, next, prev)
		prev = next
	}
}

func TestHandleGenerator_UniqueUnderConcurrency(t *testing.T) {
	t.Parallel()

	g := push.NewHandleGenerator()
	const workers, perWorker = 16, 500

	var (
		mu   sync.Mutex
		seen = make(map[push.Handle]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]push.Handle, 0, perWorker)
			for range perWorker {
				local = append(local, g.Next())
			}
			mu.Lock()
			for _, h := range local {
				seen[h] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}

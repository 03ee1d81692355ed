package scheduler

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestEngineStressConcurrentReschedule(t *testing.T) {
	engine := NewEngine(4096)
	engine.Start()
	defer engine.Stop()

	const workers = 8
	const keys = 50
	const rounds = 40

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		w := w
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				key := fmt.Sprintf("key-%d", (w*rounds+i)%keys)
				if err := engine.After(key, time.Duration(i%5+150)*time.Millisecond); err != nil {
					t.Errorf("schedule failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	fired := make(map[string]int)
	deadline := time.After(5 * time.Second)
	for len(fired) < keys {
		select {
		case <-deadline:
			t.Fatalf("timeout waiting events: fired=%d keys=%d dropped=%d", len(fired), keys, engine.Dropped())
		case ev := <-engine.C():
			fired[ev.Key]++
		}
	}

	// every key was replaced many times but fires once
	select {
	case ev := <-engine.C():
		fired[ev.Key]++
	case <-time.After(100 * time.Millisecond):
	}
	for key, n := range fired {
		if n != 1 {
			t.Fatalf("key %s fired %d times", key, n)
		}
	}
	if engine.Dropped() != 0 {
		t.Fatalf("expected zero drops with active consumer, got=%d", engine.Dropped())
	}
}

package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestFlight_CollapsesConcurrentCalls(t *testing.T) {
	t.Parallel()

	var g Flight[string]
	var runs atomic.Int32
	release := make(chan struct{})

	const callers = 20
	var wg sync.WaitGroup
	var shared atomic.Int32
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			val, wasShared, err := g.Do(context.Background(), "fixtures?league=39", func() (string, error) {
				runs.Add(1)
				<-release
				return "payload", nil
			})
			if err != nil || val != "payload" {
				t.Errorf("unexpected result %q, %v", val, err)
			}
			if wasShared {
				shared.Add(1)
			}
		}()
	}

	deadline := time.Now().Add(2 * time.Second)
	for g.InFlight() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("leader never started")
		}
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := runs.Load(); got < 1 || got+shared.Load() != callers {
		t.Fatalf("expected every caller to run or share, runs=%d shared=%d", got, shared.Load())
	}
	if g.InFlight() != 0 {
		t.Fatalf("expected no calls in flight")
	}
}

func TestFlight_WaiterHonoursOwnContext(t *testing.T) {
	t.Parallel()

	var g Flight[int]
	started := make(chan struct{})
	release := make(chan struct{})
	leaderDone := make(chan error, 1)

	go func() {
		_, _, err := g.Do(context.Background(), "k", func() (int, error) {
			close(started)
			<-release
			return 7, nil
		})
		leaderDone <- err
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, shared, err := g.Do(ctx, "k", func() (int, error) { return 0, nil })
	if !errors.Is(err, context.Canceled) || !shared {
		t.Fatalf("expected canceled waiter, shared=%v err=%v", shared, err)
	}

	close(release)
	if err := <-leaderDone; err != nil {
		t.Fatalf("leader failed: %v", err)
	}
}

package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestOnceFires(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	var fired int32
	done := make(chan struct{})
	s.Once(time.Now().Add(20*time.Millisecond), func() {
		atomic.StoreInt32(&fired, 1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Once to fire")
	}
	if atomic.LoadInt32(&fired) != 1 {
		t.Fatal("action did not run")
	}
}

func TestOnceCancelled(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	var fired int32
	tok := s.Once(time.Now().Add(50*time.Millisecond), func() {
		atomic.StoreInt32(&fired, 1)
	})
	tok.Cancel()

	time.Sleep(150 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Fatal("cancelled task should not have fired")
	}
}

func TestEveryRespectsMaxRuns(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	var count int32
	s.Every(time.Now().Add(10*time.Millisecond), 10*time.Millisecond, 3, func() {
		atomic.AddInt32(&count, 1)
	})

	time.Sleep(200 * time.Millisecond)
	if got := atomic.LoadInt32(&count); got != 3 {
		t.Fatalf("count = %d, want 3", got)
	}
}

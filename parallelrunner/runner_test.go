package parallelrunner

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSplitCoversWholeRangeExactlyOnce(t *testing.T) {
	for _, workers := range []int{1, 2, 4, 8} {
		r := New(workers)
		const n = 1000
		var covered [n]int32

		r.Split(n, func(offset, length int64) {
			for i := offset; i < offset+length; i++ {
				atomic.AddInt32(&covered[i], 1)
			}
		})

		for i, c := range covered {
			if c != 1 {
				t.Fatalf("workers=%d: index %d covered %d times, want 1", workers, i, c)
			}
		}
	}
}

func TestSingleThreadedRunnerIsSequential(t *testing.T) {
	r := NewSingleThreaded()
	if r.NumWorkers() != 1 {
		t.Fatalf("NumWorkers() = %d, want 1", r.NumWorkers())
	}

	var order []int64
	r.Split(5, func(offset, length int64) {
		order = append(order, offset)
	})
	if len(order) != 1 || order[0] != 0 {
		t.Errorf("expected single sequential call covering [0,5), got %v", order)
	}
}

func TestMessagePasserBlocksUntilSend(t *testing.T) {
	p := NewMessagePasser()
	done := make(chan []uint64)

	go func() {
		done <- p.ReceiveMessage(42)
	}()

	select {
	case <-done:
		t.Fatal("ReceiveMessage returned before SendMessage")
	case <-time.After(20 * time.Millisecond):
	}

	p.SendMessage(42, []uint64{1, 2, 3})

	select {
	case got := <-done:
		if len(got) != 3 || got[0] != 1 {
			t.Errorf("ReceiveMessage = %v, want [1 2 3]", got)
		}
	case <-time.After(time.Second):
		t.Fatal("ReceiveMessage never returned after SendMessage")
	}
}

func TestMessagePasserDuplicateSendPanics(t *testing.T) {
	p := NewMessagePasser()
	p.SendMessage(1, []uint64{1})

	defer func() {
		if recover() == nil {
			t.Error("expected duplicate SendMessage to panic")
		}
	}()
	p.SendMessage(1, []uint64{2})
}

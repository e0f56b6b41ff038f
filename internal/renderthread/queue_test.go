package renderthread

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestIsRenderThread(t *testing.T) {
	q := New(4)
	if q.IsRenderThread() {
		t.Fatal("unbound queue reports a render thread")
	}

	q.Bind()
	if !q.IsRenderThread() {
		t.Fatal("binding goroutine is not the render thread")
	}

	other := make(chan bool)
	go func() { other <- q.IsRenderThread() }()
	if <-other {
		t.Error("another goroutine reports being the render thread")
	}
}

func TestGoroutineIDsDiffer(t *testing.T) {
	main := goroutineID()
	if main == 0 {
		t.Fatal("goroutineID = 0")
	}
	ch := make(chan int64)
	go func() { ch <- goroutineID() }()
	if got := <-ch; got == main || got == 0 {
		t.Errorf("goroutine ids: main %d, other %d", main, got)
	}
}

func TestInvokeInlineOnRenderThread(t *testing.T) {
	q := New(1)
	q.Bind()

	ran := false
	if err := q.Invoke(func() { ran = true }); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Error("Invoke on the render thread did not run inline")
	}
	if q.Len() != 0 {
		t.Error("inline Invoke should not queue")
	}
}

func TestInvokeFromOtherGoroutine(t *testing.T) {
	q := New(4)
	q.Bind()

	var ran atomic.Bool
	errc := make(chan error)
	go func() {
		errc <- q.Invoke(func() { ran.Store(true) })
	}()

	// Render loop
	deadline := time.After(5 * time.Second)
	for {
		select {
		case err := <-errc:
			if err != nil {
				t.Fatal(err)
			}
			if !ran.Load() {
				t.Error("Invoke returned before the task ran")
			}
			return
		case <-deadline:
			t.Fatal("Invoke never completed")
		default:
			q.Drain()
			time.Sleep(time.Millisecond)
		}
	}
}

func TestInvokeRecoversPanic(t *testing.T) {
	q := New(1)
	q.Bind()

	err := q.Invoke(func() { panic("boom") })
	if !errors.Is(err, ErrPanic) {
		t.Errorf("got %v, want ErrPanic", err)
	}
}

func TestEnqueueBounded(t *testing.T) {
	q := New(2)

	var count int
	for i := 0; i < 2; i++ {
		if err := q.Enqueue(func() { count++ }); err != nil {
			t.Fatalf("Enqueue %d: %v", i, err)
		}
	}
	if err := q.Enqueue(func() {}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("third Enqueue: got %v, want ErrQueueFull", err)
	}

	if n := q.Drain(); n != 2 || count != 2 {
		t.Errorf("Drain ran %d tasks, count %d", n, count)
	}
	if n := q.Drain(); n != 0 {
		t.Errorf("second Drain ran %d tasks", n)
	}
}

func TestDrainLeavesNewTasks(t *testing.T) {
	q := New(4)
	var order []int
	_ = q.Enqueue(func() {
		order = append(order, 1)
		_ = q.Enqueue(func() { order = append(order, 2) })
	})

	if n := q.Drain(); n != 1 {
		t.Fatalf("first Drain ran %d", n)
	}
	if n := q.Drain(); n != 1 {
		t.Fatalf("second Drain ran %d", n)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v", order)
	}
}

func TestInvokeContextCancelled(t *testing.T) {
	q := New(1)
	q.Bind()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	errc := make(chan error)
	go func() {
		errc <- q.InvokeContext(ctx, func() {})
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("got %v, want DeadlineExceeded", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("InvokeContext ignored cancellation")
	}

	// The abandoned task is still delivered
	if n := q.Drain(); n != 1 {
		t.Errorf("Drain ran %d tasks, want the abandoned one", n)
	}
}

func TestClose(t *testing.T) {
	q := New(4)
	q.Bind()

	var ran atomic.Int32
	_ = q.Enqueue(func() { ran.Add(1) })

	var wg sync.WaitGroup
	wg.Add(1)
	var invokeErr error
	go func() {
		defer wg.Done()
		invokeErr = q.Invoke(func() { ran.Add(1) })
	}()

	for q.Len() < 2 {
		time.Sleep(time.Millisecond)
	}
	q.Close()
	q.Close()
	wg.Wait()

	if invokeErr != nil {
		t.Errorf("Invoke drained by Close: %v", invokeErr)
	}
	if ran.Load() != 2 {
		t.Errorf("%d tasks ran, want 2", ran.Load())
	}
	if err := q.Enqueue(func() {}); !errors.Is(err, ErrClosed) {
		t.Errorf("Enqueue after Close: got %v", err)
	}

	errc := make(chan error)
	go func() { errc <- q.Invoke(func() {}) }()
	if err := <-errc; !errors.Is(err, ErrClosed) {
		t.Errorf("Invoke after Close: got %v", err)
	}
}

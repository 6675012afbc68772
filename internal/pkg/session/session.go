package session

import (
	"context"
	"fmt"
	"github.com/google/uuid"
	"sync"
)

const bufferSize = 64

// Func runs one invocation. It may call emit from any goroutine and returns
// the terminal message.
type Func[M any] func(ctx context.Context, emit func(M)) M

// Handle is a caller-owned invocation. Messages are read with Next. Once
// Cancel returns, Next never yields another message.
type Handle[M any] struct {
	id      string
	msgs    chan M
	cancel  context.CancelFunc
	stopped chan struct{}
	stop    sync.Once
	done    chan struct{}

	mu       sync.RWMutex
	finished bool
}

// Start runs fn in its own goroutine. A panic in fn becomes the terminal
// message built by onPanic.
func Start[M any](ctx context.Context, fn Func[M], onPanic func(error) M) *Handle[M] {
	runCtx, cancel := context.WithCancel(ctx)
	h := &Handle[M]{
		id:      uuid.NewString(),
		msgs:    make(chan M, bufferSize),
		cancel:  cancel,
		stopped: make(chan struct{}),
		done:    make(chan struct{}),
	}

	go func() {
		defer close(h.done)
		defer cancel()

		terminal := h.run(runCtx, fn, onPanic)

		h.mu.Lock()
		defer h.mu.Unlock()
		h.finished = true
		h.send(terminal)
		close(h.msgs)
	}()

	return h
}

func (h *Handle[M]) run(ctx context.Context, fn Func[M], onPanic func(error) M) (terminal M) {
	defer func() {
		if r := recover(); r != nil {
			terminal = onPanic(fmt.Errorf("panic: %v", r))
		}
	}()

	return fn(ctx, h.emit)
}

func (h *Handle[M]) emit(m M) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.finished {
		return
	}
	h.send(m)
}

func (h *Handle[M]) send(m M) {
	select {
	case <-h.stopped:
		return
	default:
	}

	select {
	case h.msgs <- m:
	case <-h.stopped:
	}
}

func (h *Handle[M]) ID() string {
	return h.id
}

// Next blocks for the next message. It reports false after the terminal
// message was consumed or after Cancel.
func (h *Handle[M]) Next() (M, bool) {
	var zero M

	select {
	case <-h.stopped:
		return zero, false
	case m, ok := <-h.msgs:
		if !ok {
			return zero, false
		}
		select {
		case <-h.stopped:
			return zero, false
		default:
		}
		return m, true
	}
}

// Cancel invalidates the handle and cancels the invocation context. Remote
// work already committed is left as is.
func (h *Handle[M]) Cancel() {
	h.stop.Do(func() {
		close(h.stopped)
		h.cancel()
	})
}

func (h *Handle[M]) Cancelled() bool {
	select {
	case <-h.stopped:
		return true
	default:
		return false
	}
}

// Done is closed once the invocation goroutine returned.
func (h *Handle[M]) Done() <-chan struct{} {
	return h.done
}

// Channel keeps at most one invocation in flight.
type Channel[M any] struct {
	mu      sync.Mutex
	current *Handle[M]
}

// Start cancels the in-flight invocation, if any, before starting a new one.
func (c *Channel[M]) Start(ctx context.Context, fn Func[M], onPanic func(error) M) *Handle[M] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		c.current.Cancel()
	}
	c.current = Start(ctx, fn, onPanic)
	return c.current
}

func (c *Channel[M]) Current() *Handle[M] {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.current
}

func (c *Channel[M]) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		c.current.Cancel()
		c.current = nil
	}
}

package session

import (
	"sync"

	"github.com/danmuck/pimd/internal/protocol"
)

// Outbox queues frames for one connection and writes them in FIFO order from a
// single goroutine, so producers never block on a slow peer.
type Outbox struct {
	conn    *Conn
	limit   int
	onError func(Frame, error)

	mu      sync.Mutex
	pending []Frame
	closed  bool
	wake    chan struct{}
	done    chan struct{}
}

// NewOutbox starts the writer goroutine. onError, when set, sees every frame
// that failed to write; it runs on the writer goroutine and must not call Close.
func NewOutbox(conn *Conn, limit int, onError func(Frame, error)) *Outbox {
	if limit <= 0 {
		limit = DefaultConfig().SendQueue
	}
	o := &Outbox{
		conn:    conn,
		limit:   limit,
		onError: onError,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go o.run()
	return o
}

// Enqueue appends a frame behind everything queued before it.
func (o *Outbox) Enqueue(tag int64, cmd protocol.Command) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrOutboxClose
	}
	if len(o.pending) >= o.limit {
		o.mu.Unlock()
		return ErrOutboxFull
	}
	o.pending = append(o.pending, Frame{Tag: tag, Command: cmd})
	select {
	case o.wake <- struct{}{}:
	default:
	}
	o.mu.Unlock()
	return nil
}

// Len reports the number of frames not yet handed to the socket.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

// Close stops accepting frames, lets the writer drain what is queued and
// waits for it to exit. Safe to call more than once.
func (o *Outbox) Close() {
	o.mu.Lock()
	if !o.closed {
		o.closed = true
		close(o.wake)
	}
	o.mu.Unlock()
	<-o.done
}

func (o *Outbox) run() {
	defer close(o.done)
	for {
		_, open := <-o.wake
		for _, f := range o.take() {
			if err := o.conn.WriteFrame(f.Tag, f.Command); err != nil && o.onError != nil {
				o.onError(f, err)
			}
		}
		if !open {
			return
		}
	}
}

func (o *Outbox) take() []Frame {
	o.mu.Lock()
	defer o.mu.Unlock()
	batch := o.pending
	o.pending = nil
	return batch
}

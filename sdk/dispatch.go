package sdk

import "sync"

// dispatcher runs subscriber callbacks on one goroutine, in submission order,
// so slow listeners never stall the connection or session loops.
type dispatcher struct {
	mu     sync.Mutex
	closed bool
	q      chan func()
	done   chan struct{}
}

func newDispatcher(queueSize int) *dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	d := &dispatcher{
		q:    make(chan func(), queueSize),
		done: make(chan struct{}),
	}
	go func() {
		defer close(d.done)
		for fn := range d.q {
			if fn != nil {
				fn()
			}
		}
	}()
	return d
}

// tryDo queues fn without blocking. It reports false when the dispatcher is
// closed or the queue is full.
func (d *dispatcher) tryDo(fn func()) bool {
	if d == nil || fn == nil {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	select {
	case d.q <- fn:
		return true
	default:
		return false
	}
}

// close stops accepting work and waits for queued callbacks to finish.
func (d *dispatcher) close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	close(d.q)
	d.mu.Unlock()
	<-d.done
}

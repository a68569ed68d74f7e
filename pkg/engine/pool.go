package engine

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("pool closed")

// DefaultMaxIdle is the idle connection limit when none is configured.
const DefaultMaxIdle = 16

// Pool hands out connections for short units of work, such as one HTTP
// request. A connection's session is reset when it goes back to the pool
// and again before it is handed out, so no identity ever crosses from one
// borrower to the next.
type Pool struct {
	engine  *Engine
	maxIdle int

	mu     sync.Mutex
	idle   []*Conn
	closed bool
}

// NewPool creates a Pool keeping at most maxIdle idle connections.
func (e *Engine) NewPool(maxIdle int) *Pool {
	if maxIdle <= 0 {
		maxIdle = DefaultMaxIdle
	}
	return &Pool{engine: e, maxIdle: maxIdle}
}

// Acquire returns an anonymous connection.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	var c *Conn
	if n := len(p.idle); n > 0 {
		c = p.idle[n-1]
		p.idle = p.idle[:n-1]
	} else {
		c = p.engine.Connect()
	}
	c.borrowed = true
	p.mu.Unlock()

	p.reset(c)
	return c, nil
}

// Release returns c to the pool. Its session is reset first; closed
// connections and connections beyond the idle limit are closed instead.
// Releasing a connection that is not currently borrowed, including
// a second Release of the same borrow, does nothing.
func (p *Pool) Release(c *Conn) {
	if c == nil {
		return
	}
	p.mu.Lock()
	if !c.borrowed {
		p.mu.Unlock()
		return
	}
	c.borrowed = false
	p.mu.Unlock()

	if c.sess.Closed() {
		return
	}
	p.reset(c)

	p.mu.Lock()
	if p.closed || len(p.idle) >= p.maxIdle {
		p.mu.Unlock()
		c.Close()
		return
	}
	p.idle = append(p.idle, c)
	p.mu.Unlock()
}

// Idle returns the number of idle connections.
func (p *Pool) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}

// Close closes every idle connection. Connections still borrowed are
// closed when released.
func (p *Pool) Close() {
	p.mu.Lock()
	idle := p.idle
	p.idle = nil
	p.closed = true
	p.mu.Unlock()

	for _, c := range idle {
		c.Close()
	}
}

func (p *Pool) reset(c *Conn) {
	c.sess.Reset()
	if m := p.engine.metrics; m != nil {
		m.RecordPoolReset()
	}
}

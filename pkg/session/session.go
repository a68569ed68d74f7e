// Package session holds the per-connection identity slot.
//
// A Context belongs to exactly one connection. It is created empty, filled
// by login, cleared by logout, reset whenever its connection goes back to
// a pool, and closed together with the connection. Nothing here is global:
// two connections never share a Context.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrClosed is returned when binding a Context whose connection is gone.
var ErrClosed = errors.New("session closed")

// Binding is what a login stores on a connection. PrincipalID is set when
// the connection authenticated as a durable principal; the acting user is
// then resolved through the principal on every operation.
type Binding struct {
	UserID        string
	Username      string
	PrincipalID   string
	PrincipalName string
	Since         time.Time
}

// Context is the identity slot of one connection. It is safe for concurrent
// use, though a connection normally issues its operations one at a time.
type Context struct {
	id string

	mu      sync.RWMutex
	binding *Binding
	closed  bool
	resets  int
}

// New returns an empty Context with a fresh connection id.
func New() *Context {
	return &Context{id: uuid.NewString()}
}

// ID identifies the connection that owns this Context.
func (c *Context) ID() string {
	return c.id
}

// Bind stores b as the current identity, replacing any previous one.
func (c *Context) Bind(b Binding) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if b.Since.IsZero() {
		b.Since = time.Now()
	}
	c.binding = &b
	return nil
}

// Clear removes the current identity. Clearing an empty Context is a no-op.
func (c *Context) Clear() {
	c.mu.Lock()
	c.binding = nil
	c.mu.Unlock()
}

// Current returns the current binding and whether one is set.
func (c *Context) Current() (Binding, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.binding == nil {
		return Binding{}, false
	}
	return *c.binding, true
}

// UserID returns the bound user id, or "" when anonymous. For a principal
// binding it is the user the principal aliased at bind time; enforcement
// re-resolves the alias and does not trust this value.
func (c *Context) UserID() string {
	b, _ := c.Current()
	return b.UserID
}

// Authenticated reports whether an identity is bound.
func (c *Context) Authenticated() bool {
	_, ok := c.Current()
	return ok
}

// Reset empties the Context before its connection is pooled or reused.
func (c *Context) Reset() {
	c.mu.Lock()
	c.binding = nil
	c.resets++
	c.mu.Unlock()
}

// Resets returns how many times Reset was called.
func (c *Context) Resets() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resets
}

// Close clears the Context for good. Later Binds fail with ErrClosed.
func (c *Context) Close() {
	c.mu.Lock()
	c.binding = nil
	c.closed = true
	c.mu.Unlock()
}

// Closed reports whether Close was called.
func (c *Context) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

type ctxKey struct{}

// WithContext attaches s to ctx, for transports that carry the connection
// through a request context.
func WithContext(ctx context.Context, s *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the Context attached to ctx, or nil.
func FromContext(ctx context.Context) *Context {
	s, _ := ctx.Value(ctxKey{}).(*Context)
	return s
}

package lambda

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// ResponderFactory builds the Responder shared by every invocation served
// by one execution environment.
type ResponderFactory func(ctx context.Context) (Responder, error)

// InitError reports a failed Responder initialization.
type InitError struct {
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("responder initialization failed: %v", e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// ResponderManager owns the warm-start Responder of an execution environment.
//
// The Responder is built at most once. Callers that arrive while an
// initialization is in flight wait for it instead of starting another one. A
// failed initialization leaves the manager empty, so the next caller tries
// again.
type ResponderManager struct {
	factory ResponderFactory
	sem     chan struct{}

	mu            sync.RWMutex
	responder     Responder
	initializedAt time.Time
	lastUsed      time.Time
}

// NewResponderManager returns a manager that builds its Responder with factory
func NewResponderManager(factory ResponderFactory) *ResponderManager {
	return &ResponderManager{
		factory: factory,
		sem:     make(chan struct{}, 1),
	}
}

// Get returns the shared Responder, initializing it if necessary
func (m *ResponderManager) Get(ctx context.Context) (Responder, error) {
	if r := m.current(); r != nil {
		return r, nil
	}

	select {
	case m.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-m.sem }()

	// The initialization we waited for may have succeeded.
	if r := m.current(); r != nil {
		return r, nil
	}

	if m.factory == nil {
		return nil, &InitError{Err: errors.New("no responder factory configured")}
	}
	r, err := m.factory(ctx)
	if err != nil {
		return nil, &InitError{Err: err}
	}
	if r == nil {
		return nil, &InitError{Err: errors.New("factory returned a nil responder")}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.responder = r
	m.initializedAt = time.Now()
	m.lastUsed = m.initializedAt
	return r, nil
}

func (m *ResponderManager) current() Responder {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.responder != nil {
		m.lastUsed = time.Now()
	}
	return m.responder
}

// IsHealthy reports whether a Responder has been initialized
func (m *ResponderManager) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.responder != nil
}

// LastUsed returns the time the Responder was last handed out
func (m *ResponderManager) LastUsed() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastUsed
}

// Cleanup releases the Responder. The next Get initializes a new one.
func (m *ResponderManager) Cleanup() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.responder == nil {
		return nil
	}
	var err error
	if c, ok := m.responder.(io.Closer); ok {
		err = c.Close()
	}
	m.responder = nil
	m.initializedAt = time.Time{}
	return err
}

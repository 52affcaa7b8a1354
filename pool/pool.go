// Package pool provides a borrow/return pool of client engines to a
// single address. Unlike a plain connection pool, every entry here is
// already a live, listener-backed client.Engine — each one carries its
// own correlation map and push dispatch, so "connections are used
// exclusively" no longer holds; what the pool actually amortizes is
// dial latency and listener-goroutine startup, not exclusive use.
//
// Pool design: a buffered channel as a FIFO queue, the same mechanism
// a plain TCP connection pool would use — buffered channels are
// concurrency-safe and block on empty for free.
package pool

import (
	"fmt"
	"sync"

	"github.com/hujiansuntec-arch/IDL-tools/client"
)

// EnginePool manages a pool of reusable client engines to a single
// address.
type EnginePool struct {
	mu       sync.Mutex
	engines  chan *PoolEngine
	addr     string
	maxConns int
	curConns int
	factory  func() (*client.Engine, error)
}

// PoolEngine wraps a client.Engine with pool metadata.
type PoolEngine struct {
	*client.Engine
	pool     *EnginePool
	unusable bool
}

// NewEnginePool creates an engine pool with the given max size.
// Engines are created lazily — the pool starts empty and grows on
// demand up to maxConns.
func NewEnginePool(addr string, maxConns int, factory func() (*client.Engine, error)) *EnginePool {
	return &EnginePool{
		engines:  make(chan *PoolEngine, maxConns),
		addr:     addr,
		maxConns: maxConns,
		factory:  factory,
	}
}

// Get retrieves an engine from the pool: an idle one if available, a
// freshly dialed one if the pool has room, or it blocks until one is
// returned if the pool is already at maxConns.
func (p *EnginePool) Get() (*PoolEngine, error) {
	select {
	case engine := <-p.engines:
		if engine.unusable || engine.Closed() {
			p.Put(engine) // closes it and frees its slot
			return p.createNew()
		}
		return engine, nil
	default:
		p.mu.Lock()
		underLimit := p.curConns < p.maxConns
		p.mu.Unlock()
		if underLimit {
			return p.createNew()
		}
		engine := <-p.engines
		if engine.unusable || engine.Closed() {
			p.Put(engine) // closes it and frees its slot
			return p.createNew()
		}
		return engine, nil
	}
}

// Put returns an engine to the pool. An engine marked unusable, or one
// whose listener has already died, is closed and discarded instead of
// recycled.
func (p *EnginePool) Put(engine *PoolEngine) {
	if engine.unusable || engine.Closed() {
		engine.Engine.Close()
		p.mu.Lock()
		p.curConns--
		p.mu.Unlock()
		return
	}
	p.engines <- engine
}

// MarkUnusable flags engine so the next Put discards it instead of
// returning it to the pool — the caller observed a transport error and
// the engine can no longer be trusted.
func (p *EnginePool) MarkUnusable(engine *PoolEngine) {
	engine.unusable = true
}

// Close shuts down the pool and closes every pooled engine.
func (p *EnginePool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	close(p.engines)
	for engine := range p.engines {
		engine.Engine.Close()
		p.curConns--
	}
	return nil
}

func (p *EnginePool) createNew() (*PoolEngine, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.curConns >= p.maxConns {
		return nil, fmt.Errorf("pool: engine pool for %s exhausted", p.addr)
	}

	engine, err := p.factory()
	if err != nil {
		return nil, err
	}

	p.curConns++
	return &PoolEngine{Engine: engine, pool: p}, nil
}

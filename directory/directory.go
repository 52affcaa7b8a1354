// Package directory composes service discovery, load balancing, and
// engine pooling into the multi-instance calling surface spec.md's
// single bound Transport never needed: one Client, many addresses,
// one pick per call.
package directory

import (
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/hujiansuntec-arch/IDL-tools/client"
	"github.com/hujiansuntec-arch/IDL-tools/loadbalance"
	"github.com/hujiansuntec-arch/IDL-tools/message"
	"github.com/hujiansuntec-arch/IDL-tools/pool"
	"github.com/hujiansuntec-arch/IDL-tools/registry"
)

// Client discovers instances of a service through a Registry, picks
// one with a Balancer, borrows a pooled client.Engine for the chosen
// address, and issues the call — the same four-step flow a generated
// per-service directory client repeats for every method.
type Client struct {
	registry    registry.Registry
	balancer    loadbalance.Balancer
	poolSize    int
	callTimeout time.Duration

	mu    sync.Mutex
	pools map[string]*pool.EnginePool // address -> engine pool
}

// NewClient builds a directory Client. poolSize bounds how many
// pooled engines are kept per discovered address; callTimeout <= 0
// uses client.DefaultCallTimeout.
func NewClient(reg registry.Registry, bal loadbalance.Balancer, poolSize int, callTimeout time.Duration) *Client {
	return &Client{
		registry:    reg,
		balancer:    bal,
		poolSize:    poolSize,
		callTimeout: callTimeout,
		pools:       make(map[string]*pool.EnginePool),
	}
}

// poolFor returns the engine pool for addr, creating it on first use.
func (c *Client) poolFor(addr string) *pool.EnginePool {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pools[addr]
	if !ok {
		p = pool.NewEnginePool(addr, c.poolSize, c.dialer(addr))
		c.pools[addr] = p
	}
	return p
}

// dialer returns a factory that dials addr ("host:port") and builds a
// client.Engine for it, the shape pool.EnginePool needs to create
// entries on demand.
func (c *Client) dialer(addr string) func() (*client.Engine, error) {
	return func() (*client.Engine, error) {
		host, portStr, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("directory: invalid instance address %q: %w", addr, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("directory: invalid instance port %q: %w", addr, err)
		}
		return client.DialStream(host, port, nil, c.callTimeout)
	}
}

// Call discovers instances of serviceName, narrows them to ones whose
// dispatch table actually serves the request's message id, picks one,
// borrows a pooled engine for it, and issues the request, returning
// the raw response message for the generated typed wrapper to decode.
func (c *Client) Call(serviceName string, respMsgID uint32, requestMessage []byte) ([]byte, error) {
	instance, err := c.pickInstance(serviceName, requestMessage, c.balancer.Pick)
	if err != nil {
		return nil, err
	}
	return c.callInstance(instance, respMsgID, requestMessage)
}

// CallSticky behaves like Call, but picks an instance by hashing key
// on a consistent-hash ring instead of consulting the configured
// Balancer — useful when repeated calls for the same logical session
// (the same client connection's key, say) should land on the same
// instance for cache affinity, the scenario loadbalance.ConsistentHashBalancer
// exists for but that Call's generic loadbalance.Balancer interface
// cannot express (ConsistentHashBalancer.Pick takes a key, not an
// instance list).
func (c *Client) CallSticky(serviceName, key string, respMsgID uint32, requestMessage []byte) ([]byte, error) {
	instance, err := c.pickInstance(serviceName, requestMessage, func(instances []registry.ServiceInstance) (*registry.ServiceInstance, error) {
		ring := loadbalance.NewConsistentHashBalancer()
		for i := range instances {
			ring.Add(&instances[i])
		}
		return ring.Pick(key)
	})
	if err != nil {
		return nil, err
	}
	return c.callInstance(instance, respMsgID, requestMessage)
}

// pickInstance discovers serviceName, filters out instances that don't
// serve the request's message id, and hands the remainder to pick.
func (c *Client) pickInstance(serviceName string, requestMessage []byte, pick func([]registry.ServiceInstance) (*registry.ServiceInstance, error)) (*registry.ServiceInstance, error) {
	instances, err := c.registry.Discover(serviceName)
	if err != nil {
		return nil, fmt.Errorf("directory: discover %s: %w", serviceName, err)
	}

	requestMsgID, err := message.PeekID(requestMessage)
	if err != nil {
		return nil, fmt.Errorf("directory: peek request id: %w", err)
	}
	eligible := instances[:0:0]
	for _, inst := range instances {
		if inst.Serves(requestMsgID) {
			eligible = append(eligible, inst)
		}
	}
	if len(eligible) == 0 {
		return nil, fmt.Errorf("directory: no instance of %s serves message id %d", serviceName, requestMsgID)
	}

	instance, err := pick(eligible)
	if err != nil {
		return nil, fmt.Errorf("directory: pick instance for %s: %w", serviceName, err)
	}
	return instance, nil
}

func (c *Client) callInstance(instance *registry.ServiceInstance, respMsgID uint32, requestMessage []byte) ([]byte, error) {
	p := c.poolFor(instance.Addr)
	engine, err := p.Get()
	if err != nil {
		return nil, fmt.Errorf("directory: get engine for %s: %w", instance.Addr, err)
	}

	resp, err := engine.Call(respMsgID, requestMessage)
	if err != nil {
		p.MarkUnusable(engine)
	}
	p.Put(engine)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Close shuts down every pooled address.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.pools {
		p.Close()
	}
	return nil
}

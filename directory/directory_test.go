package directory

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/hujiansuntec-arch/IDL-tools/loadbalance"
	"github.com/hujiansuntec-arch/IDL-tools/registry"
	"github.com/hujiansuntec-arch/IDL-tools/server"
)

// staticRegistry satisfies registry.Registry from a fixed instance
// list, so this package's tests don't need a live etcd cluster.
type staticRegistry struct {
	instances map[string][]registry.ServiceInstance
}

func (r *staticRegistry) Register(serviceName string, instance registry.ServiceInstance, ttl int64) error {
	r.instances[serviceName] = append(r.instances[serviceName], instance)
	return nil
}

func (r *staticRegistry) Deregister(serviceName string, addr string) error { return nil }

func (r *staticRegistry) Discover(serviceName string) ([]registry.ServiceInstance, error) {
	return r.instances[serviceName], nil
}

func (r *staticRegistry) Watch(serviceName string) <-chan []registry.ServiceInstance {
	ch := make(chan []registry.ServiceInstance)
	return ch
}

func startDirectoryEchoServer(t *testing.T) string {
	dispatch := server.DispatchTable{
		1000: func(ctx context.Context, requestMessage []byte) ([]byte, error) {
			buf := make([]byte, 4)
			binary.BigEndian.PutUint32(buf, 1001)
			return buf, nil
		},
	}
	srv := server.NewServer(dispatch)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	go srv.Serve(addr)
	time.Sleep(50 * time.Millisecond)
	return addr
}

func TestDirectoryClientCall(t *testing.T) {
	addr := startDirectoryEchoServer(t)

	reg := &staticRegistry{instances: map[string][]registry.ServiceInstance{
		"TypeTest": {{Addr: addr, Weight: 1}},
	}}
	dirClient := NewClient(reg, &loadbalance.RoundRobinBalancer{}, 2, time.Second)
	defer dirClient.Close()

	req := make([]byte, 4)
	binary.BigEndian.PutUint32(req, 1000)

	resp, err := dirClient.Call("TypeTest", 1001, req)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if binary.BigEndian.Uint32(resp[:4]) != 1001 {
		t.Fatalf("got response id %d, want 1001", binary.BigEndian.Uint32(resp[:4]))
	}
}

func TestDirectoryClientNoInstances(t *testing.T) {
	reg := &staticRegistry{instances: map[string][]registry.ServiceInstance{}}
	dirClient := NewClient(reg, &loadbalance.RoundRobinBalancer{}, 2, time.Second)
	defer dirClient.Close()

	req := make([]byte, 4)
	binary.BigEndian.PutUint32(req, 1000)

	_, err := dirClient.Call("TypeTest", 1001, req)
	if err == nil {
		t.Fatal("expect error when no instances are registered")
	}
}

func TestDirectoryClientReusesPoolAcrossCalls(t *testing.T) {
	addr := startDirectoryEchoServer(t)

	reg := &staticRegistry{instances: map[string][]registry.ServiceInstance{
		"TypeTest": {{Addr: addr, Weight: 1}},
	}}
	dirClient := NewClient(reg, &loadbalance.RoundRobinBalancer{}, 1, time.Second)
	defer dirClient.Close()

	req := make([]byte, 4)
	binary.BigEndian.PutUint32(req, 1000)

	for i := 0; i < 5; i++ {
		if _, err := dirClient.Call("TypeTest", 1001, req); err != nil {
			t.Fatalf("Call %d: %v", i, err)
		}
	}
}

// TestDirectoryClientSkipsInstanceNotServingMessageID asserts that an
// instance registered with a Methods set excluding the request's
// message id is never picked, even when it is the only instance
// discovered — the registry's method-awareness applies before the
// balancer ever runs.
func TestDirectoryClientSkipsInstanceNotServingMessageID(t *testing.T) {
	reg := &staticRegistry{instances: map[string][]registry.ServiceInstance{
		"TypeTest": {{Addr: "127.0.0.1:1", Weight: 1, Methods: []uint32{2000, 2002}}},
	}}
	dirClient := NewClient(reg, &loadbalance.RoundRobinBalancer{}, 1, time.Second)
	defer dirClient.Close()

	req := make([]byte, 4)
	binary.BigEndian.PutUint32(req, 1000) // not in the instance's Methods set

	if _, err := dirClient.Call("TypeTest", 1001, req); err == nil {
		t.Fatal("expect error when no instance serves the request's message id")
	}
}

// TestDirectoryClientCallSticky asserts CallSticky always lands the
// same key on the same instance, exercising ConsistentHashBalancer
// (which Call's generic Balancer interface can't drive directly, since
// ConsistentHashBalancer.Pick takes a key rather than an instance
// list).
func TestDirectoryClientCallSticky(t *testing.T) {
	addrA := startDirectoryEchoServer(t)
	addrB := startDirectoryEchoServer(t)

	reg := &staticRegistry{instances: map[string][]registry.ServiceInstance{
		"TypeTest": {
			{Addr: addrA, Weight: 1},
			{Addr: addrB, Weight: 1},
		},
	}}
	dirClient := NewClient(reg, &loadbalance.RoundRobinBalancer{}, 1, time.Second)
	defer dirClient.Close()

	req := make([]byte, 4)
	binary.BigEndian.PutUint32(req, 1000)

	for i := 0; i < 10; i++ {
		if _, err := dirClient.CallSticky("TypeTest", "session-42", 1001, req); err != nil {
			t.Fatalf("CallSticky %d: %v", i, err)
		}
	}

	dirClient.mu.Lock()
	pools := len(dirClient.pools)
	dirClient.mu.Unlock()

	if pools != 1 {
		t.Fatalf("got %d distinct address pools touched, want 1 (sticky key should always pick the same instance)", pools)
	}
}

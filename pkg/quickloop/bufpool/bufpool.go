// Package bufpool provides size-classed, per-CPU pooling for the byte
// slices the connection state machine allocates on every request: the
// sliding read buffer and the outgoing header buffer.
package bufpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Size classes. The read buffer starts at SizeSmall and grows through
// these classes up to conn.MaxBufferSize; the header buffer almost
// always fits in SizeSmall.
const (
	SizeSmall  = 4 * 1024  // typical request line + headers
	SizeMedium = 8 * 1024  // larger header blocks
	SizeLarge  = 16 * 1024 // the sliding buffer's ceiling
)

// Pool hands out []byte of a given size class from a per-CPU sync.Pool,
// falling back to direct allocation for sizes it doesn't pool.
type Pool struct {
	small  *classPool
	medium *classPool
	large  *classPool

	gets atomic.Uint64
	puts atomic.Uint64
}

type classPool struct {
	size  int
	cpus  []sync.Pool
	rr    atomic.Uint64
	gets  atomic.Uint64
	puts  atomic.Uint64
	hits  atomic.Uint64
	misses atomic.Uint64
}

func newClassPool(size int) *classPool {
	numCPU := runtime.GOMAXPROCS(0)
	if numCPU < 1 {
		numCPU = 1
	}
	cp := &classPool{size: size, cpus: make([]sync.Pool, numCPU)}
	for i := range cp.cpus {
		cp.cpus[i].New = func() any {
			cp.misses.Add(1)
			buf := make([]byte, size)
			return &buf
		}
	}
	return cp
}

// get picks a CPU shard round-robin to spread sync.Pool contention
// across cores, same tradeoff as a goroutine-per-core pool but applied
// to a single event-loop thread pulling from many accepted fds.
func (cp *classPool) get() []byte {
	cp.gets.Add(1)
	idx := cp.rr.Add(1) % uint64(len(cp.cpus))
	bufPtr := cp.cpus[idx].Get().(*[]byte)
	return (*bufPtr)[:cp.size]
}

func (cp *classPool) put(buf []byte) {
	if cap(buf) < cp.size {
		return
	}
	cp.puts.Add(1)
	buf = buf[:cp.size]
	idx := cp.rr.Add(1) % uint64(len(cp.cpus))
	cp.cpus[idx].Put(&buf)
}

// New constructs a Pool with the small/medium/large size classes.
func New() *Pool {
	return &Pool{
		small:  newClassPool(SizeSmall),
		medium: newClassPool(SizeMedium),
		large:  newClassPool(SizeLarge),
	}
}

// Get returns a buffer of at least size, picked from the smallest
// class that satisfies it. Sizes larger than the large class fall back
// to a direct, unpooled allocation.
func (p *Pool) Get(size int) []byte {
	p.gets.Add(1)
	switch {
	case size <= SizeSmall:
		return p.small.get()
	case size <= SizeMedium:
		return p.medium.get()
	case size <= SizeLarge:
		return p.large.get()
	default:
		return make([]byte, size)
	}
}

// Put returns buf to the pool matching its capacity. Buffers whose
// capacity doesn't match one of the three classes exactly are dropped
// rather than pooled, mirroring the discard-on-mismatch behavior of a
// size-classed pool generally.
func (p *Pool) Put(buf []byte) {
	if buf == nil {
		return
	}
	p.puts.Add(1)
	switch cap(buf) {
	case SizeSmall:
		p.small.put(buf)
	case SizeMedium:
		p.medium.put(buf)
	case SizeLarge:
		p.large.put(buf)
	}
}

// Metrics is a point-in-time snapshot of pool activity, used by the
// optional Prometheus gauges in bufpool_prometheus.go.
type Metrics struct {
	Gets, Puts                   uint64
	SmallMisses, MediumMisses, LargeMisses uint64
}

// Snapshot reports current counters.
func (p *Pool) Snapshot() Metrics {
	return Metrics{
		Gets:         p.gets.Load(),
		Puts:         p.puts.Load(),
		SmallMisses:  p.small.misses.Load(),
		MediumMisses: p.medium.misses.Load(),
		LargeMisses:  p.large.misses.Load(),
	}
}

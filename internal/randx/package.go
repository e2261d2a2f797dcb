// Package randx generates non-zero 64-bit identifiers from a pool of seeded
// pseudo-random generators.
package randx

import (
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// 16 generators or one per CPU, whichever is higher, to spread lock
	// contention across goroutines.
	randomPool = NewPool(time.Now().UnixNano(), max(16, runtime.NumCPU()))
)

// Pool is a fixed set of independently locked generators.
type Pool struct {
	sources []*lockedRand
	next    uint64
}

type lockedRand struct {
	sync.Mutex
	r *rand.Rand
}

// NewPool seeds size generators starting at seed.
func NewPool(seed int64, size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{sources: make([]*lockedRand, size)}
	for i := range p.sources {
		p.sources[i] = &lockedRand{r: rand.New(rand.NewSource(seed + int64(i)))}
	}
	return p
}

func (p *Pool) pick() *lockedRand {
	n := atomic.AddUint64(&p.next, 1)
	return p.sources[n%uint64(len(p.sources))]
}

// Uint64 returns a non-zero identifier. Zero is reserved as the "none" value.
func (p *Pool) Uint64() uint64 {
	src := p.pick()
	src.Lock()
	defer src.Unlock()

	for {
		if id := src.r.Uint64(); id != 0 {
			return id
		}
	}
}

// TwoUint64 returns two non-zero identifiers drawn under a single lock.
func (p *Pool) TwoUint64() (uint64, uint64) {
	src := p.pick()
	src.Lock()
	defer src.Unlock()

	var a, b uint64
	for a == 0 {
		a = src.r.Uint64()
	}
	for b == 0 {
		b = src.r.Uint64()
	}
	return a, b
}

func GenSeededGUID(opts ...Option) uint64 {
	c := defaultConfig()
	for _, opt := range opts {
		opt(c)
	}

	return c.randomPool.Uint64()
}

func GenSeededGUID2(opts ...Option) (uint64, uint64) {
	c := defaultConfig()
	for _, opt := range opts {
		opt(c)
	}

	return c.randomPool.TwoUint64()
}

type Option func(*config)

func WithRandomPool(randomPool *Pool) Option {
	return func(c *config) {
		c.randomPool = randomPool
	}
}

type config struct {
	randomPool *Pool
}

func defaultConfig() *config {
	return &config{
		randomPool: randomPool,
	}
}

// Package pool provides a persistent work-stealing scheduler shared by every
// concurrent sorter. A Pool is created once by the caller and passed to each
// sorter, so all strategies compete for the same set of workers.
//
// Each worker owns a deque. Work submitted from inside a task lands on the
// submitting worker's deque; work submitted from any other goroutine lands on a
// shared injection deque. An idle worker first pops its own deque, then the
// injection deque, and finally steals the oldest task of a randomly chosen
// victim.
//
// Usage:
//
//	p := pool.New(runtime.GOMAXPROCS(0))
//	defer p.Close()
//
//	f, err := pool.Submit(p, nil, func(w *pool.Worker) (int, error) {
//	    return 42, nil
//	})
//	if err != nil {
//	    return err
//	}
//	v, err := f.Await(ctx, nil)
package pool

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/lanrat/parsort/queue"
)

// ErrClosed is returned when work is submitted to a pool that has been closed.
var ErrClosed = errors.New("pool: closed")

// task is a single schedulable unit. Exactly one of run or abort is invoked,
// by whoever claims the task first.
type task struct {
	state atomic.Bool // true once claimed
	run   func(w *Worker)
	abort func(err error)
}

// Worker is a pool goroutine. Tasks receive the Worker executing them so that
// nested submissions, forks and joins stay on the worker's own deque.
type Worker struct {
	id    int
	pool  *Pool
	deque *queue.Deque[*task]
}

// ID returns the index of the worker within its pool.
func (w *Worker) ID() int {
	return w.id
}

// Pool returns the pool that owns w.
func (w *Worker) Pool() *Pool {
	return w.pool
}

// Stats is a snapshot of the pool counters.
type Stats struct {
	Workers   int
	Submitted uint64
	Executed  uint64
	Stolen    uint64
}

// Option configures a Pool.
type Option func(*Pool)

// WithLogger sets the logger used for lifecycle events and recovered panics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithPanicHandler registers fn to be called with the value of every panic
// recovered from a task. The panic is still reported to the task's Future as
// a *PanicError.
func WithPanicHandler(fn func(any)) Option {
	return func(p *Pool) {
		p.panicHandler = fn
	}
}

// Pool is a fixed size work-stealing worker pool. Workers are spawned once at
// creation and persist until Close is called.
type Pool struct {
	workers []*Worker
	inject  *queue.Deque[*task]

	pending atomic.Int64 // queued tasks not yet claimed
	idle    atomic.Int32 // workers parked or about to park
	mu      sync.Mutex
	cond    *sync.Cond

	closed    atomic.Bool
	closeOnce sync.Once
	wg        sync.WaitGroup

	logger       *slog.Logger
	panicHandler func(any)

	submitted atomic.Uint64
	executed  atomic.Uint64
	stolen    atomic.Uint64
}

// New creates a pool with the specified number of workers.
// If numWorkers <= 0, uses GOMAXPROCS.
func New(numWorkers int, opts ...Option) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		inject: queue.NewDeque[*task](64),
		logger: slog.New(slog.DiscardHandler),
	}
	p.cond = sync.NewCond(&p.mu)
	for _, opt := range opts {
		opt(p)
	}

	p.workers = make([]*Worker, numWorkers)
	for i := range p.workers {
		p.workers[i] = &Worker{id: i, pool: p, deque: queue.NewDeque[*task](64)}
	}
	p.wg.Add(numWorkers)
	for _, w := range p.workers {
		go w.loop()
	}
	p.logger.Debug("pool started", "workers", numWorkers)
	return p
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return len(p.workers)
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:   len(p.workers),
		Submitted: p.submitted.Load(),
		Executed:  p.executed.Load(),
		Stolen:    p.stolen.Load(),
	}
}

// Close stops accepting work, lets the workers drain every queued task and
// waits for them to exit. Tasks that slip in concurrently with Close are
// failed with ErrClosed. Calling Close multiple times is safe.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		p.mu.Lock()
		p.cond.Broadcast()
		p.mu.Unlock()
		p.wg.Wait()

		aborted := 0
		abortAll := func(d *queue.Deque[*task]) {
			for {
				t, ok := d.StealTop()
				if !ok {
					return
				}
				if p.claim(t) {
					t.abort(ErrClosed)
					aborted++
				}
			}
		}
		abortAll(p.inject)
		for _, w := range p.workers {
			abortAll(w.deque)
		}
		s := p.Stats()
		p.logger.Debug("pool closed",
			"submitted", s.Submitted, "executed", s.Executed, "stolen", s.Stolen, "aborted", aborted)
	})
}

// push enqueues t on w's deque when w belongs to p, on the injection deque otherwise.
func (p *Pool) push(w *Worker, t *task) error {
	if p.closed.Load() {
		return ErrClosed
	}
	if w != nil && w.pool == p {
		w.deque.PushBottom(t)
	} else {
		p.inject.PushBottom(t)
	}
	p.pending.Add(1)
	p.submitted.Add(1)

	if p.closed.Load() {
		// raced with Close: the workers may already be gone
		if p.claim(t) {
			return ErrClosed
		}
		return nil
	}
	if p.idle.Load() > 0 {
		p.mu.Lock()
		p.cond.Signal()
		p.mu.Unlock()
	}
	return nil
}

// claim marks t as taken. Only the caller that gets true may run or abort it.
func (p *Pool) claim(t *task) bool {
	if t.state.CompareAndSwap(false, true) {
		p.pending.Add(-1)
		return true
	}
	return false
}

// take pops from a deque until it finds an unclaimed task.
// Claimed entries are left behind by joins that ran their target inline.
func (p *Pool) take(pop func() (*task, bool)) *task {
	for {
		t, ok := pop()
		if !ok {
			return nil
		}
		if p.claim(t) {
			return t
		}
	}
}

// park blocks until work is queued. It returns false once the pool is closed
// and drained.
func (p *Pool) park() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idle.Add(1)
	defer p.idle.Add(-1)
	for p.pending.Load() == 0 {
		if p.closed.Load() {
			return false
		}
		p.cond.Wait()
	}
	return true
}

// loop is the main loop for each persistent worker goroutine.
func (w *Worker) loop() {
	defer w.pool.wg.Done()
	for {
		if t := w.find(); t != nil {
			w.execute(t)
			continue
		}
		if !w.pool.park() {
			return
		}
	}
}

// find returns the next task for w: own deque, injection deque, then a victim.
func (w *Worker) find() *task {
	p := w.pool
	if t := p.take(w.deque.PopBottom); t != nil {
		return t
	}
	if t := p.take(p.inject.StealTop); t != nil {
		return t
	}
	n := len(p.workers)
	if n == 1 {
		return nil
	}
	start := rand.IntN(n)
	for i := range n {
		v := p.workers[(start+i)%n]
		if v == w {
			continue
		}
		if t := p.take(v.deque.StealTop); t != nil {
			p.stolen.Add(1)
			return t
		}
	}
	return nil
}

func (w *Worker) execute(t *task) {
	w.pool.executed.Add(1)
	t.run(w)
}

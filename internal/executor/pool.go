package executor

import (
	"sync"

	"github.com/gammazero/deque"
)

// workerPool runs submitted funcs on a fixed set of goroutines. Stop drops
// everything still queued but lets in-flight funcs finish, which is exactly
// the shutdown a failing group needs: no new tasks, running tasks complete
// their own bookkeeping.
type workerPool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending deque.Deque[func()]
	stopped bool
	wg      sync.WaitGroup
}

func newWorkerPool(workers int) *workerPool {
	if workers < 1 {
		workers = 1
	}
	p := &workerPool{}
	p.cond = sync.NewCond(&p.mu)
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Submit queues fn for execution. Returns false after Stop.
func (p *workerPool) Submit(fn func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return false
	}
	p.pending.PushBack(fn)
	p.cond.Signal()
	return true
}

// Stop discards the queue and tells idle workers to exit.
func (p *workerPool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	p.pending.Clear()
	p.cond.Broadcast()
}

// Wait blocks until every worker goroutine has exited. Callers must Stop
// first once all useful work is done.
func (p *workerPool) Wait() {
	p.wg.Wait()
}

func (p *workerPool) worker() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for p.pending.Len() == 0 && !p.stopped {
			p.cond.Wait()
		}
		if p.pending.Len() == 0 {
			p.mu.Unlock()
			return
		}
		fn := p.pending.PopFront()
		p.mu.Unlock()
		fn()
	}
}

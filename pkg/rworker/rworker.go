// Package rworker runs jobs with a bound on how many run at once.
package rworker

import "sync"

// New returns a pool running at most rate jobs concurrently. A rate below
// one is treated as one.
func New(rate int) *Pool {
	if rate < 1 {
		rate = 1
	}
	return &Pool{rate: make(chan struct{}, rate)}
}

type Pool struct {
	wg   sync.WaitGroup
	rate chan struct{}

	mtx  sync.Mutex
	errs []error
}

// Go schedules fn. It does not block; the job waits for a free slot.
func (p *Pool) Go(fn func() error) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.rate <- struct{}{}
		defer func() { <-p.rate }()
		if err := fn(); err != nil {
			p.mtx.Lock()
			p.errs = append(p.errs, err)
			p.mtx.Unlock()
		}
	}()
}

// Wait blocks until every scheduled job returned and reports their errors in
// completion order.
func (p *Pool) Wait() []error {
	p.wg.Wait()
	p.mtx.Lock()
	defer p.mtx.Unlock()
	errs := p.errs
	p.errs = nil
	return errs
}

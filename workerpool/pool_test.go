/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package workerpool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubmitRunsAllTasks(t *testing.T) {
	p := New(Properties{CorePoolSize: 2, MaxPoolSize: 4, QueueSize: 8})
	defer p.Close()

	var n int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		p.Submit(func() {
			atomic.AddInt32(&n, 1)
			wg.Done()
		})
	}
	wg.Wait()
	assert.EqualValues(t, 20, n)
}

func TestSubmitRecoversPanicsIntoErrors(t *testing.T) {
	p := New(Properties{CorePoolSize: 1, MaxPoolSize: 1, QueueSize: 4})
	defer p.Close()

	done := make(chan struct{})
	p.Submit(func() {
		defer close(done)
		panic("boom")
	})
	<-done
	time.Sleep(10 * time.Millisecond)
	assert.Error(t, p.Errors())
}

func TestCloseFallsBackToGoroutine(t *testing.T) {
	p := New(Properties{CorePoolSize: 1, MaxPoolSize: 1, QueueSize: 1})
	p.Close()

	done := make(chan struct{})
	p.Submit(func() { close(done) })
	<-done
}

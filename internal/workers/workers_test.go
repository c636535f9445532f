// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// mockWorker is a test implementation of the Worker interface
// that tracks how many times Run was called.
type mockWorker struct {
	runCount atomic.Int32
}

func (m *mockWorker) Run() {
	m.runCount.Add(1)
}

func TestWorkers_Run_AllWorkersAreCalled(t *testing.T) {
	w1 := &mockWorker{}
	w2 := &mockWorker{}
	w3 := &mockWorker{}

	ws := New(w1, w2, w3)
	ws.Run()

	for i, w := range []*mockWorker{w1, w2, w3} {
		assert.EqualValues(t, 1, w.runCount.Load(), "worker[%d]", i)
	}
}

func TestWorkers_Run_Empty(t *testing.T) {
	// Should not panic on empty or nil workers list
	New().Run()
	(&Workers{}).Run()
}

func TestWorkers_Run_Concurrent(t *testing.T) {
	// Each worker waits for the other, so sequential execution would deadlock.
	var wg sync.WaitGroup
	wg.Add(2)
	rendezvous := Func(func() {
		wg.Done()
		wg.Wait()
	})

	done := make(chan struct{})
	go func() {
		New(rendezvous, rendezvous).Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not run concurrently")
	}
}

func TestWorkers_Run_WaitsForAll(t *testing.T) {
	release := make(chan struct{})
	var finished atomic.Bool

	ws := New()
	ws.Add(Func(func() {}))
	ws.Add(Func(func() {
		<-release
		finished.Store(true)
	}))
	assert.Equal(t, 2, ws.Len())

	done := make(chan struct{})
	go func() {
		ws.Run()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Run returned before every worker stopped")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-done
	assert.True(t, finished.Load())
}

func TestWorkers_Run_MultipleRuns(t *testing.T) {
	w := &mockWorker{}
	ws := New(w)

	ws.Run()
	ws.Run()
	ws.Run()

	assert.EqualValues(t, 3, w.runCount.Load())
}

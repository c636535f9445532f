// Package workers runs a fixed set of long lived workers, such as the sync
// listeners and the admin HTTP server of the device daemon, and waits for
// all of them to stop.
package workers

// Worker is the interface that must be implemented by any background worker.
// Run blocks until the worker stops.
type Worker interface {
	Run()
}

// Func adapts a plain function to [Worker].
type Func func()

func (f Func) Run() {
	f()
}

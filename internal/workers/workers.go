package workers

import "golang.org/x/sync/errgroup"

type Workers struct {
	workers []Worker
}

func New(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

func (w *Workers) Add(worker Worker) {
	w.workers = append(w.workers, worker)
}

func (w *Workers) Len() int {
	return len(w.workers)
}

// Run starts every worker on its own goroutine and returns once all of them
// have returned.
func (w *Workers) Run() {
	var g errgroup.Group
	for _, worker := range w.workers {
		g.Go(func() error {
			worker.Run()
			return nil
		})
	}
	_ = g.Wait()
}

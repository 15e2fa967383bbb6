package queue

import (
	"context"
	"sync"
)

// Recorder keeps every job in memory. Useful in tests and local runs.
type Recorder struct {
	mu   sync.Mutex
	jobs []Job
	Err  error
}

func (r *Recorder) Enqueue(_ context.Context, queue, job string, payload map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.jobs = append(r.jobs, NewJob(queue, job, payload))
	return nil
}

func (r *Recorder) Jobs() []Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Job(nil), r.jobs...)
}

// Find returns the jobs with the given name.
func (r *Recorder) Find(job string) []Job {
	var out []Job
	for _, j := range r.Jobs() {
		if j.Name == job {
			out = append(out, j)
		}
	}
	return out
}

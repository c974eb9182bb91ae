package cron

import (
	"context"
	"fmt"
)

// Job represents a scheduled task that runs inside the cron worker.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry tracks registered cron jobs.
type Registry struct {
	jobs  []Job
	names map[string]struct{}
}

// NewRegistry builds a registry preloaded with the provided jobs. Nil jobs and
// repeated names are skipped.
func NewRegistry(jobs ...Job) *Registry {
	registry := &Registry{names: make(map[string]struct{})}
	for _, job := range jobs {
		_ = registry.Register(job)
	}
	return registry
}

// Register adds a job to the registry. Job names must be unique.
func (r *Registry) Register(job Job) error {
	if job == nil {
		return fmt.Errorf("job required")
	}
	if _, exists := r.names[job.Name()]; exists {
		return fmt.Errorf("job %q already registered", job.Name())
	}
	r.names[job.Name()] = struct{}{}
	r.jobs = append(r.jobs, job)
	return nil
}

// Jobs returns the registered jobs in the order they were added.
func (r *Registry) Jobs() []Job {
	jobs := make([]Job, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}

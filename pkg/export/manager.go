package export

import (
	"context"
	"sync"

	"github.com/adforge/adforge/pkg/errors"
	"github.com/google/uuid"
)

// Manager runs export jobs in the background and keeps them queryable
// by ID. Jobs are retained until Remove so clients can poll and then
// download.
type Manager struct {
	exporter *Exporter

	mu   sync.RWMutex
	jobs map[uuid.UUID]*Job
}

// NewManager creates a Manager driving the given exporter.
func NewManager(e *Exporter) *Manager {
	return &Manager{exporter: e, jobs: make(map[uuid.UUID]*Job)}
}

// Start validates the request and launches the job. Validation errors
// surface immediately; render errors land on the job.
func (m *Manager) Start(ctx context.Context, req Request) (*Job, error) {
	if err := m.exporter.validate(req); err != nil {
		return nil, err
	}

	job := newJob(req.Kind)
	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	go func() {
		job.start()
		if err := m.exporter.run(ctx, req, job); err != nil {
			job.fail(err)
		}
	}()
	return job, nil
}

// Get returns a job by ID.
func (m *Manager) Get(id uuid.UUID) (*Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeJobNotFound, "no export job %s", id)
	}
	return job, nil
}

// Remove drops a finished job. Running jobs are left in place.
func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[id]; ok {
		switch job.Status() {
		case StatusDone, StatusFailed:
			delete(m.jobs, id)
		}
	}
}

// List returns every tracked job.
func (m *Manager) List() []*Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, j)
	}
	return out
}

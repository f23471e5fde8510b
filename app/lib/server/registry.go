package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Registry tracks in-flight connection workers. Finished workers report on
// a channel that a single reaper goroutine drains.
type Registry struct {
	active map[uuid.UUID]time.Time
	done   chan uuid.UUID
	reaped chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
	logger zerolog.Logger
}

func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		active: make(map[uuid.UUID]time.Time),
		done:   make(chan uuid.UUID, 64),
		reaped: make(chan struct{}),
		logger: logger,
	}
}

// Start runs the reaper. It exits after Close once every worker is reaped.
func (r *Registry) Start() {
	go func() {
		defer close(r.reaped)
		for id := range r.done {
			r.remove(id)
		}
	}()
}

// Spawn runs fn on its own goroutine under id.
func (r *Registry) Spawn(id uuid.UUID, fn func()) {
	r.mu.Lock()
	r.active[id] = time.Now()
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() { r.done <- id }()
		fn()
	}()
}

func (r *Registry) remove(id uuid.UUID) {
	r.mu.Lock()
	started, ok := r.active[id]
	delete(r.active, id)
	remaining := len(r.active)
	r.mu.Unlock()

	if ok {
		r.logger.Debug().
			Str("conn_id", id.String()).
			Dur("elapsed", time.Since(started)).
			Int("active", remaining).
			Msg("reaped worker")
	}
}

func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}

// Close waits for every spawned worker, then for the reaper to drain.
func (r *Registry) Close() {
	r.wg.Wait()
	close(r.done)
	<-r.reaped
}

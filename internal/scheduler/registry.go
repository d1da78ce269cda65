package scheduler

import (
	"sync"

	"clipforge/internal/media"
)

// processRegistry tracks every live engine process so cancellation can kill
// them all regardless of which worker is blocked reading output.
type processRegistry struct {
	mu    sync.Mutex
	procs map[string]*media.Process
}

func newProcessRegistry() *processRegistry {
	return &processRegistry{procs: make(map[string]*media.Process)}
}

func (r *processRegistry) add(jobID string, proc *media.Process) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.procs[jobID] = proc
}

func (r *processRegistry) remove(jobID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.procs, jobID)
}

// killAll terminates every registered process group.
func (r *processRegistry) killAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, proc := range r.procs {
		proc.Kill()
	}
}

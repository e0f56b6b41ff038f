package mesh

import (
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/logger"
)

// ID is a registry handle. IDs start at 0, grow monotonically and are never
// reused within a process.
type ID int

// Registry tracks live meshes by ID so they can be addressed indirectly.
//
// Lookups are safe from any goroutine; disposing meshes touches GPU buffers
// and belongs on the render thread.
type Registry struct {
	mu     sync.RWMutex
	next   ID
	meshes map[ID]*Mesh
	log    *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		meshes: make(map[ID]*Mesh),
		log:    logger.Named("mesh"),
	}
}

func (r *Registry) register(m *Mesh) ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.next
	r.next++
	r.meshes[id] = m
	return id
}

func (r *Registry) remove(id ID) *Mesh {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.meshes[id]
	if !ok {
		return nil
	}
	delete(r.meshes, id)
	return m
}

// Lookup returns the mesh registered under id.
func (r *Registry) Lookup(id ID) (*Mesh, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.meshes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return m, nil
}

// Release removes id from the registry and disposes its mesh. It reports
// whether the id was registered.
func (r *Registry) Release(id ID) bool {
	m := r.remove(id)
	if m == nil {
		return false
	}
	m.Dispose()
	return true
}

// ReleaseAll disposes every tracked mesh, dropping its buffers and its
// texture, vertex and shader references, then clears the registry. IDs keep
// counting from where they were.
func (r *Registry) ReleaseAll() {
	r.mu.Lock()
	meshes := r.meshes
	r.meshes = make(map[ID]*Mesh)
	r.mu.Unlock()

	for _, m := range meshes {
		m.Dispose()
	}
	r.log.Debug("registry cleared", zap.Int("released", len(meshes)))
}

// Len returns the number of registered meshes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.meshes)
}

// IDs returns the registered IDs in ascending order.
func (r *Registry) IDs() []ID {
	r.mu.RLock()
	ids := make([]ID, 0, len(r.meshes))
	for id := range r.meshes {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	slices.Sort(ids)
	return ids
}

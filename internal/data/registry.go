package data

import (
	"sync"

	"github.com/ekefan/afitlms/internal/domain/model"
)

// Registry maps enrolled device identifiers to identities. A secondary index
// by unique id backs the duplicate-enrollment check.
type Registry struct {
	mu         sync.RWMutex
	byDevice   map[string]model.Identity
	byUniqueID map[string]string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byDevice:   make(map[string]model.Identity),
		byUniqueID: make(map[string]string),
	}
}

// Put binds a device identifier to an identity, replacing any previous binding
// of the same device. Both indexes update together.
func (r *Registry) Put(deviceID string, identity model.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byDevice[deviceID]; ok {
		delete(r.byUniqueID, prev.UniqueID)
	}
	r.byDevice[deviceID] = identity
	r.byUniqueID[identity.UniqueID] = deviceID
}

// GetByDevice looks up the identity bound to a device identifier.
func (r *Registry) GetByDevice(deviceID string) (model.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identity, ok := r.byDevice[deviceID]
	return identity, ok
}

// ContainsUniqueID reports whether any device is bound to the given unique id.
func (r *Registry) ContainsUniqueID(uniqueID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byUniqueID[uniqueID]
	return ok
}

// Len returns the number of bound devices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byDevice)
}

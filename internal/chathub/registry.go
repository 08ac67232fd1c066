package chathub

import "strangerchat/backend/internal/models"

// Registry maps a connection id to the profile it registered with find-stranger.
// It is not safe for concurrent use; ManagerService guards it.
type Registry struct {
	profiles map[string]*models.UserProfile
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{profiles: make(map[string]*models.UserProfile)}
}

// Register stores or overwrites the profile of its connection.
func (r *Registry) Register(profile *models.UserProfile) {
	r.profiles[profile.ConnectionID] = profile
}

// Lookup returns the profile of connID, if any.
func (r *Registry) Lookup(connID string) (*models.UserProfile, bool) {
	p, ok := r.profiles[connID]
	return p, ok
}

// Remove forgets connID. Removing an unknown id is a no-op.
func (r *Registry) Remove(connID string) {
	delete(r.profiles, connID)
}

// Len returns the number of registered profiles.
func (r *Registry) Len() int {
	return len(r.profiles)
}

package roomconfig

import "sync"

// Registry holds at most one open room view per session. Opening another room
// discards the previous view and its draft.
type Registry struct {
	backend Backend
	opts    Options

	mu    sync.Mutex
	views map[string]*View
}

func NewRegistry(backend Backend, opts Options) *Registry {
	return &Registry{
		backend: backend,
		opts:    opts,
		views:   make(map[string]*View),
	}
}

// Open returns the session's view of scope.RoomID in scope.OfficeID, creating
// it when the session has no view of that room in that office. created reports
// whether the caller should run the initial Load.
func (r *Registry) Open(sessionID string, scope Scope) (view *View, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.views[sessionID]; ok {
		if v.RoomID() == scope.RoomID && v.OfficeID() == scope.OfficeID && !v.Closed() {
			v.SetToken(scope.Token)
			return v, false
		}
		v.Close()
	}
	v := NewView(r.backend, scope, r.opts)
	r.views[sessionID] = v
	return v, true
}

// Get returns the open view of roomID for the session.
func (r *Registry) Get(sessionID, roomID string) (*View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.views[sessionID]
	if !ok || v.Closed() || v.RoomID() != roomID {
		return nil, false
	}
	return v, true
}

// CloseRoom closes the session's view when it shows roomID.
func (r *Registry) CloseRoom(sessionID, roomID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.views[sessionID]
	if !ok || v.RoomID() != roomID {
		return false
	}
	v.Close()
	delete(r.views, sessionID)
	return true
}

// CloseSession closes whatever the session has open. Used on logout.
func (r *Registry) CloseSession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.views[sessionID]; ok {
		v.Close()
		delete(r.views, sessionID)
	}
}

// Views returns the open views, dropping closed ones.
func (r *Registry) Views() []*View {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*View, 0, len(r.views))
	for id, v := range r.views {
		if v.Closed() {
			delete(r.views, id)
			continue
		}
		out = append(out, v)
	}
	return out
}

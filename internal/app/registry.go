package app

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dche/callsign/internal/core"
	"github.com/dche/callsign/internal/domain"
)

// Conn is one registered connection: signaling attributes plus the
// transport used to reach it.
type Conn struct {
	*domain.Client
	Transport core.SignalConnection
}

// Registry is the set of currently-attached connections, keyed by an
// admit-time key so unannounced connections stay addressable. Not safe
// for concurrent use: the hub serializes every access behind its
// dispatch lock.
type Registry struct {
	conns map[string]*Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*Conn)}
}

// Admit registers a transport in the unannounced state. The announced
// id and user id stay empty until a "new" message arrives.
func (r *Registry) Admit(transport core.SignalConnection) *Conn {
	conn := &Conn{
		Client:    &domain.Client{Key: uuid.NewString()},
		Transport: transport,
	}
	r.conns[conn.Key] = conn
	log.Debug().Str("module", "app.registry").Str("key", conn.Key).Msg("admitted connection")
	return conn
}

// Remove deletes a connection. Returns false if it was already gone,
// so removal side effects run at most once per connection.
func (r *Registry) Remove(key string) bool {
	if _, ok := r.conns[key]; !ok {
		return false
	}
	delete(r.conns, key)
	log.Debug().Str("module", "app.registry").Str("key", key).Msg("removed connection")
	return true
}

// Has reports whether the connection is still registered.
func (r *Registry) Has(key string) bool {
	_, ok := r.conns[key]
	return ok
}

// FindByID resolves an announced connection id with an exact,
// case-sensitive string match. Unannounced connections never match.
func (r *Registry) FindByID(id string) *Conn {
	if id == "" {
		return nil
	}
	for _, c := range r.conns {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// All returns every registered connection, in no particular order.
func (r *Registry) All() []*Conn {
	out := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}

// TaggedWith returns the connections currently tagged with sessionID.
func (r *Registry) TaggedWith(sessionID string) []*Conn {
	if sessionID == "" {
		return nil
	}
	var out []*Conn
	for _, c := range r.conns {
		if c.SessionID == sessionID {
			out = append(out, c)
		}
	}
	return out
}

// Len is the number of registered connections.
func (r *Registry) Len() int {
	return len(r.conns)
}

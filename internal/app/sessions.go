package app

import "github.com/dche/callsign/internal/domain"

// SessionStore tracks in-progress call pairings. Slice-backed; lookups
// and removal act on the first match. Duplicate ids never reach the
// store: the hub rejects an offer whose session id is already present,
// so at most one record exists per id. Not safe for concurrent use;
// the hub serializes access.
type SessionStore struct {
	sessions []*domain.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// Create appends a session pairing from and to.
func (s *SessionStore) Create(id, from, to string) *domain.Session {
	sess := &domain.Session{ID: id, From: from, To: to}
	s.sessions = append(s.sessions, sess)
	return sess
}

// Find returns the session with the given id, or nil.
func (s *SessionStore) Find(id string) *domain.Session {
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

// Remove deletes the first session with the given id. Sessions are
// only ever removed here, on an explicit bye: a leg disconnecting
// leaves its session in place so the partner's later bye still
// resolves it.
func (s *SessionStore) Remove(id string) bool {
	for i, sess := range s.sessions {
		if sess.ID == id {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			return true
		}
	}
	return false
}

// Len is the number of live sessions.
func (s *SessionStore) Len() int {
	return len(s.sessions)
}

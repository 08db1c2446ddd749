package app

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dche/callsign/internal/codec"
	"github.com/dche/callsign/internal/core"
	"github.com/dche/callsign/internal/domain"
)

// Presence mirrors the set of logged-in users to an external store.
// Implementations must not block the caller on failures.
type Presence interface {
	MarkLoggedIn(userIDs []string)
	MarkLoggedOut(userID string)
}

// Hub is the signaling engine: it owns the connection registry and the
// session store, routes every decoded message, and fans presence
// updates out. All shared state sits behind one mutex; each message is
// handled to completion inside a single critical section, so handlers
// never observe another handler's partial mutations.
type Hub struct {
	mu       sync.Mutex
	registry *Registry
	sessions *SessionStore
	presence Presence
	started  time.Time
}

func NewHub(registry *Registry, sessions *SessionStore, presence Presence) *Hub {
	return &Hub{
		registry: registry,
		sessions: sessions,
		presence: presence,
		started:  time.Now(),
	}
}

// Connect admits a freshly-accepted transport into the registry.
func (h *Hub) Connect(transport core.SignalConnection) *Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registry.Admit(transport)
}

// HandleFrame processes one wire frame from conn. A frame that fails
// to decompress, or fails to decode after decompressing, is logged and
// dropped without acting on it.
func (h *Hub) HandleFrame(conn *Conn, frame core.Frame) {
	msg, err := codec.DecodeFrame(frame)
	if err != nil {
		log.Error().Err(err).Str("module", "app.hub").Str("key", conn.Key).Msg("dropping frame")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	// The connection may have been evicted between the read and this
	// dispatch turn; a removed connection gets no further handling.
	if !h.registry.Has(conn.Key) {
		return
	}
	h.dispatch(conn, msg)
}

func (h *Hub) dispatch(conn *Conn, msg codec.Inbound) {
	switch m := msg.(type) {
	case codec.Announce:
		h.handleAnnounce(conn, m)
	case codec.Push:
		h.handlePush(conn, m)
	case codec.Offer:
		h.handleOffer(conn, m)
	case codec.Answer:
		h.handleAnswer(conn, m)
	case codec.Candidate:
		h.handleCandidate(conn, m)
	case codec.Bye:
		h.handleBye(conn, m)
	case codec.Keepalive:
		h.send(conn, codec.KeepaliveEcho())
	case codec.Unknown:
		log.Warn().Str("module", "app.hub").Str("type", m.Type).Msg("unhandled message type")
	}
}

func (h *Hub) handleAnnounce(conn *Conn, m codec.Announce) {
	conn.ID = m.ID
	conn.UserID = m.UserID
	conn.InCall = false
	log.Info().Str("module", "app.hub").Str("id", conn.ID).Str("user_id", conn.UserID).Msg("announced")
	h.broadcastPeers()
}

func (h *Hub) handlePush(conn *Conn, m codec.Push) {
	target := h.registry.FindByID(m.To)
	if target == nil {
		log.Debug().Str("module", "app.hub").Str("to", m.To).Msg("push target not found")
		return
	}
	h.send(target, codec.Outbound{Type: "push", Data: codec.PushData{
		To:       target.ID,
		FromUser: m.FromUser,
	}})
}

func (h *Hub) handleOffer(conn *Conn, m codec.Offer) {
	target := h.registry.FindByID(m.To)
	if target == nil {
		log.Debug().Str("module", "app.hub").Str("to", m.To).Msg("offer target not found")
		return
	}
	if h.sessions.Find(m.SessionID) != nil {
		log.Warn().Str("module", "app.hub").Str("session_id", m.SessionID).Msg("duplicate session id, offer dropped")
		return
	}

	h.send(target, codec.Outbound{Type: "offer", Data: codec.OfferData{
		To:          target.ID,
		From:        conn.ID,
		Media:       m.Media,
		FromUser:    m.FromUser,
		SessionID:   m.SessionID,
		Description: m.Description,
	}})

	target.SessionID = m.SessionID
	conn.SessionID = m.SessionID
	h.sessions.Create(m.SessionID, conn.ID, target.ID)
}

func (h *Hub) handleAnswer(conn *Conn, m codec.Answer) {
	out := codec.Outbound{Type: "answer", Data: codec.AnswerData{
		From:        conn.ID,
		To:          m.To,
		Description: m.Description,
	}}
	// Double guard: target id AND current session id must both match,
	// so a stale answer never reaches a connection that has since
	// joined a different call under a reused id.
	for _, c := range h.registry.All() {
		if c.ID == m.To && c.SessionID == m.SessionID {
			h.send(c, out)
		}
	}

	h.setCallStatus(true, conn.ID, m.To)
	h.broadcastCallUpdate(m.SessionID)
}

func (h *Hub) handleCandidate(conn *Conn, m codec.Candidate) {
	out := codec.Outbound{Type: "candidate", Data: codec.CandidateData{
		From:      conn.ID,
		To:        m.To,
		Candidate: m.Candidate,
	}}
	for _, c := range h.registry.All() {
		if c.ID == m.To && c.SessionID == m.SessionID {
			h.send(c, out)
		}
	}
}

func (h *Hub) handleBye(conn *Conn, m codec.Bye) {
	sess := h.sessions.Find(m.SessionID)
	if sess == nil {
		h.send(conn, codec.Outbound{Type: "error", Data: codec.ErrorData{
			Error: "Invalid session " + m.SessionID,
		}})
		return
	}

	h.setCallStatus(false, sess.From, sess.To)

	tagged := h.registry.TaggedWith(sess.ID)
	for _, c := range tagged {
		h.send(c, codec.Outbound{Type: "bye", Data: codec.ByeData{
			SessionID: sess.ID,
			From:      m.From,
			To:        sess.OtherLeg(c.ID),
			CallBack:  m.CallBack,
		}})
	}

	// The call-scoped refresh goes out while the legs are still
	// tagged, so it reaches everyone except them.
	h.broadcastCallUpdate(sess.ID)

	for _, c := range tagged {
		c.ClearPaired()
	}
	h.sessions.Remove(sess.ID)
	log.Info().Str("module", "app.hub").Str("session_id", sess.ID).Msg("session ended")
}

// Disconnect handles a transport close: registry removal (at most
// once), a leave notice to everyone remaining, then a full presence
// refresh. Sessions referencing the departed leg stay in the store
// until an explicit bye resolves them.
func (h *Hub) Disconnect(conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.registry.Remove(conn.Key) {
		return
	}
	log.Info().Str("module", "app.hub").Str("id", conn.ID).Msg("disconnected")

	out := codec.Leave(conn.ID)
	for _, c := range h.registry.All() {
		h.send(c, out)
	}
	h.broadcastPeers()

	if h.presence != nil && conn.UserID != "" {
		h.presence.MarkLoggedOut(conn.UserID)
	}
}

// ForceLogout evicts every connection announced under userID. The
// evicted transports are closed without any notification to the user.
func (h *Hub) ForceLogout(userID string) {
	h.mu.Lock()
	var evicted []*Conn
	for _, c := range h.registry.All() {
		if c.UserID == userID {
			h.registry.Remove(c.Key)
			evicted = append(evicted, c)
		}
	}
	h.mu.Unlock()

	if len(evicted) == 0 {
		return
	}
	log.Info().Str("module", "app.hub").Str("user_id", userID).Int("connections", len(evicted)).Msg("force logout")
	for _, c := range evicted {
		c.Transport.Close()
	}
	if h.presence != nil {
		h.presence.MarkLoggedOut(userID)
	}
}

// broadcastPeers sends a full presence snapshot to every connection
// and mirrors the logged-in set to the presence store.
func (h *Hub) broadcastPeers() {
	conns := h.registry.All()
	snapshot := make([]domain.Peer, 0, len(conns))
	users := make([]string, 0, len(conns))
	for _, c := range conns {
		snapshot = append(snapshot, c.Snapshot())
		if c.UserID != "" {
			users = append(users, c.UserID)
		}
	}

	out := codec.Peers(snapshot)
	for _, c := range conns {
		h.send(c, out)
	}

	if h.presence != nil && len(users) > 0 {
		h.presence.MarkLoggedIn(users)
	}
}

// broadcastCallUpdate sends a snapshot of the session's legs to every
// connection NOT tagged with the session: the participants already
// know their own state from the answer/bye exchange, everyone else
// learns the two just entered or left a call.
func (h *Hub) broadcastCallUpdate(sessionID string) {
	var snapshot []domain.Peer
	for _, c := range h.registry.TaggedWith(sessionID) {
		snapshot = append(snapshot, c.Snapshot())
	}

	out := codec.Peers(snapshot)
	for _, c := range h.registry.All() {
		if c.SessionID != sessionID {
			h.send(c, out)
		}
	}
}

// setCallStatus flips both legs' in-call flag. If either leg cannot be
// resolved the registry is left untouched.
func (h *Hub) setCallStatus(inCall bool, aID, bID string) {
	a := h.registry.FindByID(aID)
	b := h.registry.FindByID(bID)
	if a == nil || b == nil {
		return
	}
	a.InCall = inCall
	b.InCall = inCall
}

// send encodes and transmits one message. It never propagates a
// failure: one failed write does not mean the connection is dead, and
// close detection is the transport's job.
func (h *Hub) send(conn *Conn, msg codec.Outbound) {
	frame, err := codec.EncodeFrame(msg)
	if err != nil {
		log.Error().Err(err).Str("module", "app.hub").Str("type", msg.Type).Msg("encode failed")
		return
	}
	if err := conn.Transport.TrySend(frame); err != nil {
		log.Error().Err(err).Str("module", "app.hub").Str("type", msg.Type).Str("id", conn.ID).Msg("send failed")
	}
}

// PeerCount is the number of connected peers, for the debug surface.
func (h *Hub) PeerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registry.Len()
}

// Uptime formats the time since the hub started as HH:MM:SS.
func (h *Hub) Uptime() string {
	secs := int(time.Since(h.started).Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
}

// PeerList is the comma-joined list of connected user identities.
func (h *Hub) PeerList() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var users []string
	for _, c := range h.registry.All() {
		users = append(users, c.UserID)
	}
	return strings.Join(users, ",")
}

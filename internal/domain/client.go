// Package domain contains entities without logic, just meta-data.
package domain

// Client is one live transport attachment and its signaling attributes.
// ID stays empty until the client announces itself; Key is assigned by the
// registry on admission so unannounced connections remain addressable.
type Client struct {
	Key       string
	ID        string
	UserID    string
	InCall    bool
	SessionID string
}

// Peer is the projection of a Client sent to other clients in presence
// updates. Built fresh per broadcast, never stored.
type Peer struct {
	ID     string `cbor:"id"`
	UserID string `cbor:"user_id"`
	InCall bool   `cbor:"in_call"`
}

// Snapshot returns the client's presence projection.
func (c *Client) Snapshot() Peer {
	return Peer{ID: c.ID, UserID: c.UserID, InCall: c.InCall}
}

// ClearPaired resets the call attributes when a pairing ends.
func (c *Client) ClearPaired() {
	c.SessionID = ""
	c.InCall = false
}

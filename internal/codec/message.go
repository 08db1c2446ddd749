package codec

import (
	"fmt"
	"math"
	"strconv"

	"github.com/pion/webrtc/v4"
)

// Inbound is the tagged union of messages a client can send. Exactly
// one variant exists per wire type; anything else decodes to Unknown.
type Inbound interface {
	inbound()
}

// Description is an SDP payload carried between peers. The relay never
// parses the SDP body; only the type tag is checked against the legal
// SDP types at the decode boundary.
type Description struct {
	Type string `cbor:"type"`
	SDP  string `cbor:"sdp"`
}

// Valid reports whether the type tag names a legal SDP type.
func (d Description) Valid() bool {
	return webrtc.NewSDPType(d.Type) != webrtc.SDPTypeUnknown
}

// SessionDescription returns the payload in pion's representation, for
// consumers that feed it straight into a PeerConnection.
func (d Description) SessionDescription() webrtc.SessionDescription {
	return webrtc.SessionDescription{Type: webrtc.NewSDPType(d.Type), SDP: d.SDP}
}

// Announce ("new") registers the sender's identity.
type Announce struct {
	ID     string
	UserID string
	InCall bool
}

// Push asks the relay to poke a peer, e.g. to ring a callee's device.
type Push struct {
	To       string
	FromUser string
}

// Offer starts a negotiation with the addressed peer.
type Offer struct {
	To          string
	Media       string
	FromUser    string
	SessionID   string
	Description Description
}

// Answer accepts a negotiation.
type Answer struct {
	To          string
	SessionID   string
	Description Description
}

// Candidate carries one network-path candidate to the addressed peer.
type Candidate struct {
	To        string
	SessionID string
	Candidate webrtc.ICECandidateInit
}

// Bye tears a session down.
type Bye struct {
	SessionID string
	From      string
	CallBack  string
}

// Keepalive is a liveness probe, echoed back to the sender.
type Keepalive struct{}

// Unknown is any message whose type tag matches no variant.
type Unknown struct {
	Type string
}

func (Announce) inbound()  {}
func (Push) inbound()      {}
func (Offer) inbound()     {}
func (Answer) inbound()    {}
func (Candidate) inbound() {}
func (Bye) inbound()       {}
func (Keepalive) inbound() {}
func (Unknown) inbound()   {}

// rawInbound is the superset of fields across all inbound messages.
// Ids may arrive as numbers or strings; they are coerced to canonical
// string form here so every later comparison is an exact string match.
type rawInbound struct {
	Type        string                  `cbor:"type"`
	ID          any                     `cbor:"id"`
	UserID      string                  `cbor:"user_id"`
	InCall      bool                    `cbor:"in_call"`
	To          any                     `cbor:"to"`
	FromUser    string                  `cbor:"from_user"`
	OfferUser   string                  `cbor:"fromUser"`
	SessionID   any                     `cbor:"session_id"`
	Media       string                  `cbor:"media"`
	Description Description             `cbor:"description"`
	Candidate   webrtc.ICECandidateInit `cbor:"candidate"`
	From        string                  `cbor:"from"`
	CallBack    string                  `cbor:"callBack"`
}

// DecodeMessage validates encoded bytes into the inbound union.
func DecodeMessage(encoded []byte) (Inbound, error) {
	var raw rawInbound
	if err := Unmarshal(encoded, &raw); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}

	switch raw.Type {
	case "new":
		return Announce{ID: canonicalID(raw.ID), UserID: raw.UserID, InCall: raw.InCall}, nil
	case "push":
		return Push{To: canonicalID(raw.To), FromUser: raw.FromUser}, nil
	case "offer":
		if !raw.Description.Valid() {
			return nil, fmt.Errorf("offer: bad description type %q", raw.Description.Type)
		}
		return Offer{
			To:          canonicalID(raw.To),
			Media:       raw.Media,
			FromUser:    raw.OfferUser,
			SessionID:   canonicalID(raw.SessionID),
			Description: raw.Description,
		}, nil
	case "answer":
		if !raw.Description.Valid() {
			return nil, fmt.Errorf("answer: bad description type %q", raw.Description.Type)
		}
		return Answer{
			To:          canonicalID(raw.To),
			SessionID:   canonicalID(raw.SessionID),
			Description: raw.Description,
		}, nil
	case "candidate":
		return Candidate{
			To:        canonicalID(raw.To),
			SessionID: canonicalID(raw.SessionID),
			Candidate: raw.Candidate,
		}, nil
	case "bye":
		return Bye{SessionID: canonicalID(raw.SessionID), From: raw.From, CallBack: raw.CallBack}, nil
	case "keepalive":
		return Keepalive{}, nil
	default:
		return Unknown{Type: raw.Type}, nil
	}
}

// canonicalID renders a message-supplied id as its canonical string.
// Clients send ids as either strings or numbers depending on platform.
func canonicalID(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

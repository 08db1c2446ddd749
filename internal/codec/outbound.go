package codec

import (
	"github.com/pion/webrtc/v4"

	"github.com/dche/callsign/internal/domain"
)

// Outbound is the envelope every relayed message is wrapped in.
type Outbound struct {
	Type string `cbor:"type"`
	Data any    `cbor:"data"`
}

// PushData rings the addressed peer with the caller's identity.
type PushData struct {
	To       string `cbor:"to"`
	FromUser string `cbor:"fromUser"`
}

// OfferData is the offer as forwarded to the callee.
type OfferData struct {
	To          string      `cbor:"to"`
	From        string      `cbor:"from"`
	Media       string      `cbor:"media"`
	FromUser    string      `cbor:"fromUser"`
	SessionID   string      `cbor:"session_id"`
	Description Description `cbor:"description"`
}

// AnswerData is the answer as forwarded to the caller.
type AnswerData struct {
	From        string      `cbor:"from"`
	To          string      `cbor:"to"`
	Description Description `cbor:"description"`
}

// CandidateData is a network-path candidate forwarded to its target.
type CandidateData struct {
	From      string                  `cbor:"from"`
	To        string                  `cbor:"to"`
	Candidate webrtc.ICECandidateInit `cbor:"candidate"`
}

// ByeData tells each leg that a session ended and who the counterpart was.
type ByeData struct {
	SessionID string `cbor:"session_id"`
	From      string `cbor:"from"`
	To        string `cbor:"to"`
	CallBack  string `cbor:"callBack,omitempty"`
}

// ErrorData names a protocol error back to the sender.
type ErrorData struct {
	Error string `cbor:"error"`
}

// Peers builds the presence broadcast envelope.
func Peers(snapshot []domain.Peer) Outbound {
	return Outbound{Type: "peers", Data: snapshot}
}

// Leave announces a departed connection to everyone remaining.
func Leave(connID string) Outbound {
	return Outbound{Type: "leave", Data: connID}
}

// KeepaliveEcho answers a liveness probe.
func KeepaliveEcho() Outbound {
	return Outbound{Type: "keepalive", Data: struct{}{}}
}

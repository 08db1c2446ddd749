package domain

// Session is one in-progress call pairing. The id is caller-supplied and
// treated as opaque; From and To are the conn ids of the two legs at the
// time the offer was forwarded.
type Session struct {
	ID   string
	From string
	To   string
}

// OtherLeg returns the id of the leg opposite to connID. Used when fanning
// out a bye so each recipient learns who the counterpart was.
func (s *Session) OtherLeg(connID string) string {
	if connID == s.From {
		return s.To
	}
	return s.From
}

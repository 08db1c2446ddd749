package app

import "testing"

func TestRegistryFindByID(t *testing.T) {
	r := NewRegistry()
	conn := r.Admit(&fakeTransport{})
	conn.ID = "Peer1"

	if got := r.FindByID("Peer1"); got != conn {
		t.Error("exact id must resolve")
	}
	if r.FindByID("peer1") != nil {
		t.Error("lookup is case-sensitive")
	}
	if r.FindByID("") != nil {
		t.Error("an empty id must never match, even unannounced connections")
	}
}

func TestRegistryRemoveIdempotent(t *testing.T) {
	r := NewRegistry()
	conn := r.Admit(&fakeTransport{})

	if !r.Remove(conn.Key) {
		t.Fatal("first removal must report true")
	}
	if r.Remove(conn.Key) {
		t.Error("second removal must report false")
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d after removal", r.Len())
	}
}

func TestRegistryTaggedWith(t *testing.T) {
	r := NewRegistry()
	a := r.Admit(&fakeTransport{})
	b := r.Admit(&fakeTransport{})
	r.Admit(&fakeTransport{})

	a.SessionID = "s1"
	b.SessionID = "s1"

	if got := r.TaggedWith("s1"); len(got) != 2 {
		t.Errorf("TaggedWith(s1) returned %d connections, want 2", len(got))
	}
	if got := r.TaggedWith(""); got != nil {
		t.Error("TaggedWith(\"\") must not match unpaired connections")
	}
}

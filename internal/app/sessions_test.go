package app

import "testing"

func TestSessionStoreLifecycle(t *testing.T) {
	s := NewSessionStore()
	s.Create("s1", "a", "b")

	sess := s.Find("s1")
	if sess == nil {
		t.Fatal("created session must be findable")
	}
	if sess.OtherLeg("a") != "b" || sess.OtherLeg("b") != "a" {
		t.Error("OtherLeg must name the opposite leg")
	}

	if !s.Remove("s1") {
		t.Fatal("removal of a live session must succeed")
	}
	if s.Find("s1") != nil {
		t.Error("removed session must not be findable")
	}
	if s.Remove("s1") {
		t.Error("removing a removed session must report false")
	}
}

func TestSessionStoreFirstMatch(t *testing.T) {
	s := NewSessionStore()
	s.Create("s1", "a", "b")
	s.Create("s2", "c", "d")

	if got := s.Find("s2"); got == nil || got.From != "c" {
		t.Error("lookup must not be shadowed by unrelated sessions")
	}
	s.Remove("s1")
	if s.Len() != 1 || s.Find("s2") == nil {
		t.Error("removal must only touch the matching session")
	}
}

package models

import "testing"

func TestHasParticipant(t *testing.T) {
	tour := &Tournament{Participants: []string{"a", "b"}}
	if !tour.HasParticipant("a") {
		t.Errorf("expected a to be a participant")
	}
	if tour.HasParticipant("c") {
		t.Errorf("did not expect c to be a participant")
	}
}

func TestIsFull(t *testing.T) {
	tour := &Tournament{MaxParticipants: 2, Participants: []string{"a"}}
	if tour.IsFull() {
		t.Errorf("one of two slots used, should not be full")
	}
	tour.Participants = append(tour.Participants, "b")
	if !tour.IsFull() {
		t.Errorf("both slots used, should be full")
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusOpen, StatusInProgress, true},
		{StatusOpen, StatusFinished, false}, // no skipping en curso
		{StatusInProgress, StatusFinished, true},
		{StatusInProgress, StatusOpen, false},
		{StatusFinished, StatusOpen, false},
		{StatusFinished, StatusInProgress, false},
		{StatusOpen, StatusOpen, false},
		{StatusOpen, "cancelado", false},
		{"", StatusOpen, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusOpen, StatusInProgress, StatusFinished} {
		if !ValidStatus(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if ValidStatus("draft") {
		t.Errorf("draft is not a known status")
	}
}

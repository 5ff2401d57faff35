package model

import "testing"

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusApproved, StatusRejected, StatusExecuted, StatusFailed} {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if Status("deleted").Valid() {
		t.Error("expected unknown status to be invalid")
	}
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusExecuted, false},
		{StatusPending, StatusFailed, false},
		{StatusApproved, StatusExecuted, true},
		{StatusApproved, StatusFailed, true},
		{StatusApproved, StatusPending, true}, // revert when the target is unreachable
		{StatusApproved, StatusRejected, false},
		{StatusRejected, StatusApproved, false},
		{StatusRejected, StatusPending, false},
		{StatusExecuted, StatusFailed, false},
		{StatusFailed, StatusPending, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.ok {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	terminal := map[Status]bool{
		StatusPending:  false,
		StatusApproved: false,
		StatusRejected: true,
		StatusExecuted: true,
		StatusFailed:   true,
	}
	for s, want := range terminal {
		if got := s.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", s, got, want)
		}
	}
}

func TestStatusResubmittable(t *testing.T) {
	if !StatusRejected.Resubmittable() || !StatusFailed.Resubmittable() {
		t.Error("rejected and failed must be resubmittable")
	}
	for _, s := range []Status{StatusPending, StatusApproved, StatusExecuted} {
		if s.Resubmittable() {
			t.Errorf("%s must not be resubmittable", s)
		}
	}
}

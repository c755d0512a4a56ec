package model

import "testing"

// TestCanTransition walks the full transition table, including every
// illegal pair, so a change to the state machine shows up here first.
func TestCanTransition(t *testing.T) {
	all := []OrderStatus{StatusPending, StatusConfirmed, StatusProcessing, StatusCompleted, StatusCancelled}
	allowed := map[[2]OrderStatus]bool{
		{StatusPending, StatusConfirmed}:    true,
		{StatusPending, StatusCancelled}:    true,
		{StatusConfirmed, StatusProcessing}: true,
		{StatusConfirmed, StatusCancelled}:  true,
		{StatusProcessing, StatusCompleted}: true,
	}
	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]OrderStatus{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Fatalf("CanTransition(%s, %s) = %v; want %v", from, to, got, want)
			}
		}
	}
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{StatusPending, StatusConfirmed, StatusProcessing, StatusCompleted, StatusCancelled} {
		if !s.Valid() {
			t.Fatalf("%s should be valid", s)
		}
	}
	if OrderStatus("shipped").Valid() {
		t.Fatal("unknown status should not be valid")
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleCustomer, RoleStaff, RoleAdmin} {
		if !r.Valid() {
			t.Fatalf("%s should be valid", r)
		}
	}
	if Role("OWNER").Valid() {
		t.Fatal("unknown role should not be valid")
	}
}

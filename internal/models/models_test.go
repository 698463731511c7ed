package models

import (
	"testing"
	"time"
)

func TestClient_GetUserID(t *testing.T) {
	client := &Client{SalesContactID: 123}
	if got := client.GetUserID(); got != 123 {
		t.Errorf("GetUserID() = %d, want 123", got)
	}
}

func TestContract_Status(t *testing.T) {
	tests := []struct {
		name   string
		signed bool
		want   ContractStatus
	}{
		{"unsigned", false, ContractUnsigned},
		{"signed", true, ContractSigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Contract{Signed: tt.signed}
			if got := c.Status(); got != tt.want {
				t.Errorf("Status() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestContract_AmountsValid(t *testing.T) {
	tests := []struct {
		name  string
		total float64
		due   float64
		want  bool
	}{
		{"half paid", 5000, 2500, true},
		{"nothing paid", 5000, 5000, true},
		{"fully paid", 5000, 0, true},
		{"due exceeds total", 5000, 5000.01, false},
		{"negative due", 5000, -1, false},
		{"negative total", -10, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Contract{TotalAmount: tt.total, AmountDue: tt.due}
			if got := c.AmountsValid(); got != tt.want {
				t.Errorf("AmountsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvent_Support(t *testing.T) {
	dana := "Dana"
	empty := ""

	if (&Event{}).Assigned() {
		t.Error("nil support contact should be unassigned")
	}
	if (&Event{SupportContact: &empty}).Assigned() {
		t.Error("empty support contact should be unassigned")
	}
	e := &Event{SupportContact: &dana}
	if !e.SupportedBy("Dana") {
		t.Error("Dana should support the event")
	}
	if e.SupportedBy("Pat") {
		t.Error("Pat should not support the event")
	}
}

func TestEvent_DatesValid(t *testing.T) {
	start := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)
	if !(&Event{StartDate: start, EndDate: start.Add(8 * time.Hour)}).DatesValid() {
		t.Error("start before end should be valid")
	}
	if (&Event{StartDate: start, EndDate: start}).DatesValid() {
		t.Error("start equal to end should be invalid")
	}
}

func TestParseRoleName(t *testing.T) {
	for _, in := range []string{"admin", "Admin", " GESTION "} {
		if _, err := ParseRoleName(in); err != nil {
			t.Errorf("ParseRoleName(%q) unexpected error: %v", in, err)
		}
	}
	if _, err := ParseRoleName("manager"); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestUser_RoleName(t *testing.T) {
	var nilUser *User
	if nilUser.RoleName() != "" {
		t.Error("nil user should have no role")
	}
	u := &User{Role: &Role{Name: RoleSupport}}
	if !u.HasRole(RoleSupport) || u.HasRole(RoleAdmin) {
		t.Error("HasRole mismatch")
	}
}

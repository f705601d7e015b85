package escalation

import (
	"testing"

	"github.com/careconnect/go-patient-alerts/internal/directory"
	"github.com/careconnect/go-patient-alerts/internal/models"
)

func resolverFixture(nurseOnCall, physicianOnCall bool) (*directory.Directory, *Resolver) {
	dir := directory.New([]models.Provider{
		{ID: "nurse_1", Role: "Registered Nurse", OnCall: nurseOnCall},
		{ID: "dr_1", Role: "Surgeon", OnCall: physicianOnCall},
		{ID: "nurse_2", Role: "Registered Nurse", OnCall: false},
	})
	return dir, NewResolver(dir, "nurse_1", "dr_1")
}

func ids(providers []models.Provider) []string {
	out := make([]string, 0, len(providers))
	for _, p := range providers {
		out = append(out, p.ID)
	}
	return out
}

func TestResolver_PrimaryNurseOnly(t *testing.T) {
	_, r := resolverFixture(true, true)

	alert := &models.Alert{RiskLevel: models.RiskLevelModerate, Priority: models.PriorityHigh}
	got := ids(r.Resolve(alert))

	if len(got) != 1 || got[0] != "nurse_1" {
		t.Errorf("expected [nurse_1] for non-critical alert, got %v", got)
	}
}

func TestResolver_CriticalAddsPhysician(t *testing.T) {
	_, r := resolverFixture(true, true)

	alert := &models.Alert{RiskLevel: models.RiskLevelCritical, Priority: models.PriorityUrgent}
	got := ids(r.Resolve(alert))

	if len(got) != 2 || got[0] != "nurse_1" || got[1] != "dr_1" {
		t.Errorf("expected [nurse_1 dr_1], got %v", got)
	}
}

func TestResolver_OnCallFilter(t *testing.T) {
	_, r := resolverFixture(true, false)

	alert := &models.Alert{RiskLevel: models.RiskLevelCritical, Priority: models.PriorityUrgent}
	got := ids(r.Resolve(alert))

	// Physician is off-call; the on-call nurse still carries the alert.
	if len(got) != 1 || got[0] != "nurse_1" {
		t.Errorf("expected [nurse_1], got %v", got)
	}
}

func TestResolver_FailOpenWhenNobodyOnCall(t *testing.T) {
	_, r := resolverFixture(false, false)

	alert := &models.Alert{RiskLevel: models.RiskLevelCritical, Priority: models.PriorityUrgent}
	got := ids(r.Resolve(alert))

	// Nobody on-call: the whole directory gets notified rather than nobody.
	if len(got) != 3 {
		t.Fatalf("expected fail-open to the full directory, got %v", got)
	}
	found := false
	for _, id := range got {
		if id == "dr_1" {
			found = true
		}
	}
	if !found {
		t.Error("fail-open set must include the designated physician")
	}
}

func TestResolver_EmptyDirectory(t *testing.T) {
	dir := directory.New(nil)
	r := NewResolver(dir, "nurse_1", "dr_1")

	alert := &models.Alert{RiskLevel: models.RiskLevelCritical, Priority: models.PriorityUrgent}
	if got := r.Resolve(alert); len(got) != 0 {
		t.Errorf("expected empty result for empty directory, got %v", got)
	}
}

func TestResolver_UrgentPriorityAlsoAddsPhysician(t *testing.T) {
	_, r := resolverFixture(true, true)

	// URGENT priority pulls the physician in even when risk is not CRITICAL,
	// as happens on manual escalation.
	alert := &models.Alert{RiskLevel: models.RiskLevelModerate, Priority: models.PriorityUrgent}
	got := ids(r.Resolve(alert))

	if len(got) != 2 {
		t.Errorf("expected physician added for URGENT priority, got %v", got)
	}
}

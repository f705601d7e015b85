package models

import (
	"errors"
	"fmt"
)

// ErrValidation marks malformed input from the upstream triage collaborator.
var ErrValidation = errors.New("validation error")

// TriageAssessment is the structured risk assessment produced by the upstream
// triage collaborator. Immutable once received; the service never re-derives
// risk from raw text.
type TriageAssessment struct {
	RiskLevel       RiskLevel `json:"risk_level"`
	Escalate        bool      `json:"escalate"`
	Symptoms        []string  `json:"symptoms_identified,omitempty"`
	Reasoning       string    `json:"reasoning,omitempty"`
	Recommendations []string  `json:"recommendations,omitempty"`
	UrgencyScore    int       `json:"urgency_score"` // 1-10
}

func (a TriageAssessment) Validate() error {
	if a.RiskLevel == "" {
		return fmt.Errorf("%w: missing risk level", ErrValidation)
	}
	if !a.RiskLevel.Valid() {
		return fmt.Errorf("%w: invalid risk level %q", ErrValidation, a.RiskLevel)
	}
	return nil
}

// PatientContext is the patient snapshot attached to an assessment.
type PatientContext struct {
	Name      string `json:"name"`
	Condition string `json:"condition,omitempty"`
	Message   string `json:"message,omitempty"` // original patient report text
}

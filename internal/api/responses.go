package api

import (
	"time"

	"github.com/careconnect/go-patient-alerts/internal/escalation"
	"github.com/careconnect/go-patient-alerts/internal/models"
)

type summaryResponse struct {
	Status                  string           `json:"status"`
	AlertID                 string           `json:"alert_id,omitempty"`
	Priority                models.Priority  `json:"priority,omitempty"`
	EscalationLevel         int              `json:"escalation_level"`
	ProvidersNotified       int              `json:"providers_notified"`
	Results                 []resultResponse `json:"notification_results"`
	ExpectedResponseMinutes int              `json:"expected_response_time_minutes,omitempty"`
	Timestamp               time.Time        `json:"timestamp"`
}

type resultResponse struct {
	ProviderID   string           `json:"provider_id"`
	ProviderRole string           `json:"provider_role"`
	ChannelsUsed []models.Channel `json:"channels_used"`
	Status       string           `json:"status"`
	Error        string           `json:"error,omitempty"`
	Timestamp    time.Time        `json:"timestamp"`
}

type alertResponse struct {
	ID               string                  `json:"alert_id"`
	CreatedAt        time.Time               `json:"created_at"`
	Priority         models.Priority         `json:"priority"`
	RiskLevel        models.RiskLevel        `json:"risk_level"`
	UrgencyScore     int                     `json:"urgency_score"`
	Patient          models.PatientContext   `json:"patient_info"`
	Assessment       models.TriageAssessment `json:"triage_assessment"`
	Message          string                  `json:"alert_message"`
	Status           string                  `json:"status"`
	ResponseRequired bool                    `json:"response_required"`
	EscalationLevel  int                     `json:"escalation_level"`
}

type providerResponse struct {
	ID         string `json:"provider_id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
	OnDuty     bool   `json:"on_duty"` // per shift table, informational
}

func toSummaryResponse(s *escalation.Summary) summaryResponse {
	results := make([]resultResponse, 0, len(s.Results))
	for _, r := range s.Results {
		results = append(results, toResultResponse(r))
	}

	resp := summaryResponse{
		Status:            s.Status,
		AlertID:           s.AlertID,
		Priority:          s.Priority,
		EscalationLevel:   s.EscalationLevel,
		ProvidersNotified: s.ProvidersNotified,
		Results:           results,
		Timestamp:         s.Timestamp,
	}
	if s.ExpectedResponse > 0 {
		resp.ExpectedResponseMinutes = int(s.ExpectedResponse.Minutes())
	}
	return resp
}

func toResultResponse(r models.NotificationResult) resultResponse {
	return resultResponse{
		ProviderID:   r.ProviderID,
		ProviderRole: r.ProviderRole,
		ChannelsUsed: r.Channels,
		Status:       r.Status,
		Error:        r.Error,
		Timestamp:    r.CreatedAt,
	}
}

func toAlertResponse(a *models.Alert) alertResponse {
	return alertResponse{
		ID:               a.ID,
		CreatedAt:        a.CreatedAt,
		Priority:         a.Priority,
		RiskLevel:        a.RiskLevel,
		UrgencyScore:     a.UrgencyScore,
		Patient:          a.Patient,
		Assessment:       a.Assessment,
		Message:          a.Message,
		Status:           a.Status,
		ResponseRequired: a.ResponseRequired,
		EscalationLevel:  a.EscalationLevel,
	}
}

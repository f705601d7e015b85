package models

import (
	"fmt"
	"strings"
	"time"
)

type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelModerate RiskLevel = "MODERATE"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLevelLow, RiskLevelModerate, RiskLevelCritical:
		return true
	}
	return false
}

type Priority string

const (
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// PriorityForRisk maps a triage risk level to an alert priority.
func PriorityForRisk(r RiskLevel) Priority {
	switch r {
	case RiskLevelCritical:
		return PriorityUrgent
	case RiskLevelModerate:
		return PriorityHigh
	default:
		return PriorityNormal
	}
}

// ResponseTime returns the expected response-time bound for a priority.
// Used for display and SLA tracking only, never enforced by a timer.
func ResponseTime(p Priority) time.Duration {
	switch p {
	case PriorityUrgent:
		return 15 * time.Minute
	case PriorityHigh:
		return 60 * time.Minute
	default:
		return 240 * time.Minute
	}
}

type Channel string

const (
	ChannelDashboard Channel = "dashboard"
	ChannelSMS       Channel = "sms"
	ChannelPager     Channel = "pager"
	ChannelEmail     Channel = "email"
)

// ChannelsForPriority returns the delivery channels for a priority tier.
// Each tier is a strict superset of the one below it.
func ChannelsForPriority(p Priority) []Channel {
	switch p {
	case PriorityUrgent:
		return []Channel{ChannelDashboard, ChannelSMS, ChannelPager, ChannelEmail}
	case PriorityHigh:
		return []Channel{ChannelDashboard, ChannelSMS, ChannelEmail}
	default:
		return []Channel{ChannelDashboard, ChannelEmail}
	}
}

type Alert struct {
	ID               string
	Seq              int64 // allocation order, monotonic within a store
	CreatedAt        time.Time
	Priority         Priority
	RiskLevel        RiskLevel
	UrgencyScore     int
	Patient          PatientContext
	Assessment       TriageAssessment
	Message          string // rendered provider-facing text
	Status           string
	ResponseRequired bool
	EscalationLevel  int
	CreatedBy        string
}

const AlertStatusSent = "sent"

// NewAlert builds an alert from an assessment and patient context. The id is
// derived from the store's sequence number plus the creation time.
func NewAlert(seq int64, a TriageAssessment, patient PatientContext, priority Priority, now time.Time) *Alert {
	return &Alert{
		ID:               fmt.Sprintf("ALERT_%d_%s", seq, now.Format("20060102_150405")),
		Seq:              seq,
		CreatedAt:        now,
		Priority:         priority,
		RiskLevel:        a.RiskLevel,
		UrgencyScore:     a.UrgencyScore,
		Patient:          patient,
		Assessment:       a,
		Message:          RenderMessage(a, patient),
		Status:           AlertStatusSent,
		ResponseRequired: true,
		CreatedBy:        "triage",
	}
}

// maxReportLen caps the patient's original message in rendered alerts.
const maxReportLen = 150

func riskBanner(r RiskLevel) string {
	switch r {
	case RiskLevelCritical:
		return "URGENT"
	case RiskLevelModerate:
		return "HIGH PRIORITY"
	case RiskLevelLow:
		return "ROUTINE"
	default:
		return "ATTENTION"
	}
}

// RenderMessage formats the provider-facing alert text: urgency banner,
// symptoms, the patient's report truncated to 150 characters, and an action
// line.
func RenderMessage(a TriageAssessment, patient PatientContext) string {
	symptoms := "See details"
	if len(a.Symptoms) > 0 {
		symptoms = strings.Join(a.Symptoms, ", ")
	}

	// Truncation counts characters, not bytes, so multi-byte text is
	// neither over-trimmed nor cut mid-rune.
	report := patient.Message
	if r := []rune(report); len(r) > maxReportLen {
		report = string(r[:maxReportLen]) + "..."
	}

	action := "Review and respond within expected timeframe"
	if a.RiskLevel == RiskLevelCritical {
		action = "Contact patient immediately"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: Patient Alert - %s\n\n", riskBanner(a.RiskLevel), patient.Name)
	fmt.Fprintf(&b, "SYMPTOMS: %s\n", symptoms)
	fmt.Fprintf(&b, "PATIENT REPORT: %q\n\n", report)
	fmt.Fprintf(&b, "RISK LEVEL: %s\n", a.RiskLevel)
	fmt.Fprintf(&b, "IMMEDIATE ACTION: %s", action)
	return b.String()
}

type NotificationResult struct {
	ID           string
	AlertID      string
	ProviderID   string
	ProviderRole string
	Channels     []Channel // channels that accepted the message
	Status       string    // "success" or "error"
	Error        string    // first failure's detail, when Status is "error"
	CreatedAt    time.Time
}

const (
	ResultStatusSuccess = "success"
	ResultStatusError   = "error"
)

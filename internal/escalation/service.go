// Package escalation orchestrates the alert pipeline: resolve recipients,
// dispatch per channel tier, record the outcome for audit.
package escalation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/careconnect/go-patient-alerts/internal/directory"
	"github.com/careconnect/go-patient-alerts/internal/models"
	"github.com/careconnect/go-patient-alerts/internal/repository"
)

// ErrEmptyDirectory is returned when an alert resolves zero recipients
// because the directory has no providers at all. A deployment mistake, not a
// delivery failure.
var ErrEmptyDirectory = errors.New("provider directory is empty")

const (
	SummaryAlertSent = "alert_sent"
	SummaryNoAction  = "no_action"
	SummaryEscalated = "escalated"
)

// Summary is the structured outcome of one escalation cycle. Returned even on
// partial or total delivery failure; the alert itself is durably recorded
// first.
type Summary struct {
	Status            string
	AlertID           string
	Priority          models.Priority
	EscalationLevel   int
	ProvidersNotified int
	Results           []models.NotificationResult
	ExpectedResponse  time.Duration
	Timestamp         time.Time
}

type Service struct {
	repo       repository.AlertRepository
	dir        *directory.Directory
	resolver   *Resolver
	dispatcher *Dispatcher
	maxWorkers int
	now        func() time.Time
}

func NewService(repo repository.AlertRepository, dir *directory.Directory, resolver *Resolver, dispatcher *Dispatcher, maxWorkers int) *Service {
	return &Service{
		repo:       repo,
		dir:        dir,
		resolver:   resolver,
		dispatcher: dispatcher,
		maxWorkers: maxWorkers,
		now:        time.Now,
	}
}

// HandleAssessment runs the full pipeline for an incoming triage assessment.
// Assessments not marked for escalation return a no-op summary without any
// side effects. The alert is committed to the store before dispatch begins.
func (s *Service) HandleAssessment(ctx context.Context, a models.TriageAssessment, patient models.PatientContext) (*Summary, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	if !a.Escalate {
		return &Summary{Status: SummaryNoAction, Timestamp: now}, nil
	}

	priority := models.PriorityForRisk(a.RiskLevel)
	alert := models.NewAlert(s.repo.NextSeq(), a, patient, priority, now)

	if err := s.repo.Create(ctx, alert); err != nil {
		return nil, fmt.Errorf("error recording alert: %w", err)
	}

	slog.Info("alert created",
		"alert_id", alert.ID, "priority", alert.Priority,
		"risk_level", alert.RiskLevel, "patient", patient.Name)

	return s.runDispatchCycle(ctx, alert, SummaryAlertSent)
}

// Escalate raises an existing alert's priority, increments its escalation
// level and triggers a fresh dispatch cycle at the new tier. Deliberately not
// idempotent: each call is an escalation event.
func (s *Service) Escalate(ctx context.Context, alertID string, newPriority models.Priority) (*Summary, error) {
	if !newPriority.Valid() {
		return nil, fmt.Errorf("%w: invalid priority %q", models.ErrValidation, newPriority)
	}

	alert, err := s.repo.GetByID(ctx, alertID)
	if err != nil {
		return nil, err
	}

	oldPriority := alert.Priority

	// The store owns the increment; concurrent escalations each count.
	level, err := s.repo.UpdateEscalation(ctx, alertID, newPriority)
	if err != nil {
		return nil, err
	}
	alert.Priority = newPriority
	alert.EscalationLevel = level

	slog.Info("alert escalated",
		"alert_id", alertID, "old_priority", oldPriority,
		"new_priority", newPriority, "escalation_level", alert.EscalationLevel)

	return s.runDispatchCycle(ctx, alert, SummaryEscalated)
}

// runDispatchCycle resolves recipients, fans the alert out, and folds results
// into the audit trail. Total delivery failure still yields a summary: the
// alert is recorded for later operator action.
func (s *Service) runDispatchCycle(ctx context.Context, alert *models.Alert, status string) (*Summary, error) {
	// Dispatch outlives the caller: a dropped request must not truncate the
	// fan-out or the audit trail. Per-send timeouts remain the only bound.
	ctx = context.WithoutCancel(ctx)

	providers := s.resolver.Resolve(alert)
	if len(providers) == 0 {
		return nil, fmt.Errorf("%w: no recipients for alert %s", ErrEmptyDirectory, alert.ID)
	}

	results := s.dispatcher.DispatchAll(ctx, alert, providers, s.maxWorkers)

	if err := s.repo.AppendResults(ctx, results); err != nil {
		return nil, fmt.Errorf("error recording notification results: %w", err)
	}

	reached := 0
	for _, r := range results {
		if r.Status == models.ResultStatusSuccess {
			reached++
		}
	}
	slog.Info("dispatch cycle complete",
		"alert_id", alert.ID, "priority", alert.Priority,
		"providers_notified", len(results), "providers_reached", reached)

	return &Summary{
		Status:            status,
		AlertID:           alert.ID,
		Priority:          alert.Priority,
		EscalationLevel:   alert.EscalationLevel,
		ProvidersNotified: len(results),
		Results:           results,
		ExpectedResponse:  models.ResponseTime(alert.Priority),
		Timestamp:         s.now(),
	}, nil
}

// History returns recorded alerts, newest first, optionally filtered by exact
// patient name.
func (s *Service) History(ctx context.Context, patientName string, limit int) ([]models.Alert, error) {
	return s.repo.History(ctx, repository.HistoryFilter{PatientName: patientName, Limit: limit})
}

func (s *Service) GetAlert(ctx context.Context, alertID string) (*models.Alert, []models.NotificationResult, error) {
	alert, err := s.repo.GetByID(ctx, alertID)
	if err != nil {
		return nil, nil, err
	}
	results, err := s.repo.ResultsByAlert(ctx, alertID)
	if err != nil {
		return nil, nil, err
	}
	return alert, results, nil
}

func (s *Service) SetAvailability(providerID string, onCall bool) error {
	return s.dir.SetAvailability(providerID, onCall)
}

func (s *Service) OnCallProviders() []models.Provider {
	return s.dir.OnCall()
}

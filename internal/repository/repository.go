package repository

import (
	"context"
	"errors"

	"github.com/careconnect/go-patient-alerts/internal/models"
)

var ErrNotFound = errors.New("alert not found")

// HistoryFilter narrows alert history queries. PatientName matches the
// patient snapshot name exactly; Limit bounds result size.
type HistoryFilter struct {
	PatientName string
	Limit       int
}

// AlertRepository is the append-only alert store. Alerts are never deleted;
// the only mutation is escalation bookkeeping.
type AlertRepository interface {
	// NextSeq atomically allocates the next alert sequence number.
	NextSeq() int64
	Create(ctx context.Context, a *models.Alert) error
	GetByID(ctx context.Context, id string) (*models.Alert, error)
	// History returns alerts newest-first by creation time.
	History(ctx context.Context, f HistoryFilter) ([]models.Alert, error)
	// UpdateEscalation sets the alert's priority and atomically increments
	// its escalation level, returning the new level. The increment happens
	// in the store so concurrent escalations each count.
	// Returns ErrNotFound for unknown ids.
	UpdateEscalation(ctx context.Context, id string, priority models.Priority) (int, error)
	AppendResults(ctx context.Context, results []models.NotificationResult) error
	ResultsByAlert(ctx context.Context, alertID string) ([]models.NotificationResult, error)
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	_ "modernc.org/sqlite"

	"github.com/careconnect/go-patient-alerts/internal/models"
)

type SQLiteStore struct {
	db  *sql.DB
	seq atomic.Int64
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Every pooled connection to :memory: would get its own database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating database: %w", err)
	}

	var maxSeq sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(seq) FROM alerts`).Scan(&maxSeq); err != nil {
		return nil, fmt.Errorf("error reading alert sequence: %w", err)
	}
	s.seq.Store(maxSeq.Int64)

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			seq INTEGER NOT NULL,
			created_at DATETIME NOT NULL,
			priority TEXT NOT NULL,
			risk_level TEXT NOT NULL,
			urgency_score INTEGER NOT NULL,
			patient_name TEXT NOT NULL,
			patient_condition TEXT,
			patient_message TEXT,
			assessment BLOB,
			message TEXT NOT NULL,
			status TEXT NOT NULL,
			response_required INTEGER NOT NULL,
			escalation_level INTEGER NOT NULL,
			created_by TEXT
		);

		CREATE TABLE IF NOT EXISTS notification_results (
			id TEXT PRIMARY KEY,
			alert_id TEXT NOT NULL,
			provider_id TEXT NOT NULL,
			provider_role TEXT,
			channels TEXT,
			status TEXT NOT NULL,
			error TEXT,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (alert_id) REFERENCES alerts(id)
		);

		CREATE INDEX IF NOT EXISTS idx_alerts_created_at ON alerts(created_at);
		CREATE INDEX IF NOT EXISTS idx_alerts_patient_name ON alerts(patient_name);
		CREATE INDEX IF NOT EXISTS idx_results_alert_id ON notification_results(alert_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) NextSeq() int64 {
	return s.seq.Add(1)
}

func (s *SQLiteStore) Create(ctx context.Context, a *models.Alert) error {
	assessment, err := json.Marshal(a.Assessment)
	if err != nil {
		return fmt.Errorf("error encoding assessment: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO alerts (id, seq, created_at, priority, risk_level, urgency_score,
			patient_name, patient_condition, patient_message, assessment, message,
			status, response_required, escalation_level, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Seq, a.CreatedAt, a.Priority, a.RiskLevel, a.UrgencyScore,
		a.Patient.Name, a.Patient.Condition, a.Patient.Message, assessment, a.Message,
		a.Status, a.ResponseRequired, a.EscalationLevel, a.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("error inserting alert: %w", err)
	}
	return nil
}

const alertColumns = `id, seq, created_at, priority, risk_level, urgency_score,
	patient_name, patient_condition, patient_message, assessment, message,
	status, response_required, escalation_level, created_by`

func scanAlert(row interface{ Scan(...any) error }) (*models.Alert, error) {
	var a models.Alert
	var assessment []byte
	err := row.Scan(&a.ID, &a.Seq, &a.CreatedAt, &a.Priority, &a.RiskLevel, &a.UrgencyScore,
		&a.Patient.Name, &a.Patient.Condition, &a.Patient.Message, &assessment, &a.Message,
		&a.Status, &a.ResponseRequired, &a.EscalationLevel, &a.CreatedBy)
	if err != nil {
		return nil, err
	}
	if len(assessment) > 0 {
		if err := json.Unmarshal(assessment, &a.Assessment); err != nil {
			return nil, fmt.Errorf("error decoding assessment: %w", err)
		}
	}
	return &a, nil
}

func (s *SQLiteStore) GetByID(ctx context.Context, id string) (*models.Alert, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = ?`, id)
	a, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error querying alert: %w", err)
	}
	return a, nil
}

func (s *SQLiteStore) History(ctx context.Context, f HistoryFilter) ([]models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts`
	var args []any
	if f.PatientName != "" {
		query += ` WHERE patient_name = ?`
		args = append(args, f.PatientName)
	}
	query += ` ORDER BY created_at DESC, seq DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying alert history: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning alert: %w", err)
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}

func (s *SQLiteStore) UpdateEscalation(ctx context.Context, id string, priority models.Priority) (int, error) {
	var level int
	err := s.db.QueryRowContext(ctx,
		`UPDATE alerts SET priority = ?, escalation_level = escalation_level + 1
		 WHERE id = ? RETURNING escalation_level`,
		priority, id).Scan(&level)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return 0, fmt.Errorf("error updating alert escalation: %w", err)
	}
	return level, nil
}

func (s *SQLiteStore) AppendResults(ctx context.Context, results []models.NotificationResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range results {
		channels := make([]string, 0, len(r.Channels))
		for _, ch := range r.Channels {
			channels = append(channels, string(ch))
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO notification_results (id, alert_id, provider_id, provider_role,
				channels, status, error, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.AlertID, r.ProviderID, r.ProviderRole,
			strings.Join(channels, ","), r.Status, r.Error, r.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("error inserting notification result: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) ResultsByAlert(ctx context.Context, alertID string) ([]models.NotificationResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, alert_id, provider_id, provider_role, channels, status, error, created_at
		FROM notification_results WHERE alert_id = ? ORDER BY created_at`, alertID)
	if err != nil {
		return nil, fmt.Errorf("error querying notification results: %w", err)
	}
	defer rows.Close()

	var results []models.NotificationResult
	for rows.Next() {
		var r models.NotificationResult
		var channels string
		if err := rows.Scan(&r.ID, &r.AlertID, &r.ProviderID, &r.ProviderRole,
			&channels, &r.Status, &r.Error, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning notification result: %w", err)
		}
		if channels != "" {
			for _, ch := range strings.Split(channels, ",") {
				r.Channels = append(r.Channels, models.Channel(ch))
			}
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/careconnect/go-patient-alerts/internal/config"
	"github.com/careconnect/go-patient-alerts/internal/logging"
	"github.com/careconnect/go-patient-alerts/internal/models"
)

// Sends a canned critical assessment to a running server so the full
// escalation path can be exercised end to end.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	payload := map[string]any{
		"assessment": models.TriageAssessment{
			RiskLevel:       models.RiskLevelCritical,
			Escalate:        true,
			Symptoms:        []string{"chest pain", "shortness of breath"},
			Reasoning:       "Symptoms consistent with acute cardiac event",
			Recommendations: []string{"Call emergency services", "Do not exert"},
			UrgencyScore:    9,
		},
		"patient": models.PatientContext{
			Name:      "Test Patient",
			Condition: "hypertension",
			Message:   "I have crushing chest pain and my left arm feels numb",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logging.Fatalf("Failed to encode payload: %v", err)
	}

	url := fmt.Sprintf("http://%s:%d/api/assessments", cfg.Server.Host, cfg.Server.Port)
	client := &http.Client{Timeout: 15 * time.Second}

	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		logging.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	slog.Info("test alert submitted", "status", resp.StatusCode, "response", string(out))
}

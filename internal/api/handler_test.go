package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/careconnect/go-patient-alerts/internal/channel"
	"github.com/careconnect/go-patient-alerts/internal/directory"
	"github.com/careconnect/go-patient-alerts/internal/escalation"
	"github.com/careconnect/go-patient-alerts/internal/models"
	"github.com/careconnect/go-patient-alerts/internal/repository"
)

// setupTestRouter wires the full stack over an in-memory store with all
// channel gateways in stub mode.
func setupTestRouter(t *testing.T) (*gin.Engine, *channel.Hub) {
	t.Helper()

	store, err := repository.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	dir := directory.New(directory.DemoProviders())
	hub := channel.NewHub()
	t.Cleanup(hub.Close)

	registry := channel.NewRegistry(
		channel.NewDashboardSender(hub),
		channel.NewSMSSender("", time.Second),
		channel.NewPagerSender("", time.Second),
		channel.NewEmailSender("", time.Second),
	)

	svc := escalation.NewService(store, dir,
		escalation.NewResolver(dir, "nurse_david", "dr_smith"),
		escalation.NewDispatcher(registry, time.Second), 4)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestIDMiddleware())
	NewHandler(svc, hub).RegisterRoutes(router)
	return router, hub
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestHandleAssessment_CreatesAndDispatches(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := postJSON(router, "/api/assessments", assessmentRequest{
		Assessment: models.TriageAssessment{
			RiskLevel:    models.RiskLevelCritical,
			Escalate:     true,
			Symptoms:     []string{"chest pain"},
			UrgencyScore: 9,
		},
		Patient: models.PatientContext{Name: "Elena", Message: "crushing chest pain"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp summaryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Status != escalation.SummaryAlertSent {
		t.Errorf("expected alert_sent, got %s", resp.Status)
	}
	if resp.Priority != models.PriorityUrgent {
		t.Errorf("expected URGENT, got %s", resp.Priority)
	}
	if resp.ProvidersNotified < 1 {
		t.Errorf("expected at least 1 provider notified, got %d", resp.ProvidersNotified)
	}
	if resp.ExpectedResponseMinutes != 15 {
		t.Errorf("expected 15 minute bound, got %d", resp.ExpectedResponseMinutes)
	}
}

func TestHandleAssessment_NoEscalation(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := postJSON(router, "/api/assessments", assessmentRequest{
		Assessment: models.TriageAssessment{RiskLevel: models.RiskLevelLow, Escalate: false},
		Patient:    models.PatientContext{Name: "Elena"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp summaryResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != escalation.SummaryNoAction {
		t.Errorf("expected no_action, got %s", resp.Status)
	}

	// History stays empty.
	w2 := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/alerts", nil)
	router.ServeHTTP(w2, req)

	var history struct {
		Total int `json:"total"`
	}
	json.Unmarshal(w2.Body.Bytes(), &history)
	if history.Total != 0 {
		t.Errorf("expected empty history, got %d alerts", history.Total)
	}
}

func TestHandleAssessment_ValidationError(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := postJSON(router, "/api/assessments", assessmentRequest{
		Assessment: models.TriageAssessment{Escalate: true}, // no risk level
		Patient:    models.PatientContext{Name: "Elena"},
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed assessment, got %d", w.Code)
	}
}

func TestEscalate_Flow(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := postJSON(router, "/api/assessments", assessmentRequest{
		Assessment: models.TriageAssessment{RiskLevel: models.RiskLevelModerate, Escalate: true},
		Patient:    models.PatientContext{Name: "Elena"},
	})
	var created summaryResponse
	json.Unmarshal(w.Body.Bytes(), &created)

	w = postJSON(router, fmt.Sprintf("/api/alerts/%s/escalate", created.AlertID),
		escalateRequest{NewPriority: models.PriorityUrgent})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var escalated summaryResponse
	json.Unmarshal(w.Body.Bytes(), &escalated)
	if escalated.EscalationLevel != 1 {
		t.Errorf("expected escalation level 1, got %d", escalated.EscalationLevel)
	}
	if escalated.Priority != models.PriorityUrgent {
		t.Errorf("expected URGENT, got %s", escalated.Priority)
	}
}

func TestEscalate_NotFound(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := postJSON(router, "/api/alerts/ALERT_missing/escalate",
		escalateRequest{NewPriority: models.PriorityUrgent})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestAlertHistory_PatientFilter(t *testing.T) {
	router, _ := setupTestRouter(t)

	for _, name := range []string{"Elena", "Marcus", "Elena"} {
		postJSON(router, "/api/assessments", assessmentRequest{
			Assessment: models.TriageAssessment{RiskLevel: models.RiskLevelModerate, Escalate: true},
			Patient:    models.PatientContext{Name: name},
		})
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/alerts?patient_name=Elena", nil)
	router.ServeHTTP(w, req)

	var resp struct {
		Alerts []alertResponse `json:"alerts"`
		Total  int             `json:"total"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 {
		t.Errorf("expected 2 alerts for Elena, got %d", resp.Total)
	}
	for _, a := range resp.Alerts {
		if a.Patient.Name != "Elena" {
			t.Errorf("filter leaked alert for %s", a.Patient.Name)
		}
	}
}

func TestProviderStatus(t *testing.T) {
	router, _ := setupTestRouter(t)

	// dr_smith starts off-call; flip on.
	payload, _ := json.Marshal(map[string]bool{"on_call": true})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/api/providers/dr_smith/status", bytes.NewReader(payload))
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/providers/on-call", nil)
	router.ServeHTTP(w, req)

	var resp struct {
		Total int `json:"total_available"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 {
		t.Errorf("expected 2 on-call providers, got %d", resp.Total)
	}

	// Unknown provider
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPut, "/api/providers/ghost/status", bytes.NewReader(payload))
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestDashboardReceivesAlert(t *testing.T) {
	router, hub := setupTestRouter(t)

	_, feed := hub.Subscribe("nurse_dashboard_001")

	postJSON(router, "/api/assessments", assessmentRequest{
		Assessment: models.TriageAssessment{RiskLevel: models.RiskLevelCritical, Escalate: true},
		Patient:    models.PatientContext{Name: "Elena"},
	})

	select {
	case msg := <-feed:
		if msg.PatientName != "Elena" {
			t.Errorf("expected alert for Elena, got %s", msg.PatientName)
		}
	default:
		t.Error("expected alert on the nurse dashboard feed")
	}
}

// closeNotifyRecorder adds the http.CloseNotifier method gin's Stream
// requires of the underlying writer, which httptest.ResponseRecorder lacks.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func newCloseNotifyRecorder() *closeNotifyRecorder {
	return &closeNotifyRecorder{httptest.NewRecorder(), make(chan bool, 1)}
}

func (r *closeNotifyRecorder) CloseNotify() <-chan bool { return r.closed }

func TestDashboardStream_DeliversEvents(t *testing.T) {
	router, hub := setupTestRouter(t)

	w := newCloseNotifyRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboards/nurse_dashboard_001/stream", nil)

	done := make(chan struct{})
	go func() {
		router.ServeHTTP(w, req)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for hub.SessionCount("nurse_dashboard_001") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stream session never attached to the hub")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Publish("nurse_dashboard_001", channel.Message{
		AlertID:     "ALERT_9_20250314_092653",
		PatientName: "Elena",
	})

	// Closing the hub drains buffered events and ends the stream.
	hub.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not terminate after hub close")
	}

	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("expected SSE content type, got %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "ALERT_9_20250314_092653") || !strings.Contains(body, "Elena") {
		t.Errorf("expected published alert in stream, got:\n%s", body)
	}
}

func TestHealth(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected request id header on responses")
	}
}

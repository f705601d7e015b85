package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/careconnect/go-patient-alerts/internal/channel"
	"github.com/careconnect/go-patient-alerts/internal/directory"
	"github.com/careconnect/go-patient-alerts/internal/escalation"
	"github.com/careconnect/go-patient-alerts/internal/models"
	"github.com/careconnect/go-patient-alerts/internal/repository"
)

type Handler struct {
	svc *escalation.Service
	hub *channel.Hub
}

func NewHandler(svc *escalation.Service, hub *channel.Hub) *Handler {
	return &Handler{svc: svc, hub: hub}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/assessments", h.handleAssessment)
	r.GET("/api/alerts", h.getAlertHistory)
	r.GET("/api/alerts/:id", h.getAlert)
	r.POST("/api/alerts/:id/escalate", h.escalateAlert)
	r.GET("/api/providers/on-call", h.getOnCallProviders)
	r.PUT("/api/providers/:id/status", h.setProviderStatus)
	r.GET("/api/dashboards/:id/stream", h.streamDashboard)
	r.GET("/health", h.health)
}

type assessmentRequest struct {
	Assessment models.TriageAssessment `json:"assessment"`
	Patient    models.PatientContext   `json:"patient"`
}

func (h *Handler) handleAssessment(c *gin.Context) {
	var req assessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	summary, err := h.svc.HandleAssessment(c.Request.Context(), req.Assessment, req.Patient)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSummaryResponse(summary))
}

type escalateRequest struct {
	NewPriority models.Priority `json:"new_priority"`
}

func (h *Handler) escalateAlert(c *gin.Context) {
	var req escalateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	summary, err := h.svc.Escalate(c.Request.Context(), c.Param("id"), req.NewPriority)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSummaryResponse(summary))
}

func (h *Handler) getAlertHistory(c *gin.Context) {
	limit := 50 // default history window
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	alerts, err := h.svc.History(c.Request.Context(), c.Query("patient_name"), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]alertResponse, 0, len(alerts))
	for i := range alerts {
		out = append(out, toAlertResponse(&alerts[i]))
	}
	c.JSON(http.StatusOK, gin.H{"alerts": out, "total": len(out)})
}

func (h *Handler) getAlert(c *gin.Context) {
	alert, results, err := h.svc.GetAlert(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := toAlertResponse(alert)
	resultOut := make([]resultResponse, 0, len(results))
	for _, r := range results {
		resultOut = append(resultOut, toResultResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"alert": resp, "notification_results": resultOut})
}

func (h *Handler) getOnCallProviders(c *gin.Context) {
	providers := h.svc.OnCallProviders()
	out := make([]providerResponse, 0, len(providers))
	for _, p := range providers {
		out = append(out, providerResponse{
			ID:         p.ID,
			Name:       p.Name,
			Role:       p.Role,
			Department: p.Department,
			OnDuty:     p.Shifts.OnDuty(time.Now()),
		})
	}
	c.JSON(http.StatusOK, gin.H{"providers": out, "total_available": len(out)})
}

type statusRequest struct {
	OnCall *bool `json:"on_call" binding:"required"`
}

func (h *Handler) setProviderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "on_call is required"})
		return
	}

	id := c.Param("id")
	if err := h.svc.SetAvailability(id, *req.OnCall); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"provider_id": id, "on_call": *req.OnCall})
}

// streamDashboard attaches the caller to a dashboard id and streams its
// alerts as server-sent events until the client disconnects or the hub
// shuts down.
func (h *Handler) streamDashboard(c *gin.Context) {
	dashboardID := c.Param("id")
	sessionID, feed := h.hub.Subscribe(dashboardID)
	defer h.hub.Unsubscribe(dashboardID, sessionID)

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-feed:
			if !ok {
				return false
			}
			c.SSEvent("alert", msg)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, directory.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

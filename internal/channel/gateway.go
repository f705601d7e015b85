package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/careconnect/go-patient-alerts/internal/models"
)

// GatewaySender delivers messages by POSTing to an external channel gateway
// (SMS bridge, pager system, mail relay). With no gateway URL configured it
// logs the send and reports success, standing in for the real integration.
type GatewaySender struct {
	channel models.Channel
	url     string
	client  *http.Client
	render  func(msg Message) string
}

func newGatewaySender(ch models.Channel, url string, timeout time.Duration, render func(Message) string) *GatewaySender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GatewaySender{
		channel: ch,
		url:     url,
		client:  &http.Client{Timeout: timeout},
		render:  render,
	}
}

type gatewayPayload struct {
	To       string          `json:"to"`
	AlertID  string          `json:"alert_id"`
	Priority models.Priority `json:"priority"`
	Body     string          `json:"body"`
}

func (s *GatewaySender) Send(ctx context.Context, msg Message, address string) error {
	body := msg.Body
	if s.render != nil {
		body = s.render(msg)
	}

	if s.url == "" {
		slog.Info("channel gateway not configured, send logged only",
			"channel", s.channel, "to", address, "alert_id", msg.AlertID)
		return nil
	}

	payload, err := json.Marshal(gatewayPayload{
		To:       address,
		AlertID:  msg.AlertID,
		Priority: msg.Priority,
		Body:     body,
	})
	if err != nil {
		return fmt.Errorf("error encoding %s payload: %w", s.channel, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("error creating %s request: %w", s.channel, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending via %s gateway: %w", s.channel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s gateway returned status %d", s.channel, resp.StatusCode)
	}
	return nil
}

func (s *GatewaySender) Type() models.Channel {
	return s.channel
}

// NewSMSSender builds the SMS channel. SMS bodies are condensed: the full
// report lives on the dashboard.
func NewSMSSender(url string, timeout time.Duration) *GatewaySender {
	return newGatewaySender(models.ChannelSMS, url, timeout, func(msg Message) string {
		return fmt.Sprintf("PATIENT ALERT: %s\nPriority: %s\nCheck dashboard for full details.\nAlert ID: %s",
			msg.PatientName, msg.Priority, msg.AlertID)
	})
}

// NewPagerSender builds the pager channel; pagers get a one-line summary.
func NewPagerSender(url string, timeout time.Duration) *GatewaySender {
	return newGatewaySender(models.ChannelPager, url, timeout, func(msg Message) string {
		return fmt.Sprintf("URGENT: %s - %s", msg.PatientName, msg.AlertID)
	})
}

// NewEmailSender builds the email channel; email carries the full rendered
// alert for record keeping.
func NewEmailSender(url string, timeout time.Duration) *GatewaySender {
	return newGatewaySender(models.ChannelEmail, url, timeout, nil)
}

package escalation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/go-patient-alerts/internal/channel"
	"github.com/careconnect/go-patient-alerts/internal/models"
	"github.com/careconnect/go-patient-alerts/internal/worker"
)

// Dispatcher delivers one alert to one provider across every channel in the
// alert's priority tier, and fans dispatch out over a provider list.
type Dispatcher struct {
	registry    *channel.Registry
	sendTimeout time.Duration
}

func NewDispatcher(registry *channel.Registry, sendTimeout time.Duration) *Dispatcher {
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}
	return &Dispatcher{
		registry:    registry,
		sendTimeout: sendTimeout,
	}
}

// Dispatch attempts every channel in the tier independently and concurrently;
// one channel's failure never aborts the others. Any successful channel makes
// the aggregate result a success. Channels without a registered sender or a
// provider address are skipped, not failed.
func (d *Dispatcher) Dispatch(ctx context.Context, alert *models.Alert, p models.Provider) models.NotificationResult {
	channels := models.ChannelsForPriority(alert.Priority)
	msg := channel.Message{
		AlertID:     alert.ID,
		Priority:    alert.Priority,
		PatientName: alert.Patient.Name,
		Body:        alert.Message,
		CreatedAt:   alert.CreatedAt,
	}

	type outcome struct {
		attempted bool
		err       error
	}
	outcomes := make([]outcome, len(channels))

	var wg sync.WaitGroup
	for i, ch := range channels {
		sender, ok := d.registry.Get(ch)
		addr := p.Address(ch)
		if !ok || addr == "" {
			continue
		}

		wg.Add(1)
		go func(i int, sender channel.Sender, addr string) {
			defer wg.Done()
			sctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
			defer cancel()
			outcomes[i] = outcome{attempted: true, err: sender.Send(sctx, msg, addr)}
		}(i, sender, addr)
	}
	wg.Wait()

	result := models.NotificationResult{
		ID:           uuid.NewString(),
		AlertID:      alert.ID,
		ProviderID:   p.ID,
		ProviderRole: p.Role,
		Status:       models.ResultStatusSuccess,
		CreatedAt:    time.Now(),
	}

	var firstErr error
	for i, o := range outcomes {
		if !o.attempted {
			continue
		}
		if o.err != nil {
			if firstErr == nil {
				firstErr = o.err
			}
			slog.Warn("channel send failed",
				"alert_id", alert.ID, "provider_id", p.ID,
				"channel", channels[i], "error", o.err)
			continue
		}
		result.Channels = append(result.Channels, channels[i])
	}

	if len(result.Channels) == 0 {
		result.Status = models.ResultStatusError
		if firstErr != nil {
			result.Error = firstErr.Error()
		} else {
			result.Error = "no usable channel for provider"
		}
		return result
	}

	slog.Info("notification sent",
		"alert_id", alert.ID, "provider_id", p.ID, "channels", len(result.Channels))
	return result
}

// DispatchAll fans dispatch out over the provider list, one worker per
// provider up to maxWorkers, and joins before returning.
func (d *Dispatcher) DispatchAll(ctx context.Context, alert *models.Alert, providers []models.Provider, maxWorkers int) []models.NotificationResult {
	if len(providers) == 0 {
		return nil
	}
	if maxWorkers < 1 || maxWorkers > len(providers) {
		maxWorkers = len(providers)
	}

	var mu sync.Mutex
	results := make([]models.NotificationResult, 0, len(providers))

	pool := worker.NewPool(maxWorkers, len(providers), func(ctx context.Context, p models.Provider) {
		r := d.Dispatch(ctx, alert, p)
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	})

	pool.Start(ctx)
	for _, p := range providers {
		pool.Submit(p)
	}
	pool.Stop()

	return results
}

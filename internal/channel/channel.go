// Package channel provides one sender per delivery channel (dashboard, SMS,
// pager, email), each a fire-and-report operation, plus a registry the
// dispatcher selects from by channel type.
package channel

import (
	"context"
	"time"

	"github.com/careconnect/go-patient-alerts/internal/models"
)

// Message is the payload handed to a sender. Body carries the full rendered
// alert text; the remaining fields let short-form channels build their own
// condensed view.
type Message struct {
	AlertID     string          `json:"alert_id"`
	Priority    models.Priority `json:"priority"`
	PatientName string          `json:"patient_name"`
	Body        string          `json:"body"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Sender delivers a message to one channel-specific address. Address formats
// are opaque to the core (phone number, email address, pager id, dashboard
// id); senders do not validate their syntax.
type Sender interface {
	Send(ctx context.Context, msg Message, address string) error
	Type() models.Channel
}

// Registry maps channel types to senders.
type Registry struct {
	senders map[models.Channel]Sender
}

func NewRegistry(senders ...Sender) *Registry {
	r := &Registry{senders: make(map[models.Channel]Sender, len(senders))}
	for _, s := range senders {
		r.Register(s)
	}
	return r
}

func (r *Registry) Register(s Sender) {
	r.senders[s.Type()] = s
}

func (r *Registry) Get(ch models.Channel) (Sender, bool) {
	s, ok := r.senders[ch]
	return s, ok
}

func (r *Registry) Types() []models.Channel {
	types := make([]models.Channel, 0, len(r.senders))
	for ch := range r.senders {
		types = append(types, ch)
	}
	return types
}

// Package directory holds the provider directory: recipient identity, contact
// channels and on-call status. Seeded at service start; only the on-call flag
// changes at runtime.
package directory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/careconnect/go-patient-alerts/internal/models"
)

var ErrNotFound = errors.New("provider not found")

type Directory struct {
	mu        sync.RWMutex
	providers map[string]*models.Provider
	order     []string // insertion order, keeps resolution deterministic
}

func New(seed []models.Provider) *Directory {
	d := &Directory{
		providers: make(map[string]*models.Provider, len(seed)),
	}
	for i := range seed {
		p := seed[i]
		if _, ok := d.providers[p.ID]; ok {
			continue // ids are unique; first entry wins
		}
		d.providers[p.ID] = &p
		d.order = append(d.order, p.ID)
	}
	return d
}

func (d *Directory) Get(id string) (models.Provider, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.providers[id]
	if !ok {
		return models.Provider{}, false
	}
	return *p, true
}

// All returns every provider in insertion order.
func (d *Directory) All() []models.Provider {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]models.Provider, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, *d.providers[id])
	}
	return out
}

// OnCall returns the providers currently flagged on-call, in insertion order.
func (d *Directory) OnCall() []models.Provider {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []models.Provider
	for _, id := range d.order {
		if p := d.providers[id]; p.OnCall {
			out = append(out, *p)
		}
	}
	return out
}

// SetAvailability flips a provider's on-call flag. Idempotent; fails with
// ErrNotFound for unknown ids.
func (d *Directory) SetAvailability(id string, onCall bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.providers[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	p.OnCall = onCall
	return nil
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.providers)
}

package escalation

import (
	"github.com/careconnect/go-patient-alerts/internal/directory"
	"github.com/careconnect/go-patient-alerts/internal/models"
)

// Resolver selects which directory entries must be notified for an alert.
type Resolver struct {
	dir              *directory.Directory
	primaryNurse     string
	primaryPhysician string
}

func NewResolver(dir *directory.Directory, primaryNurse, primaryPhysician string) *Resolver {
	return &Resolver{
		dir:              dir,
		primaryNurse:     primaryNurse,
		primaryPhysician: primaryPhysician,
	}
}

// Resolve returns the providers to notify, in policy order: the primary nurse
// always, the primary physician for CRITICAL risk or URGENT priority, filtered
// to whoever is on-call. If the on-call filter empties the set the whole
// directory is notified instead; availability filtering must never suppress
// an alert. Only an empty directory yields an empty result.
func (r *Resolver) Resolve(alert *models.Alert) []models.Provider {
	ids := []string{r.primaryNurse}
	if alert.RiskLevel == models.RiskLevelCritical || alert.Priority == models.PriorityUrgent {
		ids = append(ids, r.primaryPhysician)
	}

	seen := make(map[string]bool, len(ids))
	var candidates []models.Provider
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := r.dir.Get(id); ok {
			candidates = append(candidates, p)
		}
	}

	var available []models.Provider
	for _, p := range candidates {
		if p.OnCall {
			available = append(available, p)
		}
	}

	if len(available) == 0 {
		return r.dir.All()
	}
	return available
}

package directory

import (
	"time"

	"github.com/careconnect/go-patient-alerts/internal/models"
)

// DemoProviders returns the demo directory seed: the primary floor nurse and
// the on-call surgeon.
func DemoProviders() []models.Provider {
	return []models.Provider{
		{
			ID:         "nurse_david",
			Name:       "David Johnson",
			Role:       "Registered Nurse",
			Department: "Orthopedic Floor",
			Contacts: models.ContactInfo{
				Phone:       "+1-555-0123",
				Email:       "david.johnson@hospital.com",
				Pager:       "555-1234",
				DashboardID: "nurse_dashboard_001",
			},
			OnCall: true,
			Shifts: models.ShiftTable{
				time.Monday:    "07:00-19:00",
				time.Tuesday:   "07:00-19:00",
				time.Wednesday: "07:00-19:00",
				time.Thursday:  models.ShiftOff,
				time.Friday:    models.ShiftOff,
				time.Saturday:  "07:00-19:00",
				time.Sunday:    "07:00-19:00",
			},
		},
		{
			ID:         "dr_smith",
			Name:       "Dr. Sarah Smith",
			Role:       "Orthopedic Surgeon",
			Department: "Orthopedic Surgery",
			Contacts: models.ContactInfo{
				Phone:       "+1-555-0456",
				Email:       "sarah.smith@hospital.com",
				Pager:       "555-5678",
				DashboardID: "doctor_dashboard_002",
			},
			OnCall: false,
			Shifts: models.ShiftTable{
				time.Monday:    "08:00-17:00",
				time.Tuesday:   "08:00-17:00",
				time.Wednesday: "08:00-17:00",
				time.Thursday:  "08:00-17:00",
				time.Friday:    "08:00-17:00",
				time.Saturday:  models.ShiftOnCall,
				time.Sunday:    models.ShiftOff,
			},
		},
	}
}

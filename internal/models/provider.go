package models

import (
	"fmt"
	"strings"
	"time"
)

// Provider is a healthcare provider's identity and reachability record. The
// directory is the single source of truth for current contact data; alerts
// reference providers by id only.
type Provider struct {
	ID         string
	Name       string
	Role       string // free-form, e.g. "Registered Nurse"
	Department string
	Contacts   ContactInfo
	OnCall     bool
	Shifts     ShiftTable
}

type ContactInfo struct {
	Phone       string
	Email       string
	Pager       string
	DashboardID string
}

// Address returns the contact address for a channel, or "" if the provider
// has none for it.
func (p Provider) Address(ch Channel) string {
	switch ch {
	case ChannelDashboard:
		return p.Contacts.DashboardID
	case ChannelSMS:
		return p.Contacts.Phone
	case ChannelPager:
		return p.Contacts.Pager
	case ChannelEmail:
		return p.Contacts.Email
	}
	return ""
}

// ShiftTable maps weekdays to a shift entry: "HH:MM-HH:MM", "on-call" or "off".
type ShiftTable map[time.Weekday]string

const (
	ShiftOff    = "off"
	ShiftOnCall = "on-call"
)

// OnDuty reports whether t falls inside the provider's scheduled shift.
// Unparseable entries count as off. This is informational only; the on-call
// flag is mutated exclusively through explicit status updates.
func (s ShiftTable) OnDuty(t time.Time) bool {
	entry, ok := s[t.Weekday()]
	if !ok || entry == ShiftOff {
		return false
	}
	if entry == ShiftOnCall {
		return true
	}

	start, end, err := parseShiftRange(entry)
	if err != nil {
		return false
	}
	minutes := t.Hour()*60 + t.Minute()
	return minutes >= start && minutes < end
}

func parseShiftRange(entry string) (start, end int, err error) {
	parts := strings.SplitN(entry, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed shift entry: %q", entry)
	}
	if start, err = parseClock(parts[0]); err != nil {
		return 0, 0, err
	}
	if end, err = parseClock(parts[1]); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("malformed clock value %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

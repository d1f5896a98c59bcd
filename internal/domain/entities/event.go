package entities

import (
	"time"

	"raidbot/internal/domain"
)

// RSVP is one member's answer for one event.
type RSVP struct {
	MemberID  string
	Status    domain.RSVPStatus
	UpdatedAt time.Time
}

// Event is one scheduled activity with signup and verified-attendance
// tracking. RSVPs and Attendees are loaded alongside the event row.
type Event struct {
	ID             uint
	GuildID        string
	ChannelID      string
	MessageID      string
	Title          string
	EventTime      time.Time
	Closed         bool
	AttendanceCode string
	BonusPoints    int
	RemindersSent  bool
	PartiesFormed  bool
	RSVPs          []RSVP
	Attendees      []string
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SignupDeadline is derived, not stored: signups close a fixed offset
// before the event starts.
func (e *Event) SignupDeadline(offset time.Duration) time.Time {
	return e.EventTime.Add(-offset)
}

// StatusOf returns the member's current RSVP status, RSVPUnset if none.
func (e *Event) StatusOf(memberID string) domain.RSVPStatus {
	for _, r := range e.RSVPs {
		if r.MemberID == memberID {
			return r.Status
		}
	}
	return domain.RSVPUnset
}

func (e *Event) idsWithStatus(status domain.RSVPStatus) []string {
	out := []string{}
	for _, r := range e.RSVPs {
		if r.Status == status {
			out = append(out, r.MemberID)
		}
	}
	return out
}

// AttendingIDs, MaybeIDs and DeclinedIDs are projections of the single
// per-member status; by construction a member appears in at most one.
func (e *Event) AttendingIDs() []string { return e.idsWithStatus(domain.RSVPAttending) }
func (e *Event) MaybeIDs() []string     { return e.idsWithStatus(domain.RSVPMaybe) }
func (e *Event) DeclinedIDs() []string  { return e.idsWithStatus(domain.RSVPDeclined) }

// AttendeeSet is attending ∪ maybe, the population reformation accounts for.
func (e *Event) AttendeeSet() map[string]bool {
	set := make(map[string]bool)
	for _, r := range e.RSVPs {
		if r.Status.IsAttendee() {
			set[r.MemberID] = true
		}
	}
	return set
}

// HasAttendee reports whether the member's presence was verified.
func (e *Event) HasAttendee(memberID string) bool {
	for _, id := range e.Attendees {
		if id == memberID {
			return true
		}
	}
	return false
}

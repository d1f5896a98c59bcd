package domain

// RSVPStatus is a member's stated intent for an event. A member has at
// most one status per event; RSVPUnset means no row exists.
type RSVPStatus string

const (
	RSVPUnset     RSVPStatus = ""
	RSVPAttending RSVPStatus = "attending"
	RSVPMaybe     RSVPStatus = "maybe"
	RSVPDeclined  RSVPStatus = "declined"
)

// Valid reports whether s is one of the three settable statuses.
func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPAttending, RSVPMaybe, RSVPDeclined:
		return true
	}
	return false
}

// Counts toward the attendee set used by reformation.
func (s RSVPStatus) IsAttendee() bool {
	return s == RSVPAttending || s == RSVPMaybe
}

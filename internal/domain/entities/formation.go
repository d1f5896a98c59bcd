package entities

import (
	"time"

	"raidbot/internal/domain"
)

// PartyStatus describes what reformation did to a static party.
type PartyStatus string

const (
	PartyIntact    PartyStatus = "intact"
	PartyModified  PartyStatus = "modified"
	PartyDisbanded PartyStatus = "disbanded"
)

// RoleComposition counts roles among a party's remaining members.
type RoleComposition struct {
	Tanks   int `json:"tanks"`
	Healers int `json:"healers"`
	DPS     int `json:"dps"`
}

func (c RoleComposition) Total() int { return c.Tanks + c.Healers + c.DPS }

// ProcessedParty is one static party after reconciliation against the
// event's RSVP sets.
type ProcessedParty struct {
	PartyNumber     int             `json:"partyNumber"`
	Status          PartyStatus     `json:"status"`
	Titles          []string        `json:"titles"`
	Members         []PartyMember   `json:"members"`
	RemovedMembers  []PartyMember   `json:"removedMembers"`
	RoleComposition RoleComposition `json:"roleComposition"`
}

// PoolMember is an attendee in the available pool, tagged with where
// they came from ("Party N (disbanded)" or "Unassigned").
type PoolMember struct {
	MemberID    string        `json:"memberId"`
	WeaponMain  domain.Weapon `json:"weaponMain"`
	WeaponOff   domain.Weapon `json:"weaponOff"`
	Role        domain.Role   `json:"role"`
	CombatPower int           `json:"combatPower"`
	Source      string        `json:"source"`
}

// FormationSummary aggregates a formation for the embed and dashboard.
type FormationSummary struct {
	TotalAttending   int `json:"totalAttending"`
	PartiesIntact    int `json:"partiesIntact"`
	PartiesModified  int `json:"partiesModified"`
	PartiesDisbanded int `json:"partiesDisbanded"`
	MembersAvailable int `json:"membersAvailable"`
}

// Formation is the reconciled party layout for one event. It is
// overwritten on every reformation trigger until dispatch approves it.
type Formation struct {
	EventID          uint             `json:"eventId"`
	ProcessedParties []ProcessedParty `json:"processedParties"`
	AvailableMembers []PoolMember     `json:"availableMembers"`
	Summary          FormationSummary `json:"summary"`
	Approved         bool             `json:"approved"`
	CreatedBy        string           `json:"createdBy"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// MemberIDs returns every member placed in a processed party or the
// pool, in iteration order. Used by completeness checks and dispatch.
func (f *Formation) MemberIDs() []string {
	out := []string{}
	for _, p := range f.ProcessedParties {
		if p.Status == PartyDisbanded {
			continue
		}
		for _, m := range p.Members {
			out = append(out, m.MemberID)
		}
	}
	for _, m := range f.AvailableMembers {
		out = append(out, m.MemberID)
	}
	return out
}

// DispatchFailure records one member the reporter could not reach.
type DispatchFailure struct {
	MemberID string `json:"memberId"`
	Reason   string `json:"reason"`
}

// DispatchReport is the success/failure outcome of sending a formation.
type DispatchReport struct {
	Successful []string          `json:"successful"`
	Failed     []DispatchFailure `json:"failed"`
}

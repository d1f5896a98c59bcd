package entities

import (
	"time"

	"raidbot/internal/domain"
)

// ReservePartyNumber marks the reserve bench; it is excluded from
// reformation and exempt from the unique-number rule.
const ReservePartyNumber = 0

// PartyMember is one slot of a static party roster, in roster order.
type PartyMember struct {
	MemberID    string        `json:"memberId"`
	WeaponMain  domain.Weapon `json:"weaponMain"`
	WeaponOff   domain.Weapon `json:"weaponOff"`
	Role        domain.Role   `json:"role"`
	CombatPower int           `json:"combatPower"`
	IsLeader    bool          `json:"isLeader"`
}

// StaticParty is an administrator-curated, persistent sub-team.
// It is read-only input to reformation.
type StaticParty struct {
	ID          uint
	GuildID     string
	PartyNumber int
	Titles      []string
	Members     []PartyMember
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MemberProfile is a member's registered gear, used to enrich
// attendees who belong to no static party.
type MemberProfile struct {
	GuildID     string
	MemberID    string
	WeaponMain  domain.Weapon
	WeaponOff   domain.Weapon
	CombatPower int
	UpdatedAt   time.Time
}

// Role derives the profile's combat role from its weapon pair.
func (p *MemberProfile) Role() domain.Role {
	return domain.RoleFromWeapons(p.WeaponMain, p.WeaponOff)
}

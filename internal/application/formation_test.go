package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"raidbot/internal/domain"
	"raidbot/internal/domain/entities"
)

func member(id string, main, off domain.Weapon, power int) entities.PartyMember {
	return entities.PartyMember{
		MemberID:    id,
		WeaponMain:  main,
		WeaponOff:   off,
		Role:        domain.RoleFromWeapons(main, off),
		CombatPower: power,
	}
}

func rsvps(status domain.RSVPStatus, ids ...string) []entities.RSVP {
	out := make([]entities.RSVP, 0, len(ids))
	for _, id := range ids {
		out = append(out, entities.RSVP{MemberID: id, Status: status})
	}
	return out
}

func newFormationFixture(t *testing.T, event *entities.Event, parties []entities.StaticParty, profiles map[string]entities.MemberProfile) (*FormationService, *memEventRepo, *memFormationRepo) {
	t.Helper()
	events := newMemEventRepo()
	events.put(event)
	formations := &memFormationRepo{}
	svc := NewFormationService(
		events,
		&memPartyRepo{parties: parties},
		&memProfileRepo{profiles: profiles},
		formations,
		3,
		zap.NewNop(),
	)
	return svc, events, formations
}

func TestReformDisbandsUndersizedParty(t *testing.T) {
	event := &entities.Event{
		GuildID:   "g1",
		EventTime: time.Now().Add(time.Hour),
	}
	event.RSVPs = append(rsvps(domain.RSVPAttending, "a1", "a2"),
		rsvps(domain.RSVPDeclined, "a3", "a4", "a5")...)

	parties := []entities.StaticParty{{
		GuildID:     "g1",
		PartyNumber: 2,
		Members: []entities.PartyMember{
			member("a1", domain.WeaponSwordShield, domain.WeaponGreatsword, 3000),
			member("a2", domain.WeaponWand, domain.WeaponStaff, 2800),
			member("a3", domain.WeaponDaggers, domain.WeaponCrossbow, 2500),
			member("a4", domain.WeaponLongbow, domain.WeaponStaff, 2600),
			member("a5", domain.WeaponGreatsword, domain.WeaponDaggers, 2700),
		},
	}}

	svc, _, _ := newFormationFixture(t, event, parties, nil)
	formation, err := svc.Reform(context.Background(), event.ID, "admin")
	require.NoError(t, err)

	require.Len(t, formation.ProcessedParties, 1)
	p := formation.ProcessedParties[0]
	assert.Equal(t, entities.PartyDisbanded, p.Status)
	assert.Len(t, p.RemovedMembers, 3)
	assert.Empty(t, p.Members)

	require.Len(t, formation.AvailableMembers, 2)
	for _, m := range formation.AvailableMembers {
		assert.Equal(t, "Party 2 (disbanded)", m.Source)
	}
	assert.Equal(t, 1, formation.Summary.PartiesDisbanded)
	assert.Equal(t, 2, formation.Summary.MembersAvailable)
	assert.Equal(t, 2, formation.Summary.TotalAttending)
}

func TestReformMarksModifiedPartyAndComposition(t *testing.T) {
	event := &entities.Event{
		GuildID:   "g1",
		EventTime: time.Now().Add(time.Hour),
	}
	event.RSVPs = append(rsvps(domain.RSVPAttending, "b1", "b2", "b3", "b4"),
		rsvps(domain.RSVPDeclined, "b5")...)

	parties := []entities.StaticParty{{
		GuildID:     "g1",
		PartyNumber: 1,
		Members: []entities.PartyMember{
			member("b1", domain.WeaponSwordShield, domain.WeaponGreatsword, 3000),
			member("b2", domain.WeaponWand, domain.WeaponStaff, 2800),
			member("b3", domain.WeaponDaggers, domain.WeaponCrossbow, 2500),
			member("b4", domain.WeaponLongbow, domain.WeaponStaff, 2600),
			member("b5", domain.WeaponGreatsword, domain.WeaponDaggers, 2700),
		},
	}}

	svc, _, _ := newFormationFixture(t, event, parties, nil)
	formation, err := svc.Reform(context.Background(), event.ID, "admin")
	require.NoError(t, err)

	require.Len(t, formation.ProcessedParties, 1)
	p := formation.ProcessedParties[0]
	assert.Equal(t, entities.PartyModified, p.Status)
	assert.Len(t, p.Members, 4)
	assert.Len(t, p.RemovedMembers, 1)
	assert.Equal(t, entities.RoleComposition{Tanks: 1, Healers: 1, DPS: 2}, p.RoleComposition)
	assert.Equal(t, 4, p.RoleComposition.Total())
	assert.Equal(t, 1, formation.Summary.PartiesModified)
	assert.Zero(t, formation.Summary.PartiesDisbanded)
}

func TestReformKeepsFullPartyIntact(t *testing.T) {
	event := &entities.Event{
		GuildID:   "g1",
		EventTime: time.Now().Add(time.Hour),
	}
	event.RSVPs = rsvps(domain.RSVPAttending, "c1", "c2", "c3")

	parties := []entities.StaticParty{{
		GuildID:     "g1",
		PartyNumber: 1,
		Members: []entities.PartyMember{
			member("c1", domain.WeaponSwordShield, domain.WeaponGreatsword, 3000),
			member("c2", domain.WeaponWand, domain.WeaponStaff, 2800),
			member("c3", domain.WeaponDaggers, domain.WeaponCrossbow, 2500),
		},
	}}

	svc, _, _ := newFormationFixture(t, event, parties, nil)
	formation, err := svc.Reform(context.Background(), event.ID, "admin")
	require.NoError(t, err)

	require.Len(t, formation.ProcessedParties, 1)
	assert.Equal(t, entities.PartyIntact, formation.ProcessedParties[0].Status)
	assert.Equal(t, 1, formation.Summary.PartiesIntact)
}

func TestReformPlacesSharedMemberExactlyOnce(t *testing.T) {
	event := &entities.Event{
		GuildID:   "g1",
		EventTime: time.Now().Add(time.Hour),
	}
	event.RSVPs = rsvps(domain.RSVPAttending, "x1", "a1", "a2", "b1", "b2")

	// x1 sits on both rosters; first party number wins.
	parties := []entities.StaticParty{
		{
			GuildID:     "g1",
			PartyNumber: 1,
			Members: []entities.PartyMember{
				member("x1", domain.WeaponSwordShield, domain.WeaponGreatsword, 3000),
				member("a1", domain.WeaponWand, domain.WeaponStaff, 2800),
				member("a2", domain.WeaponDaggers, domain.WeaponCrossbow, 2500),
			},
		},
		{
			GuildID:     "g1",
			PartyNumber: 2,
			Members: []entities.PartyMember{
				member("x1", domain.WeaponSwordShield, domain.WeaponGreatsword, 3000),
				member("b1", domain.WeaponLongbow, domain.WeaponStaff, 2600),
				member("b2", domain.WeaponGreatsword, domain.WeaponDaggers, 2700),
			},
		},
	}

	svc, _, _ := newFormationFixture(t, event, parties, nil)
	ctx := context.Background()
	formation, err := svc.Reform(ctx, event.ID, "admin")
	require.NoError(t, err)

	counts := map[string]int{}
	for _, id := range formation.MemberIDs() {
		counts[id]++
	}
	for id, n := range counts {
		assert.Equal(t, 1, n, "member %s placed once", id)
	}
	assert.Equal(t, 1, counts["x1"])

	require.Len(t, formation.ProcessedParties, 2)
	first := formation.ProcessedParties[0]
	assert.Equal(t, entities.PartyIntact, first.Status)
	assert.Len(t, first.Members, 3)

	// Losing x1 drops the second party under the minimum; its remainder
	// lands in the pool.
	second := formation.ProcessedParties[1]
	assert.Equal(t, entities.PartyDisbanded, second.Status)
	require.Len(t, formation.AvailableMembers, 2)
	for _, m := range formation.AvailableMembers {
		assert.Equal(t, "Party 2 (disbanded)", m.Source)
		assert.NotEqual(t, "x1", m.MemberID)
	}

	// The edit flow stays usable: the derived layout passes its own
	// duplicate validation.
	_, err = svc.SaveEdit(ctx, event.ID, formation.ProcessedParties, formation.AvailableMembers)
	require.NoError(t, err)
}

func TestReformPoolsUnassignedAttendeesWithProfiles(t *testing.T) {
	event := &entities.Event{
		GuildID:   "g1",
		EventTime: time.Now().Add(time.Hour),
	}
	event.RSVPs = append(rsvps(domain.RSVPAttending, "d1"),
		rsvps(domain.RSVPMaybe, "d2", "d3")...)

	profiles := map[string]entities.MemberProfile{
		"d1": {GuildID: "g1", MemberID: "d1", WeaponMain: domain.WeaponWand, WeaponOff: domain.WeaponStaff, CombatPower: 2400},
		"d2": {GuildID: "g1", MemberID: "d2", WeaponMain: domain.WeaponLongbow, WeaponOff: domain.WeaponDaggers, CombatPower: 2200},
	}

	svc, _, _ := newFormationFixture(t, event, nil, profiles)
	formation, err := svc.Reform(context.Background(), event.ID, "admin")
	require.NoError(t, err)

	// d3 has no profile and is skipped; d1 and d2 land in the pool
	// sorted by member id.
	require.Len(t, formation.AvailableMembers, 2)
	assert.Equal(t, "d1", formation.AvailableMembers[0].MemberID)
	assert.Equal(t, domain.RoleHealer, formation.AvailableMembers[0].Role)
	assert.Equal(t, "Unassigned", formation.AvailableMembers[0].Source)
	assert.Equal(t, "d2", formation.AvailableMembers[1].MemberID)
	assert.Equal(t, domain.RoleDPS, formation.AvailableMembers[1].Role)

	assert.Equal(t, 3, formation.Summary.TotalAttending)
	assert.Equal(t, 2, formation.Summary.MembersAvailable)
}

func TestReformOverwritesPreviousFormation(t *testing.T) {
	event := &entities.Event{
		GuildID:   "g1",
		EventTime: time.Now().Add(time.Hour),
		RSVPs:     rsvps(domain.RSVPAttending, "e1"),
	}
	profiles := map[string]entities.MemberProfile{
		"e1": {GuildID: "g1", MemberID: "e1", WeaponMain: domain.WeaponStaff, WeaponOff: domain.WeaponDaggers, CombatPower: 2000},
	}

	svc, _, formations := newFormationFixture(t, event, nil, profiles)
	ctx := context.Background()

	first, err := svc.Reform(ctx, event.ID, "admin")
	require.NoError(t, err)
	require.Len(t, first.AvailableMembers, 1)

	second, err := svc.Reform(ctx, event.ID, "admin")
	require.NoError(t, err)

	stored, err := formations.FindByEventID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, second.CreatedAt, stored.CreatedAt)
	assert.False(t, stored.Approved)
}

func TestSaveEditRejectsDuplicateMember(t *testing.T) {
	event := &entities.Event{
		GuildID:   "g1",
		EventTime: time.Now().Add(time.Hour),
		RSVPs:     rsvps(domain.RSVPAttending, "f1", "f2", "f3"),
	}
	parties := []entities.StaticParty{{
		GuildID:     "g1",
		PartyNumber: 1,
		Members: []entities.PartyMember{
			member("f1", domain.WeaponSwordShield, domain.WeaponGreatsword, 3000),
			member("f2", domain.WeaponWand, domain.WeaponStaff, 2800),
			member("f3", domain.WeaponDaggers, domain.WeaponCrossbow, 2500),
		},
	}}

	svc, _, _ := newFormationFixture(t, event, parties, nil)
	ctx := context.Background()
	formation, err := svc.Reform(ctx, event.ID, "admin")
	require.NoError(t, err)

	// Duplicate f1 into the pool on top of its party slot.
	pool := append([]entities.PoolMember{}, formation.AvailableMembers...)
	pool = append(pool, entities.PoolMember{MemberID: "f1", Source: "Unassigned"})

	_, err = svc.SaveEdit(ctx, event.ID, formation.ProcessedParties, pool)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "appears twice")
}

func TestSaveEditRecomputesSummary(t *testing.T) {
	event := &entities.Event{
		GuildID:   "g1",
		EventTime: time.Now().Add(time.Hour),
		RSVPs:     rsvps(domain.RSVPAttending, "f1", "f2", "f3"),
	}
	parties := []entities.StaticParty{{
		GuildID:     "g1",
		PartyNumber: 1,
		Members: []entities.PartyMember{
			member("f1", domain.WeaponSwordShield, domain.WeaponGreatsword, 3000),
			member("f2", domain.WeaponWand, domain.WeaponStaff, 2800),
			member("f3", domain.WeaponDaggers, domain.WeaponCrossbow, 2500),
		},
	}}

	svc, _, _ := newFormationFixture(t, event, parties, nil)
	ctx := context.Background()
	formation, err := svc.Reform(ctx, event.ID, "admin")
	require.NoError(t, err)

	// Move f3 from the party into the pool.
	edited := formation.ProcessedParties
	edited[0].Status = entities.PartyModified
	edited[0].Members = edited[0].Members[:2]
	pool := []entities.PoolMember{{MemberID: "f3", Source: "Unassigned"}}

	revised, err := svc.SaveEdit(ctx, event.ID, edited, pool)
	require.NoError(t, err)
	assert.Equal(t, 1, revised.Summary.MembersAvailable)
	assert.Equal(t, 1, revised.Summary.PartiesModified)
	assert.Equal(t, 3, revised.Summary.TotalAttending, "attendance total survives edits")
}

func TestSaveAndGetProfile(t *testing.T) {
	event := &entities.Event{GuildID: "g1", EventTime: time.Now().Add(time.Hour)}
	svc, _, _ := newFormationFixture(t, event, nil, nil)
	ctx := context.Background()

	_, err := svc.GetProfile(ctx, "g1", "m1")
	assert.ErrorIs(t, err, domain.ErrNoProfile)

	require.NoError(t, svc.SaveProfile(ctx, &entities.MemberProfile{
		GuildID:     "g1",
		MemberID:    "m1",
		WeaponMain:  domain.WeaponWand,
		WeaponOff:   domain.WeaponStaff,
		CombatPower: 2100,
	}))

	profile, err := svc.GetProfile(ctx, "g1", "m1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleHealer, profile.Role())
	assert.False(t, profile.UpdatedAt.IsZero())
}

func TestApproveMarksFormationAndEvent(t *testing.T) {
	event := &entities.Event{
		GuildID:   "g1",
		EventTime: time.Now().Add(time.Hour),
		RSVPs:     rsvps(domain.RSVPAttending, "e1"),
	}
	profiles := map[string]entities.MemberProfile{
		"e1": {GuildID: "g1", MemberID: "e1", WeaponMain: domain.WeaponStaff, WeaponOff: domain.WeaponDaggers, CombatPower: 2000},
	}

	svc, events, formations := newFormationFixture(t, event, nil, profiles)
	ctx := context.Background()
	_, err := svc.Reform(ctx, event.ID, "admin")
	require.NoError(t, err)

	require.NoError(t, svc.Approve(ctx, event.ID))

	stored, err := formations.FindByEventID(ctx, event.ID)
	require.NoError(t, err)
	assert.True(t, stored.Approved)

	loaded, err := events.FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.True(t, loaded.PartiesFormed)
}

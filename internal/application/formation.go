package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"raidbot/internal/domain"
	"raidbot/internal/domain/entities"
	"raidbot/internal/ports/output"
)

type FormationService struct {
	events     output.EventRepository
	parties    output.PartyRepository
	profiles   output.ProfileRepository
	formations output.FormationRepository
	minSize    int
	now        func() time.Time
	log        *zap.Logger
}

func NewFormationService(
	events output.EventRepository,
	parties output.PartyRepository,
	profiles output.ProfileRepository,
	formations output.FormationRepository,
	minPartySize int,
	log *zap.Logger,
) *FormationService {
	return &FormationService{
		events:     events,
		parties:    parties,
		profiles:   profiles,
		formations: formations,
		minSize:    minPartySize,
		now:        time.Now,
		log:        log,
	}
}

// Reform reconciles the guild's static parties against the event's
// RSVP sets and overwrites the event's formation with the result.
// It is a pure derivation of current inputs: re-running it before
// dispatch is always safe.
func (s *FormationService) Reform(ctx context.Context, eventID uint, triggeredBy string) (*entities.Formation, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if errors.Is(err, domain.ErrEventNotFound) {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}
	parties, err := s.parties.FindByGuildID(ctx, event.GuildID)
	if err != nil {
		return nil, fmt.Errorf("load static parties: %w", err)
	}
	profiles, err := s.profiles.FindByGuild(ctx, event.GuildID)
	if err != nil {
		return nil, fmt.Errorf("load member profiles: %w", err)
	}

	formation := s.reform(event, parties, profiles, triggeredBy)
	if err := s.formations.Save(ctx, formation); err != nil {
		return nil, fmt.Errorf("save formation: %w", err)
	}

	s.log.Info("formation derived",
		zap.Uint("event_id", eventID),
		zap.Int("attending", formation.Summary.TotalAttending),
		zap.Int("intact", formation.Summary.PartiesIntact),
		zap.Int("modified", formation.Summary.PartiesModified),
		zap.Int("disbanded", formation.Summary.PartiesDisbanded),
		zap.Int("available", formation.Summary.MembersAvailable))
	return formation, nil
}

// reform is the assignment algorithm proper. Parties arrive in
// party-number order with the reserve already excluded.
func (s *FormationService) reform(
	event *entities.Event,
	parties []entities.StaticParty,
	profiles map[string]entities.MemberProfile,
	triggeredBy string,
) *entities.Formation {
	declined := make(map[string]bool)
	for _, id := range event.DeclinedIDs() {
		declined[id] = true
	}
	attendees := event.AttendeeSet()

	formation := &entities.Formation{
		EventID:          event.ID,
		ProcessedParties: []entities.ProcessedParty{},
		AvailableMembers: []entities.PoolMember{},
		CreatedBy:        triggeredBy,
		CreatedAt:        s.now(),
	}

	// Every member placed in a processed party or the pool. Consulted
	// during partitioning too: nothing in the store forbids the same
	// member on two rosters, and each member must land exactly once.
	// First party number wins.
	placed := make(map[string]bool)

	for _, party := range parties {
		var remaining, removed []entities.PartyMember
		for _, m := range party.Members {
			if declined[m.MemberID] {
				removed = append(removed, m)
				continue
			}
			if placed[m.MemberID] {
				s.log.Warn("member rostered in multiple parties, kept in first",
					zap.Uint("event_id", event.ID),
					zap.String("member_id", m.MemberID),
					zap.Int("party_number", party.PartyNumber))
				continue
			}
			remaining = append(remaining, m)
			placed[m.MemberID] = true
		}

		processed := entities.ProcessedParty{
			PartyNumber:    party.PartyNumber,
			Titles:         party.Titles,
			RemovedMembers: removed,
		}

		if len(remaining) < s.minSize {
			// Too few left to stand: disband and pour the remainder
			// into the pool. Removed members carried the "not
			// attending" intent and are dropped entirely.
			processed.Status = entities.PartyDisbanded
			source := fmt.Sprintf("Party %d (disbanded)", party.PartyNumber)
			for _, m := range remaining {
				formation.AvailableMembers = append(formation.AvailableMembers, entities.PoolMember{
					MemberID:    m.MemberID,
					WeaponMain:  m.WeaponMain,
					WeaponOff:   m.WeaponOff,
					Role:        m.Role,
					CombatPower: m.CombatPower,
					Source:      source,
				})
			}
		} else {
			processed.Status = entities.PartyIntact
			if len(removed) > 0 {
				processed.Status = entities.PartyModified
			}
			processed.Members = remaining
			processed.RoleComposition = composition(remaining)
		}

		formation.ProcessedParties = append(formation.ProcessedParties, processed)
	}

	// Attendees outside every static party. Sorted so re-derivation is
	// deterministic.
	unplaced := []string{}
	for id := range attendees {
		if !placed[id] {
			unplaced = append(unplaced, id)
		}
	}
	sort.Strings(unplaced)

	for _, id := range unplaced {
		profile, ok := profiles[id]
		if !ok {
			// Completeness exception: without gear data the member
			// cannot be slotted anywhere. Skipped loudly, never
			// silently dropped.
			s.log.Warn("attendee has no combat profile, skipped",
				zap.Uint("event_id", event.ID),
				zap.String("member_id", id))
			continue
		}
		formation.AvailableMembers = append(formation.AvailableMembers, entities.PoolMember{
			MemberID:    id,
			WeaponMain:  profile.WeaponMain,
			WeaponOff:   profile.WeaponOff,
			Role:        profile.Role(),
			CombatPower: profile.CombatPower,
			Source:      "Unassigned",
		})
	}

	formation.Summary = summarize(len(attendees), formation)
	return formation
}

func composition(members []entities.PartyMember) entities.RoleComposition {
	var c entities.RoleComposition
	for _, m := range members {
		switch m.Role {
		case domain.RoleTank:
			c.Tanks++
		case domain.RoleHealer:
			c.Healers++
		default:
			c.DPS++
		}
	}
	return c
}

func summarize(totalAttending int, f *entities.Formation) entities.FormationSummary {
	s := entities.FormationSummary{
		TotalAttending:   totalAttending,
		MembersAvailable: len(f.AvailableMembers),
	}
	for _, p := range f.ProcessedParties {
		switch p.Status {
		case entities.PartyIntact:
			s.PartiesIntact++
		case entities.PartyModified:
			s.PartiesModified++
		case entities.PartyDisbanded:
			s.PartiesDisbanded++
		}
	}
	return s
}

func (s *FormationService) GetFormation(ctx context.Context, eventID uint) (*entities.Formation, error) {
	return s.formations.FindByEventID(ctx, eventID)
}

// SaveEdit replaces the layout with the dashboard revision. Members
// may move between parties and the pool but nobody may appear twice.
func (s *FormationService) SaveEdit(ctx context.Context, eventID uint, parties []entities.ProcessedParty, pool []entities.PoolMember) (*entities.Formation, error) {
	formation, err := s.formations.FindByEventID(ctx, eventID)
	if errors.Is(err, domain.ErrFormationNotFound) {
		return nil, domain.ErrFormationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load formation: %w", err)
	}

	seen := make(map[string]bool)
	revised := &entities.Formation{
		EventID:          eventID,
		ProcessedParties: parties,
		AvailableMembers: pool,
		CreatedBy:        formation.CreatedBy,
		CreatedAt:        formation.CreatedAt,
	}
	for _, id := range revised.MemberIDs() {
		if seen[id] {
			return nil, fmt.Errorf("member %s appears twice in revised formation", id)
		}
		seen[id] = true
	}
	revised.Summary = summarize(formation.Summary.TotalAttending, revised)

	if err := s.formations.Save(ctx, revised); err != nil {
		return nil, fmt.Errorf("save revised formation: %w", err)
	}
	return revised, nil
}

// Approve marks the formation dispatched and the event formed. After
// this the formation is a historical record.
func (s *FormationService) Approve(ctx context.Context, eventID uint) error {
	if err := s.formations.MarkApproved(ctx, eventID); err != nil {
		return fmt.Errorf("mark formation approved: %w", err)
	}
	if _, err := s.events.MarkPartiesFormed(ctx, eventID); err != nil {
		return fmt.Errorf("mark parties formed: %w", err)
	}
	return nil
}

func (s *FormationService) ListParties(ctx context.Context, guildID string) ([]entities.StaticParty, error) {
	return s.parties.FindByGuildID(ctx, guildID)
}

func (s *FormationService) GetParty(ctx context.Context, guildID string, partyNumber int) (*entities.StaticParty, error) {
	return s.parties.FindByNumber(ctx, guildID, partyNumber)
}

func (s *FormationService) SaveProfile(ctx context.Context, profile *entities.MemberProfile) error {
	profile.UpdatedAt = s.now()
	return s.profiles.Upsert(ctx, profile)
}

func (s *FormationService) GetProfile(ctx context.Context, guildID, memberID string) (*entities.MemberProfile, error) {
	return s.profiles.FindByMember(ctx, guildID, memberID)
}

package application

import (
	"context"
	"sync"
	"time"

	"raidbot/internal/domain"
	"raidbot/internal/domain/entities"
)

// memEventRepo implements output.EventRepository in memory with the
// same conditional-write semantics as the SQL implementation: every
// mutation checks its predicate and reports a match under one lock.
type memEventRepo struct {
	mu     sync.Mutex
	nextID uint
	events map[uint]*entities.Event

	// findErr simulates a store outage on reads.
	findErr error
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: make(map[uint]*entities.Event)}
}

func (r *memEventRepo) put(e *entities.Event) *entities.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e.ID = r.nextID
	r.events[e.ID] = e
	return e
}

func cloneEvent(e *entities.Event) *entities.Event {
	c := *e
	c.RSVPs = append([]entities.RSVP{}, e.RSVPs...)
	c.Attendees = append([]string{}, e.Attendees...)
	return &c
}

func (r *memEventRepo) Create(_ context.Context, e *entities.Event) error {
	r.put(e)
	return nil
}

func (r *memEventRepo) FindByID(_ context.Context, id uint) (*entities.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	e, ok := r.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return cloneEvent(e), nil
}

func (r *memEventRepo) FindByMessageID(_ context.Context, messageID string) (*entities.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, e := range r.events {
		if e.MessageID == messageID {
			return cloneEvent(e), nil
		}
	}
	return nil, domain.ErrEventNotFound
}

func (r *memEventRepo) FindOpen(_ context.Context) ([]entities.Event, error) { return nil, nil }

func (r *memEventRepo) AttachMessage(_ context.Context, id uint, channelID, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.events[id]; ok {
		e.ChannelID = channelID
		e.MessageID = messageID
	}
	return nil
}

func (r *memEventRepo) SetRSVP(_ context.Context, id uint, memberID string, status domain.RSVPStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok || e.Closed {
		return false, nil
	}
	for i := range e.RSVPs {
		if e.RSVPs[i].MemberID == memberID {
			e.RSVPs[i].Status = status
			return true, nil
		}
	}
	e.RSVPs = append(e.RSVPs, entities.RSVP{MemberID: memberID, Status: status})
	return true, nil
}

func (r *memEventRepo) RecordAttendance(_ context.Context, id uint, memberID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok || e.Closed {
		return false, nil
	}
	for _, a := range e.Attendees {
		if a == memberID {
			return false, nil
		}
	}
	e.Attendees = append(e.Attendees, memberID)
	return true, nil
}

func (r *memEventRepo) Close(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok || e.Closed {
		return false, nil
	}
	e.Closed = true
	return true, nil
}

func (r *memEventRepo) MarkRemindersSent(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok || e.RemindersSent {
		return false, nil
	}
	e.RemindersSent = true
	return true, nil
}

func (r *memEventRepo) MarkPartiesFormed(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok || e.PartiesFormed {
		return false, nil
	}
	e.PartiesFormed = true
	return true, nil
}

func (r *memEventRepo) FindNeedingReminder(_ context.Context, _, _ time.Time) ([]entities.Event, error) {
	return nil, nil
}

func (r *memEventRepo) FindToClose(_ context.Context, _ time.Time) ([]entities.Event, error) {
	return nil, nil
}

func (r *memEventRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.events, id)
	return nil
}

// memRewardRepo counts reward writes.
type memRewardRepo struct {
	mu         sync.Mutex
	bonusCalls int
	bonusTotal int
	rankCalls  int
	resets     int
}

func (r *memRewardRepo) AddBonus(_ context.Context, _, _ string, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bonusCalls++
	r.bonusTotal += points
	return nil
}

func (r *memRewardRepo) IncrementTotalEvents(_ context.Context, _, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rankCalls++
	return nil
}

func (r *memRewardRepo) ResetLedger(_ context.Context, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets++
	return nil
}

func (r *memRewardRepo) FindLedger(_ context.Context, guildID, memberID string) (*entities.BonusLedger, error) {
	return &entities.BonusLedger{GuildID: guildID, MemberID: memberID}, nil
}

func (r *memRewardRepo) TopRankings(_ context.Context, _ string, _ int) ([]entities.ActivityRanking, error) {
	return nil, nil
}

// memPartyRepo serves a fixed party list.
type memPartyRepo struct {
	parties []entities.StaticParty
}

func (r *memPartyRepo) FindByGuildID(_ context.Context, _ string) ([]entities.StaticParty, error) {
	return r.parties, nil
}

func (r *memPartyRepo) FindByNumber(_ context.Context, _ string, n int) (*entities.StaticParty, error) {
	for i := range r.parties {
		if r.parties[i].PartyNumber == n {
			return &r.parties[i], nil
		}
	}
	return nil, domain.ErrPartyNotFound
}

// memProfileRepo serves a fixed profile map.
type memProfileRepo struct {
	profiles map[string]entities.MemberProfile
}

func (r *memProfileRepo) Upsert(_ context.Context, p *entities.MemberProfile) error {
	if r.profiles == nil {
		r.profiles = make(map[string]entities.MemberProfile)
	}
	r.profiles[p.MemberID] = *p
	return nil
}

func (r *memProfileRepo) FindByMember(_ context.Context, _, memberID string) (*entities.MemberProfile, error) {
	p, ok := r.profiles[memberID]
	if !ok {
		return nil, domain.ErrNoProfile
	}
	return &p, nil
}

func (r *memProfileRepo) FindByGuild(_ context.Context, _ string) (map[string]entities.MemberProfile, error) {
	return r.profiles, nil
}

// memFormationRepo stores the last saved formation.
type memFormationRepo struct {
	mu    sync.Mutex
	saved *entities.Formation
}

func (r *memFormationRepo) Save(_ context.Context, f *entities.Formation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *f
	r.saved = &c
	return nil
}

func (r *memFormationRepo) FindByEventID(_ context.Context, eventID uint) (*entities.Formation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saved == nil || r.saved.EventID != eventID {
		return nil, domain.ErrFormationNotFound
	}
	c := *r.saved
	return &c, nil
}

func (r *memFormationRepo) MarkApproved(_ context.Context, eventID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saved == nil || r.saved.EventID != eventID {
		return domain.ErrFormationNotFound
	}
	r.saved.Approved = true
	return nil
}

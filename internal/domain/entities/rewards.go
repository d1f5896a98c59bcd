package entities

// BonusLedger is the resettable per-member reward currency.
type BonusLedger struct {
	GuildID        string
	MemberID       string
	BonusCount     int
	EventsAttended int
}

// ActivityRanking is the permanent participation counter. It lives in
// its own table precisely so that no ledger reset can touch it.
type ActivityRanking struct {
	GuildID     string
	MemberID    string
	TotalEvents int
}

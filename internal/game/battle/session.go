package battle

import (
	"time"

	"github.com/google/uuid"
)

// TurnEntry is one immutable log record: both combatants' pools after the
// exchange, which action was used, crit flags, and whether the battle ended.
type TurnEntry struct {
	Turn          int
	Action        Action
	PlayerDamage  int // damage dealt by the player this turn
	MonsterDamage int // damage dealt by the monster this turn
	PlayerCrit    bool
	MonsterCrit   bool
	PlayerHP      int
	PlayerMP      int
	MonsterHP     int
	MonsterMP     int
	FleeSucceeded bool
	Ended         bool
	Outcome       State // terminal state if Ended, else StateInProgress
}

// Session is the ephemeral state of one active encounter. The HP/MP pools
// diverge from the character's persisted values until the battle ends.
//
// Invariant: at most one non-terminal Session exists per character.
type Session struct {
	ID          uuid.UUID
	CharacterID int64
	MonsterID   string

	Turn            int
	PlayerHP        int
	PlayerMP        int
	MonsterHP       int
	MonsterMP       int
	PlayerDefending bool

	State State
	Log   []TurnEntry

	StartedAt time.Time
}

// Clone returns a deep copy so turn resolution can fail without corrupting
// the caller's snapshot.
func (s *Session) Clone() *Session {
	out := *s
	out.Log = make([]TurnEntry, len(s.Log))
	copy(out.Log, s.Log)
	return &out
}

// appendTurn records an entry and advances the turn counter.
func (s *Session) appendTurn(e TurnEntry) {
	s.Log = append(s.Log, e)
	s.Turn++
}

package battle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// The arena keeps the pending challenges and the running encounters.
// Nothing in it is persisted
type Arena struct {
	mu               sync.Mutex
	challenges       map[uuid.UUID]*Challenge
	encounters       map[uuid.UUID]*Encounter
	busy             map[string]uuid.UUID
	source           SnapshotSource
	roller           Roller
	challengeTimeout time.Duration
	idleTimeout      time.Duration
	now              func() time.Time
}

// Everything removed by a sweep
type Expired struct {
	Challenges []*Challenge
	Encounters []*Encounter
}

func NewArena(source SnapshotSource, roller Roller, challengeTimeout time.Duration, idleTimeout time.Duration) *Arena {
	return &Arena{
		challenges:       map[uuid.UUID]*Challenge{},
		encounters:       map[uuid.UUID]*Encounter{},
		busy:             map[string]uuid.UUID{},
		source:           source,
		roller:           roller,
		challengeTimeout: challengeTimeout,
		idleTimeout:      idleTimeout,
		now:              time.Now,
	}
}

// Propose registers a challenge unless it is against oneself, against
// the bot, or one of the users is already busy
func (a *Arena) Propose(challenger Participant, challenged Participant, botId string) (*Challenge, error) {
	if challenger.Id == challenged.Id {
		return nil, ErrSelfChallenge
	}
	if challenged.Id == botId {
		return nil, ErrChallengedBot
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, id := range []string{challenger.Id, challenged.Id} {
		if _, ok := a.busy[id]; ok {
			return nil, ErrBusy
		}
	}
	c := newChallenge(challenger, challenged, a.challengeTimeout, a.now())
	a.challenges[c.Id] = c
	a.busy[challenger.Id] = c.Id
	a.busy[challenged.Id] = c.Id
	log.Info().Str("challenge", c.Id.String()).Msg(fmt.Sprintf("%s challenged %s", challenger.Id, challenged.Id))
	return c, nil
}

func (a *Arena) SetChallengeMessage(id uuid.UUID, message MessageRef) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if c, ok := a.challenges[id]; ok {
		c.Message = message
	}
}

// claim removes the challenge if the actor is the one who was challenged
func (a *Arena) claim(id uuid.UUID, actorId string) (*Challenge, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.challenges[id]
	// Expired challenges stay until the sweep reports them
	if !ok || c.expired(a.now()) {
		return nil, ErrUnknownBattle
	}
	if c.Challenged.Id != actorId {
		return nil, ErrNotYourBattle
	}
	delete(a.challenges, id)
	return c, nil
}

// Accept loads the stats of both users and starts the encounter
func (a *Arena) Accept(ctx context.Context, id uuid.UUID, actorId string) (*Encounter, error) {

	c, err := a.claim(id, actorId)
	if err != nil {
		return nil, err
	}

	// The challenge is already claimed, so the store can be queried
	// without holding the lock
	combatants := [2]*Combatant{}
	for i, participant := range []Participant{c.Challenger, c.Challenged} {
		snapshot, err := a.source.Snapshot(ctx, participant.Id)
		if err != nil {
			a.release(c.Id, c.Challenger.Id, c.Challenged.Id)
			return nil, fmt.Errorf("could not load stats of %s: %w", participant.Id, err)
		}
		combatants[i] = NewCombatant(participant, snapshot)
	}

	e := NewEncounter(combatants[0], combatants[1], a.roller, a.idleTimeout, a.now())
	e.message = c.Message

	a.mu.Lock()
	defer a.mu.Unlock()
	a.encounters[e.Id] = e
	a.busy[c.Challenger.Id] = e.Id
	a.busy[c.Challenged.Id] = e.Id
	log.Info().Str("encounter", e.Id.String()).Msg(fmt.Sprintf("Battle between %s and %s started", c.Challenger.Id, c.Challenged.Id))
	return e, nil
}

// Deny drops the challenge. Only the challenged user can do it, once
func (a *Arena) Deny(id uuid.UUID, actorId string) (*Challenge, error) {
	c, err := a.claim(id, actorId)
	if err != nil {
		return nil, err
	}
	a.release(c.Id, c.Challenger.Id, c.Challenged.Id)
	log.Info().Str("challenge", c.Id.String()).Msg("Challenge denied")
	return c, nil
}

// Act forwards the action to the encounter, discarding it once finished
func (a *Arena) Act(id uuid.UUID, actorId string, action Action) (*Encounter, Outcome, error) {
	e, ok := a.Encounter(id)
	if !ok {
		return nil, Outcome{}, ErrUnknownBattle
	}
	outcome, err := e.Act(actorId, action, a.now())
	if err != nil {
		return e, outcome, err
	}
	if outcome.Finished {
		a.remove(e)
		log.Info().Str("encounter", e.Id.String()).Msg(fmt.Sprintf("Battle finished, winner %d", outcome.Winner))
	}
	return e, outcome, nil
}

// Abort ends an encounter with no winner
func (a *Arena) Abort(id uuid.UUID) {
	e, ok := a.Encounter(id)
	if !ok {
		return
	}
	e.Abort()
	a.remove(e)
	log.Warn().Str("encounter", e.Id.String()).Msg("Battle aborted")
}

func (a *Arena) Encounter(id uuid.UUID) (*Encounter, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.encounters[id]
	return e, ok
}

// Sweep expires unanswered challenges and idle encounters
func (a *Arena) Sweep() Expired {
	now := a.now()
	var expired Expired

	a.mu.Lock()
	for id, c := range a.challenges {
		if c.expired(now) {
			delete(a.challenges, id)
			a.releaseLocked(c.Id, c.Challenger.Id, c.Challenged.Id)
			expired.Challenges = append(expired.Challenges, c)
		}
	}
	encounters := make([]*Encounter, 0, len(a.encounters))
	for _, e := range a.encounters {
		encounters = append(encounters, e)
	}
	a.mu.Unlock()

	for _, e := range encounters {
		if e.Expire(now) {
			a.remove(e)
			expired.Encounters = append(expired.Encounters, e)
		}
	}
	if len(expired.Challenges) > 0 || len(expired.Encounters) > 0 {
		log.Info().Msg(fmt.Sprintf("Expired %d challenges and %d battles", len(expired.Challenges), len(expired.Encounters)))
	}
	return expired
}

// Number of pending challenges and running encounters
func (a *Arena) Size() (int, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.challenges), len(a.encounters)
}

func (a *Arena) remove(e *Encounter) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.encounters, e.Id)
	ids := e.Participants()
	a.releaseLocked(e.Id, ids[0], ids[1])
}

func (a *Arena) release(owner uuid.UUID, userIds ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.releaseLocked(owner, userIds...)
}

// Users are only released from the challenge or encounter that holds them
func (a *Arena) releaseLocked(owner uuid.UUID, userIds ...string) {
	for _, id := range userIds {
		if a.busy[id] == owner {
			delete(a.busy, id)
		}
	}
}

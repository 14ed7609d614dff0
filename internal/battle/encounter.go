package battle

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"petbot/internal/common"

	"github.com/google/uuid"
)

type Action int

const (
	ACTION_ATTACK Action = iota
	ACTION_HEAL
)

func (action Action) String() string {
	switch action {
	case ACTION_ATTACK:
		return "attack"
	case ACTION_HEAL:
		return "heal"
	default:
		return fmt.Sprintf("action(%d)", int(action))
	}
}

type EncounterState int

const (
	ENCOUNTER_AWAITING_ACTION EncounterState = iota
	ENCOUNTER_FINISHED
)

// Winner value while there is none
const NO_WINNER int = -1

// Where an encounter or challenge is being displayed
type MessageRef struct {
	ChannelId string
	MessageId string
}

// The result of one accepted action
type Outcome struct {
	Actor    int
	Action   Action
	Amount   int
	Finished bool
	Winner   int
}

type Encounter struct {
	Id         uuid.UUID
	mu         sync.Mutex
	combatants [2]*Combatant
	turnIndex  int
	state      EncounterState
	winner     int
	forfeit    bool
	lastAction *Outcome
	message    MessageRef
	failures   int
	idle       common.Stopwatch
	roller     Roller
}

// A read only copy of an encounter, safe to render
type View struct {
	Id         uuid.UUID
	Combatants [2]Combatant
	TurnIndex  int
	State      EncounterState
	Winner     int
	Forfeit    bool
	LastAction *Outcome
	Message    MessageRef
}

// The challenged combatant moves first
func NewEncounter(challenger *Combatant, challenged *Combatant, roller Roller, idleTimeout time.Duration, now time.Time) *Encounter {
	e := &Encounter{
		Id:         uuid.New(),
		combatants: [2]*Combatant{challenger, challenged},
		turnIndex:  1,
		state:      ENCOUNTER_AWAITING_ACTION,
		winner:     NO_WINNER,
		idle:       common.NewStopwatch(idleTimeout),
		roller:     roller,
	}
	e.idle.StartAt(now)
	return e
}

// Act applies the action of the user if it is their turn
func (e *Encounter) Act(actorId string, action Action, now time.Time) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == ENCOUNTER_FINISHED {
		return Outcome{}, ErrFinished
	}
	if e.combatants[e.turnIndex].Id != actorId {
		return Outcome{}, ErrNotYourTurn
	}

	outcome := Outcome{Actor: e.turnIndex, Action: action, Winner: NO_WINNER}
	actor := e.combatants[e.turnIndex]
	switch action {
	case ACTION_ATTACK:
		defender := e.combatants[1-e.turnIndex]
		outcome.Amount = Damage(actor, defender, e.roller.IntN(6))
		defender.Health -= outcome.Amount
	case ACTION_HEAL:
		outcome.Amount = actor.Heal(10 + e.roller.IntN(11))
	default:
		return Outcome{}, ErrUnknownAction
	}

	e.turnIndex = 1 - e.turnIndex
	// Challenged wins a double knock out
	if e.combatants[0].Defeated() {
		e.finish(1)
	} else if e.combatants[1].Defeated() {
		e.finish(0)
	} else {
		e.idle.StartAt(now)
	}
	outcome.Finished = e.state == ENCOUNTER_FINISHED
	outcome.Winner = e.winner
	e.lastAction = &outcome
	return outcome, nil
}

// Expire forfeits the encounter in favour of the player waiting for the
// other one if nobody acted within the idle timeout
func (e *Encounter) Expire(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == ENCOUNTER_FINISHED {
		return false
	}
	if stopped, _ := e.idle.StoppedAt(now); !stopped {
		return false
	}
	e.forfeit = true
	e.finish(1 - e.turnIndex)
	return true
}

// Abort ends the encounter without a winner
func (e *Encounter) Abort() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != ENCOUNTER_FINISHED {
		e.finish(NO_WINNER)
	}
}

func (e *Encounter) finish(winner int) {
	e.state = ENCOUNTER_FINISHED
	e.winner = winner
	e.idle.Stop()
}

func (e *Encounter) Finished() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == ENCOUNTER_FINISHED
}

func (e *Encounter) Participants() [2]string {
	return [2]string{e.combatants[0].Id, e.combatants[1].Id}
}

func (e *Encounter) SetMessage(message MessageRef) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.message = message
}

// PresentationFailed records a failed update of the displayed message and
// returns the number of consecutive failures
func (e *Encounter) PresentationFailed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures++
	return e.failures
}

func (e *Encounter) PresentationSucceeded() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures = 0
}

func (e *Encounter) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	view := View{
		Id:         e.Id,
		Combatants: [2]Combatant{*e.combatants[0], *e.combatants[1]},
		TurnIndex:  e.turnIndex,
		State:      e.state,
		Winner:     e.winner,
		Forfeit:    e.forfeit,
		Message:    e.message,
	}
	if e.lastAction != nil {
		last := *e.lastAction
		view.LastAction = &last
	}
	return view
}

func (v *View) Finished() bool {
	return v.State == ENCOUNTER_FINISHED
}

// Status is a human readable description of the encounter: health of both
// combatants and whose move it is, or the final result
func (v *View) Status() string {
	var sb strings.Builder
	if v.LastAction != nil {
		actor := v.Combatants[v.LastAction.Actor].Name
		switch v.LastAction.Action {
		case ACTION_ATTACK:
			fmt.Fprintf(&sb, "%s attacked for %d damage\n", actor, v.LastAction.Amount)
		case ACTION_HEAL:
			fmt.Fprintf(&sb, "%s healed %d health\n", actor, v.LastAction.Amount)
		}
	}
	for _, c := range v.Combatants {
		fmt.Fprintf(&sb, "%s: %d/%d HP\n", c.Label(), max(c.Health, 0), MAX_HEALTH)
	}
	switch {
	case !v.Finished():
		fmt.Fprintf(&sb, "It is %s's turn", v.Combatants[v.TurnIndex].Name)
	case v.Winner == NO_WINNER:
		sb.WriteString("The battle was called off")
	case v.Forfeit:
		fmt.Fprintf(&sb, "%s wins, %s ran out of time", v.Combatants[v.Winner].Name, v.Combatants[1-v.Winner].Name)
	default:
		fmt.Fprintf(&sb, "%s wins the battle!", v.Combatants[v.Winner].Name)
	}
	return sb.String()
}

func (c *Combatant) Label() string {
	if c.Companion == "" {
		return c.Name
	}
	return fmt.Sprintf("%s (%s)", c.Name, c.Companion)
}

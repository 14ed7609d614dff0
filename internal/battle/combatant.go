package battle

import (
	"context"
	"math/rand/v2"
)

const MAX_HEALTH int = 100

// Stats persisted for the active companion of a user, read once when a
// challenge is accepted
type Snapshot struct {
	Companion string
	Attack    int
	Defense   int
}

type SnapshotSource interface {
	Snapshot(ctx context.Context, userId string) (Snapshot, error)
}

// Source of randomness for the actions. *rand.Rand satisfies it
type Roller interface {
	IntN(n int) int
}

type globalRoller struct{}

func (globalRoller) IntN(n int) int { return rand.IntN(n) }

// Roller backed by the goroutine safe global generator
var DefaultRoller Roller = globalRoller{}

type Participant struct {
	Id   string
	Name string
}

type Combatant struct {
	Id        string
	Name      string
	Companion string
	Attack    int
	Defense   int
	Health    int
}

func NewCombatant(participant Participant, snapshot Snapshot) *Combatant {
	return &Combatant{
		Id:        participant.Id,
		Name:      participant.Name,
		Companion: snapshot.Companion,
		Attack:    max(snapshot.Attack, 0),
		Defense:   max(snapshot.Defense, 0),
		Health:    MAX_HEALTH,
	}
}

func (c *Combatant) Defeated() bool {
	return c.Health <= 0
}

// Damage dealt by an attack with multiplier 1 + roll/10 (roll in [0, 5]).
// This is floor(attack * m / (defense * 0.05)) computed on integers, with
// a zero defense counted as one
func Damage(attacker *Combatant, defender *Combatant, roll int) int {
	return attacker.Attack * (10 + roll) * 2 / max(defender.Defense, 1)
}

// Heal restores health without going over the maximum and returns
// the amount actually applied
func (c *Combatant) Heal(amount int) int {
	before := c.Health
	c.Health = min(MAX_HEALTH, c.Health+amount)
	return c.Health - before
}

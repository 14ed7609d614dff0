package pets

import (
	"context"
	"fmt"

	"petbot/internal/battle"
	"petbot/internal/storage"

	"github.com/rs/zerolog/log"
)

const (
	PET_KITTY   = "kitty"
	PET_PARROT  = "parrot"
	PET_UNICORN = "unicorn"
	PET_DRAGON  = "dragon"
)

// Experience needed per level before the next level up
const XP_PER_LEVEL = 20

const gifQuery = "spongebob"

type Store interface {
	FindOrCreateMember(ctx context.Context, id string) (storage.Member, error)
	AddPetXP(ctx context.Context, memberId string, kind string, xp int) (storage.Pet, error)
	LevelUpPet(ctx context.Context, memberId string, kind string, attack int, defense int) (storage.Pet, error)
}

type GifSearcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// What the bot should post after a message, if anything
type Reaction struct {
	Pet     string
	Echo    string
	Gif     string
	LevelUp *storage.Pet
}

type Trainer struct {
	store  Store
	gifs   GifSearcher
	roller battle.Roller
}

func NewTrainer(store Store, gifs GifSearcher, roller battle.Roller) *Trainer {
	return &Trainer{store, gifs, roller}
}

// Stats gained by a pet on every level
func Increments(kind string) (attack int, defense int) {
	if kind == PET_DRAGON {
		return 12, 8
	}
	return 5, 3
}

// between returns a uniform integer in [low, high]
func (t *Trainer) between(low int, high int) int {
	return low + t.roller.IntN(high-low+1)
}

// OnMessage lets the active pet of the author react to the message and gain experience
func (t *Trainer) OnMessage(ctx context.Context, authorId string, content string) (Reaction, error) {

	member, err := t.store.FindOrCreateMember(ctx, authorId)
	if err != nil {
		return Reaction{}, err
	}
	kind := member.ActivePet
	if kind == "" {
		return Reaction{}, nil
	}

	reaction := Reaction{Pet: kind}
	xp := t.between(1, 5)
	switch kind {
	case PET_KITTY:
		xp = t.between(1, 10)
	case PET_PARROT:
		reaction.Echo = fmt.Sprintf("🦜 ***%s***", content)
	case PET_UNICORN:
		if t.between(1, 10) >= 9 {
			reaction.Gif = t.randomGif(ctx)
		}
	}

	pet, err := t.store.AddPetXP(ctx, authorId, kind, xp)
	if err != nil {
		return reaction, err
	}
	if pet.Xp >= XP_PER_LEVEL*pet.Level {
		attack, defense := Increments(kind)
		pet, err = t.store.LevelUpPet(ctx, authorId, kind, attack, defense)
		if err != nil {
			return reaction, err
		}
		log.Info().Msg(fmt.Sprintf("Pet %s of %s reached level %d", kind, authorId, pet.Level))
		reaction.LevelUp = &pet
	}
	return reaction, nil
}

func (t *Trainer) randomGif(ctx context.Context) string {
	if t.gifs == nil {
		return ""
	}
	urls, err := t.gifs.Search(ctx, gifQuery)
	if err != nil {
		log.Warn().Err(err).Msg("Could not fetch a gif")
		return ""
	}
	if len(urls) == 0 {
		return ""
	}
	return urls[t.roller.IntN(len(urls))]
}

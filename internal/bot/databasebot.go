package bot

import (
	"context"
	"time"

	"petbot/internal/storage"
)

// DatabaseBot is the part of the storage the bot commands use
type DatabaseBot interface {
	FindOrCreateMember(ctx context.Context, id string) (storage.Member, error)
	ClaimDaily(ctx context.Context, id string, now time.Time, cooldown time.Duration, amount int) (int, error)
	Pets(ctx context.Context, memberId string) ([]storage.Pet, error)
	SetActivePet(ctx context.Context, id string, kind string) error
	BuyPet(ctx context.Context, memberId string, pet storage.Pet, price int) (int, error)
}

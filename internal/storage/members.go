package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Member struct {
	Id        string
	Coins     int
	Xp        int
	Level     int
	ActivePet string
	LastDaily time.Time
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func ensureMember(ctx context.Context, q queryer, id string) error {
	if _, err := q.ExecContext(ctx, `INSERT INTO members (id) VALUES (?) ON CONFLICT (id) DO NOTHING`, id); err != nil {
		return fmt.Errorf("create member %s: %w", id, err)
	}
	return nil
}

// FindOrCreateMember returns the member document, creating an empty one first if needed
func (s *Store) FindOrCreateMember(ctx context.Context, id string) (Member, error) {
	if err := ensureMember(ctx, s.db, id); err != nil {
		return Member{}, err
	}
	var member Member
	var lastDaily sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, coins, xp, level, active_pet, last_daily FROM members WHERE id = ?`, id,
	).Scan(&member.Id, &member.Coins, &member.Xp, &member.Level, &member.ActivePet, &lastDaily)
	if err != nil {
		return Member{}, fmt.Errorf("get member %s: %w", id, err)
	}
	if lastDaily.Valid {
		member.LastDaily = fromMillis(lastDaily.Int64)
	}
	return member, nil
}

func addCoins(ctx context.Context, q queryer, id string, delta int) (int, error) {
	if err := ensureMember(ctx, q, id); err != nil {
		return 0, err
	}
	var coins int
	err := q.QueryRowContext(ctx,
		`UPDATE members SET coins = coins + ? WHERE id = ? AND coins + ? >= 0 RETURNING coins`,
		delta, id, delta,
	).Scan(&coins)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrInsufficientCoins
	}
	if err != nil {
		return 0, fmt.Errorf("update coins of %s: %w", id, err)
	}
	return coins, nil
}

// AddCoins increments (or decrements) the balance, never below zero.
// Returns the new balance
func (s *Store) AddCoins(ctx context.Context, id string, delta int) (int, error) {
	return addCoins(ctx, s.db, id, delta)
}

// ClaimDaily adds the reward if the previous claim is older than the cooldown
func (s *Store) ClaimDaily(ctx context.Context, id string, now time.Time, cooldown time.Duration, amount int) (int, error) {
	if err := ensureMember(ctx, s.db, id); err != nil {
		return 0, err
	}
	var coins int
	err := s.db.QueryRowContext(ctx,
		`UPDATE members SET coins = coins + ?, last_daily = ?
		 WHERE id = ? AND (last_daily IS NULL OR last_daily <= ?)
		 RETURNING coins`,
		amount, toMillis(now), id, toMillis(now.Add(-cooldown)),
	).Scan(&coins)
	if errors.Is(err, sql.ErrNoRows) {
		member, err := s.FindOrCreateMember(ctx, id)
		if err != nil {
			return 0, err
		}
		return 0, &CooldownError{Remaining: member.LastDaily.Add(cooldown).Sub(now)}
	}
	if err != nil {
		return 0, fmt.Errorf("claim daily of %s: %w", id, err)
	}
	return coins, nil
}

// SetActivePet selects one of the pets the member owns
func (s *Store) SetActivePet(ctx context.Context, id string, kind string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE members SET active_pet = ?
		 WHERE id = ? AND EXISTS (SELECT 1 FROM pets WHERE member_id = ? AND kind = ?)`,
		kind, id, id, kind,
	)
	if err != nil {
		return fmt.Errorf("set active pet of %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrPetNotOwned
	}
	return nil
}

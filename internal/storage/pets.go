package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"petbot/internal/battle"
)

type Pet struct {
	Kind    string
	Level   int
	Xp      int
	Attack  int
	Defense int
}

func scanPet(row interface{ Scan(...any) error }) (Pet, error) {
	var pet Pet
	err := row.Scan(&pet.Kind, &pet.Level, &pet.Xp, &pet.Attack, &pet.Defense)
	return pet, err
}

func insertPet(ctx context.Context, q queryer, memberId string, pet Pet) error {
	res, err := q.ExecContext(ctx,
		`INSERT INTO pets (member_id, kind, level, xp, attack, defense) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (member_id, kind) DO NOTHING`,
		memberId, pet.Kind, max(pet.Level, 1), pet.Xp, pet.Attack, pet.Defense,
	)
	if err != nil {
		return fmt.Errorf("add pet %s to %s: %w", pet.Kind, memberId, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrPetOwned
	}
	return nil
}

// AddPet gives a pet to the member
func (s *Store) AddPet(ctx context.Context, memberId string, pet Pet) error {
	if err := ensureMember(ctx, s.db, memberId); err != nil {
		return err
	}
	return insertPet(ctx, s.db, memberId, pet)
}

// BuyPet charges the price and adds the pet in a single transaction.
// Returns the remaining balance
func (s *Store) BuyPet(ctx context.Context, memberId string, pet Pet, price int) (int, error) {
	var coins int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureMember(ctx, tx, memberId); err != nil {
			return err
		}
		if err := insertPet(ctx, tx, memberId, pet); err != nil {
			return err
		}
		var err error
		coins, err = addCoins(ctx, tx, memberId, -price)
		return err
	})
	return coins, err
}

func (s *Store) Pets(ctx context.Context, memberId string) ([]Pet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, level, xp, attack, defense FROM pets WHERE member_id = ? ORDER BY kind`, memberId)
	if err != nil {
		return nil, fmt.Errorf("list pets of %s: %w", memberId, err)
	}
	defer rows.Close()
	var pets []Pet
	for rows.Next() {
		pet, err := scanPet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pet: %w", err)
		}
		pets = append(pets, pet)
	}
	return pets, rows.Err()
}

func (s *Store) Pet(ctx context.Context, memberId string, kind string) (Pet, error) {
	pet, err := scanPet(s.db.QueryRowContext(ctx,
		`SELECT kind, level, xp, attack, defense FROM pets WHERE member_id = ? AND kind = ?`, memberId, kind))
	if errors.Is(err, sql.ErrNoRows) {
		return Pet{}, ErrPetNotOwned
	}
	if err != nil {
		return Pet{}, fmt.Errorf("get pet %s of %s: %w", kind, memberId, err)
	}
	return pet, nil
}

// AddPetXP increments the experience of one pet and returns it updated
func (s *Store) AddPetXP(ctx context.Context, memberId string, kind string, xp int) (Pet, error) {
	pet, err := scanPet(s.db.QueryRowContext(ctx,
		`UPDATE pets SET xp = xp + ? WHERE member_id = ? AND kind = ?
		 RETURNING kind, level, xp, attack, defense`,
		xp, memberId, kind))
	if errors.Is(err, sql.ErrNoRows) {
		return Pet{}, ErrPetNotOwned
	}
	if err != nil {
		return Pet{}, fmt.Errorf("add xp to pet %s of %s: %w", kind, memberId, err)
	}
	return pet, nil
}

// LevelUpPet resets the experience, raises the level and adds the stat increments
func (s *Store) LevelUpPet(ctx context.Context, memberId string, kind string, attack int, defense int) (Pet, error) {
	pet, err := scanPet(s.db.QueryRowContext(ctx,
		`UPDATE pets SET xp = 0, level = level + 1, attack = attack + ?, defense = defense + ?
		 WHERE member_id = ? AND kind = ?
		 RETURNING kind, level, xp, attack, defense`,
		attack, defense, memberId, kind))
	if errors.Is(err, sql.ErrNoRows) {
		return Pet{}, ErrPetNotOwned
	}
	if err != nil {
		return Pet{}, fmt.Errorf("level up pet %s of %s: %w", kind, memberId, err)
	}
	return pet, nil
}

// Snapshot reads the stats of the active pet of a user. Users without a
// document or an active pet fight with zero stats. Nothing is written
func (s *Store) Snapshot(ctx context.Context, userId string) (battle.Snapshot, error) {
	var snapshot battle.Snapshot
	var attack, defense sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT m.active_pet, p.attack, p.defense FROM members m
		 LEFT JOIN pets p ON p.member_id = m.id AND p.kind = m.active_pet
		 WHERE m.id = ?`, userId,
	).Scan(&snapshot.Companion, &attack, &defense)
	if errors.Is(err, sql.ErrNoRows) {
		return battle.Snapshot{}, nil
	}
	if err != nil {
		return battle.Snapshot{}, fmt.Errorf("read battle stats of %s: %w", userId, err)
	}
	snapshot.Attack = int(attack.Int64)
	snapshot.Defense = int(defense.Int64)
	return snapshot, nil
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type FilterState int

const (
	FILTER_DISABLED FilterState = iota
	FILTER_ENABLED
)

func (state FilterState) String() string {
	switch state {
	case FILTER_DISABLED:
		return "disabled"
	case FILTER_ENABLED:
		return "enabled"
	default:
		return fmt.Sprintf("filter(%d)", int(state))
	}
}

type Guild struct {
	Id          string
	Name        string
	FilterState FilterState
}

// FindOrCreateGuild returns the guild document. A new guild gets the
// provided banned words
func (s *Store) FindOrCreateGuild(ctx context.Context, id string, name string, defaultWords []string) (Guild, error) {
	var guild Guild
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT INTO guilds (id, name) VALUES (?, ?) ON CONFLICT (id) DO NOTHING`, id, name)
		if err != nil {
			return fmt.Errorf("create guild %s: %w", id, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n > 0 {
			for _, word := range defaultWords {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO banned_words (guild_id, word) VALUES (?, ?) ON CONFLICT DO NOTHING`, id, word); err != nil {
					return fmt.Errorf("seed banned words of %s: %w", id, err)
				}
			}
		}
		return tx.QueryRowContext(ctx,
			`SELECT id, name, filter_state FROM guilds WHERE id = ?`, id,
		).Scan(&guild.Id, &guild.Name, &guild.FilterState)
	})
	if err != nil {
		return Guild{}, err
	}
	return guild, nil
}

func (s *Store) BannedWords(ctx context.Context, guildId string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT word FROM banned_words WHERE guild_id = ? ORDER BY word`, guildId)
	if err != nil {
		return nil, fmt.Errorf("list banned words of %s: %w", guildId, err)
	}
	defer rows.Close()
	words := []string{}
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, err
		}
		words = append(words, word)
	}
	return words, rows.Err()
}

func (s *Store) AddBannedWord(ctx context.Context, guildId string, word string) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO banned_words (guild_id, word) VALUES (?, ?) ON CONFLICT DO NOTHING`, guildId, word)
	if err != nil {
		return fmt.Errorf("ban word in %s: %w", guildId, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrWordExists
	}
	return nil
}

func (s *Store) RemoveBannedWord(ctx context.Context, guildId string, word string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM banned_words WHERE guild_id = ? AND word = ?`, guildId, word)
	if err != nil {
		return fmt.Errorf("unban word in %s: %w", guildId, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrWordNotFound
	}
	return nil
}

// SetFilterState moves the filter from one state to another, failing if
// the stored state is not the expected one
func (s *Store) SetFilterState(ctx context.Context, guildId string, from FilterState, to FilterState) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE guilds SET filter_state = ? WHERE id = ? AND filter_state = ?`, to, guildId, from)
	if err != nil {
		return fmt.Errorf("set filter state of %s: %w", guildId, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrStateConflict
	}
	return nil
}

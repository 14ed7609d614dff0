// Package automod deletes messages containing words banned in a guild.
package automod

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"petbot/internal/storage"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
)

var (
	ErrInvalidTransition = errors.New("invalid filter transition")
	ErrEmptyWord         = errors.New("empty word")
)

// Allowed filter transitions
var transitions = map[storage.FilterState][]storage.FilterState{
	storage.FILTER_DISABLED: {storage.FILTER_ENABLED},
	storage.FILTER_ENABLED:  {storage.FILTER_DISABLED},
}

type Store interface {
	FindOrCreateGuild(ctx context.Context, id string, name string, defaultWords []string) (storage.Guild, error)
	BannedWords(ctx context.Context, guildId string) ([]string, error)
	AddBannedWord(ctx context.Context, guildId string, word string) error
	RemoveBannedWord(ctx context.Context, guildId string, word string) error
	SetFilterState(ctx context.Context, guildId string, from storage.FilterState, to storage.FilterState) error
}

type rules struct {
	state storage.FilterState
	words []string
}

type Filter struct {
	store Store
	cache *expirable.LRU[string, rules]
}

// NewFilter keeps the rules of at most size guilds, each for at most ttl
func NewFilter(store Store, size int, ttl time.Duration) *Filter {
	return &Filter{store: store, cache: expirable.NewLRU[string, rules](size, nil, ttl)}
}

func fold(s string) string {
	return strings.Join(strings.Fields(cases.Fold().String(s)), " ")
}

func (f *Filter) rules(ctx context.Context, guildId string, guildName string) (rules, error) {
	if cached, ok := f.cache.Get(guildId); ok {
		return cached, nil
	}
	guild, err := f.store.FindOrCreateGuild(ctx, guildId, guildName, DefaultBannedWords)
	if err != nil {
		return rules{}, err
	}
	words, err := f.store.BannedWords(ctx, guildId)
	if err != nil {
		return rules{}, err
	}
	r := rules{state: guild.FilterState, words: make([]string, 0, len(words))}
	for _, word := range words {
		r.words = append(r.words, fold(word))
	}
	f.cache.Add(guildId, r)
	log.Debug().Msg(fmt.Sprintf("Loaded %d banned words for guild %s", len(r.words), guildId))
	return r, nil
}

func (f *Filter) invalidate(guildId string) {
	f.cache.Remove(guildId)
}

// Check returns the first banned word found in the content, if the filter
// is enabled for the guild
func (f *Filter) Check(ctx context.Context, guildId string, guildName string, content string) (string, bool, error) {
	r, err := f.rules(ctx, guildId, guildName)
	if err != nil {
		return "", false, err
	}
	if r.state != storage.FILTER_ENABLED {
		return "", false, nil
	}
	text := fold(content)
	for _, word := range r.words {
		if containsWord(text, word) {
			return word, true, nil
		}
	}
	return "", false, nil
}

func (f *Filter) State(ctx context.Context, guildId string, guildName string) (storage.FilterState, error) {
	r, err := f.rules(ctx, guildId, guildName)
	return r.state, err
}

// SetState moves the filter of the guild to a new state
func (f *Filter) SetState(ctx context.Context, guildId string, guildName string, to storage.FilterState) error {
	defer f.invalidate(guildId)
	guild, err := f.store.FindOrCreateGuild(ctx, guildId, guildName, DefaultBannedWords)
	if err != nil {
		return err
	}
	allowed := false
	for _, next := range transitions[guild.FilterState] {
		if next == to {
			allowed = true
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, guild.FilterState, to)
	}
	if err := f.store.SetFilterState(ctx, guildId, guild.FilterState, to); err != nil {
		return err
	}
	log.Info().Msg(fmt.Sprintf("Word filter of guild %s is now %s", guildId, to))
	return nil
}

func (f *Filter) Ban(ctx context.Context, guildId string, guildName string, word string) error {
	word = fold(word)
	if word == "" {
		return ErrEmptyWord
	}
	defer f.invalidate(guildId)
	if _, err := f.store.FindOrCreateGuild(ctx, guildId, guildName, DefaultBannedWords); err != nil {
		return err
	}
	return f.store.AddBannedWord(ctx, guildId, word)
}

func (f *Filter) Unban(ctx context.Context, guildId string, word string) error {
	word = fold(word)
	if word == "" {
		return ErrEmptyWord
	}
	defer f.invalidate(guildId)
	return f.store.RemoveBannedWord(ctx, guildId, word)
}

// containsWord finds word in text at word boundaries, so that "ass" does
// not match "class"
func containsWord(text string, word string) bool {
	if word == "" {
		return false
	}
	for offset := 0; offset < len(text); {
		index := strings.Index(text[offset:], word)
		if index == -1 {
			return false
		}
		start := offset + index
		end := start + len(word)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func boundaryBefore(text string, index int) bool {
	if index == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:index])
	return !isWordRune(r)
}

func boundaryAfter(text string, index int) bool {
	if index >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[index:])
	return !isWordRune(r)
}

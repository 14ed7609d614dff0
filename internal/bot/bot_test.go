package bot

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"petbot/internal/automod"
	"petbot/internal/battle"
	"petbot/internal/pets"
	"petbot/internal/storage"

	"github.com/bwmarrin/discordgo"
)

const (
	testBot     = "999"
	testGuild   = "g1"
	testChannel = "c1"
)

type fixedRoller struct {
	value int
}

func (r fixedRoller) IntN(n int) int {
	return min(r.value, n-1)
}

type sentMessage struct {
	channelId string
	data      *discordgo.MessageSend
}

type fakeSession struct {
	mu          sync.Mutex
	sent        []sentMessage
	edits       []*discordgo.MessageEdit
	deleted     []string
	responses   []*discordgo.InteractionResponse
	permissions int64
	failUpdates bool
	nextId      int
}

func (s *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextId++
	s.sent = append(s.sent, sentMessage{channelID, data})
	return &discordgo.Message{ID: fmt.Sprintf("m%d", s.nextId), ChannelID: channelID}, nil
}

func (s *fakeSession) ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edits = append(s.edits, m)
	return &discordgo.Message{ID: m.ID, ChannelID: m.Channel}, nil
}

func (s *fakeSession) ChannelMessageDelete(channelID string, messageID string, options ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, messageID)
	return nil
}

func (s *fakeSession) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdates && resp.Type == discordgo.InteractionResponseUpdateMessage {
		return errors.New("unknown message")
	}
	s.responses = append(s.responses, resp)
	return nil
}

func (s *fakeSession) UserChannelPermissions(userID string, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error) {
	return s.permissions, nil
}

func (s *fakeSession) lastSent(t *testing.T) *discordgo.MessageSend {
	t.Helper()
	if len(s.sent) == 0 {
		t.Fatal("expected a message to be sent")
	}
	return s.sent[len(s.sent)-1].data
}

func (s *fakeSession) lastResponse(t *testing.T) *discordgo.InteractionResponse {
	t.Helper()
	if len(s.responses) == 0 {
		t.Fatal("expected an interaction response")
	}
	return s.responses[len(s.responses)-1]
}

type testBotEnv struct {
	bot     *Bot
	store   *storage.Store
	arena   *battle.Arena
	session *fakeSession
}

func newTestBot(t *testing.T, challengeTimeout time.Duration) *testBotEnv {
	return newTestBotWithIdle(t, challengeTimeout, time.Hour)
}

func newTestBotWithIdle(t *testing.T, challengeTimeout time.Duration, idleTimeout time.Duration) *testBotEnv {
	t.Helper()
	store, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "bot.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	catalog, err := pets.LoadCatalog("")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	roller := fixedRoller{value: 0}
	arena := battle.NewArena(store, roller, challengeTimeout, idleTimeout)
	settings := Settings{
		Prefix:        "?",
		DailyReward:   100,
		DailyCooldown: 24 * time.Hour,
	}
	bot := CreateBot("token", settings, store, arena, pets.NewTrainer(store, nil, roller),
		automod.NewFilter(store, 8, time.Minute), catalog, nil)
	return &testBotEnv{bot: bot, store: store, arena: arena, session: &fakeSession{}}
}

func user(id string, name string) *discordgo.User {
	return &discordgo.User{ID: id, Username: name}
}

func (env *testBotEnv) say(author *discordgo.User, content string, mentions ...*discordgo.User) {
	env.bot.handleMessage(context.Background(), env.session, testBot, "guild", &discordgo.Message{
		ID:        fmt.Sprintf("in-%d", len(env.session.sent)),
		ChannelID: testChannel,
		GuildID:   testGuild,
		Author:    author,
		Content:   content,
		Mentions:  mentions,
	})
}

func (env *testBotEnv) press(actor *discordgo.User, customId string, messageId string) {
	env.bot.handleInteraction(context.Background(), env.session, &discordgo.Interaction{
		Type:      discordgo.InteractionMessageComponent,
		ChannelID: testChannel,
		Member:    &discordgo.Member{User: actor},
		Message:   &discordgo.Message{ID: messageId, ChannelID: testChannel},
		Data:      discordgo.MessageComponentInteractionData{CustomID: customId, ComponentType: discordgo.ButtonComponent},
	})
}

func (env *testBotEnv) givePet(t *testing.T, userId string, attack int, defense int) {
	t.Helper()
	ctx := context.Background()
	if err := env.store.AddPet(ctx, userId, storage.Pet{Kind: "kitty", Level: 1, Attack: attack, Defense: defense}); err != nil {
		t.Fatalf("add pet: %v", err)
	}
	if err := env.store.SetActivePet(ctx, userId, "kitty"); err != nil {
		t.Fatalf("set active pet: %v", err)
	}
}

func buttons(t *testing.T, components []discordgo.MessageComponent) []discordgo.Button {
	t.Helper()
	var result []discordgo.Button
	for _, component := range components {
		row, ok := component.(discordgo.ActionsRow)
		if !ok {
			t.Fatalf("expected an actions row, got %T", component)
		}
		for _, inner := range row.Components {
			button, ok := inner.(discordgo.Button)
			if !ok {
				t.Fatalf("expected a button, got %T", inner)
			}
			result = append(result, button)
		}
	}
	return result
}

func description(t *testing.T, embeds []*discordgo.MessageEmbed) string {
	t.Helper()
	if len(embeds) != 1 {
		t.Fatalf("expected one embed, got %d", len(embeds))
	}
	return embeds[0].Description
}

func TestIgnoresBotsAndOwnMessages(t *testing.T) {
	env := newTestBot(t, time.Minute)
	env.say(&discordgo.User{ID: "5", Bot: true}, "?help")
	env.say(user(testBot, "petbot"), "?help")
	if len(env.session.sent) != 0 {
		t.Fatalf("expected no messages, got %d", len(env.session.sent))
	}
}

func TestInvalidInput(t *testing.T) {
	env := newTestBot(t, time.Minute)
	env.say(user("1", "alice"), "?dance")
	if content := env.session.lastSent(t).Content; !strings.Contains(content, "`dance` not recognised") {
		t.Fatalf("unexpected reply %q", content)
	}
}

func TestDailyAndBalance(t *testing.T) {
	env := newTestBot(t, time.Minute)
	alice := user("1", "alice")
	env.say(alice, "?daily")
	if content := env.session.lastSent(t).Content; !strings.Contains(content, "claimed **100**") {
		t.Fatalf("unexpected reply %q", content)
	}
	env.say(alice, "?daily")
	if content := env.session.lastSent(t).Content; !strings.Contains(content, "already claimed") {
		t.Fatalf("unexpected reply %q", content)
	}
	env.say(alice, "?balance")
	if content := env.session.lastSent(t).Content; content != "You have **100** coins" {
		t.Fatalf("unexpected reply %q", content)
	}
}

func TestBuyAndChangePet(t *testing.T) {
	env := newTestBot(t, time.Minute)
	alice := user("1", "alice")
	env.say(alice, "?buy kitty")
	if content := env.session.lastSent(t).Content; !strings.Contains(content, "You need 300 coins") {
		t.Fatalf("unexpected reply %q", content)
	}
	if _, err := env.store.AddCoins(context.Background(), "1", 500); err != nil {
		t.Fatalf("add coins: %v", err)
	}
	env.say(alice, "?buy KITTY")
	sent := env.session.lastSent(t)
	if len(sent.Embeds) != 1 || !strings.Contains(sent.Embeds[0].Title, "Kitty") {
		t.Fatalf("unexpected purchase reply %+v", sent)
	}
	env.say(alice, "?buy kitty")
	if content := env.session.lastSent(t).Content; content != "You already own a Kitty" {
		t.Fatalf("unexpected reply %q", content)
	}
	env.say(alice, "?change_pet dragon")
	if content := env.session.lastSent(t).Content; content != "You do not own a Dragon" {
		t.Fatalf("unexpected reply %q", content)
	}
	env.say(alice, "?change_pet kitty")
	if content := env.session.lastSent(t).Content; content != "Your active pet is now your Kitty" {
		t.Fatalf("unexpected reply %q", content)
	}
	env.say(alice, "?pets")
	sent = env.session.lastSent(t)
	if len(sent.Embeds) != 1 || len(sent.Embeds[0].Fields) != 1 || !strings.Contains(sent.Embeds[0].Fields[0].Name, "(active)") {
		t.Fatalf("unexpected pets reply %+v", sent)
	}
}

func TestParrotEchoes(t *testing.T) {
	env := newTestBot(t, time.Minute)
	ctx := context.Background()
	if err := env.store.AddPet(ctx, "1", storage.Pet{Kind: pets.PET_PARROT, Level: 1}); err != nil {
		t.Fatalf("add pet: %v", err)
	}
	if err := env.store.SetActivePet(ctx, "1", pets.PET_PARROT); err != nil {
		t.Fatalf("set active pet: %v", err)
	}
	env.say(user("1", "alice"), "hello")
	if content := env.session.lastSent(t).Content; content != "🦜 ***hello***" {
		t.Fatalf("unexpected echo %q", content)
	}
}

func TestFilterCommands(t *testing.T) {
	env := newTestBot(t, time.Minute)
	mod := user("1", "mod")
	env.say(mod, "?filter on")
	if content := env.session.lastSent(t).Content; !strings.Contains(content, "Manage Messages") {
		t.Fatalf("expected permission error, got %q", content)
	}

	env.session.permissions = discordgo.PermissionManageMessages
	env.say(mod, "?filter on")
	if content := env.session.lastSent(t).Content; content != "The word filter is now enabled" {
		t.Fatalf("unexpected reply %q", content)
	}
	env.say(mod, "?filter on")
	if content := env.session.lastSent(t).Content; content != "The word filter is already enabled" {
		t.Fatalf("unexpected reply %q", content)
	}
	env.say(mod, "?filter add pineapple")
	if content := env.session.lastSent(t).Content; content != "`pineapple` is now banned" {
		t.Fatalf("unexpected reply %q", content)
	}

	env.say(user("2", "bob"), "I like Pineapple")
	if len(env.session.deleted) != 1 {
		t.Fatalf("expected the message to be deleted, got %v", env.session.deleted)
	}
	if content := env.session.lastSent(t).Content; !strings.Contains(content, "<@2>") {
		t.Fatalf("expected a warning for bob, got %q", content)
	}

	env.say(mod, "?filter remove pineapple")
	if content := env.session.lastSent(t).Content; content != "`pineapple` is no longer banned" {
		t.Fatalf("unexpected reply %q", content)
	}
	env.say(user("2", "bob"), "I like Pineapple")
	if len(env.session.deleted) != 1 {
		t.Fatalf("expected no new deletion, got %v", env.session.deleted)
	}
}

func TestBattleFlow(t *testing.T) {
	env := newTestBot(t, time.Minute)
	alice, bob, carol := user("1", "alice"), user("2", "bob"), user("3", "carol")
	env.givePet(t, "1", 12, 1)
	env.givePet(t, "2", 12, 1)

	env.say(alice, "?battle <@2>", bob)
	prompt := env.session.lastSent(t)
	choices := buttons(t, prompt.Components)
	if len(choices) != 2 || choices[0].Label != "Accept" || choices[1].Label != "Deny" {
		t.Fatalf("unexpected challenge buttons %+v", choices)
	}
	accept := choices[0].CustomID

	// Only the challenged user can accept
	env.press(alice, accept, "m1")
	notice := env.session.lastResponse(t)
	if notice.Data.Flags != discordgo.MessageFlagsEphemeral || notice.Data.Content != "This battle is not yours" {
		t.Fatalf("unexpected notice %+v", notice.Data)
	}

	env.press(bob, accept, "m1")
	update := env.session.lastResponse(t)
	if update.Type != discordgo.InteractionResponseUpdateMessage {
		t.Fatalf("expected the prompt to be updated, got %v", update.Type)
	}
	if text := description(t, update.Data.Embeds); !strings.HasSuffix(text, "It is bob's turn") {
		t.Fatalf("unexpected battle status %q", text)
	}
	actions := buttons(t, update.Data.Components)
	if len(actions) != 2 || actions[0].Label != "Attack" || actions[1].Label != "Heal" {
		t.Fatalf("unexpected battle buttons %+v", actions)
	}
	attack := actions[0].CustomID

	env.press(alice, attack, "m1")
	if content := env.session.lastResponse(t).Data.Content; content != "It is not your turn" {
		t.Fatalf("unexpected notice %q", content)
	}
	env.press(carol, attack, "m1")
	if content := env.session.lastResponse(t).Data.Content; content != "This battle is not yours" {
		t.Fatalf("unexpected notice %q", content)
	}

	env.press(bob, attack, "m1")
	final := env.session.lastResponse(t)
	if text := description(t, final.Data.Embeds); !strings.HasSuffix(text, "bob wins the battle!") {
		t.Fatalf("unexpected final status %q", text)
	}
	if len(final.Data.Components) != 0 {
		t.Fatalf("expected no buttons once finished, got %d", len(final.Data.Components))
	}
	if challenges, encounters := env.arena.Size(); challenges != 0 || encounters != 0 {
		t.Fatalf("expected an empty arena, got %d challenges and %d battles", challenges, encounters)
	}

	env.press(bob, attack, "m1")
	if content := env.session.lastResponse(t).Data.Content; content != "This battle is already over" {
		t.Fatalf("unexpected notice %q", content)
	}
}

func TestChallengeRejections(t *testing.T) {
	env := newTestBot(t, time.Minute)
	alice, bob := user("1", "alice"), user("2", "bob")

	env.say(alice, "?battle <@1>", alice)
	if content := env.session.lastSent(t).Content; content != "You cannot battle yourself" {
		t.Fatalf("unexpected reply %q", content)
	}
	env.say(alice, "?battle <@999>", user(testBot, "petbot"))
	if content := env.session.lastSent(t).Content; !strings.Contains(content, "not allowed to battle") {
		t.Fatalf("unexpected reply %q", content)
	}
	env.say(alice, "?battle <@2>")
	if content := env.session.lastSent(t).Content; !strings.Contains(content, "Could not find user") {
		t.Fatalf("unexpected reply %q", content)
	}
	env.say(alice, "?battle <@2>", bob)
	env.say(bob, "?battle <@1>", alice)
	if content := env.session.lastSent(t).Content; !strings.Contains(content, "already in a battle") {
		t.Fatalf("unexpected reply %q", content)
	}
}

func TestDenyUpdatesPrompt(t *testing.T) {
	env := newTestBot(t, time.Minute)
	alice, bob := user("1", "alice"), user("2", "bob")
	env.say(alice, "?battle <@2>", bob)
	deny := buttons(t, env.session.lastSent(t).Components)[1].CustomID

	env.press(bob, deny, "m1")
	update := env.session.lastResponse(t)
	if update.Type != discordgo.InteractionResponseUpdateMessage {
		t.Fatalf("expected the prompt to be updated, got %v", update.Type)
	}
	if text := description(t, update.Data.Embeds); text != "bob declined the battle against alice" {
		t.Fatalf("unexpected text %q", text)
	}
	if update.Data.Components == nil || len(update.Data.Components) != 0 {
		t.Fatalf("expected the buttons to be removed, got %v", update.Data.Components)
	}

	env.press(bob, deny, "m1")
	if content := env.session.lastResponse(t).Data.Content; content != "This battle is already over" {
		t.Fatalf("unexpected notice %q", content)
	}
}

func TestPresentationFailuresCallOffBattle(t *testing.T) {
	env := newTestBot(t, time.Minute)
	alice, bob := user("1", "alice"), user("2", "bob")
	env.say(alice, "?battle <@2>", bob)
	accept := buttons(t, env.session.lastSent(t).Components)[0].CustomID

	env.session.failUpdates = true
	env.press(bob, accept, "m1")
	fallback := env.session.lastSent(t)
	heal := buttons(t, fallback.Components)[1].CustomID

	env.press(bob, heal, "m2")
	env.press(alice, heal, "m3")
	last := env.session.lastSent(t)
	if text := description(t, last.Embeds); !strings.HasSuffix(text, "The battle was called off") {
		t.Fatalf("unexpected status %q", text)
	}
	if len(last.Components) != 0 {
		t.Fatalf("expected no buttons once called off, got %d", len(last.Components))
	}
	if _, encounters := env.arena.Size(); encounters != 0 {
		t.Fatalf("expected the battle to be removed, got %d", encounters)
	}
}

func TestSweepEditsExpiredChallenge(t *testing.T) {
	env := newTestBot(t, time.Millisecond)
	env.say(user("1", "alice"), "?battle <@2>", user("2", "bob"))
	time.Sleep(10 * time.Millisecond)

	env.bot.sweep(env.session)
	if len(env.session.edits) != 1 {
		t.Fatalf("expected one edit, got %d", len(env.session.edits))
	}
	edit := env.session.edits[0]
	if edit.ID != "m1" || edit.Channel != testChannel {
		t.Fatalf("unexpected edited message %s in %s", edit.ID, edit.Channel)
	}
	if text := description(t, *edit.Embeds); !strings.Contains(text, "did not answer") {
		t.Fatalf("unexpected text %q", text)
	}
	if challenges, _ := env.arena.Size(); challenges != 0 {
		t.Fatalf("expected the challenge to be gone, got %d", challenges)
	}
}

func TestUnknownButtonIsIgnored(t *testing.T) {
	env := newTestBot(t, time.Minute)
	env.press(user("1", "alice"), "music:play:1", "m1")
	if len(env.session.responses) != 0 {
		t.Fatalf("expected no response, got %d", len(env.session.responses))
	}
}

func TestSweepEditsIdleBattle(t *testing.T) {
	env := newTestBotWithIdle(t, time.Minute, time.Millisecond)
	alice, bob := user("1", "alice"), user("2", "bob")
	env.say(alice, "?battle <@2>", bob)
	accept := buttons(t, env.session.lastSent(t).Components)[0].CustomID
	env.press(bob, accept, "m1")
	time.Sleep(10 * time.Millisecond)

	env.bot.sweep(env.session)
	if len(env.session.edits) != 1 {
		t.Fatalf("expected one edit, got %d", len(env.session.edits))
	}
	edit := env.session.edits[0]
	if edit.ID != "m1" || edit.Channel != testChannel {
		t.Fatalf("unexpected edited message %s in %s", edit.ID, edit.Channel)
	}
	if text := description(t, *edit.Embeds); !strings.HasSuffix(text, "alice wins, bob ran out of time") {
		t.Fatalf("unexpected text %q", text)
	}
	if edit.Components == nil || len(*edit.Components) != 0 {
		t.Fatal("expected the buttons to be removed")
	}
	if _, encounters := env.arena.Size(); encounters != 0 {
		t.Fatalf("expected the battle to be removed, got %d", encounters)
	}
}

func TestPanicIsReportedToTheChannel(t *testing.T) {
	env := newTestBot(t, time.Minute)
	env.bot.filter = nil
	env.say(user("1", "alice"), "hello")
	if content := env.session.lastSent(t).Content; content != "Something went wrong, please try again later" {
		t.Fatalf("unexpected reply %q", content)
	}
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"petbot/internal/battle"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const buttonPrefix = "battle"

const (
	VERB_ACCEPT = "accept"
	VERB_DENY   = "deny"
	VERB_ATTACK = "attack"
	VERB_HEAL   = "heal"
)

// Consecutive failed updates of a battle message before the battle is called off
const MAX_PRESENTATION_FAILURES = 3

var ErrUnknownButton = errors.New("unknown button")

func buttonId(verb string, id uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", buttonPrefix, verb, id)
}

func parseButtonId(customId string) (string, uuid.UUID, error) {
	parts := strings.Split(customId, ":")
	if len(parts) != 3 || parts[0] != buttonPrefix {
		return "", uuid.Nil, fmt.Errorf("%w: %s", ErrUnknownButton, customId)
	}
	switch parts[1] {
	case VERB_ACCEPT, VERB_DENY, VERB_ATTACK, VERB_HEAL:
	default:
		return "", uuid.Nil, fmt.Errorf("%w: %s", ErrUnknownButton, customId)
	}
	id, err := uuid.Parse(parts[2])
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("%w: %s: %v", ErrUnknownButton, customId, err)
	}
	return parts[1], id, nil
}

func interactionUser(interaction *discordgo.Interaction) *discordgo.User {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User
	}
	return interaction.User
}

// Interact is the discord handler for button clicks
func (bot *Bot) Interact(discord *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.Type != discordgo.InteractionMessageComponent {
		return
	}
	ctx, cancel := context.WithTimeout(bot.context(), handlerTimeout)
	defer cancel()
	bot.handleInteraction(ctx, discord, interaction.Interaction)
}

func (bot *Bot) handleInteraction(ctx context.Context, discord Session, interaction *discordgo.Interaction) {

	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("component", "interaction").Msg(fmt.Sprintf("Recovered from panic: %v", r))
			bot.respondNotice(discord, interaction, Notice("Something went wrong, please try again later"))
		}
	}()

	customId := interaction.MessageComponentData().CustomID
	verb, id, err := parseButtonId(customId)
	if err != nil {
		log.Warn().Err(err).Msg("Ignoring interaction")
		return
	}
	user := interactionUser(interaction)
	if user == nil {
		log.Warn().Msg(fmt.Sprintf("Interaction %s has no user", customId))
		return
	}
	log.Debug().Str("user", user.ID).Msg(fmt.Sprintf("Button %s pressed", customId))

	switch verb {
	case VERB_ACCEPT:
		bot.accept(ctx, discord, interaction, id, user.ID)
	case VERB_DENY:
		bot.deny(discord, interaction, id, user.ID)
	case VERB_ATTACK:
		bot.act(discord, interaction, id, user.ID, battle.ACTION_ATTACK)
	case VERB_HEAL:
		bot.act(discord, interaction, id, user.ID, battle.ACTION_HEAL)
	}
}

func (bot *Bot) accept(ctx context.Context, discord Session, interaction *discordgo.Interaction, id uuid.UUID, userId string) {
	encounter, err := bot.arena.Accept(ctx, id, userId)
	if err != nil {
		log.Info().Err(err).Msg(fmt.Sprintf("User %s could not accept challenge %s", userId, id))
		bot.respondNotice(discord, interaction, BattleNotice(err))
		return
	}
	if interaction.Message != nil {
		encounter.SetMessage(battle.MessageRef{ChannelId: interaction.ChannelID, MessageId: interaction.Message.ID})
	}
	bot.present(discord, interaction, encounter)
}

func (bot *Bot) deny(discord Session, interaction *discordgo.Interaction, id uuid.UUID, userId string) {
	challenge, err := bot.arena.Deny(id, userId)
	if err != nil {
		log.Info().Err(err).Msg(fmt.Sprintf("User %s could not deny challenge %s", userId, id))
		bot.respondNotice(discord, interaction, BattleNotice(err))
		return
	}
	if err := discord.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: ChallengeDenied(challenge).Data(),
	}); err != nil {
		log.Error().Err(err).Msg(fmt.Sprintf("Could not update denied challenge %s", id))
	}
}

func (bot *Bot) act(discord Session, interaction *discordgo.Interaction, id uuid.UUID, userId string, action battle.Action) {
	encounter, ok := bot.arena.Encounter(id)
	if !ok {
		bot.respondNotice(discord, interaction, BattleNotice(battle.ErrUnknownBattle))
		return
	}
	participants := encounter.Participants()
	if !slices.Contains(participants[:], userId) {
		bot.respondNotice(discord, interaction, BattleNotice(battle.ErrNotYourBattle))
		return
	}
	if _, _, err := bot.arena.Act(id, userId, action); err != nil {
		log.Debug().Err(err).Msg(fmt.Sprintf("User %s could not %s in battle %s", userId, action, id))
		bot.respondNotice(discord, interaction, BattleNotice(err))
		return
	}
	bot.present(discord, interaction, encounter)
}

// present updates the message the button belongs to. If that fails the
// battle is sent as a new message, and after too many failures in a row
// the battle is called off
func (bot *Bot) present(discord Session, interaction *discordgo.Interaction, encounter *battle.Encounter) {
	view := encounter.View()
	response := BattleMessage(view)
	err := discord.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: response.Data(),
	})
	if err == nil {
		encounter.PresentationSucceeded()
		return
	}
	log.Error().Err(err).Str("encounter", view.Id.String()).Msg("Could not update battle message")

	failures := encounter.PresentationFailed()
	if failures >= MAX_PRESENTATION_FAILURES && !view.Finished() {
		bot.arena.Abort(view.Id)
		view = encounter.View()
		response = BattleMessage(view)
		log.Warn().Str("encounter", view.Id.String()).Msg(fmt.Sprintf("Battle called off after %d failed updates", failures))
	}

	message, err := response.Send(interaction.ChannelID, discord)
	if err != nil {
		log.Error().Err(err).Str("encounter", view.Id.String()).Msg("Could not send battle message")
		return
	}
	encounter.SetMessage(battle.MessageRef{ChannelId: message.ChannelID, MessageId: message.ID})
}

// Private answer only the user who pressed the button can see
func (bot *Bot) respondNotice(discord Session, interaction *discordgo.Interaction, response Response) {
	data := response.Data()
	data.Flags = discordgo.MessageFlagsEphemeral
	if err := discord.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}); err != nil {
		log.Error().Err(err).Msg("Could not send notice")
	}
}

// sweep expires old challenges and idle battles, and shows the result
func (bot *Bot) sweep(discord Session) {
	expired := bot.arena.Sweep()
	for _, challenge := range expired.Challenges {
		if challenge.Message.MessageId == "" {
			continue
		}
		if err := ChallengeExpired(challenge).Edit(challenge.Message.ChannelId, challenge.Message.MessageId, discord); err != nil {
			log.Error().Err(err).Str("challenge", challenge.Id.String()).Msg("Could not edit expired challenge")
		}
	}
	for _, encounter := range expired.Encounters {
		view := encounter.View()
		if view.Message.MessageId == "" {
			continue
		}
		if err := BattleMessage(view).Edit(view.Message.ChannelId, view.Message.MessageId, discord); err != nil {
			log.Error().Err(err).Str("encounter", view.Id.String()).Msg("Could not edit expired battle")
		}
	}
}

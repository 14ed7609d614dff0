package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"petbot/internal/automod"
	"petbot/internal/battle"
	"petbot/internal/common"
	"petbot/internal/pets"
	"petbot/internal/storage"
	"petbot/internal/tenor"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Time given to a handler to finish its work
const handlerTimeout = 10 * time.Second

type Settings struct {
	Prefix            string
	DailyReward       int
	DailyCooldown     time.Duration
	SweepPeriod       time.Duration
	TenorHousekeeping time.Duration
	MainCycle         time.Duration
}

type Bot struct {
	token    string
	settings Settings
	ctx      context.Context
	database DatabaseBot
	arena    *battle.Arena
	trainer  *pets.Trainer
	filter   *automod.Filter
	catalog  *pets.Catalog
	tenor    *tenor.Client
	now      func() time.Time
}

// CreateBot wires the bot. The tenor client may be nil if no key is configured
func CreateBot(token string, settings Settings, database DatabaseBot, arena *battle.Arena, trainer *pets.Trainer, filter *automod.Filter, catalog *pets.Catalog, gifs *tenor.Client) *Bot {
	return &Bot{
		token:    token,
		settings: settings,
		ctx:      context.Background(),
		database: database,
		arena:    arena,
		trainer:  trainer,
		filter:   filter,
		catalog:  catalog,
		tenor:    gifs,
		now:      time.Now,
	}
}

func (bot *Bot) context() context.Context {
	return bot.ctx
}

// Run connects to discord and serves until the context is done or the
// process is interrupted
func (bot *Bot) Run(ctx context.Context) error {
	// Create session
	discord, err := discordgo.New("Bot " + bot.token)
	if err != nil {
		return fmt.Errorf("could not create discord session: %w", err)
	}
	discord.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent | discordgo.IntentsGuilds

	// Event handlers
	discord.AddHandler(bot.Receive)
	discord.AddHandler(bot.Interact)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	bot.ctx = ctx

	// Open session
	if err := discord.Open(); err != nil {
		return fmt.Errorf("could not open discord session: %w", err)
	}
	defer discord.Close()
	log.Info().Msg(fmt.Sprintf("Connected as %s", discord.State.User.Username))

	// Main loop until there is an os interruption (ctrl + C)
	sweepExecutor := common.NewTimedExecutor("battle sweep", bot.settings.SweepPeriod, func() { bot.sweep(discord) })
	tenorExecutor := common.NewTimedExecutor("tenor housekeeping", bot.settings.TenorHousekeeping, bot.tenorHousekeeping)
	log.Info().Msg("Starting main loop")
	common.Loop(ctx, bot.settings.MainCycle, &sweepExecutor, &tenorExecutor)
	return nil
}

func (bot *Bot) tenorHousekeeping() {
	if bot.tenor != nil {
		bot.tenor.Housekeeping()
	}
}

// Receive is the discord handler for new messages
func (bot *Bot) Receive(discord *discordgo.Session, message *discordgo.MessageCreate) {
	guildName := ""
	if message.GuildID != "" {
		if guild, err := discord.State.Guild(message.GuildID); err == nil {
			guildName = guild.Name
		}
	}
	ctx, cancel := context.WithTimeout(bot.context(), handlerTimeout)
	defer cancel()
	bot.handleMessage(ctx, discord, discord.State.User.ID, guildName, message.Message)
}

func (bot *Bot) handleMessage(ctx context.Context, discord Session, botId string, guildName string, message *discordgo.Message) {

	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("component", "message").Msg(fmt.Sprintf("Recovered from panic: %v", r))
			bot.sendResponses(discord, message.ChannelID, SomethingWentWrong())
		}
	}()

	// Reject my own messages and the ones of other bots
	if message.Author == nil || message.Author.Bot || message.Author.ID == botId {
		return
	}

	// Ignore messages from private channels
	if message.GuildID == "" {
		log.Debug().Msg("Ignoring private message")
		bot.sendResponses(discord, message.ChannelID, []Response{ResponseString{"For the time being, I am ignoring private messages"}})
		return
	}

	// Parse the input provided and call the appropriate function
	parseResult := Parse(bot.settings.Prefix, message.Content)

	// Banned words go first, except for the commands that manage them
	if parseResult.parseid != PARSEID_OK || parseResult.command != COMMAND_FILTER {
		if bot.filtered(ctx, discord, guildName, message) {
			return
		}
	}

	switch parseResult.parseid {
	case PARSEID_NO_BOT_PREFIX:
		bot.sendResponses(discord, message.ChannelID, bot.petReaction(ctx, message))
	case PARSEID_OK:
		log.Info().Msg(fmt.Sprintf("Command understood: %s", message.Content))
		var responses []Response
		switch parseResult.command {
		case COMMAND_BATTLE:
			switch userId := parseResult.arguments.(type) {
			default:
				panic(fmt.Sprintf("unexpected type of user id %T", userId))
			case string:
				responses = bot.challenge(discord, botId, message, userId)
			}
		case COMMAND_CHANGE_PET:
			switch kind := parseResult.arguments.(type) {
			default:
				panic(fmt.Sprintf("unexpected type of pet %T", kind))
			case string:
				responses = bot.changePet(ctx, message.Author.ID, kind)
			}
		case COMMAND_PETS:
			responses = bot.pets(ctx, message.Author.ID)
		case COMMAND_BALANCE:
			responses = bot.balance(ctx, message.Author.ID)
		case COMMAND_DAILY:
			responses = bot.daily(ctx, message.Author.ID)
		case COMMAND_SHOP:
			responses = Shop(bot.catalog, bot.settings.Prefix)
		case COMMAND_BUY:
			switch kind := parseResult.arguments.(type) {
			default:
				panic(fmt.Sprintf("unexpected type of pet %T", kind))
			case string:
				responses = bot.buy(ctx, message.Author.ID, kind)
			}
		case COMMAND_FILTER:
			switch arguments := parseResult.arguments.(type) {
			default:
				panic(fmt.Sprintf("unexpected type of filter arguments %T", arguments))
			case FilterArguments:
				responses = bot.configureFilter(ctx, discord, message, guildName, arguments)
			}
		case COMMAND_HELP:
			responses = HelpMessage(bot.settings.Prefix)
		default:
			panic(fmt.Sprintf("Command %d is not one of the possible ones", parseResult.command))
		}
		bot.sendResponses(discord, message.ChannelID, responses)
	default:
		// The command is invalid input, so it contains an error message
		log.Info().Msg(fmt.Sprintf("Wrong input: '%s'. Reason: %s", message.Content, parseResult.errorMessage))
		bot.sendResponses(discord, message.ChannelID, InputNotValid(parseResult.errorMessage))
	}
}

// filtered deletes the message if it contains a banned word
func (bot *Bot) filtered(ctx context.Context, discord Session, guildName string, message *discordgo.Message) bool {
	word, found, err := bot.filter.Check(ctx, message.GuildID, guildName, message.Content)
	if err != nil {
		log.Error().Err(err).Msg(fmt.Sprintf("Could not check message of %s against the filter", message.Author.ID))
		return false
	}
	if !found {
		return false
	}
	log.Info().Msg(fmt.Sprintf("Deleting message of %s in guild %s containing %q", message.Author.ID, message.GuildID, word))
	if err := discord.ChannelMessageDelete(message.ChannelID, message.ID); err != nil {
		log.Error().Err(err).Msg("Could not delete filtered message")
	}
	bot.sendResponses(discord, message.ChannelID, MessageFiltered(message.Author.ID))
	return true
}

func (bot *Bot) sendResponses(discord Session, channelId string, responses []Response) {
	for _, response := range responses {
		if _, err := response.Send(channelId, discord); err != nil {
			log.Error().Err(err).Msg(fmt.Sprintf("Could not send message to channel %s", channelId))
		}
	}
}

func displayName(user *discordgo.User) string {
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

func (bot *Bot) challenge(discord Session, botId string, message *discordgo.Message, userId string) []Response {

	// The challenged user has to be among the mentions to know their name
	var challenged *discordgo.User
	for _, user := range message.Mentions {
		if user.ID == userId {
			challenged = user
		}
	}
	if challenged == nil {
		return UserNotMentioned(userId)
	}

	challenger := battle.Participant{Id: message.Author.ID, Name: displayName(message.Author)}
	c, err := bot.arena.Propose(challenger, battle.Participant{Id: challenged.ID, Name: displayName(challenged)}, botId)
	if err != nil {
		log.Info().Err(err).Msg(fmt.Sprintf("Challenge of %s to %s rejected", challenger.Id, challenged.ID))
		return ChallengeNotValid(err)
	}

	sent, err := ChallengePrompt(c).Send(message.ChannelID, discord)
	if err != nil {
		// Nobody can answer a challenge that was never shown
		log.Error().Err(err).Msg(fmt.Sprintf("Could not send challenge %s", c.Id))
		bot.arena.Deny(c.Id, c.Challenged.Id)
		return nil
	}
	bot.arena.SetChallengeMessage(c.Id, battle.MessageRef{ChannelId: sent.ChannelID, MessageId: sent.ID})
	return nil
}

func (bot *Bot) petReaction(ctx context.Context, message *discordgo.Message) []Response {
	reaction, err := bot.trainer.OnMessage(ctx, message.Author.ID, message.Content)
	if err != nil {
		log.Error().Err(err).Msg(fmt.Sprintf("Pet of %s could not react", message.Author.ID))
	}
	return PetReaction(message.Author.ID, reaction)
}

func (bot *Bot) changePet(ctx context.Context, userId string, kind string) []Response {
	if _, ok := bot.catalog.Find(kind); !ok {
		return PetNotInCatalog(kind)
	}
	if err := bot.database.SetActivePet(ctx, userId, kind); err != nil {
		if errors.Is(err, storage.ErrPetNotOwned) {
			return PetNotOwned(kind)
		}
		log.Error().Err(err).Msg(fmt.Sprintf("Could not change pet of %s", userId))
		return SomethingWentWrong()
	}
	log.Info().Msg(fmt.Sprintf("Active pet of %s is now %s", userId, kind))
	return ActivePetChanged(kind)
}

func (bot *Bot) pets(ctx context.Context, userId string) []Response {
	member, err := bot.database.FindOrCreateMember(ctx, userId)
	if err != nil {
		log.Error().Err(err).Msg(fmt.Sprintf("Could not find member %s", userId))
		return SomethingWentWrong()
	}
	owned, err := bot.database.Pets(ctx, userId)
	if err != nil {
		log.Error().Err(err).Msg(fmt.Sprintf("Could not list pets of %s", userId))
		return SomethingWentWrong()
	}
	return PetList(owned, member.ActivePet, bot.catalog, bot.settings.Prefix)
}

func (bot *Bot) balance(ctx context.Context, userId string) []Response {
	member, err := bot.database.FindOrCreateMember(ctx, userId)
	if err != nil {
		log.Error().Err(err).Msg(fmt.Sprintf("Could not find member %s", userId))
		return SomethingWentWrong()
	}
	return Balance(member.Coins)
}

func (bot *Bot) daily(ctx context.Context, userId string) []Response {
	coins, err := bot.database.ClaimDaily(ctx, userId, bot.now(), bot.settings.DailyCooldown, bot.settings.DailyReward)
	var cooldown *storage.CooldownError
	if errors.As(err, &cooldown) {
		return DailyOnCooldown(cooldown.Remaining)
	}
	if err != nil {
		log.Error().Err(err).Msg(fmt.Sprintf("Could not claim daily of %s", userId))
		return SomethingWentWrong()
	}
	log.Info().Msg(fmt.Sprintf("Member %s claimed the daily reward", userId))
	return DailyClaimed(bot.settings.DailyReward, coins)
}

func (bot *Bot) buy(ctx context.Context, userId string, kind string) []Response {
	entry, ok := bot.catalog.Find(kind)
	if !ok {
		return PetNotInCatalog(kind)
	}
	pet := storage.Pet{Kind: entry.Name, Level: 1, Attack: entry.Attack, Defense: entry.Defense}
	coins, err := bot.database.BuyPet(ctx, userId, pet, entry.Price)
	switch {
	case errors.Is(err, storage.ErrInsufficientCoins):
		return NotEnoughCoins(entry)
	case errors.Is(err, storage.ErrPetOwned):
		return PetAlreadyOwned(entry.Name)
	case err != nil:
		log.Error().Err(err).Msg(fmt.Sprintf("Could not sell %s to %s", entry.Name, userId))
		return SomethingWentWrong()
	}
	log.Info().Msg(fmt.Sprintf("Member %s bought a %s", userId, entry.Name))
	return PetBought(entry, coins)
}

func (bot *Bot) configureFilter(ctx context.Context, discord Session, message *discordgo.Message, guildName string, arguments FilterArguments) []Response {

	permissions, err := discord.UserChannelPermissions(message.Author.ID, message.ChannelID)
	if err != nil {
		log.Error().Err(err).Msg(fmt.Sprintf("Could not get permissions of %s", message.Author.ID))
		return SomethingWentWrong()
	}
	if permissions&discordgo.PermissionManageMessages == 0 {
		return NoPermission()
	}

	guildId := message.GuildID
	switch arguments.action {
	case FILTER_ON, FILTER_OFF:
		state := storage.FILTER_ENABLED
		if arguments.action == FILTER_OFF {
			state = storage.FILTER_DISABLED
		}
		err := bot.filter.SetState(ctx, guildId, guildName, state)
		if errors.Is(err, automod.ErrInvalidTransition) {
			return FilterAlready(state)
		} else if err != nil {
			log.Error().Err(err).Msg(fmt.Sprintf("Could not change filter of guild %s", guildId))
			return SomethingWentWrong()
		}
		return FilterChanged(state)
	case FILTER_ADD:
		err := bot.filter.Ban(ctx, guildId, guildName, arguments.word)
		if errors.Is(err, storage.ErrWordExists) {
			return WordAlreadyBanned(arguments.word)
		} else if err != nil {
			log.Error().Err(err).Msg(fmt.Sprintf("Could not ban word in guild %s", guildId))
			return SomethingWentWrong()
		}
		return WordBanned(arguments.word)
	case FILTER_REMOVE:
		err := bot.filter.Unban(ctx, guildId, arguments.word)
		if errors.Is(err, storage.ErrWordNotFound) {
			return WordNotBanned(arguments.word)
		} else if err != nil {
			log.Error().Err(err).Msg(fmt.Sprintf("Could not unban word in guild %s", guildId))
			return SomethingWentWrong()
		}
		return WordUnbanned(arguments.word)
	default:
		panic(fmt.Sprintf("Filter action %d is not one of the possible ones", arguments.action))
	}
}

package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"petbot/internal/battle"
	"petbot/internal/pets"
	"petbot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Use "teal" color for the bot
const color int = 0x008080

const (
	colorWarning int = 0xE67E22
	colorVictory int = 0xF1C40F
)

var rarityColors map[string]int = map[string]int{
	pets.RARITY_COMMON:    0x95A5A6,
	pets.RARITY_RARE:      0x3498DB,
	pets.RARITY_EPIC:      0x9B59B6,
	pets.RARITY_LEGENDARY: 0xF1C40F,
}

func title(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}

func mention(userId string) string {
	return fmt.Sprintf("<@%s>", userId)
}

func InputNotValid(errorMessage string) []Response {
	return []Response{ResponseString{fmt.Sprintf("Input not valid: \n> %s", errorMessage)}}
}

func SomethingWentWrong() []Response {
	return []Response{ResponseString{"Something went wrong, please try again later"}}
}

func Notice(content string) Response {
	return ResponseString{content}
}

func HelpMessage(prefix string) []Response {

	embed := discordgo.MessageEmbed{Title: "Commands available", Color: color}
	commands := []struct{ usage, description string }{
		{"battle @user", "Challenge someone to a pet battle"},
		{"change_pet <pet>", "Choose which of your pets fights for you and reacts to your messages"},
		{"pets", "List the pets you own"},
		{"balance", "Show how many coins you have"},
		{"daily", "Claim your daily coins"},
		{"shop", "List the pets you can buy"},
		{"buy <pet>", "Buy a pet from the shop"},
		{"filter on|off", "Enable or disable the banned word filter (needs Manage Messages)"},
		{"filter add|remove <word>", "Ban or allow a word or phrase (needs Manage Messages)"},
		{"help", "Print the usage of the different commands"},
	}
	for _, command := range commands {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("`%s%s`", prefix, command.usage),
			Value:  command.description,
			Inline: false,
		})
	}
	return []Response{ResponseEmbed{MessageEmbed: embed}}
}

// Battles

func ChallengeNotValid(err error) []Response {
	switch {
	case errors.Is(err, battle.ErrSelfChallenge):
		return []Response{ResponseString{"You cannot battle yourself"}}
	case errors.Is(err, battle.ErrChallengedBot):
		return []Response{ResponseString{"I am not allowed to battle, pick someone else"}}
	case errors.Is(err, battle.ErrBusy):
		return []Response{ResponseString{"One of you is already in a battle, finish it first"}}
	default:
		return SomethingWentWrong()
	}
}

func UserNotMentioned(userId string) []Response {
	return []Response{ResponseString{fmt.Sprintf("Could not find user %s in this message", mention(userId))}}
}

func ChallengePrompt(challenge *battle.Challenge) ResponseEmbed {
	embed := discordgo.MessageEmbed{
		Title: "Battle challenge",
		Description: fmt.Sprintf("%s challenged %s to a pet battle!\n%s, do you accept?",
			challenge.Challenger.Name, mention(challenge.Challenged.Id), challenge.Challenged.Name),
		Color: color,
	}
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Accept", Style: discordgo.SuccessButton, CustomID: buttonId(VERB_ACCEPT, challenge.Id)},
			discordgo.Button{Label: "Deny", Style: discordgo.DangerButton, CustomID: buttonId(VERB_DENY, challenge.Id)},
		}},
	}
	return ResponseEmbed{MessageEmbed: embed, components: components}
}

func ChallengeDenied(challenge *battle.Challenge) ResponseEmbed {
	embed := discordgo.MessageEmbed{
		Title:       "Battle challenge",
		Description: fmt.Sprintf("%s declined the battle against %s", challenge.Challenged.Name, challenge.Challenger.Name),
		Color:       colorWarning,
	}
	return ResponseEmbed{MessageEmbed: embed}
}

func ChallengeExpired(challenge *battle.Challenge) ResponseEmbed {
	embed := discordgo.MessageEmbed{
		Title:       "Battle challenge",
		Description: fmt.Sprintf("%s did not answer the challenge of %s in time", challenge.Challenged.Name, challenge.Challenger.Name),
		Color:       colorWarning,
	}
	return ResponseEmbed{MessageEmbed: embed}
}

// BattleMessage shows the state of an encounter, with the actions available
// to the combatant holding the turn
func BattleMessage(view battle.View) ResponseEmbed {
	embed := discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s vs %s", view.Combatants[0].Name, view.Combatants[1].Name),
		Description: view.Status(),
		Color:       color,
	}
	for _, combatant := range view.Combatants {
		companion := "no pet"
		if combatant.Companion != "" {
			companion = title(combatant.Companion)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   combatant.Name,
			Value:  fmt.Sprintf("%s\nAttack %d, Defense %d", companion, combatant.Attack, combatant.Defense),
			Inline: true,
		})
	}
	if view.Finished() {
		if view.Winner != battle.NO_WINNER {
			embed.Color = colorVictory
		} else {
			embed.Color = colorWarning
		}
		return ResponseEmbed{MessageEmbed: embed}
	}
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Attack", Style: discordgo.DangerButton, CustomID: buttonId(VERB_ATTACK, view.Id)},
			discordgo.Button{Label: "Heal", Style: discordgo.SuccessButton, CustomID: buttonId(VERB_HEAL, view.Id)},
		}},
	}
	return ResponseEmbed{MessageEmbed: embed, components: components}
}

func BattleNotice(err error) Response {
	switch {
	case errors.Is(err, battle.ErrNotYourBattle):
		return Notice("This battle is not yours")
	case errors.Is(err, battle.ErrNotYourTurn):
		return Notice("It is not your turn")
	case errors.Is(err, battle.ErrUnknownBattle), errors.Is(err, battle.ErrFinished):
		return Notice("This battle is already over")
	default:
		return Notice("Something went wrong, please try again later")
	}
}

// Pets and economy

func Balance(coins int) []Response {
	return []Response{ResponseString{fmt.Sprintf("You have **%d** coins", coins)}}
}

func DailyClaimed(amount int, coins int) []Response {
	return []Response{ResponseString{fmt.Sprintf("You claimed **%d** coins, you now have **%d**", amount, coins)}}
}

func DailyOnCooldown(remaining time.Duration) []Response {
	remaining = max(remaining.Round(time.Minute), time.Minute)
	return []Response{ResponseString{fmt.Sprintf("You already claimed your daily coins, come back in %s", remaining)}}
}

func Shop(catalog *pets.Catalog, prefix string) []Response {
	embed := discordgo.MessageEmbed{
		Title:       "Pet shop",
		Description: fmt.Sprintf("Buy a pet with `%sbuy <pet>`", prefix),
		Color:       color,
	}
	for _, entry := range catalog.Pets {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: fmt.Sprintf("%s %s (%s)", entry.Emote, title(entry.Name), entry.Rarity),
			Value: fmt.Sprintf("%s\n%d coins. Attack %d, Defense %d",
				entry.Description, entry.Price, entry.Attack, entry.Defense),
			Inline: false,
		})
	}
	return []Response{ResponseEmbed{MessageEmbed: embed}}
}

func PetNotInCatalog(kind string) []Response {
	return []Response{ResponseString{fmt.Sprintf("There is no pet called `%s` in the shop", kind)}}
}

func PetBought(entry pets.Entry, coins int) []Response {
	embed := discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s You bought a %s!", entry.Emote, title(entry.Name)),
		Description: fmt.Sprintf("You have **%d** coins left", coins),
		Color:       rarityColors[entry.Rarity],
	}
	return []Response{ResponseEmbed{MessageEmbed: embed}}
}

func NotEnoughCoins(entry pets.Entry) []Response {
	return []Response{ResponseString{fmt.Sprintf("You need %d coins to buy a %s", entry.Price, title(entry.Name))}}
}

func PetAlreadyOwned(kind string) []Response {
	return []Response{ResponseString{fmt.Sprintf("You already own a %s", title(kind))}}
}

func PetNotOwned(kind string) []Response {
	return []Response{ResponseString{fmt.Sprintf("You do not own a %s", title(kind))}}
}

func ActivePetChanged(kind string) []Response {
	return []Response{ResponseString{fmt.Sprintf("Your active pet is now your %s", title(kind))}}
}

func PetList(owned []storage.Pet, active string, catalog *pets.Catalog, prefix string) []Response {
	if len(owned) == 0 {
		return []Response{ResponseString{fmt.Sprintf("You have no pets yet, have a look at `%sshop`", prefix)}}
	}
	embed := discordgo.MessageEmbed{Title: "Your pets", Color: color}
	for _, pet := range owned {
		name := title(pet.Kind)
		if entry, ok := catalog.Find(pet.Kind); ok {
			name = fmt.Sprintf("%s %s", entry.Emote, name)
		}
		if pet.Kind == active {
			name += " (active)"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: name,
			Value: fmt.Sprintf("Level %d (%d/%d xp)\nAttack %d, Defense %d",
				pet.Level, pet.Xp, pets.XP_PER_LEVEL*pet.Level, pet.Attack, pet.Defense),
			Inline: true,
		})
	}
	return []Response{ResponseEmbed{MessageEmbed: embed}}
}

func PetReaction(userId string, reaction pets.Reaction) []Response {
	responses := []Response{}
	if reaction.Echo != "" {
		responses = append(responses, ResponseString{reaction.Echo})
	}
	if reaction.Gif != "" {
		responses = append(responses, ResponseString{reaction.Gif})
	}
	if reaction.LevelUp != nil {
		responses = append(responses, ResponseString{fmt.Sprintf("%s your %s reached level %d!",
			mention(userId), title(reaction.LevelUp.Kind), reaction.LevelUp.Level)})
	}
	return responses
}

// Automod

func NoPermission() []Response {
	return []Response{ResponseString{"You need the Manage Messages permission to do that"}}
}

func FilterChanged(state storage.FilterState) []Response {
	return []Response{ResponseString{fmt.Sprintf("The word filter is now %s", state)}}
}

func FilterAlready(state storage.FilterState) []Response {
	return []Response{ResponseString{fmt.Sprintf("The word filter is already %s", state)}}
}

func WordBanned(word string) []Response {
	return []Response{ResponseString{fmt.Sprintf("`%s` is now banned", word)}}
}

func WordAlreadyBanned(word string) []Response {
	return []Response{ResponseString{fmt.Sprintf("`%s` was already banned", word)}}
}

func WordUnbanned(word string) []Response {
	return []Response{ResponseString{fmt.Sprintf("`%s` is no longer banned", word)}}
}

func WordNotBanned(word string) []Response {
	return []Response{ResponseString{fmt.Sprintf("`%s` is not banned", word)}}
}

func MessageFiltered(userId string) []Response {
	return []Response{ResponseString{fmt.Sprintf("%s watch your language, that word is not allowed here", mention(userId))}}
}

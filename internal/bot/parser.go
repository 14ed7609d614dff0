package bot

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	COMMAND_BATTLE     = iota
	COMMAND_CHANGE_PET = iota
	COMMAND_PETS       = iota
	COMMAND_BALANCE    = iota
	COMMAND_DAILY      = iota
	COMMAND_SHOP       = iota
	COMMAND_BUY        = iota
	COMMAND_FILTER     = iota
	COMMAND_HELP       = iota
)

const (
	PARSEID_OK                     = iota
	PARSEID_NO_BOT_PREFIX          = iota
	PARSEID_NO_COMMAND             = iota
	PARSEID_COMMAND_NOT_RECOGNISED = iota
	PARSEID_NO_INPUT               = iota
	PARSEID_NOT_A_MENTION          = iota
	PARSEID_FILTER_NOT_RECOGNISED  = iota
)

const (
	FILTER_ON     = iota
	FILTER_OFF    = iota
	FILTER_ADD    = iota
	FILTER_REMOVE = iota
)

var errorMessages map[int]string = map[int]string{
	PARSEID_NO_COMMAND:             "No command provided",
	PARSEID_COMMAND_NOT_RECOGNISED: "Command `%s` not recognised",
	PARSEID_NO_INPUT:               "Command `%s` requires an argument",
	PARSEID_NOT_A_MENTION:          "Input `%s` is not a user mention",
	PARSEID_FILTER_NOT_RECOGNISED:  "Filter action `%s` not recognised, use on, off, add or remove",
}

type ParseResult struct {
	command      int
	parseid      int
	errorMessage string
	arguments    interface{}
}

type FilterArguments struct {
	action int
	word   string
}

func Parse(prefix string, message string) ParseResult {

	noInput := func(command int, commandString string) ParseResult {
		parseid := PARSEID_NO_INPUT
		return ParseResult{command: command, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], commandString)}
	}

	// The message has to start with the bot prefix
	if !strings.HasPrefix(message, prefix) {
		return ParseResult{parseid: PARSEID_NO_BOT_PREFIX}
	}

	// Get the command if valid
	words := strings.Fields(message[len(prefix):])
	if len(words) == 0 {
		parseid := PARSEID_NO_COMMAND
		return ParseResult{parseid: parseid, errorMessage: errorMessages[parseid]}
	}
	commandString := strings.ToLower(words[0])
	words = words[1:]
	log.Debug().Msg(fmt.Sprintf("Parsing command %s with %d arguments", commandString, len(words)))

	// Match the command
	switch commandString {
	case "battle":
		// ?battle @user
		command := COMMAND_BATTLE
		if len(words) == 0 {
			return noInput(command, commandString)
		}
		return parseMention(command, words[0])
	case "change_pet":
		// ?change_pet <kind>
		command := COMMAND_CHANGE_PET
		if len(words) == 0 {
			return noInput(command, commandString)
		}
		return ParseResult{command: command, parseid: PARSEID_OK, arguments: strings.ToLower(words[0])}
	case "pets":
		return ParseResult{command: COMMAND_PETS, parseid: PARSEID_OK}
	case "balance":
		return ParseResult{command: COMMAND_BALANCE, parseid: PARSEID_OK}
	case "daily":
		return ParseResult{command: COMMAND_DAILY, parseid: PARSEID_OK}
	case "shop":
		return ParseResult{command: COMMAND_SHOP, parseid: PARSEID_OK}
	case "buy":
		// ?buy <kind>
		command := COMMAND_BUY
		if len(words) == 0 {
			return noInput(command, commandString)
		}
		return ParseResult{command: command, parseid: PARSEID_OK, arguments: strings.ToLower(words[0])}
	case "filter":
		// ?filter on|off|add <word>|remove <word>
		command := COMMAND_FILTER
		if len(words) == 0 {
			return noInput(command, commandString)
		}
		return parseFilter(command, words)
	case "help":
		return ParseResult{command: COMMAND_HELP, parseid: PARSEID_OK}
	default:
		parseid := PARSEID_COMMAND_NOT_RECOGNISED
		return ParseResult{parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], commandString)}
	}
}

// A mention looks like <@id> or, for nicknames, <@!id>
func parseMention(command int, word string) ParseResult {
	id, ok := strings.CutPrefix(word, "<@")
	if ok {
		id, ok = strings.CutSuffix(strings.TrimPrefix(id, "!"), ">")
	}
	if !ok || id == "" || strings.IndexFunc(id, func(r rune) bool { return r < '0' || r > '9' }) != -1 {
		parseid := PARSEID_NOT_A_MENTION
		return ParseResult{command: command, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], word)}
	}
	return ParseResult{command: command, parseid: PARSEID_OK, arguments: id}
}

func parseFilter(command int, words []string) ParseResult {
	actionString := strings.ToLower(words[0])
	word := strings.Join(words[1:], " ")
	switch actionString {
	case "on":
		return ParseResult{command: command, parseid: PARSEID_OK, arguments: FilterArguments{action: FILTER_ON}}
	case "off":
		return ParseResult{command: command, parseid: PARSEID_OK, arguments: FilterArguments{action: FILTER_OFF}}
	case "add", "remove":
		if word == "" {
			parseid := PARSEID_NO_INPUT
			return ParseResult{command: command, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], "filter "+actionString)}
		}
		action := FILTER_ADD
		if actionString == "remove" {
			action = FILTER_REMOVE
		}
		return ParseResult{command: command, parseid: PARSEID_OK, arguments: FilterArguments{action: action, word: word}}
	default:
		parseid := PARSEID_FILTER_NOT_RECOGNISED
		return ParseResult{command: command, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], actionString)}
	}
}

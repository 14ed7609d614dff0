package bot

import (
	"github.com/bwmarrin/discordgo"
)

// Session is the part of the discord session the bot talks to
type Session interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID string, messageID string, options ...discordgo.RequestOption) error
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	UserChannelPermissions(userID string, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error)
}

type ResponseString struct {
	string
}

type ResponseEmbed struct {
	discordgo.MessageEmbed
	components []discordgo.MessageComponent
}

type Response interface {
	Send(channelid string, discord Session) (*discordgo.Message, error)
	// Data used when the response answers an interaction
	Data() *discordgo.InteractionResponseData
}

func (response ResponseString) Send(channelid string, discord Session) (*discordgo.Message, error) {
	return discord.ChannelMessageSendComplex(channelid, &discordgo.MessageSend{Content: response.string})
}

func (response ResponseString) Data() *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{Content: response.string}
}

func (response ResponseEmbed) Send(channelid string, discord Session) (*discordgo.Message, error) {
	return discord.ChannelMessageSendComplex(channelid, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{&response.MessageEmbed},
		Components: response.components,
	})
}

func (response ResponseEmbed) Data() *discordgo.InteractionResponseData {
	components := response.components
	if components == nil {
		// An empty list removes the buttons of the edited message
		components = []discordgo.MessageComponent{}
	}
	return &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{&response.MessageEmbed},
		Components: components,
	}
}

// Edit replaces the content of an existing message with the response
func (response ResponseEmbed) Edit(channelid string, messageid string, discord Session) error {
	components := response.components
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	embeds := []*discordgo.MessageEmbed{&response.MessageEmbed}
	_, err := discord.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         messageid,
		Channel:    channelid,
		Embeds:     &embeds,
		Components: &components,
	})
	return err
}

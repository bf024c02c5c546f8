package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

const embedColor = 0xff69b4

func commandDefs() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "setbirthday",
			Description: "Set your birthday",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "date",
					Description: "Your birthday in YYYY-MM-DD format",
					Required:    true,
				},
			},
		},
		{
			Name:        "checkbirthday",
			Description: "Check your or someone else's birthday",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Select a user to check their birthday",
					Required:    false,
				},
			},
		},
		{
			Name:        "birthdaylist",
			Description: "List all birthdays in the server",
		},
		{
			Name:        "forgetbirthday",
			Description: "Remove your stored birthday",
		},
		{
			Name:        "busy",
			Description: "Toggle busy auto-replies on or off",
		},
	}
}

// RegisterCommands overwrites the guild's slash commands with ours.
// Uses the configured application ID, falling back to the connected
// bot user when the gateway is open.
func (b *Bot) RegisterCommands() error {
	appID := b.cfg.Bot.AppID
	if appID == "" && b.session.State != nil && b.session.State.User != nil {
		appID = b.session.State.User.ID
	}
	if appID == "" {
		return fmt.Errorf("no application ID: set bot.app_id or connect first")
	}

	cmds, err := b.session.ApplicationCommandBulkOverwrite(appID, b.cfg.Bot.GuildID, commandDefs())
	if err != nil {
		return fmt.Errorf("ApplicationCommandBulkOverwrite error: %w", err)
	}
	b.logger.WithField("count", len(cmds)).Info("slash commands registered")
	return nil
}

package discord

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/cakedaybot/cakeday/service"
	"github.com/cakedaybot/cakeday/store"
)

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	switch data.Name {
	case "setbirthday":
		b.handleSetBirthday(s, i, data)
	case "checkbirthday":
		b.handleCheckBirthday(s, i, data)
	case "birthdaylist":
		b.handleBirthdayList(s, i)
	case "forgetbirthday":
		b.handleForgetBirthday(s, i)
	case "busy":
		b.handleBusy(s, i)
	}
}

func (b *Bot) handleSetBirthday(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	user := interactionUser(i)
	if user == nil || len(data.Options) == 0 {
		return
	}
	date := data.Options[0].StringValue()

	var age *int
	if year, _, _, err := store.ParseDate(date); err == nil && year > 0 {
		a := time.Now().Year() - year
		age = &a
	}

	err := b.store.Set(user.ID, date, age)
	switch {
	case errors.Is(err, store.ErrInvalidDate):
		b.respondText(s, i, "Use YYYY-MM-DD format", true)
	case err != nil:
		b.logger.WithError(err).Error("saving birthday failed")
		b.respondText(s, i, "Something went wrong saving your birthday.", true)
	default:
		b.respondText(s, i, fmt.Sprintf("Your birthday set to %s", date), true)
	}
}

func (b *Bot) handleCheckBirthday(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	target := interactionUser(i)
	for _, opt := range data.Options {
		if opt.Name == "user" {
			target = opt.UserValue(s)
		}
	}
	if target == nil {
		return
	}

	rec, ok := b.store.Get(target.ID)
	if !ok {
		b.respondText(s, i, fmt.Sprintf("No birthday found for %s", target.String()), true)
		return
	}
	b.respondText(s, i, fmt.Sprintf("%s's birthday is on %s", target.String(), rec.Date), true)
}

func (b *Bot) handleBirthdayList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	entries, err := b.store.List()
	if err != nil {
		b.logger.WithError(err).Error("listing birthdays failed")
		b.respondText(s, i, "Something went wrong reading the birthday list.", true)
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🎂 Birthday List 🎂",
		Color:       embedColor,
		Description: "All birthdays in this server:",
	}
	for _, e := range entries {
		member, err := s.GuildMember(b.cfg.Bot.GuildID, e.UserID)
		if err != nil {
			// user probably left, leave them out
			continue
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   member.User.String(),
			Value:  e.Record.Date,
			Inline: true,
		})
		if len(embed.Fields) == 25 {
			// embed field cap
			break
		}
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	}); err != nil {
		b.logger.WithError(err).Warn("responding to interaction failed")
	}
}

func (b *Bot) handleForgetBirthday(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	if user == nil {
		return
	}

	existed, err := b.store.Remove(user.ID)
	switch {
	case err != nil:
		b.logger.WithError(err).Error("removing birthday failed")
		b.respondText(s, i, "Something went wrong removing your birthday.", true)
	case existed:
		b.respondText(s, i, "Your birthday was removed.", true)
	default:
		b.respondText(s, i, "No birthday stored for you.", true)
	}
}

func (b *Bot) handleBusy(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	if user == nil {
		return
	}

	active, err := b.gate.Toggle(user.ID)
	switch {
	case errors.Is(err, service.ErrNotAllowed):
		b.respondText(s, i, "You are not allowed to do that.", true)
	case active:
		b.respondText(s, i, "Busy replies are now on.", true)
	default:
		b.respondText(s, i, "Busy replies are now off.", true)
	}
}

// onMessage answers mentions of the watched users while busy mode is on.
// Reply-type messages are ignored: replying to someone mentions them
// implicitly and answering those would make every thread noisy.
func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if m.Type == discordgo.MessageTypeReply {
		return
	}

	mentioned := make([]string, 0, len(m.Mentions))
	for _, u := range m.Mentions {
		mentioned = append(mentioned, u.ID)
	}

	reply, ok := b.gate.ReplyFor(mentioned)
	if !ok {
		return
	}
	if _, err := s.ChannelMessageSendReply(m.ChannelID, reply, m.Reference()); err != nil {
		b.logger.WithError(err).Warn("sending busy reply failed")
	}
}

func (b *Bot) respondText(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}); err != nil {
		b.logger.WithError(err).Warn("responding to interaction failed")
	}
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

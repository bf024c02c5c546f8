package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"github.com/cakedaybot/cakeday/config"
	"github.com/cakedaybot/cakeday/service"
	"github.com/cakedaybot/cakeday/store"
)

var _ service.Platform = (*Bot)(nil)

// Bot wraps the discordgo session: it serves the slash commands against
// the store, answers mentions of busy users, and implements the
// service.Platform calls the notifier makes.
type Bot struct {
	cfg     *config.Config
	store   store.Store
	gate    *service.Gate
	logger  *logrus.Entry
	session *discordgo.Session
}

func New(cfg *config.Config, st store.Store, gate *service.Gate, logger *logrus.Logger) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("discordgo.New error: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	b := &Bot{
		cfg:     cfg,
		store:   st,
		gate:    gate,
		logger:  logger.WithField("component", "discord"),
		session: s,
	}
	s.AddHandler(b.onReady)
	s.AddHandler(b.onInteraction)
	s.AddHandler(b.onMessage)
	return b, nil
}

func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discordgo open error: %w", err)
	}
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// Start connects to the gateway and blocks until the context ends.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.Open(); err != nil {
		return err
	}

	<-ctx.Done()
	if err := b.Close(); err != nil {
		b.logger.WithError(err).Warn("closing gateway failed")
	}
	return ctx.Err()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.WithField("user", r.User.Username).Info("logged in")
}

// service.Platform

func (b *Bot) ResolveMember(ctx context.Context, guildID, userID string) error {
	_, err := b.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	return err
}

func (b *Bot) GrantRole(ctx context.Context, guildID, userID, roleID string) error {
	return b.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (b *Bot) RevokeRole(ctx context.Context, guildID, userID, roleID string) error {
	return b.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (b *Bot) SendChannelMessage(ctx context.Context, channelID, content, imageURL string) error {
	msg := &discordgo.MessageSend{Content: content}
	if imageURL != "" {
		msg.Embeds = []*discordgo.MessageEmbed{{
			Image: &discordgo.MessageEmbedImage{URL: imageURL},
			Color: embedColor,
		}}
	}
	_, err := b.session.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx))
	return err
}

func (b *Bot) SendDirectMessage(ctx context.Context, userID, content string) error {
	ch, err := b.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("creating DM channel: %w", err)
	}
	_, err = b.session.ChannelMessageSend(ch.ID, content, discordgo.WithContext(ctx))
	return err
}

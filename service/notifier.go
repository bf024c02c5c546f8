package service

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/cakedaybot/cakeday/config"
	"github.com/cakedaybot/cakeday/store"
)

// Platform is the narrow slice of the chat platform the notifier needs.
// internal/discord implements it; tests use a fake.
type Platform interface {
	ResolveMember(ctx context.Context, guildID, userID string) error
	GrantRole(ctx context.Context, guildID, userID, roleID string) error
	RevokeRole(ctx context.Context, guildID, userID, roleID string) error
	SendChannelMessage(ctx context.Context, channelID, content, imageURL string) error
	SendDirectMessage(ctx context.Context, userID, content string) error
}

// Notifier runs the once-a-day birthday scan: it matches stored records
// against today's month/day and pushes the celebration out through the
// Platform. It keeps no state between ticks apart from the pending role
// removals, which live in an in-memory TTL cache and are lost on restart
// (a stuck role then needs clearing by hand).
type Notifier struct {
	cfg      config.NotifyConfig
	guildID  string
	store    store.Store
	platform Platform
	logger   *logrus.Entry
	loc      *time.Location

	removals    *cache.Cache
	roleTTL     time.Duration
	callTimeout time.Duration
}

func NewNotifier(cfg config.NotifyConfig, guildID string, st store.Store, p Platform, logger *logrus.Logger) (*Notifier, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("time.LoadLocation error: %w", err)
	}

	n := &Notifier{
		cfg:         cfg,
		guildID:     guildID,
		store:       st,
		platform:    p,
		logger:      logger.WithField("component", "notifier"),
		loc:         loc,
		roleTTL:     24 * time.Hour,
		callTimeout: 15 * time.Second,
	}
	n.removals = cache.New(n.roleTTL, time.Minute)
	n.removals.OnEvicted(n.revokeRole)
	return n, nil
}

// Start registers the scan with a cron schedule in the configured
// timezone and blocks until the context is canceled. If the process is
// down at the tick, that day's birthdays are simply missed.
func (n *Notifier) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(n.loc))
	_, err := c.AddFunc(n.cfg.Cron, func() {
		n.Scan(ctx, time.Now().In(n.loc))
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc error: %w", err)
	}

	n.logger.WithFields(logrus.Fields{
		"cron":     n.cfg.Cron,
		"timezone": n.cfg.Timezone,
	}).Info("daily birthday scan scheduled")
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}

// Scan selects every record whose month/day equals now's and runs the
// celebration sequence for each. One user's failure never blocks the
// rest; only a store failure aborts the scan.
func (n *Notifier) Scan(ctx context.Context, now time.Time) error {
	month, day := int(now.Month()), now.Day()

	entries, err := n.store.List()
	if err != nil {
		n.logger.WithError(err).Error("listing birthdays failed, skipping scan")
		return err
	}

	matched := 0
	for _, e := range entries {
		m, d := e.Record.MonthDay()
		if m != month || d != day {
			continue
		}
		matched++
		n.celebrate(ctx, e)
	}

	n.logger.WithFields(logrus.Fields{
		"month":   month,
		"day":     day,
		"matched": matched,
	}).Info("birthday scan finished")
	return nil
}

// celebrate runs the per-user sequence: resolve, grant role, announce,
// optionally DM. Each step has its own timeout and its failures are
// logged, never escalated.
func (n *Notifier) celebrate(ctx context.Context, e store.Entry) {
	logger := n.logger.WithField("user", e.UserID)

	if err := n.call(ctx, func(ctx context.Context) error {
		return n.platform.ResolveMember(ctx, n.guildID, e.UserID)
	}); err != nil {
		logger.WithError(err).Warn("member not resolvable, skipping")
		return
	}

	if n.cfg.RoleID != "" {
		if err := n.call(ctx, func(ctx context.Context) error {
			return n.platform.GrantRole(ctx, n.guildID, e.UserID, n.cfg.RoleID)
		}); err != nil {
			logger.WithError(err).Warn("granting birthday role failed")
		} else {
			n.removals.Set(e.UserID, n.cfg.RoleID, n.roleTTL)
		}
	}

	content := fmt.Sprintf("@everyone 🎉 Happy Birthday <@%s>! 🎂🥳", e.UserID)
	if err := n.call(ctx, func(ctx context.Context) error {
		return n.platform.SendChannelMessage(ctx, n.cfg.ChannelID, content, n.cfg.GifURL)
	}); err != nil {
		logger.WithError(err).Warn("sending birthday message failed")
	}

	if n.cfg.DirectMessage {
		dm := fmt.Sprintf("🎉 Happy Birthday! 🎂 Hope you have a great day, <@%s>!", e.UserID)
		if err := n.call(ctx, func(ctx context.Context) error {
			return n.platform.SendDirectMessage(ctx, e.UserID, dm)
		}); err != nil {
			logger.WithError(err).Warn("sending birthday DM failed")
		}
	}
}

// revokeRole is the cache eviction hook for the 24h role grant.
func (n *Notifier) revokeRole(userID string, v interface{}) {
	roleID, ok := v.(string)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), n.callTimeout)
	defer cancel()

	if err := n.platform.RevokeRole(ctx, n.guildID, userID, roleID); err != nil {
		n.logger.WithError(err).WithField("user", userID).Warn("removing birthday role failed")
		return
	}
	n.logger.WithField("user", userID).Info("birthday role removed")
}

// PendingRemovals reports how many role grants await expiry.
func (n *Notifier) PendingRemovals() int {
	return n.removals.ItemCount()
}

func (n *Notifier) call(ctx context.Context, f func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, n.callTimeout)
	defer cancel()
	return f(ctx)
}

package service

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/cakedaybot/cakeday/config"
)

// ErrNotAllowed rejects a privileged command from anyone but the owner.
var ErrNotAllowed = errors.New("not allowed")

// Gate is the in-memory busy toggle. While active, mentions of the
// watched users get an automatic reply. The flag is not persisted;
// a restart resets it to active.
type Gate struct {
	mu      sync.Mutex
	active  bool
	watched map[string]struct{}

	ownerID string
	reply   string
	limiter *rate.Limiter
	logger  *logrus.Entry
}

func NewGate(cfg config.BusyConfig, logger *logrus.Logger) *Gate {
	watched := make(map[string]struct{}, len(cfg.UserIDs))
	for _, id := range cfg.UserIDs {
		watched[id] = struct{}{}
	}

	perMin := cfg.RepliesPerMin
	if perMin <= 0 {
		perMin = 6
	}

	return &Gate{
		active:  true,
		watched: watched,
		ownerID: cfg.OwnerID,
		reply:   cfg.Reply,
		limiter: rate.NewLimiter(rate.Limit(float64(perMin)/60), perMin),
		logger:  logger.WithField("component", "busy"),
	}
}

// Toggle flips the flag and returns the new state. Only the configured
// owner may call it.
func (g *Gate) Toggle(userID string) (bool, error) {
	if userID == "" || userID != g.ownerID {
		return false, ErrNotAllowed
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.active = !g.active
	g.logger.WithField("active", g.active).Info("busy mode toggled")
	return g.active, nil
}

func (g *Gate) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.active
}

// ReplyFor returns the canned reply when the gate is active, one of the
// mentioned users is watched, and the rate limiter has budget. A mention
// storm is dropped silently once the limiter runs dry.
func (g *Gate) ReplyFor(mentioned []string) (string, bool) {
	if !g.Active() {
		return "", false
	}

	hit := false
	for _, id := range mentioned {
		if _, ok := g.watched[id]; ok {
			hit = true
			break
		}
	}
	if !hit {
		return "", false
	}

	if !g.limiter.Allow() {
		g.logger.Debug("busy reply rate limited")
		return "", false
	}
	return g.reply, true
}

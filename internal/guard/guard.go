// Package guard decides, per incoming update, whether the bot should react.
// One controller owns the pause flag, the blacklist and the per-user sliding
// windows; all access goes through its mutex.
package guard

import (
	"sync"
	"time"
)

// Verdict is the controller's decision for one update.
type Verdict int

const (
	// Allow lets the update through.
	Allow Verdict = iota
	// Paused means the bot is administratively stopped; the update is dropped.
	Paused
	// Blacklisted means the sender is banned; the update is dropped silently.
	Blacklisted
	// RateLimited means the sender exceeded the soft throttle; the caller may
	// answer with a cooldown notice.
	RateLimited
	// AutoBanned means the sender crossed the hard flood threshold and was
	// just added to the blacklist.
	AutoBanned
)

func (v Verdict) String() string {
	switch v {
	case Allow:
		return "allow"
	case Paused:
		return "paused"
	case Blacklisted:
		return "blacklisted"
	case RateLimited:
		return "rate_limited"
	case AutoBanned:
		return "auto_banned"
	}
	return "unknown"
}

// Config tunes the throttle and flood thresholds.
type Config struct {
	// Limit is the number of updates allowed per Period before throttling.
	Limit int
	// Period is the soft throttle window.
	Period time.Duration
	// MaxPerMinute is the hard flood threshold triggering an automatic ban.
	MaxPerMinute int
}

// Controller implements the protection policy. The zero value is not usable;
// construct with New.
type Controller struct {
	mu  sync.Mutex
	cfg Config
	now func() time.Time

	running   bool
	blacklist map[int64]struct{}

	// activity is the soft-throttle window, volume the hard flood window.
	activity map[int64][]time.Time
	volume   map[int64][]time.Time
}

// Option customises controller construction.
type Option func(*Controller)

// WithClock overrides the wall clock for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New builds a running controller with an empty blacklist.
func New(cfg Config, opts ...Option) *Controller {
	c := &Controller{
		cfg:       cfg,
		now:       time.Now,
		running:   true,
		blacklist: make(map[int64]struct{}),
		activity:  make(map[int64][]time.Time),
		volume:    make(map[int64][]time.Time),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check records one update from the user and returns the verdict. Order of
// precedence: pause, blacklist, hard flood threshold, soft throttle.
func (c *Controller) Check(userID int64) Verdict {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return Paused
	}
	if _, banned := c.blacklist[userID]; banned {
		return Blacklisted
	}

	now := c.now()

	vol := prune(c.volume[userID], now, time.Minute)
	vol = append(vol, now)
	c.volume[userID] = vol
	if c.cfg.MaxPerMinute > 0 && len(vol) > c.cfg.MaxPerMinute {
		c.blacklist[userID] = struct{}{}
		delete(c.volume, userID)
		delete(c.activity, userID)
		return AutoBanned
	}

	act := prune(c.activity[userID], now, c.cfg.Period)
	if c.cfg.Limit > 0 && len(act) >= c.cfg.Limit {
		c.activity[userID] = act
		return RateLimited
	}
	c.activity[userID] = append(act, now)
	return Allow
}

func prune(ts []time.Time, now time.Time, window time.Duration) []time.Time {
	if window <= 0 {
		return ts[:0]
	}
	cutoff := now.Add(-window)
	i := 0
	for ; i < len(ts); i++ {
		if ts[i].After(cutoff) {
			break
		}
	}
	return append(ts[:0], ts[i:]...)
}

// Pause stops the bot from reacting to customer updates.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
}

// Resume re-enables customer updates.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
}

// Running reports whether the bot reacts to customer updates.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Ban adds a user to the blacklist.
func (c *Controller) Ban(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blacklist[userID] = struct{}{}
}

// Unban removes a user from the blacklist. It reports whether the user was
// present.
func (c *Controller) Unban(userID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.blacklist[userID]
	delete(c.blacklist, userID)
	return ok
}

// IsBanned reports whether the user is blacklisted.
func (c *Controller) IsBanned(userID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.blacklist[userID]
	return ok
}

// Blacklist returns a snapshot of banned user ids.
func (c *Controller) Blacklist() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]int64, 0, len(c.blacklist))
	for id := range c.blacklist {
		ids = append(ids, id)
	}
	return ids
}

// Load replaces the blacklist with the given ids, used at startup to restore
// persisted bans.
func (c *Controller) Load(ids []int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blacklist = make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		c.blacklist[id] = struct{}{}
	}
}

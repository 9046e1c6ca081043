package notifications

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"gitforum/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	presenceOnlineKey  = "presence:online"
	presenceSeenPrefix = "presence:seen:"
	presenceSeenTTL    = 90 * time.Second
	presenceGrace      = 5 * time.Second
	presenceReapEvery  = 60 * time.Second
)

// Presence tracks which users currently hold websocket connections. Local
// connection counts answer quickly for this process; Redis mirrors them so
// every API instance sees the same online set and the "seen" keys expire on
// their own when a process dies without cleaning up. Offline transitions are
// held back by a short grace window so a page reload does not flap a user's
// online status.
type Presence struct {
	rdb *redis.Client

	mu              sync.RWMutex
	conns           map[uint]int
	graceTimers     map[uint]*time.Timer
	notifiedOffline map[uint]bool

	grace     time.Duration
	reapEvery time.Duration

	onOnline  func(userID uint)
	onOffline func(userID uint)

	stopOnce sync.Once
	stopCh   chan struct{}
}

// newPresence builds a tracker. With a nil Redis client presence degrades to
// local connection counts only. The reaper runs only when Redis is present,
// sweeping users whose seen key expired without an Unregister.
func newPresence(rdb *redis.Client) *Presence {
	p := &Presence{
		rdb:             rdb,
		conns:           make(map[uint]int),
		graceTimers:     make(map[uint]*time.Timer),
		notifiedOffline: make(map[uint]bool),
		grace:           presenceGrace,
		reapEvery:       presenceReapEvery,
		stopCh:          make(chan struct{}),
	}
	if p.rdb != nil {
		go p.reaperLoop()
	}
	return p
}

// SetCallbacks installs the online/offline transition hooks. The offline
// hook fires at most once per offline transition.
func (p *Presence) SetCallbacks(onOnline, onOffline func(userID uint)) {
	p.mu.Lock()
	p.onOnline = onOnline
	p.onOffline = onOffline
	p.mu.Unlock()
}

// Stop halts the reaper and cancels pending grace timers.
func (p *Presence) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
		p.mu.Lock()
		for userID, timer := range p.graceTimers {
			timer.Stop()
			delete(p.graceTimers, userID)
		}
		p.mu.Unlock()
	})
}

// Register counts a new connection for the user. A first connection, or one
// arriving inside the grace window of a disconnect, keeps the user online
// without ever emitting an offline transition.
func (p *Presence) Register(ctx context.Context, userID uint) {
	wasOnline := p.IsOnline(ctx, userID)

	p.mu.Lock()
	if t, ok := p.graceTimers[userID]; ok {
		t.Stop()
		delete(p.graceTimers, userID)
	}
	p.conns[userID]++
	p.notifiedOffline[userID] = false
	p.mu.Unlock()

	p.Touch(ctx, userID)
	if !wasOnline {
		p.emitOnline(userID)
	}
}

// Touch refreshes the user's Redis presence. Called on register and on every
// websocket read so an idle-but-connected user never expires.
func (p *Presence) Touch(ctx context.Context, userID uint) {
	if p.rdb == nil {
		return
	}
	uid := strconv.FormatUint(uint64(userID), 10)
	if err := p.rdb.SAdd(ctx, presenceOnlineKey, uid).Err(); err != nil {
		middleware.Logger.Warn("presence online set update failed",
			slog.Uint64("user_id", uint64(userID)), slog.String("error", err.Error()))
	}
	if err := p.rdb.SetEx(ctx, presenceSeenPrefix+uid, strconv.FormatInt(time.Now().Unix(), 10), presenceSeenTTL).Err(); err != nil {
		middleware.Logger.Warn("presence seen key update failed",
			slog.Uint64("user_id", uint64(userID)), slog.String("error", err.Error()))
	}
}

// Unregister drops one connection. When the last one goes, the offline
// transition is scheduled after the grace window instead of firing at once.
func (p *Presence) Unregister(ctx context.Context, userID uint) {
	p.mu.Lock()
	if n, ok := p.conns[userID]; ok {
		n--
		if n > 0 {
			p.conns[userID] = n
			p.mu.Unlock()
			return
		}
		delete(p.conns, userID)
	}

	if t, ok := p.graceTimers[userID]; ok {
		t.Stop()
	}
	p.graceTimers[userID] = time.AfterFunc(p.grace, func() {
		p.finalizeOffline(context.Background(), userID)
	})
	p.mu.Unlock()
}

// IsOnline answers from local connections first, then from the Redis seen
// key, so users connected to a different API instance still read as online.
func (p *Presence) IsOnline(ctx context.Context, userID uint) bool {
	p.mu.RLock()
	local := p.conns[userID] > 0
	p.mu.RUnlock()
	if local {
		return true
	}

	if p.rdb == nil {
		return false
	}
	exists, err := p.rdb.Exists(ctx, presenceSeenPrefix+strconv.FormatUint(uint64(userID), 10)).Result()
	return err == nil && exists > 0
}

// reapOnce sweeps the online set for members whose seen key expired and
// emits their offline transition. Covers processes that died mid-connection.
func (p *Presence) reapOnce(ctx context.Context) {
	if p.rdb == nil {
		return
	}

	members, err := p.rdb.SMembers(ctx, presenceOnlineKey).Result()
	if err != nil {
		return
	}

	for _, raw := range members {
		id64, parseErr := strconv.ParseUint(raw, 10, 32)
		if parseErr != nil {
			continue
		}
		userID := uint(id64)
		exists, existsErr := p.rdb.Exists(ctx, presenceSeenPrefix+raw).Result()
		if existsErr != nil || exists > 0 {
			continue
		}

		_ = p.rdb.SRem(ctx, presenceOnlineKey, raw).Err()

		p.mu.RLock()
		hasLocal := p.conns[userID] > 0
		p.mu.RUnlock()
		if !hasLocal {
			p.emitOffline(userID)
		}
	}
}

func (p *Presence) reaperLoop() {
	ticker := time.NewTicker(p.reapEvery)
	defer ticker.Stop()

	ctx := context.Background()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.reapOnce(ctx)
		}
	}
}

func (p *Presence) finalizeOffline(ctx context.Context, userID uint) {
	p.mu.Lock()
	if p.conns[userID] > 0 {
		delete(p.graceTimers, userID)
		p.mu.Unlock()
		return
	}
	delete(p.graceTimers, userID)
	p.mu.Unlock()

	if p.rdb != nil {
		uid := strconv.FormatUint(uint64(userID), 10)
		exists, err := p.rdb.Exists(ctx, presenceSeenPrefix+uid).Result()
		if err == nil && exists > 0 {
			// Another instance refreshed the seen key; the user is still
			// online there.
			return
		}
		_ = p.rdb.SRem(ctx, presenceOnlineKey, uid).Err()
	}

	p.emitOffline(userID)
}

func (p *Presence) emitOnline(userID uint) {
	p.mu.Lock()
	p.notifiedOffline[userID] = false
	cb := p.onOnline
	p.mu.Unlock()
	if cb != nil {
		cb(userID)
	}
}

func (p *Presence) emitOffline(userID uint) {
	p.mu.Lock()
	if p.notifiedOffline[userID] {
		p.mu.Unlock()
		return
	}
	p.notifiedOffline[userID] = true
	cb := p.onOffline
	p.mu.Unlock()
	if cb != nil {
		cb(userID)
	}
}

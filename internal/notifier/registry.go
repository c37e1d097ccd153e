package notifier

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"bot_uni_schedule/internal/iis"
	"bot_uni_schedule/internal/schedule"
)

// Options configures notifiers created by a Registry.
type Options struct {
	Sender   Sender
	Logger   *zap.Logger
	Location *time.Location
	// Interval is the polling period; it doubles as the firing window width
	// unless Window overrides it.
	Interval time.Duration
	// Cooldown is slept after a fire to skip the remainder of the window.
	Cooldown time.Duration
	Window   time.Duration
	// Now supplies the wall clock; nil means time.Now.
	Now func() time.Time
}

// Registry keeps at most one live notifier per chat. Replacing cancels the
// old loop before the new one is installed; a superseded notifier never
// outlives the call in the common case.
type Registry struct {
	opts    Options
	mu      sync.Mutex
	entries map[int64]*entry
}

type entry struct {
	n      *Notifier
	cancel context.CancelFunc
}

func NewRegistry(opts Options) *Registry {
	if opts.Interval <= 0 {
		opts.Interval = schedule.DefaultWindow
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = opts.Interval + time.Second
	}
	if opts.Window <= 0 {
		opts.Window = opts.Interval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Registry{opts: opts, entries: make(map[int64]*entry)}
}

// StartOrReplace installs a fresh notifier for the chat, stopping any
// previous one first.
func (r *Registry) StartOrReplace(chatID int64, doc iis.Schedule, week, subgroup int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.entries[chatID]; ok {
		old.cancel()
		r.opts.Logger.Info("notifier replaced", zap.Int64("chat_id", chatID))
	}

	n := &Notifier{
		chatID:   chatID,
		doc:      doc,
		subgroup: subgroup,
		sender:   r.opts.Sender,
		log:      r.opts.Logger,
		loc:      r.opts.Location,
		interval: r.opts.Interval,
		cooldown: r.opts.Cooldown,
		window:   r.opts.Window,
		now:      r.opts.Now,
	}
	n.week.Store(int32(week))

	ctx, cancel := context.WithCancel(context.Background())
	r.entries[chatID] = &entry{n: n, cancel: cancel}
	go n.Run(ctx)
	r.opts.Logger.Info("notifier started", zap.Int64("chat_id", chatID),
		zap.Int("week", week), zap.Int("subgroup", subgroup))
}

// Running reports whether the chat currently has a live notifier.
func (r *Registry) Running(chatID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[chatID]
	return ok
}

// Stop cancels and removes the chat's notifier, if any.
func (r *Registry) Stop(chatID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[chatID]
	if !ok {
		return false
	}
	e.cancel()
	delete(r.entries, chatID)
	r.opts.Logger.Info("notifier stopped", zap.Int64("chat_id", chatID))
	return true
}

// StopAll cancels every notifier; used on shutdown.
func (r *Registry) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for chatID, e := range r.entries {
		e.cancel()
		delete(r.entries, chatID)
	}
}

// UpdateWeek pushes a freshly fetched rotation week number into every
// running notifier. Part of the optional week refresh policy; when the
// policy is disabled each notifier keeps the week it was started with.
func (r *Registry) UpdateWeek(week int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		e.n.week.Store(int32(week))
	}
	r.opts.Logger.Info("week number refreshed", zap.Int("week", week))
}

package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/collex/internal/models"
)

// State is the authentication state of a browser session.
type State string

const (
	StateUnknown        State = "unknown"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
	StateAnonymous      State = "anonymous"
)

const (
	defaultRecheckInterval = 5 * time.Minute
	defaultSweepInterval   = time.Minute
)

// View is the derived {state, user} pair exposed to the rest of the service.
type View struct {
	State State            `json:"state"`
	User  *models.AuthUser `json:"user"`
}

// Source resolves the current session of a browser session ID.
// A nil session with a nil error means there is no session.
type Source interface {
	Current(ctx context.Context, sessionID string) (*models.Session, error)
}

// gateEntry exists only for sessions that are authenticated, authenticating
// or being fetched. Anonymous sessions have no entry.
type gateEntry struct {
	view      View
	prev      View
	expiresAt time.Time
	checkedAt time.Time
	fetching  bool
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithRecheckInterval sets how long an authenticated session is trusted
// before Mount asks the source again. Zero disables rechecks.
func WithRecheckInterval(d time.Duration) GateOption {
	return func(g *Gate) { g.recheck = d }
}

// WithSweepInterval sets how often Run signs out expired sessions.
// Zero disables the sweep.
func WithSweepInterval(d time.Duration) GateOption {
	return func(g *Gate) { g.sweepEvery = d }
}

// Gate derives per-session authentication state. After the initial fetch,
// state changes only through SIGNED_IN, SIGNED_OUT and TOKEN_REFRESHED events
// read by Run; Gate holds the only subscription to the hub. Expired sessions
// are signed out by publishing SIGNED_OUT to the same hub.
type Gate struct {
	hub        *Hub
	source     Source
	logger     *zap.Logger
	recheck    time.Duration
	sweepEvery time.Duration
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*gateEntry
	changed  chan struct{}
}

// NewGate creates a Gate reading events from hub.
func NewGate(hub *Hub, source Source, logger *zap.Logger, opts ...GateOption) *Gate {
	g := &Gate{
		hub:        hub,
		source:     source,
		logger:     logger,
		recheck:    defaultRecheckInterval,
		sweepEvery: defaultSweepInterval,
		now:        time.Now,
		sessions:   make(map[string]*gateEntry),
		changed:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run consumes auth events until ctx is done.
func (g *Gate) Run(ctx context.Context) {
	events, cancel := g.hub.Subscribe(64)
	defer cancel()

	if g.sweepEvery > 0 {
		go g.sweep(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			g.apply(ev)
		}
	}
}

func (g *Gate) apply(ev Event) {
	g.mu.Lock()
	switch ev.Kind {
	case EventSignedIn, EventTokenRefreshed:
		if ev.User == nil {
			g.mu.Unlock()
			return
		}
		u := *ev.User
		e := g.entry(ev.SessionID)
		e.view = View{State: StateAuthenticated, User: &u}
		e.expiresAt = ev.ExpiresAt
		e.checkedAt = g.now()
	case EventSignedOut:
		delete(g.sessions, ev.SessionID)
	default:
		g.mu.Unlock()
		return
	}
	g.broadcastLocked()
	g.mu.Unlock()

	g.logger.Debug("Session state changed", zap.String("event", string(ev.Kind)))
}

// Mount resolves the session's state. A session the gate holds no entry for
// is fetched from the source; an authenticated session is signed out once
// it expires and is rechecked against the source after the recheck interval.
func (g *Gate) Mount(ctx context.Context, sessionID string) (View, error) {
	for {
		g.mu.Lock()
		e, ok := g.sessions[sessionID]
		switch {
		case !ok:
			e = &gateEntry{view: View{State: StateUnknown}, fetching: true}
			g.sessions[sessionID] = e
			g.mu.Unlock()
			return g.fetch(ctx, sessionID, e)

		case e.fetching:
			changed := g.changed
			g.mu.Unlock()
			select {
			case <-changed:
				continue
			case <-ctx.Done():
				return View{}, ctx.Err()
			}

		case e.view.State == StateAuthenticated && g.expiredLocked(e):
			g.mu.Unlock()
			return g.expire(ctx, sessionID, e)

		case e.view.State == StateAuthenticated && g.recheck > 0 && g.now().Sub(e.checkedAt) >= g.recheck:
			e.fetching = true
			g.mu.Unlock()
			return g.fetch(ctx, sessionID, e)

		default:
			v := e.view
			g.mu.Unlock()
			return v, nil
		}
	}
}

func (g *Gate) fetch(ctx context.Context, sessionID string, e *gateEntry) (View, error) {
	started := g.now()
	sess, err := g.source.Current(ctx, sessionID)

	g.mu.Lock()
	e.fetching = false
	current := g.sessions[sessionID] == e

	if ctx.Err() != nil {
		if current && e.view.State == StateUnknown {
			delete(g.sessions, sessionID)
		}
		// Wake waiters so one of them fetches again.
		g.broadcastLocked()
		g.mu.Unlock()
		return View{}, ctx.Err()
	}
	if err != nil {
		g.logger.Warn("Session lookup failed", zap.Error(err))
	}

	switch {
	case !current:
		// A SIGNED_OUT event removed the entry during the fetch.
		g.broadcastLocked()
		g.mu.Unlock()
		return View{State: StateAnonymous}, nil

	case e.view.State == StateUnknown:
		if err != nil || sess == nil {
			delete(g.sessions, sessionID)
			g.broadcastLocked()
			g.mu.Unlock()
			return View{State: StateAnonymous}, nil
		}
		u := sess.User
		e.view = View{State: StateAuthenticated, User: &u}
		e.expiresAt = sess.ExpiresAt
		e.checkedAt = g.now()

	case e.view.State == StateAuthenticated && !e.checkedAt.After(started):
		// Recheck of an authenticated session with no event since it began.
		switch {
		case err != nil:
			// Keep the session through a lookup outage.
			e.checkedAt = g.now()
		case sess == nil:
			e.expiresAt = g.now()
			g.broadcastLocked()
			g.mu.Unlock()
			return g.expire(ctx, sessionID, e)
		default:
			u := sess.User
			e.view.User = &u
			e.expiresAt = sess.ExpiresAt
			e.checkedAt = g.now()
		}
	}
	g.broadcastLocked()
	v := e.view
	g.mu.Unlock()
	return v, nil
}

// expire signs out an expired session through the hub and waits for the
// gate to drop the entry.
func (g *Gate) expire(ctx context.Context, sessionID string, e *gateEntry) (View, error) {
	g.logger.Info("Session expired", zap.String("sessionID", sessionID))
	if err := g.hub.Publish(ctx, Event{Kind: EventSignedOut, SessionID: sessionID}); err != nil {
		return View{}, err
	}
	for {
		g.mu.Lock()
		cur, ok := g.sessions[sessionID]
		if !ok || cur != e || !g.expiredLocked(cur) {
			v := View{State: StateAnonymous}
			if ok {
				v = cur.view
			}
			g.mu.Unlock()
			return v, nil
		}
		changed := g.changed
		g.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return View{}, ctx.Err()
		}
	}
}

func (g *Gate) sweep(ctx context.Context) {
	ticker := time.NewTicker(g.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		g.mu.Lock()
		var expired []string
		for sid, e := range g.sessions {
			if e.view.State == StateAuthenticated && !e.fetching && g.expiredLocked(e) {
				expired = append(expired, sid)
			}
		}
		g.mu.Unlock()

		for _, sid := range expired {
			if err := g.hub.Publish(ctx, Event{Kind: EventSignedOut, SessionID: sid}); err != nil {
				return
			}
		}
	}
}

// BeginAuthenticating marks a sign-in attempt in progress.
func (g *Gate) BeginAuthenticating(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e := g.entry(sessionID)
	if e.view.State == StateAuthenticating {
		return
	}
	e.prev = e.view
	e.view = View{State: StateAuthenticating}
	g.broadcastLocked()
}

// AbortAuthenticating restores the state held before a failed sign-in attempt.
func (g *Gate) AbortAuthenticating(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.sessions[sessionID]
	if !ok || e.view.State != StateAuthenticating {
		return
	}
	e.view = e.prev
	if e.view.State == StateUnknown && !e.fetching {
		delete(g.sessions, sessionID)
	}
	g.broadcastLocked()
}

// View returns the current view of a session without fetching. A session
// with no entry reads as unknown.
func (g *Gate) View(sessionID string) View {
	g.mu.Lock()
	defer g.mu.Unlock()
	if e, ok := g.sessions[sessionID]; ok {
		return e.view
	}
	return View{State: StateUnknown}
}

// Len returns the number of sessions the gate holds state for.
func (g *Gate) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sessions)
}

// Await blocks until pred holds for the session's view or ctx is done.
func (g *Gate) Await(ctx context.Context, sessionID string, pred func(View) bool) (View, error) {
	for {
		g.mu.Lock()
		v := View{State: StateUnknown}
		if e, ok := g.sessions[sessionID]; ok {
			v = e.view
		}
		changed := g.changed
		g.mu.Unlock()

		if pred(v) {
			return v, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return v, ctx.Err()
		}
	}
}

// Settled reports whether a view is no longer unknown or authenticating.
func Settled(v View) bool {
	return v.State == StateAuthenticated || v.State == StateAnonymous
}

// SignedOut reports whether a view holds no signed-in or signing-in user.
func SignedOut(v View) bool {
	return v.State != StateAuthenticated && v.State != StateAuthenticating
}

func (g *Gate) expiredLocked(e *gateEntry) bool {
	return !e.expiresAt.IsZero() && !g.now().Before(e.expiresAt)
}

func (g *Gate) entry(sessionID string) *gateEntry {
	e, ok := g.sessions[sessionID]
	if !ok {
		e = &gateEntry{view: View{State: StateUnknown}}
		g.sessions[sessionID] = e
	}
	return e
}

func (g *Gate) broadcastLocked() {
	close(g.changed)
	g.changed = make(chan struct{})
}

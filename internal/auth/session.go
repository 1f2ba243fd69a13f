package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/storage"
	"github.com/2beens/fittrack/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=session_mocks_test.go -package=auth_test

var ErrNoSession = errors.New("no session")

type Event string

const (
	EventInitialSession Event = "INITIAL_SESSION"
	EventSignedIn       Event = "SIGNED_IN"
	EventSignedOut      Event = "SIGNED_OUT"
	EventUserUpdated    Event = "USER_UPDATED"
)

type Session struct {
	AccessToken string    `json:"accessToken"`
	User        User      `json:"user"`
	ExpiresAt   time.Time `json:"expiresAt,omitempty"`
}

// Listener gets every auth state change. session is nil once signed out.
type Listener func(event Event, session *Session)

type userService interface {
	GetUser(ctx context.Context, accessToken string) pkg.Result[User]
	SignOut(ctx context.Context, accessToken string) pkg.Result[struct{}]
}

// SessionHolder keeps the current auth session. It is created once at
// startup and handed to whoever needs the user.
type SessionHolder struct {
	api userService
	kv  storage.KV

	mutex   sync.RWMutex
	session *Session
	loading bool

	// serializes session changes with their persistence; never held
	// while waiting for the auth service
	transitionMutex sync.Mutex

	listenersMutex sync.Mutex
	listeners      map[int]Listener
	nextListenerID int
}

func NewSessionHolder(api userService, kv storage.KV) *SessionHolder {
	return &SessionHolder{
		api:       api,
		kv:        kv,
		loading:   true,
		listeners: make(map[int]Listener),
	}
}

// Init restores the persisted session and checks it with the auth service.
func (h *SessionHolder) Init(ctx context.Context) error {
	defer func() {
		h.mutex.Lock()
		h.loading = false
		h.mutex.Unlock()
		h.emit(EventInitialSession, h.Session())
	}()

	stored, err := h.loadPersisted(ctx)
	if err != nil {
		return err
	}
	if stored == nil {
		return nil
	}

	result := h.api.GetUser(ctx, stored.AccessToken)

	h.transitionMutex.Lock()
	defer h.transitionMutex.Unlock()
	if h.Session() != nil {
		log.Debugln("signed in while restoring, persisted session ignored")
		return nil
	}

	result.Handle(
		func(user User) {
			stored.User = user
			h.setSession(stored)
			if err := h.persist(ctx, stored); err != nil {
				log.Errorf("persist restored session: %s", err)
			}
		},
		func(err error) {
			if isTokenRejected(err) {
				log.Debugf("persisted session rejected: %s", err)
				h.forget(ctx)
				return
			}
			// auth service unreachable, keep the last known user
			log.Warnf("restore session, get user: %s", err)
			h.setSession(stored)
		},
	)

	return nil
}

// SignIn validates the access token and makes it the current session.
func (h *SessionHolder) SignIn(ctx context.Context, accessToken string) (*User, error) {
	user, err := h.api.GetUser(ctx, accessToken).Unwrap()
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	session := &Session{
		AccessToken: accessToken,
		User:        user,
	}
	if claims, err := ParseClaims(accessToken); err == nil {
		session.ExpiresAt = claims.ExpiresAt
	}

	h.transitionMutex.Lock()
	if err := h.persist(ctx, session); err != nil {
		h.transitionMutex.Unlock()
		return nil, fmt.Errorf("persist session: %w", err)
	}
	if err := h.kv.Set(ctx, storage.KeyUserID, user.ID); err != nil {
		h.transitionMutex.Unlock()
		return nil, fmt.Errorf("persist user id: %w", err)
	}
	h.setSession(session)
	h.transitionMutex.Unlock()

	h.emit(EventSignedIn, h.Session())
	return &user, nil
}

// SignOut ends the session with the auth service and drops it locally.
// The local session is dropped even when the auth service call fails.
func (h *SessionHolder) SignOut(ctx context.Context) error {
	current := h.Session()
	if current == nil {
		return ErrNoSession
	}

	h.api.SignOut(ctx, current.AccessToken).Handle(
		func(struct{}) {
			log.Debugf("user %s signed out", current.User.ID)
		},
		func(err error) {
			log.Warnf("auth service sign out for user %s: %s", current.User.ID, err)
		},
	)

	h.transitionMutex.Lock()
	if !h.isCurrent(current.AccessToken) {
		// replaced by a newer sign in meanwhile, which stays
		h.transitionMutex.Unlock()
		return nil
	}
	h.forget(ctx)
	h.transitionMutex.Unlock()

	h.emit(EventSignedOut, nil)
	return nil
}

// Watch re-checks the session every interval until ctx is done.
func (h *SessionHolder) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debugln("session watcher stopped")
			return
		case <-ticker.C:
			h.Refresh(ctx)
		}
	}
}

// Refresh checks the current session once. The answer is dropped when
// the session was signed out or replaced while the check ran.
func (h *SessionHolder) Refresh(ctx context.Context) {
	current := h.Session()
	if current == nil {
		return
	}

	result := h.api.GetUser(ctx, current.AccessToken)

	h.transitionMutex.Lock()
	if !h.isCurrent(current.AccessToken) {
		h.transitionMutex.Unlock()
		log.Debugf("session of user %s changed during check", current.User.ID)
		return
	}

	var event Event
	result.Handle(
		func(user User) {
			if user == current.User {
				return
			}
			current.User = user
			h.setSession(current)
			if err := h.persist(ctx, current); err != nil {
				log.Errorf("persist updated session: %s", err)
			}
			event = EventUserUpdated
		},
		func(err error) {
			if !isTokenRejected(err) {
				log.Warnf("session check: %s", err)
				return
			}
			log.Infof("session of user %s no longer valid: %s", current.User.ID, err)
			h.forget(ctx)
			event = EventSignedOut
		},
	)
	h.transitionMutex.Unlock()

	switch event {
	case EventUserUpdated:
		h.emit(event, h.Session())
	case EventSignedOut:
		h.emit(event, nil)
	}
}

// Subscribe registers a listener for auth state changes and returns the
// func removing it.
func (h *SessionHolder) Subscribe(listener Listener) func() {
	h.listenersMutex.Lock()
	defer h.listenersMutex.Unlock()

	id := h.nextListenerID
	h.nextListenerID++
	h.listeners[id] = listener

	return func() {
		h.listenersMutex.Lock()
		defer h.listenersMutex.Unlock()
		delete(h.listeners, id)
	}
}

// Close removes all listeners.
func (h *SessionHolder) Close() {
	h.listenersMutex.Lock()
	defer h.listenersMutex.Unlock()
	h.listeners = make(map[int]Listener)
}

func (h *SessionHolder) User() *User {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	if h.session == nil {
		return nil
	}
	u := h.session.User
	return &u
}

func (h *SessionHolder) Loading() bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.loading
}

// Session returns a copy of the current session, nil when signed out.
func (h *SessionHolder) Session() *Session {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	if h.session == nil {
		return nil
	}
	s := *h.session
	return &s
}

func (h *SessionHolder) isCurrent(accessToken string) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.session != nil && h.session.AccessToken == accessToken
}

func (h *SessionHolder) setSession(session *Session) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if session == nil {
		h.session = nil
		return
	}
	s := *session
	h.session = &s
}

func (h *SessionHolder) forget(ctx context.Context) {
	h.setSession(nil)
	if err := h.kv.Remove(ctx, storage.KeyAuthSession); err != nil {
		log.Errorf("remove persisted session: %s", err)
	}
}

func (h *SessionHolder) loadPersisted(ctx context.Context) (*Session, error) {
	raw, found, err := h.kv.Get(ctx, storage.KeyAuthSession)
	if err != nil {
		return nil, fmt.Errorf("read persisted session: %w", err)
	}
	if !found {
		return nil, nil
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil || session.AccessToken == "" {
		log.Warnf("dropping unreadable persisted session: %v", err)
		h.forget(ctx)
		return nil, nil
	}
	return &session, nil
}

func (h *SessionHolder) persist(ctx context.Context, session *Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return h.kv.Set(ctx, storage.KeyAuthSession, string(raw))
}

func (h *SessionHolder) emit(event Event, session *Session) {
	h.listenersMutex.Lock()
	listeners := make([]Listener, 0, len(h.listeners))
	for _, l := range h.listeners {
		listeners = append(listeners, l)
	}
	h.listenersMutex.Unlock()

	for _, l := range listeners {
		l(event, session)
	}
}

func isTokenRejected(err error) bool {
	return errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrTokenExpired)
}

package auth

import (
	"context"
	"errors"
	"net/mail"
	"sync"

	"vlogvalidator/core"
)

var (
	// errors
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidCredentials = errors.New("wrong email or password")
)

type (
	// Session identifies an authenticated teacher.
	Session struct {
		UID   string `json:"uid"`
		Email string `json:"email"`
	}

	// Backend is any identity provider that can exchange a credential pair
	// for a session. It returns ErrInvalidCredentials for wrong pairs.
	Backend interface {
		SignIn(ctx context.Context, email, password string) (Session, error)
	}

	// Service gates data access to authenticated sessions. It holds the
	// current session and notifies watchers on every transition, including
	// initial state resolution.
	Service struct {
		backend Backend

		mu       sync.Mutex
		current  *Session
		watchers map[int]chan *Session
		nextID   int
	}
)

func NewService(backend Backend) *Service {
	return &Service{
		backend:  backend,
		watchers: make(map[int]chan *Session),
	}
}

// Login cleans and checks the email shape locally, then delegates to the
// identity backend. Malformed format and wrong credentials are distinct
// failures.
func (svc *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = core.CleanString(email, true /* lower */)
	if _, err := mail.ParseAddress(email); err != nil {
		return Session{}, core.NewValidationError(ErrInvalidEmail,
			core.FieldError{Field: "email", Error: ErrInvalidEmail.Error()})
	}

	sess, err := svc.backend.SignIn(ctx, email, password)
	if err != nil {
		return Session{}, err
	}

	svc.mu.Lock()
	svc.current = &sess
	svc.broadcast(&sess)
	svc.mu.Unlock()
	return sess, nil
}

func (svc *Service) Logout() {
	svc.mu.Lock()
	svc.current = nil
	svc.broadcast(nil)
	svc.mu.Unlock()
}

// Current returns the active session, if any.
func (svc *Service) Current() (Session, bool) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.current == nil {
		return Session{}, false
	}
	return *svc.current, true
}

// Watch subscribes to session transitions. The returned watcher fires
// immediately with the current state so dependents can resolve their initial
// gating, then on every subsequent login/logout.
func (svc *Service) Watch() *Watcher {
	ch := make(chan *Session, 8)

	svc.mu.Lock()
	id := svc.nextID
	svc.nextID++
	svc.watchers[id] = ch
	ch <- svc.current
	svc.mu.Unlock()

	return &Watcher{
		C: ch,
		cancel: func() {
			svc.mu.Lock()
			delete(svc.watchers, id)
			svc.mu.Unlock()
		},
	}
}

// broadcast must be called with svc.mu held. Slow watchers drop transitions
// rather than blocking the service.
func (svc *Service) broadcast(sess *Session) {
	for _, ch := range svc.watchers {
		select {
		case ch <- sess:
		default:
		}
	}
}

// Watcher is a cancellable stream of session transitions; nil means signed
// out.
type Watcher struct {
	C <-chan *Session

	cancel func()
	once   sync.Once
}

// Cancel is idempotent and must always be invoked on teardown.
func (w *Watcher) Cancel() {
	w.once.Do(w.cancel)
}

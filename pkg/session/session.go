// Package session holds the client-side authentication state: the opaque
// session token, the authenticated-user descriptor, and the loading/error
// flags around login.
//
// State machine:
//
//	Anonymous → (login pending) → AuthPending → (success) → Authenticated
//	AuthPending → (failure) → Anonymous (error set)
//	Authenticated → (logout / 401) → Anonymous
//
// A copy of the token is persisted through a TokenStore so it survives a
// process restart; on startup the store rehydrates and starts Authenticated
// optimistically. A stale token is not re-validated up front — the first
// failing API call surfaces 401, which clears the session via the gateway's
// OnUnauthorized hook.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/ordersync/ordersync/pkg/api"
	"github.com/ordersync/ordersync/pkg/logger"
	"github.com/ordersync/ordersync/pkg/validate"
)

// State is the session lifecycle state.
type State int

const (
	Anonymous State = iota
	AuthPending
	Authenticated
)

func (s State) String() string {
	switch s {
	case AuthPending:
		return "auth-pending"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// User is the opaque authenticated-user descriptor returned by the backend.
// The client never depends on its shape beyond display.
type User map[string]interface{}

// Credentials is the login input.
type Credentials struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterInput is the registration input.
type RegisterInput struct {
	Name     string `json:"name"     validate:"required,min=2"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// authResponse is the backend's shape for both login and register.
type authResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Store is the session state container. All methods are safe for concurrent
// use.
type Store struct {
	mu     sync.Mutex
	client *api.Client
	tokens TokenStore

	state  State
	token  string
	user   User
	errMsg string
}

// New builds a Store wired to the gateway: the store becomes the client's
// token source, and a 401 on any call clears the session. When the token
// store already holds a token the session starts Authenticated; the user
// descriptor stays empty until the next successful login.
func New(client *api.Client, tokens TokenStore) *Store {
	s := &Store{client: client, tokens: tokens}

	if tokens != nil {
		if t, err := tokens.Load(); err == nil && t != "" {
			s.token = t
			s.state = Authenticated
		}
	}

	client.SetTokenSource(s)
	client.OnUnauthorized(s.Clear)
	return s
}

// Token implements api.TokenSource.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// IsAuthenticated reports whether a token is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the authenticated-user descriptor, which may be nil even when
// authenticated (token rehydrated from disk, profile not refetched yet).
func (s *Store) User() User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Err returns the last login failure message, empty when none.
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Login sends credentials to the auth endpoint. On success the token is
// persisted and the session becomes Authenticated with the returned user
// descriptor. On failure the error message is overwritten (not accumulated)
// and token/user stay unset.
func (s *Store) Login(ctx context.Context, creds Credentials) error {
	if errs := validate.Struct(creds); validate.HasErrors(errs) {
		return fmt.Errorf("session: invalid credentials: %v", errs)
	}

	s.mu.Lock()
	s.state = AuthPending
	s.errMsg = ""
	s.mu.Unlock()

	resp, err := s.client.Post("/auth/login").Body(creds).WithContext(ctx).Send()
	if err != nil {
		s.fail(err)
		return err
	}

	var out authResponse
	if err := resp.JSON(&out); err != nil {
		s.fail(err)
		return err
	}
	return s.establish(out)
}

// Register creates an account. The backend responds with the same
// token/user shape as login, so a successful registration authenticates.
func (s *Store) Register(ctx context.Context, input RegisterInput) error {
	if errs := validate.Struct(input); validate.HasErrors(errs) {
		return fmt.Errorf("session: invalid registration: %v", errs)
	}

	s.mu.Lock()
	s.state = AuthPending
	s.errMsg = ""
	s.mu.Unlock()

	resp, err := s.client.Post("/auth/register").Body(input).WithContext(ctx).Send()
	if err != nil {
		s.fail(err)
		return err
	}

	var out authResponse
	if err := resp.JSON(&out); err != nil {
		s.fail(err)
		return err
	}
	return s.establish(out)
}

func (s *Store) establish(out authResponse) error {
	if out.Token == "" {
		err := fmt.Errorf("session: backend returned no token")
		s.fail(err)
		return err
	}

	if s.tokens != nil {
		if err := s.tokens.Save(out.Token); err != nil {
			// The in-memory session still works; only restarts lose it.
			logger.Warn("session: persist token", "error", err)
		}
	}

	s.mu.Lock()
	s.token = out.Token
	s.user = out.User
	s.state = Authenticated
	s.errMsg = ""
	s.mu.Unlock()
	return nil
}

func (s *Store) fail(err error) {
	s.mu.Lock()
	s.state = Anonymous
	s.errMsg = api.MessageOf(err)
	s.mu.Unlock()
}

// Logout clears the persisted and in-memory session. Pure local transition,
// no network call.
func (s *Store) Logout() {
	s.Clear()
}

// Clear discards the session: token removed from durable storage, in-memory
// token/user dropped, state back to Anonymous. Also fired by the gateway on
// any 401.
func (s *Store) Clear() {
	if s.tokens != nil {
		if err := s.tokens.Clear(); err != nil {
			logger.Warn("session: clear persisted token", "error", err)
		}
	}

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.state = Anonymous
	s.mu.Unlock()
}

// ClearError dismisses the last login error without any other transition.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
}

package entities

import (
	"fmt"
	"time"
)

// SessionState is the authentication state of a client session
type SessionState string

const (
	SessionAnonymous      SessionState = "anonymous"
	SessionAuthenticating SessionState = "authenticating"
	SessionAuthenticated  SessionState = "authenticated"
	SessionFailed         SessionState = "failed"
)

// InvalidTransitionError is returned when a session is moved along an edge
// that does not exist.
type InvalidTransitionError struct {
	From SessionState
	To   SessionState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid session transition %s -> %s", e.From, e.To)
}

// Session is an immutable snapshot of a client's authentication state.
// Transitions return a new value and leave the receiver untouched:
//
//	anonymous -> authenticating -> authenticated | failed
//	failed    -> authenticating
//	any       -> anonymous (sign out)
type Session struct {
	State     SessionState `json:"state"`
	User      *User        `json:"user,omitempty"`
	Token     string       `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	Err       error        `json:"-"`
	Error     string       `json:"error,omitempty"`
}

// NewSession returns an anonymous session
func NewSession() Session {
	return Session{State: SessionAnonymous}
}

// Begin moves an anonymous or failed session to authenticating
func (s Session) Begin() (Session, error) {
	if s.State != SessionAnonymous && s.State != SessionFailed {
		return s, &InvalidTransitionError{From: s.State, To: SessionAuthenticating}
	}
	return Session{State: SessionAuthenticating}, nil
}

// Succeed completes authentication
func (s Session) Succeed(user *User, token string, expiresAt time.Time) (Session, error) {
	if s.State != SessionAuthenticating {
		return s, &InvalidTransitionError{From: s.State, To: SessionAuthenticated}
	}
	return Session{
		State:     SessionAuthenticated,
		User:      user,
		Token:     token,
		ExpiresAt: &expiresAt,
	}, nil
}

// Fail records a failed authentication attempt
func (s Session) Fail(err error) (Session, error) {
	if s.State != SessionAuthenticating {
		return s, &InvalidTransitionError{From: s.State, To: SessionFailed}
	}
	out := Session{State: SessionFailed, Err: err}
	if err != nil {
		out.Error = err.Error()
	}
	return out, nil
}

// SignOut returns to anonymous from any state
func (s Session) SignOut() Session {
	return NewSession()
}

// IsAuthenticated reports whether the session carries a signed in user
func (s Session) IsAuthenticated() bool {
	return s.State == SessionAuthenticated && s.User != nil
}

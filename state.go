package shopauth

import "github.com/storefront-go/shopauth/session"

// AuthStatus is the coarse authentication status the UI binds to.
type AuthStatus int

const (
	StatusUninitialized AuthStatus = iota
	StatusLoading
	StatusAuthenticated
	StatusUnauthenticated
)

func (s AuthStatus) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// AuthState is the tagged authentication state. User is set only when Status
// is StatusAuthenticated; Err carries the reason for an unauthenticated
// state, when one exists.
type AuthState struct {
	Status AuthStatus
	User   *session.User
	Err    error
}

type stateEventKind int

const (
	stateEventStart stateEventKind = iota
	stateEventSignedIn
	stateEventSignInFailed
	stateEventRestored
	stateEventCleared
	stateEventSignedOut
)

// StateEvent drives [Transition]. Construct with the StateEvent* functions.
type StateEvent struct {
	kind stateEventKind
	user *session.User
	err  error
}

// StateEventStart marks the beginning of a login, register, or restore.
func StateEventStart() StateEvent { return StateEvent{kind: stateEventStart} }

// StateEventSignedIn marks a successful login or register.
func StateEventSignedIn(user *session.User) StateEvent {
	return StateEvent{kind: stateEventSignedIn, user: user}
}

// StateEventSignInFailed marks a rejected login or register.
func StateEventSignInFailed(err error) StateEvent {
	return StateEvent{kind: stateEventSignInFailed, err: err}
}

// StateEventRestored marks a session restored from storage at startup.
func StateEventRestored(user *session.User) StateEvent {
	return StateEvent{kind: stateEventRestored, user: user}
}

// StateEventCleared marks an irrecoverable auth failure that cleared the
// session.
func StateEventCleared(err error) StateEvent {
	return StateEvent{kind: stateEventCleared, err: err}
}

// StateEventSignedOut marks an explicit logout.
func StateEventSignedOut() StateEvent { return StateEvent{kind: stateEventSignedOut} }

// Transition is the pure state function. Event/state pairs that make no
// sense (for example a sign-in result while not loading) leave the state
// unchanged rather than guessing.
func Transition(state AuthState, event StateEvent) AuthState {
	switch event.kind {
	case stateEventStart:
		if state.Status == StatusLoading {
			return state
		}
		return AuthState{Status: StatusLoading}

	case stateEventSignedIn, stateEventRestored:
		if state.Status != StatusLoading {
			return state
		}
		return AuthState{Status: StatusAuthenticated, User: event.user}

	case stateEventSignInFailed:
		if state.Status != StatusLoading {
			return state
		}
		return AuthState{Status: StatusUnauthenticated, Err: event.err}

	case stateEventCleared:
		return AuthState{Status: StatusUnauthenticated, Err: event.err}

	case stateEventSignedOut:
		return AuthState{Status: StatusUnauthenticated}

	default:
		return state
	}
}

package session

import "github.com/daticahealth/datisession/auth"

// Status is the authentication state of a session.
type Status int

const (
	// StatusChecking means the stored token has not been verified yet.
	StatusChecking Status = iota
	// StatusAuthenticated means a valid user and token are held.
	StatusAuthenticated
	// StatusNotAuthenticated means there is no valid session.
	StatusNotAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusChecking:
		return "checking"
	case StatusAuthenticated:
		return "authenticated"
	case StatusNotAuthenticated:
		return "not-authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time copy of the session state. User is non-nil if
// and only if Status is StatusAuthenticated, and belongs to the caller.
type Snapshot struct {
	Status Status
	User   *auth.User
}

// Authenticated reports whether the snapshot holds a signed-in user.
func (s Snapshot) Authenticated() bool {
	return s.Status == StatusAuthenticated
}

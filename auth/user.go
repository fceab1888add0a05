package auth

import (
	"encoding/json"
	"errors"
)

// ErrMalformedSession is returned when a successful response is missing its user or token.
var ErrMalformedSession = errors.New("auth response is missing user or token")

// User represents an auth API user.
type User struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	IsActive bool     `json:"isActive"`
	Roles    []string `json:"roles,omitempty"`
}

// UnmarshalJSON accepts the identifier under either "id" or "_id".
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var raw struct {
		plain
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = User(raw.plain)
	if u.ID == "" {
		u.ID = raw.MongoID
	}
	return nil
}

// Clone returns a deep copy of the user, or nil for a nil user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Roles != nil {
		c.Roles = append([]string(nil), u.Roles...)
	}
	return &c
}

// Session is the {user, token} pair returned by login, register and token checks.
type Session struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

func (s *Session) validate() error {
	if s.User == nil || s.Token == "" {
		return ErrMalformedSession
	}
	return nil
}

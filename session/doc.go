// Package session owns the client side of an authenticated session: who is
// signed in, with which bearer token, and whether that is known yet.
//
// A Manager is the single writer of the current user, the session status and
// the stored token. The three change together in one commit, so a reader
// never sees a user without a token or an authenticated status without a
// user. Construct one Manager per process and pass it to whoever needs it.
package session

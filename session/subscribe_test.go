package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daticahealth/datisession/auth"
	"github.com/daticahealth/datisession/tokenstore"
)

func TestSubscribe_ReceivesCurrentThenChanges(t *testing.T) {
	tr := &stubTransport{login: func(string, string) (*auth.Session, error) {
		return newSession("1", "a@b.com", "T1"), nil
	}}
	m := New(tr, tokenstore.NewMemory())

	ch, cancel := m.Subscribe()
	defer cancel()

	first := <-ch
	assert.Equal(t, StatusChecking, first.Status)
	assert.Nil(t, first.User)

	_, err := m.Login(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)

	next := <-ch
	assert.True(t, next.Authenticated())
	require.NotNil(t, next.User)
	assert.Equal(t, "1", next.User.ID)
}

func TestSubscribe_SlowReaderGetsLatest(t *testing.T) {
	tr := &stubTransport{login: func(string, string) (*auth.Session, error) {
		return newSession("1", "a@b.com", "T1"), nil
	}}
	m := New(tr, tokenstore.NewMemory())

	ch, cancel := m.Subscribe()
	defer cancel()

	_, err := m.Login(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	require.NoError(t, m.Logout(context.Background()))

	snap := <-ch
	assert.Equal(t, StatusNotAuthenticated, snap.Status)
	select {
	case extra := <-ch:
		t.Fatalf("unexpected extra snapshot %v", extra.Status)
	default:
	}
}

func TestSubscribe_CancelClosesAndIsIdempotent(t *testing.T) {
	m := New(&stubTransport{}, tokenstore.NewMemory())

	ch, cancel := m.Subscribe()
	<-ch
	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	// Publishing after cancel must not panic on the closed channel.
	require.NoError(t, m.Logout(context.Background()))
}

func TestSubscribe_SnapshotsAreIndependentCopies(t *testing.T) {
	tr := &stubTransport{login: func(string, string) (*auth.Session, error) {
		return newSession("1", "a@b.com", "T1"), nil
	}}
	m := New(tr, tokenstore.NewMemory())
	_, err := m.Login(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)

	a, cancelA := m.Subscribe()
	defer cancelA()
	b, cancelB := m.Subscribe()
	defer cancelB()

	sa, sb := <-a, <-b
	sa.User.Name = "changed"
	assert.Empty(t, sb.User.Name)
	assert.Empty(t, m.CurrentUser().Name)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "checking", StatusChecking.String())
	assert.Equal(t, "authenticated", StatusAuthenticated.String())
	assert.Equal(t, "not-authenticated", StatusNotAuthenticated.String())
	assert.Equal(t, "unknown", Status(42).String())
}

func TestMessage(t *testing.T) {
	assert.Empty(t, Message(nil))
	assert.Equal(t, "Invalid credentials", Message(invalidCredentials()))
}

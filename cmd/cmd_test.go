package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI accepts a@b.com / secret, registers anyone, and honours token T1.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	ok := map[string]any{
		"user":  map[string]any{"_id": "1", "name": "Ann", "email": "a@b.com"},
		"token": "T1",
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch r.URL.Path {
		case "/auth/login":
			if body["email"] != "a@b.com" || body["password"] != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"statusCode":401,"message":"Invalid credentials"}`))
				return
			}
		case "/auth/register":
			if body["email"] == "taken@b.com" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"statusCode":400,"message":"taken@b.com already exists"}`))
				return
			}
			w.WriteHeader(http.StatusCreated)
		case "/auth/check-token":
			if r.Header.Get("Authorization") != "Bearer T1" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"statusCode":401,"message":"Unauthorized"}`))
				return
			}
		default:
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(ok)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type harness struct {
	url       string
	tokenPath string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_STATE_HOME", dir)
	return &harness{url: fakeAPI(t).URL, tokenPath: filepath.Join(dir, "token")}
}

func (h *harness) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{
		"--base-url", h.url,
		"--token-store", "file",
		"--token-path", h.tokenPath,
	}, args...))
	err := root.Execute()
	return out.String(), err
}

func (h *harness) token(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile(h.tokenPath)
	if os.IsNotExist(err) {
		return ""
	}
	require.NoError(t, err)
	return strings.TrimSpace(string(b))
}

// stubPassword makes successive password prompts return passwords in order.
func stubPassword(t *testing.T, passwords ...string) {
	t.Helper()
	orig := readPassword
	readPassword = func() ([]byte, error) {
		p := passwords[0]
		passwords = passwords[1:]
		return []byte(p), nil
	}
	t.Cleanup(func() { readPassword = orig })
}

func TestLogin_PersistsToken(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "secret\n", "login", "--email", "a@b.com", "--password-stdin")
	require.NoError(t, err)

	assert.Contains(t, out, "Signed in.")
	assert.Contains(t, out, "Email: a@b.com")
	assert.Equal(t, "T1", h.token(t))
}

func TestLogin_Interactive(t *testing.T) {
	h := newHarness(t)
	stubPassword(t, "secret")

	out, err := h.run(t, "a@b.com\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Email: ")
	assert.Equal(t, "T1", h.token(t))
}

func TestLogin_InteractiveRetriesRejectedPassword(t *testing.T) {
	h := newHarness(t)
	stubPassword(t, "wrong", "secret")

	out, err := h.run(t, "a@b.com\na@b.com\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Invalid credentials")
	assert.Equal(t, "T1", h.token(t))
}

func TestLogin_RejectedShowsServerMessage(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "wrong\n", "login", "--email", "a@b.com", "--password-stdin")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", err.Error())
	assert.Empty(t, h.token(t))
}

func TestLogin_ReuseSession(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.WriteFile(h.tokenPath, []byte("T1\n"), 0o600))

	out, err := h.run(t, "", "login", "--reuse-session")
	require.NoError(t, err)
	assert.Contains(t, out, "ID:    1")
	assert.NotContains(t, out, "Signed in.")
}

func TestRegister_ValidatesForm(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "x\n", "register", "--name", "Al", "--email", "Not-An-Email", "--password-stdin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name must be at least 4 characters")
	assert.Contains(t, err.Error(), "email must be a valid lowercase address")
	assert.Contains(t, err.Error(), "password must be at least 6 characters")
	assert.Empty(t, h.token(t))
}

func TestRegister_Success(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "pw123456\n", "register", "--name", "Ann", "--email", "ann@x.com", "--password-stdin")
	require.Error(t, err, "name shorter than 4 characters is rejected")

	out, err := h.run(t, "pw123456\n", "register", "--name", "Annie", "--email", "ann@x.com", "--password-stdin")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered successfully.")
	assert.Equal(t, "T1", h.token(t))
}

func TestRegister_ServerMessage(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "pw123456\n", "register", "--name", "Annie", "--email", "taken@b.com", "--password-stdin")
	require.Error(t, err)
	assert.Equal(t, "taken@b.com already exists", err.Error())
}

func TestWhoami(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "", "whoami")
	assert.ErrorIs(t, err, errNotSignedIn)

	require.NoError(t, os.WriteFile(h.tokenPath, []byte("T1\n"), 0o600))
	out, err := h.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Name:  Ann")
}

func TestStatus(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "", "status")
	require.NoError(t, err)
	assert.Equal(t, "not-authenticated\n", out)

	require.NoError(t, os.WriteFile(h.tokenPath, []byte("EXPIRED\n"), 0o600))
	out, err = h.run(t, "", "status")
	require.NoError(t, err)
	assert.Equal(t, "not-authenticated\n", out)
	assert.Equal(t, "EXPIRED", h.token(t), "rejected token is kept by default")

	out, err = h.run(t, "", "--evict-stale-token", "status")
	require.NoError(t, err)
	assert.Equal(t, "not-authenticated\n", out)
	assert.Empty(t, h.token(t))

	require.NoError(t, os.WriteFile(h.tokenPath, []byte("T1\n"), 0o600))
	out, err = h.run(t, "", "status")
	require.NoError(t, err)
	assert.Equal(t, "authenticated\n", out)
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.WriteFile(h.tokenPath, []byte("T1\n"), 0o600))

	out, err := h.run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out.")
	assert.Empty(t, h.token(t))

	_, err = h.run(t, "", "logout")
	require.NoError(t, err)
}

func TestValidateRegistration(t *testing.T) {
	assert.NoError(t, validateRegistration("Annie", "ann@x.com", "pw123456"))
	assert.Error(t, validateRegistration("Annie", "ann@x", "pw123456"))
	assert.Error(t, validateRegistration("Annie", "ann@x.com", "short"))
}

package tokenstore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Atrox/homedir"
	"github.com/samber/oops"
)

const appName = "datisession"

// DefaultFilePath returns $XDG_STATE_HOME/datisession/token, falling back to
// ~/.local/state when XDG_STATE_HOME is unset.
func DefaultFilePath() (string, error) {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := homedir.Dir()
		if err != nil {
			return "", oops.Code("TOKENSTORE_HOME").Wrap(err)
		}
		base = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(base, appName, "token"), nil
}

// File keeps the token in a single file readable only by the owner.
type File struct {
	path string
}

// NewFile returns a File store at path. A leading ~ is expanded; an empty
// path selects DefaultFilePath.
func NewFile(path string) (*File, error) {
	if path == "" {
		p, err := DefaultFilePath()
		if err != nil {
			return nil, err
		}
		return &File{path: p}, nil
	}
	exp, err := homedir.Expand(path)
	if err != nil {
		return nil, oops.Code("TOKENSTORE_PATH").With("path", path).Wrap(err)
	}
	return &File{path: exp}, nil
}

// Path returns the file the token is written to.
func (f *File) Path() string {
	return f.path
}

// Get returns the stored token. A missing or blank file means no token.
func (f *File) Get(_ context.Context) (string, bool, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, oops.Code("TOKENSTORE_READ").With("path", f.path).Wrap(err)
	}
	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", false, nil
	}
	return token, true, nil
}

// Set replaces the stored token atomically.
func (f *File) Set(_ context.Context, token string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return oops.Code("TOKENSTORE_WRITE").With("path", f.path).Wrap(err)
	}
	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return oops.Code("TOKENSTORE_WRITE").With("path", f.path).Wrap(err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return oops.Code("TOKENSTORE_WRITE").With("path", f.path).Wrap(err)
	}
	if _, err := tmp.WriteString(token + "\n"); err != nil {
		tmp.Close()
		return oops.Code("TOKENSTORE_WRITE").With("path", f.path).Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		return oops.Code("TOKENSTORE_WRITE").With("path", f.path).Wrap(err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return oops.Code("TOKENSTORE_WRITE").With("path", f.path).Wrap(err)
	}
	return nil
}

// Remove deletes the token file. Removing a missing file is not an error.
func (f *File) Remove(_ context.Context) error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return oops.Code("TOKENSTORE_REMOVE").With("path", f.path).Wrap(err)
	}
	return nil
}

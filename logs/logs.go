package logs

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Console prints user-facing messages. Verbose messages are only printed when
// verbosity is enabled.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	err     io.Writer
	verbose bool
}

// NewConsole returns a Console writing to out and err. Nil writers default to stdout and stderr.
func NewConsole(out, err io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	if err == nil {
		err = os.Stderr
	}
	return &Console{out: out, err: err}
}

// ConfigureVerbosity configures how verbose printing should be.
func (c *Console) ConfigureVerbosity(v bool) {
	c.mu.Lock()
	c.verbose = v
	c.mu.Unlock()
}

// Print writes a message to out, with optional format args.
func (c *Console) Print(message string, fmtArgs ...interface{}) {
	c.write(c.out, message, fmtArgs)
}

// Printv writes a message to out, with optional format args, if verbosity is enabled.
func (c *Console) Printv(message string, fmtArgs ...interface{}) {
	c.mu.Lock()
	v := c.verbose
	c.mu.Unlock()
	if v {
		c.write(c.out, "[verbose] "+message, fmtArgs)
	}
}

// Error writes a message to err, with optional format args.
func (c *Console) Error(message string, fmtArgs ...interface{}) {
	c.write(c.err, message, fmtArgs)
}

func (c *Console) write(w io.Writer, message string, fmtArgs []interface{}) {
	s := message + "\n"
	if len(fmtArgs) > 0 {
		s = fmt.Sprintf(s, fmtArgs...)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	w.Write([]byte(s))
}

package player

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"golang.org/x/term"
)

var errNotTerminal = errors.New("player: stdin is not a terminal")

// terminal reads single key presses from stdin in raw mode.
type terminal struct {
	fd      int
	old     *term.State
	in      io.Reader
	out     io.Writer
	quit    chan struct{}
	stopped atomic.Bool
}

func startTerminal(keys *Keys) (*terminal, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errNotTerminal
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("player: raw mode: %w", err)
	}

	t := &terminal{fd: fd, old: old, in: os.Stdin, out: os.Stderr, quit: make(chan struct{})}
	fmt.Fprintf(t.out, "%s\r\n%s", keys.Help(), keys.Status())

	go t.readKeys(keys)

	return t, nil
}

// readKeys applies key presses until quit, a read error or stop. The read
// blocks, so after stop the loop ends on the next key without applying it.
func (t *terminal) readKeys(keys *Keys) {
	buf := make([]byte, 1)
	for {
		if _, err := t.in.Read(buf); err != nil || t.stopped.Load() {
			return
		}
		action, status := keys.Handle(buf[0])
		switch action {
		case ActionQuit:
			close(t.quit)
			return
		case ActionChanged:
			fmt.Fprintf(t.out, "\r\033[K%s", status)
		}
	}
}

func (t *terminal) stop() {
	t.stopped.Store(true)
	_ = term.Restore(t.fd, t.old)
	fmt.Fprint(t.out, "\r\n")
}

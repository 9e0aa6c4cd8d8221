// Package input turns key presses into game events.
package input

import (
	"bufio"
	"context"
	"io"
	"os"

	"golang.org/x/term"
)

// Event is a decoded key press.
type Event int

const (
	Press        Event = iota + 1 // start button / restart click
	ManualDetect                  // debug re-detection
	Quit
)

// Decode maps a key to an event.
func Decode(b byte) (Event, bool) {
	switch b {
	case '\r', '\n', ' ':
		return Press, true
	case 't', 'T':
		return ManualDetect, true
	case 'q', 'Q', 0x03: // 0x03 is Ctrl-C in raw mode
		return Quit, true
	default:
		return 0, false
	}
}

// Read decodes keys from r into events until r ends or ctx is done.
// The channel is closed on return.
func Read(ctx context.Context, r io.Reader, events chan<- Event) error {
	defer close(events)
	br := bufio.NewReader(r)
	for {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		ev, ok := Decode(b)
		if !ok {
			continue
		}
		select {
		case events <- ev:
		case <-ctx.Done():
			return nil
		}
	}
}

// StdinIsTerminal reports whether stdin is an interactive terminal.
func StdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// RawStdin puts stdin into raw mode when it is a terminal so single key
// presses arrive without Enter. The returned func restores the terminal.
func RawStdin() (restore func(), err error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return func() {}, nil
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return func() { term.Restore(fd, old) }, nil
}

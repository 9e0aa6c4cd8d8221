// Package render draws game plans. It reads plans and never changes game state.
package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andresmejia3/facepill/internal/game"
	"github.com/schollz/progressbar/v3"
)

// Renderer draws one tick.
type Renderer interface {
	Draw(p game.Plan, c game.Celebration) error
}

// Terminal renders to a text stream. Static screens are printed once when
// they change; the drinking phase is a live progress bar.
type Terminal struct {
	out  io.Writer
	bar  *progressbar.ProgressBar
	last string
}

// NewTerminal returns a renderer writing to out.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

func (t *Terminal) Draw(p game.Plan, c game.Celebration) error {
	if p.Phase == game.PhaseDrinking {
		return t.drawDrinking(p)
	}
	if t.bar != nil {
		t.bar.Finish()
		t.bar = nil
		fmt.Fprintln(t.out)
	}

	screen := Screen(p, c)
	if screen == t.last {
		return nil
	}
	t.last = screen
	_, err := fmt.Fprintln(t.out, screen)
	return err
}

func (t *Terminal) drawDrinking(p game.Plan) error {
	if t.bar == nil || p.Entered {
		t.last = ""
		fmt.Fprintf(t.out, "\n💊 %s\n%s\n", p.Label, p.Prompt)
		t.bar = progressbar.NewOptions(int(game.DrinkingDuration.Milliseconds()),
			progressbar.OptionSetWriter(t.out),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionSetElapsedTime(false),
			progressbar.OptionSetRenderBlankState(true),
		)
	}
	t.bar.Describe(fmt.Sprintf("%d s left", p.RemainingSeconds))
	return t.bar.Set(int(p.Progress * float64(game.DrinkingDuration.Milliseconds())))
}

// Screen is the text for a non-drinking plan.
func Screen(p game.Plan, c game.Celebration) string {
	var b strings.Builder
	switch p.Phase {
	case game.PhaseStart:
		fmt.Fprintf(&b, "=== %s ===\n%s\n\n%s", p.Label, p.Flavor, p.Prompt)
	case game.PhaseCountdown:
		if p.CountdownDigit > 0 {
			fmt.Fprintf(&b, "\n   %d   %s", p.CountdownDigit, p.Prompt)
		} else {
			fmt.Fprintf(&b, "\n  %s  %s", p.Label, p.Prompt)
		}
	case game.PhaseResult:
		icon := "😢"
		if p.Result == game.ResultWin {
			icon = "🎉"
		}
		fmt.Fprintf(&b, "\n%s %s %s\n%s", icon, p.Label, icon, p.Flavor)
		if n := c.Count(game.Balloon); n > 0 {
			fmt.Fprintf(&b, "\n%s", strings.Repeat("🎈", n))
		}
		fmt.Fprintf(&b, "\n\n%s", p.Prompt)
	}
	return b.String()
}

// crlf rewrites "\n" as "\r\n" for a terminal in raw mode.
type crlf struct {
	w io.Writer
}

// RawWriter wraps w for use while the terminal is in raw mode.
func RawWriter(w io.Writer) io.Writer {
	return crlf{w: w}
}

func (c crlf) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

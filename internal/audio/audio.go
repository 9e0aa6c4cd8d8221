// Package audio plays the one-shot result cues.
package audio

import (
	"context"
	"fmt"
	"strconv"

	"github.com/andresmejia3/facepill/internal/utils"
	"github.com/sirupsen/logrus"
)

// Player plays a named cue without blocking the caller.
type Player interface {
	Play(ctx context.Context, cue string) error
}

// CommandPlayer shells out to an external player (ffplay by default) for
// each cue. Playback runs in the background; Play only reports start errors.
type CommandPlayer struct {
	Command string
	Volume  float64 // 0..1
	Files   map[string]string
	log     *logrus.Logger
}

// NewCommandPlayer returns a player for the given cue -> file mapping.
func NewCommandPlayer(command string, volume float64, files map[string]string, log *logrus.Logger) *CommandPlayer {
	if command == "" {
		command = "ffplay"
	}
	return &CommandPlayer{Command: command, Volume: volume, Files: files, log: log}
}

// Args returns the player arguments for a file.
func (p *CommandPlayer) Args(file string) []string {
	vol := int(p.Volume*100 + 0.5)
	return []string{"-nodisp", "-autoexit", "-loglevel", "error", "-volume", strconv.Itoa(vol), file}
}

// Play starts playback of cue.
func (p *CommandPlayer) Play(ctx context.Context, cue string) error {
	file, ok := p.Files[cue]
	if !ok || file == "" {
		return fmt.Errorf("no sound configured for cue %q", cue)
	}

	cmd := utils.NewSafeCommandContext(ctx, p.Command, p.Args(file)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", p.Command, err)
	}

	go func() {
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			p.log.WithFields(logrus.Fields{"cue": cue, "stderr": cmd.Stderr.String()}).Warnf("audio player exited: %v", err)
		}
	}()
	return nil
}

// Silent is a Player that does nothing.
type Silent struct{}

func (Silent) Play(context.Context, string) error { return nil }

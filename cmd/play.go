package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/andresmejia3/facepill/internal/audio"
	"github.com/andresmejia3/facepill/internal/config"
	"github.com/andresmejia3/facepill/internal/detect"
	"github.com/andresmejia3/facepill/internal/input"
	"github.com/andresmejia3/facepill/internal/render"
	"github.com/andresmejia3/facepill/internal/runner"
	"github.com/andresmejia3/facepill/internal/utils"
	"github.com/andresmejia3/facepill/internal/video"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var playCmd = &cobra.Command{
	Use:         "play",
	Short:       "Play with the webcam: swallow the pill, then pull a face",
	Annotations: map[string]string{dbAnnotation: dbOptional},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runPlay(cmd.Context(), cfg)
	},
}

func init() {
	addDetectorFlags(playCmd)
	playCmd.Flags().StringVar(&cfg.VideoFormat, "video-format", cfg.VideoFormat, "ffmpeg input format (v4l2, avfoundation, dshow; empty for a file)")
	playCmd.Flags().StringVarP(&cfg.VideoDevice, "device", "i", cfg.VideoDevice, "Webcam device or video file")
	playCmd.Flags().IntVar(&cfg.Width, "width", cfg.Width, "Capture width")
	playCmd.Flags().IntVar(&cfg.Height, "height", cfg.Height, "Capture height")
	playCmd.Flags().IntVar(&cfg.FPS, "fps", cfg.FPS, "Capture frame rate (0 keeps the device default)")
	playCmd.Flags().IntVar(&cfg.TickRate, "tick-rate", cfg.TickRate, "Game ticks per second")
	playCmd.Flags().StringVar(&cfg.AudioCommand, "audio-cmd", cfg.AudioCommand, "Audio player command")
	playCmd.Flags().StringVar(&cfg.WinSound, "win-sound", cfg.WinSound, "Sound played on a win")
	playCmd.Flags().StringVar(&cfg.LoseSound, "lose-sound", cfg.LoseSound, "Sound played on a loss")
	playCmd.Flags().Float64Var(&cfg.Volume, "volume", cfg.Volume, "Cue volume between 0 and 1")
	playCmd.Flags().BoolVar(&cfg.Mute, "mute", cfg.Mute, "Disable sound cues")
	rootCmd.AddCommand(playCmd)
}

func runPlay(ctx context.Context, opts config.Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	det, err := newDetector(ctx, opts, Log)
	if err != nil {
		utils.ShowError("Failed to start landmark detector", err, nil)
		return err
	}
	defer det.Close()

	capture := video.New(utils.CaptureArgs{
		Format: opts.VideoFormat,
		Device: opts.VideoDevice,
		Width:  opts.Width,
		Height: opts.Height,
		FPS:    opts.FPS,
	}, Log)
	holder := &detect.Holder{}
	loop := detect.NewLoop(detect.DefaultConfig(), capture, det, holder, Log)

	var player audio.Player = audio.Silent{}
	if !opts.Mute {
		player = audio.NewCommandPlayer(opts.AudioCommand, opts.Volume, map[string]string{
			"win":  opts.WinSound,
			"lose": opts.LoseSound,
		}, Log)
	}

	var out io.Writer = os.Stdout
	if input.StdinIsTerminal() {
		restore, err := input.RawStdin()
		if err != nil {
			return fmt.Errorf("failed to set raw terminal mode: %w", err)
		}
		defer restore()
		out = render.RawWriter(os.Stdout)
	}

	deps := runner.Deps{
		Holder:   holder,
		Player:   player,
		Renderer: render.NewTerminal(out),
		Manual:   loop.Manual,
		Log:      Log,
	}
	if DB != nil {
		deps.Recorder = DB
	}
	r := runner.New(runner.Config{
		TickRate: opts.TickRate,
		Width:    float64(opts.Width),
		Height:   float64(opts.Height),
	}, deps)

	events := make(chan input.Event, 16)
	// Reading stdin cannot be interrupted, so the reader is left to die with the process.
	go func() {
		if err := input.Read(ctx, os.Stdin, events); err != nil {
			Log.Warnf("keyboard input stopped: %v", err)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return capture.Run(gctx) })
	g.Go(func() error { return loop.Run(gctx) })
	g.Go(func() error {
		// Quit ends the whole session.
		defer cancel()
		return r.Run(gctx, events)
	})

	if err := g.Wait(); err != nil {
		showDetectorError("Session stopped", err, det)
		return err
	}
	fmt.Fprintf(os.Stderr, "\n👋 Session %s over.\n", r.SessionID)
	return nil
}

package detect

import (
	"context"
	"time"

	"github.com/andresmejia3/facepill/internal/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Options tunes a single inference call.
type Options struct {
	InputSize      int
	ScoreThreshold float64
}

// Detector runs landmark inference on one JPEG frame.
type Detector interface {
	Detect(ctx context.Context, frame []byte, opts Options) ([]types.Face, error)
}

// FrameSource is the video side: a readiness flag and the most recent frame.
type FrameSource interface {
	Ready() bool
	Frame() (index int, data []byte)
}

// Config holds the loop cadence.
type Config struct {
	InitialDelay   time.Duration
	NotReadyRetry  time.Duration
	Interval       time.Duration
	Auto           Options
	Manual         Options
	ManualCooldown time.Duration
}

// DefaultConfig matches the cadence the game was tuned with.
func DefaultConfig() Config {
	return Config{
		InitialDelay:   time.Second,
		NotReadyRetry:  500 * time.Millisecond,
		Interval:       200 * time.Millisecond,
		Auto:           Options{InputSize: 416, ScoreThreshold: 0.3},
		Manual:         Options{InputSize: 416, ScoreThreshold: 0.7},
		ManualCooldown: 500 * time.Millisecond,
	}
}

// Loop is the self-rescheduling detection task. It owns the write side of
// the Holder and runs for the whole session regardless of game phase.
type Loop struct {
	cfg     Config
	src     FrameSource
	det     Detector
	holder  *Holder
	log     *logrus.Logger
	limiter *rate.Limiter
}

// NewLoop wires a detection loop.
func NewLoop(cfg Config, src FrameSource, det Detector, holder *Holder, log *logrus.Logger) *Loop {
	cooldown := rate.Every(cfg.ManualCooldown)
	if cfg.ManualCooldown <= 0 {
		cooldown = rate.Inf
	}
	return &Loop{
		cfg:     cfg,
		src:     src,
		det:     det,
		holder:  holder,
		log:     log,
		limiter: rate.NewLimiter(cooldown, 1),
	}
}

// Run blocks until ctx is done. Errors never stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	wait := l.cfg.InitialDelay
	for {
		if err := sleep(ctx, wait); err != nil {
			return nil
		}

		if !l.src.Ready() {
			l.log.Debug("video not ready, retrying")
			wait = l.cfg.NotReadyRetry
			continue
		}

		l.detectAndPublish(ctx)
		wait = l.cfg.Interval
	}
}

func (l *Loop) detectAndPublish(ctx context.Context) {
	idx, frame := l.src.Frame()
	faces, err := l.det.Detect(ctx, frame, l.cfg.Auto)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		l.log.WithField("frame", idx).Warnf("detection failed: %v", err)
		faces = nil
	}

	l.holder.Publish(&types.Snapshot{Faces: faces, Frame: idx})

	entry := l.log.WithFields(logrus.Fields{"frame": idx, "faces": len(faces)})
	if len(faces) > 0 {
		entry = entry.WithField("score", faces[0].Score)
	}
	entry.Debug("detection published")
}

// Manual runs one stricter detection on demand. It only replaces the snapshot
// when it finds a face. Calls arriving faster than the cooldown are dropped
// and Manual reports false.
func (l *Loop) Manual(ctx context.Context) bool {
	if !l.limiter.Allow() {
		return false
	}
	if !l.src.Ready() {
		l.log.Info("manual detection skipped: video not ready")
		return true
	}

	idx, frame := l.src.Frame()
	faces, err := l.det.Detect(ctx, frame, l.cfg.Manual)
	if err != nil {
		l.log.WithField("frame", idx).Errorf("manual detection failed: %v", err)
		return true
	}
	if len(faces) == 0 {
		l.log.WithField("frame", idx).Info("manual detection found no face")
		return true
	}

	l.holder.Publish(&types.Snapshot{Faces: faces, Frame: idx})
	l.log.WithFields(logrus.Fields{"frame": idx, "faces": len(faces), "score": faces[0].Score}).Info("manual detection published")
	return true
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

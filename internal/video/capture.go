// Package video turns an ffmpeg MJPEG pipe into a "latest frame" source.
package video

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/andresmejia3/facepill/internal/types"
	"github.com/andresmejia3/facepill/internal/utils"
	"github.com/sirupsen/logrus"
)

const megabyte = 1024 * 1024

// Capture keeps only the most recent frame. It is ready once the first
// complete frame has arrived.
type Capture struct {
	args   utils.CaptureArgs
	log    *logrus.Logger
	ready  atomic.Bool
	latest atomic.Pointer[types.FrameTask]
}

// New returns an idle capture for args.
func New(args utils.CaptureArgs, log *logrus.Logger) *Capture {
	return &Capture{args: args, log: log}
}

// Ready reports whether at least one frame has been decoded.
func (c *Capture) Ready() bool {
	return c.ready.Load()
}

// Frame returns the most recent frame and its sequence number.
func (c *Capture) Frame() (int, []byte) {
	f := c.latest.Load()
	if f == nil {
		return 0, nil
	}
	return f.Index, f.Data
}

// Run starts ffmpeg and consumes frames until ctx is cancelled or the stream ends.
func (c *Capture) Run(ctx context.Context) error {
	ffmpeg := utils.NewFFmpegCaptureCmd(ctx, c.args)

	out, err := ffmpeg.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create ffmpeg stdout pipe: %w", err)
	}
	if err := ffmpeg.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	c.log.WithField("device", c.args.Device).Info("video capture started")

	streamErr := c.Stream(ctx, out)
	waitErr := ffmpeg.Wait()

	if ctx.Err() != nil {
		return nil
	}
	if streamErr != nil {
		return streamErr
	}
	if waitErr != nil {
		return fmt.Errorf("ffmpeg exited: %w: %s", waitErr, bytes.TrimSpace(ffmpeg.Stderr.Bytes()))
	}
	return nil
}

// Stream reads concatenated JPEGs from r and publishes each one.
func (c *Capture) Stream(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, megabyte), 16*megabyte)
	scanner.Split(utils.SplitJpeg)

	n := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		n++
		// scanner reuses its buffer, so keep a private copy
		buf := make([]byte, len(scanner.Bytes()))
		copy(buf, scanner.Bytes())
		c.latest.Store(&types.FrameTask{Index: n, Data: buf})
		if n == 1 {
			c.ready.Store(true)
			c.log.Info("video stream ready")
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("frame scanner failed: %w", err)
	}
	return nil
}

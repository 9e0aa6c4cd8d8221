package utils

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// --- 1. Process Safety & Command Wrapping ---

// SafeCommand wraps a standard exec.Cmd with a buffer to catch Stderr (worker logs)
// This ensures we don't lose critical crash information if a subprocess dies.
type SafeCommand struct {
	*exec.Cmd
	Stderr *bytes.Buffer
}

// NewSafeCommandContext initializes a command and attaches a buffer to its Stderr pipe.
// It prepares the command for execution but does not start it; the process is killed when ctx is done.
func NewSafeCommandContext(ctx context.Context, name string, args ...string) *SafeCommand {
	return wrap(exec.CommandContext(ctx, name, args...))
}

func wrap(cmd *exec.Cmd) *SafeCommand {
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	return &SafeCommand{Cmd: cmd, Stderr: stderr}
}

// Die is the unified exit strategy for facepill.
// It prints a formatted error box and dumps subprocess logs if a SafeCommand is provided.
func Die(context string, err error, s *SafeCommand) {
	ShowError(context, err, s)
	os.Exit(1)
}

// ShowError prints the same box as Die without exiting.
func ShowError(context string, err error, s *SafeCommand) {
	fmt.Fprintf(os.Stderr, "\n---------------------------------------------------------\n")
	fmt.Fprintf(os.Stderr, "🚨 FACEPILL ERROR: %s\n", context)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DETAILS: %v\n", err)
	}

	if s != nil && s.Stderr.Len() > 0 {
		fmt.Fprintf(os.Stderr, "\nSUBPROCESS LOGS:\n%s\n", s.Stderr.String())
	}
	fmt.Fprintf(os.Stderr, "---------------------------------------------------------\n")
}

// --- 2. Video Engine ---

var (
	JpegSOI = []byte{0xFF, 0xD8} // Start of Image
	JpegEOI = []byte{0xFF, 0xD9} // End of Image
)

// SplitJpeg is the custom splitter for bufio.Scanner
// It locates the Start Of Image (FFD8) and End Of Image (FFD9) markers to extract full JPEG frames.
func SplitJpeg(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	start := bytes.Index(data, JpegSOI)
	if start == -1 {
		return 0, nil, nil
	}
	end := bytes.Index(data[start:], JpegEOI)
	if end == -1 {
		return 0, nil, nil
	}
	return start + end + 2, data[start : start+end+2], nil
}

// CaptureArgs describes an ffmpeg input.
type CaptureArgs struct {
	Format string // e.g. v4l2, avfoundation, dshow; empty for a file or URL
	Device string
	Width  int
	Height int
	FPS    int
}

// FFmpegCaptureArgs builds the argument list that turns the input into an MJPEG stream on stdout.
func FFmpegCaptureArgs(c CaptureArgs) []string {
	args := []string{"-hide_banner", "-loglevel", "error"}
	if c.Format != "" {
		args = append(args, "-f", c.Format)
		if c.Width > 0 && c.Height > 0 {
			args = append(args, "-video_size", fmt.Sprintf("%dx%d", c.Width, c.Height))
		}
		if c.FPS > 0 {
			args = append(args, "-framerate", strconv.Itoa(c.FPS))
		}
	} else {
		// files are paced at their native rate so they behave like a camera
		args = append(args, "-re")
	}
	args = append(args, "-i", c.Device)
	if c.Format == "" && c.Width > 0 && c.Height > 0 {
		args = append(args, "-vf", fmt.Sprintf("scale=%d:%d", c.Width, c.Height))
	}
	// Using -vcodec mjpeg ensures we get JPEGs Go can split
	return append(args, "-f", "image2pipe", "-vcodec", "mjpeg", "-")
}

// NewFFmpegCaptureCmd creates the capture decoder pipe
func NewFFmpegCaptureCmd(ctx context.Context, c CaptureArgs) *SafeCommand {
	return NewSafeCommandContext(ctx, "ffmpeg", FFmpegCaptureArgs(c)...)
}

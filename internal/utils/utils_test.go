package utils

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestSplitJpeg(t *testing.T) {
	// Construct a stream containing: [Garbage] [JPEG] [JPEG] [Garbage]
	// SOI (Start of Image): FF D8
	// EOI (End of Image):   FF D9

	first := []byte{0xFF, 0xD8, 0x01, 0x02, 0x03, 0xFF, 0xD9}
	second := []byte{0xFF, 0xD8, 0x04, 0xFF, 0xD9}

	streamData := []byte{0x00, 0x00}
	streamData = append(streamData, first...)
	streamData = append(streamData, second...)
	streamData = append(streamData, []byte{0x00, 0x00}...)

	scanner := bufio.NewScanner(bytes.NewReader(streamData))
	scanner.Split(SplitJpeg)

	for i, want := range [][]byte{first, second} {
		if !scanner.Scan() {
			t.Fatalf("Expected token %d, got EOF", i)
		}
		if !bytes.Equal(scanner.Bytes(), want) {
			t.Errorf("Token %d: expected %X, got %X", i, want, scanner.Bytes())
		}
	}

	// The trailing garbage is not a JPEG
	if scanner.Scan() {
		t.Error("Expected only two tokens, found more")
	}
}

func TestFFmpegCaptureArgs(t *testing.T) {
	tests := []struct {
		name     string
		in       CaptureArgs
		contains []string
		absent   []string
	}{
		{
			name:     "Webcam",
			in:       CaptureArgs{Format: "v4l2", Device: "/dev/video0", Width: 640, Height: 480, FPS: 30},
			contains: []string{"-f v4l2", "-video_size 640x480", "-framerate 30", "-i /dev/video0", "image2pipe -vcodec mjpeg -"},
			absent:   []string{"-re"},
		},
		{
			name:     "File",
			in:       CaptureArgs{Device: "clip.mp4", Width: 640, Height: 480},
			contains: []string{"-re -i clip.mp4", "-vf scale=640:480"},
			absent:   []string{"-video_size", "-framerate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Join(FFmpegCaptureArgs(tt.in), " ")
			for _, c := range tt.contains {
				if !strings.Contains(got, c) {
					t.Errorf("args %q missing %q", got, c)
				}
			}
			for _, a := range tt.absent {
				if strings.Contains(got, a) {
					t.Errorf("args %q should not contain %q", got, a)
				}
			}
		})
	}
}

func TestSafeCommandCapturesStderr(t *testing.T) {
	cmd := NewSafeCommandContext(context.Background(), "sh", "-c", "echo boom >&2; exit 3")
	if err := cmd.Run(); err == nil {
		t.Fatal("Expected non-zero exit")
	}
	if !strings.Contains(cmd.Stderr.String(), "boom") {
		t.Errorf("Stderr not captured: %q", cmd.Stderr.String())
	}
}

package video

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/andresmejia3/facepill/internal/utils"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestStreamPublishesLatestFrame(t *testing.T) {
	c := New(utils.CaptureArgs{}, quietLogger())
	if c.Ready() {
		t.Fatal("capture should not be ready before any frame")
	}
	if idx, data := c.Frame(); idx != 0 || data != nil {
		t.Fatalf("Frame() before ready = %d, %v", idx, data)
	}

	stream := []byte{0x00}
	stream = append(stream, 0xFF, 0xD8, 0x01, 0xFF, 0xD9)
	stream = append(stream, 0xFF, 0xD8, 0x02, 0x03, 0xFF, 0xD9)

	if err := c.Stream(context.Background(), bytes.NewReader(stream)); err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	if !c.Ready() {
		t.Fatal("capture should be ready after a frame")
	}
	idx, data := c.Frame()
	if idx != 2 {
		t.Errorf("latest index = %d, want 2", idx)
	}
	if !bytes.Equal(data, []byte{0xFF, 0xD8, 0x02, 0x03, 0xFF, 0xD9}) {
		t.Errorf("latest frame = %X", data)
	}
}

func TestStreamWithoutFramesStaysNotReady(t *testing.T) {
	c := New(utils.CaptureArgs{}, quietLogger())
	if err := c.Stream(context.Background(), bytes.NewReader([]byte{0x00, 0x01, 0xFF})); err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	if c.Ready() {
		t.Fatal("garbage must not mark the capture ready")
	}
}

func TestStreamStopsOnCancel(t *testing.T) {
	c := New(utils.CaptureArgs{}, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stream := []byte{0xFF, 0xD8, 0x01, 0xFF, 0xD9}
	if err := c.Stream(ctx, bytes.NewReader(stream)); err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	if c.Ready() {
		t.Fatal("cancelled stream should not publish")
	}
}

package detect

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andresmejia3/facepill/internal/types"
	"github.com/sirupsen/logrus"
)

type fakeSource struct {
	ready atomic.Bool
	idx   atomic.Int64
}

func (f *fakeSource) Ready() bool { return f.ready.Load() }

func (f *fakeSource) Frame() (int, []byte) {
	return int(f.idx.Add(1)), []byte{0xFF, 0xD8, 0xFF, 0xD9}
}

type fakeDetector struct {
	mu    sync.Mutex
	calls []Options
	faces []types.Face
	err   error
}

func (f *fakeDetector) Detect(ctx context.Context, frame []byte, opts Options) ([]types.Face, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, opts)
	return f.faces, f.err
}

func (f *fakeDetector) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.NotReadyRetry = time.Millisecond
	cfg.Interval = time.Millisecond
	cfg.ManualCooldown = time.Hour
	return cfg
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestHolder(t *testing.T) {
	var h Holder
	if !h.Latest().Empty() {
		t.Fatal("fresh holder should be empty")
	}
	h.Publish(&types.Snapshot{Faces: []types.Face{{Score: 1}}, Frame: 7})
	if h.Latest().Frame != 7 || h.Latest().Empty() {
		t.Fatalf("Latest() = %+v", h.Latest())
	}
	h.Clear()
	if !h.Latest().Empty() {
		t.Fatal("cleared holder should be empty")
	}
	h.Publish(nil)
	if h.Latest() == nil {
		t.Fatal("Latest must never return nil")
	}
}

func TestLoopWaitsForVideo(t *testing.T) {
	src := &fakeSource{}
	det := &fakeDetector{faces: []types.Face{{Score: 0.8}}}
	var h Holder
	loop := NewLoop(fastConfig(), src, det, &h, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	if n := det.callCount(); n != 0 {
		t.Fatalf("detector called %d times before video was ready", n)
	}

	src.ready.Store(true)
	waitFor(t, func() bool { return !h.Latest().Empty() })

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() returned %v after cancel", err)
	}

	for _, opts := range det.calls {
		if opts.ScoreThreshold != 0.3 || opts.InputSize != 416 {
			t.Errorf("automatic detection used %+v", opts)
		}
	}
}

func TestLoopDegradesToEmptyOnError(t *testing.T) {
	src := &fakeSource{}
	src.ready.Store(true)
	det := &fakeDetector{err: errors.New("model not loaded")}
	var h Holder
	h.Publish(&types.Snapshot{Faces: []types.Face{{Score: 1}}, Frame: 0})

	loop := NewLoop(fastConfig(), src, det, &h, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	waitFor(t, func() bool { return det.callCount() >= 3 })
	if !h.Latest().Empty() {
		t.Fatal("failed detection should publish an empty snapshot")
	}
}

func TestManualDetection(t *testing.T) {
	src := &fakeSource{}
	src.ready.Store(true)
	det := &fakeDetector{}
	var h Holder
	h.Publish(&types.Snapshot{Faces: []types.Face{{Score: 0.4}}, Frame: 1})

	loop := NewLoop(fastConfig(), src, det, &h, quietLogger())
	ctx := context.Background()

	if !loop.Manual(ctx) {
		t.Fatal("first manual call should run")
	}
	if h.Latest().Empty() {
		t.Fatal("manual detection without faces must keep the previous snapshot")
	}
	if det.calls[0].ScoreThreshold != 0.7 {
		t.Errorf("manual detection threshold = %v, want 0.7", det.calls[0].ScoreThreshold)
	}

	if loop.Manual(ctx) {
		t.Error("second call inside the cooldown should be dropped")
	}
	if det.callCount() != 1 {
		t.Errorf("detector calls = %d, want 1", det.callCount())
	}
}

func TestManualDetectionPublishesFaces(t *testing.T) {
	src := &fakeSource{}
	src.ready.Store(true)
	det := &fakeDetector{faces: []types.Face{{Score: 0.95}}}
	var h Holder

	cfg := fastConfig()
	cfg.ManualCooldown = 0
	loop := NewLoop(cfg, src, det, &h, quietLogger())

	for i := 0; i < 3; i++ {
		if !loop.Manual(context.Background()) {
			t.Fatalf("call %d dropped with no cooldown", i)
		}
	}
	if got := h.Latest(); got.Empty() || got.Faces[0].Score != 0.95 {
		t.Fatalf("Latest() = %+v", got)
	}
}

package worker

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	"github.com/andresmejia3/facepill/internal/detect"
	"github.com/andresmejia3/facepill/internal/types"
	"github.com/andresmejia3/facepill/internal/utils"
)

const (
	statusOK    = 0
	statusError = 1

	// A 68-point landmark set is far below this; anything larger is a corrupt frame.
	maxPointsPerFace = 1024
	maxFaces         = 64
)

// PythonWorker drives a landmark inference process over pipes.
//
// Protocol (big endian), request:  [len u32][inputSize u16][scoreThreshold f32][jpeg]
// response: [len u32][status u8] then either
// [faces u32]{[score f32][points u32]{[x f32][y f32]}} or [msgLen u32][msg].
type PythonWorker struct {
	ID       int
	Cmd      *utils.SafeCommand
	Stdin    io.WriteCloser
	DataPipe io.ReadCloser

	mu sync.Mutex
}

// NewPythonWorker starts the worker process. name/args is the command line,
// e.g. "python3", "-u", "python/landmarks.py".
func NewPythonWorker(ctx context.Context, id int, name string, args ...string) (*PythonWorker, error) {
	py := utils.NewSafeCommandContext(ctx, name, args...)

	// Create a side-channel pipe (FD 3) for clean data transfer
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create pipe: %w", err)
	}
	// Pass the write-end to the child process. It will appear as FD 3.
	py.Cmd.ExtraFiles = []*os.File{w}

	stdin, err := py.StdinPipe()
	if err != nil {
		w.Close()
		r.Close()
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}

	if err := py.Start(); err != nil {
		w.Close()
		r.Close()
		return nil, fmt.Errorf("worker %d failed to start: %w", id, err)
	}

	// Close the write-end in the parent so only the child holds it
	w.Close()

	return &PythonWorker{
		ID:       id,
		Cmd:      py,
		Stdin:    stdin,
		DataPipe: r,
	}, nil
}

// Detect implements detect.Detector. Calls are serialised; the pipe carries
// one request at a time.
func (w *PythonWorker) Detect(ctx context.Context, frame []byte, opts detect.Options) ([]types.Face, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	resp, err := w.communicate(encodeRequest(frame, opts))
	if err != nil {
		return nil, err
	}
	return decodeResponse(resp)
}

func (w *PythonWorker) communicate(data []byte) ([]byte, error) {
	// Protocol: [Length][Data]
	if err := binary.Write(w.Stdin, binary.BigEndian, uint32(len(data))); err != nil {
		return nil, err
	}
	if _, err := w.Stdin.Write(data); err != nil {
		return nil, err
	}

	header := make([]byte, 4)
	if _, err := io.ReadFull(w.DataPipe, header); err != nil {
		return nil, err // the worker died (import error, crash)
	}

	respLen := binary.BigEndian.Uint32(header)
	respBody := make([]byte, respLen)
	_, err := io.ReadFull(w.DataPipe, respBody)
	return respBody, err
}

func encodeRequest(frame []byte, opts detect.Options) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, 6+len(frame)))
	binary.Write(buf, binary.BigEndian, uint16(opts.InputSize))
	binary.Write(buf, binary.BigEndian, float32(opts.ScoreThreshold))
	buf.Write(frame)
	return buf.Bytes()
}

func decodeResponse(payload []byte) ([]types.Face, error) {
	r := bytes.NewReader(payload)

	status, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("empty worker response: %w", err)
	}

	if status == statusError {
		var n uint32
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			return nil, fmt.Errorf("malformed worker error: %w", err)
		}
		msg := make([]byte, n)
		if _, err := io.ReadFull(r, msg); err != nil {
			return nil, fmt.Errorf("malformed worker error: %w", err)
		}
		return nil, fmt.Errorf("python worker error: %s", msg)
	}
	if status != statusOK {
		return nil, fmt.Errorf("unknown worker status %d", status)
	}

	var numFaces uint32
	if err := binary.Read(r, binary.BigEndian, &numFaces); err != nil {
		return nil, fmt.Errorf("malformed face count: %w", err)
	}
	if numFaces > maxFaces {
		return nil, fmt.Errorf("worker reported %d faces", numFaces)
	}

	faces := make([]types.Face, 0, numFaces)
	for i := uint32(0); i < numFaces; i++ {
		var score float32
		var numPoints uint32
		if err := binary.Read(r, binary.BigEndian, &score); err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		if err := binary.Read(r, binary.BigEndian, &numPoints); err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		if numPoints > maxPointsPerFace {
			return nil, fmt.Errorf("face %d: %d landmark points", i, numPoints)
		}

		raw := make([]float32, 2*numPoints)
		if err := binary.Read(r, binary.BigEndian, raw); err != nil {
			return nil, fmt.Errorf("face %d landmarks: %w", i, err)
		}
		pts := make([]types.Point, numPoints)
		for j := range pts {
			pts[j] = types.Point{X: float64(raw[2*j]), Y: float64(raw[2*j+1])}
		}
		faces = append(faces, types.Face{Score: roundScore(score), Landmarks: pts})
	}
	return faces, nil
}

// roundScore trims float32 noise so scores log cleanly.
func roundScore(s float32) float64 {
	return math.Round(float64(s)*1e4) / 1e4
}

// Close shuts the pipes and waits for the process to exit.
func (w *PythonWorker) Close() error {
	w.Stdin.Close()
	w.DataPipe.Close()
	if w.Cmd == nil {
		return nil
	}
	return w.Cmd.Wait()
}

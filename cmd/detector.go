package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/andresmejia3/facepill/internal/config"
	"github.com/andresmejia3/facepill/internal/detect"
	"github.com/andresmejia3/facepill/internal/utils"
	"github.com/andresmejia3/facepill/internal/worker"
	"github.com/sirupsen/logrus"
)

// detector is a detect.Detector that owns a process or a connection.
type detector interface {
	detect.Detector
	Close() error
}

// newDetector starts the configured landmark backend.
func newDetector(ctx context.Context, opts config.Options, log *logrus.Logger) (detector, error) {
	switch opts.Detector {
	case "websocket":
		fmt.Fprintf(os.Stderr, "🔌 Using landmark service at %s\n", opts.DetectorURL)
		return worker.NewWebSocketDetector(opts.DetectorURL, log), nil
	case "python":
		name, args := opts.WorkerArgs()
		fmt.Fprintln(os.Stderr, "🚀 Starting AI Engine...")
		// We use ID 0 for the single session worker
		w, err := worker.NewPythonWorker(ctx, 0, name, args...)
		if err != nil {
			return nil, err
		}
		return w, nil
	default:
		return nil, fmt.Errorf("unknown detector %q", opts.Detector)
	}
}

// showDetectorError prints an error box, including worker logs when there are any.
func showDetectorError(context string, err error, d detector) {
	var sc *utils.SafeCommand
	if w, ok := d.(*worker.PythonWorker); ok {
		sc = w.Cmd
	}
	utils.ShowError(context, err, sc)
}

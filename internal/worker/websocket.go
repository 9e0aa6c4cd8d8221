package worker

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/andresmejia3/facepill/internal/detect"
	"github.com/andresmejia3/facepill/internal/types"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type landmarkRequest struct {
	InputSize      int     `json:"input_size"`
	ScoreThreshold float64 `json:"score_threshold"`
	Image          string  `json:"image"`
}

type landmarkResponse struct {
	Faces []types.Face `json:"faces"`
	types.ErrorResult
}

// WebSocketDetector talks to a remote landmark service. The connection is
// dialled lazily and redialled after any failure.
type WebSocketDetector struct {
	url          string
	log          *logrus.Logger
	conn         *websocket.Conn
	mu           sync.Mutex
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewWebSocketDetector returns a detector for url. It does not dial.
func NewWebSocketDetector(url string, log *logrus.Logger) *WebSocketDetector {
	return &WebSocketDetector{
		url:          url,
		log:          log,
		readTimeout:  10 * time.Second,
		writeTimeout: 5 * time.Second,
	}
}

func (d *WebSocketDetector) dial(ctx context.Context) error {
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.DialContext(ctx, d.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", d.url, err)
	}
	conn.SetPingHandler(func(appData string) error {
		if err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(d.writeTimeout)); err != nil {
			d.log.Warnf("error sending pong: %v", err)
		}
		return nil
	})
	d.conn = conn
	d.log.WithField("url", d.url).Info("connected to landmark service")
	return nil
}

// drop closes a broken connection so the next call redials.
func (d *WebSocketDetector) drop() {
	if d.conn != nil {
		d.conn.Close()
		d.conn = nil
	}
}

// Detect implements detect.Detector.
func (d *WebSocketDetector) Detect(ctx context.Context, frame []byte, opts detect.Options) ([]types.Face, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		if err := d.dial(ctx); err != nil {
			return nil, fmt.Errorf("cannot connect to landmark service: %w", err)
		}
	}

	req, err := json.Marshal(landmarkRequest{
		InputSize:      opts.InputSize,
		ScoreThreshold: opts.ScoreThreshold,
		Image:          base64.StdEncoding.EncodeToString(frame),
	})
	if err != nil {
		return nil, err
	}

	d.conn.SetWriteDeadline(time.Now().Add(d.writeTimeout))
	if err := d.conn.WriteMessage(websocket.TextMessage, req); err != nil {
		d.drop()
		return nil, fmt.Errorf("error sending frame: %w", err)
	}

	d.conn.SetReadDeadline(time.Now().Add(d.readTimeout))
	_, message, err := d.conn.ReadMessage()
	if err != nil {
		d.drop()
		return nil, fmt.Errorf("error reading landmarks: %w", err)
	}
	d.conn.SetReadDeadline(time.Time{})
	d.conn.SetWriteDeadline(time.Time{})

	var resp landmarkResponse
	if err := json.Unmarshal(message, &resp); err != nil {
		return nil, fmt.Errorf("error unmarshaling landmarks: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("landmark service error: %s", resp.Error)
	}
	return resp.Faces, nil
}

// Close closes the connection if one is open.
func (d *WebSocketDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return nil
	}
	err := d.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(d.writeTimeout))
	d.drop()
	return err
}

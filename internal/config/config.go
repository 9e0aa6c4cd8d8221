package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Options holds shared configuration for the play and judge commands
type Options struct {
	Detector    string `validate:"oneof=python websocket"`
	WorkerCmd   string `validate:"required_if=Detector python"`
	DetectorURL string `validate:"required_if=Detector websocket"`

	VideoFormat string
	VideoDevice string `validate:"required"`
	Width       int    `validate:"gte=64,lte=4096"`
	Height      int    `validate:"gte=64,lte=4096"`
	FPS         int    `validate:"gte=0,lte=120"`

	TickRate int `validate:"gte=10,lte=240"`

	AudioCommand string
	WinSound     string
	LoseSound    string
	Volume       float64 `validate:"gte=0,lte=1"`
	Mute         bool

	LogLevel string `validate:"omitempty,oneof=trace debug info warn error"`
	LogFile  string

	DatabaseURL string
}

// Defaults returns the built-in configuration.
func Defaults() Options {
	format, device := "v4l2", "/dev/video0"
	switch runtime.GOOS {
	case "darwin":
		format, device = "avfoundation", "0"
	case "windows":
		format, device = "dshow", "video=Integrated Camera"
	}
	return Options{
		Detector:     "python",
		WorkerCmd:    "python3 -u python/landmarks.py",
		DetectorURL:  "ws://localhost:8000/api/v1/face/ws",
		VideoFormat:  format,
		VideoDevice:  device,
		Width:        640,
		Height:       480,
		FPS:          30,
		TickRate:     60,
		AudioCommand: "ffplay",
		WinSound:     "assets/winsound.mp3",
		LoseSound:    "assets/losesound.mp3",
		Volume:       0.3,
		LogLevel:     "info",
		LogFile:      "./storage/logs/facepill.log",
	}
}

// Load reads an optional .env file and applies FACEPILL_* variables over the defaults.
func Load(envFile string) (Options, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Options{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	o := Defaults()
	str(&o.Detector, "FACEPILL_DETECTOR")
	str(&o.WorkerCmd, "FACEPILL_WORKER_CMD")
	str(&o.DetectorURL, "FACEPILL_DETECTOR_URL")
	str(&o.VideoFormat, "FACEPILL_VIDEO_FORMAT")
	str(&o.VideoDevice, "FACEPILL_VIDEO_DEVICE")
	str(&o.AudioCommand, "FACEPILL_AUDIO_CMD")
	str(&o.WinSound, "FACEPILL_WIN_SOUND")
	str(&o.LoseSound, "FACEPILL_LOSE_SOUND")
	str(&o.LogLevel, "FACEPILL_LOG_LEVEL")
	str(&o.LogFile, "FACEPILL_LOG_FILE")

	var err error
	for _, f := range []func() error{
		func() error { return num(&o.Width, "FACEPILL_WIDTH") },
		func() error { return num(&o.Height, "FACEPILL_HEIGHT") },
		func() error { return num(&o.FPS, "FACEPILL_FPS") },
		func() error { return num(&o.TickRate, "FACEPILL_TICK_RATE") },
		func() error { return float(&o.Volume, "FACEPILL_VOLUME") },
		func() error { return flag(&o.Mute, "FACEPILL_MUTE") },
	} {
		err = errors.Join(err, f())
	}
	return o, err
}

func str(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func num(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func float(dst *float64, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func flag(dst *bool, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

var validate = validator.New()

// Validate checks the options before any subprocess is started.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// WorkerArgs splits WorkerCmd into a program and its arguments.
func (o Options) WorkerArgs() (string, []string) {
	parts := strings.Fields(o.WorkerCmd)
	if len(parts) == 0 {
		return "", nil
	}
	return parts[0], parts[1:]
}

// DatabaseURL resolves the connection string: the explicit value wins,
// then POSTGRES_* variables. An empty result disables persistence.
func DatabaseURL(explicit string) string {
	if explicit != "" {
		return explicit
	}
	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		return ""
	}
	user := os.Getenv("POSTGRES_USER")
	pass := os.Getenv("POSTGRES_PASSWORD")
	name := os.Getenv("POSTGRES_DB")
	port := os.Getenv("POSTGRES_PORT")
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, pass, host, port, name)
}

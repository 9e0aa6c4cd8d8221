package game

import "time"

const (
	CountdownDuration  = 4000 * time.Millisecond
	CountdownStep      = 1000 * time.Millisecond
	DrinkingDuration   = 4000 * time.Millisecond
	MouthOpenThreshold = 15.0 // landmark pixels at detector input resolution

	CelebrationLifetime = 10 * time.Second
	BalloonCount        = 8
	ConfettiCount       = 50
	ConfettiGravity     = 0.1
)

// Display strings.
const (
	TitleText        = "Funny Face Pill"
	IntroText        = "Get ready to swallow your pill on \"3, 2, 1\"!\nOnce it's down, pull a funny face at the camera!"
	StartHintText    = "Press Enter to start"
	CountdownPrompt  = "Get ready to swallow the pill!"
	GoPrompt         = "Now! Swallow the pill!"
	GoText           = "GO!"
	DrinkingText     = "Swallowing..."
	DrinkingPrompt   = "Swallowed it? Open wide and pull a funny face!"
	WinLabel         = "WIN"
	LoseLabel        = "LOSE"
	WinFlavor        = "You beat yourself! Amazing!"
	LoseFlavor       = "No rush! Take a breath and try again."
	RestartHintText  = "Press Enter to try again"
	ManualDetectHint = "Press 't' to run a manual detection"
)

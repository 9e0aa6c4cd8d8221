package game

import (
	"math"
	"math/rand"
	"time"
)

// ParticleKind distinguishes the two decorative particle types.
type ParticleKind uint8

const (
	Balloon ParticleKind = iota
	Confetti
)

var palette = []string{"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FECA57", "#FF9FF3"}

// Particle is a plain value record; StepCelebration advances it.
type Particle struct {
	Kind     ParticleKind
	X, Y     float64
	VX, VY   float64
	Size     float64
	Color    string
	Rotation float64
	Spin     float64

	// balloons only
	TargetY    float64
	SwayAmount float64
	SwaySpeed  float64
	FloatSpeed float64
	StringLen  float64
}

// Celebration is the win animation. It is cosmetic and never feeds back into
// the game state.
type Celebration struct {
	Started   time.Time
	Width     float64
	Height    float64
	Particles []Particle
}

func between(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// NewCelebration releases balloons from below the screen and confetti from the top.
func NewCelebration(rng *rand.Rand, now time.Time, width, height float64) Celebration {
	c := Celebration{
		Started:   now,
		Width:     width,
		Height:    height,
		Particles: make([]Particle, 0, BalloonCount+ConfettiCount),
	}
	for i := 0; i < BalloonCount; i++ {
		c.Particles = append(c.Particles, Particle{
			Kind:       Balloon,
			X:          between(rng, 0, width),
			Y:          height + 50,
			TargetY:    between(rng, 50, 200),
			Size:       between(rng, 30, 50),
			Color:      palette[i%len(palette)],
			SwayAmount: between(rng, 1, 3),
			SwaySpeed:  between(rng, 0.02, 0.05),
			FloatSpeed: between(rng, 1, 2),
			StringLen:  between(rng, 80, 120),
		})
	}
	for i := 0; i < ConfettiCount; i++ {
		c.Particles = append(c.Particles, Particle{
			Kind:     Confetti,
			X:        between(rng, 0, width),
			Y:        -10,
			VX:       between(rng, -2, 2),
			VY:       between(rng, 1, 4),
			Size:     between(rng, 5, 12),
			Color:    palette[rng.Intn(len(palette))],
			Rotation: between(rng, 0, 2*math.Pi),
			Spin:     between(rng, -0.2, 0.2),
		})
	}
	return c
}

// Active reports whether the celebration is still within its lifetime.
func (c Celebration) Active(now time.Time) bool {
	return !c.Started.IsZero() && now.Sub(c.Started) <= CelebrationLifetime
}

// Count returns the number of live particles of a kind.
func (c Celebration) Count(kind ParticleKind) int {
	n := 0
	for _, p := range c.Particles {
		if p.Kind == kind {
			n++
		}
	}
	return n
}

// StepCelebration advances every particle by one frame and drops confetti
// that fell off screen. An expired celebration comes back empty.
func StepCelebration(c Celebration, now time.Time, rng *rand.Rand) Celebration {
	if !c.Active(now) {
		return Celebration{}
	}

	ms := float64(now.Sub(c.Started).Milliseconds())
	next := make([]Particle, 0, len(c.Particles))
	for _, p := range c.Particles {
		switch p.Kind {
		case Balloon:
			if p.Y > p.TargetY {
				p.Y -= p.FloatSpeed
			}
			p.X += math.Sin(ms*p.SwaySpeed) * p.SwayAmount
			if p.X < -50 {
				p.X = c.Width + 50
			}
			if p.X > c.Width+50 {
				p.X = -50
			}
		case Confetti:
			p.X += p.VX
			p.Y += p.VY
			p.VY += ConfettiGravity
			p.Rotation += p.Spin
			p.VX += between(rng, -0.1, 0.1)
			if p.Y > c.Height+50 {
				continue
			}
		}
		next = append(next, p)
	}
	c.Particles = next
	return c
}

package types

import "math"

// 68-point landmark scheme. The mouth contour is points 48..67.
const (
	NumLandmarks = 68
	MouthStart   = 48
	MouthEnd     = 68
	MouthPoints  = MouthEnd - MouthStart

	// Indices inside the mouth contour.
	UpperLipCenter = 13
	LowerLipCenter = 19
)

// FrameTask is one captured JPEG frame and its sequence number
type FrameTask struct {
	Index int
	Data  []byte
}

// Point is a landmark coordinate in detector input pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance between two points.
func Dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Face is one detected face with its landmark set.
type Face struct {
	Score     float64 `json:"score"`
	Landmarks []Point `json:"landmarks"`
}

// Mouth returns the mouth contour, or nil if the landmark set is too short.
func (f Face) Mouth() []Point {
	if len(f.Landmarks) < MouthEnd {
		return nil
	}
	return f.Landmarks[MouthStart:MouthEnd]
}

// Snapshot is the most recent detection result. A nil or empty Faces slice
// means no face was found (or detection has not produced anything yet).
type Snapshot struct {
	Faces []Face
	Frame int
}

// Empty reports whether the snapshot holds no faces.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Faces) == 0
}

// ErrorResult captures the error object returned by a detector service on failure
type ErrorResult struct {
	Error string `json:"error"`
}

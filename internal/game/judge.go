package game

import "github.com/andresmejia3/facepill/internal/types"

// Judgment is the outcome of a single judgment plus the evidence it used.
type Judgment struct {
	Result   Result
	Faces    int
	Openness float64 // -1 when no mouth could be measured
}

// MouthOpenness returns the distance between the upper- and lower-lip centre
// points of a mouth contour. ok is false when the contour is too short.
func MouthOpenness(mouth []types.Point) (dist float64, ok bool) {
	if len(mouth) < types.MouthPoints {
		return 0, false
	}
	return types.Dist(mouth[types.UpperLipCenter], mouth[types.LowerLipCenter]), true
}

// IsMouthOpen reports whether the openness strictly exceeds MouthOpenThreshold.
func IsMouthOpen(dist float64) bool {
	return dist > MouthOpenThreshold
}

// Judge decides the round from a single snapshot. Only the first face counts;
// no face, or a face without a usable mouth contour, loses.
func Judge(snap *types.Snapshot) Judgment {
	if snap.Empty() {
		return Judgment{Result: ResultLose, Openness: -1}
	}

	j := Judgment{Faces: len(snap.Faces), Openness: -1, Result: ResultLose}
	dist, ok := MouthOpenness(snap.Faces[0].Mouth())
	if !ok {
		return j
	}
	j.Openness = dist
	if IsMouthOpen(dist) {
		j.Result = ResultWin
	}
	return j
}

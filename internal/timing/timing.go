// Package timing models the DAS/ARR-derived input cadence and NES
// gravity table that frame-accurate move search depends on.
package timing

// Gravity returns the number of frames per row of descent at the given
// level: level <= 18 is slow gravity, 19..28 is medium, >=29 is fast.
func Gravity(level int) int {
	switch {
	case level <= 18:
		return 3
	case level < 29:
		return 2
	default:
		return 1
	}
}

// IsGravityFrame reports whether frameIndex is a frame on which the
// piece attempts to fall one row, given the level's gravity period.
func IsGravityFrame(frameIndex, gravity int) bool {
	return frameIndex%gravity == gravity-1
}

// ShouldPerformInputsThisFrame consults the cyclic input timeline (a
// string over {'X', '.'}) to decide whether horizontal/rotational
// inputs may be applied on frameIndex.
func ShouldPerformInputsThisFrame(timeline string, frameIndex int) bool {
	if len(timeline) == 0 {
		return false
	}
	return timeline[frameIndex%len(timeline)] == 'X'
}

// MaxInputsTracked bounds the minYByNumInputs table: callers never need
// to know the minimum y reachable after more than this many inputs
// before a tuck must instead be found via the tuck finder directly.
const MaxInputsTracked = 6

// ComputeYValueOfEachShift simulates, for a piece spawning at initialY
// with no horizontal obstruction, the lowest y reached by the time N
// consecutive inputs (N = 0..MaxInputsTracked) have been consumed,
// tracking gravity advancing every frame alongside. It does not know
// about board collisions; it is a pure frame-timing bound used by the
// tuck finder to reject tucks that would require the piece to already
// be lower than gravity alone could have carried it, independent of any
// specific board.
func ComputeYValueOfEachShift(timeline string, gravity, initialY int) [MaxInputsTracked + 1]int {
	var minY [MaxInputsTracked + 1]int
	y := initialY
	minY[0] = y
	inputsConsumed := 0
	frame := 0
	for inputsConsumed < MaxInputsTracked {
		if ShouldPerformInputsThisFrame(timeline, frame) {
			inputsConsumed++
			minY[inputsConsumed] = y
		}
		if IsGravityFrame(frame, gravity) {
			y++
		}
		frame++
		if frame > 10000 {
			// Degenerate timeline (no 'X' at all); every remaining entry
			// stays unreachable at the current y.
			for i := inputsConsumed + 1; i <= MaxInputsTracked; i++ {
				minY[i] = y
			}
			break
		}
	}
	return minY
}

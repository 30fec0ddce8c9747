package movesearch

import (
	"github.com/rob-opsi/StackRabbit/internal/board"
	"github.com/rob-opsi/StackRabbit/internal/piece"
	"github.com/rob-opsi/StackRabbit/internal/timing"
)

// findTucks scans the board's tuck-setup plane for overhangs and, for
// each of the piece's precomputed tuck-origin spots, checks whether a
// reachable input sequence can tuck the piece into that overhang.
func findTucks(gs board.State, p piece.Piece, tuckCols availableTuckCols, minYByNumInputs [timing.MaxInputsTracked + 1]int) []LockPlacement {
	var out []LockPlacement
	seen := map[int]bool{}

	for row := 0; row < board.Height; row++ {
		setupBits := gs.Board[row] & board.AllTuckSetupBits
		if setupBits == 0 {
			continue
		}
		for col := 0; col < board.Width; col++ {
			if setupBits&board.TuckSetupBit(col) == 0 {
				continue
			}
			out = append(out, tucksForOverhang(gs, p, row, col, tuckCols, minYByNumInputs, seen)...)
		}
	}
	return out
}

func tucksForOverhang(gs board.State, p piece.Piece, cY, cX int, tuckCols availableTuckCols, minYByNumInputs [timing.MaxInputsTracked + 1]int, seen map[int]bool) []LockPlacement {
	var out []LockPlacement
	for _, spot := range p.TuckOriginSpots {
		x := cX - spot.OffsetX
		postTuckY := cY - spot.OffsetY
		if board.Collision(gs.Board, p, spot.Orientation, x, postTuckY) {
			continue
		}
		lockY := postTuckY
		for !board.Collision(gs.Board, p, spot.Orientation, x, lockY+1) {
			lockY++
		}
		hash := lockY*1000 + x*10 + spot.Orientation
		if seen[hash] {
			continue
		}
		notation, ok := findTuckInput(gs.Board, p, spot.Orientation, x, postTuckY, tuckCols, minYByNumInputs)
		if !ok {
			continue
		}
		seen[hash] = true
		out = append(out, LockPlacement{
			X: x, Y: lockY, RotationIndex: spot.Orientation,
			TuckNotation: notation, Piece: p,
		})
	}
	return out
}

// findTuckInput searches the closed tuck-input alphabet for one that
// reaches (x,y,rot) and is actually reachable given input timing and
// tuckCols reachability, returning its notation.
func findTuckInput(b board.Board, p piece.Piece, rot, x, y int, tuckCols availableTuckCols, minYByNumInputs [timing.MaxInputsTracked + 1]int) (rune, bool) {
	for _, ti := range piece.TuckInputs {
		preTuckX := x - ti.XChange
		preTuckRot := rot
		if p.NumOrientations != 1 {
			preTuckRot = ((rot-ti.RotationChange)%p.NumOrientations + p.NumOrientations) % p.NumOrientations
		}

		numRotationsBeforeTuck := preTuckRot
		if preTuckRot == 3 {
			numRotationsBeforeTuck = 1
		}
		absShift := preTuckX - piece.SpawnX
		if absShift < 0 {
			absShift = -absShift
		}
		numInputsBeforeTuck := numRotationsBeforeTuck
		if absShift > numInputsBeforeTuck {
			numInputsBeforeTuck = absShift
		}

		if numInputsBeforeTuck+1 > timing.MaxInputsTracked {
			continue
		}
		if y < minYByNumInputs[numInputsBeforeTuck+1] {
			continue
		}
		idx := tuckColIndex(preTuckRot, preTuckX)
		if idx < 0 || y > tuckCols[idx] {
			continue
		}
		if board.Collision(b, p, preTuckRot, x, y) {
			continue
		}
		if board.Collision(b, p, preTuckRot, preTuckX, y) {
			continue
		}
		return ti.Notation, true
	}
	return 0, false
}

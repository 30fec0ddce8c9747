package evalref

import (
	"github.com/rob-opsi/StackRabbit/internal/board"
	"github.com/rob-opsi/StackRabbit/internal/movesearch"
	"github.com/rob-opsi/StackRabbit/internal/search"
)

// AdvanceGameState merges a lock placement into the board, clears any
// full rows, recomputes the surface array and aux bit planes, and
// advances the level per the NES line-clear thresholds. This is the
// reference implementation of the `advanceGameState` collaborator.
func AdvanceGameState(gs board.State, lp movesearch.LockPlacement, _ search.EvalContext) board.State {
	next := gs.Board
	rotation := lp.Piece.Rotations[lp.RotationIndex]
	for r := 0; r < 4; r++ {
		if lp.Y+r < 0 || lp.Y+r >= board.Height {
			continue
		}
		rowMask := rotation.RowMasks[r]
		if rowMask == 0 {
			continue
		}
		shifted := board.ShiftBy(rowMask, lp.X)
		next[lp.Y+r] |= shifted & board.FullRow
	}

	cleared, linesCleared := clearFullRows(next)
	maintainAuxPlanes(&cleared)

	return board.State{
		Board:            cleared,
		SurfaceArray:     board.GetSurfaceArray(cleared),
		AdjustedNumHoles: countHoles(cleared),
		Lines:            gs.Lines + linesCleared,
		Level:            GetLevelAfterLineClears(gs.Level, gs.Lines, linesCleared),
	}
}

// clearFullRows removes every full row, shifting rows above it down,
// and returns the number of rows removed.
func clearFullRows(b board.Board) (board.Board, int) {
	var out board.Board
	writeRow := board.Height - 1
	cleared := 0
	for r := board.Height - 1; r >= 0; r-- {
		if b[r]&board.FullRow == board.FullRow {
			cleared++
			continue
		}
		out[writeRow] = b[r]
		writeRow--
	}
	return out, cleared
}

// maintainAuxPlanes recomputes the tuck-setup and hole bit planes from
// scratch given the playfield bits. A column is a "hole" at row r if it
// is empty at r but filled somewhere above. A column is a "tuck setup"
// at row r if it is such a hole and the cell directly below it (row
// r+1) is empty too; the bottom row is never marked.
func maintainAuxPlanes(b *board.Board) {
	colFilledAbove := [board.Width]bool{}
	for r := 0; r < board.Height; r++ {
		row := b[r] & board.FullRow
		var holeBits, tuckBits uint32
		for c := 0; c < board.Width; c++ {
			bit := uint32(1 << uint(9-c))
			filled := row&bit != 0
			if !filled && colFilledAbove[c] {
				holeBits |= board.HoleBit(c)
				if r+1 < board.Height && b[r+1]&board.FullRow&bit == 0 {
					tuckBits |= board.TuckSetupBit(c)
				}
			}
			if filled {
				colFilledAbove[c] = true
			}
		}
		b[r] = row | holeBits | tuckBits
	}
}

func countHoles(b board.Board) int {
	count := 0
	for r := 0; r < board.Height; r++ {
		count += popcount32(b[r] & board.AllHoleBits)
	}
	return count
}

func popcount32(x uint32) int {
	c := 0
	for x != 0 {
		x &= x - 1
		c++
	}
	return c
}

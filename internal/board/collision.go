package board

import "github.com/rob-opsi/StackRabbit/internal/piece"

// Collision reports whether placing p's given rotation at (x,y) overlaps
// a filled board cell, falls below the rotation's legal max y, or
// violates the rotation's precomputed horizontal bounds table.
func Collision(b Board, p piece.Piece, rot, x, y int) bool {
	rotation := p.Rotations[rot]
	if !rotation.Present {
		return true
	}
	if y > rotation.MaxY {
		return true
	}
	boundsIdx := x + 2
	if boundsIdx < 0 || boundsIdx >= len(rotation.BoundsTable) || rotation.BoundsTable[boundsIdx] {
		return true
	}
	for r := 0; r < 4; r++ {
		if y+r < 0 {
			continue
		}
		rowMask := rotation.RowMasks[r]
		if rowMask == 0 {
			continue
		}
		if y+r >= Height {
			return true
		}
		shifted := ShiftBy(rowMask, x)
		if shifted&(b[y+r]&FullRow) != 0 {
			return true
		}
	}
	return false
}

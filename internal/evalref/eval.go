package evalref

import (
	"math/bits"

	"github.com/rob-opsi/StackRabbit/internal/board"
	"github.com/rob-opsi/StackRabbit/internal/movesearch"
	"github.com/rob-opsi/StackRabbit/internal/search"
)

// Weights holds the Dellacherie-family feature weights used by FastEval.
// Adapted from the teacher project's inlined feature set; unlike that
// project, each feature stays a separate pass over the board rather
// than being hand-fused, since this package favors clarity over the
// teacher's hand-tuned inner loop.
type Weights struct {
	RowTransitions float64
	ColTransitions float64
	RowsWithHoles  float64
	Wells2Deep     float64
	Wells3Deep     float64
	HoleQuota      float64
}

// DefaultWeights is a reasonable, untuned starting point; callers who
// care about playing strength are expected to supply their own weights
// through EvalContext.Weights.
var DefaultWeights = Weights{
	RowTransitions: -1,
	ColTransitions: -1,
	RowsWithHoles:  -4,
	Wells2Deep:     -0.5,
	Wells3Deep:     -1,
	HoleQuota:      -2,
}

const (
	fullRow       = uint32(board.FullRow)
	walledRow     = uint32(1<<(board.Width+1) | 1)
	leftBorderRow = uint32(3 << board.Width)
)

// FastEval scores the resulting board state with a small Dellacherie-
// family heuristic. It ignores `before` and `placement`; they exist to
// satisfy the collaborator signature future evaluators may need (e.g.
// landing-height features that compare before/after summit).
func FastEval(before, after board.State, placement movesearch.LockPlacement, ec search.EvalContext) float64 {
	w := DefaultWeights
	if custom, ok := ec.Weights.(Weights); ok {
		w = custom
	}

	b := after.Board
	var rowTransitions, colTransitions, rowsWithHoles, wells2Deep, wells3Deep, holeQuota int

	for r := 0; r < board.Height; r++ {
		row := b[r] & fullRow
		rowTransitions += bits.OnesCount32(((row << 1) | walledRow) ^ (row | leftBorderRow))
	}

	for r := 0; r < board.Height-1; r++ {
		colTransitions += bits.OnesCount32((b[r]&fullRow)^(b[r+1]&fullRow))
	}
	colTransitions += bits.OnesCount32((b[board.Height-1] & fullRow) ^ fullRow)

	var rowHoles uint32
	last := uint32(0)
	for r := 0; r < board.Height; r++ {
		row := b[r] & fullRow
		rowHoles = ^row & fullRow & (last | rowHoles)
		if rowHoles != 0 {
			rowsWithHoles++
		}
		last = row
	}

	for r := 1; r < board.Height; r++ {
		cur := (b[r] & fullRow) << 1
		rr := walledRow | cur
		wells := (rr>>1)&(rr<<1) &^ rr &^ ((b[r-1] & fullRow) << 1)
		wells &= fullRow << 1
		wells2Deep += bits.OnesCount32(wells)
		if r >= 2 {
			wells3Deep += bits.OnesCount32(wells &^ ((b[r-2] & fullRow) << 1))
		}
	}

	holeQuota = countHoles(b)

	score := w.RowTransitions*float64(rowTransitions) +
		w.ColTransitions*float64(colTransitions) +
		w.RowsWithHoles*float64(rowsWithHoles) +
		w.Wells2Deep*float64(wells2Deep) +
		w.Wells3Deep*float64(wells3Deep) +
		w.HoleQuota*float64(holeQuota)

	return score
}

// GetLineClearFactor rewards line clears when the caller asked for it;
// otherwise line clears contribute nothing to the score (the board
// state improvement is captured by FastEval's hole/surface features).
func GetLineClearFactor(deltaLines int, ec search.EvalContext) float64 {
	if !ec.ShouldRewardLineClears || deltaLines <= 0 {
		return 0
	}
	// Tetrises (4 lines) are worth disproportionately more than the sum
	// of four singles, matching NES scoring's own convexity.
	switch deltaLines {
	case 1:
		return 40
	case 2:
		return 100
	case 3:
		return 300
	default:
		return 1200
	}
}

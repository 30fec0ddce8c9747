package evalref

import (
	"encoding/binary"

	"github.com/rob-opsi/StackRabbit/internal/board"
	"github.com/rob-opsi/StackRabbit/internal/movesearch"
	"github.com/rob-opsi/StackRabbit/internal/piece"
	"github.com/rob-opsi/StackRabbit/internal/search"

	"golang.org/x/exp/rand"
	"lukechampine.com/frand"
)

// PlayoutDepth bounds how many additional pieces the reference playout
// simulates past the resulting state before scoring it with FastEval.
const PlayoutDepth = 3

// sevenBagSequencer draws pieces from a shuffled seven-bag, reshuffling
// whenever the bag empties, using a frand.RNG keyed from the caller's
// seed for the shuffle and golang.org/x/exp/rand's Source (seeded
// identically) for the per-call index draw. Both generators are derived
// from the same seed rather than from frand's crypto-seeded global
// generator, so a fixed seed reproduces the same piece stream and
// GetPlayoutScore stays deterministic across runs, per the determinism
// requirement on the core's output.
type sevenBagSequencer struct {
	bag []int
	src rand.Source
	rng *frand.RNG
}

func newSevenBagSequencer(seed uint64) *sevenBagSequencer {
	seedBytes := make([]byte, 32) // frand.NewCustom requires a 32-byte key
	binary.LittleEndian.PutUint64(seedBytes, seed)
	return &sevenBagSequencer{
		src: rand.NewSource(seed),
		rng: frand.NewCustom(seedBytes, 1024, 20),
	}
}

func (s *sevenBagSequencer) next() int {
	if len(s.bag) == 0 {
		s.bag = []int{0, 1, 2, 3, 4, 5, 6}
		s.rng.Shuffle(len(s.bag), func(i, j int) {
			s.bag[i], s.bag[j] = s.bag[j], s.bag[i]
		})
	}
	idx := int(rand.New(s.src).Int63() % int64(len(s.bag)))
	p := s.bag[idx]
	s.bag = append(s.bag[:idx], s.bag[idx+1:]...)
	return p
}

// GetPlayoutScore runs a short greedy playout from resultingState,
// picking the best-looking placement each ply by FastEval, and returns
// the final state's heuristic score as the playout's value estimate.
// seedPieceIndex seeds the piece sequencer, so equal inputs give equal
// scores. The timeline used for each playout ply is taken from
// pieceRangeContexts[0] ("X..." when that is empty); the other two
// contexts are not read.
func GetPlayoutScore(resultingState board.State, pieceRangeContexts [3]search.PieceRangeContext, seedPieceIndex int) float64 {
	gs := resultingState
	seq := newSevenBagSequencer(uint64(seedPieceIndex) + 1)
	timeline := pieceRangeContexts[0].InputFrameTimeline
	if timeline == "" {
		timeline = "X..."
	}

	ec := search.EvalContext{
		PieceRangeContext:      search.PieceRangeContext{InputFrameTimeline: timeline},
		ShouldRewardLineClears: true,
	}

	for ply := 0; ply < PlayoutDepth; ply++ {
		p := piece.All[seq.next()]
		placements := movesearch.MoveSearch(gs, p, timeline, movesearch.Options{TucksEnabled: false})
		if len(placements) == 0 {
			break
		}
		best := placements[0]
		bestScore := FastEval(gs, AdvanceGameState(gs, best, ec), best, ec)
		for _, candidate := range placements[1:] {
			after := AdvanceGameState(gs, candidate, ec)
			score := FastEval(gs, after, candidate, ec)
			if score > bestScore {
				bestScore = score
				best = candidate
			}
		}
		gs = AdvanceGameState(gs, best, ec)
	}

	return FastEval(resultingState, gs, movesearch.LockPlacement{}, ec)
}

// Package search implements the depth-2 Cartesian placement search and
// the playout-backed aggregation that collapses it into a per-first-
// placement value map.
package search

import (
	"fmt"

	"github.com/rob-opsi/StackRabbit/internal/board"
	"github.com/rob-opsi/StackRabbit/internal/movesearch"
	"github.com/rob-opsi/StackRabbit/internal/piece"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// MapOffset and UnexploredPenalty are the boundary constants described
// in the component design: values are biased above the map's zero
// default so a plain "greater than" comparison doubles as a presence
// check, and unexplored candidates are pessimized relative to playouts.
const (
	MapOffset         = 20000
	UnexploredPenalty = -500
)

// PieceRangeContext is the external per-query context the core only
// reads the timeline field of; everything else is opaque to the core
// and passed through to collaborators untouched.
type PieceRangeContext struct {
	InputFrameTimeline string
}

// EvalContext bundles the evaluator weights and options external to the
// core; the core passes it through to the Collaborators untouched.
type EvalContext struct {
	PieceRangeContext      PieceRangeContext
	Weights                interface{}
	ShouldRewardLineClears bool
}

// Placement identifies a single piece pose.
type Placement struct {
	X, Y, Rot int
}

// Depth2Possibility is one (first-placement, second-placement) pair
// produced by SearchDepth2, scored by the external evaluator.
type Depth2Possibility struct {
	FirstPlacement  movesearch.LockPlacement
	SecondPlacement movesearch.LockPlacement
	ResultingState  board.State
	EvalScore       float64
	ImmediateReward float64
}

// Collaborators groups the external operations the core depends on but
// never implements itself (see the external-interfaces table): applying
// a placement to a board, fast heuristic evaluation, line-clear reward
// shaping, and bounded-lookahead playouts.
type Collaborators struct {
	AdvanceGameState   func(gs board.State, lp movesearch.LockPlacement, ec EvalContext) board.State
	FastEval           func(before, after board.State, lp movesearch.LockPlacement, ec EvalContext) float64
	GetLineClearFactor func(deltaLines int, ec EvalContext) float64
	GetPlayoutScore    func(resultingState board.State, pieceRangeContexts [3]PieceRangeContext, seedPieceIndex int) float64
}

// Logger is the optional logger type; nopLogger supplies a disabled one
// when none is set, the same pattern movesearch.Options follows.
type Logger = *zerolog.Logger

func nopLogger() Logger {
	l := zerolog.Nop()
	return &l
}

// sortedTopN is the bounded sorted-insertion container described in the
// design notes: a small "sorted" prefix, descending (equal scores keep
// their insertion order), plus an
// unordered "tail" holding everything displaced or never promoted.
type sortedTopN struct {
	n      int
	sorted []Depth2Possibility
	tail   []Depth2Possibility
}

func newSortedTopN(n int) *sortedTopN {
	return &sortedTopN{n: n}
}

func (s *sortedTopN) insert(p Depth2Possibility) {
	if len(s.sorted) < s.n {
		i := 0
		for i < len(s.sorted) && s.sorted[i].EvalScore >= p.EvalScore {
			i++
		}
		s.sorted = append(s.sorted, Depth2Possibility{})
		copy(s.sorted[i+1:], s.sorted[i:])
		s.sorted[i] = p
		return
	}
	if p.EvalScore > s.sorted[len(s.sorted)-1].EvalScore {
		displaced := s.sorted[len(s.sorted)-1]
		i := 0
		for i < len(s.sorted)-1 && s.sorted[i].EvalScore >= p.EvalScore {
			i++
		}
		copy(s.sorted[i+1:], s.sorted[i:len(s.sorted)-1])
		s.sorted[i] = p
		s.tail = append(s.tail, displaced)
		return
	}
	s.tail = append(s.tail, p)
}

func (s *sortedTopN) list() []Depth2Possibility {
	out := make([]Depth2Possibility, 0, len(s.sorted)+len(s.tail))
	out = append(out, s.sorted...)
	out = append(out, s.tail...)
	return out
}

// SearchDepth2 enumerates every (firstPlacement, secondPlacement) pair
// reachable from gs, scores each with the supplied collaborators, and
// returns a list whose first keepTopN entries are sorted descending by
// EvalScore (equal scores keep their insertion order); the remainder is
// unordered.
func SearchDepth2(gs board.State, firstPiece, secondPiece piece.Piece, keepTopN int, ec EvalContext, collab Collaborators, opt movesearch.Options) []Depth2Possibility {
	log := opt.Logger
	if log == nil {
		log = nopLogger()
	}

	firstPlacements := movesearch.MoveSearch(gs, firstPiece, ec.PieceRangeContext.InputFrameTimeline, opt)
	container := newSortedTopN(keepTopN)

	for _, first := range firstPlacements {
		afterFirst := collab.AdvanceGameState(gs, first, ec)
		firstReward := collab.GetLineClearFactor(afterFirst.Lines-gs.Lines, ec)

		secondPlacements := movesearch.MoveSearch(afterFirst, secondPiece, ec.PieceRangeContext.InputFrameTimeline, opt)
		for _, second := range secondPlacements {
			resulting := collab.AdvanceGameState(afterFirst, second, ec)
			evalScore := firstReward + collab.FastEval(afterFirst, resulting, second, ec)
			secondReward := collab.GetLineClearFactor(resulting.Lines-afterFirst.Lines, ec)

			container.insert(Depth2Possibility{
				FirstPlacement:  first,
				SecondPlacement: second,
				ResultingState:  resulting,
				EvalScore:       evalScore,
				ImmediateReward: firstReward + secondReward,
			})
		}
	}

	result := container.list()
	log.Debug().Int("count", len(result)).Msg("depth-2 search complete")
	return result
}

// AggregationParams exposes the tunables the source material hard-codes
// as magic numbers, per the design notes' Open Question: the multiplier
// applied to keepTopN to size the depth-2 prefix considered for
// aggregation, and the per-first-key cap on playout-eligible updates.
type AggregationParams struct {
	NumSortedMultiplier int
	PerKeyRepeatCap     int
}

// DefaultAggregationParams matches the source material's hard-coded
// policy: consider twice the requested top-N, and stop granting
// playouts to a first-placement key after three updates.
var DefaultAggregationParams = AggregationParams{
	NumSortedMultiplier: 2,
	PerKeyRepeatCap:     3,
}

// EncodeFirstPlacementKey formats a first placement as the "rot|x|y"
// string used as the aggregated map's key.
func EncodeFirstPlacementKey(lp movesearch.LockPlacement) string {
	return fmt.Sprintf("%d|%d|%d", lp.RotationIndex, lp.X, lp.Y)
}

// DecodeFirstPlacementKey parses a key produced by
// EncodeFirstPlacementKey back into its (rotation, x, y) components.
func DecodeFirstPlacementKey(key string) (rot, x, y int, ok bool) {
	n, err := fmt.Sscanf(key, "%d|%d|%d", &rot, &x, &y)
	return rot, x, y, err == nil && n == 3
}

// GetLockValueLookup collapses the depth-2 result set into a map from
// first-placement key to the best aggregated value found for it,
// spending a bounded playout budget on the most promising candidates
// and pessimizing the rest with UnexploredPenalty.
func GetLockValueLookup(gs board.State, firstPiece, secondPiece piece.Piece, keepTopN int, ec EvalContext, pieceRangeContexts [3]PieceRangeContext, collab Collaborators, params AggregationParams, opt movesearch.Options) map[string]float64 {
	log := opt.Logger
	if log == nil {
		log = nopLogger()
	}

	numSorted := params.NumSortedMultiplier * keepTopN
	possibilities := SearchDepth2(gs, firstPiece, secondPiece, numSorted, ec, collab, opt)

	biased := map[string]float64{}
	repeatCount := map[string]int{}
	playedOutCount := 0

	for i, poss := range possibilities {
		key := EncodeFirstPlacementKey(poss.FirstPlacement)

		shouldPlayout := i < numSorted &&
			playedOutCount < keepTopN &&
			repeatCount[key] < params.PerKeyRepeatCap

		var candidate float64
		if shouldPlayout {
			candidate = poss.ImmediateReward + collab.GetPlayoutScore(poss.ResultingState, pieceRangeContexts, secondPiece.Index)
			playedOutCount++
		} else {
			candidate = poss.ImmediateReward + poss.EvalScore + UnexploredPenalty
		}

		biasedCandidate := candidate + MapOffset
		if existing, ok := biased[key]; !ok || biasedCandidate > existing {
			biased[key] = biasedCandidate
			repeatCount[key]++
		}
	}

	result := make(map[string]float64, len(biased))
	for k, v := range biased {
		result[k] = v - MapOffset
	}
	log.Debug().Int("keys", len(result)).Int("playouts", playedOutCount).Msg("aggregation complete")
	return result
}

// FirstPlacementKeys returns the distinct first-placement keys present
// in a lookup result, built with lo.Uniq so callers presenting a
// summary (e.g. the demo CLI's sorted printout) don't need their own
// field-by-field loop to collect them.
func FirstPlacementKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return lo.Uniq(keys)
}

// Package movesearch implements frame-accurate enumeration of reachable
// lock placements for a single piece, including tuck/spin placements
// found by the tuck finder.
package movesearch

import (
	"github.com/rob-opsi/StackRabbit/internal/board"
	"github.com/rob-opsi/StackRabbit/internal/piece"
	"github.com/rob-opsi/StackRabbit/internal/timing"

	"github.com/rs/zerolog"
)

// unreached is the sentinel y value larger than any real resting row,
// meaning no drop has yet reached this (rotation, x) column.
const unreached = 99

// SimState is a snapshot of an in-flight piece during exploration.
type SimState struct {
	X, Y          int
	RotationIndex int
	FrameIndex    int
	ARRIndex      int
	Piece         piece.Piece
}

// LockPlacement is a piece pose the piece can come to rest at, along
// with the notation of the tuck input (if any) that reaches it.
type LockPlacement struct {
	X, Y             int
	RotationIndex    int
	InputSequenceTag string
	TuckNotation     rune
	Piece            piece.Piece
}

// availableTuckCols maps a (rotation, x) pair, encoded as rot*10+x+2, to
// the resting y a straight drop from that column would reach, or
// unreached. This is the mutable resource C3 and C4 share; it is always
// function-local, never global.
type availableTuckCols [40]int

func newAvailableTuckCols() availableTuckCols {
	var t availableTuckCols
	for i := range t {
		t[i] = unreached
	}
	return t
}

func tuckColIndex(rot, x int) int {
	idx := rot*10 + x + 2
	if idx < 0 || idx >= 40 {
		return -1
	}
	return idx
}

// Options configures a move search call.
type Options struct {
	TucksEnabled bool
	Logger       *zerolog.Logger
}

func (o Options) logger() *zerolog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	disabled := zerolog.Nop()
	return &disabled
}

// simState is the package-internal mutable exploration cursor; SimState
// is the exported, immutable snapshot taken of it.
type simState struct {
	x, y, rot, frame, arr int
}

// MoveSearch enumerates every reachable lock placement for p spawning
// fresh onto gs's board, under the given gravity/timeline.
func MoveSearch(gs board.State, p piece.Piece, tl string, opt Options) []LockPlacement {
	return search(gs, p, tl, simState{
		x: piece.SpawnX, y: p.InitialY, rot: 0, frame: 0, arr: 0,
	}, opt)
}

// AdjustmentSearch enumerates reachable lock placements starting from a
// mid-air pose, used when the first piece of a depth-2 query has
// already been partially moved. existingRot is accepted for parity with
// the external entry point's signature but, matching the source
// material's own adjustmentSearch, the start state's rotationIndex and
// frameIndex are always reset to 0 rather than seeded from it — only x,
// y, and the ARR index carry the caller's mid-air progress forward.
func AdjustmentSearch(gs board.State, p piece.Piece, tl string, dx, dy, existingRot, framesElapsed int, arrWasReset bool, opt Options) []LockPlacement {
	arr := framesElapsed
	if arrWasReset {
		arr = 0
	}
	return search(gs, p, tl, simState{
		x: piece.SpawnX + dx, y: p.InitialY + dy, rot: 0, frame: 0, arr: arr,
	}, opt)
}

func search(gs board.State, p piece.Piece, tl string, start simState, opt Options) []LockPlacement {
	log := opt.logger()
	gravity := timing.Gravity(gs.Level)
	minYByNumInputs := timing.ComputeYValueOfEachShift(tl, gravity, p.InitialY)
	tuckCols := newAvailableTuckCols()

	if board.Collision(gs.Board, p, start.rot, start.x, start.y) {
		log.Debug().Msg("spawn pose collides, no placements")
		return nil
	}

	var legal []simState
	legal = append(legal, start)

	for rot := 0; rot < piece.NumRotations; rot++ {
		if !p.Rotations[rot].Present {
			continue
		}
		legal = append(legal, exploreHorizontally(gs.Board, p, tl, gravity, start, -1, -99, rot)...)
		legal = append(legal, exploreHorizontally(gs.Board, p, tl, gravity, start, 1, 99, rot)...)
		legal = append(legal, explorePlacementsNearSpawn(gs.Board, p, tl, gravity, start, rot)...)
	}

	locks := make([]LockPlacement, 0, len(legal))
	seen := map[[3]int]bool{}
	for _, st := range legal {
		lp, ok := dropToLock(gs, p, st, &tuckCols)
		if !ok {
			continue
		}
		key := [3]int{lp.RotationIndex, lp.X, lp.Y}
		if seen[key] {
			continue
		}
		seen[key] = true
		locks = append(locks, lp)
	}

	if opt.TucksEnabled {
		tucks := findTucks(gs, p, tuckCols, minYByNumInputs)
		locks = append(locks, tucks...)
	}

	log.Debug().Int("placements", len(locks)).Msg("move search complete")
	return locks
}

// dropToLock converts a mid-air simState into its resting LockPlacement
// by dropping straight down to the first colliding row, recording the
// resting y into tuckCols.
func dropToLock(gs board.State, p piece.Piece, st simState, tuckCols *availableTuckCols) (LockPlacement, bool) {
	if board.Collision(gs.Board, p, st.rot, st.x, st.y) {
		return LockPlacement{}, false
	}
	y := st.y
	for !board.Collision(gs.Board, p, st.rot, st.x, y+1) {
		y++
	}
	if idx := tuckColIndex(st.rot, st.x); idx >= 0 && y < tuckCols[idx] {
		tuckCols[idx] = y
	}
	return LockPlacement{
		X: st.x, Y: y, RotationIndex: st.rot,
		TuckNotation: piece.NonTuckNotation, Piece: p,
	}, true
}

// rotateTowardsGoal implements the rotation policy: equal poses don't
// move; a single left rotation is preferred only when goal is exactly
// one step counter-clockwise from cur, otherwise always rotate right.
func rotateTowardsGoal(cur, goal int) int {
	if cur == goal {
		return cur
	}
	if goal == (cur+3)%4 {
		return goal
	}
	return (cur + 1) % 4
}

// exploreHorizontally simulates frames moving the piece toward
// (maxOrMinX, goalRotationIndex) from start, collecting every new legal
// mid-air pose reached along the way and stopping at the first lock.
func exploreHorizontally(b board.Board, p piece.Piece, tl string, gravity int, start simState, shiftIncrement, maxOrMinX, goalRotationIndex int) []simState {
	cur := start
	var out []simState

	for i := 0; i < 10000; i++ {
		newPlacement := false

		if timing.ShouldPerformInputsThisFrame(tl, cur.frame) {
			if cur.x != maxOrMinX {
				nx := cur.x + shiftIncrement
				if board.Collision(b, p, cur.rot, nx, cur.y) {
					return out
				}
				cur.x = nx
				newPlacement = true
			}
			if cur.rot != goalRotationIndex {
				nrot := rotateTowardsGoal(cur.rot, goalRotationIndex)
				if board.Collision(b, p, nrot, cur.x, cur.y) {
					return out
				}
				cur.rot = nrot
				if cur.rot == goalRotationIndex {
					newPlacement = true
				} else {
					newPlacement = false
				}
			}
		}

		locked := false
		if timing.IsGravityFrame(cur.frame, gravity) {
			if board.Collision(b, p, cur.rot, cur.x, cur.y+1) {
				locked = true
			} else {
				cur.y++
			}
		}

		cur.frame++

		if newPlacement && cur.rot == goalRotationIndex {
			out = append(out, cur)
		}
		if locked {
			return out
		}
	}
	return out
}

// explorePlacementsNearSpawn re-explores with a small xOffset range to
// catch placements reachable only by rotating more than shifting (the
// 180-degree case). Only rotation 2 is widened; other rotations use a
// zero-width offset, mirroring the heuristic carried over unverified
// from the source material. Each offset drives a single bounded
// exploreHorizontally call from the untouched start pose — shiftIncrement
// and maxOrMinX are both the offset itself, so x moves (if at all) only
// through the ordinary frame-timed input phase, never by teleporting the
// pose before simulation starts.
func explorePlacementsNearSpawn(b board.Board, p piece.Piece, tl string, gravity int, start simState, goalRotationIndex int) []simState {
	offsets := []int{0}
	if goalRotationIndex == 2 {
		offsets = []int{-1, 0, 1}
	}
	var out []simState
	for _, xOffset := range offsets {
		out = append(out, exploreHorizontally(b, p, tl, gravity, start, xOffset, start.x+xOffset, goalRotationIndex)...)
	}
	return out
}

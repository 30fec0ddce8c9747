// Package piece defines the immutable piece descriptors consumed by move
// search: rotation row masks, bottom-surface vectors, bounds tables, and
// tuck-origin spots. The table values themselves are precomputed at init
// time from the same hand-derived 4x4 bit layouts the teacher project
// used to derive its own pieces.go constants, rather than hand-typed
// per rotation.
package piece

const (
	// NumPieces is the size of the closed piece alphabet.
	NumPieces = 7
	// NumRotations is the number of rotation slots every piece reserves,
	// even if only 1, 2 or 4 are populated.
	NumRotations = 4
	// SpawnX is the x coordinate every piece spawns at.
	SpawnX = 3
)

// Index values for the seven standard pieces. SpawnYSpecialIndex names
// which of these gets the y=-2 spawn row; consult it rather than assuming
// index 0.
const (
	O = 0
	I = 1
	T = 2
	J = 3
	L = 4
	S = 5
	Z = 6
)

// SpawnYSpecialIndex is the piece index that spawns at y=-2 instead of
// y=-1. In the source material this is the O piece; callers must not
// assume this is piece index 0 in an arbitrary reordering, which is why
// it is named explicitly here rather than inlined as a literal 0 check.
const SpawnYSpecialIndex = O

// Rotation holds one oriented view of a piece.
type Rotation struct {
	// RowMasks are the four piece rows, pre-aligned into bits 9..6 so that
	// board.ShiftBy(RowMasks[r], x) lines up directly against a board row's
	// bits 9..0. A RowMasks[0] of -1 (represented here via Present=false)
	// marks an absent rotation.
	Present      bool
	RowMasks     [4]uint32
	BottomSurface [4]int // relative row of lowest filled cell per column, -1 if empty
	MaxY         int
	// BoundsTable[x+2] is true if a piece at this x collides purely on
	// horizontal bounds, independent of board contents. x ranges roughly
	// -2..11 hence the +2 offset.
	BoundsTable [14]bool
}

// TuckOriginSpot describes one way this piece's geometry can fill an
// overhang cell: position the piece at (overhangX-OffsetX, overhangY-OffsetY)
// in rotation Orientation.
type TuckOriginSpot struct {
	Orientation int
	OffsetX     int
	OffsetY     int
}

// Piece is the full descriptor for one of the seven standard pieces.
type Piece struct {
	Index           int
	NumOrientations int // 1, 2, or 4
	InitialY        int
	Rotations       [NumRotations]Rotation
	TuckOriginSpots []TuckOriginSpot
}

// TuckInput is one entry of the closed alphabet of recognized tuck input
// sequences. Notation is a single rune identifying the input in a
// LockPlacement's TuckNotation field.
type TuckInput struct {
	XChange        int
	RotationChange int
	Notation       rune
}

// NonTuckNotation is the sentinel used for non-tuck LockPlacements.
const NonTuckNotation = '.'

// TuckInputs is the closed, compile-time alphabet of recognized tuck
// input sequences: single shifts, double shifts, single rotations, and
// the shift+rotate compound inputs needed to reach the overhangs a
// drop-only search cannot reach. Ordered pure shifts first, then single
// rotations, then the shift+rotate compounds.
var TuckInputs = []TuckInput{
	{XChange: -1, RotationChange: 0, Notation: 'L'},
	{XChange: 1, RotationChange: 0, Notation: 'R'},
	{XChange: -2, RotationChange: 0, Notation: 'l'},
	{XChange: 2, RotationChange: 0, Notation: 'r'},
	{XChange: 0, RotationChange: 1, Notation: 'A'},
	{XChange: 0, RotationChange: -1, Notation: 'B'},
	{XChange: -1, RotationChange: 1, Notation: 'E'},
	{XChange: 1, RotationChange: 1, Notation: 'F'},
	{XChange: -1, RotationChange: -1, Notation: 'G'},
	{XChange: 1, RotationChange: -1, Notation: 'H'},
}

// rawBits holds the same kind of 4x4-bounding-box-per-rotation bit layout
// the teacher project derives its own piece constants from by hand; here
// each rotation is listed explicitly as four 4-bit nibbles, top row first,
// bit 3 is the leftmost column of the box.
var rawBits = [NumPieces][NumRotations][4]uint8{
	O: {
		{0b0000, 0b0110, 0b0110, 0b0000},
		{}, {}, {},
	},
	I: {
		{0b0000, 0b0000, 0b1111, 0b0000},
		{0b0010, 0b0010, 0b0010, 0b0010},
		{}, {},
	},
	T: {
		{0b0000, 0b1110, 0b0100, 0b0000},
		{0b0100, 0b1100, 0b0100, 0b0000},
		{0b0000, 0b0100, 0b1110, 0b0000},
		{0b0100, 0b0110, 0b0100, 0b0000},
	},
	J: {
		{0b0000, 0b1110, 0b0010, 0b0000},
		{0b0100, 0b0100, 0b1100, 0b0000},
		{0b1000, 0b1110, 0b0000, 0b0000},
		{0b0110, 0b0100, 0b0100, 0b0000},
	},
	L: {
		{0b0000, 0b1110, 0b1000, 0b0000},
		{0b1100, 0b0100, 0b0100, 0b0000},
		{0b0010, 0b1110, 0b0000, 0b0000},
		{0b0100, 0b0100, 0b0110, 0b0000},
	},
	S: {
		{0b0000, 0b0110, 0b1100, 0b0000},
		{0b1000, 0b1100, 0b0100, 0b0000},
		{}, {},
	},
	Z: {
		{0b0000, 0b1100, 0b0110, 0b0000},
		{0b0100, 0b1100, 0b1000, 0b0000},
		{}, {},
	},
}

// numOrientationsByPiece mirrors utils.hpp's orientation-count rule:
// O has 1, S/Z/I have 2, J/L/T have 4.
var numOrientationsByPiece = [NumPieces]int{
	O: 1, I: 2, T: 4, J: 4, L: 4, S: 2, Z: 2,
}

// All is the fully populated table for the seven standard pieces,
// computed once at init time from rawBits the way the teacher project
// derives its own lookup tables from its hand-coded piece bit constants.
var All [NumPieces]Piece

func init() {
	for idx := 0; idx < NumPieces; idx++ {
		p := Piece{
			Index:           idx,
			NumOrientations: numOrientationsByPiece[idx],
		}
		if idx == SpawnYSpecialIndex {
			p.InitialY = -2
		} else {
			p.InitialY = -1
		}
		for rot := 0; rot < NumRotations; rot++ {
			nibbles := rawBits[idx][rot]
			present := nibbles != [4]uint8{}
			r := Rotation{Present: present}
			if present {
				for row := 0; row < 4; row++ {
					r.RowMasks[row] = uint32(nibbles[row]) << 6
				}
				r.BottomSurface = bottomSurfaceOf(nibbles)
				r.MaxY = maxYOf(nibbles)
				r.BoundsTable = boundsTableOf(nibbles)
			}
			p.Rotations[rot] = r
		}
		p.TuckOriginSpots = tuckOriginSpotsOf(idx, p.Rotations)
		All[idx] = p
	}
}

// bottomSurfaceOf returns, for each of the 4 bounding-box columns, the
// row index (0=top) of the lowest filled cell, or -1 if the column is
// empty in this rotation.
func bottomSurfaceOf(nibbles [4]uint8) [4]int {
	var out [4]int
	for col := 0; col < 4; col++ {
		colBit := uint8(1 << uint(3-col))
		out[col] = -1
		for row := 3; row >= 0; row-- {
			if nibbles[row]&colBit != 0 {
				out[col] = row
				break
			}
		}
	}
	return out
}

// maxYOf computes the lowest legal y (the board is Height rows, 0-indexed
// from the top); a piece whose bounding box has k empty rows at the
// bottom may descend k rows further than one with none.
func maxYOf(nibbles [4]uint8) int {
	lowerEmpty := 0
	for row := 3; row >= 0 && nibbles[row] == 0; row-- {
		lowerEmpty++
	}
	return boardHeightConst - 4 + lowerEmpty
}

const boardHeightConst = 20

// boundsTableOf precomputes, for every x in [-2,11], whether placing the
// piece at that x violates horizontal bounds regardless of y or board
// contents. Index is x+2.
func boundsTableOf(nibbles [4]uint8) [14]bool {
	var out [14]bool
	for x := -2; x <= 11; x++ {
		violates := false
		for row := 0; row < 4; row++ {
			if nibbles[row] == 0 {
				continue
			}
			for col := 0; col < 4; col++ {
				if nibbles[row]&(1<<uint(3-col)) == 0 {
					continue
				}
				boardCol := x + col
				if boardCol < 0 || boardCol >= 10 {
					violates = true
				}
			}
		}
		out[x+2] = violates
	}
	return out
}

// tuckOriginSpotsOf enumerates, for each populated rotation, one spot per
// filled cell of that rotation, offset so that the cell lands on the
// overhang cell. This mirrors the geometric
// relationship the original tuck-spot tables encode: each spot says "if
// the overhang is at (cX,cY), this rotation placed at
// (cX-OffsetX, cY-OffsetY) will occupy it".
func tuckOriginSpotsOf(pieceIdx int, rotations [4]Rotation) []TuckOriginSpot {
	var spots []TuckOriginSpot
	for rot, r := range rotations {
		if !r.Present {
			continue
		}
		for row := 0; row < 4; row++ {
			if r.RowMasks[row] == 0 {
				continue
			}
			for col := 0; col < 4; col++ {
				if r.RowMasks[row]&(1<<uint(9-col)) == 0 {
					continue
				}
				spots = append(spots, TuckOriginSpot{
					Orientation: rot,
					OffsetX:     col,
					OffsetY:     row,
				})
			}
		}
	}
	return spots
}

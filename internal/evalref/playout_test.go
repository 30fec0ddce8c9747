package evalref

import (
	"testing"

	"github.com/rob-opsi/StackRabbit/internal/board"
	"github.com/rob-opsi/StackRabbit/internal/search"
)

func TestGetPlayoutScoreDoesNotPanicOnEmptyBoard(t *testing.T) {
	gs := board.State{Level: 18}
	prc := [3]search.PieceRangeContext{
		{InputFrameTimeline: "X..."},
		{InputFrameTimeline: "X..."},
		{InputFrameTimeline: "X..."},
	}
	_ = GetPlayoutScore(gs, prc, 0)
}

func TestSevenBagSequencerCoversAllPiecesBeforeRepeat(t *testing.T) {
	seq := newSevenBagSequencer(42)
	seen := map[int]bool{}
	for i := 0; i < 7; i++ {
		p := seq.next()
		if seen[p] {
			t.Fatalf("piece %d repeated within the first bag", p)
		}
		seen[p] = true
	}
	if len(seen) != 7 {
		t.Fatalf("expected all seven pieces drawn, got %d distinct", len(seen))
	}
}

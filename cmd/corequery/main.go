// Command corequery is a demo harness for the placement search engine:
// it loads a board+piece scenario from a YAML file, wires the reference
// collaborators, runs one query, and prints the resulting placement map.
// It is not the production command-line interface; it exists only to
// give the otherwise library-shaped core an executable entry point.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/rob-opsi/StackRabbit/internal/board"
	"github.com/rob-opsi/StackRabbit/internal/evalref"
	"github.com/rob-opsi/StackRabbit/internal/movesearch"
	"github.com/rob-opsi/StackRabbit/internal/piece"
	"github.com/rob-opsi/StackRabbit/internal/search"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// scenario mirrors a query's external inputs, loadable from YAML.
type scenario struct {
	Rows               []int  `yaml:"rows"`
	Level              int    `yaml:"level"`
	FirstPiece         string `yaml:"firstPiece"`
	SecondPiece        string `yaml:"secondPiece"`
	KeepTopN           int    `yaml:"keepTopN"`
	InputFrameTimeline string `yaml:"inputFrameTimeline"`
	Verbose            bool   `yaml:"verbose"`
}

var pieceIndexByName = map[string]int{
	"O": piece.O, "I": piece.I, "T": piece.T,
	"J": piece.J, "L": piece.L, "S": piece.S, "Z": piece.Z,
}

func main() {
	var scenarioPath string

	root := &cobra.Command{
		Use:   "corequery",
		Short: "Run a single depth-2 placement search query from a YAML scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(scenarioPath)
		},
	}
	root.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "path to a scenario YAML file (required)")
	root.MarkFlagRequired("scenario")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading scenario: %w", err)
	}
	var sc scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return fmt.Errorf("parsing scenario: %w", err)
	}

	logLevel := zerolog.InfoLevel
	if sc.Verbose {
		logLevel = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.NewConsoleWriter()).Level(logLevel).With().Timestamp().Logger()

	gs, err := buildGameState(sc)
	if err != nil {
		return err
	}

	firstIdx, ok := pieceIndexByName[sc.FirstPiece]
	if !ok {
		return fmt.Errorf("unknown first piece %q", sc.FirstPiece)
	}
	secondIdx, ok := pieceIndexByName[sc.SecondPiece]
	if !ok {
		return fmt.Errorf("unknown second piece %q", sc.SecondPiece)
	}

	ec := search.EvalContext{
		PieceRangeContext:      search.PieceRangeContext{InputFrameTimeline: sc.InputFrameTimeline},
		ShouldRewardLineClears: true,
	}
	collab := search.Collaborators{
		AdvanceGameState:   evalref.AdvanceGameState,
		FastEval:           evalref.FastEval,
		GetLineClearFactor: evalref.GetLineClearFactor,
		GetPlayoutScore:    evalref.GetPlayoutScore,
	}
	opt := movesearch.Options{TucksEnabled: true, Logger: &logger}

	prc := [3]search.PieceRangeContext{
		ec.PieceRangeContext, ec.PieceRangeContext, ec.PieceRangeContext,
	}

	result := search.GetLockValueLookup(
		gs, piece.All[firstIdx], piece.All[secondIdx], sc.KeepTopN,
		ec, prc, collab, search.DefaultAggregationParams, opt,
	)

	printSortedResult(result)
	return nil
}

func buildGameState(sc scenario) (board.State, error) {
	if len(sc.Rows) != board.Height {
		return board.State{}, fmt.Errorf("scenario must specify exactly %d board rows, got %d", board.Height, len(sc.Rows))
	}
	var b board.Board
	for i, v := range sc.Rows {
		b[i] = uint32(v)
	}
	return board.State{
		Board:        b,
		SurfaceArray: board.GetSurfaceArray(b),
		Level:        sc.Level,
	}, nil
}

func printSortedResult(result map[string]float64) {
	keys := search.FirstPlacementKeys(result)
	sort.Slice(keys, func(i, j int) bool { return result[keys[i]] > result[keys[j]] })
	for _, k := range keys {
		fmt.Printf("%s\t%.2f\n", k, result[k])
	}
}

// Package frontend implements a stdio-driven line protocol for the search
// core, speaking the UCI-style command vocabulary: position/go/stop/quit
// in, info/bestmove out.
package frontend

import (
	"bufio"
	"fmt"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/engine"
)

// Frontend drives an engine.Engine from the line-oriented command
// vocabulary: it owns no search state of its own beyond the current
// position and the move history needed for repetition detection.
type Frontend struct {
	engine   *engine.Engine
	position *board.Position
	out      func(string)

	// Position history for repetition detection
	positionHashes []uint64

	// Search state
	searching     bool
	searchDone    chan struct{}
	stopRequested atomic.Bool

	// CPU profiling
	profileFile *os.File
}

// New creates a new Frontend wrapping the given engine, writing protocol
// output lines to standard output.
func New(eng *engine.Engine) *Frontend {
	return NewLineSession(eng, func(line string) error {
		_, err := fmt.Println(line)
		return err
	})
}

// NewLineSession creates a Frontend whose protocol output is handed to out
// one line at a time (without a trailing newline), so callers such as the
// WebSocket server can frame each line as its own message instead of
// writing to standard output.
func NewLineSession(eng *engine.Engine, out func(line string) error) *Frontend {
	return &Frontend{
		engine:   eng,
		position: board.NewPosition(),
		out: func(line string) {
			if err := out(line); err != nil {
				fmt.Fprintf(os.Stderr, "frontend: write failed: %v\n", err)
			}
		},
	}
}

// Run starts the stdio command loop, reading commands line by line from
// standard input until "quit" or EOF.
func (f *Frontend) Run() {
	scanner := bufio.NewScanner(os.Stdin)

	for scanner.Scan() {
		f.HandleLine(scanner.Text())
	}
}

// HandleLine processes one command line. It is the shared entry point for
// both the stdio loop and the WebSocket transport.
func (f *Frontend) HandleLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	parts := strings.Fields(line)
	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "uci":
		f.handleHello()
	case "isready":
		f.out("readyok")
	case "ucinewgame":
		f.handleNewGame()
	case "position":
		if board.DebugMoveValidation {
			fmt.Fprintf(os.Stderr, "info string DEBUG: position %s\n", strings.Join(args, " "))
		}
		f.handlePosition(args)
	case "go":
		f.handleGo(args)
	case "stop":
		f.handleStop()
	case "quit":
		f.handleQuit()
	case "setoption":
		f.handleSetOption(args)
	case "d":
		f.out(f.position.ToFEN())
	case "eval":
		f.handleEval()
	case "moves":
		f.handleMoves()
	case "perft":
		f.handlePerft(args)
	}
}

// handleHello responds to the protocol handshake command.
func (f *Frontend) handleHello() {
	f.out("id name ChessPlay")
	f.out("id author ChessPlay Team")
	f.out("")
	f.out("option name Hash type spin default 64 min 1 max 4096")
	f.out("option name Debug type check default false")
	f.out("uciok")
}

// handleNewGame resets the engine for a new game.
func (f *Frontend) handleNewGame() {
	f.engine.Clear()
	f.position = board.NewPosition()
	f.positionHashes = []uint64{f.position.Hash}
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (f *Frontend) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	f.positionHashes = nil
	var moveStart int

	if args[0] == "startpos" {
		f.position = board.NewPosition()
		moveStart = 1
		for i, arg := range args {
			if arg == "moves" {
				moveStart = i + 1
				break
			}
		}
	} else if args[0] == "fen" {
		fenEnd := len(args)
		for i, arg := range args[1:] {
			if arg == "moves" {
				fenEnd = i + 1
				break
			}
		}

		fenStr := strings.Join(args[1:fenEnd], " ")
		pos, err := board.ParseFEN(fenStr)
		if err != nil {
			f.out(fmt.Sprintf("info string %v", err))
			return
		}
		f.position = pos

		moveStart = len(args)
		for i, arg := range args {
			if arg == "moves" {
				moveStart = i + 1
				break
			}
		}
	} else {
		return
	}

	f.positionHashes = append(f.positionHashes, f.position.Hash)

	if moveStart < len(args) {
		for _, moveStr := range args[moveStart:] {
			move := f.parseMove(moveStr)
			if move == board.NoMove {
				f.out(fmt.Sprintf("info string %v: %s", board.ErrIllegalMove, moveStr))
				return
			}
			f.position.MakeMove(move)
			f.position.UpdateCheckers()
			f.positionHashes = append(f.positionHashes, f.position.Hash)
		}
	}

	if board.DebugMoveValidation {
		legal := f.position.GenerateLegalMoves()
		var legalStrs []string
		for i := 0; i < legal.Len() && i < 8; i++ {
			legalStrs = append(legalStrs, legal.Get(i).String())
		}
		fmt.Fprintf(os.Stderr, "info string DEBUG: After position setup - hash=%016x inCheck=%v legal=%v...\n",
			f.position.Hash, f.position.InCheck(), legalStrs)
	}
}

// parseMove converts a move string to a board.Move. Coordinate notation
// ("e2e4"/"e7e8q") is tried first since that's what "position ... moves"
// sends; anything that doesn't parse as coordinates falls back to SAN
// ("Nf3", "exd5", "O-O") so a human pasting a move list still works.
func (f *Frontend) parseMove(moveStr string) board.Move {
	if move := f.parseCoordinateMove(moveStr); move != board.NoMove {
		return move
	}
	move, err := board.ParseSAN(moveStr, f.position)
	if err != nil {
		return board.NoMove
	}
	return move
}

// parseCoordinateMove converts a "e2e4"/"e7e8q"-style move string to a
// board.Move via board.ParseMove (which supplies the castle/en-passant
// encoding and the default queen promotion), accepting the result only
// if it is legal in the current position.
func (f *Frontend) parseCoordinateMove(moveStr string) board.Move {
	move, err := board.ParseMove(moveStr, f.position)
	if err != nil || move == board.NoMove {
		return board.NoMove
	}
	if !f.position.GenerateLegalMoves().Contains(move) {
		return board.NoMove
	}
	return move
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Depth     int
	Nodes     uint64
	MoveTime  time.Duration
	Infinite  bool
	WTime     time.Duration
	BTime     time.Duration
	WInc      time.Duration
	BInc      time.Duration
	MovesToGo int
}

// toUCILimits converts parsed "go" options into the engine's time-control
// vocabulary, from whichever side is on move's perspective.
func (o GoOptions) toUCILimits(us board.Color) engine.UCILimits {
	limits := engine.UCILimits{
		Depth:     o.Depth,
		Nodes:     o.Nodes,
		MoveTime:  o.MoveTime,
		Infinite:  o.Infinite,
		MovesToGo: o.MovesToGo,
	}
	limits.Time[board.White] = o.WTime
	limits.Time[board.Black] = o.BTime
	limits.Inc[board.White] = o.WInc
	limits.Inc[board.Black] = o.BInc
	return limits
}

// handleGo starts a search with the given parameters.
func (f *Frontend) handleGo(args []string) {
	opts := f.parseGoOptions(args)

	// The last entry is the current position itself, which the search
	// adds to its own history; pass only the positions before it.
	history := f.positionHashes
	if len(history) > 0 {
		history = history[:len(history)-1]
	}
	f.engine.SetPositionHistory(history)

	f.engine.OnInfo = func(info engine.SearchInfo) {
		f.sendInfo(info)
	}

	limits := f.calculateLimits(opts)

	f.searching = true
	f.stopRequested.Store(false)
	f.searchDone = make(chan struct{})

	pos := f.position.Copy()

	go func() {
		defer close(f.searchDone)

		bestMove := f.engine.SearchWithLimits(pos, limits)

		f.searching = false

		validationPos := f.position.Copy()
		if bestMove != board.NoMove {
			legal := validationPos.GenerateLegalMoves()
			found := false
			for i := 0; i < legal.Len(); i++ {
				if legal.Get(i) == bestMove {
					found = true
					break
				}
			}
			if found {
				if board.DebugMoveValidation {
					fmt.Fprintf(os.Stderr, "info string DEBUG: Sending bestmove %s (hash=%016x)\n", bestMove.String(), validationPos.Hash)
				}
				f.out(fmt.Sprintf("bestmove %s", bestMove.String()))
				return
			}
			fmt.Fprintf(os.Stderr, "info string CRITICAL: Search returned illegal move %s (not in %d legal moves)\n", bestMove.String(), legal.Len())
			var legalStrs []string
			for i := 0; i < legal.Len() && i < 10; i++ {
				legalStrs = append(legalStrs, legal.Get(i).String())
			}
			fmt.Fprintf(os.Stderr, "info string Legal moves (first 10): %v\n", legalStrs)
		} else {
			fmt.Fprintf(os.Stderr, "info string WARNING: Search returned NoMove, using fallback\n")
		}

		legal := validationPos.GenerateLegalMoves()
		if legal.Len() > 0 {
			f.out(fmt.Sprintf("bestmove %s", legal.Get(0).String()))
		} else {
			f.out("bestmove 0000")
		}
	}()
}

// parseGoOptions parses "go" command arguments.
func (f *Frontend) parseGoOptions(args []string) GoOptions {
	opts := GoOptions{}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				opts.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "nodes":
			if i+1 < len(args) {
				n, _ := strconv.ParseUint(args[i+1], 10, 64)
				opts.Nodes = n
				i++
			}
		case "movetime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.MoveTime = time.Duration(ms) * time.Millisecond
				i++
			}
		case "infinite":
			opts.Infinite = true
		case "wtime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.WTime = time.Duration(ms) * time.Millisecond
				i++
			}
		case "btime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.BTime = time.Duration(ms) * time.Millisecond
				i++
			}
		case "winc":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.WInc = time.Duration(ms) * time.Millisecond
				i++
			}
		case "binc":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.BInc = time.Duration(ms) * time.Millisecond
				i++
			}
		case "movestogo":
			if i+1 < len(args) {
				opts.MovesToGo, _ = strconv.Atoi(args[i+1])
				i++
			}
		}
	}

	return opts
}

// calculateLimits converts GoOptions to engine.SearchLimits. Clock-based
// time controls (wtime/btime/winc/binc) are handed to a TimeManager, which
// tracks game phase via the ply count, and is passed through to the engine
// so the iterative-deepening loop can abort a partial iteration at the
// manager's hard limit and shrink or stretch the optimum as the best move
// stabilizes or keeps changing; depth/nodes/movetime/infinite pass
// straight through.
func (f *Frontend) calculateLimits(opts GoOptions) engine.SearchLimits {
	limits := engine.SearchLimits{}

	if opts.Infinite {
		limits.Infinite = true
		return limits
	}

	if opts.Depth > 0 {
		limits.Depth = opts.Depth
	}

	if opts.Nodes > 0 {
		limits.Nodes = opts.Nodes
	}

	if opts.MoveTime > 0 {
		limits.MoveTime = opts.MoveTime
	} else if opts.WTime > 0 || opts.BTime > 0 {
		tm := engine.NewTimeManager()
		tm.Init(opts.toUCILimits(f.position.SideToMove), f.position.SideToMove, len(f.positionHashes))
		limits.MoveTime = tm.MaximumTime()
		limits.TimeManager = tm
	}

	return limits
}

// sendInfo outputs one "info depth ... score ... pv ..." line.
func (f *Frontend) sendInfo(info engine.SearchInfo) {
	var parts []string

	parts = append(parts, fmt.Sprintf("depth %d", info.Depth))

	if info.Score > engine.MateScore-100 {
		mateIn := (engine.MateScore - info.Score + 1) / 2
		parts = append(parts, fmt.Sprintf("score mate %d", mateIn))
	} else if info.Score < -engine.MateScore+100 {
		mateIn := -(engine.MateScore + info.Score + 1) / 2
		parts = append(parts, fmt.Sprintf("score mate %d", mateIn))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %d", info.Score))
	}

	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))

	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}

	if info.HashFull > 0 {
		parts = append(parts, fmt.Sprintf("hashfull %d", info.HashFull))
	}

	if len(info.PV) > 0 {
		validPV := make([]string, 0, len(info.PV))
		validMoves := make([]board.Move, 0, len(info.PV))
		testPos := f.position.Copy()
		for _, move := range info.PV {
			legal := testPos.GenerateLegalMoves()
			isLegal := false
			for i := 0; i < legal.Len(); i++ {
				if legal.Get(i) == move {
					isLegal = true
					break
				}
			}
			if !isLegal {
				break
			}
			validPV = append(validPV, move.String())
			validMoves = append(validMoves, move)
			testPos.MakeMove(move)
		}
		if len(validPV) > 0 {
			parts = append(parts, "pv "+strings.Join(validPV, " "))
			sanPV := board.MovesToSAN(f.position, validMoves)
			parts = append(parts, "pvsan "+strings.Join(sanPV, " "))
		}
	}

	f.out("info " + strings.Join(parts, " "))
}

// handleStop stops the current search and waits for it to finish.
func (f *Frontend) handleStop() {
	if f.searching {
		f.stopRequested.Store(true)
		f.engine.Stop()
		<-f.searchDone
	}
}

// handleQuit stops any search in progress and exits the process.
func (f *Frontend) handleQuit() {
	f.handleStop()
	if f.profileFile != nil {
		pprof.StopCPUProfile()
		f.profileFile.Close()
		fmt.Fprintf(os.Stderr, "info string CPU profile saved\n")
	}
	os.Exit(0)
}

// handleSetOption processes "setoption" commands.
func (f *Frontend) handleSetOption(args []string) {
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	switch strings.ToLower(name) {
	case "hash":
		// Resizing the live transposition table requires rebuilding the
		// engine; not supported mid-game.
	case "debug":
		enabled := strings.ToLower(value) == "true"
		board.DebugMoveValidation = enabled
		if enabled {
			fmt.Fprintf(os.Stderr, "info string Debug mode enabled\n")
		}
	case "cpuprofile":
		if f.profileFile != nil {
			pprof.StopCPUProfile()
			f.profileFile.Close()
			fmt.Fprintf(os.Stderr, "info string CPU profile stopped\n")
			f.profileFile = nil
		}
		if value != "" && value != "stop" {
			file, err := os.Create(value)
			if err != nil {
				fmt.Fprintf(os.Stderr, "info string Failed to create profile: %v\n", err)
				return
			}
			if err := pprof.StartCPUProfile(file); err != nil {
				file.Close()
				fmt.Fprintf(os.Stderr, "info string Failed to start profile: %v\n", err)
				return
			}
			f.profileFile = file
			fmt.Fprintf(os.Stderr, "info string CPU profiling to %s\n", value)
		}
	}
}

// handleEval prints a breakdown of the static evaluation of the current
// position: the full evaluator score, the bare material balance it starts
// from, and the positional remainder, all in centipawns from the side to
// move's perspective.
func (f *Frontend) handleEval() {
	total := f.engine.Evaluate(f.position)
	material := engine.EvaluateMaterial(f.position)
	f.out(fmt.Sprintf("info string eval cp %d material cp %d positional cp %d",
		total, material, total-material))
}

// handleMoves lists the legal moves from the current position in SAN, one
// per line — a diagnostics counterpart to "d" for reading a position's
// options the way a human would rather than as raw coordinate pairs. Each
// move is rendered against the current position directly rather than via
// MovesToSAN, since these are alternatives from one position, not a played
// sequence.
func (f *Frontend) handleMoves() {
	legal := f.position.GenerateLegalMoves()
	for i := 0; i < legal.Len(); i++ {
		f.out(legal.Get(i).ToSAN(f.position))
	}
}

// handlePerft runs a perft test from the current position.
func (f *Frontend) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		depth, _ = strconv.Atoi(args[0])
	}

	start := time.Now()
	nodes := f.engine.Perft(f.position, depth)
	elapsed := time.Since(start)

	f.out(fmt.Sprintf("Nodes: %d", nodes))
	f.out(fmt.Sprintf("Time: %v", elapsed))
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		f.out(fmt.Sprintf("NPS: %.0f", nps))
	}
}

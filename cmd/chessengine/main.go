package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"

	"github.com/hailam/chessplay/internal/engine"
	"github.com/hailam/chessplay/internal/frontend"
	"github.com/hailam/chessplay/internal/server"
)

var (
	hashMB     = flag.Int("hash", 64, "transposition table size in megabytes")
	pawnMB     = flag.Int("pawnhash", 4, "pawn structure cache size in megabytes")
	workers    = flag.Int("workers", 1, "number of lazy-SMP search workers (1 = single-threaded)")
	listenAddr = flag.String("listen", "", "if set, also serve the WebSocket transport on this address (e.g. :8080)")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	eng := engine.NewEngineWithEvaluator(*hashMB, engine.NewStaticEvaluator(*pawnMB))
	eng.SetWorkers(*workers)

	if *listenAddr != "" {
		srv := server.New(*hashMB)
		go func() {
			fmt.Fprintf(os.Stderr, "chessengine: websocket transport listening on %s\n", *listenAddr)
			if err := srv.ListenAndServe(*listenAddr); err != nil {
				log.Fatalf("websocket server: %v", err)
			}
		}()
	}

	fe := frontend.New(eng)
	fe.Run()
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/time/rate"

	"github.com/dishant0406/dishant-portfolio-sub000/pkg/stream"
)

// runStreamCmd implements `genui stream`: it feeds a recorded transcript to
// a session in fixed-size chunks, as a model response would arrive, and
// prints the final derived state.
func runStreamCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("stream", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		inPath     string
		configPath string
		chunkSize  int
		chunkRate  float64
		jsonOutput bool
		verbose    bool
	)

	cmd.StringVar(&inPath, "in", "", "Path to the transcript (REQUIRED)")
	cmd.StringVar(&configPath, "config", os.Getenv("GENUI_CONFIG"), "Path to a YAML config profile")
	cmd.IntVar(&chunkSize, "chunk", 64, "Chunk size in bytes")
	cmd.Float64Var(&chunkRate, "rate", 0, "Chunks per second (0 = unlimited)")
	cmd.BoolVar(&jsonOutput, "json", false, "Output the final snapshot as JSON")
	cmd.BoolVar(&verbose, "verbose", false, "Print a line per chunk")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if inPath == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --in is required")
		return 2
	}

	f, err := os.Open(inPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: open transcript: %v\n", err)
		return 2
	}
	defer func() { _ = f.Close() }()

	ctx := context.Background()
	rt, err := setup(ctx, stderr, configPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer rt.close(ctx)

	opts := []stream.Option{stream.WithLogger(rt.logger), stream.WithMetrics(rt.metrics)}
	if chunkRate > 0 {
		opts = append(opts, stream.WithLimiter(rate.NewLimiter(rate.Limit(chunkRate), 1)))
	}
	session := stream.NewSession(opts...)

	chunks := 0
	opCtx, done := rt.telemetry.TrackOperation(ctx, "genui.stream")
	err = session.Feed(opCtx, f, chunkSize, func(snap stream.Snapshot) {
		chunks++
		if verbose {
			_, _ = fmt.Fprintf(stderr, "chunk %d: patches=%d elements=%d\n", chunks, snap.Patches, len(snap.Tree.Elements))
		}
	})
	done(err)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	snap := session.Snapshot()
	if jsonOutput {
		writeJSON(stdout, snap)
		return 0
	}

	_, _ = fmt.Fprintf(stdout, "%sSESSION%s %s\n", colorBold, colorReset, session.ID())
	_, _ = fmt.Fprintf(stdout, "  chunks:   %d\n", chunks)
	_, _ = fmt.Fprintf(stdout, "  root:     %s\n", snap.Tree.Root)
	_, _ = fmt.Fprintf(stdout, "  elements: %d\n", len(snap.Tree.Elements))
	_, _ = fmt.Fprintf(stdout, "  patches:  %d (applied %d, ignored %d, dropped %d)\n",
		snap.Patches, snap.Applied, snap.Ignored, snap.Dropped)
	if snap.Remainder != "" {
		_, _ = fmt.Fprintf(stdout, "  pending:  %d bytes\n", len(snap.Remainder))
	}
	return 0
}

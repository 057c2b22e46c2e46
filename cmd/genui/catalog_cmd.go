package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
)

// runCatalogCmd implements `genui catalog`.
func runCatalogCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("catalog", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		configPath string
		jsonOutput bool
	)
	cmd.StringVar(&configPath, "config", os.Getenv("GENUI_CONFIG"), "Path to a YAML config profile")
	cmd.BoolVar(&jsonOutput, "json", false, "Output the catalog definition as JSON")

	if err := cmd.Parse(args); err != nil {
		return 2
	}

	ctx := context.Background()
	rt, err := setup(ctx, stderr, configPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer rt.close(ctx)

	if jsonOutput {
		writeJSON(stdout, rt.catalog)
		return 0
	}
	if err := rt.catalog.Describe(stdout); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

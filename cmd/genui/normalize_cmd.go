package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dishant0406/dishant-portfolio-sub000/pkg/normalize"
	"github.com/dishant0406/dishant-portfolio-sub000/pkg/store"
)

// runNormalizeCmd implements `genui normalize`.
//
// Exit codes:
//
//	0 = tree is valid (possibly after repairs)
//	1 = tree rejected (ERR_TREE_SCHEMA or ERR_TREE_TOO_LARGE)
//	2 = usage or runtime error
func runNormalizeCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("normalize", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		treePath   string
		dataPath   string
		configPath string
		maxBytes   int
		jsonOutput bool
		persist    bool
	)

	cmd.StringVar(&treePath, "tree", "", "Path to the candidate tree JSON (REQUIRED)")
	cmd.StringVar(&dataPath, "data", "", "Path to the candidate data model JSON")
	cmd.StringVar(&configPath, "config", os.Getenv("GENUI_CONFIG"), "Path to a YAML config profile")
	cmd.IntVar(&maxBytes, "max-bytes", 0, "Override the canonical size bound in bytes")
	cmd.BoolVar(&jsonOutput, "json", false, "Output the result as JSON")
	cmd.BoolVar(&persist, "store", false, "Record a render receipt for the validated tree")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if treePath == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --tree is required")
		return 2
	}

	treeJSON, err := os.ReadFile(treePath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: read tree: %v\n", err)
		return 2
	}
	var dataJSON []byte
	if dataPath != "" {
		if dataJSON, err = os.ReadFile(dataPath); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: read data: %v\n", err)
			return 2
		}
	}

	ctx := context.Background()
	rt, err := setup(ctx, stderr, configPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer rt.close(ctx)

	if maxBytes <= 0 {
		maxBytes = rt.cfg.MaxTreeBytes
	}
	nz := normalize.New(rt.catalog,
		normalize.WithMaxBytes(maxBytes),
		normalize.WithMaxDepth(rt.cfg.MaxLegacyDepth),
		normalize.WithLogger(rt.logger),
		normalize.WithMetrics(rt.metrics),
	)

	opCtx, done := rt.telemetry.TrackOperation(ctx, "genui.normalize",
		attribute.String("genui.tree_file", filepath.Base(treePath)))
	res, err := nz.NormalizeJSON(opCtx, treeJSON, dataJSON)
	done(err)
	if err != nil {
		var te *normalize.TreeError
		if !errors.As(err, &te) {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		if jsonOutput {
			writeJSON(stdout, map[string]any{"valid": false, "error": te})
		} else {
			_, _ = fmt.Fprintf(stdout, "%sINVALID%s %s\n", colorBold, colorReset, te.Code)
			if te.Path != "" {
				_, _ = fmt.Fprintf(stdout, "  path:    %s\n", te.Path)
			}
			_, _ = fmt.Fprintf(stdout, "  message: %s\n", te.Message)
		}
		return 1
	}

	var receipt *store.Receipt
	if persist {
		receipt, err = recordReceipt(ctx, rt, res)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
	}

	if jsonOutput {
		out := map[string]any{"valid": true, "result": res}
		if receipt != nil {
			out["render_id"] = receipt.RenderID
		}
		writeJSON(stdout, out)
		return 0
	}

	_, _ = fmt.Fprintf(stdout, "%sVALID%s root=%s elements=%d bytes=%d\n",
		colorBold+colorGreen, colorReset, res.Tree.Root, len(res.Tree.Elements), res.Bytes)
	_, _ = fmt.Fprintf(stdout, "  hash: %s\n", res.Hash)
	for _, r := range res.Repairs {
		_, _ = fmt.Fprintf(stdout, "  repair %-14s %s %s\n", r.Kind, r.Path, r.Detail)
	}
	if receipt != nil {
		_, _ = fmt.Fprintf(stdout, "  receipt: %s\n", receipt.RenderID)
	}
	return 0
}

func recordReceipt(ctx context.Context, rt *runtime, res *normalize.Result) (*store.Receipt, error) {
	receipts, closeDB, err := rt.openReceiptStore(ctx)
	if err != nil {
		return nil, err
	}
	defer closeDB()

	receipt, err := store.NewReceipt(res)
	if err != nil {
		return nil, err
	}
	if err := receipts.Store(ctx, receipt); err != nil {
		return nil, fmt.Errorf("store receipt: %w", err)
	}
	return receipt, nil
}

func writeJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

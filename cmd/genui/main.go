package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dishant0406/dishant-portfolio-sub000/pkg/catalog"
	"github.com/dishant0406/dishant-portfolio-sub000/pkg/config"
	"github.com/dishant0406/dishant-portfolio-sub000/pkg/observability"
)

const version = "0.4.0"

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run is the entrypoint for testing.
//
// Exit codes:
//
//	0 = success
//	1 = the tree failed validation
//	2 = usage or runtime error
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		printUsage(stderr)
		return 2
	}

	switch args[1] {
	case "normalize":
		return runNormalizeCmd(args[2:], stdout, stderr)
	case "stream":
		return runStreamCmd(args[2:], stdout, stderr)
	case "catalog":
		return runCatalogCmd(args[2:], stdout, stderr)
	case "receipts":
		return runReceiptsCmd(args[2:], stdout, stderr)
	case "version", "--version":
		_, _ = fmt.Fprintf(stdout, "genui %s\n", version)
		return 0
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", args[1])
		printUsage(stderr)
		return 2
	}
}

// ANSI Colors
const (
	colorReset = "\033[0m"
	colorBold  = "\033[1m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
)

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintf(w, "%sgenui %s%s\n\n", colorBold, version, colorReset)
	_, _ = fmt.Fprintf(w, "%sUSAGE:%s\n  genui <command> [flags]\n\n", colorBold, colorReset)
	_, _ = fmt.Fprintf(w, "%sCOMMANDS:%s\n", colorBold+colorCyan, colorReset)
	printCommand(w, "normalize", "Repair and validate a candidate tree (--tree, --data, --store, --json)")
	printCommand(w, "stream", "Replay a patch transcript in chunks (--in, --chunk, --rate, --json)")
	printCommand(w, "catalog", "Describe the component catalog (--json)")
	printCommand(w, "receipts", "List stored render receipts (--limit, --json)")
	printCommand(w, "version", "Show version information")
	printCommand(w, "help", "Show this help")
}

func printCommand(w io.Writer, name, desc string) {
	_, _ = fmt.Fprintf(w, "  %s%-10s%s %s\n", colorGreen, name, colorReset, desc)
}

// runtime is the process-wide state commands share: configuration, the
// catalog and telemetry.
type runtime struct {
	cfg       *config.Config
	logger    *slog.Logger
	catalog   *catalog.Catalog
	telemetry *observability.Provider
	metrics   *observability.Metrics
}

// setup loads configuration (environment, then the optional YAML profile),
// builds the logger, loads the catalog and starts telemetry.
func setup(ctx context.Context, stderr io.Writer, profilePath string) (*runtime, error) {
	cfg := config.Load()
	if profilePath != "" {
		loaded, err := config.LoadFile(profilePath, cfg)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	var (
		cat *catalog.Catalog
		err error
	)
	if cfg.CatalogPath != "" {
		cat, err = catalog.LoadFile(cfg.CatalogPath)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	otelCfg := observability.DefaultConfig()
	otelCfg.ServiceVersion = version
	otelCfg.Enabled = cfg.Telemetry.Enabled
	otelCfg.OTLPEndpoint = cfg.Telemetry.Endpoint
	otelCfg.Insecure = cfg.Telemetry.Insecure
	provider, err := observability.New(ctx, otelCfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	metrics, err := observability.NewMetrics(provider.Meter())
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	logger.DebugContext(ctx, "runtime ready",
		"catalog", cat.Version().String(),
		"max_tree_bytes", cfg.MaxTreeBytes,
		"lite_mode", cfg.LiteMode(),
	)
	return &runtime{cfg: cfg, logger: logger, catalog: cat, telemetry: provider, metrics: metrics}, nil
}

func (rt *runtime) close(ctx context.Context) {
	if err := rt.telemetry.Shutdown(ctx); err != nil {
		rt.logger.WarnContext(ctx, "telemetry shutdown", "error", err)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/pflag"

	"langprune/internal/config"
	"langprune/internal/database"
	"langprune/internal/exitcodes"
	"langprune/internal/logging"
	"langprune/internal/metrics"
	"langprune/internal/prune"
	"langprune/internal/safety"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	os.Exit(run(ctx, os.Args[1:], os.Stderr))
}

// defaultPlatform maps the host OS onto a packager platform tag
func defaultPlatform() string {
	if runtime.GOOS == "windows" {
		return "win32"
	}
	return runtime.GOOS
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	flags := pflag.NewFlagSet("langprune", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintln(stderr, "Usage: langprune [flags] <build-path>")
		flags.PrintDefaults()
	}

	configPath := flags.StringP("config", "c", "", "Path to YAML configuration file")
	langs := flags.StringSliceP("lang", "l", nil, "Locale to keep (repeatable or comma separated, e.g. en,en_US)")
	plat := flags.String("platform", defaultPlatform(), "Target platform (darwin, mas, win32, linux)")
	arch := flags.String("arch", runtime.GOARCH, "Target architecture (recorded in history only)")
	electronVersion := flags.String("electron-version", "", "Electron version of the build (accepted for compatibility)")
	allowAll := flags.Bool("allow-removing-all", false, "Allow removing every discovered language")
	dryRun := flags.Bool("dry-run", false, "Show what would be removed without deleting")
	keep := flags.StringSlice("keep", nil, "Glob of locale entries to always keep (repeatable)")
	dbPath := flags.String("db", "", "Path to SQLite prune history database")
	textfile := flags.String("metrics-textfile", "", "Write Prometheus metrics to this file")
	logFile := flags.String("log-file", "", "Append log output to this file")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitcodes.Success
		}
		return exitcodes.InvalidConfig
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return exitcodes.InvalidConfig
	}
	buildPath := flags.Arg(0)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "ERROR: Failed to load config: %v\n", err)
			return exitcodes.InvalidConfig
		}
		cfg = loaded
	}

	// flags win over the config file
	if flags.Changed("lang") {
		cfg.Languages = *langs
	}
	if flags.Changed("keep") {
		cfg.KeepPatterns = *keep
	}
	if flags.Changed("allow-removing-all") {
		cfg.AllowRemovingAll = *allowAll
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = *dryRun
	}
	if flags.Changed("db") {
		cfg.DatabasePath = *dbPath
	}
	if flags.Changed("metrics-textfile") {
		cfg.MetricsTextfile = *textfile
	}
	if flags.Changed("log-file") {
		cfg.Logging.File = *logFile
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "ERROR: Invalid configuration: %v\n", err)
		return exitcodes.InvalidConfig
	}

	logger := logging.NewWithWriter(cfg, stderr)
	if cfg.DryRun {
		logger.Println("DRY RUN MODE: No files will be deleted")
	}

	metrics.Init()
	if cfg.MetricsTextfile != "" {
		defer func() {
			if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
				logger.Printf("ERROR: Failed to write metrics textfile: %v", err)
			}
		}()
	}

	p := prune.New(prune.Options{
		AllowRemovingAll: cfg.AllowRemovingAll,
		DryRun:           cfg.DryRun,
		KeepPatterns:     cfg.KeepPatterns,
		ProtectedPaths:   cfg.ProtectedPaths,
	}, logger)

	if cfg.DatabasePath != "" {
		db, err := database.NewPruneDB(cfg.DatabasePath)
		if err != nil {
			logger.Printf("ERROR: Failed to open database: %v", err)
			return exitcodes.RuntimeError
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Printf("ERROR: Failed to close database: %v", err)
			}
		}()
		p.SetRecorder(db)
	}

	report, err := p.Prune(ctx, prune.Request{
		Languages:       cfg.Languages,
		BuildPath:       buildPath,
		ElectronVersion: *electronVersion,
		Platform:        *plat,
		Arch:            *arch,
	})
	if err != nil {
		logger.Printf("ERROR: %v", err)
		return exitCode(err)
	}

	logger.Printf("Done: run=%s removed=%d retained=%d dir=%s",
		report.RunID, len(report.Removed), len(report.Retained), report.ResourceDir)
	return exitcodes.Success
}

// exitCode maps a prune failure onto the CLI exit code contract
func exitCode(err error) int {
	switch {
	case errors.Is(err, prune.ErrRefuseRemoveAll):
		return exitcodes.InvalidConfig
	case safety.IsViolation(err):
		return exitcodes.SafetyViolation
	default:
		return exitcodes.RuntimeError
	}
}

// Package prune removes locale units that are not on a language whitelist
// from a packaged application's resource directory.
package prune

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/rs/xid"

	"langprune/internal/database"
	"langprune/internal/fsops"
	"langprune/internal/metrics"
	"langprune/internal/platform"
	"langprune/internal/safety"
)

// PruneLogger interface for structured logging in the pruner
type PruneLogger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// stdLogger wraps standard log.Logger to implement PruneLogger
type stdLogger struct {
	*log.Logger
}

func (l *stdLogger) Info(msg string, args ...interface{}) {
	l.logWithLevel("INFO", msg, args...)
}

func (l *stdLogger) Error(msg string, args ...interface{}) {
	l.logWithLevel("ERROR", msg, args...)
}

func (l *stdLogger) logWithLevel(level, msg string, args ...interface{}) {
	line := fmt.Sprintf("[%s] %s", level, msg)
	for i := 0; i+1 < len(args); i += 2 {
		line += fmt.Sprintf(" %v=%v", args[i], args[i+1])
	}
	l.Logger.Println(line)
}

// Recorder persists one history row per excluded entry
type Recorder interface {
	RecordRemoval(r database.Record) error
}

// Options control a Pruner
type Options struct {
	// AllowRemovingAll permits a run that leaves no locale unit behind
	AllowRemovingAll bool
	// DryRun computes and reports the plan without deleting anything
	DryRun bool
	// KeepPatterns are doublestar globs over lower-cased entry names that
	// are always retained
	KeepPatterns []string
	// ProtectedPaths are extra resource directories that must never be pruned
	ProtectedPaths []string
}

// Request describes one packaged build to prune
type Request struct {
	Languages       []string
	BuildPath       string
	ElectronVersion string // accepted for host compatibility, unused
	Platform        string
	Arch            string
}

// Report describes what a run found and did
type Report struct {
	RunID       string
	Platform    platform.ID
	ResourceDir string
	Entries     []string
	Retained    []string
	Excluded    []string
	Removed     []string
	DryRun      bool
}

// Pruner performs locale pruning with structured logging
type Pruner struct {
	opts     Options
	logger   PruneLogger
	fs       fsops.FS
	recorder Recorder
}

// New creates a Pruner backed by the real filesystem
func New(opts Options, logger *log.Logger) *Pruner {
	if logger == nil {
		logger = log.Default()
	}
	return &Pruner{
		opts:   opts,
		logger: &stdLogger{Logger: logger},
		fs:     fsops.OSFS{},
	}
}

// SetFS replaces the filesystem used for listing and removal
func (p *Pruner) SetFS(fsys fsops.FS) {
	p.fs = fsys
}

// SetRecorder enables prune history
func (p *Pruner) SetRecorder(r Recorder) {
	p.recorder = r
}

// Prune resolves the platform's resource directory, computes the entries
// not covered by req.Languages and removes them one at a time.
//
// Errors: enumeration failures are returned unchanged; a whitelist that
// would remove every entry returns *ConfigurationError before anything is
// touched; the first failed or unauthorized removal aborts the loop with
// *DeletionError. The returned Report is always non-nil.
func (p *Pruner) Prune(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()
	strategy := platform.Lookup(req.Platform)
	dir := strategy.ResourceDir(req.BuildPath)

	report := &Report{
		RunID:       xid.New().String(),
		Platform:    strategy.ID,
		ResourceDir: dir,
		DryRun:      p.opts.DryRun,
	}

	entries, err := strategy.Enumerate(p.fs, dir)
	if err != nil {
		p.logger.Error("Failed to list locale resources", "dir", dir, "error", err)
		metrics.RecordError("enumerate")
		return report, err
	}
	report.Entries = entries

	candidates := Candidates(req.Languages, strategy.Extension())
	report.Retained, report.Excluded = Partition(entries, candidates, p.opts.KeepPatterns)

	if !p.opts.AllowRemovingAll && len(entries) > 0 && len(report.Excluded) == len(entries) {
		metrics.RecordError("refused")
		return report, &ConfigurationError{Excluded: len(report.Excluded), Total: len(entries)}
	}

	p.logger.Info(fmt.Sprintf("Removing %d of %d languages from the packaged app", len(report.Excluded), len(entries)),
		"platform", strategy.ID, "dir", dir, "dry_run", p.opts.DryRun)

	err = p.removeExcluded(ctx, req, report)
	metrics.RecordRun(string(strategy.ID), len(report.Removed), len(report.Retained), time.Since(start))
	return report, err
}

func (p *Pruner) removeExcluded(ctx context.Context, req Request, report *Report) error {
	if len(report.Excluded) == 0 {
		return nil
	}

	validator := safety.NewValidator(report.ResourceDir, p.opts.ProtectedPaths)

	for _, entry := range report.Excluded {
		if err := ctx.Err(); err != nil {
			metrics.RecordError("canceled")
			return deletionError(entry, report, err)
		}

		target, err := validator.ValidateEntry(entry)
		if err != nil {
			p.logger.Error("Refusing to remove", "entry", entry, "dir", report.ResourceDir, "error", err)
			p.record(req, report, entry, database.ActionError, err)
			metrics.RecordError("safety")
			return deletionError(entry, report, err)
		}

		if p.opts.DryRun {
			p.logger.Info("[DRY RUN] Would remove locale", "path", target)
			p.record(req, report, entry, database.ActionDryRun, nil)
			continue
		}

		if err := p.fs.RemoveAll(target); err != nil {
			p.logger.Error("Failed to remove locale", "path", target, "error", err)
			p.record(req, report, entry, database.ActionError, err)
			metrics.RecordError("delete")
			return deletionError(entry, report, err)
		}

		report.Removed = append(report.Removed, entry)
		p.record(req, report, entry, database.ActionDelete, nil)
	}
	return nil
}

func (p *Pruner) record(req Request, report *Report, entry, action string, cause error) {
	if p.recorder == nil {
		return
	}
	r := database.Record{
		RunID:       report.RunID,
		Action:      action,
		Platform:    string(report.Platform),
		Arch:        req.Arch,
		ResourceDir: report.ResourceDir,
		Entry:       entry,
	}
	if cause != nil {
		r.ErrorMessage = cause.Error()
	}
	// history is best-effort; a failed write never fails the run
	if err := p.recorder.RecordRemoval(r); err != nil {
		p.logger.Error("Failed to record to database", "entry", entry, "error", err)
	}
}

func deletionError(entry string, report *Report, err error) *DeletionError {
	return &DeletionError{
		Entry:   entry,
		Removed: append([]string(nil), report.Removed...),
		Err:     err,
	}
}

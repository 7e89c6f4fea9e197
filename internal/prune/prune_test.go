package prune

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"langprune/internal/database"
	"langprune/internal/fsops"
	"langprune/internal/metrics"
)

func init() {
	metrics.Init()
}

func quietLogger() *log.Logger {
	return log.New(os.Stderr, "test: ", 0)
}

// packBuild lays out <root>/resources/app and <root>/locales/<files>, and
// returns the build path and the locales dir
func packBuild(t *testing.T, files ...string) (string, string) {
	t.Helper()
	root := t.TempDir()
	build := filepath.Join(root, "resources", "app")
	locales := filepath.Join(root, "locales")
	for _, d := range []string{build, locales} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("Failed to create %s: %v", d, err)
		}
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(locales, f), []byte("pak"), 0o644); err != nil {
			t.Fatalf("Failed to create %s: %v", f, err)
		}
	}
	return build, locales
}

// bundleBuild lays out <root>/Resources/app with .lproj dirs and plain files
// next to it, and returns the build path and the Resources dir
func bundleBuild(t *testing.T, dirs []string, files []string) (string, string) {
	t.Helper()
	resources := filepath.Join(t.TempDir(), "App.app", "Contents", "Resources")
	build := filepath.Join(resources, "app")
	if err := os.MkdirAll(build, 0o755); err != nil {
		t.Fatalf("Failed to create build dir: %v", err)
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(resources, d), 0o755); err != nil {
			t.Fatalf("Failed to create %s: %v", d, err)
		}
		if err := os.WriteFile(filepath.Join(resources, d, "locale.pak"), []byte("x"), 0o644); err != nil {
			t.Fatalf("Failed to populate %s: %v", d, err)
		}
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(resources, f), []byte("x"), 0o644); err != nil {
			t.Fatalf("Failed to create %s: %v", f, err)
		}
	}
	return build, resources
}

func assertExists(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if _, err := os.Stat(filepath.Join(dir, n)); err != nil {
			t.Errorf("%s should exist: %v", n, err)
		}
	}
}

func assertGone(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if _, err := os.Stat(filepath.Join(dir, n)); !os.IsNotExist(err) {
			t.Errorf("%s should be removed, stat err=%v", n, err)
		}
	}
}

func TestPackPlatformScenario(t *testing.T) {
	for _, plat := range []string{"linux", "win32"} {
		t.Run(plat, func(t *testing.T) {
			build, locales := packBuild(t, "en-US.pak", "fr.pak")

			report, err := New(Options{}, quietLogger()).Prune(context.Background(), Request{
				Languages: []string{"en_us"},
				BuildPath: build,
				Platform:  plat,
			})
			if err != nil {
				t.Fatalf("Prune failed: %v", err)
			}

			assertExists(t, locales, "en-US.pak")
			assertGone(t, locales, "fr.pak")
			if len(report.Removed) != 1 || report.Removed[0] != "fr.pak" {
				t.Errorf("Removed = %v, expected [fr.pak]", report.Removed)
			}
			if report.ResourceDir != locales {
				t.Errorf("ResourceDir = %s, expected %s", report.ResourceDir, locales)
			}
		})
	}
}

func TestApplePlatformScenario(t *testing.T) {
	for _, plat := range []string{"darwin", "mas"} {
		t.Run(plat, func(t *testing.T) {
			build, resources := bundleBuild(t, []string{"en.lproj", "fr.lproj"}, []string{"readme.txt"})

			report, err := New(Options{}, quietLogger()).Prune(context.Background(), Request{
				Languages: []string{"en"},
				BuildPath: build,
				Platform:  plat,
			})
			if err != nil {
				t.Fatalf("Prune failed: %v", err)
			}

			assertExists(t, resources, "en.lproj", "readme.txt", "app")
			assertGone(t, resources, "fr.lproj")
			if len(report.Excluded) != 1 || report.Excluded[0] != "fr.lproj" {
				t.Errorf("Excluded = %v, expected [fr.lproj]", report.Excluded)
			}
		})
	}
}

// TestNormalizationEquivalence verifies both separator spellings survive
func TestNormalizationEquivalence(t *testing.T) {
	build, locales := packBuild(t, "en-us.pak", "en_US.pak", "de.pak")

	_, err := New(Options{}, quietLogger()).Prune(context.Background(), Request{
		Languages: []string{"en_US"},
		BuildPath: build,
		Platform:  "linux",
	})
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	assertExists(t, locales, "en-us.pak", "en_US.pak")
	assertGone(t, locales, "de.pak")
}

// TestRefuseRemovingAll verifies the safety refusal deletes nothing
func TestRefuseRemovingAll(t *testing.T) {
	build, locales := packBuild(t, "a.pak", "b.pak")
	fake := &fsops.FakeFS{}

	p := New(Options{}, quietLogger())
	p.SetFS(fake)
	_, err := p.Prune(context.Background(), Request{BuildPath: build, Platform: "linux"})

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigurationError, got %v", err)
	}
	if cfgErr.Excluded != 2 || cfgErr.Total != 2 {
		t.Errorf("counts = %d/%d, expected 2/2", cfgErr.Excluded, cfgErr.Total)
	}
	if !errors.Is(err, ErrRefuseRemoveAll) {
		t.Error("ConfigurationError should match ErrRefuseRemoveAll")
	}
	if !strings.Contains(err.Error(), "2 of 2") {
		t.Errorf("message should name counts: %v", err)
	}
	if len(fake.Calls) != 0 {
		t.Errorf("expected no removals, got %v", fake.Calls)
	}
	assertExists(t, locales, "a.pak", "b.pak")
}

func TestAllowRemovingAll(t *testing.T) {
	build, locales := packBuild(t, "a.pak", "b.pak")

	report, err := New(Options{AllowRemovingAll: true}, quietLogger()).Prune(context.Background(), Request{
		BuildPath: build,
		Platform:  "linux",
	})
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	assertGone(t, locales, "a.pak", "b.pak")
	if len(report.Removed) != 2 {
		t.Errorf("Removed = %v", report.Removed)
	}
}

// TestIdempotent verifies a second run over a pruned tree is a no-op
func TestIdempotent(t *testing.T) {
	build, locales := packBuild(t, "en.pak", "fr.pak", "de.pak")
	req := Request{Languages: []string{"en"}, BuildPath: build, Platform: "linux"}

	if _, err := New(Options{}, quietLogger()).Prune(context.Background(), req); err != nil {
		t.Fatalf("first Prune failed: %v", err)
	}

	fake := &fsops.FakeFS{}
	p := New(Options{}, quietLogger())
	p.SetFS(fake)
	report, err := p.Prune(context.Background(), req)
	if err != nil {
		t.Fatalf("second Prune failed: %v", err)
	}
	if len(report.Excluded) != 0 || len(fake.Calls) != 0 {
		t.Errorf("second run excluded %v, calls %v", report.Excluded, fake.Calls)
	}
	assertExists(t, locales, "en.pak")
}

func TestUnknownPlatform(t *testing.T) {
	build, locales := packBuild(t, "fr.pak")

	for _, b := range []string{build, filepath.Join(build, "missing")} {
		report, err := New(Options{}, quietLogger()).Prune(context.Background(), Request{
			Languages: []string{"en"},
			BuildPath: b,
			Platform:  "freebsd",
		})
		if err != nil {
			t.Errorf("Prune(%s) returned error: %v", b, err)
		}
		if len(report.Entries) != 0 || len(report.Removed) != 0 {
			t.Errorf("unknown platform touched entries: %+v", report)
		}
	}
	assertExists(t, locales, "fr.pak")
}

// TestEnumerationErrorPropagates verifies the listing error comes back as-is
func TestEnumerationErrorPropagates(t *testing.T) {
	build := filepath.Join(t.TempDir(), "resources", "app")

	_, err := New(Options{}, quietLogger()).Prune(context.Background(), Request{
		Languages: []string{"en"},
		BuildPath: build,
		Platform:  "linux",
	})

	var pathErr *fs.PathError
	if !errors.As(err, &pathErr) || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected *fs.PathError not-exist, got %v", err)
	}
}

// TestDryRunNeverDeletes proves the dry-run contract
func TestDryRunNeverDeletes(t *testing.T) {
	build, locales := packBuild(t, "en.pak", "fr.pak", "de.pak")
	fake := &fsops.FakeFS{}

	p := New(Options{DryRun: true}, quietLogger())
	p.SetFS(fake)
	report, err := p.Prune(context.Background(), Request{Languages: []string{"en"}, BuildPath: build, Platform: "linux"})
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}

	if len(fake.Calls) != 0 {
		t.Errorf("DRY-RUN VIOLATION: expected 0 removals, got %v", fake.Calls)
	}
	if len(report.Excluded) != 2 || len(report.Removed) != 0 || !report.DryRun {
		t.Errorf("unexpected dry-run report: %+v", report)
	}
	assertExists(t, locales, "en.pak", "fr.pak", "de.pak")
}

// TestDeletionFailureAborts verifies the loop stops at the first failure and
// names both the failing entry and what was already removed
func TestDeletionFailureAborts(t *testing.T) {
	build, locales := packBuild(t, "a.pak", "b.pak", "c.pak", "en.pak")
	boom := errors.New("permission denied")
	fake := &fsops.FakeFS{Fail: map[string]error{filepath.Join(locales, "b.pak"): boom}}

	p := New(Options{}, quietLogger())
	p.SetFS(fake)
	_, err := p.Prune(context.Background(), Request{Languages: []string{"en"}, BuildPath: build, Platform: "linux"})

	var delErr *DeletionError
	if !errors.As(err, &delErr) {
		t.Fatalf("expected *DeletionError, got %v", err)
	}
	if delErr.Entry != "b.pak" {
		t.Errorf("Entry = %s, expected b.pak", delErr.Entry)
	}
	if len(delErr.Removed) != 1 || delErr.Removed[0] != "a.pak" {
		t.Errorf("Removed = %v, expected [a.pak]", delErr.Removed)
	}
	if !errors.Is(err, boom) {
		t.Error("DeletionError should unwrap to the cause")
	}
	expectedCalls := []string{"rmall:" + filepath.Join(locales, "a.pak")}
	if len(fake.Calls) != 1 || fake.Calls[0] != expectedCalls[0] {
		t.Errorf("Calls = %v, expected %v", fake.Calls, expectedCalls)
	}
}

func TestCanceledContextStopsLoop(t *testing.T) {
	build, locales := packBuild(t, "a.pak", "en.pak")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{}, quietLogger()).Prune(ctx, Request{Languages: []string{"en"}, BuildPath: build, Platform: "linux"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	assertExists(t, locales, "a.pak")
}

// TestPackEnumerationUnfiltered documents that a non-pack file in the
// locales directory is removed when it matches no candidate
func TestPackEnumerationUnfiltered(t *testing.T) {
	build, locales := packBuild(t, "en.pak", "notes.txt")

	if _, err := New(Options{}, quietLogger()).Prune(context.Background(), Request{
		Languages: []string{"en"},
		BuildPath: build,
		Platform:  "linux",
	}); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	assertGone(t, locales, "notes.txt")
}

func TestKeepPatternsRetain(t *testing.T) {
	build, locales := packBuild(t, "en-GB.pak", "en-US.pak", "fr.pak")

	if _, err := New(Options{KeepPatterns: []string{"en-*.pak"}}, quietLogger()).Prune(context.Background(), Request{
		Languages: []string{"fr"},
		BuildPath: build,
		Platform:  "linux",
	}); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	assertExists(t, locales, "en-GB.pak", "en-US.pak", "fr.pak")
}

type fakeRecorder struct {
	rows []database.Record
	err  error
}

func (f *fakeRecorder) RecordRemoval(r database.Record) error {
	f.rows = append(f.rows, r)
	return f.err
}

func TestRecorderReceivesRows(t *testing.T) {
	build, _ := packBuild(t, "en.pak", "fr.pak", "de.pak")
	rec := &fakeRecorder{err: errors.New("disk full")}

	p := New(Options{}, quietLogger())
	p.SetRecorder(rec)
	report, err := p.Prune(context.Background(), Request{
		Languages: []string{"en"},
		BuildPath: build,
		Platform:  "linux",
		Arch:      "arm64",
	})
	if err != nil {
		t.Fatalf("recorder failure must not fail the run: %v", err)
	}

	if len(rec.rows) != 2 {
		t.Fatalf("recorded %d rows, expected 2", len(rec.rows))
	}
	for _, r := range rec.rows {
		if r.RunID != report.RunID || r.Action != database.ActionDelete || r.Arch != "arm64" || r.Platform != "linux" {
			t.Errorf("unexpected record: %+v", r)
		}
	}
}

func TestHook(t *testing.T) {
	build, locales := packBuild(t, "en.pak", "fr.pak")

	hook := Hook([]string{"en"}, Options{})
	if err := hook(build, "30.0.0", "linux", "x64"); err != nil {
		t.Fatalf("hook failed: %v", err)
	}
	assertExists(t, locales, "en.pak")
	assertGone(t, locales, "fr.pak")

	if err := Hook(nil, Options{})(build, "30.0.0", "linux", "x64"); !errors.Is(err, ErrRefuseRemoveAll) {
		t.Errorf("expected refusal from empty whitelist, got %v", err)
	}
}

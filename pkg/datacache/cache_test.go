package datacache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"geomap-dashboard/pkg/geodata"
)

func writeCSV(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// countingStore wraps a Store so tests can see how many real parses
// happened behind the memoization.
func countingStore(t *testing.T) (*Store, *int) {
	t.Helper()
	s := New(time.Hour)
	t.Cleanup(s.Close)
	parses := 0
	s.loadFn = func(path string) (*geodata.Dataset, error) {
		parses++
		return geodata.Load(path)
	}
	return s, &parses
}

// TestLoadMemoizes: an unchanged file parses once no matter how many
// render cycles ask for it.
func TestLoadMemoizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.csv")
	writeCSV(t, path, "lat,lon\n10,20\n")

	s, parses := countingStore(t)
	first, err := s.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := s.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *parses != 1 {
		t.Errorf("parses = %d, want 1", *parses)
	}
	if first != second {
		t.Error("cache hit returned a different dataset")
	}
}

// TestLoadReloadsOnChange: a rewritten file invalidates the entry via
// the fingerprint even without the watcher's help.
func TestLoadReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.csv")
	writeCSV(t, path, "lat,lon\n10,20\n")

	s, parses := countingStore(t)
	if _, err := s.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	writeCSV(t, path, "lat,lon\n10,20\n11,21\n")
	// Force a distinct mtime in case the rewrite landed inside the
	// filesystem's timestamp granularity.
	later := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}

	ds, err := s.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *parses != 2 {
		t.Errorf("parses = %d, want 2", *parses)
	}
	if ds.ValidCount != 2 {
		t.Errorf("ValidCount = %d, want 2 after reload", ds.ValidCount)
	}
}

// TestLoadErrorNotCached: a missing file fails every call until it
// appears, then loads normally.
func TestLoadErrorNotCached(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.csv")

	s, parses := countingStore(t)
	if _, err := s.Load(path); err == nil {
		t.Fatal("Load succeeded on a missing file")
	}
	if _, err := s.Load(path); err == nil {
		t.Fatal("second Load succeeded on a missing file")
	}

	writeCSV(t, path, "lat,lon\n10,20\n")
	ds, err := s.Load(path)
	if err != nil {
		t.Fatalf("Load after create: %v", err)
	}
	if ds.ValidCount != 1 {
		t.Errorf("ValidCount = %d, want 1", ds.ValidCount)
	}
	if *parses != 3 {
		t.Errorf("parses = %d, want 3 (errors are never cached)", *parses)
	}
}

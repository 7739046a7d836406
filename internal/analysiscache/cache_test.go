package analysiscache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSetThenGetRoundTrips(t *testing.T) {
	cache, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	key := Key{Path: "/media/show/ep01.mkv", Kind: KindSilences}
	stored := []map[string]float64{
		{"start": 1.5, "end": 2.0, "duration": 0.5},
		{"start": 8.2, "end": 9.1, "duration": 0.9},
	}
	if err := cache.Set(key, stored); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var loaded []map[string]float64
	hit, err := cache.Get(key, &loaded)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !hit {
		t.Fatal("expected cache hit after Set")
	}
	if len(loaded) != 2 || loaded[0]["end"] != 2.0 {
		t.Fatalf("unexpected cached value: %#v", loaded)
	}
}

func TestGetMissLeavesOutUntouched(t *testing.T) {
	cache, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	value := "sentinel"
	hit, err := cache.Get(Key{Path: "/missing.mkv", Kind: KindVolumeStats}, &value)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if hit {
		t.Fatal("expected miss for never-set key")
	}
	if value != "sentinel" {
		t.Fatalf("out modified on miss: %q", value)
	}
}

func TestGetOrComputeMemoizes(t *testing.T) {
	cache, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	key := Key{Path: "/media/a.mkv", Kind: KindVolumeStats}
	calls := 0
	compute := func() (any, error) {
		calls++
		return map[string]float64{"mean": -23.5, "max": -4.0}, nil
	}

	var first map[string]float64
	if err := cache.GetOrCompute(key, &first, compute); err != nil {
		t.Fatalf("first GetOrCompute failed: %v", err)
	}
	var second map[string]float64
	if err := cache.GetOrCompute(key, &second, compute); err != nil {
		t.Fatalf("second GetOrCompute failed: %v", err)
	}

	if calls != 1 {
		t.Fatalf("compute invoked %d times, want 1", calls)
	}
	if first["mean"] != second["mean"] {
		t.Fatalf("hit and miss observed different values: %v vs %v", first, second)
	}
}

func TestGetOrComputeDoesNotCacheFailures(t *testing.T) {
	cache, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	key := Key{Path: "/media/a.mkv", Kind: KindSilences}
	wantErr := errors.New("analysis failed")
	var out []float64
	if err := cache.GetOrCompute(key, &out, func() (any, error) {
		return nil, wantErr
	}); !errors.Is(err, wantErr) {
		t.Fatalf("expected compute error, got %v", err)
	}

	hit, err := cache.Get(key, &out)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if hit {
		t.Fatal("failed compute must not leave a cache entry")
	}
}

func TestPopRemovesEntry(t *testing.T) {
	cache, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	key := Key{Path: "/media/b.mkv", Kind: KindSilences}
	if err := cache.Set(key, []float64{1, 2, 3}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var popped []float64
	hit, err := cache.Pop(key, &popped)
	if err != nil {
		t.Fatalf("Pop failed: %v", err)
	}
	if !hit || len(popped) != 3 {
		t.Fatalf("Pop returned hit=%v value=%v", hit, popped)
	}

	hit, err = cache.Get(key, &popped)
	if err != nil {
		t.Fatalf("Get after Pop failed: %v", err)
	}
	if hit {
		t.Fatal("entry still present after Pop")
	}

	// Popping an absent entry is silently ignored.
	if _, err := cache.Pop(key, &popped); err != nil {
		t.Fatalf("Pop on absent entry failed: %v", err)
	}
}

func TestSameKeySameStorageLocation(t *testing.T) {
	dir := t.TempDir()
	cache, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	key := Key{Path: "/media/c.mkv", Kind: KindVolumeStats}
	if err := cache.Set(key, 1); err != nil {
		t.Fatalf("first Set failed: %v", err)
	}
	if err := cache.Set(key, 2); err != nil {
		t.Fatalf("second Set failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	files := 0
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".gz" {
			files++
		}
	}
	if files != 1 {
		t.Fatalf("expected one entry file for repeated Set, found %d", files)
	}
}

func TestEvictClearsAllKinds(t *testing.T) {
	cache, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	path := "/media/d.mkv"
	if err := cache.Set(Key{Path: path, Kind: KindSilences}, []float64{1}); err != nil {
		t.Fatalf("Set silences failed: %v", err)
	}
	if err := cache.Set(Key{Path: path, Kind: KindVolumeStats}, map[string]float64{"mean": -20}); err != nil {
		t.Fatalf("Set volume failed: %v", err)
	}

	if err := cache.Evict(path); err != nil {
		t.Fatalf("Evict failed: %v", err)
	}

	var out any
	for _, kind := range []string{KindSilences, KindVolumeStats} {
		hit, err := cache.Get(Key{Path: path, Kind: kind}, &out)
		if err != nil {
			t.Fatalf("Get %s failed: %v", kind, err)
		}
		if hit {
			t.Fatalf("kind %s survived Evict", kind)
		}
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	if _, err := Open(dir, nil); err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	if _, err := Open(dir, nil); err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
}

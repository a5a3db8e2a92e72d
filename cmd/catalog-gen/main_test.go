package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/signalsfoundry/impact-simulator/core"
	"github.com/signalsfoundry/impact-simulator/internal/logging"
	"github.com/signalsfoundry/impact-simulator/kb"
)

const browseFixture = `{
  "near_earth_objects": [
    {
      "id": "3542519",
      "name": "(2010 PK9)",
      "estimated_diameter": {"meters": {"estimated_diameter_min": 100, "estimated_diameter_max": 240}},
      "close_approach_data": [{"relative_velocity": {"kilometers_per_second": "17.25"}}],
      "orbital_data": {"eccentricity": "0.6", "semi_major_axis": "1.9"}
    },
    {
      "id": "2001036",
      "name": "1036 Ganymed (A924 UB)",
      "estimated_diameter": {"meters": {"estimated_diameter_min": 37000, "estimated_diameter_max": 83000}},
      "close_approach_data": [],
      "orbital_data": {"eccentricity": "0.53", "semi_major_axis": "2.66"}
    }
  ]
}`

// loadGenerated feeds the generated file back through the simulator's
// loader, which is how it will be consumed.
func loadGenerated(t *testing.T, path string) *kb.Catalog {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open generated catalog: %v", err)
	}
	defer f.Close()

	store := kb.NewCatalog()
	if _, err := core.LoadCatalog(store, f, 0); err != nil {
		t.Fatalf("generated catalog does not load: %v", err)
	}
	return store
}

func TestRunFromSavedResponse(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "browse.json")
	out := filepath.Join(dir, "scene_data.json")
	if err := os.WriteFile(in, []byte(browseFixture), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if err := run(context.Background(), []string{"-input", in, "-out", out}, logging.Noop()); err != nil {
		t.Fatalf("run error: %v", err)
	}

	store := loadGenerated(t, out)
	if store.Len() != 1 {
		t.Fatalf("asteroids = %d, want 1", store.Len())
	}
	p, ok := store.GetProfile("3542519")
	if !ok || p.DiameterM != 170 || p.VelocityKms != 17.25 {
		t.Fatalf("profile = %+v", p)
	}
	if len(p.TrajectoryPoints) != 101 || len(store.EarthOrbit()) != 101 {
		t.Fatalf("orbit samples = %d / %d, want 101", len(p.TrajectoryPoints), len(store.EarthOrbit()))
	}
}

func TestRunFetchesFromAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Errorf("api_key = %q", r.URL.Query().Get("api_key"))
		}
		_, _ = w.Write([]byte(browseFixture))
	}))
	defer server.Close()

	t.Setenv("IMPACT_NEO_BASEURL", server.URL)
	t.Setenv("IMPACT_NEO_APIKEY", "test-key")
	t.Setenv("IMPACT_NEO_ORBITPOINTS", "12")

	out := filepath.Join(t.TempDir(), "scene_data.json")
	if err := run(context.Background(), []string{"-out", out}, logging.Noop()); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if n := len(loadGenerated(t, out).EarthOrbit()); n != 13 {
		t.Fatalf("earth orbit samples = %d, want 13", n)
	}
}

func TestRunLeavesNoFileOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()
	t.Setenv("IMPACT_NEO_BASEURL", server.URL)

	out := filepath.Join(t.TempDir(), "scene_data.json")
	if err := run(context.Background(), []string{"-out", out}, logging.Noop()); err == nil {
		t.Fatalf("expected error on 403")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("output file exists after failure: %v", err)
	}
}

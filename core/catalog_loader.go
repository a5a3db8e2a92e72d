package core

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/signalsfoundry/impact-simulator/kb"
	"github.com/signalsfoundry/impact-simulator/model"
)

// CatalogSummary reports what LoadCatalog put into the store.
type CatalogSummary struct {
	ProfileIDs        []string
	DerivedEnergyIDs  []string
	EarthOrbitSamples int
}

// LoadCatalog reads a catalog document from r and adds each asteroid to
// store. Entries missing impact_energy_kt get it derived at densityKgM3
// (zero selects the default density).
//
// The document is validated as a whole, against itself and against what
// store already holds, and then stored in one batch, so a bad entry leaves
// the store untouched.
func LoadCatalog(store *kb.Catalog, r io.Reader, densityKgM3 float64) (*CatalogSummary, error) {
	if store == nil {
		return nil, fmt.Errorf("LoadCatalog: store is nil")
	}
	if densityKgM3 == 0 {
		densityKgM3 = DefaultDensityKgM3
	}

	var doc model.CatalogDocument
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("LoadCatalog: decode failed: %w", err)
	}

	result := &CatalogSummary{
		ProfileIDs: make([]string, 0, len(doc.Asteroids)),
	}

	profiles := make([]model.AsteroidProfile, 0, len(doc.Asteroids))
	seen := make(map[string]struct{}, len(doc.Asteroids))
	for i, entry := range doc.Asteroids {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			return nil, fmt.Errorf("LoadCatalog: asteroid #%d has empty id", i)
		}
		if id == model.CustomProfileID {
			return nil, fmt.Errorf("LoadCatalog: asteroid %q: %w", id, kb.ErrReservedProfile)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("LoadCatalog: asteroid %q: %w", id, kb.ErrDuplicateProfile)
		}
		if _, stored := store.GetProfile(id); stored {
			return nil, fmt.Errorf("LoadCatalog: asteroid %q already loaded: %w", id, kb.ErrDuplicateProfile)
		}
		seen[id] = struct{}{}

		p, derived, err := profileFromEntry(id, entry, densityKgM3)
		if err != nil {
			return nil, fmt.Errorf("LoadCatalog: %w", err)
		}
		if derived {
			result.DerivedEnergyIDs = append(result.DerivedEnergyIDs, id)
		}
		profiles = append(profiles, p)
	}

	if err := store.AddProfiles(profiles); err != nil {
		return nil, fmt.Errorf("LoadCatalog: %w", err)
	}
	for _, p := range profiles {
		result.ProfileIDs = append(result.ProfileIDs, p.ID)
	}

	if len(doc.EarthOrbit) > 0 {
		store.SetEarthOrbit(pointsFromTriples(doc.EarthOrbit))
		result.EarthOrbitSamples = len(doc.EarthOrbit)
	}

	return result, nil
}

// profileFromEntry validates one catalog entry and converts it to a
// profile. derived reports whether the energy was computed at densityKgM3.
func profileFromEntry(id string, entry model.CatalogEntry, densityKgM3 float64) (p model.AsteroidProfile, derived bool, err error) {
	if !(entry.DiameterM > 0) || math.IsInf(entry.DiameterM, 0) {
		return p, false, fmt.Errorf("asteroid %q diameter %v: %w", id, entry.DiameterM, ErrInvalidParameter)
	}
	if !(entry.VelocityKms > 0) || math.IsInf(entry.VelocityKms, 0) {
		return p, false, fmt.Errorf("asteroid %q velocity %v: %w", id, entry.VelocityKms, ErrInvalidParameter)
	}

	var energy float64
	if entry.ImpactEnergyKt != nil {
		energy = *entry.ImpactEnergyKt
		if energy < 0 || math.IsNaN(energy) || math.IsInf(energy, 0) {
			return p, false, fmt.Errorf("asteroid %q energy %v: %w", id, energy, ErrInvalidParameter)
		}
	} else {
		energy = ImpactEnergyKt(entry.DiameterM, entry.VelocityKms, densityKgM3)
		derived = true
	}

	name := entry.Name
	if name == "" {
		name = id
	}
	return model.AsteroidProfile{
		ID:               id,
		Name:             name,
		DiameterM:        entry.DiameterM,
		VelocityKms:      entry.VelocityKms,
		ImpactEnergyKt:   energy,
		TrajectoryPoints: pointsFromTriples(entry.TrajectoryPoints),
	}, derived, nil
}

func pointsFromTriples(triples [][3]float64) []model.Point {
	if len(triples) == 0 {
		return nil
	}
	points := make([]model.Point, len(triples))
	for i, t := range triples {
		points[i] = model.Point{X: t[0], Y: t[1], Z: t[2]}
	}
	return points
}

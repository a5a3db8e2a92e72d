package neo

import (
	"fmt"
	"math"
	"strconv"

	"github.com/signalsfoundry/impact-simulator/core"
	"github.com/signalsfoundry/impact-simulator/model"
)

// BuildCatalog converts a browse response into the scene catalog document.
// Objects without close-approach data are skipped. Each asteroid's orbit and
// the Earth's are sampled with orbitPoints+1 points.
func BuildCatalog(resp *BrowseResponse, orbitPoints int) (model.CatalogDocument, error) {
	if orbitPoints <= 0 {
		orbitPoints = core.DefaultOrbitSamples
	}
	doc := model.CatalogDocument{
		Asteroids:  []model.CatalogEntry{},
		EarthOrbit: triples(core.OrbitPoints(core.EarthEccentricity, core.EarthSemiMajorAxis, orbitPoints)),
	}
	if resp == nil {
		return doc, nil
	}

	for _, obj := range resp.NearEarthObjects {
		if len(obj.CloseApproachData) == 0 {
			continue
		}

		velocity, err := parseDecimal(obj.CloseApproachData[0].RelativeVelocity.KilometersPerSecond)
		if err != nil {
			return model.CatalogDocument{}, fmt.Errorf("neo %s velocity: %w", obj.ID, err)
		}
		e, err := parseDecimal(obj.OrbitalData.Eccentricity)
		if err != nil {
			return model.CatalogDocument{}, fmt.Errorf("neo %s eccentricity: %w", obj.ID, err)
		}
		a, err := parseDecimal(obj.OrbitalData.SemiMajorAxis)
		if err != nil {
			return model.CatalogDocument{}, fmt.Errorf("neo %s semi-major axis: %w", obj.ID, err)
		}

		diameter := (obj.EstimatedDiameter.Meters.Min + obj.EstimatedDiameter.Meters.Max) / 2
		energy := round2(core.ComputeImpactEnergyKt(diameter, velocity))

		doc.Asteroids = append(doc.Asteroids, model.CatalogEntry{
			ID:               obj.ID,
			Name:             obj.Name,
			DiameterM:        round2(diameter),
			VelocityKms:      round2(velocity),
			ImpactEnergyKt:   &energy,
			TrajectoryPoints: triples(core.OrbitPoints(e, a, orbitPoints)),
		})
	}
	return doc, nil
}

func parseDecimal(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return v, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func triples(points []model.Point) [][3]float64 {
	out := make([][3]float64, len(points))
	for i, p := range points {
		out[i] = [3]float64{p.X, p.Y, p.Z}
	}
	return out
}

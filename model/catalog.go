package model

// Point is a position in scene units.
type Point struct {
	X float64
	Y float64
	Z float64
}

// CatalogEntry is one asteroid record as it appears in the catalog document.
// ImpactEnergyKt is optional; loaders derive it when absent.
type CatalogEntry struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	DiameterM        float64      `json:"diameter_m"`
	VelocityKms      float64      `json:"velocity_kms"`
	ImpactEnergyKt   *float64     `json:"impact_energy_kt,omitempty"`
	TrajectoryPoints [][3]float64 `json:"trajectory_points,omitempty"`
}

// CatalogDocument is the read-only scene data loaded once at startup.
type CatalogDocument struct {
	Asteroids  []CatalogEntry `json:"asteroids"`
	EarthOrbit [][3]float64   `json:"earth_orbit,omitempty"`
}

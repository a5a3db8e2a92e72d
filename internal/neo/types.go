package neo

// BrowseResponse is the subset of the NeoWs /neo/browse payload the catalog
// generator reads.
type BrowseResponse struct {
	Page             Page     `json:"page"`
	NearEarthObjects []Object `json:"near_earth_objects"`
}

type Page struct {
	Size          int `json:"size"`
	TotalElements int `json:"total_elements"`
	TotalPages    int `json:"total_pages"`
	Number        int `json:"number"`
}

// Object is one near-Earth object record. NeoWs encodes most orbital and
// approach figures as decimal strings.
type Object struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	EstimatedDiameter EstimatedDiameter `json:"estimated_diameter"`
	CloseApproachData []CloseApproach   `json:"close_approach_data"`
	OrbitalData       OrbitalData       `json:"orbital_data"`
	Hazardous         bool              `json:"is_potentially_hazardous_asteroid"`
}

type EstimatedDiameter struct {
	Meters DiameterRange `json:"meters"`
}

type DiameterRange struct {
	Min float64 `json:"estimated_diameter_min"`
	Max float64 `json:"estimated_diameter_max"`
}

type CloseApproach struct {
	Date             string           `json:"close_approach_date"`
	RelativeVelocity RelativeVelocity `json:"relative_velocity"`
	OrbitingBody     string           `json:"orbiting_body"`
}

type RelativeVelocity struct {
	KilometersPerSecond string `json:"kilometers_per_second"`
}

type OrbitalData struct {
	Eccentricity  string `json:"eccentricity"`
	SemiMajorAxis string `json:"semi_major_axis"`
}

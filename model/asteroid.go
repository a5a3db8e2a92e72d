package model

// CustomProfileID identifies the profile derived from user-supplied parameters
// rather than a catalog entry.
const CustomProfileID = "custom"

// CustomProfileName is the display name of the custom profile.
const CustomProfileName = "Custom Asteroid"

// AsteroidProfile describes one asteroid: its size, speed and the kinetic
// energy it would deliver on impact. Profiles are values; a change of
// parameters produces a new profile rather than mutating an existing one.
type AsteroidProfile struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	DiameterM      float64 `json:"diameter_m"`
	VelocityKms    float64 `json:"velocity_kms"`
	ImpactEnergyKt float64 `json:"impact_energy_kt"`

	// TrajectoryPoints is the sampled orbit carried by catalog entries.
	// Custom profiles leave it empty.
	TrajectoryPoints []Point `json:"-"`
}

// IsCustom reports whether the profile was derived from slider parameters.
func (p AsteroidProfile) IsCustom() bool {
	return p.ID == CustomProfileID
}

// DeflectionStrategy is the recommended mitigation for a profile.
type DeflectionStrategy struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ShakingIntensity is a coarse Mercalli-style label derived from magnitude.
type ShakingIntensity string

const (
	IntensityLight      ShakingIntensity = "IV (Light)"
	IntensityVeryStrong ShakingIntensity = "VII (Very Strong)"
	IntensityExtreme    ShakingIntensity = "X+ (Extreme)"
)

// ImpactConsequences is the display-ready impact report. Numeric fields are
// already rounded: magnitude to one decimal, distances to two.
type ImpactConsequences struct {
	Magnitude        float64          `json:"magnitude"`
	ShakingIntensity ShakingIntensity `json:"shaking_intensity"`
	CraterDiameterKm float64          `json:"crater_diameter_km"`
	AirBlastRadiusKm float64          `json:"air_blast_radius_km"`
	TsunamiWarning   string           `json:"tsunami_warning"`
}

// ImpactReport bundles the consequences with where they happened.
type ImpactReport struct {
	Profile      AsteroidProfile    `json:"profile"`
	Consequences ImpactConsequences `json:"consequences"`
	Point        Point              `json:"point"`
	LatitudeDeg  float64            `json:"latitude_deg"`
	LongitudeDeg float64            `json:"longitude_deg"`
}

// InfoPanel is the data shown for the currently selected profile.
type InfoPanel struct {
	Profile        AsteroidProfile    `json:"profile"`
	HiroshimaBombs int64              `json:"hiroshima_bombs"`
	Strategy       DeflectionStrategy `json:"strategy"`
}

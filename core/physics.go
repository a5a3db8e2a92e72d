package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/signalsfoundry/impact-simulator/model"
)

const (
	// DefaultDensityKgM3 is the bulk density assumed for a stony asteroid.
	DefaultDensityKgM3 = 3000.0

	// JoulesPerKilotonTNT converts joules to kilotons of TNT.
	JoulesPerKilotonTNT = 4.184e12

	// HiroshimaYieldKt is the yield used for the "bombs" comparison.
	HiroshimaYieldKt = 15.0

	// TsunamiAdvisory is attached to every report.
	TsunamiAdvisory = "High potential for mega-tsunami if impact occurs at sea."
)

// ErrInvalidParameter is returned when an asteroid parameter is not
// strictly positive.
var ErrInvalidParameter = errors.New("invalid asteroid parameter")

// ComputeImpactEnergyKt returns the kinetic energy, in kilotons of TNT, of a
// uniform sphere of the given diameter (m) and speed (km/s) at the default
// density.
func ComputeImpactEnergyKt(diameterM, velocityKms float64) float64 {
	return ImpactEnergyKt(diameterM, velocityKms, DefaultDensityKgM3)
}

// ImpactEnergyKt is ComputeImpactEnergyKt with an explicit density (kg/m^3).
// Non-positive inputs yield zero so the result is never negative.
func ImpactEnergyKt(diameterM, velocityKms, densityKgM3 float64) float64 {
	if diameterM <= 0 || velocityKms <= 0 || densityKgM3 <= 0 {
		return 0
	}
	radiusM := diameterM / 2
	volumeM3 := (4.0 / 3.0) * math.Pi * radiusM * radiusM * radiusM
	massKg := densityKgM3 * volumeM3
	velocityMs := velocityKms * 1000
	joules := 0.5 * massKg * velocityMs * velocityMs
	return joules / JoulesPerKilotonTNT
}

// NewCustomProfile builds the "custom" profile from slider values. A
// densityKgM3 of zero selects DefaultDensityKgM3.
func NewCustomProfile(diameterM, velocityKms, densityKgM3 float64) (model.AsteroidProfile, error) {
	if densityKgM3 == 0 {
		densityKgM3 = DefaultDensityKgM3
	}
	if !(diameterM > 0) {
		return model.AsteroidProfile{}, fmt.Errorf("diameter %v m: %w", diameterM, ErrInvalidParameter)
	}
	if !(velocityKms > 0) {
		return model.AsteroidProfile{}, fmt.Errorf("velocity %v km/s: %w", velocityKms, ErrInvalidParameter)
	}
	if !(densityKgM3 > 0) {
		return model.AsteroidProfile{}, fmt.Errorf("density %v kg/m^3: %w", densityKgM3, ErrInvalidParameter)
	}
	return model.AsteroidProfile{
		ID:             model.CustomProfileID,
		Name:           model.CustomProfileName,
		DiameterM:      diameterM,
		VelocityKms:    velocityKms,
		ImpactEnergyKt: ImpactEnergyKt(diameterM, velocityKms, densityKgM3),
	}, nil
}

// RichterMagnitude converts an impact energy into a Richter-like magnitude.
func RichterMagnitude(energyKt float64) float64 {
	joules := energyKt * JoulesPerKilotonTNT
	return (2.0 / 3.0) * (math.Log10(joules) - 4.4)
}

// IntensityForMagnitude maps a magnitude onto a shaking label. Thresholds
// are exclusive lower bounds evaluated in increasing order.
func IntensityForMagnitude(magnitude float64) model.ShakingIntensity {
	intensity := model.IntensityLight
	if magnitude > 6 {
		intensity = model.IntensityVeryStrong
	}
	if magnitude > 8 {
		intensity = model.IntensityExtreme
	}
	return intensity
}

// CraterDiameterKm estimates the final crater diameter.
func CraterDiameterKm(energyKt float64) float64 {
	return 0.07 * math.Pow(energyKt, 1/3.4)
}

// AirBlastRadiusKm estimates the 3 psi overpressure radius.
func AirBlastRadiusKm(energyKt float64) float64 {
	return 0.8 * math.Cbrt(energyKt)
}

// ComputeImpactConsequences derives the report for a profile. The label is
// chosen from the full-precision magnitude; only the returned numbers are
// rounded.
func ComputeImpactConsequences(profile model.AsteroidProfile) model.ImpactConsequences {
	energy := profile.ImpactEnergyKt
	if !(energy > 0) {
		return model.ImpactConsequences{
			ShakingIntensity: model.IntensityLight,
			TsunamiWarning:   TsunamiAdvisory,
		}
	}

	magnitude := RichterMagnitude(energy)
	return model.ImpactConsequences{
		Magnitude:        roundTo(magnitude, 1),
		ShakingIntensity: IntensityForMagnitude(magnitude),
		CraterDiameterKm: roundTo(CraterDiameterKm(energy), 2),
		AirBlastRadiusKm: roundTo(AirBlastRadiusKm(energy), 2),
		TsunamiWarning:   TsunamiAdvisory,
	}
}

// HiroshimaEquivalents returns the energy expressed in Hiroshima bombs,
// rounded to the nearest whole bomb.
func HiroshimaEquivalents(energyKt float64) int64 {
	if !(energyKt > 0) {
		return 0
	}
	return int64(math.Round(energyKt / HiroshimaYieldKt))
}

// Info assembles the info panel for a profile.
func Info(profile model.AsteroidProfile) model.InfoPanel {
	return model.InfoPanel{
		Profile:        profile,
		HiroshimaBombs: HiroshimaEquivalents(profile.ImpactEnergyKt),
		Strategy:       SelectStrategy(profile),
	}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

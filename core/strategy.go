package core

import "github.com/signalsfoundry/impact-simulator/model"

// Classifier thresholds. Each is an exclusive lower bound.
const (
	NuclearDiameterM = 1000.0
	NuclearEnergyKt  = 5_000_000.0
	KineticDiameterM = 150.0
)

var (
	StrategyNuclearInterceptor = model.DeflectionStrategy{
		Name:        "Nuclear Interceptor (Last Resort)",
		Description: "A standoff nuclear detonation vaporizes the asteroid's surface, creating a powerful push. Reserved for massive, short-notice threats where other options are not feasible.",
	}
	StrategyKineticImpactor = model.DeflectionStrategy{
		Name:        "Kinetic Impactor",
		Description: "A high-speed spacecraft collides with the asteroid to alter its trajectory, as demonstrated by the DART mission. A proven method for medium to large bodies with sufficient warning time.",
	}
	StrategyGravityTractor = model.DeflectionStrategy{
		Name:        "Gravity Tractor",
		Description: "A heavy spacecraft flies alongside the asteroid. Its subtle gravitational pull slowly tugs the asteroid onto a safer orbit over months or years. Ideal for smaller threats.",
	}
)

// SelectStrategy picks a deflection strategy from diameter and impact energy.
// The nuclear tier is checked first and wins outright.
func SelectStrategy(profile model.AsteroidProfile) model.DeflectionStrategy {
	switch {
	case profile.DiameterM > NuclearDiameterM || profile.ImpactEnergyKt > NuclearEnergyKt:
		return StrategyNuclearInterceptor
	case profile.DiameterM > KineticDiameterM:
		return StrategyKineticImpactor
	default:
		return StrategyGravityTractor
	}
}

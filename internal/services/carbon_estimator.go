package services

import (
	"context"
	"math"
)

const (
	// DefaultWoodDensity applies when the species is unknown or carries no
	// density value (g/cm3).
	DefaultWoodDensity = 0.6

	dbhCoefficient    = 0.0509
	rcdCoefficient    = 0.042
	allometricPower   = 2.5
	belowGroundRatio  = 0.2
	carbonFraction    = 0.47
	co2ConversionMass = 3.67
)

// DensityProvider resolves the wood density (g/cm3) for a species by
// scientific name. Implementations return ok=false when the species is
// unknown or has no recorded density.
type DensityProvider interface {
	WoodDensity(ctx context.Context, scientificName string) (density float64, ok bool)
}

// CarbonEstimator converts trunk-size measurements into CO2-equivalent mass
// using allometric biomass equations for tropical and agroforestry trees.
// The estimate is a pure function of (density, rcd, dbh).
type CarbonEstimator struct {
	densities DensityProvider
}

func NewCarbonEstimator(densities DensityProvider) *CarbonEstimator {
	return &CarbonEstimator{densities: densities}
}

// EstimateCO2 returns the estimated sequestered CO2 in kg, rounded to two
// decimal places. DBH wins when both measurements are present and positive;
// zero or negative measurements are treated as absent. With no usable
// measurement the estimate is 0.0.
func (e *CarbonEstimator) EstimateCO2(ctx context.Context, scientificName string, rcdCm, dbhCm *float64) float64 {
	density := DefaultWoodDensity
	if scientificName != "" && e.densities != nil {
		if d, ok := e.densities.WoodDensity(ctx, scientificName); ok && d > 0 {
			density = d
		}
	}
	return EstimateCO2WithDensity(density, rcdCm, dbhCm)
}

// EstimateCO2WithDensity is the density-resolved core of the estimator.
func EstimateCO2WithDensity(density float64, rcdCm, dbhCm *float64) float64 {
	var agb float64
	switch {
	case dbhCm != nil && *dbhCm > 0:
		agb = dbhCoefficient * density * math.Pow(*dbhCm, allometricPower)
	case rcdCm != nil && *rcdCm > 0:
		agb = rcdCoefficient * math.Pow(*rcdCm, allometricPower)
	default:
		return 0.0
	}

	bgb := belowGroundRatio * agb
	carbon := carbonFraction * (agb + bgb)
	co2 := carbon * co2ConversionMass

	return math.Round(co2*100) / 100
}

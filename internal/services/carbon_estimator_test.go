package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeDensityProvider struct {
	densities map[string]float64
}

func (f *fakeDensityProvider) WoodDensity(_ context.Context, scientificName string) (float64, bool) {
	d, ok := f.densities[scientificName]
	return d, ok
}

func floatPtr(v float64) *float64 { return &v }

func TestEstimateCO2DBHScenario(t *testing.T) {
	// density 0.65, dbh 10 -> AGB 10.459, BGB 2.092, carbon 5.899, CO2 21.66
	got := EstimateCO2WithDensity(0.65, nil, floatPtr(10))
	assert.InDelta(t, 21.66, got, 1e-9)
}

func TestEstimateCO2RCDScenario(t *testing.T) {
	// default density, rcd 3.2 -> AGB 0.767, BGB 0.153, carbon 0.432, CO2 1.59
	got := EstimateCO2WithDensity(DefaultWoodDensity, floatPtr(3.2), nil)
	assert.InDelta(t, 1.59, got, 1e-9)
}

func TestEstimateCO2DBHWinsOverRCD(t *testing.T) {
	both := EstimateCO2WithDensity(0.65, floatPtr(3.2), floatPtr(10))
	dbhOnly := EstimateCO2WithDensity(0.65, nil, floatPtr(10))
	assert.Equal(t, dbhOnly, both)
}

func TestEstimateCO2NoMeasurement(t *testing.T) {
	assert.Equal(t, 0.0, EstimateCO2WithDensity(0.65, nil, nil))
	assert.Equal(t, 0.0, EstimateCO2WithDensity(0.65, floatPtr(0), floatPtr(0)))
	assert.Equal(t, 0.0, EstimateCO2WithDensity(0.65, floatPtr(-1), floatPtr(-2)))
}

func TestEstimateCO2Deterministic(t *testing.T) {
	first := EstimateCO2WithDensity(0.72, floatPtr(4.1), floatPtr(12.3))
	second := EstimateCO2WithDensity(0.72, floatPtr(4.1), floatPtr(12.3))
	assert.Equal(t, first, second)
}

func TestEstimateCO2MonotonicInDBH(t *testing.T) {
	prev := 0.0
	for dbh := 1.0; dbh <= 50; dbh += 1.0 {
		got := EstimateCO2WithDensity(0.6, nil, floatPtr(dbh))
		assert.Greater(t, got, prev, "dbh %.0f", dbh)
		prev = got
	}
}

func TestEstimateCO2MonotonicInRCD(t *testing.T) {
	prev := 0.0
	for rcd := 1.0; rcd <= 30; rcd += 1.0 {
		got := EstimateCO2WithDensity(0.6, floatPtr(rcd), nil)
		assert.Greater(t, got, prev, "rcd %.0f", rcd)
		prev = got
	}
}

func TestEstimateCO2DensityFallback(t *testing.T) {
	provider := &fakeDensityProvider{densities: map[string]float64{
		"Grevillea robusta": 0.65,
	}}
	estimator := NewCarbonEstimator(provider)
	ctx := context.Background()

	known := estimator.EstimateCO2(ctx, "Grevillea robusta", nil, floatPtr(10))
	assert.InDelta(t, 21.66, known, 1e-9)

	// Unknown species falls back to the default density.
	unknown := estimator.EstimateCO2(ctx, "Ficus mysteriosa", nil, floatPtr(10))
	expected := EstimateCO2WithDensity(DefaultWoodDensity, nil, floatPtr(10))
	assert.Equal(t, expected, unknown)

	blank := estimator.EstimateCO2(ctx, "", nil, floatPtr(10))
	assert.Equal(t, expected, blank)
}

package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSpeciesDensities(t *testing.T) {
	expected := map[string]float64{
		"Acacia spp.":        0.65,
		"Eucalyptus spp.":    0.55,
		"Mangifera indica":   0.50,
		"Azadirachta indica": 0.60,
		"Quercus spp.":       0.75,
		"Pinus spp.":         0.45,
	}

	require.Len(t, DefaultSpecies, len(expected))
	for _, sp := range DefaultSpecies {
		density, ok := expected[sp.ScientificName]
		require.True(t, ok, "unexpected seed species %q", sp.ScientificName)
		require.NotNil(t, sp.WoodDensity)
		assert.Equal(t, density, *sp.WoodDensity, sp.ScientificName)
		require.NotNil(t, sp.LocalName)
		require.NotNil(t, sp.Benefits)
	}
}

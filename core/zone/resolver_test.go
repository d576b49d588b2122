package zone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courier-pricing/core/types"
	"courier-pricing/internal/errors"
)

func testZones() []types.PricingZone {
	return []types.PricingZone{
		{
			Code:     "LOC_WAW",
			ZoneType: types.ZoneLocal,
			Countries: []string{"PL"},
			PostalCodePatterns: []string{`^0[0-4]-\d{3}$`},
		},
		{
			Code:      "NAT_PL",
			ZoneType:  types.ZoneNational,
			Countries: []string{"PL"},
		},
		{
			Code:      "EU_WEST",
			ZoneType:  types.ZoneInternational,
			Countries: []string{"DE", "FR", "NL", "BE"},
		},
	}
}

func TestResolveNationalZone(t *testing.T) {
	r, err := NewResolver(testZones())
	require.NoError(t, err)

	// 90-xxx is outside the local Warsaw pattern, only NAT_PL matches
	z, err := r.Resolve("PL", "90-001")
	require.NoError(t, err)
	assert.Equal(t, "NAT_PL", z.Code)
}

func TestResolvePrefersLocalOverNational(t *testing.T) {
	r, err := NewResolver(testZones())
	require.NoError(t, err)

	z, err := r.Resolve("PL", "00-001")
	require.NoError(t, err)
	assert.Equal(t, "LOC_WAW", z.Code)
}

func TestResolveCountryCaseInsensitive(t *testing.T) {
	r, err := NewResolver(testZones())
	require.NoError(t, err)

	z, err := r.Resolve("pl", "50-001")
	require.NoError(t, err)
	assert.Equal(t, "NAT_PL", z.Code)
}

func TestResolveUnsupportedDestination(t *testing.T) {
	r, err := NewResolver(testZones())
	require.NoError(t, err)

	_, err = r.Resolve("US", "90210")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeUnsupportedDestination))
}

func TestResolveInvalidCountryCode(t *testing.T) {
	r, err := NewResolver(testZones())
	require.NoError(t, err)

	_, err = r.Resolve("POL", "00-001")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeValidation))
}

func TestResolveLongestPatternWins(t *testing.T) {
	zones := []types.PricingZone{
		{
			Code:               "LOC_A",
			ZoneType:           types.ZoneLocal,
			Countries:          []string{"PL"},
			PostalCodePatterns: []string{`^00-\d{3}$`},
		},
		{
			Code:               "LOC_B",
			ZoneType:           types.ZoneLocal,
			Countries:          []string{"PL"},
			PostalCodePatterns: []string{`^00-0\d{2}$`},
		},
	}
	r, err := NewResolver(zones)
	require.NoError(t, err)

	z, err := r.Resolve("PL", "00-001")
	require.NoError(t, err)
	assert.Equal(t, "LOC_B", z.Code)
}

func TestResolveAmbiguousZoneFails(t *testing.T) {
	zones := []types.PricingZone{
		{Code: "NAT_A", ZoneType: types.ZoneNational, Countries: []string{"PL"}},
		{Code: "NAT_B", ZoneType: types.ZoneNational, Countries: []string{"PL"}},
	}
	r, err := NewResolver(zones)
	require.NoError(t, err)

	_, err = r.Resolve("PL", "00-001")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeAmbiguousZone))
}

func TestNewResolverRejectsInvalidPattern(t *testing.T) {
	zones := []types.PricingZone{
		{Code: "BAD", ZoneType: types.ZoneNational, Countries: []string{"PL"}, PostalCodePatterns: []string{"("}},
	}
	_, err := NewResolver(zones)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeConfig))
}

func TestNewResolverRejectsUnknownZoneType(t *testing.T) {
	zones := []types.PricingZone{
		{Code: "BAD", ZoneType: "galactic", Countries: []string{"PL"}},
	}
	_, err := NewResolver(zones)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeConfig))
}

// Determinism: a destination covered by exactly one zone always resolves
// to that zone.
func TestResolveDeterministic(t *testing.T) {
	r, err := NewResolver(testZones())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		z, err := r.Resolve("DE", "10115")
		require.NoError(t, err)
		assert.Equal(t, "EU_WEST", z.Code)
	}
}

package forage

import (
	"fmt"

	"github.com/pastizal/api/internal/models"
)

// Params holds the per-pasture-type constants of the index-to-biomass
// regression and the regrowth model.
//
// The biomass conversion is the linear empirical fit used by the GEE
// methodology: kg MS/ha = BiomassSlope*NDVI + BiomassOffset, clamped to
// [0, MaxBiomassKgHa]. BaseRegrowth is the daily dry-matter accumulation at
// reference vigor; effective regrowth scales with (NDVI + 0.2).
type Params struct {
	Type          models.PastureType
	BiomassSlope  float64 // kg MS/ha per NDVI unit
	BiomassOffset float64 // kg MS/ha
	BaseRegrowth  float64 // kg MS/ha/day
	BaseNDVI      float64 // typical mid-season NDVI, used by the simulator
}

var catalog = map[models.PastureType]Params{
	models.PastureAlfalfa: {
		Type:          models.PastureAlfalfa,
		BiomassSlope:  5200,
		BiomassOffset: -600,
		BaseRegrowth:  80,
		BaseNDVI:      0.68,
	},
	models.PastureRaygrass: {
		Type:          models.PastureRaygrass,
		BiomassSlope:  4800,
		BiomassOffset: -500,
		BaseRegrowth:  70,
		BaseNDVI:      0.64,
	},
	models.PastureFescue: {
		Type:          models.PastureFescue,
		BiomassSlope:  4200,
		BiomassOffset: -400,
		BaseRegrowth:  55,
		BaseNDVI:      0.60,
	},
	models.PastureWheatgrass: {
		Type:          models.PastureWheatgrass,
		BiomassSlope:  3800,
		BiomassOffset: -350,
		BaseRegrowth:  45,
		BaseNDVI:      0.55,
	},
	models.PastureNatural: {
		Type:          models.PastureNatural,
		BiomassSlope:  3000,
		BiomassOffset: -300,
		BaseRegrowth:  50,
		BaseNDVI:      0.50,
	},
}

// ParamsFor returns the regression parameters for the given pasture type.
// Returns ErrInvalidConfiguration wrapped with the unknown type name if the
// type is not in the catalog.
func ParamsFor(t models.PastureType) (Params, error) {
	p, ok := catalog[t]
	if !ok {
		return Params{}, fmt.Errorf("%w: unknown pasture type %q", ErrInvalidConfiguration, t)
	}
	return p, nil
}

// PastureTypes lists the catalog entries, used for request validation.
func PastureTypes() []models.PastureType {
	types := make([]models.PastureType, 0, len(catalog))
	for t := range catalog {
		types = append(types, t)
	}
	return types
}

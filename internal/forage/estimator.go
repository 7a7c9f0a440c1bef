// Package forage implements the forage-productivity estimation pipeline:
// vegetation index -> dry-matter biomass -> animal carrying capacity ->
// grazing rotation recommendation.
//
// Every stage is a pure function of its inputs and configuration. Nothing
// here holds state, so estimates for different parcels can run concurrently
// without coordination.
package forage

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/pastizal/api/internal/models"
)

// Pipeline errors. All are local validation failures surfaced immediately;
// no stage has a transient failure mode worth retrying.
var (
	// ErrInvalidIndexRange is returned when a sample's vegetation index
	// lies outside the configured physical bounds.
	ErrInvalidIndexRange = errors.New("vegetation index outside valid range")
	// ErrInvalidConfiguration is returned when a non-positive intake,
	// efficiency, herd size, regrowth rate, or period is supplied.
	ErrInvalidConfiguration = errors.New("invalid forage configuration")
	// ErrCloudCoverExceeded is returned when a sample is too contaminated
	// by clouds to trust its index values.
	ErrCloudCoverExceeded = errors.New("sample cloud cover exceeds maximum")
)

// NDVI classification thresholds and the vegetation cover fraction assigned
// to each class. Taken from the GEE forage methodology.
const (
	soilNDVIMax     = 0.2
	sparseNDVIMax   = 0.4
	moderateNDVIMax = 0.6

	coverBareSoil = 0.1
	coverSparse   = 0.4
	coverModerate = 0.7
	coverDense    = 0.9
)

// regrowthNDVIOffset shifts NDVI before scaling base regrowth so that even
// low-vigor pasture accumulates some dry matter.
const regrowthNDVIOffset = 0.2

// Config holds the tunable constants of the estimation pipeline.
// Zero values are not usable; start from DefaultConfig.
type Config struct {
	// MinIndex and MaxIndex bound the physically plausible vegetation
	// index. Samples outside are rejected with ErrInvalidIndexRange
	// unless ClampIndex is set, in which case they are clamped.
	MinIndex   float64
	MaxIndex   float64
	ClampIndex bool

	// MaxCloudCover is the highest acceptable cloud fraction for a sample.
	MaxCloudCover float64

	// MaxBiomassKgHa caps the regression output.
	MaxBiomassKgHa float64

	// GrazingEfficiency is the fraction of covered biomass animals can
	// actually reach.
	GrazingEfficiency float64

	// Utilization is the fraction of available biomass that may be grazed
	// without damaging regrowth.
	Utilization float64

	// DailyIntakeKgPerEV is dry-matter intake of one animal equivalent
	// (450 kg liveweight) per day.
	DailyIntakeKgPerEV float64

	// ReferencePeriodDays is the grazing period over which carrying
	// capacity is expressed.
	ReferencePeriodDays int

	// OptimalBiomassKgHa is the standing biomass the parcel should
	// recover to during rest.
	OptimalBiomassKgHa float64
}

// Default livestock constants: 450 kg reference liveweight consuming 2.5%
// of liveweight per day.
const (
	ReferenceLiveweightKg = 450.0
	IntakeFraction        = 0.025
)

// DefaultConfig returns the pipeline constants of the GEE forage
// methodology.
func DefaultConfig() Config {
	return Config{
		MinIndex:            -1.0,
		MaxIndex:            1.0,
		ClampIndex:          false,
		MaxCloudCover:       0.2,
		MaxBiomassKgHa:      6000,
		GrazingEfficiency:   0.7,
		Utilization:         0.55,
		DailyIntakeKgPerEV:  ReferenceLiveweightKg * IntakeFraction,
		ReferencePeriodDays: 30,
		OptimalBiomassKgHa:  3000,
	}
}

// ClassifySurface maps an NDVI value to a land-surface class and the
// vegetation cover fraction used to discount standing biomass.
func ClassifySurface(ndvi float64) (models.SurfaceClass, float64) {
	switch {
	case ndvi < soilNDVIMax:
		return models.SurfaceBareSoil, coverBareSoil
	case ndvi < sparseNDVIMax:
		return models.SurfaceSparse, coverSparse
	case ndvi < moderateNDVIMax:
		return models.SurfaceModerate, coverModerate
	default:
		return models.SurfaceDense, coverDense
	}
}

// EstimateBiomass converts a vegetation sample into a dry-matter estimate
// for its parcel.
//
// The sample's NDVI must lie within cfg.[MinIndex, MaxIndex]; out-of-range
// samples fail with ErrInvalidIndexRange unless cfg.ClampIndex is set.
// Samples with cloud cover above cfg.MaxCloudCover fail with
// ErrCloudCoverExceeded. The returned estimate always carries non-negative
// biomass, and bare soil yields zero available forage.
func EstimateBiomass(sample models.VegetationSample, params Params, cfg Config) (models.BiomassEstimate, error) {
	if cfg.MinIndex >= cfg.MaxIndex {
		return models.BiomassEstimate{}, fmt.Errorf("%w: index bounds [%g, %g]",
			ErrInvalidConfiguration, cfg.MinIndex, cfg.MaxIndex)
	}
	if cfg.MaxBiomassKgHa <= 0 || cfg.GrazingEfficiency <= 0 || cfg.GrazingEfficiency > 1 {
		return models.BiomassEstimate{}, fmt.Errorf("%w: max biomass %g, grazing efficiency %g",
			ErrInvalidConfiguration, cfg.MaxBiomassKgHa, cfg.GrazingEfficiency)
	}

	if sample.CloudCover < 0 || sample.CloudCover > 1 {
		return models.BiomassEstimate{}, fmt.Errorf("%w: cloud cover %g not a fraction",
			ErrCloudCoverExceeded, sample.CloudCover)
	}
	if sample.CloudCover > cfg.MaxCloudCover {
		return models.BiomassEstimate{}, fmt.Errorf("%w: %.2f > %.2f",
			ErrCloudCoverExceeded, sample.CloudCover, cfg.MaxCloudCover)
	}

	ndvi := sample.NDVI
	if ndvi < cfg.MinIndex || ndvi > cfg.MaxIndex {
		if !cfg.ClampIndex {
			return models.BiomassEstimate{}, fmt.Errorf("%w: NDVI %g not in [%g, %g]",
				ErrInvalidIndexRange, ndvi, cfg.MinIndex, cfg.MaxIndex)
		}
		ndvi = math.Max(cfg.MinIndex, math.Min(cfg.MaxIndex, ndvi))
	}

	dryMatter := params.BiomassSlope*ndvi + params.BiomassOffset
	dryMatter = math.Max(0, math.Min(cfg.MaxBiomassKgHa, dryMatter))

	surface, cover := ClassifySurface(ndvi)

	available := 0.0
	if surface != models.SurfaceBareSoil {
		available = dryMatter * cover * cfg.GrazingEfficiency
	}

	regrowth := params.BaseRegrowth * (ndvi + regrowthNDVIOffset)
	if regrowth < 0 {
		regrowth = 0
	}

	return models.BiomassEstimate{
		ParcelID:        sample.ParcelID,
		SubLot:          sample.SubLot,
		NDVI:            ndvi,
		Surface:         surface,
		CoverFraction:   cover,
		DryMatterKgHa:   dryMatter,
		AvailableKgHa:   available,
		RegrowthKgHaDay: regrowth,
		ComputedAt:      time.Now().UTC(),
	}, nil
}

// ComputeCarryingCapacity derives the animal load a parcel sustains from a
// biomass estimate. EV/ha is the available biomass the herd may take
// (utilization applied) divided by what one animal equivalent eats over the
// reference period.
//
// Fails with ErrInvalidConfiguration if intake, utilization, or the period
// is non-positive. Monotonically increasing in available biomass.
func ComputeCarryingCapacity(est models.BiomassEstimate, areaHectares float64, cfg Config) (models.CarryingCapacity, error) {
	if cfg.DailyIntakeKgPerEV <= 0 {
		return models.CarryingCapacity{}, fmt.Errorf("%w: daily intake %g kg/EV",
			ErrInvalidConfiguration, cfg.DailyIntakeKgPerEV)
	}
	if cfg.Utilization <= 0 || cfg.Utilization > 1 {
		return models.CarryingCapacity{}, fmt.Errorf("%w: utilization %g",
			ErrInvalidConfiguration, cfg.Utilization)
	}
	if cfg.ReferencePeriodDays <= 0 {
		return models.CarryingCapacity{}, fmt.Errorf("%w: reference period %d days",
			ErrInvalidConfiguration, cfg.ReferencePeriodDays)
	}
	if areaHectares < 0 {
		return models.CarryingCapacity{}, fmt.Errorf("%w: area %g ha",
			ErrInvalidConfiguration, areaHectares)
	}

	evPerHa := est.AvailableKgHa * cfg.Utilization /
		(cfg.DailyIntakeKgPerEV * float64(cfg.ReferencePeriodDays))

	return models.CarryingCapacity{
		ParcelID:     est.ParcelID,
		SubLot:       est.SubLot,
		EVPerHectare: evPerHa,
		TotalEV:      evPerHa * areaHectares,
		PeriodDays:   cfg.ReferencePeriodDays,
	}, nil
}

// RecommendRotation derives grazing and rest durations for a herd on the
// estimated parcel.
//
// Grazing days: how long the grazable mass (available biomass, utilization
// applied, over the whole area) feeds the herd at the configured intake.
// Rest days: how long regrowth needs to lift residual standing biomass back
// to cfg.OptimalBiomassKgHa. Both are at least one day.
//
// Fails with ErrInvalidConfiguration on non-positive herd size, intake,
// area, or regrowth rate.
func RecommendRotation(est models.BiomassEstimate, capacity models.CarryingCapacity, areaHectares float64, herdSize int, cfg Config) (models.RotationPlan, error) {
	if herdSize <= 0 {
		return models.RotationPlan{}, fmt.Errorf("%w: herd size %d",
			ErrInvalidConfiguration, herdSize)
	}
	if capacity.PeriodDays <= 0 {
		return models.RotationPlan{}, fmt.Errorf("%w: capacity period %d days",
			ErrInvalidConfiguration, capacity.PeriodDays)
	}
	if cfg.DailyIntakeKgPerEV <= 0 {
		return models.RotationPlan{}, fmt.Errorf("%w: daily intake %g kg/EV",
			ErrInvalidConfiguration, cfg.DailyIntakeKgPerEV)
	}
	if areaHectares <= 0 {
		return models.RotationPlan{}, fmt.Errorf("%w: area %g ha",
			ErrInvalidConfiguration, areaHectares)
	}
	if est.RegrowthKgHaDay <= 0 {
		return models.RotationPlan{}, fmt.Errorf("%w: regrowth rate %g kg/ha/day",
			ErrInvalidConfiguration, est.RegrowthKgHaDay)
	}

	grazablePerHa := est.AvailableKgHa * cfg.Utilization
	herdDemand := float64(herdSize) * cfg.DailyIntakeKgPerEV

	grazingDays := int(grazablePerHa * areaHectares / herdDemand)
	if grazingDays < 1 {
		grazingDays = 1
	}

	residual := est.DryMatterKgHa - grazablePerHa
	deficit := cfg.OptimalBiomassKgHa - residual

	restDays := 1
	if deficit > 0 {
		restDays = int(math.Ceil(deficit / est.RegrowthKgHaDay))
		if restDays < 1 {
			restDays = 1
		}
	}

	return models.RotationPlan{
		ParcelID:    est.ParcelID,
		SubLot:      est.SubLot,
		GrazingDays: grazingDays,
		RestDays:    restDays,
		HerdSize:    herdSize,
	}, nil
}

package forage

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pastizal/api/internal/models"
)

func naturalParams(t *testing.T) Params {
	t.Helper()
	params, err := ParamsFor(models.PastureNatural)
	require.NoError(t, err)
	return params
}

func sampleWithNDVI(ndvi float64) models.VegetationSample {
	return models.VegetationSample{
		ID:         uuid.New(),
		ParcelID:   uuid.New(),
		NDVI:       ndvi,
		CloudCover: 0.05,
		Source:     models.SourceSatellite,
		AcquiredAt: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
}

// Reference run: natural grassland, NDVI 0.65, 10 ha, 12 kg/EV/day intake,
// 0.5 utilization, herd of 40, 30-day reference period.
func referenceConfig() Config {
	cfg := DefaultConfig()
	cfg.DailyIntakeKgPerEV = 12
	cfg.Utilization = 0.5
	return cfg
}

func TestEstimateBiomass_ReferenceValues(t *testing.T) {
	params := naturalParams(t)
	cfg := referenceConfig()

	est, err := EstimateBiomass(sampleWithNDVI(0.65), params, cfg)
	require.NoError(t, err)

	// density = 3000*0.65 - 300; dense cover 0.9; efficiency 0.7
	assert.InDelta(t, 1650.0, est.DryMatterKgHa, 1e-9)
	assert.Equal(t, models.SurfaceDense, est.Surface)
	assert.InDelta(t, 0.9, est.CoverFraction, 1e-9)
	assert.InDelta(t, 1039.5, est.AvailableKgHa, 1e-9)
	// regrowth = 50 * (0.65 + 0.2)
	assert.InDelta(t, 42.5, est.RegrowthKgHaDay, 1e-9)
}

func TestPipeline_ReferenceValues(t *testing.T) {
	params := naturalParams(t)
	cfg := referenceConfig()

	est, err := EstimateBiomass(sampleWithNDVI(0.65), params, cfg)
	require.NoError(t, err)

	capacity, err := ComputeCarryingCapacity(est, 10, cfg)
	require.NoError(t, err)
	// 1039.5 * 0.5 / (12 * 30)
	assert.InDelta(t, 1.44375, capacity.EVPerHectare, 1e-9)
	assert.InDelta(t, 14.4375, capacity.TotalEV, 1e-9)
	assert.Equal(t, 30, capacity.PeriodDays)

	rotation, err := RecommendRotation(est, capacity, 10, 40, cfg)
	require.NoError(t, err)
	// grazable 519.75 kg/ha over 10 ha feeds 40 EV at 12 kg/day for 10 days
	assert.Equal(t, 10, rotation.GrazingDays)
	// residual 1130.25, deficit 1869.75, regrowth 42.5 -> ceil(43.99)
	assert.Equal(t, 44, rotation.RestDays)
}

func TestEstimateBiomass_NonNegativeAcrossRange(t *testing.T) {
	params := naturalParams(t)
	cfg := DefaultConfig()

	for ndvi := -1.0; ndvi <= 1.0; ndvi += 0.05 {
		est, err := EstimateBiomass(sampleWithNDVI(ndvi), params, cfg)
		require.NoError(t, err, "ndvi=%f", ndvi)
		assert.GreaterOrEqual(t, est.DryMatterKgHa, 0.0, "ndvi=%f", ndvi)
		assert.GreaterOrEqual(t, est.AvailableKgHa, 0.0, "ndvi=%f", ndvi)
	}
}

func TestEstimateBiomass_OutOfRangeRejected(t *testing.T) {
	params := naturalParams(t)
	cfg := DefaultConfig()

	for _, ndvi := range []float64{-1.01, 1.01, 2.5, -3} {
		_, err := EstimateBiomass(sampleWithNDVI(ndvi), params, cfg)
		assert.ErrorIs(t, err, ErrInvalidIndexRange, "ndvi=%f", ndvi)
	}
}

func TestEstimateBiomass_ClampModeClampsInsteadOfRejecting(t *testing.T) {
	params := naturalParams(t)
	cfg := DefaultConfig()
	cfg.ClampIndex = true

	est, err := EstimateBiomass(sampleWithNDVI(1.4), params, cfg)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, est.NDVI, 1e-9)
	// clamped index: 3000*1.0 - 300
	assert.InDelta(t, 2700.0, est.DryMatterKgHa, 1e-9)
}

func TestEstimateBiomass_CloudCoverRejected(t *testing.T) {
	params := naturalParams(t)
	cfg := DefaultConfig()

	sample := sampleWithNDVI(0.5)
	sample.CloudCover = 0.45

	_, err := EstimateBiomass(sample, params, cfg)
	assert.ErrorIs(t, err, ErrCloudCoverExceeded)
}

func TestEstimateBiomass_BareSoilHasNoAvailableForage(t *testing.T) {
	params := naturalParams(t)
	cfg := DefaultConfig()

	est, err := EstimateBiomass(sampleWithNDVI(0.15), params, cfg)
	require.NoError(t, err)
	assert.Equal(t, models.SurfaceBareSoil, est.Surface)
	assert.Zero(t, est.AvailableKgHa)
	// standing biomass can still be positive on nearly bare ground
	assert.InDelta(t, 150.0, est.DryMatterKgHa, 1e-9)
}

func TestEstimateBiomass_CapsAtMaxBiomass(t *testing.T) {
	params, err := ParamsFor(models.PastureAlfalfa)
	require.NoError(t, err)
	cfg := DefaultConfig()

	est, err := EstimateBiomass(sampleWithNDVI(0.95), params, cfg)
	require.NoError(t, err)
	// 5200*0.95 - 600 = 4340, under the cap; push the cap down to check it
	cfg.MaxBiomassKgHa = 4000
	capped, err := EstimateBiomass(sampleWithNDVI(0.95), params, cfg)
	require.NoError(t, err)
	assert.Greater(t, est.DryMatterKgHa, capped.DryMatterKgHa)
	assert.InDelta(t, 4000.0, capped.DryMatterKgHa, 1e-9)
}

func TestComputeCarryingCapacity_MonotoneInBiomass(t *testing.T) {
	cfg := DefaultConfig()
	parcelID := uuid.New()

	prev := -1.0
	for _, available := range []float64{0, 250, 600, 1200, 2400, 4000} {
		est := models.BiomassEstimate{
			ParcelID:      parcelID,
			AvailableKgHa: available,
		}
		capacity, err := ComputeCarryingCapacity(est, 10, cfg)
		require.NoError(t, err)
		assert.Greater(t, capacity.EVPerHectare, prev,
			"capacity must increase with biomass (available=%f)", available)
		prev = capacity.EVPerHectare
	}
}

func TestComputeCarryingCapacity_InvalidConfiguration(t *testing.T) {
	est := models.BiomassEstimate{AvailableKgHa: 1000}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero intake", func(c *Config) { c.DailyIntakeKgPerEV = 0 }},
		{"negative intake", func(c *Config) { c.DailyIntakeKgPerEV = -5 }},
		{"zero utilization", func(c *Config) { c.Utilization = 0 }},
		{"utilization above one", func(c *Config) { c.Utilization = 1.2 }},
		{"zero period", func(c *Config) { c.ReferencePeriodDays = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			_, err := ComputeCarryingCapacity(est, 10, cfg)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestRecommendRotation_RestDecreasesWithRegrowth(t *testing.T) {
	cfg := DefaultConfig()
	capacity := models.CarryingCapacity{PeriodDays: 30}

	prev := int(^uint(0) >> 1)
	for _, regrowth := range []float64{10, 25, 50, 100, 200} {
		est := models.BiomassEstimate{
			DryMatterKgHa:   1650,
			AvailableKgHa:   1039.5,
			RegrowthKgHaDay: regrowth,
		}
		plan, err := RecommendRotation(est, capacity, 10, 40, cfg)
		require.NoError(t, err)
		assert.LessOrEqual(t, plan.RestDays, prev,
			"rest days must not increase with regrowth (rate=%f)", regrowth)
		prev = plan.RestDays
	}
}

func TestRecommendRotation_MinimumOneDay(t *testing.T) {
	cfg := DefaultConfig()
	capacity := models.CarryingCapacity{PeriodDays: 30}

	// Tiny forage supply: the herd would exhaust it in under a day.
	est := models.BiomassEstimate{
		DryMatterKgHa:   4000,
		AvailableKgHa:   5,
		RegrowthKgHaDay: 500,
	}
	plan, err := RecommendRotation(est, capacity, 1, 500, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, plan.GrazingDays)
	assert.Equal(t, 1, plan.RestDays)
}

func TestRecommendRotation_InvalidConfiguration(t *testing.T) {
	cfg := DefaultConfig()
	capacity := models.CarryingCapacity{PeriodDays: 30}
	est := models.BiomassEstimate{
		DryMatterKgHa:   1650,
		AvailableKgHa:   1039.5,
		RegrowthKgHaDay: 42.5,
	}

	_, err := RecommendRotation(est, capacity, 10, 0, cfg)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = RecommendRotation(est, capacity, 0, 40, cfg)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	stalled := est
	stalled.RegrowthKgHaDay = 0
	_, err = RecommendRotation(stalled, capacity, 10, 40, cfg)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	noPeriod := models.CarryingCapacity{}
	_, err = RecommendRotation(est, noPeriod, 10, 40, cfg)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestClassifySurface_Thresholds(t *testing.T) {
	cases := []struct {
		ndvi    float64
		surface models.SurfaceClass
		cover   float64
	}{
		{-0.1, models.SurfaceBareSoil, 0.1},
		{0.19, models.SurfaceBareSoil, 0.1},
		{0.2, models.SurfaceSparse, 0.4},
		{0.39, models.SurfaceSparse, 0.4},
		{0.4, models.SurfaceModerate, 0.7},
		{0.59, models.SurfaceModerate, 0.7},
		{0.6, models.SurfaceDense, 0.9},
		{0.95, models.SurfaceDense, 0.9},
	}

	for _, tc := range cases {
		surface, cover := ClassifySurface(tc.ndvi)
		assert.Equal(t, tc.surface, surface, "ndvi=%f", tc.ndvi)
		assert.InDelta(t, tc.cover, cover, 1e-9, "ndvi=%f", tc.ndvi)
	}
}

func TestParamsFor_UnknownType(t *testing.T) {
	_, err := ParamsFor(models.PastureType("KUDZU"))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

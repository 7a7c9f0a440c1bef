package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pastizal/api/internal/config"
	"github.com/pastizal/api/internal/forage"
	"github.com/pastizal/api/internal/geo"
	"github.com/pastizal/api/internal/logger"
	"github.com/pastizal/api/internal/models"
	"github.com/pastizal/api/internal/repository"
	"github.com/pastizal/api/internal/simulation"
)

// Subdivision bounds for an analysis run.
const (
	MinSubLots = 1
	MaxSubLots = 64
)

// ErrInvalidSample is returned when an ingested sample carries physically
// impossible values.
var ErrInvalidSample = errors.New("invalid vegetation sample")

// SampleInput is the payload for ingesting a vegetation sample. Indices are
// optional: when absent they are derived from the reflectance bands.
type SampleInput struct {
	NDVI       *float64
	BlueMean   float64
	RedMean    float64
	NIRMean    float64
	CloudCover float64
	AcquiredAt time.Time
}

// AnalysisOptions tunes one analysis run.
type AnalysisOptions struct {
	// SubLots is the requested paddock subdivision.
	SubLots int
	// HerdSize is the number of animal equivalents to plan rotation for.
	HerdSize int
	// AverageWeightKg overrides the reference liveweight used to derive
	// daily intake. Zero keeps the 450 kg default.
	AverageWeightKg float64
	// Custom replaces the catalog regression constants for this run.
	Custom *ParamOverrides
}

// ParamOverrides carries user-supplied regression constants for a custom
// pasture, replacing the catalog entry for the parcel's type.
type ParamOverrides struct {
	BiomassSlope  float64
	BiomassOffset float64
	BaseRegrowth  float64
}

// SubLotResult is the full pipeline output for one sub-lot.
type SubLotResult struct {
	SubLot       int                     `json:"sub_lot"`
	Geometry     models.Polygon          `json:"geometry"`
	AreaHectares float64                 `json:"area_hectares"`
	Sample       models.VegetationSample `json:"sample"`
	Estimate     models.BiomassEstimate  `json:"estimate"`
	Capacity     models.CarryingCapacity `json:"capacity"`
	Rotation     models.RotationPlan     `json:"rotation"`
}

// AnalysisResult is the whole-paddock analysis: the paddock-level pipeline
// run plus per-sub-lot results and aggregate statistics.
type AnalysisResult struct {
	Parcel         models.Parcel           `json:"parcel"`
	AnchorSample   models.VegetationSample `json:"anchor_sample"`
	Estimate       models.BiomassEstimate  `json:"estimate"`
	Capacity       models.CarryingCapacity `json:"capacity"`
	Rotation       models.RotationPlan     `json:"rotation"`
	SubLots        []SubLotResult          `json:"sub_lots"`
	NDVISummary    forage.Summary          `json:"ndvi_summary"`
	BiomassSummary forage.Summary          `json:"biomass_summary"`
	// AgreementScore compares sub-lot modeled NDVI against the anchor
	// satellite sample; zero when no satellite sample exists.
	AgreementScore float64   `json:"agreement_score"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// ForageService orchestrates the estimation pipeline over stored parcels
// and samples.
type ForageService interface {
	// IngestSample validates and stores a whole-paddock vegetation sample.
	// Returns ErrParcelNotFound or ErrInvalidSample.
	IngestSample(ctx context.Context, parcelID uuid.UUID, input SampleInput) (*models.VegetationSample, error)

	// ListSamples returns the stored samples for a parcel, newest first.
	ListSamples(ctx context.Context, parcelID uuid.UUID) ([]models.VegetationSample, error)

	// Analyze runs the full pipeline for a parcel: paddock-level estimate
	// from the latest satellite sample (or a simulated one), per-sub-lot
	// estimates, and aggregate statistics.
	Analyze(ctx context.Context, parcelID uuid.UUID, opts AnalysisOptions) (*AnalysisResult, error)
}

type forageService struct {
	parcels repository.ParcelRepository
	samples repository.SampleRepository
	sim     *simulation.Simulator
	cfg     config.ForageConfig
	log     *logger.Logger
}

// NewForageService creates a new instance of ForageService.
func NewForageService(
	parcels repository.ParcelRepository,
	samples repository.SampleRepository,
	sim *simulation.Simulator,
	cfg config.ForageConfig,
	log *logger.Logger,
) ForageService {
	return &forageService{
		parcels: parcels,
		samples: samples,
		sim:     sim,
		cfg:     cfg,
		log:     log.WithComponent("forage_service"),
	}
}

// pipelineConfig builds the forage configuration for one run from the
// service defaults plus per-request overrides.
func (s *forageService) pipelineConfig(averageWeightKg float64) forage.Config {
	cfg := forage.DefaultConfig()
	cfg.ClampIndex = s.cfg.ClampIndex
	cfg.MaxCloudCover = s.cfg.MaxCloudCover
	cfg.ReferencePeriodDays = s.cfg.ReferencePeriodDays
	if averageWeightKg > 0 {
		cfg.DailyIntakeKgPerEV = averageWeightKg * forage.IntakeFraction
	}
	return cfg
}

func (s *forageService) IngestSample(ctx context.Context, parcelID uuid.UUID, input SampleInput) (*models.VegetationSample, error) {
	parcel, err := s.parcels.GetByID(ctx, parcelID)
	if err != nil {
		return nil, fmt.Errorf("failed to query parcel: %w", err)
	}
	if parcel == nil {
		return nil, ErrParcelNotFound
	}

	if input.CloudCover < 0 || input.CloudCover > 1 {
		return nil, fmt.Errorf("%w: cloud cover %g not a fraction", ErrInvalidSample, input.CloudCover)
	}
	if input.BlueMean < 0 || input.RedMean < 0 || input.NIRMean < 0 {
		return nil, fmt.Errorf("%w: negative reflectance", ErrInvalidSample)
	}
	if input.AcquiredAt.IsZero() {
		return nil, fmt.Errorf("%w: missing acquisition date", ErrInvalidSample)
	}

	ndvi := forage.NDVI(input.NIRMean, input.RedMean)
	if input.NDVI != nil {
		ndvi = *input.NDVI
	}
	if ndvi < -1 || ndvi > 1 {
		return nil, fmt.Errorf("%w: NDVI %g outside [-1, 1]", ErrInvalidSample, ndvi)
	}

	sample := &models.VegetationSample{
		ID:         uuid.New(),
		ParcelID:   parcelID,
		SubLot:     0,
		NDVI:       ndvi,
		EVI:        forage.EVI(input.NIRMean, input.RedMean, input.BlueMean),
		SAVI:       forage.SAVI(input.NIRMean, input.RedMean),
		BlueMean:   input.BlueMean,
		RedMean:    input.RedMean,
		NIRMean:    input.NIRMean,
		CloudCover: input.CloudCover,
		Source:     models.SourceSatellite,
		AcquiredAt: input.AcquiredAt.UTC(),
	}

	if err := s.samples.Insert(ctx, sample); err != nil {
		s.log.Error("Failed to store sample", err, map[string]interface{}{
			"parcel_id": parcelID,
		})
		return nil, fmt.Errorf("failed to store sample: %w", err)
	}

	s.log.Info("Sample ingested", map[string]interface{}{
		"parcel_id":   parcelID,
		"sample_id":   sample.ID,
		"ndvi":        sample.NDVI,
		"cloud_cover": sample.CloudCover,
	})

	return sample, nil
}

func (s *forageService) ListSamples(ctx context.Context, parcelID uuid.UUID) ([]models.VegetationSample, error) {
	parcel, err := s.parcels.GetByID(ctx, parcelID)
	if err != nil {
		return nil, fmt.Errorf("failed to query parcel: %w", err)
	}
	if parcel == nil {
		return nil, ErrParcelNotFound
	}

	samples, err := s.samples.ListByParcel(ctx, parcelID)
	if err != nil {
		s.log.Error("Failed to list samples", err, map[string]interface{}{
			"parcel_id": parcelID,
		})
		return nil, fmt.Errorf("failed to list samples: %w", err)
	}
	return samples, nil
}

func (s *forageService) Analyze(ctx context.Context, parcelID uuid.UUID, opts AnalysisOptions) (*AnalysisResult, error) {
	if opts.SubLots == 0 {
		opts.SubLots = s.cfg.DefaultSubLots
	}
	if opts.SubLots < MinSubLots || opts.SubLots > MaxSubLots {
		return nil, fmt.Errorf("%w: sub-lot count %d not in [%d, %d]",
			forage.ErrInvalidConfiguration, opts.SubLots, MinSubLots, MaxSubLots)
	}
	if opts.HerdSize <= 0 {
		return nil, fmt.Errorf("%w: herd size %d", forage.ErrInvalidConfiguration, opts.HerdSize)
	}
	if opts.Custom != nil {
		if opts.Custom.BiomassSlope <= 0 {
			return nil, fmt.Errorf("%w: custom biomass slope %g", forage.ErrInvalidConfiguration, opts.Custom.BiomassSlope)
		}
		if opts.Custom.BaseRegrowth <= 0 {
			return nil, fmt.Errorf("%w: custom base regrowth %g", forage.ErrInvalidConfiguration, opts.Custom.BaseRegrowth)
		}
	}

	parcel, err := s.parcels.GetByID(ctx, parcelID)
	if err != nil {
		return nil, fmt.Errorf("failed to query parcel: %w", err)
	}
	if parcel == nil {
		return nil, ErrParcelNotFound
	}

	params, err := forage.ParamsFor(parcel.PastureType)
	if err != nil {
		return nil, err
	}
	if opts.Custom != nil {
		// BaseNDVI stays on the catalog value so the simulator keeps its
		// seasonal anchor.
		params.BiomassSlope = opts.Custom.BiomassSlope
		params.BiomassOffset = opts.Custom.BiomassOffset
		params.BaseRegrowth = opts.Custom.BaseRegrowth
	}

	cfg := s.pipelineConfig(opts.AverageWeightKg)
	now := time.Now().UTC()

	// The latest stored satellite sample anchors the run: the paddock
	// pipeline uses it directly and the simulator distributes sub-lot
	// vigor around its NDVI. Without one, everything is simulated around
	// the pasture type's typical NDVI.
	anchor, err := s.samples.GetLatestByParcel(ctx, parcelID)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest sample: %w", err)
	}

	baseNDVI := params.BaseNDVI
	var paddockSample models.VegetationSample
	if anchor != nil {
		baseNDVI = anchor.NDVI
		paddockSample = *anchor
	} else {
		paddockSample = s.sim.Sample(parcelID, 0, baseNDVI, now)
	}

	estimate, err := forage.EstimateBiomass(paddockSample, params, cfg)
	if err != nil {
		return nil, err
	}
	capacity, err := forage.ComputeCarryingCapacity(estimate, parcel.AreaHectares, cfg)
	if err != nil {
		return nil, err
	}
	rotation, err := forage.RecommendRotation(estimate, capacity, parcel.AreaHectares, opts.HerdSize, cfg)
	if err != nil {
		return nil, err
	}

	subPolys := geo.Subdivide(parcel.Geometry, opts.SubLots)
	if len(subPolys) == 0 {
		return nil, fmt.Errorf("%w: paddock could not be subdivided", ErrInvalidGeometry)
	}

	subResults := make([]SubLotResult, 0, len(subPolys))
	estimates := make([]models.BiomassEstimate, 0, len(subPolys))
	for i, poly := range subPolys {
		subLot := i + 1
		areaHa := geo.AreaHectares(poly)

		sample := s.sim.Sample(parcelID, subLot, baseNDVI, now)

		subEstimate, err := forage.EstimateBiomass(sample, params, cfg)
		if err != nil {
			return nil, fmt.Errorf("sub-lot %d: %w", subLot, err)
		}
		subCapacity, err := forage.ComputeCarryingCapacity(subEstimate, areaHa, cfg)
		if err != nil {
			return nil, fmt.Errorf("sub-lot %d: %w", subLot, err)
		}
		// Rotation within a sub-lot assumes the whole herd occupies it,
		// which is how strip-grazing rotations are planned.
		subRotation, err := forage.RecommendRotation(subEstimate, subCapacity, areaHa, opts.HerdSize, cfg)
		if err != nil {
			return nil, fmt.Errorf("sub-lot %d: %w", subLot, err)
		}

		estimates = append(estimates, subEstimate)
		subResults = append(subResults, SubLotResult{
			SubLot:       subLot,
			Geometry:     poly,
			AreaHectares: areaHa,
			Sample:       sample,
			Estimate:     subEstimate,
			Capacity:     subCapacity,
			Rotation:     subRotation,
		})
	}

	ndviSummary, biomassSummary := forage.SummarizeEstimates(estimates)

	agreement := 0.0
	if anchor != nil && anchor.Source == models.SourceSatellite {
		reference := make([]float64, len(estimates))
		modeled := make([]float64, len(estimates))
		for i, e := range estimates {
			reference[i] = anchor.NDVI
			modeled[i] = e.NDVI
		}
		agreement = forage.AgreementScore(reference, modeled)
	}

	s.log.Info("Analysis completed", map[string]interface{}{
		"parcel_id":     parcelID,
		"sub_lots":      len(subResults),
		"herd_size":     opts.HerdSize,
		"ev_per_ha":     capacity.EVPerHectare,
		"grazing_days":  rotation.GrazingDays,
		"rest_days":     rotation.RestDays,
		"anchor_source": paddockSample.Source,
	})

	return &AnalysisResult{
		Parcel:         *parcel,
		AnchorSample:   paddockSample,
		Estimate:       estimate,
		Capacity:       capacity,
		Rotation:       rotation,
		SubLots:        subResults,
		NDVISummary:    ndviSummary,
		BiomassSummary: biomassSummary,
		AgreementScore: agreement,
		GeneratedAt:    now,
	}, nil
}

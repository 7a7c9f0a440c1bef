package models

import (
	"time"

	"github.com/google/uuid"
)

// SurfaceClass is the NDVI-based land-surface classification used to scale
// standing biomass down to the fraction covered by vegetation.
type SurfaceClass string

const (
	SurfaceBareSoil SurfaceClass = "SUELO_DESNUDO"
	SurfaceSparse   SurfaceClass = "VEGETACION_ESCASA"
	SurfaceModerate SurfaceClass = "VEGETACION_MODERADA"
	SurfaceDense    SurfaceClass = "VEGETACION_DENSA"
)

// BiomassEstimate is the dry-matter estimate derived from one vegetation
// sample. DryMatterKgHa is total standing biomass; AvailableKgHa is the
// portion reachable by grazing animals after applying vegetation cover and
// the grazing-efficiency factor. Derived values are never persisted.
type BiomassEstimate struct {
	ParcelID        uuid.UUID    `json:"parcel_id"`
	SubLot          int          `json:"sub_lot"`
	NDVI            float64      `json:"ndvi"`
	Surface         SurfaceClass `json:"surface"`
	CoverFraction   float64      `json:"cover_fraction"`
	DryMatterKgHa   float64      `json:"dry_matter_kg_ha"`
	AvailableKgHa   float64      `json:"available_kg_ha"`
	RegrowthKgHaDay float64      `json:"regrowth_kg_ha_day"`
	ComputedAt      time.Time    `json:"computed_at"`
}

// CarryingCapacity expresses how many animal equivalents (EV, the intake of
// a 450 kg cow) a hectare sustains over the reference grazing period.
type CarryingCapacity struct {
	ParcelID     uuid.UUID `json:"parcel_id"`
	SubLot       int       `json:"sub_lot"`
	EVPerHectare float64   `json:"ev_per_hectare"`
	TotalEV      float64   `json:"total_ev"`
	PeriodDays   int       `json:"period_days"`
}

// RotationPlan recommends how long a herd can graze the parcel and how long
// the parcel must rest before the next occupation.
type RotationPlan struct {
	ParcelID    uuid.UUID `json:"parcel_id"`
	SubLot      int       `json:"sub_lot"`
	GrazingDays int       `json:"grazing_days"`
	RestDays    int       `json:"rest_days"`
	HerdSize    int       `json:"herd_size"`
}

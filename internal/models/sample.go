package models

import (
	"time"

	"github.com/google/uuid"
)

// SampleSource records where a vegetation sample came from.
type SampleSource string

const (
	// SourceSatellite marks samples extracted from a real satellite scene
	// by an external acquisition collaborator.
	SourceSatellite SampleSource = "satellite"
	// SourceSimulated marks samples synthesized by the simulation package
	// when no scene is available.
	SourceSimulated SampleSource = "simulated"
)

// VegetationSample is one acquisition event for a parcel: mean vegetation
// indices and reflectance bands over the paddock (or one of its sub-lots).
// Samples are immutable once created; derived estimates are recomputed from
// them on demand and never written back.
type VegetationSample struct {
	ID         uuid.UUID    `json:"id"`
	ParcelID   uuid.UUID    `json:"parcel_id"`
	SubLot     int          `json:"sub_lot"` // 0 means whole paddock
	NDVI       float64      `json:"ndvi"`
	EVI        float64      `json:"evi"`
	SAVI       float64      `json:"savi"`
	BlueMean   float64      `json:"blue_mean"`
	RedMean    float64      `json:"red_mean"`
	NIRMean    float64      `json:"nir_mean"`
	CloudCover float64      `json:"cloud_cover"` // fraction in [0,1]
	Source     SampleSource `json:"source"`
	AcquiredAt time.Time    `json:"acquired_at"`
	CreatedAt  time.Time    `json:"created_at"`
}

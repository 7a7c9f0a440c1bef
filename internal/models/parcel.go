package models

import (
	"time"

	"github.com/google/uuid"
)

// PastureType identifies the forage species mix growing on a parcel.
// It selects the index-to-biomass regression and regrowth parameters.
type PastureType string

const (
	PastureAlfalfa    PastureType = "ALFALFA"
	PastureRaygrass   PastureType = "RAYGRASS"
	PastureFescue     PastureType = "FESTUCA"
	PastureWheatgrass PastureType = "AGROPIRRO"
	PastureNatural    PastureType = "PASTIZAL_NATURAL"
)

// Parcel represents a grazing paddock with its boundary geometry.
// AreaHectares is computed from the geometry at creation time and cached
// on the row so listings do not recompute it.
type Parcel struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	PastureType  PastureType `json:"pasture_type"`
	Geometry     Polygon     `json:"geometry"`
	AreaHectares float64     `json:"area_hectares"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Polygon represents a paddock boundary as a GeoJSON Polygon.
// Coordinates follow the GeoJSON layout: [rings][points][lon,lat], with the
// first ring being the exterior boundary. Coordinates are WGS84 lat/lng
// (SRID 4326). Geometry is stored in the database as a jsonb column and all
// spatial computation happens in the geo package, so no PostGIS is required.
type Polygon struct {
	Coordinates [][][2]float64
	SRID        int
}

// Exterior returns the outer ring of the polygon, or nil if the polygon is
// empty. Interior rings (holes) are not used by the forage pipeline.
func (p Polygon) Exterior() [][2]float64 {
	if len(p.Coordinates) == 0 {
		return nil
	}
	return p.Coordinates[0]
}

// IsEmpty reports whether the polygon has no usable exterior ring.
// A valid ring needs at least three distinct vertices.
func (p Polygon) IsEmpty() bool {
	return len(p.Coordinates) == 0 || len(p.Coordinates[0]) < 3
}

// Scan implements sql.Scanner for reading polygon geometry from the
// database. The jsonb column holds a GeoJSON geometry object.
func (p *Polygon) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to scan Polygon: expected []byte or string, got %T", value)
	}

	var geom struct {
		Type        string         `json:"type"`
		Coordinates [][][2]float64 `json:"coordinates"`
	}

	if err := json.Unmarshal(bytes, &geom); err != nil {
		return fmt.Errorf("failed to unmarshal polygon geometry: %w", err)
	}

	if geom.Type != "Polygon" {
		return fmt.Errorf("expected Polygon type, got %s", geom.Type)
	}

	p.Coordinates = geom.Coordinates
	p.SRID = 4326

	return nil
}

// Value implements driver.Valuer for writing polygon geometry to the
// database as a GeoJSON string suitable for a jsonb column.
func (p Polygon) Value() (driver.Value, error) {
	if len(p.Coordinates) == 0 {
		return nil, nil
	}

	geom := map[string]interface{}{
		"type":        "Polygon",
		"coordinates": p.Coordinates,
	}

	geoJSON, err := json.Marshal(geom)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal polygon to GeoJSON: %w", err)
	}

	return string(geoJSON), nil
}

// MarshalJSON implements json.Marshaler for API responses.
// Returns GeoJSON-compliant output for map-rendering consumers.
func (p Polygon) MarshalJSON() ([]byte, error) {
	geom := struct {
		Type        string         `json:"type"`
		Coordinates [][][2]float64 `json:"coordinates"`
	}{
		Type:        "Polygon",
		Coordinates: p.Coordinates,
	}
	return json.Marshal(geom)
}

// UnmarshalJSON implements json.Unmarshaler for parsing GeoJSON input,
// used when a paddock boundary arrives in a create-parcel request.
func (p *Polygon) UnmarshalJSON(data []byte) error {
	var geom struct {
		Type        string         `json:"type"`
		Coordinates [][][2]float64 `json:"coordinates"`
	}

	if err := json.Unmarshal(data, &geom); err != nil {
		return fmt.Errorf("failed to unmarshal polygon: %w", err)
	}

	if geom.Type != "" && geom.Type != "Polygon" {
		return fmt.Errorf("expected Polygon type, got %s", geom.Type)
	}

	p.Coordinates = geom.Coordinates
	p.SRID = 4326

	return nil
}

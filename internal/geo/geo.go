// Package geo provides the planar geometry the forage pipeline needs:
// paddock area, centroid, and subdivision into grid sub-lots. It operates
// on GeoJSON-shaped coordinates ([lon,lat]) and deliberately avoids any
// spatial database dependency so analysis runs on stored geometry alone.
package geo

import (
	"math"

	"github.com/pastizal/api/internal/models"
)

// metersPerDegreeLat is the approximate length of one degree of latitude.
// Longitude degrees shrink with cos(latitude); the equirectangular
// projection below is accurate enough at paddock scale.
const metersPerDegreeLat = 111320.0

const squareMetersPerHectare = 10000.0

// Bounds is an axis-aligned bounding box in lon/lat order.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// openRing strips the duplicate closing vertex GeoJSON rings carry.
func openRing(ring [][2]float64) [][2]float64 {
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		return ring[:len(ring)-1]
	}
	return ring
}

// closeRing appends the first vertex so the ring is GeoJSON-valid.
func closeRing(ring [][2]float64) [][2]float64 {
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		return append(ring, ring[0])
	}
	return ring
}

// RingBounds returns the bounding box of a ring.
func RingBounds(ring [][2]float64) Bounds {
	b := Bounds{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, pt := range ring {
		b.MinX = math.Min(b.MinX, pt[0])
		b.MinY = math.Min(b.MinY, pt[1])
		b.MaxX = math.Max(b.MaxX, pt[0])
		b.MaxY = math.Max(b.MaxY, pt[1])
	}
	return b
}

// Centroid returns the area-weighted centroid of the polygon's exterior
// ring as (lon, lat). Degenerate rings fall back to the vertex mean.
func Centroid(p models.Polygon) (float64, float64) {
	ring := openRing(p.Exterior())
	if len(ring) == 0 {
		return 0, 0
	}

	var cx, cy, area float64
	for i := range ring {
		j := (i + 1) % len(ring)
		cross := ring[i][0]*ring[j][1] - ring[j][0]*ring[i][1]
		area += cross
		cx += (ring[i][0] + ring[j][0]) * cross
		cy += (ring[i][1] + ring[j][1]) * cross
	}

	if area == 0 {
		var sx, sy float64
		for _, pt := range ring {
			sx += pt[0]
			sy += pt[1]
		}
		n := float64(len(ring))
		return sx / n, sy / n
	}

	area /= 2
	return cx / (6 * area), cy / (6 * area)
}

// shoelace returns the signed planar area of a ring in its own units.
func shoelace(ring [][2]float64) float64 {
	ring = openRing(ring)
	if len(ring) < 3 {
		return 0
	}
	var sum float64
	for i := range ring {
		j := (i + 1) % len(ring)
		sum += ring[i][0]*ring[j][1] - ring[j][0]*ring[i][1]
	}
	return sum / 2
}

// AreaHectares computes the polygon's area in hectares. Geographic
// coordinates are projected to meters with an equirectangular projection
// at the ring's mean latitude before applying the shoelace formula.
func AreaHectares(p models.Polygon) float64 {
	ring := openRing(p.Exterior())
	if len(ring) < 3 {
		return 0
	}

	var latSum float64
	for _, pt := range ring {
		latSum += pt[1]
	}
	meanLat := latSum / float64(len(ring))

	mPerDegLon := metersPerDegreeLat * math.Cos(meanLat*math.Pi/180)

	projected := make([][2]float64, len(ring))
	for i, pt := range ring {
		projected[i] = [2]float64{pt[0] * mPerDegLon, pt[1] * metersPerDegreeLat}
	}

	return math.Abs(shoelace(projected)) / squareMetersPerHectare
}

// clipEdge clips a ring against one half-plane of a rectangular window.
// inside reports whether a point is kept; intersect finds the crossing
// point on the boundary. This is one pass of Sutherland-Hodgman, which is
// exact because the clip window is convex.
func clipEdge(ring [][2]float64, inside func([2]float64) bool, intersect func(a, b [2]float64) [2]float64) [][2]float64 {
	if len(ring) == 0 {
		return nil
	}
	out := make([][2]float64, 0, len(ring)+4)
	prev := ring[len(ring)-1]
	for _, curr := range ring {
		if inside(curr) {
			if !inside(prev) {
				out = append(out, intersect(prev, curr))
			}
			out = append(out, curr)
		} else if inside(prev) {
			out = append(out, intersect(prev, curr))
		}
		prev = curr
	}
	return out
}

// ClipToRect clips a ring against an axis-aligned rectangle and returns the
// open result ring, or nil if the intersection is empty.
func ClipToRect(ring [][2]float64, rect Bounds) [][2]float64 {
	ring = openRing(ring)

	atX := func(x float64) func(a, b [2]float64) [2]float64 {
		return func(a, b [2]float64) [2]float64 {
			t := (x - a[0]) / (b[0] - a[0])
			return [2]float64{x, a[1] + t*(b[1]-a[1])}
		}
	}
	atY := func(y float64) func(a, b [2]float64) [2]float64 {
		return func(a, b [2]float64) [2]float64 {
			t := (y - a[1]) / (b[1] - a[1])
			return [2]float64{a[0] + t*(b[0]-a[0]), y}
		}
	}

	ring = clipEdge(ring, func(p [2]float64) bool { return p[0] >= rect.MinX }, atX(rect.MinX))
	ring = clipEdge(ring, func(p [2]float64) bool { return p[0] <= rect.MaxX }, atX(rect.MaxX))
	ring = clipEdge(ring, func(p [2]float64) bool { return p[1] >= rect.MinY }, atY(rect.MinY))
	ring = clipEdge(ring, func(p [2]float64) bool { return p[1] <= rect.MaxY }, atY(rect.MaxY))

	if len(ring) < 3 {
		return nil
	}
	return ring
}

// Subdivide splits a paddock polygon into at most n sub-lots by laying a
// near-square grid over its bounding box and clipping each cell against the
// paddock boundary. Cells whose intersection is empty or degenerate are
// discarded, so fewer than n sub-lots may come back for irregular shapes.
// Sub-lots are ordered row-major from the south-west corner.
func Subdivide(p models.Polygon, n int) []models.Polygon {
	exterior := openRing(p.Exterior())
	if len(exterior) < 3 || n < 1 {
		return nil
	}
	if n == 1 {
		return []models.Polygon{p}
	}

	bounds := RingBounds(exterior)
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := int(math.Ceil(float64(n) / float64(cols)))

	width := (bounds.MaxX - bounds.MinX) / float64(cols)
	height := (bounds.MaxY - bounds.MinY) / float64(rows)
	if width <= 0 || height <= 0 {
		return nil
	}

	subLots := make([]models.Polygon, 0, n)
	for row := 0; row < rows && len(subLots) < n; row++ {
		for col := 0; col < cols && len(subLots) < n; col++ {
			cell := Bounds{
				MinX: bounds.MinX + float64(col)*width,
				MaxX: bounds.MinX + float64(col+1)*width,
				MinY: bounds.MinY + float64(row)*height,
				MaxY: bounds.MinY + float64(row+1)*height,
			}

			clipped := ClipToRect(exterior, cell)
			if clipped == nil || math.Abs(shoelace(clipped)) == 0 {
				continue
			}

			subLots = append(subLots, models.Polygon{
				Coordinates: [][][2]float64{closeRing(clipped)},
				SRID:        4326,
			})
		}
	}

	return subLots
}

package forage

// Spectral vegetation indices computed from mean surface reflectance.
// Bands are Sentinel-2 naming: blue=B2, red=B4, nir=B8, already scaled to
// reflectance in [0,1]. Degenerate denominators return 0 rather than NaN,
// matching how the acquisition side guards them.

// NDVI computes the normalized difference vegetation index.
func NDVI(nir, red float64) float64 {
	denom := nir + red
	if denom <= 0 {
		return 0
	}
	return (nir - red) / denom
}

// EVI computes the enhanced vegetation index with the standard MODIS
// coefficients (G=2.5, C1=6, C2=7.5, L=1).
func EVI(nir, red, blue float64) float64 {
	denom := nir + 6*red - 7.5*blue + 1
	if denom <= 0 {
		return 0
	}
	return 2.5 * (nir - red) / denom
}

// SAVI computes the soil-adjusted vegetation index with L=0.5, the
// correction used for intermediate vegetation cover.
func SAVI(nir, red float64) float64 {
	denom := nir + red + 0.5
	if denom <= 0 {
		return 0
	}
	return 1.5 * (nir - red) / denom
}

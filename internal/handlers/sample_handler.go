package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/pastizal/api/internal/errors"
	"github.com/pastizal/api/internal/models"
	"github.com/pastizal/api/internal/services"
)

// SampleHandler handles vegetation-sample HTTP requests.
type SampleHandler struct {
	service services.ForageService
}

// NewSampleHandler creates a new SampleHandler instance.
func NewSampleHandler(service services.ForageService) *SampleHandler {
	return &SampleHandler{
		service: service,
	}
}

// IngestSampleRequest is the body for POST /api/v1/parcels/:id/samples.
// Band means are surface reflectance in [0,1]. NDVI is optional; when
// omitted it is derived from the red and NIR bands.
type IngestSampleRequest struct {
	NDVI       *float64  `json:"ndvi" binding:"omitempty,gte=-1,lte=1"`
	BlueMean   float64   `json:"blue_mean" binding:"gte=0,lte=1"`
	RedMean    float64   `json:"red_mean" binding:"required,gt=0,lte=1"`
	NIRMean    float64   `json:"nir_mean" binding:"required,gt=0,lte=1"`
	CloudCover float64   `json:"cloud_cover" binding:"gte=0,lte=1"`
	AcquiredAt time.Time `json:"acquired_at" binding:"required"`
}

// SampleResponse wraps a single stored sample.
type SampleResponse struct {
	Sample *models.VegetationSample `json:"sample"`
}

// SampleListResponse wraps a sample listing.
type SampleListResponse struct {
	Samples []models.VegetationSample `json:"samples"`
	Count   int                       `json:"count"`
}

// Ingest handles POST /api/v1/parcels/:id/samples.
func (h *SampleHandler) Ingest(c *gin.Context) {
	id, ok := parseParcelID(c)
	if !ok {
		return
	}

	var req IngestSampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	sample, err := h.service.IngestSample(c.Request.Context(), id, services.SampleInput{
		NDVI:       req.NDVI,
		BlueMean:   req.BlueMean,
		RedMean:    req.RedMean,
		NIRMean:    req.NIRMean,
		CloudCover: req.CloudCover,
		AcquiredAt: req.AcquiredAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrParcelNotFound):
			apierrors.NotFound(c, "No parcel with this ID")
		case errors.Is(err, services.ErrInvalidSample):
			apierrors.BadRequest(c, err.Error(), nil)
		default:
			apierrors.InternalServerError(c, "Failed to store sample", err)
		}
		return
	}

	c.JSON(http.StatusCreated, SampleResponse{Sample: sample})
}

// List handles GET /api/v1/parcels/:id/samples.
func (h *SampleHandler) List(c *gin.Context) {
	id, ok := parseParcelID(c)
	if !ok {
		return
	}

	samples, err := h.service.ListSamples(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrParcelNotFound) {
			apierrors.NotFound(c, "No parcel with this ID")
			return
		}
		apierrors.InternalServerError(c, "Failed to list samples", err)
		return
	}

	c.JSON(http.StatusOK, SampleListResponse{
		Samples: samples,
		Count:   len(samples),
	})
}

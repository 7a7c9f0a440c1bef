package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/pastizal/api/internal/errors"
	"github.com/pastizal/api/internal/forage"
	"github.com/pastizal/api/internal/services"
)

// Default herd used when an analysis request does not describe one.
const defaultHerdSize = 100

// AnalysisHandler handles forage-analysis HTTP requests.
type AnalysisHandler struct {
	service services.ForageService
}

// NewAnalysisHandler creates a new AnalysisHandler instance.
func NewAnalysisHandler(service services.ForageService) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
	}
}

// AnalysisRequest is the body for POST /api/v1/parcels/:id/analysis.
// All fields are optional; zero values take the configured defaults.
type AnalysisRequest struct {
	SubLots         int                  `json:"sub_lots" binding:"omitempty,min=1,max=64"`
	HerdSize        int                  `json:"herd_size" binding:"omitempty,min=1,max=10000"`
	AverageWeightKg float64              `json:"average_weight_kg" binding:"omitempty,gte=100,lte=1000"`
	CustomParams    *CustomParamsRequest `json:"custom_params" binding:"omitempty"`
}

// CustomParamsRequest carries user-supplied regression constants for a
// custom pasture, overriding the catalog entry for one analysis run.
type CustomParamsRequest struct {
	BiomassSlope  float64 `json:"biomass_slope" binding:"required,gt=0,lte=10000"`
	BiomassOffset float64 `json:"biomass_offset" binding:"gte=-2000,lte=0"`
	BaseRegrowth  float64 `json:"base_regrowth" binding:"required,gt=0,lte=200"`
}

// Analyze handles POST /api/v1/parcels/:id/analysis.
// It runs the full forage pipeline for the parcel and returns paddock and
// sub-lot results with aggregate statistics.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	id, ok := parseParcelID(c)
	if !ok {
		return
	}

	req := AnalysisRequest{HerdSize: defaultHerdSize}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			var validationErrors validator.ValidationErrors
			if errors.As(err, &validationErrors) {
				apierrors.ValidationError(c, validationErrors)
				return
			}
			apierrors.BadRequest(c, "Invalid request body", nil)
			return
		}
		if req.HerdSize == 0 {
			req.HerdSize = defaultHerdSize
		}
	}

	opts := services.AnalysisOptions{
		SubLots:         req.SubLots,
		HerdSize:        req.HerdSize,
		AverageWeightKg: req.AverageWeightKg,
	}
	if req.CustomParams != nil {
		opts.Custom = &services.ParamOverrides{
			BiomassSlope:  req.CustomParams.BiomassSlope,
			BiomassOffset: req.CustomParams.BiomassOffset,
			BaseRegrowth:  req.CustomParams.BaseRegrowth,
		}
	}

	result, err := h.service.Analyze(c.Request.Context(), id, opts)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrParcelNotFound):
			apierrors.NotFound(c, "No parcel with this ID")
		case errors.Is(err, forage.ErrInvalidIndexRange):
			apierrors.PipelineError(c, apierrors.ErrInvalidIndexRange, err.Error())
		case errors.Is(err, forage.ErrInvalidConfiguration):
			apierrors.PipelineError(c, apierrors.ErrInvalidConfiguration, err.Error())
		case errors.Is(err, forage.ErrCloudCoverExceeded):
			apierrors.PipelineError(c, apierrors.ErrCloudCover, err.Error())
		case errors.Is(err, services.ErrInvalidGeometry):
			apierrors.BadRequest(c, err.Error(), nil)
		default:
			apierrors.InternalServerError(c, "Failed to run forage analysis", err)
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

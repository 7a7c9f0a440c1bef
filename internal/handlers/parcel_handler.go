package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apierrors "github.com/pastizal/api/internal/errors"
	"github.com/pastizal/api/internal/forage"
	"github.com/pastizal/api/internal/models"
	"github.com/pastizal/api/internal/services"
)

// ParcelHandler handles parcel-related HTTP requests.
type ParcelHandler struct {
	service services.ParcelService
}

// NewParcelHandler creates a new ParcelHandler instance.
func NewParcelHandler(service services.ParcelService) *ParcelHandler {
	return &ParcelHandler{
		service: service,
	}
}

// CreateParcelRequest is the body for POST /api/v1/parcels.
// Geometry is a GeoJSON Polygon; the exterior ring must be closed.
type CreateParcelRequest struct {
	Name        string         `json:"name" binding:"required,min=1,max=200"`
	PastureType string         `json:"pasture_type" binding:"required,oneof=ALFALFA RAYGRASS FESTUCA AGROPIRRO PASTIZAL_NATURAL"`
	Geometry    models.Polygon `json:"geometry" binding:"required"`
}

// ParcelResponse wraps a single parcel.
type ParcelResponse struct {
	Parcel *models.Parcel `json:"parcel"`
}

// ParcelListResponse wraps a parcel listing.
type ParcelListResponse struct {
	Parcels []models.Parcel `json:"parcels"`
	Count   int             `json:"count"`
}

// Create handles POST /api/v1/parcels.
func (h *ParcelHandler) Create(c *gin.Context) {
	var req CreateParcelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	parcel, err := h.service.CreateParcel(c.Request.Context(), req.Name,
		models.PastureType(req.PastureType), req.Geometry)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidGeometry):
			apierrors.BadRequest(c, err.Error(), nil)
		case errors.Is(err, forage.ErrInvalidConfiguration):
			apierrors.PipelineError(c, apierrors.ErrInvalidConfiguration, err.Error())
		default:
			apierrors.InternalServerError(c, "Failed to create parcel", err)
		}
		return
	}

	c.JSON(http.StatusCreated, ParcelResponse{Parcel: parcel})
}

// Get handles GET /api/v1/parcels/:id.
func (h *ParcelHandler) Get(c *gin.Context) {
	id, ok := parseParcelID(c)
	if !ok {
		return
	}

	parcel, err := h.service.GetParcel(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrParcelNotFound) {
			apierrors.NotFound(c, "No parcel with this ID")
			return
		}
		apierrors.InternalServerError(c, "Failed to query parcel", err)
		return
	}

	c.JSON(http.StatusOK, ParcelResponse{Parcel: parcel})
}

// List handles GET /api/v1/parcels.
func (h *ParcelHandler) List(c *gin.Context) {
	parcels, err := h.service.ListParcels(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to list parcels", err)
		return
	}

	c.JSON(http.StatusOK, ParcelListResponse{
		Parcels: parcels,
		Count:   len(parcels),
	})
}

// Delete handles DELETE /api/v1/parcels/:id.
func (h *ParcelHandler) Delete(c *gin.Context) {
	id, ok := parseParcelID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteParcel(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrParcelNotFound) {
			apierrors.NotFound(c, "No parcel with this ID")
			return
		}
		apierrors.InternalServerError(c, "Failed to delete parcel", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// parseParcelID reads the :id path parameter as a UUID, responding with a
// 400 itself when the value is malformed.
func parseParcelID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Parcel ID must be a valid UUID", map[string]interface{}{
			"id": c.Param("id"),
		})
		return uuid.Nil, false
	}
	return id, true
}

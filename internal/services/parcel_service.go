package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pastizal/api/internal/forage"
	"github.com/pastizal/api/internal/geo"
	"github.com/pastizal/api/internal/logger"
	"github.com/pastizal/api/internal/models"
	"github.com/pastizal/api/internal/repository"
)

// Parcel size sanity bounds in hectares. Anything outside is almost
// certainly a malformed boundary, not a paddock.
const (
	MinParcelHectares = 0.01
	MaxParcelHectares = 100000
)

// Service-level errors
var (
	ErrParcelNotFound  = errors.New("parcel not found")
	ErrInvalidGeometry = errors.New("invalid parcel geometry")
)

// ParcelService defines the interface for parcel business logic operations.
type ParcelService interface {
	// CreateParcel validates the boundary, computes its area, and stores
	// the parcel. Returns ErrInvalidGeometry for unusable boundaries and
	// forage.ErrInvalidConfiguration for unknown pasture types.
	CreateParcel(ctx context.Context, name string, pastureType models.PastureType, geometry models.Polygon) (*models.Parcel, error)

	// GetParcel retrieves one parcel.
	// Returns ErrParcelNotFound if it does not exist.
	GetParcel(ctx context.Context, id uuid.UUID) (*models.Parcel, error)

	// ListParcels returns all parcels, newest first.
	ListParcels(ctx context.Context) ([]models.Parcel, error)

	// DeleteParcel removes a parcel.
	// Returns ErrParcelNotFound if it does not exist.
	DeleteParcel(ctx context.Context, id uuid.UUID) error
}

// parcelService is the concrete implementation of ParcelService.
type parcelService struct {
	repo repository.ParcelRepository
	log  *logger.Logger
}

// NewParcelService creates a new instance of ParcelService.
func NewParcelService(repo repository.ParcelRepository, log *logger.Logger) ParcelService {
	return &parcelService{
		repo: repo,
		log:  log.WithComponent("parcel_service"),
	}
}

func (s *parcelService) CreateParcel(ctx context.Context, name string, pastureType models.PastureType, geometry models.Polygon) (*models.Parcel, error) {
	if _, err := forage.ParamsFor(pastureType); err != nil {
		s.log.Warn("Unknown pasture type", map[string]interface{}{
			"pasture_type": pastureType,
		})
		return nil, err
	}

	if geometry.IsEmpty() {
		return nil, fmt.Errorf("%w: boundary needs at least three vertices", ErrInvalidGeometry)
	}
	for _, pt := range geometry.Exterior() {
		if pt[1] < -90 || pt[1] > 90 || pt[0] < -180 || pt[0] > 180 {
			return nil, fmt.Errorf("%w: vertex (%g, %g) outside WGS84 bounds",
				ErrInvalidGeometry, pt[0], pt[1])
		}
	}

	areaHa := geo.AreaHectares(geometry)
	if areaHa < MinParcelHectares || areaHa > MaxParcelHectares {
		return nil, fmt.Errorf("%w: area %.4f ha outside [%g, %g]",
			ErrInvalidGeometry, areaHa, float64(MinParcelHectares), float64(MaxParcelHectares))
	}

	parcel := &models.Parcel{
		ID:           uuid.New(),
		Name:         name,
		PastureType:  pastureType,
		Geometry:     geometry,
		AreaHectares: areaHa,
	}

	if err := s.repo.Create(ctx, parcel); err != nil {
		s.log.Error("Failed to create parcel", err, map[string]interface{}{
			"name": name,
		})
		return nil, fmt.Errorf("failed to create parcel: %w", err)
	}

	s.log.Info("Parcel created", map[string]interface{}{
		"parcel_id":    parcel.ID,
		"name":         parcel.Name,
		"pasture_type": parcel.PastureType,
		"area_ha":      parcel.AreaHectares,
	})

	return parcel, nil
}

func (s *parcelService) GetParcel(ctx context.Context, id uuid.UUID) (*models.Parcel, error) {
	parcel, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to query parcel", err, map[string]interface{}{
			"parcel_id": id,
		})
		return nil, fmt.Errorf("failed to query parcel: %w", err)
	}

	if parcel == nil {
		return nil, ErrParcelNotFound
	}

	return parcel, nil
}

func (s *parcelService) ListParcels(ctx context.Context) ([]models.Parcel, error) {
	parcels, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("Failed to list parcels", err, nil)
		return nil, fmt.Errorf("failed to list parcels: %w", err)
	}
	return parcels, nil
}

func (s *parcelService) DeleteParcel(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.log.Error("Failed to delete parcel", err, map[string]interface{}{
			"parcel_id": id,
		})
		return fmt.Errorf("failed to delete parcel: %w", err)
	}

	if !deleted {
		return ErrParcelNotFound
	}

	s.log.Info("Parcel deleted", map[string]interface{}{
		"parcel_id": id,
	})

	return nil
}

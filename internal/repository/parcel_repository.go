package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pastizal/api/internal/database"
	"github.com/pastizal/api/internal/models"
)

// ParcelRepository defines the interface for parcel data access operations.
type ParcelRepository interface {
	// Create inserts a new parcel and returns the stored row.
	Create(ctx context.Context, parcel *models.Parcel) error

	// GetByID fetches one parcel.
	// Returns nil, nil if no parcel exists (not an error).
	// Returns error only for actual database failures.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Parcel, error)

	// List returns all parcels ordered by creation time, newest first.
	// Returns an empty slice when there are none (not an error).
	List(ctx context.Context) ([]models.Parcel, error)

	// Delete removes a parcel and its samples.
	// Returns false, nil when the parcel did not exist.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// parcelRepository is the concrete implementation of ParcelRepository.
type parcelRepository struct {
	db *database.Database
}

// NewParcelRepository creates a new instance of ParcelRepository.
func NewParcelRepository(db *database.Database) ParcelRepository {
	return &parcelRepository{
		db: db,
	}
}

const parcelColumns = `
	id,
	name,
	pasture_type,
	geom,
	area_hectares,
	created_at,
	updated_at
`

func (r *parcelRepository) Create(ctx context.Context, parcel *models.Parcel) error {
	query := `
		INSERT INTO parcels (id, name, pasture_type, geom, area_hectares, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING created_at, updated_at
	`

	geomValue, err := parcel.Geometry.Value()
	if err != nil {
		return fmt.Errorf("failed to encode parcel geometry: %w", err)
	}

	err = r.db.Pool.QueryRow(ctx, query,
		parcel.ID,
		parcel.Name,
		string(parcel.PastureType),
		geomValue,
		parcel.AreaHectares,
	).Scan(&parcel.CreatedAt, &parcel.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert parcel %s: %w", parcel.ID, err)
	}

	return nil
}

func (r *parcelRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Parcel, error) {
	query := `SELECT ` + parcelColumns + ` FROM parcels WHERE id = $1`

	parcel, err := scanParcel(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query parcel %s: %w", id, err)
	}

	return parcel, nil
}

func (r *parcelRepository) List(ctx context.Context) ([]models.Parcel, error) {
	query := `SELECT ` + parcelColumns + ` FROM parcels ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query parcels: %w", err)
	}
	defer rows.Close()

	parcels := []models.Parcel{}
	for rows.Next() {
		parcel, err := scanParcel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan parcel row: %w", err)
		}
		parcels = append(parcels, *parcel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parcel rows: %w", err)
	}

	return parcels, nil
}

func (r *parcelRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM parcels WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete parcel %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// scanParcel reads one parcel row, parsing the jsonb geometry column
// through the Polygon scanner.
func scanParcel(row pgx.Row) (*models.Parcel, error) {
	var parcel models.Parcel
	var pastureType string
	var geomJSON []byte

	err := row.Scan(
		&parcel.ID,
		&parcel.Name,
		&pastureType,
		&geomJSON,
		&parcel.AreaHectares,
		&parcel.CreatedAt,
		&parcel.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	parcel.PastureType = models.PastureType(pastureType)
	if err := parcel.Geometry.Scan(geomJSON); err != nil {
		return nil, fmt.Errorf("failed to parse geometry for parcel %s: %w", parcel.ID, err)
	}

	return &parcel, nil
}

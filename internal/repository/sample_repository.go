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

// Maximum number of samples returned by a listing query.
const maxListedSamples = 100

// SampleRepository defines the interface for vegetation-sample data access.
// Samples are append-only: there is no update operation because a sample is
// immutable once acquired.
type SampleRepository interface {
	// Insert stores a new vegetation sample.
	Insert(ctx context.Context, sample *models.VegetationSample) error

	// GetLatestByParcel returns the most recent whole-paddock sample for
	// a parcel. Returns nil, nil when the parcel has no samples yet.
	GetLatestByParcel(ctx context.Context, parcelID uuid.UUID) (*models.VegetationSample, error)

	// ListByParcel returns samples for a parcel ordered by acquisition
	// date, newest first. Returns an empty slice when there are none.
	ListByParcel(ctx context.Context, parcelID uuid.UUID) ([]models.VegetationSample, error)
}

// sampleRepository is the concrete implementation of SampleRepository.
type sampleRepository struct {
	db *database.Database
}

// NewSampleRepository creates a new instance of SampleRepository.
func NewSampleRepository(db *database.Database) SampleRepository {
	return &sampleRepository{
		db: db,
	}
}

const sampleColumns = `
	id,
	parcel_id,
	sub_lot,
	ndvi,
	evi,
	savi,
	blue_mean,
	red_mean,
	nir_mean,
	cloud_cover,
	source,
	acquired_at,
	created_at
`

func (r *sampleRepository) Insert(ctx context.Context, sample *models.VegetationSample) error {
	query := `
		INSERT INTO vegetation_samples
			(id, parcel_id, sub_lot, ndvi, evi, savi, blue_mean, red_mean, nir_mean,
			 cloud_cover, source, acquired_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		sample.ID,
		sample.ParcelID,
		sample.SubLot,
		sample.NDVI,
		sample.EVI,
		sample.SAVI,
		sample.BlueMean,
		sample.RedMean,
		sample.NIRMean,
		sample.CloudCover,
		string(sample.Source),
		sample.AcquiredAt,
	).Scan(&sample.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert sample %s for parcel %s: %w",
			sample.ID, sample.ParcelID, err)
	}

	return nil
}

func (r *sampleRepository) GetLatestByParcel(ctx context.Context, parcelID uuid.UUID) (*models.VegetationSample, error) {
	query := `
		SELECT ` + sampleColumns + `
		FROM vegetation_samples
		WHERE parcel_id = $1 AND sub_lot = 0
		ORDER BY acquired_at DESC
		LIMIT 1
	`

	sample, err := scanSample(r.db.Pool.QueryRow(ctx, query, parcelID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query latest sample for parcel %s: %w", parcelID, err)
	}

	return sample, nil
}

func (r *sampleRepository) ListByParcel(ctx context.Context, parcelID uuid.UUID) ([]models.VegetationSample, error) {
	query := `
		SELECT ` + sampleColumns + `
		FROM vegetation_samples
		WHERE parcel_id = $1
		ORDER BY acquired_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, parcelID, maxListedSamples)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples for parcel %s: %w", parcelID, err)
	}
	defer rows.Close()

	samples := []models.VegetationSample{}
	for rows.Next() {
		sample, err := scanSample(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sample row: %w", err)
		}
		samples = append(samples, *sample)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sample rows: %w", err)
	}

	return samples, nil
}

func scanSample(row pgx.Row) (*models.VegetationSample, error) {
	var sample models.VegetationSample
	var source string

	err := row.Scan(
		&sample.ID,
		&sample.ParcelID,
		&sample.SubLot,
		&sample.NDVI,
		&sample.EVI,
		&sample.SAVI,
		&sample.BlueMean,
		&sample.RedMean,
		&sample.NIRMean,
		&sample.CloudCover,
		&source,
		&sample.AcquiredAt,
		&sample.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	sample.Source = models.SampleSource(source)
	return &sample, nil
}

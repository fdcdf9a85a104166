package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uniarchive/archive-api/internal/models"
)

// LocationRepository manages physical location rows.
type LocationRepository struct {
	db *sqlx.DB
}

// NewLocationRepository constructs the repository.
func NewLocationRepository(db *sqlx.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

const locationColumns = `id, shelf_number, bay_code, section_number, full_location_code`

// Create inserts a location. The full code is always recomputed from the
// components before the write.
func (r *LocationRepository) Create(ctx context.Context, loc *models.Location) error {
	if loc.ID == "" {
		loc.ID = uuid.NewString()
	}
	loc.FullCode = loc.ComputeFullCode()
	const query = `INSERT INTO locations (id, shelf_number, bay_code, section_number, full_location_code) VALUES (:id, :shelf_number, :bay_code, :section_number, :full_location_code)`
	if _, err := r.db.NamedExecContext(ctx, query, loc); err != nil {
		return fmt.Errorf("create location: %w", err)
	}
	return nil
}

// Update rewrites the component fields, recomputing the full code.
func (r *LocationRepository) Update(ctx context.Context, loc *models.Location) error {
	loc.FullCode = loc.ComputeFullCode()
	const query = `UPDATE locations SET shelf_number = :shelf_number, bay_code = :bay_code, section_number = :section_number, full_location_code = :full_location_code WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, loc)
	if err != nil {
		return fmt.Errorf("update location: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check location update rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindByID returns one location.
func (r *LocationRepository) FindByID(ctx context.Context, id string) (*models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = $1 LIMIT 1`
	var loc models.Location
	if err := r.db.GetContext(ctx, &loc, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find location by id: %w", err)
	}
	return &loc, nil
}

// List returns every location ordered by code.
func (r *LocationRepository) List(ctx context.Context) ([]models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations ORDER BY full_location_code ASC`
	var locations []models.Location
	if err := r.db.SelectContext(ctx, &locations, query); err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locations, nil
}

// CountRecords reports how many records reference the location.
func (r *LocationRepository) CountRecords(ctx context.Context, id string) (int, error) {
	const query = `SELECT COUNT(*) FROM records WHERE location_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count location records: %w", err)
	}
	return count, nil
}

// Delete removes a location. Callers must reject the delete while records
// still reference it.
func (r *LocationRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM locations WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check location delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

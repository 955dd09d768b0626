// Package repository contains data access logic separated from HTTP handlers.
// This file holds the venue queries: cities and cinemas.  The deployment
// runs a single cinema but the tables are keyed so that more can be added.
package repository

import (
	"context" // context allows passing deadlines and cancellation signals to DB operations

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// CinemaRepo encapsulates all database queries related to cities and
// cinemas.  It runs on a pool or on a transaction (see WithTx).
type CinemaRepo struct {
	db sqlx.ExtContext // db is the connection pool or transaction
}

// NewCinemaRepo constructs a CinemaRepo with the provided DB handle.
func NewCinemaRepo(db sqlx.ExtContext) *CinemaRepo {
	return &CinemaRepo{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *CinemaRepo) WithTx(tx *sqlx.Tx) *CinemaRepo { return &CinemaRepo{db: tx} }

// CreateCity inserts a city and populates its ID.
func (r *CinemaRepo) CreateCity(ctx context.Context, c *model.City) error {
	res, err := r.db.ExecContext(ctx, "INSERT INTO cities (name) VALUES (?)", c.Name)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// Create inserts a new cinema into the database.  On success the cinema's
// ID field will be populated with the auto-generated value.
func (r *CinemaRepo) Create(ctx context.Context, c *model.Cinema) error {
	const q = `INSERT INTO cinemas (city_id, name, address, details, location_lat, location_lon)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.CityID, c.Name, c.Address, c.Details, c.LocationLat, c.LocationLon)
	if err != nil {
		return err // propagate DB errors to the caller
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID fetches a cinema by its ID.  It returns ErrNotFound if no row
// is found.
func (r *CinemaRepo) GetByID(ctx context.Context, id uint64) (*model.Cinema, error) {
	const q = `SELECT id, city_id, name, address, details, location_lat, location_lon
	           FROM cinemas WHERE id = ?`
	var c model.Cinema
	if err := sqlx.GetContext(ctx, r.db, &c, q, id); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// ListAll returns every cinema ordered by ID.
func (r *CinemaRepo) ListAll(ctx context.Context) ([]model.Cinema, error) {
	const q = `SELECT id, city_id, name, address, details, location_lat, location_lon
	           FROM cinemas ORDER BY id`
	var out []model.Cinema
	if err := sqlx.SelectContext(ctx, r.db, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

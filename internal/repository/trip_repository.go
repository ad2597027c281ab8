package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/hvugvjn/smart-ticket/internal/model"
)

// TripRepo provides read access to the trip catalog and the bulk
// creation path used when an admin registers a new departure.  The
// booking core treats trips as read-only reference data; nothing in
// this repository mutates an existing trip.
type TripRepo struct {
	db *sql.DB
}

// NewTripRepo returns a new TripRepo bound to the given database.
func NewTripRepo(db *sql.DB) *TripRepo { return &TripRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// that span multiple repositories.
func (r *TripRepo) DB() *sql.DB { return r.db }

const tripColumns = `id, operator_name, source, destination, departure_time, arrival_time,
	duration, vehicle_type, rating, total_seats, amenities, created_at`

func scanTrip(row interface{ Scan(...interface{}) error }) (*model.Trip, error) {
	var t model.Trip
	var amenities string
	err := row.Scan(
		&t.ID, &t.OperatorName, &t.Source, &t.Destination, &t.DepartureTime, &t.ArrivalTime,
		&t.Duration, &t.VehicleType, &t.Rating, &t.TotalSeats, &amenities, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Amenities = splitCSV(amenities)
	return &t, nil
}

// List returns every trip in the catalog ordered by departure time.
func (r *TripRepo) List(ctx context.Context) ([]model.Trip, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+tripColumns+` FROM trips ORDER BY departure_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	trips := make([]model.Trip, 0)
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return trips, nil
}

// GetByID returns a single trip.  ErrTripNotFound is returned when no
// trip with the given id exists.
func (r *TripRepo) GetByID(ctx context.Context, id uint64) (*model.Trip, error) {
	t, err := scanTrip(r.db.QueryRowContext(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTripNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts a new trip and populates the generated ID and
// CreatedAt on the provided record.
func (r *TripRepo) Create(ctx context.Context, t *model.Trip) error {
	const q = `INSERT INTO trips
		(operator_name, source, destination, departure_time, arrival_time, duration, vehicle_type, rating, total_seats, amenities)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		t.OperatorName, t.Source, t.Destination,
		t.DepartureTime.UTC().Format("2006-01-02 15:04:05"),
		t.ArrivalTime.UTC().Format("2006-01-02 15:04:05"),
		t.Duration, t.VehicleType, t.Rating, t.TotalSeats, joinCSV(t.Amenities),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	t.CreatedAt = time.Now().UTC()
	return nil
}

// splitCSV turns a comma separated DB column into a slice, returning
// an empty slice for an empty column so JSON renders [] rather than null.
func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinCSV(parts []string) string { return strings.Join(parts, ",") }

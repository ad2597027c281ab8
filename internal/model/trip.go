package model

import "time"

// Trip is a scheduled, seat-limited departure between two cities.
// Trips are owned by the catalog side of the system and are
// read-only to the booking core: once created with its seat grid,
// a trip's schedule and capacity never change.
//
// Fields:
//  ID            – primary key identifier.
//  OperatorName  – name of the bus operator running the trip.
//  Source        – departure city.
//  Destination   – arrival city.
//  DepartureTime – scheduled departure, UTC.
//  ArrivalTime   – scheduled arrival, UTC.
//  Duration      – human-readable duration ("8h 30m").
//  VehicleType   – coach description (e.g. "AC Sleeper").
//  Rating        – operator rating out of five, in hundredths.
//  TotalSeats    – number of seats created for the trip.
//  Amenities     – list of on-board amenities.
//  CreatedAt     – creation timestamp.
type Trip struct {
	ID            uint64    `json:"id"`             // trips.id
	OperatorName  string    `json:"operator_name"`  // trips.operator_name
	Source        string    `json:"source"`         // trips.source
	Destination   string    `json:"destination"`    // trips.destination
	DepartureTime time.Time `json:"departure_time"` // trips.departure_time
	ArrivalTime   time.Time `json:"arrival_time"`   // trips.arrival_time
	Duration      string    `json:"duration"`       // trips.duration
	VehicleType   string    `json:"vehicle_type"`   // trips.vehicle_type
	Rating        uint32    `json:"rating"`         // trips.rating (hundredths, 450 = 4.50)
	TotalSeats    uint32    `json:"total_seats"`    // trips.total_seats
	Amenities     []string  `json:"amenities"`      // trips.amenities (comma separated in DB)
	CreatedAt     time.Time `json:"created_at"`     // trips.created_at
}

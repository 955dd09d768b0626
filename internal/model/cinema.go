package model

import "time"

// City is a row in the `cities` table.
type City struct {
    ID   uint64 `db:"id" json:"id"`     // cities.id
    Name string `db:"name" json:"name"` // cities.name
}

// Cinema represents a movie theatre venue.  The deployment runs a
// single cinema, but every screening and room still carries its
// cinema ID so that more venues can be added later.
//
// Fields:
//  ID          – primary key identifier.
//  CityID      – city the cinema is located in.
//  Name        – display name.
//  Address     – street address.
//  Details     – free text description.
//  LocationLat – latitude of the venue.
//  LocationLon – longitude of the venue.
type Cinema struct {
    ID          uint64  `db:"id" json:"id"`                     // cinemas.id
    CityID      uint64  `db:"city_id" json:"city_id"`           // cinemas.city_id
    Name        string  `db:"name" json:"name"`                 // cinemas.name
    Address     string  `db:"address" json:"address"`           // cinemas.address
    Details     string  `db:"details" json:"details"`           // cinemas.details
    LocationLat float64 `db:"location_lat" json:"location_lat"` // cinemas.location_lat
    LocationLon float64 `db:"location_lon" json:"location_lon"` // cinemas.location_lon
}

// Category groups movies (genre, age rating, ...).  Categories form a
// forest through ParentID; a nil ParentID marks a root.
type Category struct {
    ID       uint64  `db:"id" json:"id"`               // categories.id
    ParentID *uint64 `db:"parent_id" json:"parent_id"` // categories.parent_id (nullable)
    Name     string  `db:"name" json:"name"`           // categories.name
}

// Movie is a film that can be scheduled in screenings.  Translations
// and Resolutions are stored as comma separated lists in the database
// and exposed as slices by the repository.
type Movie struct {
    ID              uint64    `db:"id" json:"id"`
    Name            string    `db:"name" json:"name"`
    Slug            string    `db:"slug" json:"slug"`
    Details         string    `db:"details" json:"details"`
    ReleaseDate     time.Time `db:"release_date" json:"release_date"`
    DurationMinutes uint32    `db:"duration_minutes" json:"duration_minutes"`
    Country         string    `db:"country" json:"country"`
    Translations    []string  `db:"-" json:"translations"`
    Resolutions     []string  `db:"-" json:"resolutions"`
}

// Worker is a person credited on a movie (actor, producer, writer ...).
type Worker struct {
    ID      uint64 `db:"id" json:"id"`
    Name    string `db:"name" json:"name"`
    Details string `db:"details" json:"details"`
    Role    string `db:"role" json:"role"`
}

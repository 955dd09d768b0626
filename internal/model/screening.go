package model

import "time"

// Screening represents one scheduled showing of a movie in a room.
// Screenings are immutable once created apart from administrative
// corrections.
//
// Fields:
//  ID          – primary key identifier.
//  MovieID     – movie being shown.
//  CinemaID    – cinema hosting the screening.
//  RoomID      – room where the screening takes place.
//  DateTime    – start of the screening (UTC).
//  BasePrice   – price in the smallest currency unit before the seat
//                tier adjustment.
//  Translation – audio/subtitle variant, e.g. "original", "dubbed".
//  Resolution  – projection format, e.g. "2D", "IMAX 3D".
type Screening struct {
    ID          uint64    `db:"id" json:"id"`                   // screenings.id
    MovieID     uint64    `db:"movie_id" json:"movie_id"`       // screenings.movie_id
    CinemaID    uint64    `db:"cinema_id" json:"cinema_id"`     // screenings.cinema_id
    RoomID      uint64    `db:"room_id" json:"room_id"`         // screenings.room_id
    DateTime    time.Time `db:"date_time" json:"date_time"`     // screenings.date_time
    BasePrice   int64     `db:"base_price" json:"base_price"`   // screenings.base_price
    Translation string    `db:"translation" json:"translation"` // screenings.translation
    Resolution  string    `db:"resolution" json:"resolution"`   // screenings.resolution
}

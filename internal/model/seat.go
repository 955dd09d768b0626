package model

// Seat describes a physical seat in a room.  The layout is static:
// seats are created with the room and never change per screening.
//
// Fields:
//  ID          – primary key identifier.
//  RoomID      – room to which this seat belongs.
//  Number      – printed seat label, e.g. "A7".
//  PriceTierID – price tier (room_prices.id) of the seat.
type Seat struct {
    ID          uint64 `db:"id" json:"id"`                       // seats.id
    RoomID      uint64 `db:"room_id" json:"room_id"`             // seats.room_id
    Number      string `db:"number" json:"number"`               // seats.number
    PriceTierID uint64 `db:"price_tier_id" json:"price_tier_id"` // seats.price_tier_id
}

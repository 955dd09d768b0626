package model

// Room represents a screening room within a cinema.  A room owns its
// price tiers and its seats; both are configured once during cinema
// setup and reused by every screening in the room.
//
// Fields:
//  ID       – primary key identifier.
//  CinemaID – cinema the room belongs to.
//  Name     – room name, unique per cinema.
type Room struct {
    ID       uint64 `db:"id" json:"id"`               // rooms.id
    CinemaID uint64 `db:"cinema_id" json:"cinema_id"` // rooms.cinema_id
    Name     string `db:"name" json:"name"`           // rooms.name
}

// AdjustmentType selects how a price tier modifies a screening's base
// price.
type AdjustmentType string

const (
    // AdjustmentFixed adds AdjustmentValue smallest currency units.
    AdjustmentFixed AdjustmentType = "fixed"
    // AdjustmentPercentage adds AdjustmentValue percent of the base price.
    AdjustmentPercentage AdjustmentType = "percentage"
)

// RoomPriceTier is a pricing category of a room (NORMAL, VIP, couple
// seat ...).  Every seat references exactly one tier of its room.
//
// Fields:
//  ID              – primary key identifier.
//  RoomID          – room the tier belongs to.
//  Name            – display name of the tier.
//  AdjustmentType  – fixed or percentage.
//  AdjustmentValue – amount (fixed) or whole percent (percentage).
type RoomPriceTier struct {
    ID              uint64         `db:"id" json:"id"`                             // room_prices.id
    RoomID          uint64         `db:"room_id" json:"room_id"`                   // room_prices.room_id
    Name            string         `db:"name" json:"name"`                         // room_prices.name
    AdjustmentType  AdjustmentType `db:"adjustment_type" json:"adjustment_type"`   // room_prices.adjustment_type
    AdjustmentValue int64          `db:"adjustment_value" json:"adjustment_value"` // room_prices.adjustment_value
}

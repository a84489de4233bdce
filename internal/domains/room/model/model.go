package model

import (
	hotelModel "hotel/internal/domains/hotel/model"
	"hotel/shared/model"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID            = "id"
	FieldHotelID       = "hotel_id"
	FieldRoomNumber    = "room_number"
	FieldRoomType      = "room_type"
	FieldPricePerNight = "price_per_night"
	FieldMaxGuests     = "max_guests"
	FieldIsAvailable   = "is_available"
	FieldAmenities     = "amenities"
	FieldImages        = "images"
	FieldDescription   = "description"

	DefaultMaxGuests = 2
)

// Room types offered by the catalog. Custom values are accepted as well.
const (
	TypeSingle   = "Single"
	TypeDouble   = "Double"
	TypeTwin     = "Twin"
	TypeSuite    = "Suite"
	TypeDeluxe   = "Deluxe"
	TypeStandard = "Standard"
)

type Room struct {
	ID            string          `db:"id"`
	HotelID       string          `db:"hotel_id"`
	RoomNumber    string          `db:"room_number"`
	RoomType      string          `db:"room_type"`
	PricePerNight decimal.Decimal `db:"price_per_night"`
	MaxGuests     int             `db:"max_guests"`
	IsAvailable   bool            `db:"is_available"`
	Amenities     pq.StringArray  `db:"amenities"`
	Images        pq.StringArray  `db:"images"`
	Description   string          `db:"description"`
	model.Metadata
}

// RoomDetail is a room with a summary of its hotel.
type RoomDetail struct {
	Room
	HotelName       *string `column:"name"        db:"hotel_name"        table:"hotels"`
	HotelLocation   *string `column:"location"    db:"hotel_location"    table:"hotels"`
	HotelStarRating *int    `column:"star_rating" db:"hotel_star_rating" table:"hotels"`
}

func (RoomDetail) GetJoinQuery() string {
	return "LEFT JOIN " + hotelModel.TableName + " ON " + hotelModel.TableName + "." + hotelModel.FieldID +
		" = " + TableName + "." + FieldHotelID
}

package model

import (
	"database/sql/driver"
	hotelModel "hotel/internal/domains/hotel/model"
	roomModel "hotel/internal/domains/room/model"
	userModel "hotel/internal/domains/user/model"
	"hotel/shared/model"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID                 = "id"
	FieldUserID             = "user_id"
	FieldRoomID             = "room_id"
	FieldHotelID            = "hotel_id"
	FieldStartDate          = "start_date"
	FieldEndDate            = "end_date"
	FieldGuests             = "guests"
	FieldGuestDetails       = "guest_details"
	FieldSpecialRequests    = "special_requests"
	FieldTotalPrice         = "total_price"
	FieldStatus             = "status"
	FieldPaymentMethod      = "payment_method"
	FieldPaymentStatus      = "payment_status"
	FieldCancellationReason = "cancellation_reason"
	FieldCancelledAt        = "cancelled_at"

	DefaultCancellationReason = "No reason provided"
)

type Guest struct {
	Name  string `json:"name"            validate:"required,max=100"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Age   int    `json:"age,omitempty"   validate:"omitempty,gte=0,lte=150"`
}

// GuestDetails is stored as jsonb.
type GuestDetails struct {
	PrimaryGuest     *Guest  `json:"primary_guest,omitempty"     validate:"omitempty"`
	AdditionalGuests []Guest `json:"additional_guests,omitempty" validate:"omitempty,dive"`
}

func (g GuestDetails) Value() (driver.Value, error) {
	return model.JSONValue(g)
}

func (g *GuestDetails) Scan(src any) error {
	return model.ScanJSON(src, g)
}

type Booking struct {
	ID                 string          `db:"id"`
	UserID             string          `db:"user_id"`
	RoomID             string          `db:"room_id"`
	HotelID            string          `db:"hotel_id"`
	StartDate          time.Time       `db:"start_date"`
	EndDate            time.Time       `db:"end_date"`
	Guests             int             `db:"guests"`
	GuestDetails       GuestDetails    `db:"guest_details"`
	SpecialRequests    string          `db:"special_requests"`
	TotalPrice         decimal.Decimal `db:"total_price"`
	Status             Status          `db:"status"`
	PaymentMethod      PaymentMethod   `db:"payment_method"`
	PaymentStatus      PaymentStatus   `db:"payment_status"`
	CancellationReason *string         `db:"cancellation_reason"`
	CancelledAt        *time.Time      `db:"cancelled_at"`
	model.Metadata
}

// IsOwnedBy reports whether userID placed the booking.
func (b Booking) IsOwnedBy(userID string) bool {
	return b.UserID == userID
}

// BookingDetail is a booking with summaries of its guest account, room and
// hotel.
type BookingDetail struct {
	Booking
	UserName          *string          `column:"name"            db:"user_name"            table:"users"`
	UserEmail         *string          `column:"email"           db:"user_email"           table:"users"`
	RoomNumber        *string          `column:"room_number"     db:"room_number"          table:"rooms"`
	RoomType          *string          `column:"room_type"       db:"room_type"            table:"rooms"`
	RoomPricePerNight *decimal.Decimal `column:"price_per_night" db:"room_price_per_night" table:"rooms"`
	HotelName         *string          `column:"name"            db:"hotel_name"           table:"hotels"`
	HotelLocation     *string          `column:"location"        db:"hotel_location"       table:"hotels"`
}

func (BookingDetail) GetJoinQuery() string {
	return join(userModel.TableName, userModel.FieldID, FieldUserID) +
		join(roomModel.TableName, roomModel.FieldID, FieldRoomID) +
		join(hotelModel.TableName, hotelModel.FieldID, FieldHotelID)
}

func join(table, id, foreignKey string) string {
	return " LEFT JOIN " + table + " ON " + table + "." + id + " = " + TableName + "." + foreignKey
}

// StatusSummary is one row of the per-status breakdown.
type StatusSummary struct {
	Status     Status          `db:"status"`
	Count      int             `db:"count"`
	TotalPrice decimal.Decimal `db:"total_price"`
}

// MonthlySummary is one calendar month of bookings, by creation time.
type MonthlySummary struct {
	Year    int             `db:"year"`
	Month   int             `db:"month"`
	Count   int             `db:"count"`
	Revenue decimal.Decimal `db:"revenue"`
}

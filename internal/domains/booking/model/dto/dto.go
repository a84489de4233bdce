package dto

import (
	"hotel/internal/domains/booking/model"
	"hotel/internal/domains/booking/pricing"
	roomModel "hotel/internal/domains/room/model"
	"hotel/shared"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	gModel "hotel/shared/model"
	"hotel/shared/timezone"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateBookingRequest struct {
	RoomID          string              `json:"room_id"          validate:"required,uuid"`
	StartDate       string              `json:"start_date"       validate:"required,date"                                                 example:"2024-01-15"`
	EndDate         string              `json:"end_date"         validate:"required,date"                                                 example:"2024-01-20"`
	Guests          int                 `json:"guests"           validate:"required,gte=1"`
	GuestDetails    *model.GuestDetails `json:"guest_details"    validate:"omitempty"`
	SpecialRequests string              `json:"special_requests" validate:"omitempty,max=1000"`
	PaymentMethod   string              `json:"payment_method"   validate:"omitempty,oneof=credit_card debit_card paypal bank_transfer"`
}

// Dates parses the stay. Calendar dates are read as midnight in the
// application timezone.
func (c *CreateBookingRequest) Dates() (start, end time.Time, err error) {
	if start, err = timezone.ParseDate(c.StartDate); err != nil {
		return start, end, model.ErrInvalidDateRange
	}

	if end, err = timezone.ParseDate(c.EndDate); err != nil {
		return start, end, model.ErrInvalidDateRange
	}

	return start, end, nil
}

func (c *CreateBookingRequest) ToModel(user string, room roomModel.Room, start, end time.Time, status model.Status) model.Booking {
	method := model.PaymentMethod(c.PaymentMethod)
	if method == "" {
		method = model.PaymentMethodCreditCard
	}

	booking := model.Booking{
		ID:              uuid.NewString(),
		UserID:          user,
		RoomID:          room.ID,
		HotelID:         room.HotelID,
		StartDate:       start,
		EndDate:         end,
		Guests:          c.Guests,
		SpecialRequests: c.SpecialRequests,
		TotalPrice:      pricing.ComputePrice(start, end, room.PricePerNight),
		Status:          status,
		PaymentMethod:   method,
		PaymentStatus:   model.PaymentStatusPending,
		Metadata:        gModel.NewMetadata(user, timezone.Now()),
	}

	if c.GuestDetails != nil {
		booking.GuestDetails = *c.GuestDetails
	}

	return booking
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// CancelFields is the single write a cancellation performs.
type CancelFields struct {
	Status             model.Status        `db:"status"`
	PaymentStatus      model.PaymentStatus `db:"payment_status"`
	CancellationReason string              `db:"cancellation_reason"`
	CancelledAt        time.Time           `db:"cancelled_at"`
}

type UpdateStatusRequest struct {
	Status        model.Status        `db:"status"         json:"status"         validate:"omitempty,oneof=pending confirmed cancelled completed"`
	PaymentStatus model.PaymentStatus `db:"payment_status" json:"payment_status" validate:"omitempty,oneof=pending paid refunded failed"`
}

func (u *UpdateStatusRequest) IsEmpty() bool {
	return u.Status == "" && u.PaymentStatus == ""
}

type UserSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type RoomSummary struct {
	RoomNumber    string          `json:"room_number"`
	RoomType      string          `json:"room_type"`
	PricePerNight decimal.Decimal `json:"price_per_night" swaggertype:"number"`
}

type HotelSummary struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

type BookingResponse struct {
	ID                 string              `json:"id"`
	UserID             string              `json:"user_id"`
	RoomID             string              `json:"room_id"`
	HotelID            string              `json:"hotel_id"`
	StartDate          string              `json:"start_date"`
	EndDate            string              `json:"end_date"`
	Nights             int                 `json:"nights"`
	Guests             int                 `json:"guests"`
	GuestDetails       model.GuestDetails  `json:"guest_details"`
	SpecialRequests    string              `json:"special_requests,omitempty"`
	TotalPrice         decimal.Decimal     `json:"total_price"                   swaggertype:"number"`
	Status             model.Status        `json:"status"`
	PaymentMethod      model.PaymentMethod `json:"payment_method"`
	PaymentStatus      model.PaymentStatus `json:"payment_status"`
	CancellationReason string              `json:"cancellation_reason,omitempty"`
	CancelledAt        string              `json:"cancelled_at,omitempty"`
	User               *UserSummary        `json:"user,omitempty"`
	Room               *RoomSummary        `json:"room,omitempty"`
	Hotel              *HotelSummary       `json:"hotel,omitempty"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(booking model.Booking) {
	r.ID = booking.ID
	r.UserID = booking.UserID
	r.RoomID = booking.RoomID
	r.HotelID = booking.HotelID
	r.StartDate = timezone.Format(booking.StartDate, constant.DateFormat)
	r.EndDate = timezone.Format(booking.EndDate, constant.DateFormat)
	r.Nights = pricing.Nights(booking.StartDate, booking.EndDate)
	r.Guests = booking.Guests
	r.GuestDetails = booking.GuestDetails
	r.SpecialRequests = booking.SpecialRequests
	r.TotalPrice = booking.TotalPrice
	r.Status = booking.Status
	r.PaymentMethod = booking.PaymentMethod
	r.PaymentStatus = booking.PaymentStatus

	if booking.CancellationReason != nil {
		r.CancellationReason = *booking.CancellationReason
	}

	if booking.CancelledAt != nil {
		r.CancelledAt = timezone.Format(*booking.CancelledAt, constant.DateFormat)
	}

	r.Metadata.FromModel(booking.Metadata)
}

func (r *BookingResponse) FromDetail(detail model.BookingDetail) {
	r.FromModel(detail.Booking)

	if detail.UserName != nil {
		r.User = &UserSummary{Name: *detail.UserName, Email: deref(detail.UserEmail)}
	}

	if detail.RoomNumber != nil {
		r.Room = &RoomSummary{RoomNumber: *detail.RoomNumber, RoomType: deref(detail.RoomType)}

		if detail.RoomPricePerNight != nil {
			r.Room.PricePerNight = *detail.RoomPricePerNight
		}
	}

	if detail.HotelName != nil {
		r.Hotel = &HotelSummary{Name: *detail.HotelName, Location: deref(detail.HotelLocation)}
	}
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.BookingDetail, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, m := range models {
		r.Bookings[i].FromDetail(m)
	}
}

type ListQuery struct {
	Status  string
	HotelID string
	UserID  string
}

func (q *ListQuery) FromRequest(r *http.Request) {
	query := r.URL.Query()

	q.Status = query.Get("status")
	q.HotelID = query.Get("hotel_id")
	q.UserID = query.Get("user_id")
}

func (q ListQuery) ToFilter() gDto.Filter {
	filter := gDto.And{}

	if q.Status != "" {
		filter = append(filter, gDto.Eq{Column: col(model.FieldStatus), Value: q.Status})
	}

	if q.HotelID != "" {
		filter = append(filter, gDto.Eq{Column: col(model.FieldHotelID), Value: q.HotelID})
	}

	if q.UserID != "" {
		filter = append(filter, gDto.Eq{Column: col(model.FieldUserID), Value: q.UserID})
	}

	return filter
}

func col(name string) gDto.Column {
	return gDto.Col(model.TableName, name)
}

func deref(value *string) string {
	if value == nil {
		return ""
	}

	return *value
}

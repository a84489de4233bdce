package dto

import (
	"hotel/internal/domains/room/model"
	"hotel/shared"
	gDto "hotel/shared/dto"
	gModel "hotel/shared/model"
	"hotel/shared/timezone"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type CreateRoomRequest struct {
	HotelID       string          `json:"hotel_id"        validate:"required,uuid"`
	RoomNumber    string          `json:"room_number"     validate:"required,max=20"`
	RoomType      string          `json:"room_type"       validate:"required,max=50"`
	PricePerNight decimal.Decimal `json:"price_per_night" validate:"decimalgte=0"                 swaggertype:"number"`
	MaxGuests     int             `json:"max_guests"      validate:"omitempty,gte=1,lte=10"`
	IsAvailable   *bool           `json:"is_available"`
	Amenities     []string        `json:"amenities"       validate:"omitempty,dive,required,max=50"`
	Description   string          `json:"description"     validate:"omitempty,max=2000"`
}

func (c *CreateRoomRequest) ToModel(user string) model.Room {
	available := true
	if c.IsAvailable != nil {
		available = *c.IsAvailable
	}

	maxGuests := c.MaxGuests
	if maxGuests == 0 {
		maxGuests = model.DefaultMaxGuests
	}

	room := model.Room{
		ID:            uuid.NewString(),
		HotelID:       c.HotelID,
		RoomNumber:    c.RoomNumber,
		RoomType:      c.RoomType,
		PricePerNight: c.PricePerNight,
		MaxGuests:     maxGuests,
		IsAvailable:   available,
		Amenities:     pq.StringArray{},
		Images:        pq.StringArray{},
		Description:   c.Description,
		Metadata:      gModel.NewMetadata(user, timezone.Now()),
	}

	if c.Amenities != nil {
		room.Amenities = c.Amenities
	}

	return room
}

// UpdateRoomRequest is a partial update. The hotel a room belongs to never
// changes.
type UpdateRoomRequest struct {
	RoomNumber    string           `db:"room_number"     json:"room_number"     validate:"omitempty,max=20"`
	RoomType      string           `db:"room_type"       json:"room_type"       validate:"omitempty,max=50"`
	PricePerNight *decimal.Decimal `db:"price_per_night" json:"price_per_night" validate:"omitempty,decimalgte=0"                 swaggertype:"number"`
	MaxGuests     int              `db:"max_guests"      json:"max_guests"      validate:"omitempty,gte=1,lte=10"`
	IsAvailable   *bool            `db:"is_available"    json:"is_available"`
	Amenities     pq.StringArray   `db:"amenities"       json:"amenities"       validate:"omitempty,dive,required,max=50" swaggertype:"array,string"`
	Description   string           `db:"description"     json:"description"     validate:"omitempty,max=2000"`
}

func (u *UpdateRoomRequest) IsEmpty() bool {
	return u.RoomNumber == "" && u.RoomType == "" && u.PricePerNight == nil && u.MaxGuests == 0 &&
		u.IsAvailable == nil && u.Amenities == nil && u.Description == ""
}

type UpdateImagesRequest struct {
	Images pq.StringArray `db:"images"`
}

type UploadImageRequest struct {
	Image     *multipart.FileHeader `json:"image" swaggerignore:"true" validate:"required,mimetypes=image/png image/jpg image/jpeg image/webp,maxfilesize=5"`
	ImageFile multipart.File        `json:"-"`
}

type UploadImageResponse struct {
	URL    string   `json:"url"`
	Images []string `json:"images"`
}

type HotelSummary struct {
	Name       string `json:"name"`
	Location   string `json:"location"`
	StarRating int    `json:"star_rating"`
}

type RoomResponse struct {
	ID            string          `json:"id"`
	HotelID       string          `json:"hotel_id"`
	RoomNumber    string          `json:"room_number"`
	RoomType      string          `json:"room_type"`
	PricePerNight decimal.Decimal `json:"price_per_night" swaggertype:"number"`
	MaxGuests     int             `json:"max_guests"`
	IsAvailable   bool            `json:"is_available"`
	Amenities     []string        `json:"amenities"`
	Images        []string        `json:"images"`
	Description   string          `json:"description"`
	Hotel         *HotelSummary   `json:"hotel,omitempty"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(room model.Room) {
	r.ID = room.ID
	r.HotelID = room.HotelID
	r.RoomNumber = room.RoomNumber
	r.RoomType = room.RoomType
	r.PricePerNight = room.PricePerNight
	r.MaxGuests = room.MaxGuests
	r.IsAvailable = room.IsAvailable
	r.Amenities = nonNil(room.Amenities)
	r.Images = nonNil(room.Images)
	r.Description = room.Description
	r.Metadata.FromModel(room.Metadata)
}

func (r *RoomResponse) FromDetail(detail model.RoomDetail) {
	r.FromModel(detail.Room)

	if detail.HotelName == nil {
		return
	}

	r.Hotel = &HotelSummary{Name: *detail.HotelName}

	if detail.HotelLocation != nil {
		r.Hotel.Location = *detail.HotelLocation
	}

	if detail.HotelStarRating != nil {
		r.Hotel.StarRating = *detail.HotelStarRating
	}
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.RoomDetail, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, m := range models {
		r.Rooms[i].FromDetail(m)
	}
}

// ListQuery filters the room listing. MaxGuests keeps rooms that fit at
// least that many guests.
type ListQuery struct {
	HotelID     string
	RoomType    string
	PriceMin    *decimal.Decimal
	PriceMax    *decimal.Decimal
	Amenities   []string
	MaxGuests   *int
	IsAvailable *bool
}

func (q *ListQuery) FromRequest(r *http.Request) {
	query := r.URL.Query()

	q.HotelID = query.Get("hotel_id")
	q.RoomType = query.Get("room_type")
	q.PriceMin = shared.ConvertStringToDecimal(query.Get("price_min"))
	q.PriceMax = shared.ConvertStringToDecimal(query.Get("price_max"))
	q.Amenities = shared.SplitList(query.Get("amenities"))
	q.MaxGuests = shared.ConvertStringToInt(query.Get("max_guests"))
	q.IsAvailable = shared.ConvertStringToBool(query.Get("is_available"))
}

func (q ListQuery) ToFilter() gDto.Filter {
	filter := gDto.And{}

	if q.HotelID != "" {
		filter = append(filter, gDto.Eq{Column: col(model.FieldHotelID), Value: q.HotelID})
	}

	if q.RoomType != "" {
		filter = append(filter, gDto.Eq{Column: col(model.FieldRoomType), Value: q.RoomType})
	}

	if q.PriceMin != nil || q.PriceMax != nil {
		price := gDto.Range{Column: col(model.FieldPricePerNight)}
		if q.PriceMin != nil {
			price.Min = *q.PriceMin
		}

		if q.PriceMax != nil {
			price.Max = *q.PriceMax
		}

		filter = append(filter, price)
	}

	if len(q.Amenities) > 0 {
		filter = append(filter, gDto.Contains{Column: col(model.FieldAmenities), Values: q.Amenities})
	}

	if q.MaxGuests != nil {
		filter = append(filter, gDto.Range{Column: col(model.FieldMaxGuests), Min: *q.MaxGuests})
	}

	if q.IsAvailable != nil {
		filter = append(filter, gDto.Eq{Column: col(model.FieldIsAvailable), Value: *q.IsAvailable})
	}

	return filter
}

type AvailabilityRequest struct {
	StartDate string `json:"start_date" validate:"required,date"`
	EndDate   string `json:"end_date"   validate:"required,date"`
}

func (a *AvailabilityRequest) FromRequest(r *http.Request) {
	a.StartDate = r.URL.Query().Get("start_date")
	a.EndDate = r.URL.Query().Get("end_date")
}

type AvailabilityResponse struct {
	RoomID        string          `json:"room_id"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	Available     bool            `json:"available"`
	Nights        int             `json:"nights"`
	PricePerNight decimal.Decimal `json:"price_per_night" swaggertype:"number"`
	TotalPrice    decimal.Decimal `json:"total_price"     swaggertype:"number"`
}

func (a *AvailabilityResponse) FromModel(room model.Room, start, end time.Time, available bool, nights int, total decimal.Decimal) {
	a.RoomID = room.ID
	a.StartDate = timezone.Format(start, time.RFC3339)
	a.EndDate = timezone.Format(end, time.RFC3339)
	a.Available = available
	a.Nights = nights
	a.PricePerNight = room.PricePerNight
	a.TotalPrice = total
}

func col(name string) gDto.Column {
	return gDto.Col(model.TableName, name)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}

	return values
}

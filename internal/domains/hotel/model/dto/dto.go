package dto

import (
	"hotel/internal/domains/hotel/model"
	"hotel/shared"
	gDto "hotel/shared/dto"
	gModel "hotel/shared/model"
	"hotel/shared/timezone"
	"net/http"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type CreateHotelRequest struct {
	Name        string         `json:"name"        validate:"required,min=2,max=100"`
	Description string         `json:"description" validate:"omitempty,max=2000"`
	Location    string         `json:"location"    validate:"required,max=255"`
	StarRating  int            `json:"star_rating" validate:"required,gte=1,lte=5"`
	Amenities   []string       `json:"amenities"   validate:"omitempty,dive,required,max=50"`
	Contact     *model.Contact `json:"contact"     validate:"omitempty"`
	IsActive    *bool          `json:"is_active"`
}

func (c *CreateHotelRequest) ToModel(user string) model.Hotel {
	active := true
	if c.IsActive != nil {
		active = *c.IsActive
	}

	hotel := model.Hotel{
		ID:          uuid.NewString(),
		Name:        c.Name,
		Description: c.Description,
		Location:    c.Location,
		StarRating:  c.StarRating,
		Amenities:   pq.StringArray{},
		Images:      pq.StringArray{},
		IsActive:    active,
		Metadata:    gModel.NewMetadata(user, timezone.Now()),
	}

	if c.Amenities != nil {
		hotel.Amenities = c.Amenities
	}

	if c.Contact != nil {
		hotel.Contact = *c.Contact
	}

	return hotel
}

// UpdateHotelRequest is a partial update; only fields that are set are written.
type UpdateHotelRequest struct {
	Name        string         `db:"name"        json:"name"        validate:"omitempty,min=2,max=100"`
	Description string         `db:"description" json:"description" validate:"omitempty,max=2000"`
	Location    string         `db:"location"    json:"location"    validate:"omitempty,max=255"`
	StarRating  int            `db:"star_rating" json:"star_rating" validate:"omitempty,gte=1,lte=5"`
	Amenities   pq.StringArray `db:"amenities"   json:"amenities"   validate:"omitempty,dive,required,max=50" swaggertype:"array,string"`
	Contact     *model.Contact `db:"contact"     json:"contact"     validate:"omitempty"`
	IsActive    *bool          `db:"is_active"   json:"is_active"`
}

func (u *UpdateHotelRequest) IsEmpty() bool {
	return u.Name == "" && u.Description == "" && u.Location == "" && u.StarRating == 0 &&
		u.Amenities == nil && u.Contact == nil && u.IsActive == nil
}

type UpdateImagesRequest struct {
	Images pq.StringArray `db:"images"`
}

// UploadImageRequest carries an image as a data URI, e.g. data:image/png;base64,...
type UploadImageRequest struct {
	Image string `json:"image" validate:"required,mimetypes=image/png image/jpg image/jpeg image/webp,maxfilesize=5"`
}

type UploadImageResponse struct {
	URL    string   `json:"url"`
	Images []string `json:"images"`
}

type ContactResponse struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`
	Address string `json:"address,omitempty"`
}

type HotelResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	StarRating  int             `json:"star_rating"`
	Amenities   []string        `json:"amenities"`
	Images      []string        `json:"images"`
	Contact     ContactResponse `json:"contact"`
	IsActive    bool            `json:"is_active"`
	gDto.Metadata
}

func (r *HotelResponse) FromModel(hotel model.Hotel) {
	r.ID = hotel.ID
	r.Name = hotel.Name
	r.Description = hotel.Description
	r.Location = hotel.Location
	r.StarRating = hotel.StarRating
	r.Amenities = nonNil(hotel.Amenities)
	r.Images = nonNil(hotel.Images)
	r.Contact = ContactResponse(hotel.Contact)
	r.IsActive = hotel.IsActive
	r.Metadata.FromModel(hotel.Metadata)
}

type GetHotelsResponse struct {
	Hotels    []HotelResponse `json:"hotels"`
	TotalPage int             `json:"total_page"`
	TotalData int             `json:"total_data"`
}

func (r *GetHotelsResponse) FromModels(models []model.Hotel, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Hotels = make([]HotelResponse, len(models))
	for i, m := range models {
		r.Hotels[i].FromModel(m)
	}
}

// ListQuery filters the public hotel listing. Only active hotels are listed.
type ListQuery struct {
	Name       string
	Location   string
	StarRating *int
}

func (q *ListQuery) FromRequest(r *http.Request) {
	query := r.URL.Query()

	q.Name = query.Get("name")
	q.Location = query.Get("location")
	q.StarRating = shared.ConvertStringToInt(query.Get("star_rating"))
}

func (q ListQuery) ToFilter() gDto.Filter {
	filter := gDto.And{activeOnly()}

	if q.Name != "" {
		filter = append(filter, gDto.Like{Column: col(model.FieldName), Value: q.Name})
	}

	if q.Location != "" {
		filter = append(filter, gDto.Like{Column: col(model.FieldLocation), Value: q.Location})
	}

	if q.StarRating != nil {
		filter = append(filter, gDto.Eq{Column: col(model.FieldStarRating), Value: *q.StarRating})
	}

	return filter
}

// SearchQuery is the free text search: q matches name, description or
// location, amenities must all be present.
type SearchQuery struct {
	Query       string
	Location    string
	StarRatings []int
	Amenities   []string
}

func (q *SearchQuery) FromRequest(r *http.Request) {
	query := r.URL.Query()

	q.Query = query.Get("q")
	q.Location = query.Get("location")
	q.Amenities = shared.SplitList(query.Get("amenities"))

	q.StarRatings = nil
	for _, rating := range shared.SplitList(query.Get("star_rating")) {
		if value := shared.ConvertStringToInt(rating); value != nil {
			q.StarRatings = append(q.StarRatings, *value)
		}
	}
}

func (q SearchQuery) ToFilter() gDto.Filter {
	filter := gDto.And{activeOnly()}

	if q.Query != "" {
		filter = append(filter, gDto.Or{
			gDto.Like{Column: col(model.FieldName), Value: q.Query},
			gDto.Like{Column: col(model.FieldDescription), Value: q.Query},
			gDto.Like{Column: col(model.FieldLocation), Value: q.Query},
		})
	}

	if q.Location != "" {
		filter = append(filter, gDto.Like{Column: col(model.FieldLocation), Value: q.Location})
	}

	if len(q.StarRatings) > 0 {
		filter = append(filter, gDto.OneOf{Column: col(model.FieldStarRating), Values: q.StarRatings})
	}

	if len(q.Amenities) > 0 {
		filter = append(filter, gDto.Contains{Column: col(model.FieldAmenities), Values: q.Amenities})
	}

	return filter
}

func col(name string) gDto.Column {
	return gDto.Col(model.TableName, name)
}

func activeOnly() gDto.Filter {
	return gDto.Eq{Column: col(model.FieldIsActive), Value: true}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}

	return values
}

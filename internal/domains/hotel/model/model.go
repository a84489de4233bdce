package model

import (
	"database/sql/driver"
	"hotel/shared/model"

	"github.com/lib/pq"
)

const (
	TableName  = "hotels"
	EntityName = "hotel"

	FieldID          = "id"
	FieldName        = "name"
	FieldDescription = "description"
	FieldLocation    = "location"
	FieldStarRating  = "star_rating"
	FieldAmenities   = "amenities"
	FieldImages      = "images"
	FieldContact     = "contact"
	FieldIsActive    = "is_active"
)

// Contact is stored as jsonb.
type Contact struct {
	Phone   string `json:"phone,omitempty"   validate:"omitempty,max=30"`
	Email   string `json:"email,omitempty"   validate:"omitempty,email"`
	Website string `json:"website,omitempty" validate:"omitempty,url"`
	Address string `json:"address,omitempty" validate:"omitempty,max=255"`
}

func (c Contact) Value() (driver.Value, error) {
	return model.JSONValue(c)
}

func (c *Contact) Scan(src any) error {
	return model.ScanJSON(src, c)
}

type Hotel struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	Location    string         `db:"location"`
	StarRating  int            `db:"star_rating"`
	Amenities   pq.StringArray `db:"amenities"`
	Images      pq.StringArray `db:"images"`
	Contact     Contact        `db:"contact"`
	IsActive    bool           `db:"is_active"`
	model.Metadata
}

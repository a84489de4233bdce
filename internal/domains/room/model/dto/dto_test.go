package dto_test

import (
	"hotel/internal/domains/room/model"
	"hotel/internal/domains/room/model/dto"
	gDto "hotel/shared/dto"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRoomRequest_ToModel(t *testing.T) {
	req := dto.CreateRoomRequest{
		HotelID:       "hotel-1",
		RoomNumber:    "101",
		RoomType:      "double",
		PricePerNight: decimal.RequireFromString("89.99"),
	}

	room := req.ToModel("admin-1")

	assert.NotEmpty(t, room.ID)
	assert.Equal(t, model.DefaultMaxGuests, room.MaxGuests)
	assert.True(t, room.IsAvailable)
	assert.NotNil(t, room.Amenities)
	assert.NotNil(t, room.Images)
	assert.Equal(t, "admin-1", room.CreatedBy)

	unavailable := false
	req.IsAvailable = &unavailable
	req.MaxGuests = 4

	room = req.ToModel("admin-1")

	assert.False(t, room.IsAvailable)
	assert.Equal(t, 4, room.MaxGuests)
}

func TestListQuery(t *testing.T) {
	t.Run("empty query filters nothing", func(t *testing.T) {
		query := dto.ListQuery{}
		query.FromRequest(httptest.NewRequest("GET", "/v1/rooms", nil))

		where, args := gDto.Where(query.ToFilter())

		assert.Empty(t, where)
		assert.Empty(t, args)
	})

	t.Run("all filters", func(t *testing.T) {
		query := dto.ListQuery{}
		query.FromRequest(httptest.NewRequest("GET",
			"/v1/rooms?hotel_id=h1&room_type=suite&price_min=50&price_max=150.5&amenities=wifi,%20tv&max_guests=3&is_available=true", nil))

		require.NotNil(t, query.PriceMin)
		require.NotNil(t, query.PriceMax)
		assert.True(t, decimal.NewFromInt(50).Equal(*query.PriceMin))
		assert.Equal(t, []string{"wifi", "tv"}, query.Amenities)

		where, args := gDto.Where(query.ToFilter())

		assert.Contains(t, where, "rooms.hotel_id =")
		assert.Contains(t, where, "rooms.room_type =")
		assert.Contains(t, where, "rooms.price_per_night >=")
		assert.Contains(t, where, "rooms.price_per_night <=")
		assert.Contains(t, where, "rooms.amenities @>")
		assert.Contains(t, where, "rooms.max_guests >=")
		assert.Contains(t, where, "rooms.is_available =")
		assert.Len(t, args, 7)
	})

	t.Run("garbage numbers are ignored", func(t *testing.T) {
		query := dto.ListQuery{}
		query.FromRequest(httptest.NewRequest("GET", "/v1/rooms?price_min=cheap&max_guests=many", nil))

		assert.Nil(t, query.PriceMin)
		assert.Nil(t, query.MaxGuests)
	})
}

func TestUpdateRoomRequest_IsEmpty(t *testing.T) {
	assert.True(t, (&dto.UpdateRoomRequest{}).IsEmpty())
	assert.False(t, (&dto.UpdateRoomRequest{RoomNumber: "102"}).IsEmpty())
}

package repository

import (
	"hotel/infras/otel/mocks"
	"hotel/shared/dto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type auditFields struct {
	CreatedAt time.Time `db:"created_at"`
}

type roomRow struct {
	ID         string `db:"id"`
	HotelID    string `db:"hotel_id"`
	RoomNumber string `db:"room_number"`
	Ignored    string
	auditFields
	HotelName string `db:"hotel_name" table:"hotels" column:"name"`
}

func (roomRow) GetJoinQuery() string {
	return "LEFT JOIN hotels ON hotels.id = rooms.hotel_id"
}

func newTestRepository() Repository[roomRow] {
	return NewRepository[roomRow]("room", "rooms", "id", nil, mocks.NewOtel())
}

func TestNewRepositoryColumns(t *testing.T) {
	repo := newTestRepository()

	assert.Equal(t, []string{"id", "hotel_id", "room_number", "created_at"}, repo.InsertColumns)
	assert.Equal(t, "LEFT JOIN hotels ON hotels.id = rooms.hotel_id", repo.join)
	assert.Equal(t, "rooms", repo.Table())
}

func TestGetSelectQuery(t *testing.T) {
	repo := newTestRepository()

	assert.Equal(t,
		"rooms.id, rooms.hotel_id, rooms.room_number, rooms.created_at, hotels.name AS hotel_name",
		repo.getSelectQuery(),
	)
	assert.Equal(t, "rooms.id, hotels.name AS hotel_name", repo.getSelectQuery("id", "hotel_name"))
}

func TestOrderBy(t *testing.T) {
	repo := newTestRepository()

	tests := []struct {
		name   string
		params dto.QueryParams
		want   string
	}{
		{name: "known column", params: dto.QueryParams{SortBy: "room_number", SortDir: "DESC"}, want: "ORDER BY rooms.room_number DESC, rooms.id"},
		{name: "alias", params: dto.QueryParams{SortBy: "hotel_name", SortDir: "asc"}, want: "ORDER BY hotel_name ASC, rooms.id"},
		{name: "bad direction defaults to asc", params: dto.QueryParams{SortBy: "id", SortDir: "sideways"}, want: "ORDER BY rooms.id ASC, rooms.id"},
		{name: "unknown column", params: dto.QueryParams{SortBy: "id; DROP TABLE rooms", SortDir: "ASC"}, want: ""},
		{name: "empty", params: dto.QueryParams{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repo.orderBy(tt.params))
		})
	}
}

func TestBuildWhereClause(t *testing.T) {
	repo := newTestRepository()

	where, args := repo.BuildWhereClause(t.Context(), dto.Eq{Column: dto.Col("rooms", "hotel_id"), Value: "h1"})
	assert.Equal(t, "WHERE rooms.hotel_id = :hotel_id_1", strings.TrimSpace(where))
	assert.Equal(t, map[string]any{"hotel_id_1": "h1"}, args)

	where, args = repo.BuildWhereClause(t.Context(), nil)
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestMutationsRequireFilter(t *testing.T) {
	repo := newTestRepository()

	_, err := repo.Exist(t.Context(), nil)
	assert.ErrorIs(t, err, errRequiredFilter)

	assert.ErrorIs(t, repo.Delete(t.Context(), dto.And{}), errRequiredFilter)

	_, err = repo.Update(t.Context(), map[string]any{"room_number": "101"}, nil)
	assert.ErrorIs(t, err, errRequiredFilter)

	_, err = repo.Update(t.Context(), map[string]any{}, dto.Eq{Column: dto.Col("rooms", "id"), Value: "r1"})
	assert.ErrorIs(t, err, errEmptyUpdate)
}

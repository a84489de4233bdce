package service_test

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"hotel/config"
	"hotel/infras/otel/mocks"
	s3Mocks "hotel/infras/s3/mocks"
	bookingMocks "hotel/internal/domains/booking/mocks"
	bookingModel "hotel/internal/domains/booking/model"
	hotelMocks "hotel/internal/domains/hotel/mocks"
	roomMocks "hotel/internal/domains/room/mocks"
	"hotel/internal/domains/room/model"
	"hotel/internal/domains/room/model/dto"
	"hotel/internal/domains/room/service"
	cacheMocks "hotel/shared/cache/mocks"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"
	gModel "hotel/shared/model"
	"hotel/shared/timezone"
)

const (
	roomID  = "0f5b7a44-1c0e-4f0b-8f9a-3e2d1c0b9a88"
	hotelID = "0b6f3c1e-3b7e-4d8c-9d51-4a1f2f9a7c01"
)

type fixture struct {
	repo        *roomMocks.MockRoom
	hotelRepo   *hotelMocks.MockHotel
	bookingRepo *bookingMocks.MockBooking
	checker     *bookingMocks.MockChecker
	cache       *cacheMocks.MockRedisCache
	s3          *s3Mocks.MockS3
	svc         service.Room
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	f := fixture{
		repo:        roomMocks.NewMockRoom(ctrl),
		hotelRepo:   hotelMocks.NewMockHotel(ctrl),
		bookingRepo: bookingMocks.NewMockBooking(ctrl),
		checker:     bookingMocks.NewMockChecker(ctrl),
		cache:       cacheMocks.NewMockRedisCache(ctrl),
		s3:          s3Mocks.NewMockS3(ctrl),
	}

	f.svc = service.New(f.repo, f.hotelRepo, f.bookingRepo, f.checker, cfg, f.cache, mocks.NewOtel(), f.s3)

	return f
}

func (f fixture) allowCacheWrites() {
	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func newRoom() model.Room {
	return model.Room{
		ID:            roomID,
		HotelID:       hotelID,
		RoomNumber:    "101",
		RoomType:      model.TypeDouble,
		PricePerNight: decimal.RequireFromString("89.99"),
		MaxGuests:     2,
		IsAvailable:   true,
		Amenities:     pq.StringArray{"WiFi"},
		Images:        pq.StringArray{},
		Metadata:      gModel.NewMetadata("admin-1", timezone.Now()),
	}
}

func adminCtx() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-1")
}

func TestRoomService_Create(t *testing.T) {
	req := dto.CreateRoomRequest{
		HotelID:       hotelID,
		RoomNumber:    "101",
		RoomType:      model.TypeDouble,
		PricePerNight: decimal.RequireFromString("89.99"),
	}

	tests := []struct {
		name      string
		setupMock func(f fixture)
		wantCode  int
	}{
		{
			name: "success defaults max guests",
			setupMock: func(f fixture) {
				f.allowCacheWrites()
				f.hotelRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, room model.Room) error {
					assert.Equal(t, model.DefaultMaxGuests, room.MaxGuests)
					assert.True(t, room.IsAvailable)

					return nil
				})
			},
		},
		{
			name: "hotel missing",
			setupMock: func(f fixture) {
				f.hotelRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "room number taken",
			setupMock: func(f fixture) {
				f.hotelRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "unique index wins the race",
			setupMock: func(f fixture) {
				f.hotelRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(&pq.Error{Code: constant.PqErrorCodeUniqueViolation})
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "insert failure",
			setupMock: func(f fixture) {
				f.hotelRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("db down"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Create(adminCtx(), req)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, hotelID, res.HotelID)
		})
	}
}

func TestRoomService_Get(t *testing.T) {
	name := "Seaside Resort"

	tests := []struct {
		name      string
		setupMock func(f fixture)
		wantCode  int
	}{
		{
			name: "from database",
			setupMock: func(f fixture) {
				f.allowCacheWrites()
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
				f.repo.EXPECT().GetDetail(gomock.Any(), gomock.Any()).Return(model.RoomDetail{Room: newRoom(), HotelName: &name}, nil)
			},
		},
		{
			name: "not found",
			setupMock: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
				f.repo.EXPECT().GetDetail(gomock.Any(), gomock.Any()).Return(model.RoomDetail{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Get(context.Background(), roomID)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			require.NotNil(t, res.Hotel)
			assert.Equal(t, name, res.Hotel.Name)
		})
	}
}

func TestRoomService_Update(t *testing.T) {
	price := decimal.RequireFromString("120")

	tests := []struct {
		name      string
		req       dto.UpdateRoomRequest
		setupMock func(f fixture)
		wantCode  int
	}{
		{
			name: "price change",
			req:  dto.UpdateRoomRequest{PricePerNight: &price},
			setupMock: func(f fixture) {
				f.allowCacheWrites()
				updated := newRoom()
				updated.PricePerNight = price

				gomock.InOrder(
					f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newRoom(), nil),
					f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
						DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.Filter) (int64, error) {
							assert.Equal(t, price, fields[model.FieldPricePerNight])

							return 1, nil
						}),
					f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(updated, nil),
				)
			},
		},
		{
			name:      "empty request",
			setupMock: func(fixture) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "renumber to a taken number",
			req:  dto.UpdateRoomRequest{RoomNumber: "102"},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newRoom(), nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "not found",
			req:  dto.UpdateRoomRequest{RoomType: model.TypeSuite},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Update(adminCtx(), tt.req, roomID)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.True(t, price.Equal(res.PricePerNight))
		})
	}
}

func TestRoomService_Delete(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(f fixture)
		wantCode  int
	}{
		{
			name: "no active bookings",
			setupMock: func(f fixture) {
				f.allowCacheWrites()
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newRoom(), nil)
				f.bookingRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "active bookings",
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newRoom(), nil)
				f.bookingRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "not found",
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			err := f.svc.Delete(adminCtx(), roomID)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestRoomService_CheckAvailability(t *testing.T) {
	req := dto.AvailabilityRequest{StartDate: "2030-03-01", EndDate: "2030-03-04"}

	tests := []struct {
		name          string
		req           dto.AvailabilityRequest
		setupMock     func(f fixture)
		wantErr       error
		wantAvailable bool
	}{
		{
			name: "free",
			req:  req,
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newRoom(), nil)
				f.checker.EXPECT().IsOverlapping(gomock.Any(), roomID, gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantAvailable: true,
		},
		{
			name: "overlapping booking",
			req:  req,
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newRoom(), nil)
				f.checker.EXPECT().IsOverlapping(gomock.Any(), roomID, gomock.Any(), gomock.Any()).Return(true, nil)
			},
		},
		{
			name: "room withdrawn",
			req:  req,
			setupMock: func(f fixture) {
				room := newRoom()
				room.IsAvailable = false
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(room, nil)
				f.checker.EXPECT().IsOverlapping(gomock.Any(), roomID, gomock.Any(), gomock.Any()).Return(false, nil)
			},
		},
		{
			name:      "reversed dates",
			req:       dto.AvailabilityRequest{StartDate: "2030-03-04", EndDate: "2030-03-01"},
			setupMock: func(fixture) {},
			wantErr:   bookingModel.ErrInvalidDateRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.CheckAvailability(context.Background(), tt.req, roomID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantAvailable, res.Available)
			assert.Equal(t, 3, res.Nights)
			assert.True(t, decimal.RequireFromString("269.97").Equal(res.TotalPrice))
		})
	}
}

func TestRoomService_UploadImage(t *testing.T) {
	header := &multipart.FileHeader{Filename: "view.JPG"}
	url := "https://cdn.example.com/room/" + roomID + "/x.jpg"

	tests := []struct {
		name      string
		setupMock func(f fixture)
		wantCode  int
	}{
		{
			name: "success",
			setupMock: func(f fixture) {
				f.allowCacheWrites()
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newRoom(), nil)
				f.s3.EXPECT().UploadFile(gomock.Any(), constant.Empty, "room/"+roomID, gomock.Any(), header, gomock.Any()).
					DoAndReturn(func(_ context.Context, _, _ string, _ multipart.File, _ *multipart.FileHeader, fileName string) (string, error) {
						assert.Regexp(t, `^[0-9a-f-]{36}\.jpg$`, fileName)

						return url, nil
					})
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
			},
		},
		{
			name: "save failure rolls back upload",
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newRoom(), nil)
				f.s3.EXPECT().UploadFile(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(url, nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), errors.New("db down"))
				f.s3.EXPECT().GetObjectNameFromURL(gomock.Any(), url).Return("room/x.jpg").AnyTimes()
				f.s3.EXPECT().DeleteFile(gomock.Any(), gomock.Any(), "room/x.jpg").Return(nil).AnyTimes()
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.UploadImage(adminCtx(), dto.UploadImageRequest{Image: header}, roomID)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, url, res.URL)
			assert.Contains(t, res.Images, url)
		})
	}
}

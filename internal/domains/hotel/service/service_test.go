package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"hotel/config"
	"hotel/infras/otel/mocks"
	s3Mocks "hotel/infras/s3/mocks"
	hotelMocks "hotel/internal/domains/hotel/mocks"
	"hotel/internal/domains/hotel/model"
	"hotel/internal/domains/hotel/model/dto"
	"hotel/internal/domains/hotel/service"
	roomMocks "hotel/internal/domains/room/mocks"
	cacheMocks "hotel/shared/cache/mocks"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"
	gModel "hotel/shared/model"
	"hotel/shared/timezone"
)

const hotelID = "0b6f3c1e-3b7e-4d8c-9d51-4a1f2f9a7c01"

type fixture struct {
	repo     *hotelMocks.MockHotel
	roomRepo *roomMocks.MockRoom
	cache    *cacheMocks.MockRedisCache
	s3       *s3Mocks.MockS3
	svc      service.Hotel
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	f := fixture{
		repo:     hotelMocks.NewMockHotel(ctrl),
		roomRepo: roomMocks.NewMockRoom(ctrl),
		cache:    cacheMocks.NewMockRedisCache(ctrl),
		s3:       s3Mocks.NewMockS3(ctrl),
	}

	f.svc = service.New(f.repo, f.roomRepo, cfg, f.cache, mocks.NewOtel(), f.s3)

	return f
}

// allowCacheWrites accepts the background cache traffic every mutation triggers.
func (f fixture) allowCacheWrites() {
	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func newHotel() model.Hotel {
	return model.Hotel{
		ID:         hotelID,
		Name:       "Seaside Resort",
		Location:   "Bali",
		StarRating: 4,
		Amenities:  []string{"WiFi", "Pool"},
		Images:     []string{"https://cdn.example.com/hotel/" + hotelID + "/a.jpg"},
		Contact:    model.Contact{Phone: "+62 361 000"},
		IsActive:   true,
		Metadata:   gModel.NewMetadata("admin-1", timezone.Now()),
	}
}

func TestHotelService_Create(t *testing.T) {
	f := newFixture(t)
	f.allowCacheWrites()

	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-1")
	req := dto.CreateHotelRequest{Name: "Seaside Resort", Location: "Bali", StarRating: 4}

	f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, hotel model.Hotel) error {
		assert.True(t, hotel.IsActive)
		assert.Equal(t, "admin-1", hotel.CreatedBy)
		assert.Empty(t, hotel.Amenities)

		return nil
	})

	res, err := f.svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "Seaside Resort", res.Name)
	assert.NotEmpty(t, res.ID)

	f2 := newFixture(t)
	f2.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	_, err = f2.svc.Create(ctx, req)
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
}

func TestHotelService_GetAll(t *testing.T) {
	filter := dto.ListQuery{Location: "Bali"}.ToFilter()
	params := gDto.QueryParams{Page: 1, Limit: 10}

	tests := []struct {
		name      string
		setupMock func(f fixture)
		wantTotal int
		wantErr   bool
	}{
		{
			name: "loads from store on cache miss",
			setupMock: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
				f.repo.EXPECT().Count(gomock.Any(), filter).Return(11, nil)
				f.repo.EXPECT().GetAll(gomock.Any(), params, filter).Return([]model.Hotel{newHotel()}, nil)
				f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), 60).Return(nil).AnyTimes()
			},
			wantTotal: 11,
		},
		{
			name: "count failure",
			setupMock: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
				f.repo.EXPECT().Count(gomock.Any(), filter).Return(0, errors.New("db down"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.GetAll(context.Background(), params, filter)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, res.TotalData)
			assert.Equal(t, 2, res.TotalPage)
			assert.Len(t, res.Hotels, 1)
		})
	}
}

func TestHotelService_Get(t *testing.T) {
	f := newFixture(t)
	f.allowCacheWrites()

	f.cache.EXPECT().Get(gomock.Any(), "hotel:get:"+hotelID, gomock.Any()).Return(errors.New("cache miss"))
	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newHotel(), nil)

	res, err := f.svc.Get(context.Background(), hotelID)
	require.NoError(t, err)
	assert.Equal(t, "+62 361 000", res.Contact.Phone)

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Hotel{}, nil)

	_, err = f.svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, failure.ErrNotFound)
}

func TestHotelService_Update(t *testing.T) {
	stars := 5

	tests := []struct {
		name      string
		req       dto.UpdateHotelRequest
		setupMock func(f fixture)
		wantCode  int
	}{
		{
			name: "updates and returns fresh hotel",
			req:  dto.UpdateHotelRequest{StarRating: stars},
			setupMock: func(f fixture) {
				f.allowCacheWrites()
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.Filter) (int64, error) {
					assert.Equal(t, stars, fields[model.FieldStarRating])
					assert.NotContains(t, fields, model.FieldName)

					return 1, nil
				})
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newHotel(), nil)
			},
		},
		{
			name:      "empty request",
			req:       dto.UpdateHotelRequest{},
			setupMock: func(fixture) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "unknown hotel",
			req:  dto.UpdateHotelRequest{Name: "New name"},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			_, err := f.svc.Update(context.Background(), tt.req, hotelID)
			if tt.wantCode == 0 {
				assert.NoError(t, err)

				return
			}

			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}

func TestHotelService_Delete(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(f fixture)
		wantCode  int
	}{
		{
			name: "deletes hotel and its images",
			setupMock: func(f fixture) {
				f.allowCacheWrites()
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newHotel(), nil)
				f.roomRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
				f.s3.EXPECT().GetObjectNameFromURL(gomock.Any(), gomock.Any()).Return("hotel/a.jpg").AnyTimes()
				f.s3.EXPECT().DeleteFile(gomock.Any(), gomock.Any(), "hotel/a.jpg").Return(nil).AnyTimes()
			},
		},
		{
			name: "blocked by rooms",
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newHotel(), nil)
				f.roomRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "not found",
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Hotel{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			err := f.svc.Delete(context.Background(), hotelID)
			if tt.wantCode == 0 {
				assert.NoError(t, err)

				return
			}

			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}

func TestHotelService_UploadImage(t *testing.T) {
	const image = "data:image/png;base64,iVBORw0KGgo="

	tests := []struct {
		name      string
		req       dto.UploadImageRequest
		setupMock func(f fixture)
		wantCode  int
	}{
		{
			name: "uploads and appends url",
			req:  dto.UploadImageRequest{Image: image},
			setupMock: func(f fixture) {
				f.allowCacheWrites()
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newHotel(), nil)
				f.s3.EXPECT().UploadFileBytes(gomock.Any(), "", "hotel/"+hotelID, gomock.Any(), "image/png", gomock.Any()).
					Return("https://cdn.example.com/hotel/"+hotelID+"/b.png", nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
			},
		},
		{
			name: "not a data uri",
			req:  dto.UploadImageRequest{Image: "iVBORw0KGgo="},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newHotel(), nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "upload fails",
			req:  dto.UploadImageRequest{Image: image},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newHotel(), nil)
				f.s3.EXPECT().UploadFileBytes(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return("", errors.New("s3 unavailable"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.UploadImage(context.Background(), tt.req, hotelID)
			if tt.wantCode == 0 {
				require.NoError(t, err)
				assert.Len(t, res.Images, 2)
				assert.Equal(t, res.Images[1], res.URL)

				return
			}

			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}

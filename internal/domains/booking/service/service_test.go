package service_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"hotel/config"
	"hotel/infras/otel/mocks"
	bookingMocks "hotel/internal/domains/booking/mocks"
	"hotel/internal/domains/booking/model"
	"hotel/internal/domains/booking/model/dto"
	"hotel/internal/domains/booking/service"
	roomMocks "hotel/internal/domains/room/mocks"
	roomModel "hotel/internal/domains/room/model"
	cacheMocks "hotel/shared/cache/mocks"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"
	gModel "hotel/shared/model"
	gRepo "hotel/shared/repository"
	"hotel/shared/timezone"
)

const (
	bookingID = "6a0d1d2c-77a1-4c1e-9f7e-2a4b8d1c0e11"
	roomID    = "0f5b7a44-1c0e-4f0b-8f9a-3e2d1c0b9a88"
	hotelID   = "0b6f3c1e-3b7e-4d8c-9d51-4a1f2f9a7c01"
	ownerID   = "user-1"
)

type fixture struct {
	repo      *bookingMocks.MockBooking
	roomRepo  *roomMocks.MockRoom
	checker   *bookingMocks.MockChecker
	publisher *bookingMocks.MockPublisher
	cache     *cacheMocks.MockRedisCache
	svc       service.Booking
}

func newFixture(t *testing.T, defaultStatus string) fixture {
	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Cache.TTL = 60
	cfg.App.Booking.DefaultStatus = defaultStatus

	f := fixture{
		repo:      bookingMocks.NewMockBooking(ctrl),
		roomRepo:  roomMocks.NewMockRoom(ctrl),
		checker:   bookingMocks.NewMockChecker(ctrl),
		publisher: bookingMocks.NewMockPublisher(ctrl),
		cache:     cacheMocks.NewMockRedisCache(ctrl),
	}

	f.svc = service.New(f.repo, f.roomRepo, f.checker, f.publisher, cfg, f.cache, mocks.NewOtel())

	return f
}

// allowBackground accepts the cache and event traffic every mutation triggers.
func (f fixture) allowBackground() {
	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func userCtx(userID, role string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, userID)

	return context.WithValue(ctx, constant.ContextKeyUserRole, role)
}

func day(offset int) string {
	return timezone.Format(timezone.Now().AddDate(0, 0, offset), constant.DateOnlyFormat)
}

func newRoom() roomModel.Room {
	return roomModel.Room{
		ID:            roomID,
		HotelID:       hotelID,
		RoomNumber:    "101",
		RoomType:      roomModel.TypeDouble,
		PricePerNight: decimal.RequireFromString("100.00"),
		MaxGuests:     2,
		IsAvailable:   true,
		Amenities:     pq.StringArray{},
		Images:        pq.StringArray{},
	}
}

func newBooking(status model.Status, startOffset int) model.Booking {
	start := timezone.StartOfDay(timezone.Now().AddDate(0, 0, startOffset))

	return model.Booking{
		ID:            bookingID,
		UserID:        ownerID,
		RoomID:        roomID,
		HotelID:       hotelID,
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, 3),
		Guests:        2,
		TotalPrice:    decimal.RequireFromString("300.00"),
		Status:        status,
		PaymentMethod: model.PaymentMethodCreditCard,
		PaymentStatus: model.PaymentStatusPending,
		Metadata:      gModel.NewMetadata(ownerID, timezone.Now()),
	}
}

func validRequest() dto.CreateBookingRequest {
	return dto.CreateBookingRequest{
		RoomID:    roomID,
		StartDate: day(10),
		EndDate:   day(15),
		Guests:    2,
	}
}

func TestBookingService_Create(t *testing.T) {
	tests := []struct {
		name          string
		defaultStatus string
		mutate        func(*dto.CreateBookingRequest)
		setupMock     func(f fixture)
		wantErr       error
		wantCode      int
		check         func(t *testing.T, res dto.BookingResponse)
	}{
		{
			name: "success prices five nights",
			setupMock: func(f fixture) {
				f.allowBackground()
				f.roomRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newRoom(), nil)
				f.checker.EXPECT().IsOverlapping(gomock.Any(), roomID, gomock.Any(), gomock.Any()).Return(false, nil)
				var inserted model.Booking
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b model.Booking) error {
					assert.Equal(t, ownerID, b.UserID)
					assert.Equal(t, hotelID, b.HotelID)
					assert.Equal(t, model.StatusPending, b.Status)
					assert.Equal(t, model.PaymentStatusPending, b.PaymentStatus)
					assert.Equal(t, model.PaymentMethodCreditCard, b.PaymentMethod)

					inserted = b

					return nil
				})
				f.repo.EXPECT().GetDetail(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, gDto.Filter) (model.BookingDetail, error) {
					userName, roomNumber, hotelName := "Ayu", "101", "Grand Palace"

					return model.BookingDetail{
						Booking:    inserted,
						UserName:   &userName,
						RoomNumber: &roomNumber,
						HotelName:  &hotelName,
					}, nil
				})
			},
			check: func(t *testing.T, res dto.BookingResponse) {
				t.Helper()
				assert.True(t, decimal.NewFromInt(500).Equal(res.TotalPrice))
				assert.Equal(t, 5, res.Nights)
				require.NotNil(t, res.User)
				assert.Equal(t, "Ayu", res.User.Name)
				require.NotNil(t, res.Room)
				assert.Equal(t, "101", res.Room.RoomNumber)
				require.NotNil(t, res.Hotel)
				assert.Equal(t, "Grand Palace", res.Hotel.Name)
			},
		},
		{
			name:          "configured default status",
			defaultStatus: "confirmed",
			setupMock: func(f fixture) {
				f.allowBackground()
				f.roomRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newRoom(), nil)
				f.checker.EXPECT().IsOverlapping(gomock.Any(), roomID, gomock.Any(), gomock.Any()).Return(false, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
				f.repo.EXPECT().GetDetail(gomock.Any(), gomock.Any()).Return(model.BookingDetail{}, errors.New("replica lag"))
			},
			check: func(t *testing.T, res dto.BookingResponse) {
				t.Helper()
				assert.Equal(t, model.StatusConfirmed, res.Status)
				assert.Equal(t, roomID, res.RoomID)
				assert.Nil(t, res.Hotel)
			},
		},
		{
			name:      "start yesterday",
			mutate:    func(r *dto.CreateBookingRequest) { r.StartDate = day(-1) },
			setupMock: func(fixture) {},
			wantErr:   model.ErrInvalidDateRange,
			wantCode:  http.StatusBadRequest,
		},
		{
			name:      "end before start",
			mutate:    func(r *dto.CreateBookingRequest) { r.EndDate = day(5) },
			setupMock: func(fixture) {},
			wantErr:   model.ErrInvalidDateRange,
			wantCode:  http.StatusBadRequest,
		},
		{
			name:      "same day",
			mutate:    func(r *dto.CreateBookingRequest) { r.EndDate = r.StartDate },
			setupMock: func(fixture) {},
			wantErr:   model.ErrInvalidDateRange,
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "room not found",
			setupMock: func(f fixture) {
				f.roomRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(roomModel.Room{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "room withdrawn",
			setupMock: func(f fixture) {
				room := newRoom()
				room.IsAvailable = false
				f.roomRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(room, nil)
			},
			wantErr:  model.ErrRoomUnavailable,
			wantCode: http.StatusBadRequest,
		},
		{
			name:   "too many guests",
			mutate: func(r *dto.CreateBookingRequest) { r.Guests = 3 },
			setupMock: func(f fixture) {
				f.roomRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newRoom(), nil)
			},
			wantErr:  model.ErrCapacityExceeded,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "overlapping booking",
			setupMock: func(f fixture) {
				f.roomRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newRoom(), nil)
				f.checker.EXPECT().IsOverlapping(gomock.Any(), roomID, gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantErr:  model.ErrRoomNotAvailableForDates,
			wantCode: http.StatusConflict,
		},
		{
			name: "lost race to exclusion constraint",
			setupMock: func(f fixture) {
				f.roomRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newRoom(), nil)
				f.checker.EXPECT().IsOverlapping(gomock.Any(), roomID, gomock.Any(), gomock.Any()).Return(false, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
					Return(&pq.Error{Code: constant.PqErrorCodeExclusionViolation})
			},
			wantErr:  model.ErrRoomNotAvailableForDates,
			wantCode: http.StatusConflict,
		},
		{
			name: "insert failure",
			setupMock: func(f fixture) {
				f.roomRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newRoom(), nil)
				f.checker.EXPECT().IsOverlapping(gomock.Any(), roomID, gomock.Any(), gomock.Any()).Return(false, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("db down"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.defaultStatus)
			tt.setupMock(f)

			req := validRequest()
			if tt.mutate != nil {
				tt.mutate(&req)
			}

			res, err := f.svc.Create(userCtx(ownerID, constant.RoleUser), req)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}

				return
			}

			require.NoError(t, err)
			tt.check(t, res)
		})
	}
}

func TestBookingService_Cancel(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		req       dto.CancelBookingRequest
		setupMock func(f fixture)
		wantErr   error
		wantCode  int
	}{
		{
			name: "owner cancels future pending booking",
			ctx:  userCtx(ownerID, constant.RoleUser),
			setupMock: func(f fixture) {
				f.allowBackground()
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newBooking(model.StatusPending, 10), nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.Filter) (int64, error) {
						assert.Equal(t, model.StatusCancelled, fields[model.FieldStatus])
						assert.Equal(t, model.PaymentStatusRefunded, fields[model.FieldPaymentStatus])
						assert.Equal(t, model.DefaultCancellationReason, fields[model.FieldCancellationReason])
						assert.Contains(t, fields, model.FieldCancelledAt)

						return 1, nil
					})
			},
		},
		{
			name: "admin cancels someone else's booking",
			ctx:  userCtx("admin-1", constant.RoleAdmin),
			req:  dto.CancelBookingRequest{Reason: "overbooked"},
			setupMock: func(f fixture) {
				f.allowBackground()
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newBooking(model.StatusConfirmed, 3), nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
			},
		},
		{
			name: "not found",
			ctx:  userCtx(ownerID, constant.RoleUser),
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "other user",
			ctx:  userCtx("user-2", constant.RoleUser),
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newBooking(model.StatusPending, 10), nil)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name: "already started",
			ctx:  userCtx(ownerID, constant.RoleUser),
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newBooking(model.StatusConfirmed, -1), nil)
			},
			wantErr:  model.ErrInvalidStatusTransition,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "already cancelled",
			ctx:  userCtx(ownerID, constant.RoleUser),
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newBooking(model.StatusCancelled, 10), nil)
			},
			wantErr:  model.ErrInvalidStatusTransition,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "completed",
			ctx:  userCtx(ownerID, constant.RoleUser),
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newBooking(model.StatusCompleted, 10), nil)
			},
			wantErr:  model.ErrInvalidStatusTransition,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "status changed concurrently",
			ctx:  userCtx(ownerID, constant.RoleUser),
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newBooking(model.StatusPending, 10), nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)
			},
			wantErr:  model.ErrInvalidStatusTransition,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "")
			tt.setupMock(f)

			res, err := f.svc.Cancel(tt.ctx, tt.req, bookingID)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, model.StatusCancelled, res.Status)
			assert.Equal(t, model.PaymentStatusRefunded, res.PaymentStatus)
			assert.NotEmpty(t, res.CancellationReason)
			assert.NotEmpty(t, res.CancelledAt)
		})
	}
}

func TestBookingService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.UpdateStatusRequest
		setupMock func(f fixture)
		wantErr   error
		wantCode  int
	}{
		{
			name: "override terminal booking",
			req:  dto.UpdateStatusRequest{Status: model.StatusConfirmed, PaymentStatus: model.PaymentStatusPaid},
			setupMock: func(f fixture) {
				f.allowBackground()
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newBooking(model.StatusCancelled, 10), nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
			},
		},
		{
			name: "reactivation collides with another stay",
			req:  dto.UpdateStatusRequest{Status: model.StatusConfirmed},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newBooking(model.StatusCancelled, 10), nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(int64(0), fmt.Errorf("%w: %w", gRepo.ErrStore, &pq.Error{Code: constant.PqErrorCodeExclusionViolation}))
			},
			wantErr:  model.ErrRoomNotAvailableForDates,
			wantCode: http.StatusConflict,
		},
		{
			name:      "empty request",
			setupMock: func(fixture) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "not found",
			req:  dto.UpdateStatusRequest{Status: model.StatusCompleted},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "update failure",
			req:  dto.UpdateStatusRequest{Status: model.StatusCompleted},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(newBooking(model.StatusConfirmed, 10), nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), errors.New("db down"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "")
			tt.setupMock(f)

			res, err := f.svc.UpdateStatus(userCtx("admin-1", constant.RoleAdmin), tt.req, bookingID)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.req.Status, res.Status)
			assert.Equal(t, tt.req.PaymentStatus, res.PaymentStatus)
		})
	}
}

func TestBookingService_Get(t *testing.T) {
	detail := model.BookingDetail{Booking: newBooking(model.StatusPending, 10)}

	tests := []struct {
		name      string
		ctx       context.Context
		setupMock func(f fixture)
		wantCode  int
	}{
		{
			name: "owner",
			ctx:  userCtx(ownerID, constant.RoleUser),
			setupMock: func(f fixture) {
				f.allowBackground()
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
				f.repo.EXPECT().GetDetail(gomock.Any(), gomock.Any()).Return(detail, nil)
			},
		},
		{
			name: "admin",
			ctx:  userCtx("admin-1", constant.RoleAdmin),
			setupMock: func(f fixture) {
				f.allowBackground()
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
				f.repo.EXPECT().GetDetail(gomock.Any(), gomock.Any()).Return(detail, nil)
			},
		},
		{
			name: "cached response still checks ownership",
			ctx:  userCtx("user-2", constant.RoleUser),
			setupMock: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, dest any) error {
						dest.(*dto.BookingResponse).UserID = ownerID

						return nil
					})
			},
			wantCode: http.StatusForbidden,
		},
		{
			name: "not found",
			ctx:  userCtx(ownerID, constant.RoleUser),
			setupMock: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
				f.repo.EXPECT().GetDetail(gomock.Any(), gomock.Any()).Return(model.BookingDetail{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "")
			tt.setupMock(f)

			res, err := f.svc.Get(tt.ctx, bookingID)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, bookingID, res.ID)
		})
	}
}

func TestBookingService_GetAll(t *testing.T) {
	f := newFixture(t, "")
	f.allowBackground()

	params := gDto.QueryParams{Page: 1, Limit: 10, SortBy: constant.DefaultValueSortBy, SortDir: constant.DefaultValueSortDir}
	filter := dto.ListQuery{UserID: ownerID}.ToFilter()

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
	f.repo.EXPECT().Count(gomock.Any(), filter).Return(11, nil)
	f.repo.EXPECT().GetAllDetail(gomock.Any(), params, filter).Return([]model.BookingDetail{
		{Booking: newBooking(model.StatusPending, 10)},
	}, nil)

	res, err := f.svc.GetAll(userCtx(ownerID, constant.RoleUser), params, filter)

	require.NoError(t, err)
	assert.Len(t, res.Bookings, 1)
	assert.Equal(t, 11, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
}

package booking_test

import (
	"context"
	"encoding/json"
	"hotel/infras/otel/mocks"
	"hotel/internal/domains/booking/model"
	"hotel/internal/domains/booking/model/dto"
	bookingMocks "hotel/internal/domains/booking/service/mocks"
	reportDto "hotel/internal/domains/report/model/dto"
	reportMocks "hotel/internal/domains/report/service/mocks"
	"hotel/internal/handlers/booking"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	testUserID    = "3f1c1d7e-8a4b-4b8e-9a53-7d7f5a8c2b10"
	testRoomID    = "9b2e4c1a-5d6f-4a7b-8c9d-0e1f2a3b4c5d"
	testBookingID = "b7c8d9e0-1f2a-4b3c-8d4e-5f6a7b8c9d0e"
)

type fixture struct {
	service *bookingMocks.MockBooking
	report  *reportMocks.MockReport
	router  chi.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	return newFixtureAs(t, testUserID, constant.RoleUser)
}

// newFixtureAs serves requests carrying the given identity. An empty userID
// stands for a caller that authenticated with the API key only.
func newFixtureAs(t *testing.T, userID, role string) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		service: bookingMocks.NewMockBooking(ctrl),
		report:  reportMocks.NewMockReport(ctrl),
	}

	handler := booking.New(f.service, f.report, mocks.NewOtel())

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if userID != "" {
				ctx = context.WithValue(ctx, constant.ContextKeyUserID, userID)
				ctx = context.WithValue(ctx, constant.ContextKeyUserRole, role)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	handler.Router(router)

	f.router = router

	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	return body.Error
}

func TestHandler_CreateBooking(t *testing.T) {
	validBody := `{"room_id":"` + testRoomID + `","start_date":"2026-11-02","end_date":"2026-11-07","guests":2}`

	tests := []struct {
		name       string
		body       string
		setupMock  func(f *fixture)
		wantStatus int
		wantError  string
	}{
		{
			name: "created",
			body: validBody,
			setupMock: func(f *fixture) {
				f.service.EXPECT().Create(gomock.Any(), dto.CreateBookingRequest{
					RoomID:    testRoomID,
					StartDate: "2026-11-02",
					EndDate:   "2026-11-07",
					Guests:    2,
				}).Return(dto.BookingResponse{
					ID:         testBookingID,
					RoomID:     testRoomID,
					Status:     model.StatusPending,
					TotalPrice: decimal.NewFromInt(500),
				}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "malformed body",
			body:       `{"room_id":`,
			setupMock:  func(*fixture) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "zero guests",
			body:       `{"room_id":"` + testRoomID + `","start_date":"2026-11-02","end_date":"2026-11-07","guests":0}`,
			setupMock:  func(*fixture) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "Guests is required",
		},
		{
			name:       "bad date",
			body:       `{"room_id":"` + testRoomID + `","start_date":"02/11/2026","end_date":"2026-11-07","guests":1}`,
			setupMock:  func(*fixture) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "overlapping dates",
			body: validBody,
			setupMock: func(f *fixture) {
				f.service.EXPECT().Create(gomock.Any(), gomock.Any()).Return(dto.BookingResponse{}, model.ErrRoomNotAvailableForDates)
			},
			wantStatus: http.StatusConflict,
			wantError:  "room is not available for the selected dates",
		},
		{
			name: "unexpected failure is masked",
			body: validBody,
			setupMock: func(f *fixture) {
				f.service.EXPECT().Create(gomock.Any(), gomock.Any()).Return(dto.BookingResponse{}, failure.InternalError(assert.AnError))
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			rec := f.do(http.MethodPost, "/bookings/", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantError != "" {
				assert.Contains(t, decodeError(t, rec), tt.wantError)
			}

			if tt.wantStatus == http.StatusCreated {
				var body struct {
					Data dto.BookingResponse `json:"data"`
				}
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, testBookingID, body.Data.ID)
				assert.True(t, decimal.NewFromInt(500).Equal(body.Data.TotalPrice))
			}
		})
	}
}

func TestHandler_GetMyBookings(t *testing.T) {
	f := newFixture(t)

	// user_id from the query string must not widen the listing
	wantFilter := dto.ListQuery{Status: "confirmed", UserID: testUserID}.ToFilter()

	f.service.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), wantFilter).
		DoAndReturn(func(_ context.Context, params gDto.QueryParams, _ gDto.Filter) (dto.GetBookingsResponse, error) {
			assert.Equal(t, 2, params.Page)

			return dto.GetBookingsResponse{TotalData: 1, TotalPage: 1, Bookings: []dto.BookingResponse{{ID: testBookingID}}}, nil
		})

	rec := f.do(http.MethodGet, "/bookings/?status=confirmed&user_id=someone-else&page=2", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_GetMyBookingsWithoutUser(t *testing.T) {
	f := newFixtureAs(t, "", "")

	// no GetAll expectation: the listing must not reach the service unfiltered
	rec := f.do(http.MethodGet, "/bookings/", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "user token is required")
}

func TestHandler_GetAllBookings(t *testing.T) {
	f := newFixture(t)

	wantFilter := dto.ListQuery{HotelID: "hotel-1", UserID: "user-2"}.ToFilter()

	f.service.EXPECT().GetAll(gomock.Any(), gomock.Any(), wantFilter).Return(dto.GetBookingsResponse{}, nil)

	rec := f.do(http.MethodGet, "/bookings/all?hotel_id=hotel-1&user_id=user-2", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_GetBookingStats(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		f := newFixture(t)

		f.report.EXPECT().BookingStats(gomock.Any()).Return(reportDto.BookingStatsResponse{TotalBookings: 4, TotalRevenue: decimal.NewFromInt(800)}, nil)

		rec := f.do(http.MethodGet, "/bookings/stats", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"total_bookings":4`)
	})

	t.Run("failure", func(t *testing.T) {
		f := newFixture(t)

		f.report.EXPECT().BookingStats(gomock.Any()).Return(reportDto.BookingStatsResponse{}, failure.InternalError(assert.AnError))

		rec := f.do(http.MethodGet, "/bookings/stats", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHandler_GetBooking(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "found", wantStatus: http.StatusOK},
		{name: "not found", err: failure.NotFound("booking not found"), wantStatus: http.StatusNotFound},
		{name: "someone else's", err: failure.ForbiddenError, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.service.EXPECT().Get(gomock.Any(), testBookingID).Return(dto.BookingResponse{ID: testBookingID}, tt.err)

			rec := f.do(http.MethodGet, "/bookings/"+testBookingID, "")

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandler_CancelBooking(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(f *fixture)
		wantStatus int
	}{
		{
			name: "with reason",
			body: `{"reason":"change of plans"}`,
			setupMock: func(f *fixture) {
				f.service.EXPECT().Cancel(gomock.Any(), dto.CancelBookingRequest{Reason: "change of plans"}, testBookingID).
					Return(dto.BookingResponse{ID: testBookingID, Status: model.StatusCancelled}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "without body",
			setupMock: func(f *fixture) {
				f.service.EXPECT().Cancel(gomock.Any(), dto.CancelBookingRequest{}, testBookingID).
					Return(dto.BookingResponse{ID: testBookingID, Status: model.StatusCancelled}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "reason too long",
			body:       `{"reason":"` + strings.Repeat("x", 501) + `"}`,
			setupMock:  func(*fixture) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "already started",
			setupMock: func(f *fixture) {
				f.service.EXPECT().Cancel(gomock.Any(), gomock.Any(), testBookingID).
					Return(dto.BookingResponse{}, model.ErrInvalidStatusTransition)
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			rec := f.do(http.MethodPut, "/bookings/"+testBookingID+"/cancel", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandler_UpdateBookingStatus(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		f := newFixture(t)

		f.service.EXPECT().UpdateStatus(gomock.Any(), dto.UpdateStatusRequest{Status: model.StatusConfirmed}, testBookingID).
			Return(dto.BookingResponse{ID: testBookingID, Status: model.StatusConfirmed}, nil)

		rec := f.do(http.MethodPut, "/bookings/"+testBookingID+"/status", `{"status":"confirmed"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodPut, "/bookings/"+testBookingID+"/status", `{"status":"archived"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec), "Status must be one of")
	})
}

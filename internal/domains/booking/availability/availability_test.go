package availability_test

import (
	"context"
	"errors"
	"hotel/internal/domains/booking/availability"
	"hotel/internal/domains/booking/mocks"
	"hotel/internal/domains/booking/model"
	gDto "hotel/shared/dto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestOverlapFilter(t *testing.T) {
	start := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 3)

	where, args := gDto.Where(availability.OverlapFilter("room-1", start, end))

	assert.Equal(t, "(bookings.room_id = :room_id_1"+
		" AND bookings.status IN (:status_2, :status_3)"+
		" AND bookings.start_date < :start_date_4"+
		" AND bookings.end_date > :end_date_5)", where)
	assert.Equal(t, map[string]any{
		"room_id_1":    "room-1",
		"status_2":     model.StatusPending,
		"status_3":     model.StatusConfirmed,
		"start_date_4": end,
		"end_date_5":   start,
	}, args)
}

// TestOverlapFilterIntervals evaluates the rendered bounds against existing
// stays of the same room, day 0 being the requested check-in.
func TestOverlapFilterIntervals(t *testing.T) {
	base := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	at := func(offset int) time.Time { return base.AddDate(0, 0, offset) }

	// requested stay is [day 0, day 3)
	_, args := gDto.Where(availability.OverlapFilter("room-1", at(0), at(3)))
	startBefore, ok := args["start_date_4"].(time.Time)
	require.True(t, ok)
	endAfter, ok := args["end_date_5"].(time.Time)
	require.True(t, ok)

	clashes := func(existingStart, existingEnd time.Time) bool {
		return existingStart.Before(startBefore) && existingEnd.After(endAfter)
	}

	tests := []struct {
		name  string
		start int
		end   int
		want  bool
	}{
		{name: "ends on check-in day", start: -2, end: 0, want: false},
		{name: "starts on check-out day", start: 3, end: 5, want: false},
		{name: "well before", start: -5, end: -3, want: false},
		{name: "well after", start: 6, end: 8, want: false},
		{name: "identical", start: 0, end: 3, want: true},
		{name: "contains request", start: -1, end: 4, want: true},
		{name: "inside request", start: 1, end: 2, want: true},
		{name: "overlaps check-in", start: -1, end: 1, want: true},
		{name: "overlaps check-out", start: 2, end: 4, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clashes(at(tt.start), at(tt.end)))
		})
	}
}

func TestChecker_IsOverlapping(t *testing.T) {
	start := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 3)

	tests := []struct {
		name    string
		exist   bool
		err     error
		want    bool
		wantErr bool
	}{
		{name: "free", exist: false, want: false},
		{name: "taken", exist: true, want: true},
		{name: "store failure", err: errors.New("connection reset"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockBooking(ctrl)

			repo.EXPECT().
				Exist(gomock.Any(), availability.OverlapFilter("room-1", start, end)).
				Return(tt.exist, tt.err)

			got, err := availability.New(repo).IsOverlapping(context.Background(), "room-1", start, end)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActiveStatuses(t *testing.T) {
	assert.ElementsMatch(t, []model.Status{model.StatusPending, model.StatusConfirmed}, model.ActiveStatuses)
}

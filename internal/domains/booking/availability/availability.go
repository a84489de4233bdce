// Package availability answers whether a room is free for a stay.
package availability

//go:generate go run go.uber.org/mock/mockgen -source=./availability.go -destination=../mocks/availability_mock.go -package=mocks

import (
	"context"
	"fmt"
	"hotel/internal/domains/booking/model"
	"hotel/internal/domains/booking/repository"
	gDto "hotel/shared/dto"
	"time"
)

type Checker interface {
	IsOverlapping(ctx context.Context, roomID string, start, end time.Time) (bool, error)
}

type checkerImpl struct {
	repo repository.Booking
}

func New(repo repository.Booking) Checker {
	return &checkerImpl{repo: repo}
}

// OverlapFilter matches active bookings of the room whose half-open interval
// [start_date, end_date) intersects [start, end): existing.start < end and
// existing.end > start. A stay ending on a day does not clash with one
// starting that day.
func OverlapFilter(roomID string, start, end time.Time) gDto.Filter {
	return gDto.And{
		gDto.Eq{Column: col(model.FieldRoomID), Value: roomID},
		gDto.OneOf{Column: col(model.FieldStatus), Values: model.ActiveStatuses},
		gDto.Range{Column: col(model.FieldStartDate), Max: end, MaxExclusive: true},
		gDto.Range{Column: col(model.FieldEndDate), Min: start, MinExclusive: true},
	}
}

// IsOverlapping always asks the store; availability is never cached.
func (c *checkerImpl) IsOverlapping(ctx context.Context, roomID string, start, end time.Time) (bool, error) {
	overlapping, err := c.repo.Exist(ctx, OverlapFilter(roomID, start, end))
	if err != nil {
		return false, fmt.Errorf("failed to check booking overlap: %w", err)
	}

	return overlapping, nil
}

func col(name string) gDto.Column {
	return gDto.Col(model.TableName, name)
}

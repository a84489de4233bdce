package model

import (
	"hotel/shared/failure"
	"net/http"
)

var (
	ErrInvalidDateRange         = failure.New(http.StatusBadRequest, "invalid booking date range")
	ErrRoomUnavailable          = failure.New(http.StatusBadRequest, "room is not available for booking")
	ErrCapacityExceeded         = failure.New(http.StatusBadRequest, "number of guests exceeds room capacity")
	ErrRoomNotAvailableForDates = failure.New(http.StatusConflict, "room is not available for the selected dates")
	ErrInvalidStatusTransition  = failure.New(http.StatusBadRequest, "booking status does not allow this change")
)

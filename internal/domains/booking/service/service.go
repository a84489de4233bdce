package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"hotel/config"
	"hotel/infras/otel"
	"hotel/internal/domains/booking/availability"
	"hotel/internal/domains/booking/event"
	"hotel/internal/domains/booking/model"
	"hotel/internal/domains/booking/model/dto"
	"hotel/internal/domains/booking/repository"
	reportService "hotel/internal/domains/report/service"
	roomModel "hotel/internal/domains/room/model"
	roomRepo "hotel/internal/domains/room/repository"
	"hotel/shared"
	"hotel/shared/cache"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"
	gRepo "hotel/shared/repository"
	"hotel/shared/timezone"
	"net/http"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking    = "booking:get"
	cacheGetAllBooking = "booking:gets"
	cacheCountBooking  = "booking:count"
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.Filter) (dto.GetBookingsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.Filter) (int, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	Cancel(ctx context.Context, req dto.CancelBookingRequest, id string) (dto.BookingResponse, error)
	UpdateStatus(ctx context.Context, req dto.UpdateStatusRequest, id string) (dto.BookingResponse, error)
}

type serviceImpl struct {
	repo      repository.Booking
	roomRepo  roomRepo.Room
	checker   availability.Checker
	publisher event.Publisher
	cfg       *config.Config
	cache     cache.RedisCache
	otel      otel.Otel
}

func New(
	repo repository.Booking,
	roomRepo roomRepo.Room,
	checker availability.Checker,
	publisher event.Publisher,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:      repo,
		roomRepo:  roomRepo,
		checker:   checker,
		publisher: publisher,
		cfg:       cfg,
		cache:     cache,
		otel:      otel,
	}
}

// actor reads the caller identity placed in the context by the auth middleware.
func actor(ctx context.Context) (userID string, isAdmin bool) {
	userID, _ = ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	return userID, role == constant.RoleAdmin
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := actor(ctx)

	start, end, err := req.Dates()
	if err != nil {
		return res, err
	}

	if start.Before(timezone.StartOfDay(timezone.Now())) || !start.Before(end) {
		return res, model.ErrInvalidDateRange
	}

	room, err := s.roomRepo.Get(ctx, shared.FilterByID(req.RoomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("room_id", req.RoomID).Msg("failed to get room")

		return res, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return res, failure.NotFound("room not found")
	}

	if !room.IsAvailable {
		return res, model.ErrRoomUnavailable
	}

	if req.Guests > room.MaxGuests {
		return res, failure.Wrap(http.StatusBadRequest, model.ErrCapacityExceeded,
			fmt.Sprintf("room can accommodate maximum %d guests", room.MaxGuests))
	}

	overlapping, err := s.checker.IsOverlapping(ctx, room.ID, start, end)
	if err != nil {
		log.Error().Err(err).Str("room_id", room.ID).Msg("failed to check room availability")

		return res, err
	}

	if overlapping {
		return res, model.ErrRoomNotAvailableForDates
	}

	booking := req.ToModel(user, room, start, end, s.defaultStatus())

	if err = s.repo.Insert(ctx, booking); err != nil {
		// the exclusion constraint catches a booking that won the race since the check
		if gRepo.IsExclusionViolation(err) {
			return res, model.ErrRoomNotAvailableForDates
		}

		log.Error().Err(err).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	s.afterChange(ctx, event.TypeCreated, booking)

	res.FromModel(booking)

	// the guest, room and hotel summaries come from the joined read; a lagging
	// replica still leaves the caller with the booking itself
	detail, detailErr := s.repo.GetDetail(ctx, shared.FilterByID(booking.ID, model.FieldID, model.TableName))
	if detailErr != nil || detail.ID == constant.Empty {
		log.Warn().Err(detailErr).Str("booking_id", booking.ID).Msg("failed to read created booking detail")

		return res, nil
	}

	res.FromDetail(detail)

	return res, nil
}

func (s *serviceImpl) defaultStatus() model.Status {
	status := model.Status(s.cfg.App.Booking.DefaultStatus)
	if status == model.StatusPending || status == model.StatusConfirmed {
		return status
	}

	if status != "" {
		log.Warn().Str("status", string(status)).Msg("unsupported default booking status, using pending")
	}

	return model.StatusPending
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.Filter) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, err
	}

	bookings, err := s.repo.GetAllDetail(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(bookings, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.Filter) (total int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &total); err == nil {
		return total, nil
	}

	total, err = s.repo.Count(ctx, filter)
	if err != nil {
		return total, fmt.Errorf("failed to count bookings: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, total, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking count to cache")
		}
	}()

	return total, nil
}

// Get returns a booking to its owner or to an admin.
func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, isAdmin := actor(ctx)
	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err != nil {
		detail, err := s.repo.GetDetail(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
		if err != nil {
			log.Error().Err(err).Str("booking_id", id).Msg("failed to get booking")

			return res, fmt.Errorf("failed to get booking: %w", err)
		}

		if detail.ID == constant.Empty {
			return res, failure.NotFound("booking not found")
		}

		res.FromDetail(detail)

		go func() {
			c := context.WithoutCancel(ctx)

			if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
				log.Error().Err(err).Msg("failed to save booking to cache")
			}
		}()
	}

	if !isAdmin && res.UserID != user {
		return dto.BookingResponse{}, failure.Forbidden("you can only view your own bookings")
	}

	return res, nil
}

func (s *serviceImpl) Cancel(ctx context.Context, req dto.CancelBookingRequest, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, isAdmin := actor(ctx)

	booking, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	if !isAdmin && !booking.IsOwnedBy(user) {
		return res, failure.Forbidden("you can only cancel your own bookings")
	}

	if !booking.Status.CanTransitionTo(model.StatusCancelled) {
		return res, failure.Wrap(http.StatusBadRequest, model.ErrInvalidStatusTransition,
			fmt.Sprintf("cannot cancel a %s booking", booking.Status))
	}

	now := timezone.Now()
	if !booking.StartDate.After(now) {
		return res, failure.Wrap(http.StatusBadRequest, model.ErrInvalidStatusTransition,
			"cannot cancel a booking that has already started")
	}

	reason := req.Reason
	if reason == constant.Empty {
		reason = model.DefaultCancellationReason
	}

	fields := shared.TransformFields(dto.CancelFields{
		Status:             model.StatusCancelled,
		PaymentStatus:      model.PaymentStatusRefunded,
		CancellationReason: reason,
		CancelledAt:        now,
	}, user)

	// guarded by the status read above so a concurrent change is not overwritten
	affected, err := s.repo.Update(ctx, fields, gDto.And{
		shared.FilterByID(id, model.FieldID, model.TableName),
		gDto.Eq{Column: gDto.Col(model.TableName, model.FieldStatus), Value: booking.Status},
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to cancel booking")

		return res, fmt.Errorf("failed to cancel booking: %w", err)
	}

	if affected == 0 {
		return res, model.ErrInvalidStatusTransition
	}

	booking.Status = model.StatusCancelled
	booking.PaymentStatus = model.PaymentStatusRefunded
	booking.CancellationReason = &reason
	booking.CancelledAt = &now
	booking.ModifiedAt = now
	booking.ModifiedBy = user

	s.afterChange(ctx, event.TypeCancelled, booking)

	res.FromModel(booking)

	return res, nil
}

// UpdateStatus is the administrative override: any enumerated status or
// payment status may be set regardless of the lifecycle.
func (s *serviceImpl) UpdateStatus(ctx context.Context, req dto.UpdateStatusRequest, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdateStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.IsEmpty() {
		return res, failure.BadRequestFromString("status or payment_status is required")
	}

	user, _ := actor(ctx)

	booking, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	if _, err = s.repo.Update(ctx, shared.TransformFields(req, user), shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		// re-activating a booking whose dates were taken in the meantime
		if gRepo.IsExclusionViolation(err) {
			return res, model.ErrRoomNotAvailableForDates
		}

		log.Error().Err(err).Str("booking_id", id).Msg("failed to update booking status")

		return res, fmt.Errorf("failed to update booking status: %w", err)
	}

	log.Warn().
		Str("booking_id", id).
		Str("actor", user).
		Str("previous_status", string(booking.Status)).
		Str("next_status", string(req.Status)).
		Str("previous_payment_status", string(booking.PaymentStatus)).
		Str("next_payment_status", string(req.PaymentStatus)).
		Msg("booking status overridden")

	if req.Status != "" {
		booking.Status = req.Status
	}

	if req.PaymentStatus != "" {
		booking.PaymentStatus = req.PaymentStatus
	}

	booking.ModifiedAt = timezone.Now()
	booking.ModifiedBy = user

	s.afterChange(ctx, event.TypeStatusUpdated, booking)

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Booking, error) {
	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound("booking not found")
	}

	return booking, nil
}

// afterChange drops stale listings and reports, then announces the change.
// None of it affects the response.
func (s *serviceImpl) afterChange(ctx context.Context, eventType event.Type, booking model.Booking) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetBooking, booking.ID)); err != nil {
			log.Error().Err(err).Msg("failed to delete booking cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)
		shared.InvalidateCaches(c, s.cache, reportService.CacheBookingStats)

		if err := s.publisher.Publish(c, event.FromModel(eventType, booking)); err != nil {
			log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to publish booking event")
		}
	}()
}

package service

import (
	"context"
	"fmt"
	"hotel/config"
	"hotel/infras/otel"
	"hotel/infras/s3"
	"hotel/internal/domains/booking/availability"
	bookingModel "hotel/internal/domains/booking/model"
	bookingRepo "hotel/internal/domains/booking/repository"
	"hotel/internal/domains/booking/pricing"
	hotelModel "hotel/internal/domains/hotel/model"
	hotelRepo "hotel/internal/domains/hotel/repository"
	"hotel/internal/domains/room/model"
	"hotel/internal/domains/room/model/dto"
	"hotel/internal/domains/room/repository"
	"hotel/shared"
	"hotel/shared/cache"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"
	gRepo "hotel/shared/repository"
	"hotel/shared/timezone"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetRoom    = "room:get"
	cacheGetAllRoom = "room:gets"
	cacheCountRoom  = "room:count"
)

const msgDuplicateRoomNumber = "room number already exists in this hotel"

type Room interface {
	Create(ctx context.Context, req dto.CreateRoomRequest) (dto.RoomResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.Filter) (dto.GetRoomsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.Filter) (int, error)
	Get(ctx context.Context, id string) (dto.RoomResponse, error)
	Update(ctx context.Context, req dto.UpdateRoomRequest, id string) (dto.RoomResponse, error)
	Delete(ctx context.Context, id string) error
	CheckAvailability(ctx context.Context, req dto.AvailabilityRequest, id string) (dto.AvailabilityResponse, error)
	UploadImage(ctx context.Context, req dto.UploadImageRequest, id string) (dto.UploadImageResponse, error)
}

type serviceImpl struct {
	repo        repository.Room
	hotelRepo   hotelRepo.Hotel
	bookingRepo bookingRepo.Booking
	checker     availability.Checker
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
	s3          s3.S3
}

func New(
	repo repository.Room,
	hotelRepo hotelRepo.Hotel,
	bookingRepo bookingRepo.Booking,
	checker availability.Checker,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	s3 s3.S3,
) Room {
	return &serviceImpl{
		repo:        repo,
		hotelRepo:   hotelRepo,
		bookingRepo: bookingRepo,
		checker:     checker,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
		s3:          s3,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateRoomRequest) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	hotelExists, err := s.hotelRepo.Exist(ctx, shared.FilterByID(req.HotelID, hotelModel.FieldID, hotelModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("hotel_id", req.HotelID).Msg("failed to check hotel existence")

		return res, fmt.Errorf("failed to check hotel existence: %w", err)
	}

	if !hotelExists {
		return res, failure.NotFound("hotel not found")
	}

	if err = s.ensureUniqueNumber(ctx, req.HotelID, req.RoomNumber, constant.Empty); err != nil {
		return res, err
	}

	room := req.ToModel(user)

	if err = s.repo.Insert(ctx, room); err != nil {
		if gRepo.IsUniqueViolation(err) {
			return res, failure.Conflict(msgDuplicateRoomNumber)
		}

		log.Error().Err(err).Msg("failed to create room")

		return res, fmt.Errorf("failed to create room: %w", err)
	}

	s.invalidateLists(ctx)

	res.FromModel(room)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.Filter) (res dto.GetRoomsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllRoom, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for rooms")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count rooms")

		return res, err
	}

	rooms, err := s.repo.GetAllDetail(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get rooms")

		return res, fmt.Errorf("failed to get rooms: %w", err)
	}

	res.FromModels(rooms, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save rooms to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.Filter) (total int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountRoom, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &total); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for room count")

		return total, nil
	}

	total, err = s.repo.Count(ctx, filter)
	if err != nil {
		return total, fmt.Errorf("failed to count rooms: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, total, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save room count to cache")
		}
	}()

	return total, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetRoom, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for room")

		return res, nil
	}

	detail, err := s.repo.GetDetail(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("room_id", id).Msg("failed to get room")

		return res, fmt.Errorf("failed to get room: %w", err)
	}

	if detail.ID == constant.Empty {
		return res, failure.NotFound("room not found")
	}

	res.FromDetail(detail)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save room to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateRoomRequest, id string) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.IsEmpty() {
		return res, failure.BadRequestFromString("no fields to update")
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	room, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	if req.RoomNumber != constant.Empty && req.RoomNumber != room.RoomNumber {
		if err = s.ensureUniqueNumber(ctx, room.HotelID, req.RoomNumber, id); err != nil {
			return res, err
		}
	}

	if _, err = s.repo.Update(ctx, shared.TransformFields(req, user), shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		if gRepo.IsUniqueViolation(err) {
			return res, failure.Conflict(msgDuplicateRoomNumber)
		}

		log.Error().Err(err).Str("room_id", id).Msg("failed to update room")

		return res, fmt.Errorf("failed to update room: %w", err)
	}

	s.evict(ctx, id)

	updated, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(updated)

	return res, nil
}

// Delete refuses while a pending or confirmed booking has not ended yet.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	room, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	booked, err := s.bookingRepo.Exist(ctx, gDto.And{
		gDto.Eq{Column: bookingCol(bookingModel.FieldRoomID), Value: id},
		gDto.OneOf{Column: bookingCol(bookingModel.FieldStatus), Values: bookingModel.ActiveStatuses},
		gDto.Range{Column: bookingCol(bookingModel.FieldEndDate), Min: timezone.Now()},
	})
	if err != nil {
		log.Error().Err(err).Str("room_id", id).Msg("failed to check room bookings")

		return fmt.Errorf("failed to check room bookings: %w", err)
	}

	if booked {
		return failure.Conflict("cannot delete room with active bookings")
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Str("room_id", id).Msg("failed to delete room")

		return fmt.Errorf("failed to delete room: %w", err)
	}

	s.evict(ctx, id)

	go func() {
		c := context.WithoutCancel(ctx)

		for _, url := range room.Images {
			objectName := s.s3.GetObjectNameFromURL(constant.Empty, url)
			if objectName == constant.Empty {
				continue
			}

			if err := s.s3.DeleteFile(c, constant.Empty, objectName); err != nil {
				log.Warn().Err(err).Str("object", objectName).Msg("failed to delete room image")
			}
		}
	}()

	return nil
}

// CheckAvailability reports whether the room could be booked for the stay and
// what it would cost. It never reserves anything.
func (s *serviceImpl) CheckAvailability(ctx context.Context, req dto.AvailabilityRequest, id string) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CheckAvailability")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	start, err := timezone.ParseDate(req.StartDate)
	if err != nil {
		return res, bookingModel.ErrInvalidDateRange
	}

	end, err := timezone.ParseDate(req.EndDate)
	if err != nil || !start.Before(end) {
		return res, bookingModel.ErrInvalidDateRange
	}

	room, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	overlapping, err := s.checker.IsOverlapping(ctx, id, start, end)
	if err != nil {
		log.Error().Err(err).Str("room_id", id).Msg("failed to check room availability")

		return res, err
	}

	res.FromModel(room, start, end, room.IsAvailable && !overlapping,
		pricing.Nights(start, end), pricing.ComputePrice(start, end, room.PricePerNight))

	return res, nil
}

func (s *serviceImpl) UploadImage(ctx context.Context, req dto.UploadImageRequest, id string) (res dto.UploadImageResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UploadImage")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	room, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	fileName := uuid.NewString()
	if ext := strings.TrimPrefix(filepath.Ext(req.Image.Filename), "."); ext != constant.Empty {
		fileName += "." + strings.ToLower(ext)
	}

	url, err := s.s3.UploadFile(ctx, constant.Empty, model.EntityName+"/"+id, req.ImageFile, req.Image, fileName)
	if err != nil {
		log.Error().Err(err).Str("room_id", id).Msg("failed to upload room image")

		return res, fmt.Errorf("failed to upload image: %w", err)
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	images := append(room.Images, url)

	if _, err = s.repo.Update(ctx, shared.TransformFields(dto.UpdateImagesRequest{Images: images}, user), shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Str("room_id", id).Msg("failed to save room image")

		go func() {
			c := context.WithoutCancel(ctx)

			if err := s.s3.DeleteFile(c, constant.Empty, s.s3.GetObjectNameFromURL(constant.Empty, url)); err != nil {
				log.Warn().Err(err).Msg("failed to roll back uploaded image")
			}
		}()

		return res, fmt.Errorf("failed to save image: %w", err)
	}

	s.evict(ctx, id)

	res.URL = url
	res.Images = images

	return res, nil
}

// ensureUniqueNumber rejects a room number already used by another room of
// the hotel. The unique index is the final word.
func (s *serviceImpl) ensureUniqueNumber(ctx context.Context, hotelID, roomNumber, exceptID string) error {
	filter := gDto.And{
		gDto.Eq{Column: gDto.Col(model.TableName, model.FieldHotelID), Value: hotelID},
		gDto.Eq{Column: gDto.Col(model.TableName, model.FieldRoomNumber), Value: roomNumber},
	}

	if exceptID != constant.Empty {
		filter = append(filter, gDto.NotEq{Column: gDto.Col(model.TableName, model.FieldID), Value: exceptID})
	}

	taken, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("hotel_id", hotelID).Msg("failed to check room number")

		return fmt.Errorf("failed to check room number: %w", err)
	}

	if taken {
		return failure.Conflict(msgDuplicateRoomNumber)
	}

	return nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Room, error) {
	room, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("room_id", id).Msg("failed to get room")

		return room, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return room, failure.NotFound("room not found")
	}

	return room, nil
}

func (s *serviceImpl) evict(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetRoom, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete room cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllRoom)
		shared.InvalidateCaches(c, s.cache, cacheCountRoom)
	}()
}

func (s *serviceImpl) invalidateLists(ctx context.Context) {
	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllRoom)
		shared.InvalidateCaches(c, s.cache, cacheCountRoom)
	}()
}

func bookingCol(name string) gDto.Column {
	return gDto.Col(bookingModel.TableName, name)
}

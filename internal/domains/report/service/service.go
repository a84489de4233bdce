package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"hotel/config"
	"hotel/infras/otel"
	"hotel/internal/domains/booking/model"
	"hotel/internal/domains/booking/repository"
	"hotel/internal/domains/report/model/dto"
	"hotel/shared"
	"hotel/shared/cache"
	"hotel/shared/constant"
	"hotel/shared/timezone"

	"github.com/rs/zerolog/log"
)

// CacheBookingStats prefixes the cached booking report. Booking mutations
// clear everything under it.
const CacheBookingStats = "report:booking_stats"

const monthKeyLayout = "2006-01"

type Report interface {
	BookingStats(ctx context.Context) (dto.BookingStatsResponse, error)
}

type serviceImpl struct {
	repo  repository.Booking
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Booking, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Report {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) BookingStats(ctx context.Context) (res dto.BookingStatsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".BookingStats")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	from := timezone.StartOfMonth(timezone.Now(), -11)
	cacheKey := shared.BuildCacheKey(CacheBookingStats, timezone.Format(from, monthKeyLayout))

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking stats")

		return res, nil
	}

	statuses, err := s.repo.StatusSummary(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to summarize bookings by status")

		return res, fmt.Errorf("failed to summarize bookings by status: %w", err)
	}

	revenue, err := s.repo.Revenue(ctx, model.RevenueStatuses)
	if err != nil {
		log.Error().Err(err).Msg("failed to sum booking revenue")

		return res, fmt.Errorf("failed to sum booking revenue: %w", err)
	}

	months, err := s.repo.MonthlySummary(ctx, from, timezone.GetLocation().String())
	if err != nil {
		log.Error().Err(err).Msg("failed to summarize bookings by month")

		return res, fmt.Errorf("failed to summarize bookings by month: %w", err)
	}

	res.FromStatuses(statuses)
	res.FromMonths(from, months)
	res.TotalRevenue = revenue

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking stats to cache")
		}
	}()

	return res, nil
}

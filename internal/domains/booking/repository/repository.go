package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"hotel/infras/otel"
	"hotel/infras/postgres"
	"hotel/internal/domains/booking/model"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	gRepo "hotel/shared/repository"
	"time"

	"github.com/shopspring/decimal"
)

type Booking interface {
	Insert(ctx context.Context, model model.Booking) error
	Get(ctx context.Context, filter gDto.Filter, columns ...string) (model.Booking, error)
	Count(ctx context.Context, filter gDto.Filter) (int, error)
	Exist(ctx context.Context, filter gDto.Filter) (bool, error)
	Update(ctx context.Context, req map[string]any, filter gDto.Filter) (int64, error)
	GetDetail(ctx context.Context, filter gDto.Filter) (model.BookingDetail, error)
	GetAllDetail(ctx context.Context, params gDto.QueryParams, filter gDto.Filter) ([]model.BookingDetail, error)
	StatusSummary(ctx context.Context) ([]model.StatusSummary, error)
	Revenue(ctx context.Context, statuses []model.Status) (decimal.Decimal, error)
	MonthlySummary(ctx context.Context, from time.Time, location string) ([]model.MonthlySummary, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	detail gRepo.Repository[model.BookingDetail]
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		detail:     gRepo.NewRepository[model.BookingDetail](model.EntityName+"_detail", model.TableName, model.FieldID, db, otel),
	}
}

func (r *repositoryImpl) GetDetail(ctx context.Context, filter gDto.Filter) (model.BookingDetail, error) {
	return r.detail.Get(ctx, filter)
}

func (r *repositoryImpl) GetAllDetail(ctx context.Context, params gDto.QueryParams, filter gDto.Filter) ([]model.BookingDetail, error) {
	return r.detail.GetAll(ctx, params, filter)
}

func (r *repositoryImpl) StatusSummary(ctx context.Context) ([]model.StatusSummary, error) {
	query := fmt.Sprintf(
		"SELECT %[2]s AS status, COUNT(%[1]s) AS count, COALESCE(SUM(%[3]s), 0) AS total_price FROM %[4]s GROUP BY %[2]s",
		model.FieldID, model.FieldStatus, model.FieldTotalPrice, model.TableName,
	)

	rows := []model.StatusSummary{}
	if err := r.SelectRaw(ctx, &rows, query, map[string]any{}); err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *repositoryImpl) Revenue(ctx context.Context, statuses []model.Status) (decimal.Decimal, error) {
	where, args := r.BuildWhereClause(ctx, gDto.OneOf{Column: gDto.Col(model.TableName, model.FieldStatus), Values: statuses})

	query := fmt.Sprintf("SELECT COALESCE(SUM(%s.%s), 0) FROM %s %s", model.TableName, model.FieldTotalPrice, model.TableName, where)

	revenue := decimal.Zero
	if err := r.GetRaw(ctx, &revenue, query, args); err != nil {
		return decimal.Zero, err
	}

	return revenue, nil
}

// MonthlySummary buckets bookings created since from by calendar month in the
// given IANA location. Months without bookings are absent.
func (r *repositoryImpl) MonthlySummary(ctx context.Context, from time.Time, location string) ([]model.MonthlySummary, error) {
	local := fmt.Sprintf("(%s AT TIME ZONE :tz)", constant.FieldCreatedAt)

	query := fmt.Sprintf(
		"SELECT CAST(EXTRACT(YEAR FROM %[1]s) AS INTEGER) AS year, CAST(EXTRACT(MONTH FROM %[1]s) AS INTEGER) AS month, "+
			"COUNT(%[2]s) AS count, COALESCE(SUM(%[3]s), 0) AS revenue FROM %[4]s WHERE %[5]s >= :from GROUP BY 1, 2 ORDER BY 1, 2",
		local, model.FieldID, model.FieldTotalPrice, model.TableName, constant.FieldCreatedAt,
	)

	rows := []model.MonthlySummary{}
	if err := r.SelectRaw(ctx, &rows, query, map[string]any{"tz": location, "from": from}); err != nil {
		return nil, err
	}

	return rows, nil
}

package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"hotel/infras/otel"
	"hotel/infras/postgres"
	"hotel/internal/domains/room/model"
	gDto "hotel/shared/dto"
	gRepo "hotel/shared/repository"
)

type Room interface {
	Insert(ctx context.Context, model model.Room) error
	Get(ctx context.Context, filter gDto.Filter, columns ...string) (model.Room, error)
	Count(ctx context.Context, filter gDto.Filter) (int, error)
	Exist(ctx context.Context, filter gDto.Filter) (bool, error)
	Update(ctx context.Context, req map[string]any, filter gDto.Filter) (int64, error)
	Delete(ctx context.Context, filter gDto.Filter) error
	GetDetail(ctx context.Context, filter gDto.Filter) (model.RoomDetail, error)
	GetAllDetail(ctx context.Context, params gDto.QueryParams, filter gDto.Filter) ([]model.RoomDetail, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Room]
	detail gRepo.Repository[model.RoomDetail]
}

func New(db *postgres.Connection, otel otel.Otel) Room {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Room](model.EntityName, model.TableName, model.FieldID, db, otel),
		detail:     gRepo.NewRepository[model.RoomDetail](model.EntityName+"_detail", model.TableName, model.FieldID, db, otel),
	}
}

func (r *repositoryImpl) GetDetail(ctx context.Context, filter gDto.Filter) (model.RoomDetail, error) {
	return r.detail.Get(ctx, filter)
}

func (r *repositoryImpl) GetAllDetail(ctx context.Context, params gDto.QueryParams, filter gDto.Filter) ([]model.RoomDetail, error) {
	return r.detail.GetAll(ctx, params, filter)
}

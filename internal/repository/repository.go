package repository

import (
	"context"
	"errors"

	"parkingpal/internal/domain"
)

var ErrNotFound = errors.New("record not found")
var ErrDuplicateEntry = errors.New("record already exists")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
}

type ParkingSignRepository interface {
	Create(ctx context.Context, sign *domain.ParkingSign) (*domain.ParkingSign, error)
	FindByID(ctx context.Context, id int) (*domain.ParkingSign, error)
	FindByUserID(ctx context.Context, userID int) ([]domain.ParkingSign, error)
}

type ParkingHistoryRepository interface {
	Create(ctx context.Context, history *domain.ParkingHistory) (*domain.ParkingHistory, error)
	FindByUserID(ctx context.Context, userID int) ([]domain.ParkingHistory, error)
	FindRecent(ctx context.Context, limit int) ([]domain.ParkingHistory, error)
}

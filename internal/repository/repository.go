package repository

import (
	"context"
	"database/sql"
	"time"

	"relative_photometer/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

type StateRepo interface {
	Save(ctx context.Context, s models.MeterState) error
	Load(ctx context.Context) (models.MeterState, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.SensorEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.SensorEvent, error)
}

type Repository struct {
	StateRepo StateRepo
	EventRepo EventRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StateRepo: NewStateSQLite(db),
		EventRepo: NewEventSQLite(db),
		Auth:      NewUserRepository(db),
	}
}

package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"parkingpal/internal/domain"
	"parkingpal/internal/repository"
)

type pgParkingHistoryRepository struct {
	db *sql.DB
}

func NewPgParkingHistoryRepository(db *sql.DB) repository.ParkingHistoryRepository {
	return &pgParkingHistoryRepository{db: db}
}

func (r *pgParkingHistoryRepository) Create(ctx context.Context, history *domain.ParkingHistory) (*domain.ParkingHistory, error) {
	query := `INSERT INTO parking_history
	           (user_id, sign_id, is_allowed, time_remaining, start_time, end_time, created_at)
	           VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
	           RETURNING id, created_at`

	var timeRemainingVal sql.NullString
	if history.TimeRemaining != "" {
		timeRemainingVal = sql.NullString{String: history.TimeRemaining, Valid: true}
	}
	var endTimeVal sql.NullTime
	if history.EndTime != nil {
		endTimeVal = sql.NullTime{Time: *history.EndTime, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		history.UserID, history.SignID, history.IsAllowed, timeRemainingVal, history.StartTime, endTimeVal,
	).Scan(&history.ID, &history.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ParkingHistoryRepository.Create: %w", err)
	}
	history.CreatedAt = history.CreatedAt.In(time.UTC)
	return history, nil
}

func (r *pgParkingHistoryRepository) FindByUserID(ctx context.Context, userID int) ([]domain.ParkingHistory, error) {
	query := `SELECT id, user_id, sign_id, is_allowed, time_remaining, start_time, end_time, created_at
	           FROM parking_history WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ParkingHistoryRepository.FindByUserID: %w", err)
	}
	defer rows.Close()
	return collectHistory(rows, "ParkingHistoryRepository.FindByUserID")
}

func (r *pgParkingHistoryRepository) FindRecent(ctx context.Context, limit int) ([]domain.ParkingHistory, error) {
	query := `SELECT id, user_id, sign_id, is_allowed, time_remaining, start_time, end_time, created_at
	           FROM parking_history ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ParkingHistoryRepository.FindRecent: %w", err)
	}
	defer rows.Close()
	return collectHistory(rows, "ParkingHistoryRepository.FindRecent")
}

func collectHistory(rows *sql.Rows, op string) ([]domain.ParkingHistory, error) {
	var records []domain.ParkingHistory
	for rows.Next() {
		var record domain.ParkingHistory
		var timeRemainingVal sql.NullString
		var endTimeVal sql.NullTime

		err := rows.Scan(&record.ID, &record.UserID, &record.SignID, &record.IsAllowed,
			&timeRemainingVal, &record.StartTime, &endTimeVal, &record.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if timeRemainingVal.Valid {
			record.TimeRemaining = timeRemainingVal.String
		}
		if endTimeVal.Valid {
			t := endTimeVal.Time.In(time.UTC)
			record.EndTime = &t
		}
		record.StartTime = record.StartTime.In(time.UTC)
		record.CreatedAt = record.CreatedAt.In(time.UTC)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}

package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"parkingpal/internal/domain"
	"parkingpal/internal/repository"
)

type pgParkingSignRepository struct {
	db *sql.DB
}

func NewPgParkingSignRepository(db *sql.DB) repository.ParkingSignRepository {
	return &pgParkingSignRepository{db: db}
}

func (r *pgParkingSignRepository) Create(ctx context.Context, sign *domain.ParkingSign) (*domain.ParkingSign, error) {
	rulesJSON, err := json.Marshal(sign.Rules)
	if err != nil {
		return nil, fmt.Errorf("ParkingSignRepository.Create: marshaling rules: %w", err)
	}

	query := `INSERT INTO parking_signs (user_id, image_text, rules, location, created_at)
	           VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
	           RETURNING id, created_at`

	var locationVal sql.NullString
	if sign.Location != "" {
		locationVal = sql.NullString{String: sign.Location, Valid: true}
	}

	err = r.db.QueryRowContext(ctx, query, sign.UserID, sign.ImageText, rulesJSON, locationVal).
		Scan(&sign.ID, &sign.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ParkingSignRepository.Create: %w", err)
	}
	sign.CreatedAt = sign.CreatedAt.In(time.UTC)
	return sign, nil
}

func (r *pgParkingSignRepository) FindByID(ctx context.Context, id int) (*domain.ParkingSign, error) {
	query := `SELECT id, user_id, image_text, rules, location, created_at
	           FROM parking_signs WHERE id = $1`
	sign, err := scanSign(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSignRepository.FindByID: %w", err)
	}
	return sign, nil
}

func (r *pgParkingSignRepository) FindByUserID(ctx context.Context, userID int) ([]domain.ParkingSign, error) {
	query := `SELECT id, user_id, image_text, rules, location, created_at
	           FROM parking_signs WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ParkingSignRepository.FindByUserID: %w", err)
	}
	defer rows.Close()

	var signs []domain.ParkingSign
	for rows.Next() {
		sign, err := scanSign(rows)
		if err != nil {
			return nil, fmt.Errorf("ParkingSignRepository.FindByUserID: %w", err)
		}
		signs = append(signs, *sign)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingSignRepository.FindByUserID: %w", err)
	}
	return signs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSign(row rowScanner) (*domain.ParkingSign, error) {
	sign := &domain.ParkingSign{}
	var rulesJSON []byte
	var locationVal sql.NullString

	if err := row.Scan(&sign.ID, &sign.UserID, &sign.ImageText, &rulesJSON, &locationVal, &sign.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rulesJSON, &sign.Rules); err != nil {
		return nil, fmt.Errorf("unmarshaling rules: %w", err)
	}
	if locationVal.Valid {
		sign.Location = locationVal.String
	}
	sign.CreatedAt = sign.CreatedAt.In(time.UTC)
	return sign, nil
}

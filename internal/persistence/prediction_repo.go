package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/felixbrock/flightprice/internal/domain"
)

type PredictionRepo struct {
	db *sql.DB
}

func (r *PredictionRepo) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *PredictionRepo) Insert(ctx context.Context, prediction domain.Prediction) error {
	if r == nil || r.db == nil {
		return ErrDisabled
	}
	if strings.TrimSpace(prediction.Id) == "" {
		return fmt.Errorf("prediction id is required")
	}
	input, err := json.Marshal(prediction.Input)
	if err != nil {
		return err
	}
	createdAt := prediction.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO predictions (id, input_json, predicted_price, currency, created_at) VALUES (?, ?, ?, ?, ?)`,
		prediction.Id,
		string(input),
		prediction.Price,
		prediction.Currency,
		toMillis(createdAt),
	)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

// Recent returns up to limit predictions, newest first.
func (r *PredictionRepo) Recent(ctx context.Context, limit int) ([]domain.Prediction, error) {
	if r == nil || r.db == nil {
		return nil, ErrDisabled
	}
	if limit <= 0 {
		return []domain.Prediction{}, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, input_json, predicted_price, currency, created_at
		 FROM predictions
		 ORDER BY created_at DESC, id
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	defer rows.Close()

	records := make([]domain.Prediction, 0, limit)
	for rows.Next() {
		var (
			p         domain.Prediction
			input     string
			createdAt int64
		)
		if err := rows.Scan(&p.Id, &input, &p.Price, &p.Currency, &createdAt); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		if err := json.Unmarshal([]byte(input), &p.Input); err != nil {
			return nil, fmt.Errorf("decode prediction %s: %w", p.Id, err)
		}
		p.CreatedAt = fromMillis(createdAt)
		records = append(records, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	return records, nil
}

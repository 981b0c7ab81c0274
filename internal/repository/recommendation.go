package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/AjayAlluri/Toyota-Financing/internal/models"
)

const recommendationColumns = `id, user_id, budget_car, balanced_car, premium_car, normalized,
	recommendation_data, selected_tier, selected_plan, created_at, updated_at`

type RecommendationRepository struct {
	db DB
}

// NewRecommendationRepository создает репозиторий рекомендаций.
func NewRecommendationRepository(db DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// Create сохраняет рекомендацию вместе с JSON документом модели.
func (r *RecommendationRepository) Create(ctx context.Context, rec models.Recommendation) (models.Recommendation, error) {
	if len(rec.Data) == 0 {
		return models.Recommendation{}, ErrInvalid
	}

	created, err := scanRecommendation(r.db.QueryRow(ctx,
		`INSERT INTO recommendations (user_id, budget_car, balanced_car, premium_car, normalized, recommendation_data)
		 VALUES ($1, $2, $3, $4, $5, $6::jsonb)
		 RETURNING `+recommendationColumns,
		rec.UserID, rec.BudgetCar, rec.BalancedCar, rec.PremiumCar, rec.Normalized, string(rec.Data),
	))
	if err != nil {
		return created, eris.Wrap(err, "repository: create recommendation")
	}
	return created, nil
}

// ListByUser возвращает рекомендации пользователя, новые первыми.
func (r *RecommendationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Recommendation, error) {
	limit, offset = normalizePagination(limit, offset)

	rows, err := r.db.Query(ctx,
		`SELECT `+recommendationColumns+`
		 FROM recommendations
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "repository: list recommendations")
	}
	defer rows.Close()

	recs := make([]models.Recommendation, 0)
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, eris.Wrap(err, "repository: scan recommendation")
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "repository: list recommendations")
	}

	return recs, nil
}

// GetByID возвращает рекомендацию по идентификатору.
func (r *RecommendationRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Recommendation, error) {
	rec, err := scanRecommendation(r.db.QueryRow(ctx,
		`SELECT `+recommendationColumns+`
		 FROM recommendations
		 WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rec, ErrNotFound
		}
		return rec, eris.Wrap(err, "repository: get recommendation")
	}
	return rec, nil
}

// UpdateSelection сохраняет выбранный уровень и тип сделки.
func (r *RecommendationRepository) UpdateSelection(ctx context.Context, id uuid.UUID, tier string, plan models.PlanType) (models.Recommendation, error) {
	rec, err := scanRecommendation(r.db.QueryRow(ctx,
		`UPDATE recommendations
		 SET selected_tier = $2, selected_plan = $3, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+recommendationColumns,
		id, tier, string(plan),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rec, ErrNotFound
		}
		return rec, eris.Wrap(err, "repository: update selection")
	}
	return rec, nil
}

func scanRecommendation(row pgx.Row) (models.Recommendation, error) {
	var rec models.Recommendation
	var data []byte
	var plan *string

	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.BudgetCar,
		&rec.BalancedCar,
		&rec.PremiumCar,
		&rec.Normalized,
		&data,
		&rec.SelectedTier,
		&plan,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return rec, err
	}

	rec.Data = data
	if plan != nil {
		planType := models.PlanType(*plan)
		rec.SelectedPlan = &planType
	}
	return rec, nil
}

package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/AjayAlluri/Toyota-Financing/internal/models"
)

const profileColumns = `id, user_id, gross_monthly_income, other_monthly_income, fixed_monthly_expenses,
	liquid_savings, credit_score, ownership_horizon, annual_mileage, passenger_needs, commute_profile,
	down_payment, created_at, updated_at`

type ProfileRepository struct {
	db DB
}

// NewProfileRepository создает репозиторий финансовых профилей.
func NewProfileRepository(db DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByUserID возвращает профиль пользователя.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (models.FinancialProfile, error) {
	profile, err := scanProfile(r.db.QueryRow(ctx,
		`SELECT `+profileColumns+`
		 FROM financial_profiles
		 WHERE user_id = $1`,
		userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile, ErrNotFound
		}
		return profile, eris.Wrap(err, "repository: get profile")
	}
	return profile, nil
}

// Upsert создает или обновляет профиль пользователя.
func (r *ProfileRepository) Upsert(ctx context.Context, p models.FinancialProfile) (models.FinancialProfile, error) {
	profile, err := scanProfile(r.db.QueryRow(ctx,
		`INSERT INTO financial_profiles
		 (user_id, gross_monthly_income, other_monthly_income, fixed_monthly_expenses, liquid_savings,
		  credit_score, ownership_horizon, annual_mileage, passenger_needs, commute_profile, down_payment)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (user_id) DO UPDATE SET
		   gross_monthly_income = EXCLUDED.gross_monthly_income,
		   other_monthly_income = EXCLUDED.other_monthly_income,
		   fixed_monthly_expenses = EXCLUDED.fixed_monthly_expenses,
		   liquid_savings = EXCLUDED.liquid_savings,
		   credit_score = EXCLUDED.credit_score,
		   ownership_horizon = EXCLUDED.ownership_horizon,
		   annual_mileage = EXCLUDED.annual_mileage,
		   passenger_needs = EXCLUDED.passenger_needs,
		   commute_profile = EXCLUDED.commute_profile,
		   down_payment = EXCLUDED.down_payment,
		   updated_at = NOW()
		 RETURNING `+profileColumns,
		p.UserID,
		p.GrossMonthlyIncome,
		p.OtherMonthlyIncome,
		p.FixedMonthlyExpenses,
		p.LiquidSavings,
		p.CreditScore,
		p.OwnershipHorizon,
		p.AnnualMileage,
		p.PassengerNeeds,
		p.CommuteProfile,
		p.DownPayment,
	))
	if err != nil {
		return profile, eris.Wrap(err, "repository: upsert profile")
	}
	return profile, nil
}

func scanProfile(row pgx.Row) (models.FinancialProfile, error) {
	var p models.FinancialProfile
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.GrossMonthlyIncome,
		&p.OtherMonthlyIncome,
		&p.FixedMonthlyExpenses,
		&p.LiquidSavings,
		&p.CreditScore,
		&p.OwnershipHorizon,
		&p.AnnualMileage,
		&p.PassengerNeeds,
		&p.CommuteProfile,
		&p.DownPayment,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

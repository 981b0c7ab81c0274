package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/AjayAlluri/Toyota-Financing/internal/access"
	"github.com/AjayAlluri/Toyota-Financing/internal/models"
)

type SalesRepository struct {
	db DB
}

// Lead is a customer account with a summary of their activity.
type Lead struct {
	ID                  uuid.UUID
	Email               string
	FirstName           *string
	LastName            *string
	CreatedAt           time.Time
	HasProfile          bool
	DocumentCount       int
	RecommendationCount int
	LastRecommendation  *time.Time
}

type ProfileRecord struct {
	models.FinancialProfile
	OwnerEmail string
}

type DocumentRecord struct {
	models.Document
	OwnerEmail string
}

type RecommendationRecord struct {
	models.Recommendation
	OwnerEmail string
}

// LeadExportRow is one line of the lead CSV export.
type LeadExportRow struct {
	UserID             uuid.UUID
	Email              string
	FirstName          *string
	LastName           *string
	CreatedAt          time.Time
	CreditScore        *string
	DownPayment        *float64
	GrossMonthlyIncome *float64
	BudgetCar          *string
	BalancedCar        *string
	PremiumCar         *string
	SelectedTier       *string
	SelectedPlan       *string
	DocumentCount      int
}

type DailyCount struct {
	Day   time.Time
	Count int
}

type LeadStats struct {
	Leads                int
	SalesStaff           int
	Profiles             int
	Documents            int
	Recommendations      int
	Selections           int
	AIRequests           int
	AISuccess            int
	AIFail               int
	RecommendationsByDay []DailyCount
}

// NewSalesRepository создает репозиторий для отдела продаж.
func NewSalesRepository(db DB) *SalesRepository {
	return &SalesRepository{db: db}
}

// ListLeads возвращает клиентов с пагинацией.
func (r *SalesRepository) ListLeads(ctx context.Context, limit, offset int) ([]Lead, error) {
	limit, offset = normalizePagination(limit, offset)

	rows, err := r.db.Query(ctx,
		`SELECT u.id, u.email, u.first_name, u.last_name, u.created_at,
		        EXISTS (SELECT 1 FROM financial_profiles p WHERE p.user_id = u.id),
		        (SELECT COUNT(*) FROM documents d WHERE d.user_id = u.id),
		        (SELECT COUNT(*) FROM recommendations rc WHERE rc.user_id = u.id),
		        (SELECT MAX(rc.created_at) FROM recommendations rc WHERE rc.user_id = u.id)
		 FROM users u
		 WHERE u.role = $1
		 ORDER BY u.created_at DESC
		 LIMIT $2 OFFSET $3`,
		string(access.RoleUser), limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "repository: list leads")
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		var lead Lead
		if err := rows.Scan(
			&lead.ID,
			&lead.Email,
			&lead.FirstName,
			&lead.LastName,
			&lead.CreatedAt,
			&lead.HasProfile,
			&lead.DocumentCount,
			&lead.RecommendationCount,
			&lead.LastRecommendation,
		); err != nil {
			return nil, eris.Wrap(err, "repository: scan lead")
		}
		leads = append(leads, lead)
	}

	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "repository: list leads")
	}

	return leads, nil
}

// CountLeads возвращает общее количество клиентов.
func (r *SalesRepository) CountLeads(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, string(access.RoleUser)).Scan(&count); err != nil {
		return 0, eris.Wrap(err, "repository: count leads")
	}
	return count, nil
}

// ListProfiles возвращает финансовые профили всех клиентов.
func (r *SalesRepository) ListProfiles(ctx context.Context, limit, offset int) ([]ProfileRecord, error) {
	limit, offset = normalizePagination(limit, offset)

	rows, err := r.db.Query(ctx,
		`SELECT p.id, p.user_id, p.gross_monthly_income, p.other_monthly_income, p.fixed_monthly_expenses,
		        p.liquid_savings, p.credit_score, p.ownership_horizon, p.annual_mileage, p.passenger_needs,
		        p.commute_profile, p.down_payment, p.created_at, p.updated_at, u.email
		 FROM financial_profiles p
		 JOIN users u ON u.id = p.user_id
		 ORDER BY p.updated_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "repository: list profiles")
	}
	defer rows.Close()

	profiles := make([]ProfileRecord, 0)
	for rows.Next() {
		var rec ProfileRecord
		p := &rec.FinancialProfile
		if err := rows.Scan(
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
			&rec.OwnerEmail,
		); err != nil {
			return nil, eris.Wrap(err, "repository: scan profile")
		}
		profiles = append(profiles, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "repository: list profiles")
	}

	return profiles, nil
}

// ListDocuments возвращает документы всех клиентов.
func (r *SalesRepository) ListDocuments(ctx context.Context, limit, offset int) ([]DocumentRecord, error) {
	limit, offset = normalizePagination(limit, offset)

	rows, err := r.db.Query(ctx,
		`SELECT d.id, d.user_id, d.original_name, d.storage_key, d.file_size, d.mime_type, d.uploaded_at, u.email
		 FROM documents d
		 JOIN users u ON u.id = d.user_id
		 ORDER BY d.uploaded_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "repository: list documents")
	}
	defer rows.Close()

	docs := make([]DocumentRecord, 0)
	for rows.Next() {
		var rec DocumentRecord
		d := &rec.Document
		if err := rows.Scan(&d.ID, &d.UserID, &d.OriginalName, &d.StorageKey, &d.FileSize, &d.MIMEType, &d.UploadedAt, &rec.OwnerEmail); err != nil {
			return nil, eris.Wrap(err, "repository: scan document")
		}
		docs = append(docs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "repository: list documents")
	}

	return docs, nil
}

// ListRecommendations возвращает рекомендации всех клиентов.
func (r *SalesRepository) ListRecommendations(ctx context.Context, limit, offset int) ([]RecommendationRecord, error) {
	limit, offset = normalizePagination(limit, offset)

	rows, err := r.db.Query(ctx,
		`SELECT rc.id, rc.user_id, rc.budget_car, rc.balanced_car, rc.premium_car, rc.normalized,
		        rc.recommendation_data, rc.selected_tier, rc.selected_plan, rc.created_at, rc.updated_at, u.email
		 FROM recommendations rc
		 JOIN users u ON u.id = rc.user_id
		 ORDER BY rc.created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "repository: list recommendations")
	}
	defer rows.Close()

	recs := make([]RecommendationRecord, 0)
	for rows.Next() {
		var rec RecommendationRecord
		var data []byte
		var plan *string
		m := &rec.Recommendation
		if err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.BudgetCar,
			&m.BalancedCar,
			&m.PremiumCar,
			&m.Normalized,
			&data,
			&m.SelectedTier,
			&plan,
			&m.CreatedAt,
			&m.UpdatedAt,
			&rec.OwnerEmail,
		); err != nil {
			return nil, eris.Wrap(err, "repository: scan recommendation")
		}
		m.Data = data
		if plan != nil {
			planType := models.PlanType(*plan)
			m.SelectedPlan = &planType
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "repository: list recommendations")
	}

	return recs, nil
}

// ExportLeads возвращает клиентов с профилем и последней рекомендацией для выгрузки.
func (r *SalesRepository) ExportLeads(ctx context.Context) ([]LeadExportRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT u.id, u.email, u.first_name, u.last_name, u.created_at,
		        p.credit_score, p.down_payment, p.gross_monthly_income,
		        rc.budget_car, rc.balanced_car, rc.premium_car, rc.selected_tier, rc.selected_plan,
		        (SELECT COUNT(*) FROM documents d WHERE d.user_id = u.id)
		 FROM users u
		 LEFT JOIN financial_profiles p ON p.user_id = u.id
		 LEFT JOIN LATERAL (
		     SELECT budget_car, balanced_car, premium_car, selected_tier, selected_plan
		     FROM recommendations
		     WHERE user_id = u.id
		     ORDER BY created_at DESC
		     LIMIT 1
		 ) rc ON TRUE
		 WHERE u.role = $1
		 ORDER BY u.created_at DESC`,
		string(access.RoleUser),
	)
	if err != nil {
		return nil, eris.Wrap(err, "repository: export leads")
	}
	defer rows.Close()

	out := make([]LeadExportRow, 0)
	for rows.Next() {
		var row LeadExportRow
		if err := rows.Scan(
			&row.UserID,
			&row.Email,
			&row.FirstName,
			&row.LastName,
			&row.CreatedAt,
			&row.CreditScore,
			&row.DownPayment,
			&row.GrossMonthlyIncome,
			&row.BudgetCar,
			&row.BalancedCar,
			&row.PremiumCar,
			&row.SelectedTier,
			&row.SelectedPlan,
			&row.DocumentCount,
		); err != nil {
			return nil, eris.Wrap(err, "repository: scan lead export")
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "repository: export leads")
	}

	return out, nil
}

// Stats возвращает агрегированную статистику за N дней.
func (r *SalesRepository) Stats(ctx context.Context, days int) (LeadStats, error) {
	stats := LeadStats{}
	if days <= 0 {
		return stats, ErrInvalid
	}

	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE role = 'user'),
		        COUNT(*) FILTER (WHERE role = 'sales')
		 FROM users`,
	).Scan(&stats.Leads, &stats.SalesStaff); err != nil {
		return stats, eris.Wrap(err, "repository: count users")
	}

	if err := r.db.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM financial_profiles),
		        (SELECT COUNT(*) FROM documents),
		        (SELECT COUNT(*) FROM recommendations),
		        (SELECT COUNT(*) FROM recommendations WHERE selected_tier IS NOT NULL)`,
	).Scan(&stats.Profiles, &stats.Documents, &stats.Recommendations, &stats.Selections); err != nil {
		return stats, eris.Wrap(err, "repository: count activity")
	}

	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE success),
		        COUNT(*) FILTER (WHERE NOT success)
		 FROM ai_requests`,
	).Scan(&stats.AIRequests, &stats.AISuccess, &stats.AIFail); err != nil {
		return stats, eris.Wrap(err, "repository: count ai requests")
	}

	start := time.Now().UTC().AddDate(0, 0, -days+1)
	rows, err := r.db.Query(ctx,
		`SELECT date_trunc('day', created_at)::date AS day,
		        COUNT(*)
		 FROM recommendations
		 WHERE created_at >= $1
		 GROUP BY day
		 ORDER BY day DESC`,
		start,
	)
	if err != nil {
		return stats, eris.Wrap(err, "repository: recommendations by day")
	}
	defer rows.Close()

	stats.RecommendationsByDay = make([]DailyCount, 0)
	for rows.Next() {
		var row DailyCount
		if err := rows.Scan(&row.Day, &row.Count); err != nil {
			return stats, eris.Wrap(err, "repository: scan daily count")
		}
		stats.RecommendationsByDay = append(stats.RecommendationsByDay, row)
	}

	if err := rows.Err(); err != nil {
		return stats, eris.Wrap(err, "repository: recommendations by day")
	}

	return stats, nil
}

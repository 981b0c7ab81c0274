package ai

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/AjayAlluri/Toyota-Financing/internal/metrics"
	"github.com/AjayAlluri/Toyota-Financing/internal/quote"
)

var ErrNoJSON = errors.New("ai response does not contain json")

const systemPrompt = `You are an automotive data and finance assistant for Toyota vehicles sold in the United States.

Recommend exactly one current model year Toyota (no Lexus, no discontinued or concept models) for each of three price categories: "Budget", "Balanced" and "Premium". The three cars must sit in clearly different price ranges. Base MSRP, MPG, trims and seating on toyota.com and kbb.com, and APR estimates on current U.S. averages for the stated credit band.

Return ONLY one JSON object, no markdown and no text around it. Every number must be a literal number, never an expression.

{
  "Budget": {
    "year": number,
    "make": "Toyota",
    "model": string,
    "trim": string,
    "price": number,
    "mileage": string,
    "seats": number,
    "headline_feature": string (at most 2 words),
    "finance": {"apr_percent": number, "term_months": number, "estimated_monthly_payment": number},
    "lease": {"term_months": number, "estimated_monthly_payment": number, "annual_mileage_limit": number, "lease_score": number}
  },
  "Balanced": { same structure },
  "Premium": { same structure },
  "Affordability": {
    "monthly_cap": number,
    "price_max": number,
    "price_bands": {"Budget": number, "Balanced": number, "Premium": number},
    "financing_term_months": number,
    "apr_percent": number
  },
  "Recommendation": {"primary": "Finance" or "Lease", "lease_score": number, "reason": string (1-2 lines)}
}`

type Service struct {
	client   Client
	provider string
	model    string
}

// NewService создает сервис работы с AI-клиентом.
func NewService(client Client, provider, model string) *Service {
	return &Service{client: client, provider: provider, model: model}
}

func (s *Service) Provider() string { return s.provider }

func (s *Service) Model() string { return s.model }

// RecommendVehicles запрашивает у модели три автомобиля, проверяет ответ по
// схеме и упорядочивает уровни по цене. Prompt и Raw заполняются и при ошибке.
func (s *Service) RecommendVehicles(ctx context.Context, input ProfileInput) (Result, error) {
	result := Result{Prompt: BuildPrompt(input)}

	messages := []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: result.Prompt},
	}

	started := time.Now()
	content, raw, err := s.client.Chat(ctx, messages)
	result.Latency = time.Since(started)
	result.Raw = raw
	metrics.AIRequestDuration.WithLabelValues(s.provider).Observe(result.Latency.Seconds())

	if err != nil {
		metrics.AIRequests.WithLabelValues(s.provider, "error").Inc()
		return result, eris.Wrap(err, "ai: chat")
	}

	payload := extractJSON(content)
	if payload == "" {
		metrics.AIRequests.WithLabelValues(s.provider, "invalid").Inc()
		return result, ErrNoJSON
	}

	doc, err := quote.ParseDocument([]byte(payload))
	if err != nil {
		metrics.AIRequests.WithLabelValues(s.provider, "invalid").Inc()
		return result, err
	}
	metrics.AIRequests.WithLabelValues(s.provider, "success").Inc()

	issues, err := quote.Validate([]byte(payload))
	if err != nil {
		zap.L().Warn("recommendation schema check failed", zap.Error(err))
	}
	if len(issues) > 0 {
		zap.L().Info("recommendation document does not match schema",
			zap.String("provider", s.provider),
			zap.Strings("issues", issues),
		)
	}
	result.SchemaIssues = issues

	result.Document, result.Normalized = quote.Normalize(doc)
	if result.Normalized {
		metrics.TierNormalizations.WithLabelValues("sorted").Inc()
	} else {
		metrics.TierNormalizations.WithLabelValues("skipped").Inc()
		zap.L().Warn("recommendation document is missing a tier, returned as is", zap.String("provider", s.provider))
	}

	return result, nil
}

// BuildPrompt формирует пользовательскую часть запроса из анкеты.
func BuildPrompt(input ProfileInput) string {
	var b strings.Builder
	b.WriteString("Customer financial profile:\n")

	fields := []struct {
		name  string
		value string
	}{
		{"gross_monthly_income", usd(input.GrossMonthlyIncome)},
		{"other_monthly_income", usd(input.OtherMonthlyIncome)},
		{"monthly_fixed_expenses", usd(input.FixedMonthlyExpenses)},
		{"liquid_savings", usd(input.LiquidSavings)},
		{"credit_score", orUnknown(input.CreditScore)},
		{"ownership_horizon", orUnknown(input.OwnershipHorizon)},
		{"annual_mileage", orUnknown(input.AnnualMileage)},
		{"passenger_needs", orUnknown(input.PassengerNeeds)},
		{"commute_profile", orUnknown(input.CommuteProfile)},
		{"down_payment", usd(input.DownPayment)},
	}
	for i, field := range fields {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, field.name, field.value)
	}

	b.WriteString("\nUsing this profile, recommend the best Budget, Balanced and Premium Toyota with financing and leasing estimates in the JSON format described above.")
	return b.String()
}

func usd(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64) + " USD"
}

func orUnknown(value string) string {
	if strings.TrimSpace(value) == "" {
		return "unknown"
	}
	return strings.TrimSpace(value)
}

// extractJSON вырезает JSON объект из ответа: снимает markdown ограждение и
// отбрасывает текст до первой { и после последней }.
func extractJSON(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimPrefix(strings.TrimSpace(trimmed), "json")
		trimmed = strings.TrimSpace(trimmed)
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}

	return trimmed[start : end+1]
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

const RequestTypeVehicleQuote = "vehicle_quote"

type AIRepository struct {
	db DB
}

type AIRequestLog struct {
	UserID          uuid.UUID
	RequestType     string
	Provider        string
	Model           string
	Prompt          string
	RequestPayload  []byte
	ResponsePayload []byte
	RawResponse     string
	Success         bool
	Cached          bool
	ErrorMessage    *string
	Latency         time.Duration
}

// NewAIRepository создает репозиторий для AI-запросов.
func NewAIRepository(db DB) *AIRepository {
	return &AIRepository{db: db}
}

// LogRequest сохраняет лог AI-запроса.
func (r *AIRepository) LogRequest(ctx context.Context, log AIRequestLog) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO ai_requests
		 (user_id, request_type, provider, model, prompt, request_payload, response_payload, raw_response, success, cached, error_message, latency_ms)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::jsonb, NULLIF($7, '')::jsonb, $8, $9, $10, $11, $12)`,
		log.UserID,
		log.RequestType,
		log.Provider,
		log.Model,
		log.Prompt,
		string(log.RequestPayload),
		string(log.ResponsePayload),
		log.RawResponse,
		log.Success,
		log.Cached,
		log.ErrorMessage,
		log.Latency.Milliseconds(),
	)
	if err != nil {
		return eris.Wrap(err, "repository: log ai request")
	}
	return nil
}

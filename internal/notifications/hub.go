package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AjayAlluri/Toyota-Financing/internal/access"
)

const (
	EventConnected        = "connected"
	EventQuoteReady       = "quote_ready"
	EventDocumentUploaded = "document_uploaded"
	EventLeadUpdated      = "lead_updated"
)

// Topic names a stream of events: one per user plus a shared sales topic.
type Topic string

const SalesTopic Topic = "sales"

const subscriberBuffer = 16

// UserTopic возвращает топик событий конкретного пользователя.
func UserTopic(userID uuid.UUID) Topic {
	return Topic("user:" + userID.String())
}

// TopicsFor возвращает топики, на которые подписывается участник.
// Сотрудники продаж дополнительно получают общий топик лидов.
func TopicsFor(p access.Principal) []Topic {
	topics := []Topic{UserTopic(p.ID)}
	if p.Role == access.RoleSales {
		topics = append(topics, SalesTopic)
	}
	return topics
}

type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[Topic]map[chan Event]struct{}
}

// NewHub создает хаб для SSE-подписок.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[Topic]map[chan Event]struct{}),
	}
}

// Subscribe подписывает один канал на все переданные топики и возвращает
// канал и функцию отписки.
func (h *Hub) Subscribe(topics ...Topic) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, topic := range topics {
		subs, ok := h.subscribers[topic]
		if !ok {
			subs = make(map[chan Event]struct{})
			h.subscribers[topic] = subs
		}
		subs[ch] = struct{}{}
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			for _, topic := range topics {
				if subs, exists := h.subscribers[topic]; exists {
					delete(subs, ch)
					if len(subs) == 0 {
						delete(h.subscribers, topic)
					}
				}
			}
			close(ch)
		})
	}
}

// Publish отправляет событие всем подписчикам топика. Медленные подписчики
// с заполненным буфером пропускают событие.
func (h *Hub) Publish(topic Topic, event Event) {
	if h == nil {
		return
	}
	event.Timestamp = time.Now().UTC()

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[topic] {
		select {
		case ch <- event:
		default:
			zap.L().Debug("notification dropped", zap.String("topic", string(topic)), zap.String("type", event.Type))
		}
	}
}

// Subscribers возвращает число подписчиков топика.
func (h *Hub) Subscribers(topic Topic) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[topic])
}

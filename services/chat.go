package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"support-bot/faq"
	"support-bot/models"
)

var ErrEmptyMessage = errors.New("message is empty")

// FAQEngine is the part of the FAQ matcher the chat flow needs
type FAQEngine interface {
	GetResponse(question string, threshold float64) *faq.Response
	GetFallbackResponse(question string) string
}

// Notifier receives every answered exchange, e.g. for live dashboards
type Notifier interface {
	Broadcast(eventType string, data interface{})
}

// ChatRequest is a customer message with request metadata
type ChatRequest struct {
	Message   string
	SessionID string
	UserIP    string
	UserAgent string
}

// ChatReply is what the customer receives
type ChatReply struct {
	Response   string  `json:"response"`
	Status     string  `json:"status"`
	Source     string  `json:"source"`
	SessionID  string  `json:"session_id"`
	CategoryID string  `json:"category_id,omitempty"`
	Score      float64 `json:"score,omitempty"`
	Level      string  `json:"level,omitempty"`
}

// ChatService answers customer messages from the FAQ and records the exchange
type ChatService struct {
	engine    FAQEngine
	store     ExchangeStore
	notifier  Notifier
	threshold float64
	now       func() time.Time
}

// NewChatService wires the chat flow. store and notifier may be nil.
func NewChatService(engine FAQEngine, store ExchangeStore, notifier Notifier, threshold float64) *ChatService {
	return &ChatService{
		engine:    engine,
		store:     store,
		notifier:  notifier,
		threshold: threshold,
		now:       time.Now,
	}
}

// Answer returns the FAQ answer for the message, or the fallback text when no
// category reaches the threshold. Persisting the exchange is best effort.
func (s *ChatService) Answer(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	start := s.now()
	reply := &ChatReply{
		Status:    "success",
		SessionID: req.SessionID,
	}

	var categoryName string
	if resp := s.engine.GetResponse(message, s.threshold); resp != nil {
		categoryName = resp.CategoryName
		reply.Response = resp.Response
		reply.Source = models.SourceFAQ
		reply.CategoryID = resp.CategoryID
		reply.Score = resp.Score
		reply.Level = resp.Level
	} else {
		reply.Response = s.engine.GetFallbackResponse(message)
		reply.Source = models.SourceFallback
	}

	exchange := &models.Exchange{
		SessionID:      req.SessionID,
		UserMessage:    message,
		BotResponse:    reply.Response,
		Source:         reply.Source,
		CategoryID:     reply.CategoryID,
		CategoryName:   categoryName,
		Score:          reply.Score,
		Level:          reply.Level,
		OnTopic:        reply.Source == models.SourceFAQ,
		UserIP:         req.UserIP,
		UserAgent:      req.UserAgent,
		ResponseTimeMs: s.now().Sub(start).Milliseconds(),
		Timestamp:      start,
	}

	s.record(ctx, exchange)

	return reply, nil
}

func (s *ChatService) record(ctx context.Context, exchange *models.Exchange) {
	if s.store != nil {
		if err := s.store.SaveExchange(ctx, exchange); err != nil {
			slog.Warn("⚠️ Failed to save exchange",
				"error", err,
				"sessionID", exchange.SessionID,
			)
		}
	}
	if s.notifier != nil {
		s.notifier.Broadcast(EventExchange, exchange)
	}
}

// Match exposes the raw FAQ lookup at a caller-chosen threshold
func (s *ChatService) Match(question string, threshold float64) *faq.Response {
	return s.engine.GetResponse(question, threshold)
}

// Fallback exposes the fallback text for a question
func (s *ChatService) Fallback(question string) string {
	return s.engine.GetFallbackResponse(question)
}

// Threshold returns the default match threshold
func (s *ChatService) Threshold() float64 {
	return s.threshold
}

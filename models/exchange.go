package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exchange sources
const (
	SourceFAQ      = "faq"
	SourceFallback = "fallback"
)

// Exchange is one customer question and the answer the bot gave
type Exchange struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID      string             `bson:"session_id" json:"session_id"`
	UserMessage    string             `bson:"user_message" json:"user_message"`
	BotResponse    string             `bson:"bot_response" json:"bot_response"`
	Source         string             `bson:"source" json:"source"` // "faq" or "fallback"
	CategoryID     string             `bson:"category_id,omitempty" json:"category_id,omitempty"`
	CategoryName   string             `bson:"category_name,omitempty" json:"category_name,omitempty"`
	Score          float64            `bson:"score" json:"score"`
	Level          string             `bson:"level,omitempty" json:"level,omitempty"`
	OnTopic        bool               `bson:"on_topic" json:"on_topic"`
	UserIP         string             `bson:"user_ip,omitempty" json:"user_ip,omitempty"`
	UserAgent      string             `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	ResponseTimeMs int64              `bson:"response_time_ms" json:"response_time_ms"`
	Timestamp      time.Time          `bson:"timestamp" json:"timestamp"`
}

// CategoryCount is the number of exchanges answered by one FAQ category
type CategoryCount struct {
	CategoryID   string `bson:"_id" json:"category_id"`
	CategoryName string `bson:"category_name" json:"category_name"`
	Count        int64  `bson:"count" json:"count"`
}

// ExchangeSummary aggregates exchanges over a time window
type ExchangeSummary struct {
	Since             time.Time       `json:"since"`
	TotalExchanges    int64           `json:"total_exchanges"`
	UniqueSessions    int64           `json:"unique_sessions"`
	OnTopicCount      int64           `json:"on_topic_count"`
	OffTopicCount     int64           `json:"off_topic_count"`
	OnTopicPercentage float64         `json:"on_topic_percentage"`
	AvgResponseTimeMs float64         `json:"avg_response_time_ms"`
	TopCategories     []CategoryCount `json:"top_categories"`
}

// Conversation statuses. A conversation is active while its last exchange is
// newer than ConversationIdleTimeout.
const (
	ConversationActive = "active"
	ConversationEnded  = "ended"

	ConversationIdleTimeout = 30 * time.Minute
)

// ConversationStatusFor returns the status of a conversation whose last
// exchange happened at lastExchange
func ConversationStatusFor(lastExchange, now time.Time) string {
	if now.Sub(lastExchange) < ConversationIdleTimeout {
		return ConversationActive
	}
	return ConversationEnded
}

// IsValidConversationStatus reports whether status is a known status
func IsValidConversationStatus(status string) bool {
	return status == ConversationActive || status == ConversationEnded
}

// Conversation groups the exchanges of one chat session
type Conversation struct {
	SessionID     string    `bson:"_id" json:"session_id"`
	StartTime     time.Time `bson:"start_time" json:"start_time"`
	EndTime       time.Time `bson:"end_time" json:"end_time"`
	TotalMessages int64     `bson:"total_messages" json:"total_messages"`
	OnTopicCount  int64     `bson:"on_topic_count" json:"on_topic_count"`
	OffTopicCount int64     `bson:"off_topic_count" json:"off_topic_count"`
	Status        string    `bson:"-" json:"status"`
}

// ConversationFilter selects conversations for listing and export.
// Zero values disable a filter; Limit 0 means no limit.
type ConversationFilter struct {
	DateFrom time.Time
	DateTo   time.Time
	Status   string
	Keyword  string
	Limit    int
	Offset   int
}

// DailyStat is the activity of one calendar day (UTC)
type DailyStat struct {
	Date           string `bson:"_id" json:"date"`
	Exchanges      int64  `bson:"exchanges" json:"exchanges"`
	UniqueSessions int64  `bson:"unique_sessions" json:"unique_sessions"`
	OnTopicCount   int64  `bson:"on_topic_count" json:"on_topic_count"`
	OffTopicCount  int64  `bson:"off_topic_count" json:"off_topic_count"`
}

// QuestionCount is how often the same customer message was asked
type QuestionCount struct {
	Question string `bson:"_id" json:"question"`
	Count    int64  `bson:"count" json:"count"`
}

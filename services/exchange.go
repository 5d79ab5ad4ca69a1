package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"support-bot/models"
)

// ExchangeStore persists chat exchanges and answers analytics queries
type ExchangeStore interface {
	SaveExchange(ctx context.Context, exchange *models.Exchange) error
	RecentExchanges(ctx context.Context, limit int) ([]models.Exchange, error)
	Summary(ctx context.Context, since time.Time) (*models.ExchangeSummary, error)
}

// ConversationStore answers per-session analytics and retention queries
type ConversationStore interface {
	ListConversations(ctx context.Context, filter models.ConversationFilter) ([]models.Conversation, int64, error)
	ConversationExchanges(ctx context.Context, sessionID string) ([]models.Exchange, error)
	DailyStats(ctx context.Context, since time.Time) ([]models.DailyStat, error)
	TopQuestions(ctx context.Context, since time.Time, limit int) ([]models.QuestionCount, error)
	DeleteConversation(ctx context.Context, sessionID string) (int64, error)
	DeleteExchangesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AnalyticsStore is everything the admin analytics endpoints need
type AnalyticsStore interface {
	ExchangeStore
	ConversationStore
}

// MongoExchangeStore stores exchanges in the exchanges collection
type MongoExchangeStore struct {
	collection *mongo.Collection
}

// NewMongoExchangeStore creates a store over db
func NewMongoExchangeStore(db *mongo.Database) *MongoExchangeStore {
	return &MongoExchangeStore{collection: db.Collection(ExchangesCollection)}
}

// SaveExchange inserts one exchange
func (s *MongoExchangeStore) SaveExchange(ctx context.Context, exchange *models.Exchange) error {
	if exchange.ID.IsZero() {
		exchange.ID = primitive.NewObjectID()
	}
	if exchange.Timestamp.IsZero() {
		exchange.Timestamp = time.Now()
	}

	if _, err := s.collection.InsertOne(ctx, exchange); err != nil {
		return fmt.Errorf("failed to save exchange: %w", err)
	}
	return nil
}

// RecentExchanges returns the newest exchanges first
func (s *MongoExchangeStore) RecentExchanges(ctx context.Context, limit int) ([]models.Exchange, error) {
	opts := options.Find().
		SetSort(bson.M{"timestamp": -1}).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exchanges: %w", err)
	}
	defer cursor.Close(ctx)

	exchanges := []models.Exchange{}
	if err := cursor.All(ctx, &exchanges); err != nil {
		return nil, fmt.Errorf("failed to decode exchanges: %w", err)
	}
	return exchanges, nil
}

// Summary aggregates exchanges newer than since
func (s *MongoExchangeStore) Summary(ctx context.Context, since time.Time) (*models.ExchangeSummary, error) {
	match := bson.M{"$match": bson.M{"timestamp": bson.M{"$gte": since}}}

	totalsPipeline := []bson.M{
		match,
		{"$group": bson.M{
			"_id":          nil,
			"total":        bson.M{"$sum": 1},
			"on_topic":     bson.M{"$sum": bson.M{"$cond": bson.A{"$on_topic", 1, 0}}},
			"avg_response": bson.M{"$avg": "$response_time_ms"},
			"sessions":     bson.M{"$addToSet": "$session_id"},
		}},
		{"$project": bson.M{
			"total":        1,
			"on_topic":     1,
			"avg_response": 1,
			"sessions":     bson.M{"$size": "$sessions"},
		}},
	}

	cursor, err := s.collection.Aggregate(ctx, totalsPipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate exchanges: %w", err)
	}
	var totals []struct {
		Total       int64   `bson:"total"`
		OnTopic     int64   `bson:"on_topic"`
		AvgResponse float64 `bson:"avg_response"`
		Sessions    int64   `bson:"sessions"`
	}
	if err := cursor.All(ctx, &totals); err != nil {
		return nil, fmt.Errorf("failed to decode exchange totals: %w", err)
	}

	topPipeline := []bson.M{
		match,
		{"$match": bson.M{"category_id": bson.M{"$nin": bson.A{nil, ""}}}},
		{"$group": bson.M{
			"_id":           "$category_id",
			"category_name": bson.M{"$first": "$category_name"},
			"count":         bson.M{"$sum": 1},
		}},
		{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}},
		{"$limit": 10},
	}

	cursor, err = s.collection.Aggregate(ctx, topPipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate categories: %w", err)
	}
	top := []models.CategoryCount{}
	if err := cursor.All(ctx, &top); err != nil {
		return nil, fmt.Errorf("failed to decode category counts: %w", err)
	}

	summary := &models.ExchangeSummary{Since: since, TopCategories: top}
	if len(totals) > 0 {
		t := totals[0]
		summary.TotalExchanges = t.Total
		summary.UniqueSessions = t.Sessions
		summary.OnTopicCount = t.OnTopic
		summary.OffTopicCount = t.Total - t.OnTopic
		summary.AvgResponseTimeMs = t.AvgResponse
		if t.Total > 0 {
			summary.OnTopicPercentage = float64(t.OnTopic) / float64(t.Total) * 100
		}
	}
	return summary, nil
}

// ListConversations groups exchanges by session, applies filter and returns
// one page, newest first, with the total number of matching conversations
func (s *MongoExchangeStore) ListConversations(ctx context.Context, filter models.ConversationFilter) ([]models.Conversation, int64, error) {
	now := time.Now()

	group := bson.M{
		"_id":             "$session_id",
		"start_time":      bson.M{"$min": "$timestamp"},
		"end_time":        bson.M{"$max": "$timestamp"},
		"total_messages":  bson.M{"$sum": 1},
		"on_topic_count":  bson.M{"$sum": bson.M{"$cond": bson.A{"$on_topic", 1, 0}}},
		"off_topic_count": bson.M{"$sum": bson.M{"$cond": bson.A{"$on_topic", 0, 1}}},
	}
	if filter.Keyword != "" {
		group["keyword_hits"] = bson.M{"$sum": bson.M{"$cond": bson.A{
			bson.M{"$regexMatch": bson.M{
				"input":   "$user_message",
				"regex":   regexp.QuoteMeta(filter.Keyword),
				"options": "i",
			}},
			1, 0,
		}}}
	}

	match := bson.M{}
	start := bson.M{}
	if !filter.DateFrom.IsZero() {
		start["$gte"] = filter.DateFrom
	}
	if !filter.DateTo.IsZero() {
		start["$lt"] = filter.DateTo
	}
	if len(start) > 0 {
		match["start_time"] = start
	}
	switch filter.Status {
	case models.ConversationActive:
		match["end_time"] = bson.M{"$gt": now.Add(-models.ConversationIdleTimeout)}
	case models.ConversationEnded:
		match["end_time"] = bson.M{"$lte": now.Add(-models.ConversationIdleTimeout)}
	}
	if filter.Keyword != "" {
		match["keyword_hits"] = bson.M{"$gt": 0}
	}

	page := bson.A{
		bson.M{"$sort": bson.D{{Key: "start_time", Value: -1}, {Key: "_id", Value: 1}}},
		bson.M{"$skip": filter.Offset},
	}
	if filter.Limit > 0 {
		page = append(page, bson.M{"$limit": filter.Limit})
	}

	pipeline := []bson.M{
		{"$group": group},
		{"$match": match},
		{"$facet": bson.M{
			"items": page,
			"total": bson.A{bson.M{"$count": "count"}},
		}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to aggregate conversations: %w", err)
	}
	var result []struct {
		Items []models.Conversation `bson:"items"`
		Total []struct {
			Count int64 `bson:"count"`
		} `bson:"total"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, 0, fmt.Errorf("failed to decode conversations: %w", err)
	}

	conversations := []models.Conversation{}
	var total int64
	if len(result) > 0 {
		conversations = append(conversations, result[0].Items...)
		if len(result[0].Total) > 0 {
			total = result[0].Total[0].Count
		}
	}
	for i := range conversations {
		conversations[i].Status = models.ConversationStatusFor(conversations[i].EndTime, now)
	}
	return conversations, total, nil
}

// ConversationExchanges returns the exchanges of one session in order
func (s *MongoExchangeStore) ConversationExchanges(ctx context.Context, sessionID string) ([]models.Exchange, error) {
	opts := options.Find().SetSort(bson.M{"timestamp": 1})

	cursor, err := s.collection.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversation: %w", err)
	}
	defer cursor.Close(ctx)

	exchanges := []models.Exchange{}
	if err := cursor.All(ctx, &exchanges); err != nil {
		return nil, fmt.Errorf("failed to decode conversation: %w", err)
	}
	return exchanges, nil
}

// DailyStats counts exchanges per UTC day since since, newest day first
func (s *MongoExchangeStore) DailyStats(ctx context.Context, since time.Time) ([]models.DailyStat, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"timestamp": bson.M{"$gte": since}}},
		{"$group": bson.M{
			"_id":       bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$timestamp"}},
			"exchanges": bson.M{"$sum": 1},
			"on_topic":  bson.M{"$sum": bson.M{"$cond": bson.A{"$on_topic", 1, 0}}},
			"sessions":  bson.M{"$addToSet": "$session_id"},
		}},
		{"$project": bson.M{
			"exchanges":       1,
			"on_topic_count":  "$on_topic",
			"off_topic_count": bson.M{"$subtract": bson.A{"$exchanges", "$on_topic"}},
			"unique_sessions": bson.M{"$size": "$sessions"},
		}},
		{"$sort": bson.M{"_id": -1}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily stats: %w", err)
	}
	stats := []models.DailyStat{}
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode daily stats: %w", err)
	}
	return stats, nil
}

// TopQuestions returns the most frequent customer messages since since
func (s *MongoExchangeStore) TopQuestions(ctx context.Context, since time.Time, limit int) ([]models.QuestionCount, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"timestamp": bson.M{"$gte": since}}},
		{"$group": bson.M{
			"_id":   bson.M{"$toLower": "$user_message"},
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}},
		{"$limit": limit},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top questions: %w", err)
	}
	questions := []models.QuestionCount{}
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, fmt.Errorf("failed to decode top questions: %w", err)
	}
	return questions, nil
}

// DeleteConversation removes every exchange of a session
func (s *MongoExchangeStore) DeleteConversation(ctx context.Context, sessionID string) (int64, error) {
	result, err := s.collection.DeleteMany(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete conversation: %w", err)
	}
	return result.DeletedCount, nil
}

// DeleteExchangesBefore removes exchanges older than cutoff
func (s *MongoExchangeStore) DeleteExchangesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.collection.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete old exchanges: %w", err)
	}
	return result.DeletedCount, nil
}

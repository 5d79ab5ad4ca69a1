package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"support-bot/faq"
	"support-bot/models"
)

const testConfigJSON = `{
  "faq_structured": {
    "categorii": [
      {
        "id": "retur",
        "nume": "Retur",
        "emoji": "↩️",
        "keywords": ["retur", "cum fac retur"],
        "responses": {
          "standard": "Ai 14 zile.",
          "complete": "Ai 14 zile pentru retur, formularul e in cont."
        }
      },
      {
        "id": "livrare",
        "nume": "Livrare",
        "emoji": "🚚",
        "keywords": ["livrare", "cat costa livrarea"],
        "responses": {
          "quick": "19 lei.",
          "complete": "Livrarea costă 19 lei."
        }
      }
    ]
  }
}`

type memoryStore struct {
	mu        sync.Mutex
	exchanges []models.Exchange
	summary   *models.ExchangeSummary
	limit     int
	since     time.Time
	filter    models.ConversationFilter
	cutoff    time.Time
}

func (s *memoryStore) SaveExchange(ctx context.Context, exchange *models.Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanges = append(s.exchanges, *exchange)
	return nil
}

func (s *memoryStore) RecentExchanges(ctx context.Context, limit int) ([]models.Exchange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limit = limit
	return s.exchanges, nil
}

func (s *memoryStore) Summary(ctx context.Context, since time.Time) (*models.ExchangeSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.since = since
	if s.summary == nil {
		return &models.ExchangeSummary{Since: since}, nil
	}
	return s.summary, nil
}

func (s *memoryStore) ListConversations(ctx context.Context, filter models.ConversationFilter) ([]models.Conversation, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = filter

	now := time.Now()
	bySession := map[string]*models.Conversation{}
	hits := map[string]bool{}
	var order []string
	for _, ex := range s.exchanges {
		conv, ok := bySession[ex.SessionID]
		if !ok {
			conv = &models.Conversation{SessionID: ex.SessionID, StartTime: ex.Timestamp, EndTime: ex.Timestamp}
			bySession[ex.SessionID] = conv
			order = append(order, ex.SessionID)
		}
		if ex.Timestamp.Before(conv.StartTime) {
			conv.StartTime = ex.Timestamp
		}
		if ex.Timestamp.After(conv.EndTime) {
			conv.EndTime = ex.Timestamp
		}
		conv.TotalMessages++
		if ex.OnTopic {
			conv.OnTopicCount++
		} else {
			conv.OffTopicCount++
		}
		if filter.Keyword != "" && strings.Contains(strings.ToLower(ex.UserMessage), strings.ToLower(filter.Keyword)) {
			hits[ex.SessionID] = true
		}
	}

	var matched []models.Conversation
	for _, id := range order {
		conv := *bySession[id]
		conv.Status = models.ConversationStatusFor(conv.EndTime, now)
		if !filter.DateFrom.IsZero() && conv.StartTime.Before(filter.DateFrom) {
			continue
		}
		if !filter.DateTo.IsZero() && !conv.StartTime.Before(filter.DateTo) {
			continue
		}
		if filter.Status != "" && conv.Status != filter.Status {
			continue
		}
		if filter.Keyword != "" && !hits[id] {
			continue
		}
		matched = append(matched, conv)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].StartTime.After(matched[j].StartTime) })

	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return []models.Conversation{}, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (s *memoryStore) ConversationExchanges(ctx context.Context, sessionID string) ([]models.Exchange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Exchange
	for _, ex := range s.exchanges {
		if ex.SessionID == sessionID {
			out = append(out, ex)
		}
	}
	return out, nil
}

func (s *memoryStore) DailyStats(ctx context.Context, since time.Time) ([]models.DailyStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.since = since

	byDay := map[string]*models.DailyStat{}
	sessions := map[string]map[string]bool{}
	for _, ex := range s.exchanges {
		if ex.Timestamp.Before(since) {
			continue
		}
		day := ex.Timestamp.UTC().Format("2006-01-02")
		stat, ok := byDay[day]
		if !ok {
			stat = &models.DailyStat{Date: day}
			byDay[day] = stat
			sessions[day] = map[string]bool{}
		}
		stat.Exchanges++
		if ex.OnTopic {
			stat.OnTopicCount++
		} else {
			stat.OffTopicCount++
		}
		sessions[day][ex.SessionID] = true
	}

	stats := []models.DailyStat{}
	for day, stat := range byDay {
		stat.UniqueSessions = int64(len(sessions[day]))
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Date > stats[j].Date })
	return stats, nil
}

func (s *memoryStore) TopQuestions(ctx context.Context, since time.Time, limit int) ([]models.QuestionCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := map[string]int64{}
	for _, ex := range s.exchanges {
		if !ex.Timestamp.Before(since) {
			counts[strings.ToLower(ex.UserMessage)]++
		}
	}
	questions := []models.QuestionCount{}
	for q, n := range counts {
		questions = append(questions, models.QuestionCount{Question: q, Count: n})
	}
	sort.Slice(questions, func(i, j int) bool {
		if questions[i].Count != questions[j].Count {
			return questions[i].Count > questions[j].Count
		}
		return questions[i].Question < questions[j].Question
	})
	if len(questions) > limit {
		questions = questions[:limit]
	}
	return questions, nil
}

func (s *memoryStore) DeleteConversation(ctx context.Context, sessionID string) (int64, error) {
	return s.deleteWhere(func(ex models.Exchange) bool { return ex.SessionID == sessionID }), nil
}

func (s *memoryStore) DeleteExchangesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	s.cutoff = cutoff
	s.mu.Unlock()
	return s.deleteWhere(func(ex models.Exchange) bool { return ex.Timestamp.Before(cutoff) }), nil
}

func (s *memoryStore) deleteWhere(match func(models.Exchange) bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.exchanges[:0]
	var deleted int64
	for _, ex := range s.exchanges {
		if match(ex) {
			deleted++
			continue
		}
		kept = append(kept, ex)
	}
	s.exchanges = kept
	return deleted
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Broadcast(eventType string, data interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, eventType)
}

func (n *recordingNotifier) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "faq_config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestMatcher(t *testing.T) *faq.Matcher {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := faq.New(writeTestConfig(t, testConfigJSON), faq.WithLogger(logger))
	require.Len(t, m.Categories(), 2)
	return m
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &out), string(data))
	}
	return resp, out
}

package faq

// Verbosity tiers of a category response.
const (
	TierQuick    = "quick"
	TierStandard = "standard"
	TierComplete = "complete"
)

// FallbackTiers are tried in order when the requested tier is missing. If
// none of them exists the first tier of the category, in configuration
// order, is used.
var FallbackTiers = []string{TierStandard}

// Response is what the HTTP layer receives for a matched question.
type Response struct {
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Emoji        string  `json:"emoji"`
	Score        float64 `json:"score"`
	Level        string  `json:"level"`
	Response     string  `json:"response"`
}

// SelectResponse returns the text for tier and the tier that provided it.
// The returned tier is empty when the match carries no responses at all.
func SelectResponse(m *Match, tier string) (string, string) {
	if m == nil {
		return "", ""
	}
	if text, ok := m.Responses[tier]; ok {
		return text, tier
	}
	for _, fallback := range FallbackTiers {
		if text, ok := m.Responses[fallback]; ok {
			return text, fallback
		}
	}
	for _, first := range m.TierOrder {
		if text, ok := m.Responses[first]; ok {
			return text, first
		}
	}
	return "", ""
}

// DecideTier picks the verbosity tier for a question. Customers always get
// the complete answer; quick and standard are only reached through the
// fallback chain.
func DecideTier(question string) string {
	return TierComplete
}

// GetResponse matches question at threshold and returns the selected answer,
// or nil when nothing matched.
func (m *Matcher) GetResponse(question string, threshold float64) *Response {
	match := m.FindBestMatch(question, threshold)
	if match == nil {
		return nil
	}

	level := DecideTier(question)
	text, _ := SelectResponse(match, level)

	return &Response{
		CategoryID:   match.CategoryID,
		CategoryName: match.CategoryName,
		Emoji:        match.Emoji,
		Score:        match.Score,
		Level:        level,
		Response:     text,
	}
}

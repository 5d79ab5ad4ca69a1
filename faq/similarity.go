package faq

import (
	"math"
	"strings"
)

// Scores returned by the containment rules.
const (
	ScoreExact         = 100.0
	ScoreKeywordInText = 95.0
	ScoreTextInKeyword = 90.0
)

// Score computes the similarity (0-100) between a normalized question and a
// normalized keyword. The first rule that applies wins:
//
//  1. identical strings                  -> 100
//  2. keyword contained in the question  -> 95
//  3. question contained in the keyword  -> 90
//  4. Jaccard overlap of the word sets, rounded to two decimals
//
// Score is asymmetric: Score(a, b) != Score(b, a) when
// one string contains the other.
func Score(question, keyword string) float64 {
	if question == keyword {
		return ScoreExact
	}
	if keyword != "" && strings.Contains(question, keyword) {
		return ScoreKeywordInText
	}
	if question != "" && strings.Contains(keyword, question) {
		return ScoreTextInKeyword
	}

	qWords := wordSet(question)
	kWords := wordSet(keyword)

	common := 0
	for w := range qWords {
		if _, ok := kWords[w]; ok {
			common++
		}
	}

	total := len(qWords) + len(kWords) - common
	if total == 0 {
		return 0
	}

	ratio := float64(common) / float64(total) * 100
	return math.Round(ratio*100) / 100
}

func wordSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

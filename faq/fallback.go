package faq

import (
	"fmt"
	"strings"
)

// DefaultContact is appended to the topic menu when nothing matches.
const DefaultContact = "Pentru asistență: contact@ejolie.ro sau 0757 10 51 51"

// popularTopics is the static menu shown when even the lower threshold finds
// nothing.
var popularTopics = []string{
	"Livrare (cost, timp)",
	"Retur (procedură, politică)",
	"Schimb (mărime, produs)",
	"Plată (metode disponibile)",
	"Tracking comandă",
}

// GetFallbackResponse retries the match at FallbackThreshold. A hit is
// returned as a hedged guess asking the customer to confirm; otherwise the
// popular topics menu is returned.
func (m *Matcher) GetFallbackResponse(question string) string {
	match := m.FindBestMatch(question, FallbackThreshold)
	if match != nil {
		text, _ := SelectResponse(match, DecideTier(question))
		return fmt.Sprintf("Cred că întrebi despre %s.\n\n%s\n\nAsta căutai? Dacă nu, reformulează te rog!",
			match.CategoryName, text)
	}
	return m.menu()
}

func (m *Matcher) menu() string {
	var b strings.Builder
	b.WriteString("Îmi pare rău, nu am înțeles exact.\n\nÎntrebări frecvente:\n")
	for _, topic := range popularTopics {
		b.WriteString("• ")
		b.WriteString(topic)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.contact)
	return b.String()
}

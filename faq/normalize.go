package faq

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// romanianDiacritics maps the Romanian letters, comma and cedilla forms, to
// their base Latin letter.
var romanianDiacritics = strings.NewReplacer(
	"ă", "a", "â", "a", "î", "i", "ș", "s", "ț", "t",
	"Ă", "a", "Â", "a", "Î", "i", "Ș", "s", "Ț", "t",
	"ş", "s", "ţ", "t", "Ş", "s", "Ţ", "t",
)

// stripMarks drops the combining marks left over after the table, so é or ü
// in a keyword file still match their base letter.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes text for matching: lowercase, diacritics replaced
// by their base letter, everything that is not a letter or digit turned into
// a space, whitespace collapsed and trimmed.
//
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	s := strings.ToLower(text)
	s = romanianDiacritics.Replace(s)
	if stripped, _, err := transform.String(stripMarks, s); err == nil {
		s = stripped
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte(' ')
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
